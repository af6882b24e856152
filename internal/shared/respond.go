package shared

import (
	"encoding/json"
	"log/slog"
	"net/http"
)

// RespondJSON writes a JSON body with the given status code.
func RespondJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if body == nil {
		return
	}
	_ = json.NewEncoder(w).Encode(body)
}

// ErrorBody is the JSON shape for error responses.
type ErrorBody struct {
	Message string `json:"message"`
	Details string `json:"details,omitempty"`
}

// RespondError maps the error through HTTPStatus and writes the JSON body.
// Server-side faults are logged; client faults carry the cause back verbatim.
func RespondError(w http.ResponseWriter, logger *slog.Logger, err error) {
	status := HTTPStatus(err)
	if status >= http.StatusInternalServerError && logger != nil {
		logger.Error("request failed", slog.Any("error", err))
	}
	body := ErrorBody{Message: http.StatusText(status)}
	switch status {
	case http.StatusBadRequest, http.StatusNotFound:
		body.Message = err.Error()
	case http.StatusBadGateway:
		body.Message = "error fetching data from provider"
		body.Details = err.Error()
	}
	RespondJSON(w, status, body)
}
