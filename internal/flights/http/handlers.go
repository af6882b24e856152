package flightshttp

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/farewatch/farewatch/internal/flights"
	"github.com/farewatch/farewatch/internal/shared"
)

// Service exposes the search operations required by the handler.
type Service interface {
	SearchOneWay(ctx context.Context, q flights.OneWayQuery) (*flights.SearchResult, error)
	SearchRoundTrip(ctx context.Context, q flights.RoundTripQuery) (*flights.SearchResult, error)
}

// Handler manages the flight search endpoints.
type Handler struct {
	logger   *slog.Logger
	service  Service
	validate *validator.Validate
}

// NewHandler builds Handler instance.
func NewHandler(logger *slog.Logger, service Service) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{
		logger:   logger,
		service:  service,
		validate: validator.New(),
	}
}

// MountRoutes registers flight search routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Post("/one-way", h.searchOneWay)
	r.Post("/round-trip", h.searchRoundTrip)
}

type oneWayRequest struct {
	Origin        string `json:"origin" validate:"required,len=3,alpha"`
	Destination   string `json:"destination" validate:"omitempty,len=3,alpha"`
	DepartureDate string `json:"departureDate" validate:"omitempty,datetime=2006-01-02"`
	AirlineCode   string `json:"airlineCode" validate:"omitempty,len=2,alphanum"`
}

type roundTripRequest struct {
	Origin        string `json:"origin" validate:"required,len=3,alpha"`
	Destination   string `json:"destination" validate:"omitempty,len=3,alpha"`
	DepartureDate string `json:"departureDate" validate:"omitempty,datetime=2006-01-02"`
	ReturnDate    string `json:"returnDate" validate:"omitempty,datetime=2006-01-02"`
	AirlineCode   string `json:"airlineCode" validate:"omitempty,len=2,alphanum"`
}

func (h *Handler) searchOneWay(w http.ResponseWriter, r *http.Request) {
	var req oneWayRequest
	if err := h.decode(r, &req); err != nil {
		shared.RespondError(w, h.logger, err)
		return
	}

	result, err := h.service.SearchOneWay(r.Context(), flights.OneWayQuery{
		Origin:        strings.ToUpper(req.Origin),
		Destination:   strings.ToUpper(req.Destination),
		DepartureDate: req.DepartureDate,
		AirlineCode:   strings.ToUpper(req.AirlineCode),
	})
	if err != nil {
		shared.RespondError(w, h.logger, err)
		return
	}
	shared.RespondJSON(w, http.StatusOK, result)
}

func (h *Handler) searchRoundTrip(w http.ResponseWriter, r *http.Request) {
	var req roundTripRequest
	if err := h.decode(r, &req); err != nil {
		shared.RespondError(w, h.logger, err)
		return
	}

	result, err := h.service.SearchRoundTrip(r.Context(), flights.RoundTripQuery{
		Origin:        strings.ToUpper(req.Origin),
		Destination:   strings.ToUpper(req.Destination),
		DepartureDate: req.DepartureDate,
		ReturnDate:    req.ReturnDate,
		AirlineCode:   strings.ToUpper(req.AirlineCode),
	})
	if err != nil {
		shared.RespondError(w, h.logger, err)
		return
	}
	shared.RespondJSON(w, http.StatusOK, result)
}

func (h *Handler) decode(r *http.Request, dest any) error {
	if err := json.NewDecoder(r.Body).Decode(dest); err != nil {
		return shared.NewValidationError("malformed request body")
	}
	if err := h.validate.Struct(dest); err != nil {
		return shared.NewValidationError("invalid request: %s", validationDetail(err))
	}
	return nil
}

func validationDetail(err error) string {
	var fieldErrs validator.ValidationErrors
	if errors.As(err, &fieldErrs) && len(fieldErrs) > 0 {
		fields := make([]string, 0, len(fieldErrs))
		for _, fe := range fieldErrs {
			fields = append(fields, fe.Field())
		}
		return strings.Join(fields, ", ")
	}
	return err.Error()
}
