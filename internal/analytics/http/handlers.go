package analytichttp

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/farewatch/farewatch/internal/analytics"
	"github.com/farewatch/farewatch/internal/shared"
)

// Service exposes the analytics operations required by the handler.
type Service interface {
	BusiestPeriod(ctx context.Context, q analytics.BusiestPeriodQuery) (*analytics.Result, error)
	MostTraveled(ctx context.Context, q analytics.MostTraveledQuery) (*analytics.Result, error)
}

// Handler manages the travel analytics endpoints.
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

// MountRoutes registers analytics routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Post("/busiest-period", h.busiestPeriod)
	r.Post("/most-traveled", h.mostTraveled)
}

type busiestPeriodRequest struct {
	CityCode  string `json:"cityCode" validate:"required,len=3,alpha"`
	Period    string `json:"period" validate:"required,len=4,numeric"`
	Direction string `json:"direction" validate:"required,oneof=ARRIVING DEPARTING"`
}

type mostTraveledRequest struct {
	OriginCityCode string `json:"originCityCode" validate:"required,len=3,alpha"`
	Period         string `json:"period" validate:"required,datetime=2006-01"`
	Max            int    `json:"max" validate:"omitempty,min=1,max=50"`
	Sort           string `json:"sort" validate:"omitempty,oneof=analytics.travelers.score analytics.flights.score"`
}

func (h *Handler) busiestPeriod(w http.ResponseWriter, r *http.Request) {
	var req busiestPeriodRequest
	if err := h.decode(r, &req); err != nil {
		shared.RespondError(w, h.logger, err)
		return
	}

	result, err := h.service.BusiestPeriod(r.Context(), analytics.BusiestPeriodQuery{
		CityCode:  strings.ToUpper(req.CityCode),
		Period:    req.Period,
		Direction: analytics.Direction(req.Direction),
	})
	if err != nil {
		shared.RespondError(w, h.logger, err)
		return
	}
	h.respondResult(w, result)
}

func (h *Handler) mostTraveled(w http.ResponseWriter, r *http.Request) {
	var req mostTraveledRequest
	if err := h.decode(r, &req); err != nil {
		shared.RespondError(w, h.logger, err)
		return
	}

	result, err := h.service.MostTraveled(r.Context(), analytics.MostTraveledQuery{
		OriginCityCode: strings.ToUpper(req.OriginCityCode),
		Period:         req.Period,
		Max:            req.Max,
		Sort:           req.Sort,
	})
	if err != nil {
		shared.RespondError(w, h.logger, err)
		return
	}
	h.respondResult(w, result)
}

// respondResult maps the analytics union onto transport codes: no-data is a
// 404 carrying the message and echoed query, the ranked variants are 200s.
func (h *Handler) respondResult(w http.ResponseWriter, result *analytics.Result) {
	status := http.StatusOK
	if result.Type == analytics.ResultNoData {
		status = http.StatusNotFound
	}
	shared.RespondJSON(w, status, result)
}

func (h *Handler) decode(r *http.Request, dest any) error {
	if err := json.NewDecoder(r.Body).Decode(dest); err != nil {
		return shared.NewValidationError("malformed request body")
	}
	if err := h.validate.Struct(dest); err != nil {
		var fieldErrs validator.ValidationErrors
		if errors.As(err, &fieldErrs) && len(fieldErrs) > 0 {
			fields := make([]string, 0, len(fieldErrs))
			for _, fe := range fieldErrs {
				fields = append(fields, fe.Field())
			}
			return shared.NewValidationError("invalid request: %s", strings.Join(fields, ", "))
		}
		return shared.NewValidationError("invalid request")
	}
	return nil
}
