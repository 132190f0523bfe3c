package http

import (
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/lorrc/asset-desk-backend/internal/core/domain"
	apperrors "github.com/lorrc/asset-desk-backend/internal/core/errors"
	"github.com/lorrc/asset-desk-backend/internal/core/ports"
)

type DashboardHandler struct {
	dashboardService ports.DashboardService
	errorHandler     *ErrorHandler
	location         *time.Location
	clock            func() time.Time
	logger           *slog.Logger
}

func NewDashboardHandler(
	dashboardService ports.DashboardService,
	errorHandler *ErrorHandler,
	location *time.Location,
	logger *slog.Logger,
) *DashboardHandler {
	return &DashboardHandler{
		dashboardService: dashboardService,
		errorHandler:     errorHandler,
		location:         location,
		clock:            time.Now,
		logger:           logger.With("handler", "dashboard"),
	}
}

func (h *DashboardHandler) RegisterRoutes(r chi.Router) {
	r.Get("/summary", h.HandleSummary)
	r.Get("/chart", h.HandleChart)
}

// HandleSummary handles GET /dashboard/summary
func (h *DashboardHandler) HandleSummary(w http.ResponseWriter, r *http.Request) {
	actor, ok := currentUser(w, r)
	if !ok {
		return
	}

	summary, err := h.dashboardService.Summary(r.Context(), actor)
	if HandleError(w, r, err, h.errorHandler) {
		return
	}

	WriteJSON(w, http.StatusOK, toDashboardSummaryResponse(summary))
}

// HandleChart handles GET /dashboard/chart?anchor=YYYY-MM-DD. The anchor
// defaults to today in the report time zone.
func (h *DashboardHandler) HandleChart(w http.ResponseWriter, r *http.Request) {
	actor, ok := currentUser(w, r)
	if !ok {
		return
	}

	anchor := h.clock().In(h.location)
	if raw := strings.TrimSpace(r.URL.Query().Get("anchor")); raw != "" {
		parsed, err := time.ParseInLocation(domain.DateKeyLayout, raw, h.location)
		if err != nil {
			h.errorHandler.Handle(w, r, apperrors.NewBadRequestError(err, "Parameter \"anchor\" must be a date (YYYY-MM-DD)"))
			return
		}
		anchor = parsed
	}

	chart, err := h.dashboardService.Chart(r.Context(), actor, anchor)
	if HandleError(w, r, err, h.errorHandler) {
		return
	}

	WriteList(w, chart)
}
