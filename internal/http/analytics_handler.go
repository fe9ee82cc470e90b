package http

import (
	"context"
	"net/http"
	"time"

	"github.com/fjod/go_inventory/internal/service"
	"github.com/go-chi/chi/v5"
)

type AnalyticsHandler struct {
	analytics *service.AnalyticsService
	timeout   time.Duration
}

func NewAnalyticsHandler(analytics *service.AnalyticsService, timeout time.Duration) *AnalyticsHandler {
	return &AnalyticsHandler{
		analytics: analytics,
		timeout:   timeout,
	}
}

// GET /api/v1/dashboard
func (h *AnalyticsHandler) Dashboard(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	stats, err := h.analytics.Dashboard(ctx)
	if err != nil {
		handleServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, stats)
}

// GET /api/v1/analytics/{report}
func (h *AnalyticsHandler) Report(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	report, err := h.analytics.Report(ctx, chi.URLParam(r, "report"))
	if err != nil {
		handleServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, report)
}
