package handler

import (
	"context"
	"net/http"

	"github.com/dashcrm-api/internal/application/metrics"
	"github.com/dashcrm-api/internal/domain"
	"github.com/dashcrm-api/internal/pkg/validate"
	"github.com/dashcrm-api/internal/transport/http/middleware"
)

// MetricsHandler serves the sales report endpoints.
type MetricsHandler struct {
	svc *metrics.Service
}

func NewMetricsHandler(svc *metrics.Service) *MetricsHandler {
	return &MetricsHandler{svc: svc}
}

func (h *MetricsHandler) Funnel(w http.ResponseWriter, r *http.Request) {
	h.report(w, r, func(ctx context.Context, accountID string, f domain.MetricsFilters) (any, error) {
		return h.svc.Funnel(ctx, accountID, f)
	})
}

func (h *MetricsHandler) Revenue(w http.ResponseWriter, r *http.Request) {
	h.report(w, r, func(ctx context.Context, accountID string, f domain.MetricsFilters) (any, error) {
		return h.svc.Revenue(ctx, accountID, f)
	})
}

func (h *MetricsHandler) Conversion(w http.ResponseWriter, r *http.Request) {
	h.report(w, r, func(ctx context.Context, accountID string, f domain.MetricsFilters) (any, error) {
		return h.svc.Conversion(ctx, accountID, f)
	})
}

func (h *MetricsHandler) Loss(w http.ResponseWriter, r *http.Request) {
	h.report(w, r, func(ctx context.Context, accountID string, f domain.MetricsFilters) (any, error) {
		return h.svc.Loss(ctx, accountID, f)
	})
}

func (h *MetricsHandler) Dashboard(w http.ResponseWriter, r *http.Request) {
	h.report(w, r, func(ctx context.Context, accountID string, f domain.MetricsFilters) (any, error) {
		return h.svc.Dashboard(ctx, accountID, f)
	})
}

func (h *MetricsHandler) report(w http.ResponseWriter, r *http.Request,
	build func(ctx context.Context, accountID string, f domain.MetricsFilters) (any, error)) {
	claims, ok := middleware.ClaimsFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized", "UNAUTHORIZED")
		return
	}

	filters := metricsFiltersFromQuery(r)
	if err := validate.Struct(filters); err != nil {
		writeError(w, http.StatusBadRequest, err.Error(), "INVALID_INPUT")
		return
	}

	report, err := build(r.Context(), claims.UserID, filters)
	if err != nil {
		httpError(w, err)
		return
	}
	writeData(w, http.StatusOK, report)
}

func metricsFiltersFromQuery(r *http.Request) domain.MetricsFilters {
	q := r.URL.Query()
	return domain.MetricsFilters{
		PanelID:   q.Get("panelId"),
		StartDate: q.Get("startDate"),
		EndDate:   q.Get("endDate"),
		UserID:    q.Get("userId"),
		ChannelID: q.Get("channelId"),
		StepID:    q.Get("stepId"),
	}
}
