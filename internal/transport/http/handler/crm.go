package handler

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/dashcrm-api/internal/application/crm"
	"github.com/dashcrm-api/internal/domain"
	"github.com/dashcrm-api/internal/pkg/validate"
	"github.com/dashcrm-api/internal/transport/http/middleware"
)

// CrmHandler proxies panel, card and agent reads for the authenticated account.
type CrmHandler struct {
	svc *crm.Service
}

func NewCrmHandler(svc *crm.Service) *CrmHandler {
	return &CrmHandler{svc: svc}
}

func (h *CrmHandler) Panels(w http.ResponseWriter, r *http.Request) {
	claims, ok := middleware.ClaimsFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized", "UNAUTHORIZED")
		return
	}
	page, err := h.svc.Panels(r.Context(), claims.UserID)
	if err != nil {
		httpError(w, err)
		return
	}
	writeData(w, http.StatusOK, page)
}

func (h *CrmHandler) PanelByID(w http.ResponseWriter, r *http.Request) {
	claims, ok := middleware.ClaimsFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized", "UNAUTHORIZED")
		return
	}
	panel, err := h.svc.PanelByID(r.Context(), claims.UserID, chi.URLParam(r, "id"))
	if err != nil {
		httpError(w, err)
		return
	}
	writeData(w, http.StatusOK, panel)
}

func (h *CrmHandler) Cards(w http.ResponseWriter, r *http.Request) {
	claims, ok := middleware.ClaimsFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized", "UNAUTHORIZED")
		return
	}
	filters := cardFiltersFromQuery(r)
	if err := validate.Struct(filters); err != nil {
		writeError(w, http.StatusBadRequest, err.Error(), "INVALID_INPUT")
		return
	}
	page, err := h.svc.Cards(r.Context(), claims.UserID, filters)
	if err != nil {
		httpError(w, err)
		return
	}
	writeData(w, http.StatusOK, page)
}

func (h *CrmHandler) CardByID(w http.ResponseWriter, r *http.Request) {
	claims, ok := middleware.ClaimsFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized", "UNAUTHORIZED")
		return
	}
	card, err := h.svc.CardByID(r.Context(), claims.UserID, chi.URLParam(r, "id"))
	if err != nil {
		httpError(w, err)
		return
	}
	writeData(w, http.StatusOK, card)
}

func (h *CrmHandler) AgentsByPanel(w http.ResponseWriter, r *http.Request) {
	claims, ok := middleware.ClaimsFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized", "UNAUTHORIZED")
		return
	}
	page, err := h.svc.AgentsByPanel(r.Context(), claims.UserID, chi.URLParam(r, "panelId"))
	if err != nil {
		httpError(w, err)
		return
	}
	writeData(w, http.StatusOK, page)
}

func cardFiltersFromQuery(r *http.Request) domain.CardFilters {
	q := r.URL.Query()
	page, _ := strconv.Atoi(q.Get("page"))
	pageSize, _ := strconv.Atoi(q.Get("pageSize"))
	return domain.CardFilters{
		PanelID:   q.Get("panelId"),
		StartDate: q.Get("startDate"),
		EndDate:   q.Get("endDate"),
		UserID:    q.Get("userId"),
		ChannelID: q.Get("channelId"),
		StepID:    q.Get("stepId"),
		Page:      page,
		PageSize:  pageSize,
	}
}
