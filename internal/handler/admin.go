package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

func (h *Handler) listActiveOrders(w http.ResponseWriter, r *http.Request) {
	views, err := h.orders.ListActiveOrders(r.Context())
	if err != nil {
		respondDomainError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, views)
}

func (h *Handler) changeOrderStatus(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	view, err := h.orders.ChangeStatus(r.Context(), id, chi.URLParam(r, "status"))
	if err != nil {
		respondDomainError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, view)
}

func (h *Handler) getAnalytics(w http.ResponseWriter, r *http.Request) {
	snapshot, err := h.analytics.ComputeSnapshot(r.Context(), h.now())
	if err != nil {
		respondDomainError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, snapshot)
}
