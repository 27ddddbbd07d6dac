package handler

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/merchkit/order-service/internal/domain/order"
)

// createOrderRequest is the body for POST /orders.
type createOrderRequest struct {
	CustomerID  int64  `json:"customerId"`
	Amount      int64  `json:"amount"`
	TotalAmount int64  `json:"totalAmount"`
	Discount    int64  `json:"discount"`
	Status      string `json:"status,omitempty"`
}

// createOrderResponse acknowledges a placed order.
type createOrderResponse struct {
	ID         int64     `json:"id"`
	TrackingID uuid.UUID `json:"trackingId"`
}

// updateOrderRequest is the body for PUT /orders/{id}. The id in the path
// wins; a body id is ignored. A missing date preserves the stored one.
type updateOrderRequest struct {
	Description string       `json:"description"`
	OrderDate   *time.Time   `json:"date,omitempty"`
	Amount      int64        `json:"amount"`
	TotalAmount int64        `json:"totalAmount"`
	Discount    int64        `json:"discount"`
	Address     string       `json:"address"`
	Payment     string       `json:"payment"`
	Status      string       `json:"status"`
	CustomerID  int64        `json:"customerId"`
	CouponCode  string       `json:"couponCode"`
	Items       []order.Item `json:"items"`
}

func (h *Handler) createOrder(w http.ResponseWriter, r *http.Request) {
	var req createOrderRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	o, err := h.orders.Create(r.Context(), order.CreateRequest{
		CustomerID:  req.CustomerID,
		Amount:      req.Amount,
		TotalAmount: req.TotalAmount,
		Discount:    req.Discount,
		Status:      req.Status,
	})
	if err != nil {
		respondDomainError(w, r, err)
		return
	}

	respondJSON(w, http.StatusCreated, createOrderResponse{
		ID:         o.ID,
		TrackingID: o.TrackingID,
	})
}

func (h *Handler) getOrder(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	view, err := h.orders.GetOrder(r.Context(), id)
	if err != nil {
		respondDomainError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, view)
}

func (h *Handler) getOrderByTracking(w http.ResponseWriter, r *http.Request) {
	trackingID, err := uuid.Parse(chi.URLParam(r, "trackingID"))
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid tracking id")
		return
	}

	view, err := h.orders.GetByTracking(r.Context(), trackingID)
	if err != nil {
		respondDomainError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, view)
}

func (h *Handler) getCart(w http.ResponseWriter, r *http.Request) {
	customerID, ok := pathID(w, r, "customerID")
	if !ok {
		return
	}

	view, err := h.orders.GetCart(r.Context(), customerID)
	if err != nil {
		respondDomainError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, view)
}

func (h *Handler) listCustomerOrders(w http.ResponseWriter, r *http.Request) {
	customerID, ok := pathID(w, r, "customerID")
	if !ok {
		return
	}

	views, err := h.orders.ListCustomerOrders(r.Context(), customerID)
	if err != nil {
		respondDomainError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, views)
}

func (h *Handler) updateOrder(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	var req updateOrderRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	view, err := h.orders.Update(r.Context(), order.UpdateRequest{
		ID:          id,
		Description: req.Description,
		OrderDate:   req.OrderDate,
		Amount:      req.Amount,
		TotalAmount: req.TotalAmount,
		Discount:    req.Discount,
		Address:     req.Address,
		Payment:     req.Payment,
		Status:      req.Status,
		CustomerID:  req.CustomerID,
		CouponCode:  req.CouponCode,
		Items:       req.Items,
	})
	if err != nil {
		respondDomainError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, view)
}

// pathID parses a numeric path parameter, answering 400 itself on failure.
func pathID(w http.ResponseWriter, r *http.Request, name string) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, name), 10, 64)
	if err != nil || id <= 0 {
		respondError(w, http.StatusBadRequest, "invalid "+name)
		return 0, false
	}
	return id, true
}
