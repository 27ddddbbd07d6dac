// Package handler exposes the order service over HTTP. Routing is chi;
// serialization is plain JSON; business logic lives in the domain packages.
package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-faster/errors"
	"github.com/go-faster/sdk/zctx"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/merchkit/order-service/internal/domain/analytics"
	"github.com/merchkit/order-service/internal/domain/order"
)

// OrderService is the slice of the order domain the handlers consume.
type OrderService interface {
	Create(ctx context.Context, req order.CreateRequest) (*order.Order, error)
	GetOrder(ctx context.Context, id int64) (order.View, error)
	GetByTracking(ctx context.Context, trackingID uuid.UUID) (order.View, error)
	GetCart(ctx context.Context, customerID int64) (order.View, error)
	ListCustomerOrders(ctx context.Context, customerID int64) ([]order.View, error)
	ListActiveOrders(ctx context.Context) ([]order.View, error)
	Update(ctx context.Context, req order.UpdateRequest) (order.View, error)
	ChangeStatus(ctx context.Context, orderID int64, label string) (order.View, error)
}

// AnalyticsService computes the admin analytics snapshot.
type AnalyticsService interface {
	ComputeSnapshot(ctx context.Context, ref time.Time) (*analytics.Snapshot, error)
}

// Handler holds the HTTP handlers for the order API.
type Handler struct {
	orders    OrderService
	analytics AnalyticsService
	now       func() time.Time
}

// NewHandler constructs a Handler.
func NewHandler(orders OrderService, analyticsSvc AnalyticsService) *Handler {
	return &Handler{
		orders:    orders,
		analytics: analyticsSvc,
		now:       time.Now,
	}
}

// Routes registers the API routes on r. The caller is expected to mount
// authentication and the rest of the middleware chain around it.
func (h *Handler) Routes(r chi.Router) {
	r.Route("/orders", func(r chi.Router) {
		r.Post("/", h.createOrder)
		r.Get("/{id}", h.getOrder)
		r.Put("/{id}", h.updateOrder)
		r.Get("/tracking/{trackingID}", h.getOrderByTracking)
	})
	r.Route("/customers/{customerID}", func(r chi.Router) {
		r.Get("/cart", h.getCart)
		r.Get("/orders", h.listCustomerOrders)
	})
	r.Route("/admin", func(r chi.Router) {
		r.Get("/orders", h.listActiveOrders)
		r.Put("/orders/{id}/status/{status}", h.changeOrderStatus)
		r.Get("/analytics", h.getAnalytics)
	})
}

// errorResponse is the JSON body for all error outcomes.
type errorResponse struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

func respondJSON(w http.ResponseWriter, code int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(body)
}

func respondError(w http.ResponseWriter, code int, message string) {
	respondJSON(w, code, errorResponse{Code: code, Message: message})
}

// respondDomainError maps domain errors onto HTTP outcomes: absence is 404,
// bad input is 400, a lost concurrency race or illegal transition is 409,
// and everything else is a logged 500.
func respondDomainError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, order.ErrNotFound):
		respondError(w, http.StatusNotFound, "order not found")
	case errors.Is(err, order.ErrUnknownStatus):
		respondError(w, http.StatusBadRequest, "unknown order status")
	case errors.Is(err, order.ErrNegativeAmount):
		respondError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, order.ErrVersionConflict):
		respondError(w, http.StatusConflict, "order was modified concurrently")
	default:
		var itErr *order.InvalidTransitionError
		if errors.As(err, &itErr) {
			respondError(w, http.StatusConflict, itErr.Error())
			return
		}
		zctx.From(r.Context()).Error("request failed", zap.Error(err))
		respondError(w, http.StatusInternalServerError, "internal error")
	}
}
