package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-faster/errors"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/merchkit/order-service/internal/domain/analytics"
	"github.com/merchkit/order-service/internal/domain/order"
)

// --- Mock implementations ---

type mockOrderService struct {
	createFn       func(ctx context.Context, req order.CreateRequest) (*order.Order, error)
	getOrderFn     func(ctx context.Context, id int64) (order.View, error)
	getTrackingFn  func(ctx context.Context, trackingID uuid.UUID) (order.View, error)
	getCartFn      func(ctx context.Context, customerID int64) (order.View, error)
	listCustomerFn func(ctx context.Context, customerID int64) ([]order.View, error)
	listActiveFn   func(ctx context.Context) ([]order.View, error)
	updateFn       func(ctx context.Context, req order.UpdateRequest) (order.View, error)
	changeStatusFn func(ctx context.Context, orderID int64, label string) (order.View, error)
}

func (m *mockOrderService) Create(ctx context.Context, req order.CreateRequest) (*order.Order, error) {
	return m.createFn(ctx, req)
}

func (m *mockOrderService) GetOrder(ctx context.Context, id int64) (order.View, error) {
	return m.getOrderFn(ctx, id)
}

func (m *mockOrderService) GetByTracking(ctx context.Context, trackingID uuid.UUID) (order.View, error) {
	return m.getTrackingFn(ctx, trackingID)
}

func (m *mockOrderService) GetCart(ctx context.Context, customerID int64) (order.View, error) {
	return m.getCartFn(ctx, customerID)
}

func (m *mockOrderService) ListCustomerOrders(ctx context.Context, customerID int64) ([]order.View, error) {
	return m.listCustomerFn(ctx, customerID)
}

func (m *mockOrderService) ListActiveOrders(ctx context.Context) ([]order.View, error) {
	return m.listActiveFn(ctx)
}

func (m *mockOrderService) Update(ctx context.Context, req order.UpdateRequest) (order.View, error) {
	return m.updateFn(ctx, req)
}

func (m *mockOrderService) ChangeStatus(ctx context.Context, orderID int64, label string) (order.View, error) {
	return m.changeStatusFn(ctx, orderID, label)
}

type mockAnalyticsService struct {
	snapshot *analytics.Snapshot
	err      error
	gotRef   time.Time
}

func (m *mockAnalyticsService) ComputeSnapshot(_ context.Context, ref time.Time) (*analytics.Snapshot, error) {
	m.gotRef = ref
	return m.snapshot, m.err
}

// --- Helpers ---

func newTestRouter(svc OrderService, an AnalyticsService) http.Handler {
	h := NewHandler(svc, an)
	r := chi.NewRouter()
	h.Routes(r)
	return r
}

func doRequest(t *testing.T, router http.Handler, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

// --- Tests ---

func TestCreateOrder(t *testing.T) {
	tracking := uuid.New()
	svc := &mockOrderService{
		createFn: func(_ context.Context, req order.CreateRequest) (*order.Order, error) {
			assert.Equal(t, int64(7), req.CustomerID)
			assert.Equal(t, int64(1000), req.Amount)
			return &order.Order{ID: 42, TrackingID: tracking}, nil
		},
	}
	router := newTestRouter(svc, nil)

	rec := doRequest(t, router, http.MethodPost, "/orders",
		`{"customerId":7,"amount":1000,"totalAmount":1000}`)

	require.Equal(t, http.StatusCreated, rec.Code)
	var resp createOrderResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, int64(42), resp.ID)
	assert.Equal(t, tracking, resp.TrackingID)
}

func TestCreateOrder_BadBody(t *testing.T) {
	router := newTestRouter(&mockOrderService{}, nil)

	rec := doRequest(t, router, http.MethodPost, "/orders", `{not json`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestCreateOrder_NegativeAmount(t *testing.T) {
	svc := &mockOrderService{
		createFn: func(_ context.Context, _ order.CreateRequest) (*order.Order, error) {
			return nil, order.ErrNegativeAmount
		},
	}
	router := newTestRouter(svc, nil)

	rec := doRequest(t, router, http.MethodPost, "/orders", `{"amount":-1}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestGetOrder(t *testing.T) {
	svc := &mockOrderService{
		getOrderFn: func(_ context.Context, id int64) (order.View, error) {
			assert.Equal(t, int64(42), id)
			return order.View{ID: 42, Status: order.StatusPlaced, CustomerName: "Ada"}, nil
		},
	}
	router := newTestRouter(svc, nil)

	rec := doRequest(t, router, http.MethodGet, "/orders/42", "")

	require.Equal(t, http.StatusOK, rec.Code)
	var view order.View
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &view))
	assert.Equal(t, int64(42), view.ID)
	assert.Equal(t, "Ada", view.CustomerName)
}

func TestGetOrder_NotFound(t *testing.T) {
	svc := &mockOrderService{
		getOrderFn: func(_ context.Context, _ int64) (order.View, error) {
			return order.View{}, order.ErrNotFound
		},
	}
	router := newTestRouter(svc, nil)

	rec := doRequest(t, router, http.MethodGet, "/orders/42", "")

	require.Equal(t, http.StatusNotFound, rec.Code)
	var resp errorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, http.StatusNotFound, resp.Code)
}

func TestGetOrder_InvalidID(t *testing.T) {
	router := newTestRouter(&mockOrderService{}, nil)

	for _, path := range []string{"/orders/abc", "/orders/0", "/orders/-3"} {
		rec := doRequest(t, router, http.MethodGet, path, "")
		assert.Equal(t, http.StatusBadRequest, rec.Code, "path %s", path)
	}
}

func TestGetOrderByTracking(t *testing.T) {
	tracking := uuid.New()
	svc := &mockOrderService{
		getTrackingFn: func(_ context.Context, id uuid.UUID) (order.View, error) {
			assert.Equal(t, tracking, id)
			return order.View{ID: 1, TrackingID: tracking}, nil
		},
	}
	router := newTestRouter(svc, nil)

	rec := doRequest(t, router, http.MethodGet, "/orders/tracking/"+tracking.String(), "")
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestGetOrderByTracking_InvalidUUID(t *testing.T) {
	router := newTestRouter(&mockOrderService{}, nil)

	rec := doRequest(t, router, http.MethodGet, "/orders/tracking/not-a-uuid", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestGetCart(t *testing.T) {
	svc := &mockOrderService{
		getCartFn: func(_ context.Context, customerID int64) (order.View, error) {
			assert.Equal(t, int64(7), customerID)
			return order.View{ID: 3, Status: order.StatusPending}, nil
		},
	}
	router := newTestRouter(svc, nil)

	rec := doRequest(t, router, http.MethodGet, "/customers/7/cart", "")
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestListCustomerOrders(t *testing.T) {
	svc := &mockOrderService{
		listCustomerFn: func(_ context.Context, _ int64) ([]order.View, error) {
			return []order.View{{ID: 1}, {ID: 2}}, nil
		},
	}
	router := newTestRouter(svc, nil)

	rec := doRequest(t, router, http.MethodGet, "/customers/7/orders", "")

	require.Equal(t, http.StatusOK, rec.Code)
	var views []order.View
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &views))
	assert.Len(t, views, 2)
}

func TestUpdateOrder(t *testing.T) {
	svc := &mockOrderService{
		updateFn: func(_ context.Context, req order.UpdateRequest) (order.View, error) {
			assert.Equal(t, int64(42), req.ID)
			assert.Equal(t, "Shipped", req.Status)
			assert.Nil(t, req.OrderDate)
			return order.View{ID: 42, Status: order.StatusShipped}, nil
		},
	}
	router := newTestRouter(svc, nil)

	rec := doRequest(t, router, http.MethodPut, "/orders/42",
		`{"status":"Shipped","amount":100,"totalAmount":100,"customerId":7}`)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestUpdateOrder_RegressionConflict(t *testing.T) {
	svc := &mockOrderService{
		updateFn: func(_ context.Context, _ order.UpdateRequest) (order.View, error) {
			return order.View{}, &order.InvalidTransitionError{
				From: order.StatusShipped, To: order.StatusPlaced,
			}
		},
	}
	router := newTestRouter(svc, nil)

	rec := doRequest(t, router, http.MethodPut, "/orders/42", `{"status":"Placed"}`)
	assert.Equal(t, http.StatusConflict, rec.Code)
}

func TestChangeOrderStatus(t *testing.T) {
	svc := &mockOrderService{
		changeStatusFn: func(_ context.Context, orderID int64, label string) (order.View, error) {
			assert.Equal(t, int64(42), orderID)
			assert.Equal(t, "Shipped", label)
			return order.View{ID: 42, Status: order.StatusShipped}, nil
		},
	}
	router := newTestRouter(svc, nil)

	rec := doRequest(t, router, http.MethodPut, "/admin/orders/42/status/Shipped", "")
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestChangeOrderStatus_UnknownStatus(t *testing.T) {
	svc := &mockOrderService{
		changeStatusFn: func(_ context.Context, _ int64, _ string) (order.View, error) {
			return order.View{}, order.ErrUnknownStatus
		},
	}
	router := newTestRouter(svc, nil)

	rec := doRequest(t, router, http.MethodPut, "/admin/orders/42/status/Teleported", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestChangeOrderStatus_VersionConflict(t *testing.T) {
	svc := &mockOrderService{
		changeStatusFn: func(_ context.Context, _ int64, _ string) (order.View, error) {
			return order.View{}, order.ErrVersionConflict
		},
	}
	router := newTestRouter(svc, nil)

	rec := doRequest(t, router, http.MethodPut, "/admin/orders/42/status/Shipped", "")
	assert.Equal(t, http.StatusConflict, rec.Code)
}

func TestListActiveOrders(t *testing.T) {
	svc := &mockOrderService{
		listActiveFn: func(_ context.Context) ([]order.View, error) {
			return []order.View{{ID: 1, Status: order.StatusPlaced}}, nil
		},
	}
	router := newTestRouter(svc, nil)

	rec := doRequest(t, router, http.MethodGet, "/admin/orders", "")
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestGetAnalytics(t *testing.T) {
	an := &mockAnalyticsService{
		snapshot: &analytics.Snapshot{
			Placed: 4, Shipped: 2, Delivered: 3,
			CurrentMonthOrders: 2, CurrentMonthEarnings: 300,
		},
	}
	router := newTestRouter(&mockOrderService{}, an)

	rec := doRequest(t, router, http.MethodGet, "/admin/analytics", "")

	require.Equal(t, http.StatusOK, rec.Code)
	var snap analytics.Snapshot
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &snap))
	assert.Equal(t, int64(4), snap.Placed)
	assert.Equal(t, int64(300), snap.CurrentMonthEarnings)
	assert.False(t, an.gotRef.IsZero())
}

func TestGetAnalytics_SourceFailure(t *testing.T) {
	an := &mockAnalyticsService{err: errors.New("db unavailable")}
	router := newTestRouter(&mockOrderService{}, an)

	rec := doRequest(t, router, http.MethodGet, "/admin/analytics", "")
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}
