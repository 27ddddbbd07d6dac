package peer

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIdentityClient_GetCustomer(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/users/7", r.URL.Path)
		assert.Equal(t, "Bearer s3cret", r.Header.Get("Authorization"))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"id":7,"name":"Ada Lovelace","email":"ada@example.com"}`))
	}))
	defer srv.Close()

	c := NewIdentityClient(srv.URL, "s3cret", time.Second)
	ref, err := c.GetCustomer(context.Background(), 7)

	require.NoError(t, err)
	assert.Equal(t, int64(7), ref.ID)
	assert.Equal(t, "Ada Lovelace", ref.Name)
	assert.Equal(t, "ada@example.com", ref.Email)
}

func TestIdentityClient_NotFound(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	c := NewIdentityClient(srv.URL, "s3cret", time.Second)
	_, err := c.GetCustomer(context.Background(), 404)

	require.ErrorIs(t, err, ErrNotFound)
}

func TestIdentityClient_NoContentMapsToNotFound(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}))
	defer srv.Close()

	c := NewIdentityClient(srv.URL, "", time.Second)
	_, err := c.GetCustomer(context.Background(), 7)

	require.ErrorIs(t, err, ErrNotFound)
}

func TestIdentityClient_ServerErrorIsNotNotFound(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	c := NewIdentityClient(srv.URL, "", time.Second)
	_, err := c.GetCustomer(context.Background(), 7)

	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrNotFound)
	assert.Contains(t, err.Error(), "500")
}

func TestIdentityClient_NoTokenOmitsHeader(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Empty(t, r.Header.Get("Authorization"))
		_, _ = w.Write([]byte(`{"id":1,"name":"n","email":"e"}`))
	}))
	defer srv.Close()

	c := NewIdentityClient(srv.URL, "", time.Second)
	_, err := c.GetCustomer(context.Background(), 1)

	require.NoError(t, err)
}

func TestCouponClient_GetCoupon(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/coupons/WELCOME10", r.URL.Path)
		_, _ = w.Write([]byte(`{"name":"Welcome discount","code":"WELCOME10","discount":10,"expirationDate":"2025-01-01T00:00:00Z"}`))
	}))
	defer srv.Close()

	c := NewCouponClient(srv.URL, "s3cret", time.Second)
	ref, err := c.GetCoupon(context.Background(), "WELCOME10")

	require.NoError(t, err)
	assert.Equal(t, "Welcome discount", ref.Name)
	assert.Equal(t, "WELCOME10", ref.Code)
	assert.Equal(t, int64(10), ref.Discount)
	assert.Equal(t, 2025, ref.ExpirationDate.Year())
}

func TestCouponClient_EscapesCode(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/coupons/50%25%20off", r.URL.EscapedPath())
		_, _ = w.Write([]byte(`{"name":"Half price","code":"50% off","discount":50}`))
	}))
	defer srv.Close()

	c := NewCouponClient(srv.URL, "", time.Second)
	ref, err := c.GetCoupon(context.Background(), "50% off")

	require.NoError(t, err)
	assert.Equal(t, "50% off", ref.Code)
}

func TestProductClient_GetProduct(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/products/100", r.URL.Path)
		_, _ = w.Write([]byte(`{"id":100,"name":"Keyboard","price":12900,"categoryName":"peripherals"}`))
	}))
	defer srv.Close()

	c := NewProductClient(srv.URL, "s3cret", time.Second)
	ref, err := c.GetProduct(context.Background(), 100)

	require.NoError(t, err)
	assert.Equal(t, int64(100), ref.ID)
	assert.Equal(t, "Keyboard", ref.Name)
	assert.Equal(t, int64(12900), ref.Price)
	assert.Equal(t, "peripherals", ref.Category)
}

func TestGetJSON_ContextDeadline(t *testing.T) {
	block := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		<-block
	}))
	defer srv.Close()
	defer close(block)

	c := NewIdentityClient(srv.URL, "", time.Minute)
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Millisecond)
	defer cancel()

	_, err := c.GetCustomer(ctx, 1)

	require.Error(t, err)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}
