package peer

import (
	"context"
	"net/http"
	"net/url"
	"time"

	"github.com/merchkit/order-service/internal/domain/order"
)

var _ order.CouponLookup = (*CouponClient)(nil)

// CouponClient looks up coupons in the coupon service by code.
type CouponClient struct {
	baseURL string
	hc      *http.Client
}

// NewCouponClient constructs a coupon client.
func NewCouponClient(baseURL, token string, timeout time.Duration) *CouponClient {
	return &CouponClient{
		baseURL: baseURL,
		hc:      newHTTPClient(token, timeout),
	}
}

// GetCoupon fetches the coupon reference record for the given code.
func (c *CouponClient) GetCoupon(ctx context.Context, code string) (*order.CouponRef, error) {
	var ref order.CouponRef
	u := joinURL(c.baseURL, "/api/coupons/"+url.PathEscape(code))
	if err := getJSON(ctx, c.hc, u, &ref); err != nil {
		return nil, err
	}
	return &ref, nil
}
