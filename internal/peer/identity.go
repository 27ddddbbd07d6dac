package peer

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/merchkit/order-service/internal/domain/order"
)

var _ order.CustomerLookup = (*IdentityClient)(nil)

// IdentityClient looks up customers in the identity service.
type IdentityClient struct {
	baseURL string
	hc      *http.Client
}

// NewIdentityClient constructs an identity client. token is the
// inter-service bearer token; timeout bounds each request at the transport.
func NewIdentityClient(baseURL, token string, timeout time.Duration) *IdentityClient {
	return &IdentityClient{
		baseURL: baseURL,
		hc:      newHTTPClient(token, timeout),
	}
}

// GetCustomer fetches the customer reference record by id.
func (c *IdentityClient) GetCustomer(ctx context.Context, customerID int64) (*order.CustomerRef, error) {
	var ref order.CustomerRef
	url := joinURL(c.baseURL, fmt.Sprintf("/api/users/%d", customerID))
	if err := getJSON(ctx, c.hc, url, &ref); err != nil {
		return nil, err
	}
	return &ref, nil
}
