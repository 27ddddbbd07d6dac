package peer

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/merchkit/order-service/internal/domain/order"
)

var _ order.ProductLookup = (*ProductClient)(nil)

// ProductClient looks up products in the product catalog service.
type ProductClient struct {
	baseURL string
	hc      *http.Client
}

// NewProductClient constructs a product client.
func NewProductClient(baseURL, token string, timeout time.Duration) *ProductClient {
	return &ProductClient{
		baseURL: baseURL,
		hc:      newHTTPClient(token, timeout),
	}
}

// GetProduct fetches the product reference record by id.
func (c *ProductClient) GetProduct(ctx context.Context, productID int64) (*order.ProductRef, error) {
	var ref order.ProductRef
	url := joinURL(c.baseURL, fmt.Sprintf("/api/products/%d", productID))
	if err := getJSON(ctx, c.hc, url, &ref); err != nil {
		return nil, err
	}
	return &ref, nil
}
