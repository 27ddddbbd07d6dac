// Package peer holds the HTTP lookup clients for the three reference-data
// services this core depends on: identity, coupon, and product. Each client
// is a single synchronous request/response keyed by an opaque identifier;
// the services' internals are out of scope.
package peer

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/go-faster/errors"
)

// ErrNotFound signals that the peer answered and the requested record does
// not exist. Transport and server failures are returned as wrapped errors so
// callers can tell absence from unavailability.
var ErrNotFound = errors.New("peer record not found")

// bearerTransport injects the inter-service bearer token into every outgoing
// request.
type bearerTransport struct {
	token string
	base  http.RoundTripper
}

func (t *bearerTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	clone := req.Clone(req.Context())
	clone.Header.Set("Authorization", "Bearer "+t.token)
	return t.base.RoundTrip(clone)
}

// newHTTPClient builds the shared client. The timeout is a transport-level
// ceiling; callers additionally bound each lookup with a context deadline.
func newHTTPClient(token string, timeout time.Duration) *http.Client {
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	c := &http.Client{Timeout: timeout}
	if token != "" {
		c.Transport = &bearerTransport{token: token, base: http.DefaultTransport}
	}
	return c
}

// getJSON performs a GET against url and decodes a 200 response into out.
// 404 and 204 both map to ErrNotFound.
func getJSON(ctx context.Context, hc *http.Client, url string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return errors.Wrap(err, "build request")
	}

	resp, err := hc.Do(req)
	if err != nil {
		return errors.Wrap(err, "request")
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK:
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return errors.Wrap(err, "decode response")
		}
		return nil
	case http.StatusNotFound, http.StatusNoContent:
		return ErrNotFound
	default:
		return errors.Errorf("unexpected peer status: %d", resp.StatusCode)
	}
}

func joinURL(base, path string) string {
	return strings.TrimRight(base, "/") + path
}
