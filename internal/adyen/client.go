package adyen

import (
	"context"
	"fmt"
	"time"

	"adyenbridge/internal/pkg/httpclient"
)

// GatewayError marks a transport-level failure on the gateway side
// (HTTP >= 500). It is never handed to the response normalizer: a gateway
// outage must stay distinguishable from a declined payment.
type GatewayError struct {
	Gateway    string
	Surface    Surface
	Path       string
	StatusCode int
	Body       []byte
}

func (e *GatewayError) Error() string {
	return fmt.Sprintf("%s gateway failure: %s %s returned %d", e.Gateway, e.Surface, e.Path, e.StatusCode)
}

// Client resolves routes and issues authenticated calls against the gateway.
// It holds no per-call state and is safe for concurrent use.
type Client struct {
	creds Credentials
	http  *httpclient.Client
	urls  map[Surface]string
}

// NewClient creates a gateway client for one credential set.
func NewClient(creds Credentials) *Client {
	return &Client{
		creds: creds,
		http: httpclient.New().
			WithTimeout(30 * time.Second).
			WithHeader("X-Api-Key", creds.APIKey),
		urls: baseURLs[creds.environment()],
	}
}

// WithBaseURLs overrides the environment URL map. Used by tests to point the
// client at a local server.
func (c *Client) WithBaseURLs(urls map[Surface]string) *Client {
	c.urls = urls
	return c
}

// invoke resolves the named operation, substitutes path parameters, posts the
// payload and returns the raw (status, body) pair. Responses with HTTP >= 500
// come back as a *GatewayError instead.
func (c *Client) invoke(ctx context.Context, operation string, pathParams map[string]string, payload interface{}) (int, []byte, error) {
	route, err := findRoute(operation)
	if err != nil {
		return 0, nil, err
	}
	path, err := resolvePath(route, pathParams)
	if err != nil {
		return 0, nil, err
	}

	resp, err := c.http.Post(ctx, c.urls[route.surface]+path, payload)
	if err != nil {
		return 0, nil, fmt.Errorf("adyen: %s: %w", operation, err)
	}

	if resp.StatusCode >= 500 {
		return 0, nil, &GatewayError{
			Gateway:    PaymentGateway,
			Surface:    route.surface,
			Path:       path,
			StatusCode: resp.StatusCode,
			Body:       resp.Body,
		}
	}

	return resp.StatusCode, resp.Body, nil
}
