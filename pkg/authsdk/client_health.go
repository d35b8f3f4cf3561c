package authsdk

import (
	"context"
	"net/http"
)

// GetLiveness reports whether the service process is up.
func (c *SDKClient) GetLiveness(ctx context.Context) (*HealthResponse, error) {
	var health HealthResponse
	if err := c.send(ctx, request{method: http.MethodGet, path: "/livez"}, &health); err != nil {
		return nil, err
	}
	return &health, nil
}

// GetReadiness reports whether the service can reach its store. A degraded
// service answers 503, which is returned as an *OAuth2Error.
func (c *SDKClient) GetReadiness(ctx context.Context) (*HealthResponse, error) {
	var health HealthResponse
	if err := c.send(ctx, request{method: http.MethodGet, path: "/readyz"}, &health); err != nil {
		return nil, err
	}
	return &health, nil
}
