package http_test

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aussiebroadwan/ut4master/pkg/authsdk"
)

func TestHealth(t *testing.T) {
	t.Parallel()
	s := newTestServer(t)
	sdk := authsdk.NewSDKClient(s.URL, "", "")

	live, err := sdk.GetLiveness(t.Context())
	require.NoError(t, err)
	assert.Equal(t, "ok", live.Status)
	assert.Equal(t, "test", live.Version)
	assert.Nil(t, live.Checks)

	ready, err := sdk.GetReadiness(t.Context())
	require.NoError(t, err)
	assert.Equal(t, "ok", ready.Status)
	require.NotNil(t, ready.Checks)
	assert.Equal(t, "ok", ready.Checks.Database)

	require.NoError(t, s.store.Close())

	resp, body := s.do(t, http.MethodGet, "/readyz", nil, nil)
	require.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)
	assert.Contains(t, body, `"degraded"`)
	assert.Contains(t, body, `"unreachable"`)

	// Liveness does not depend on the store.
	_, err = sdk.GetLiveness(t.Context())
	require.NoError(t, err)
}

func TestMetricsEndpoint(t *testing.T) {
	t.Parallel()
	s := newTestServer(t)

	resp, body := s.do(t, http.MethodGet, "/metrics", nil, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, body, "go_goroutines")
}
