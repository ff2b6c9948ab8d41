package gateway_test

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/require"
)

type healthResponse struct {
	Status  string `json:"status"`
	Version string `json:"version"`
	Checks  *struct {
		Database string `json:"database"`
	} `json:"checks"`
}

// TestLivezEndpoint verifies the liveness check endpoint.
func TestLivezEndpoint(t *testing.T) {
	baseURL, _, cleanup := setupGatewayContainer(t)
	defer cleanup()

	var health healthResponse
	status := call(t, baseURL, http.MethodGet, "/livez", "", nil, &health)
	require.Equal(t, http.StatusOK, status)
	require.Equal(t, "ok", health.Status)

	t.Logf("Livez endpoint is healthy, version %s", health.Version)
}

// TestReadyzEndpoint verifies the readiness check reports the state database.
func TestReadyzEndpoint(t *testing.T) {
	baseURL, _, cleanup := setupGatewayContainer(t)
	defer cleanup()

	var health healthResponse
	status := call(t, baseURL, http.MethodGet, "/readyz", "", nil, &health)
	require.Equal(t, http.StatusOK, status)
	require.Equal(t, "ok", health.Status)
	require.NotNil(t, health.Checks)
	require.Equal(t, "ok", health.Checks.Database)

	t.Logf("Readyz endpoint is healthy")
}
