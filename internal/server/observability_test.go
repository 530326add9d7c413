package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type staticChecker struct {
	name string
	err  error
}

func (c *staticChecker) Name() string                       { return c.name }
func (c *staticChecker) CheckReady(_ context.Context) error { return c.err }

func startTestServer(t *testing.T) *Observability {
	t.Helper()
	srv := NewObservability("127.0.0.1:0", nil)
	require.NoError(t, srv.Start())
	t.Cleanup(func() { _ = srv.Close() })
	return srv
}

func get(t *testing.T, srv *Observability, path string) (*http.Response, HealthStatus) {
	t.Helper()
	resp, err := http.Get(fmt.Sprintf("http://%s%s", srv.Addr(), path))
	require.NoError(t, err)
	defer resp.Body.Close()

	var status HealthStatus
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&status))
	return resp, status
}

func TestHealthz(t *testing.T) {
	srv := startTestServer(t)

	resp, status := get(t, srv, "/healthz")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "ok", status.Status)
}

func TestHealthzDuringShutdown(t *testing.T) {
	srv := startTestServer(t)
	srv.SetShuttingDown()

	resp, status := get(t, srv, "/healthz")
	assert.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)
	assert.Equal(t, "shutting_down", status.Status)
}

func TestReadyzNoChecks(t *testing.T) {
	srv := startTestServer(t)

	resp, status := get(t, srv, "/readyz")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "ready", status.Status)
}

func TestReadyzAllHealthy(t *testing.T) {
	srv := startTestServer(t)
	srv.RegisterReadinessCheck(&staticChecker{name: "cache"})

	resp, status := get(t, srv, "/readyz")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "ready", status.Status)
	assert.True(t, status.Checks["cache"].Healthy)
}

func TestReadyzFailingCheck(t *testing.T) {
	srv := startTestServer(t)
	srv.RegisterReadinessCheck(&staticChecker{name: "cache"})
	srv.RegisterReadinessCheck(&staticChecker{name: "store", err: errors.New("no generation yet")})

	resp, status := get(t, srv, "/readyz")
	assert.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)
	assert.Equal(t, "not_ready", status.Status)
	assert.True(t, status.Checks["cache"].Healthy)
	assert.False(t, status.Checks["store"].Healthy)
	assert.Equal(t, "no generation yet", status.Checks["store"].Message)
}

func TestMethodNotAllowed(t *testing.T) {
	srv := startTestServer(t)

	resp, err := http.Post(fmt.Sprintf("http://%s/healthz", srv.Addr()), "text/plain", nil)
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusMethodNotAllowed, resp.StatusCode)
}

func TestMetricsEndpoint(t *testing.T) {
	srv := startTestServer(t)

	resp, err := http.Get(fmt.Sprintf("http://%s/metrics", srv.Addr()))
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}
