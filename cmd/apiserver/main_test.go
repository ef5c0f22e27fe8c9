package main

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/turtacn/CompoundForge/internal/config"
	"github.com/turtacn/CompoundForge/internal/infrastructure/monitoring/logging"
)

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	cfg, err := config.LoadFromEnv()
	require.NoError(t, err)
	cfg.Server.Mode = "test"
	cfg.Server.GRPCPort = 0
	cfg.Server.RateLimitRPS = 100
	cfg.Server.RateLimitBurst = 10
	cfg.Server.CORSOrigins = []string{"https://app.example.com"}
	return cfg
}

func TestNewApp_ServesAPI(t *testing.T) {
	a, err := newApp(context.Background(), testConfig(t), logging.NewNopLogger())
	require.NoError(t, err)
	defer a.close()
	defer a.grpc.Stop(context.Background())

	h := a.http.Handler()

	w := httptest.NewRecorder()
	h.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	assert.Equal(t, http.StatusOK, w.Code)

	w = httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/compounds/analyze", strings.NewReader(`{"symbols":["Na","Cl"]}`))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Origin", "https://app.example.com")
	h.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Contains(t, w.Body.String(), `"NaCl"`)
	assert.Equal(t, "https://app.example.com", w.Header().Get("Access-Control-Allow-Origin"))
	assert.NotEmpty(t, w.Header().Get("X-RateLimit-Limit"))
}

func TestNewApp_InvalidGRPCAddress(t *testing.T) {
	cfg := testConfig(t)
	cfg.Server.GRPCPort = -1
	_, err := newApp(context.Background(), cfg, logging.NewNopLogger())
	assert.Error(t, err)
}

func TestApp_Checkers(t *testing.T) {
	a, err := newApp(context.Background(), testConfig(t), logging.NewNopLogger())
	require.NoError(t, err)
	defer a.close()
	defer a.grpc.Stop(context.Background())
	assert.Len(t, a.checkers(), len(a.comps.Probes))
}
