package middleware

import (
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/turtacn/CompoundForge/internal/infrastructure/monitoring/logging"
	prom "github.com/turtacn/CompoundForge/internal/infrastructure/monitoring/prometheus"
)

func TestMetrics_RouteTemplateLabels(t *testing.T) {
	collector, err := prom.NewMetricsCollector(prom.CollectorConfig{Namespace: "cforge"}, logging.NewNopLogger())
	require.NoError(t, err)
	r := newEngine(Metrics(prom.NewAppMetrics(collector)))

	serve(t, r, httptest.NewRequest(http.MethodGet, "/api/v1/elements/Na", nil))
	serve(t, r, httptest.NewRequest(http.MethodGet, "/api/v1/elements/Fe", nil))
	serve(t, r, httptest.NewRequest(http.MethodGet, "/nowhere", nil))

	w := serve(t, collector.Handler(), httptest.NewRequest(http.MethodGet, "/metrics", nil))
	body, _ := io.ReadAll(w.Body)
	text := string(body)

	assert.Contains(t, text, `cforge_http_requests_total{method="GET",path="/api/v1/elements/:symbol",status_code="200"} 2`)
	assert.Contains(t, text, `path="unmatched",status_code="404"`)
	assert.NotContains(t, text, `/api/v1/elements/Na`)
}
