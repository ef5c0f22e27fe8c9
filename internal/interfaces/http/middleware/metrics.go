package middleware

import (
	"time"

	"github.com/gin-gonic/gin"

	prom "github.com/turtacn/CompoundForge/internal/infrastructure/monitoring/prometheus"
)

// Metrics records request counts and latency by route template, so
// /api/v1/elements/Na and /api/v1/elements/Fe share one series.
func Metrics(m *prom.AppMetrics) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		active := m.HTTPActiveRequests.WithLabelValues(c.Request.Method)
		active.Inc()
		defer active.Dec()

		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		prom.RecordHTTPRequest(m, c.Request.Method, route, c.Writer.Status(), time.Since(start))
	}
}
