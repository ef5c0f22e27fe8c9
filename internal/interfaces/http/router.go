// Package http assembles the gin engine and the HTTP server lifecycle.
package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/turtacn/CompoundForge/internal/infrastructure/monitoring/logging"
	prom "github.com/turtacn/CompoundForge/internal/infrastructure/monitoring/prometheus"
	"github.com/turtacn/CompoundForge/internal/interfaces/http/handlers"
	"github.com/turtacn/CompoundForge/internal/interfaces/http/middleware"
)

// RouterConfig wires handlers and middleware into the engine. Nil handlers
// leave their routes unregistered.
type RouterConfig struct {
	Mode string

	ElementHandler  *handlers.ElementHandler
	CompoundHandler *handlers.CompoundHandler
	HealthHandler   *handlers.HealthHandler
	// Feed is mounted at /ws when set.
	Feed http.Handler

	CORS        *middleware.CORSConfig
	RateLimiter middleware.RateLimiter
	MaxBodySize int64

	Logger           logging.Logger
	Metrics          *prom.AppMetrics
	MetricsCollector prom.MetricsCollector
}

func NewRouter(cfg RouterConfig) *gin.Engine {
	if cfg.Mode != "" {
		gin.SetMode(cfg.Mode)
	}
	if cfg.Logger == nil {
		cfg.Logger = logging.NewNopLogger()
	}

	r := gin.New()
	r.Use(middleware.RequestID(), middleware.Recovery(cfg.Logger))
	if cfg.CORS != nil {
		r.Use(middleware.CORS(*cfg.CORS))
	}
	r.Use(middleware.RequestLogging(cfg.Logger, middleware.DefaultLoggingConfig()))
	if cfg.Metrics != nil {
		r.Use(middleware.Metrics(cfg.Metrics))
	}

	if cfg.HealthHandler != nil {
		cfg.HealthHandler.RegisterRoutes(r)
	}
	if cfg.MetricsCollector != nil {
		r.GET("/metrics", gin.WrapH(cfg.MetricsCollector.Handler()))
	}
	if cfg.Feed != nil {
		r.GET("/ws", gin.WrapH(cfg.Feed))
	}

	api := r.Group("/api/v1")
	api.Use(middleware.BodyLimit(cfg.MaxBodySize))
	if cfg.RateLimiter != nil {
		api.Use(middleware.RateLimit(cfg.RateLimiter, middleware.DefaultRateLimitConfig()))
	}
	if cfg.ElementHandler != nil {
		cfg.ElementHandler.RegisterRoutes(api)
	}
	if cfg.CompoundHandler != nil {
		cfg.CompoundHandler.RegisterRoutes(api)
	}

	r.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, handlers.ErrorResponse{
			Code:      "COMMON_005",
			Message:   "route not found",
			RequestID: middleware.GetRequestID(c),
		})
	})
	return r
}
