// Command apiserver serves the CompoundForge REST API, the live analysis feed
// and a gRPC health endpoint.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/turtacn/CompoundForge/internal/bootstrap"
	"github.com/turtacn/CompoundForge/internal/config"
	"github.com/turtacn/CompoundForge/internal/infrastructure/monitoring/logging"
	grpcserver "github.com/turtacn/CompoundForge/internal/interfaces/grpc"
	httpserver "github.com/turtacn/CompoundForge/internal/interfaces/http"
	"github.com/turtacn/CompoundForge/internal/interfaces/http/handlers"
	"github.com/turtacn/CompoundForge/internal/interfaces/http/middleware"
)

var (
	version   = "dev"
	commit    = "unknown"
	buildDate = "unknown"
)

const healthInterval = 10 * time.Second

func main() {
	configPath := flag.String("config", "", "path to configuration file (default: environment only)")
	httpPort := flag.Int("http-port", 0, "HTTP server port (overrides config)")
	grpcPort := flag.Int("grpc-port", 0, "gRPC server port (overrides config)")
	logLevel := flag.String("log-level", "", "log level (overrides config)")
	flag.Parse()

	if err := run(*configPath, *httpPort, *grpcPort, *logLevel); err != nil {
		fmt.Fprintf(os.Stderr, "apiserver: %v\n", err)
		os.Exit(1)
	}
}

func run(configPath string, httpPort, grpcPort int, logLevel string) error {
	cfg, err := config.LoadOrDefault(configPath)
	if err != nil {
		return err
	}
	if httpPort > 0 {
		cfg.Server.Port = httpPort
	}
	if grpcPort > 0 {
		cfg.Server.GRPCPort = grpcPort
	}

	logger, err := bootstrap.NewLogger(cfg.Log, logLevel)
	if err != nil {
		return err
	}
	logging.SetDefault(logger)
	logger.Info("starting CompoundForge API server",
		logging.String("version", version),
		logging.String("commit", commit),
		logging.String("built", buildDate),
		logging.Int("http_port", cfg.Server.Port),
		logging.Int("grpc_port", cfg.Server.GRPCPort))

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	a, err := newApp(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer a.close()

	if configPath != "" {
		watchLogLevel(configPath, logger)
	}

	errCh := make(chan error, 2)
	go func() { errCh <- a.http.Start() }()
	go func() { errCh <- a.grpc.Start() }()
	go a.grpc.WatchHealth(ctx, healthInterval, a.checkers()...)

	select {
	case <-ctx.Done():
		logger.Info("shutdown signal received")
	case err = <-errCh:
		if err != nil {
			logger.Error("server failed", logging.Err(err))
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	if serr := a.http.Stop(shutdownCtx); serr != nil {
		logger.Error("HTTP server shutdown error", logging.Err(serr))
	}
	if serr := a.grpc.Stop(shutdownCtx); serr != nil {
		logger.Error("gRPC server shutdown error", logging.Err(serr))
	}
	logger.Info("servers stopped")
	return err
}

type app struct {
	comps   *bootstrap.Components
	http    *httpserver.Server
	grpc    *grpcserver.Server
	limiter *middleware.TokenBucketLimiter
}

func newApp(ctx context.Context, cfg *config.Config, logger logging.Logger) (*app, error) {
	comps, err := bootstrap.New(ctx, cfg, logger, bootstrap.Options{SideChannels: true, Feed: true, Metrics: true})
	if err != nil {
		return nil, err
	}
	a := &app{comps: comps}

	rc := httpserver.RouterConfig{
		Mode:             cfg.Server.Mode,
		ElementHandler:   handlers.NewElementHandler(comps.Service, logger.Named("http")),
		CompoundHandler:  handlers.NewCompoundHandler(comps.Service, logger.Named("http"), cfg.Engine.RequestTimeout),
		HealthHandler:    handlers.NewHealthHandler(version, comps.Probes...),
		MaxBodySize:      cfg.Server.MaxBodySize,
		Logger:           logger.Named("http"),
		Metrics:          comps.Metrics,
		MetricsCollector: comps.Collector,
	}
	if comps.Feed != nil {
		rc.Feed = comps.Feed
	}
	if len(cfg.Server.CORSOrigins) > 0 {
		cors := middleware.DefaultCORSConfig()
		cors.AllowedOrigins = cfg.Server.CORSOrigins
		rc.CORS = &cors
	}
	if cfg.Server.RateLimitRPS > 0 {
		a.limiter = middleware.NewTokenBucketLimiter(cfg.Server.RateLimitRPS, cfg.Server.RateLimitBurst, 5*time.Minute)
		rc.RateLimiter = a.limiter
	}

	a.http = httpserver.NewServer(httpserver.ServerConfig{
		Port:            cfg.Server.Port,
		ReadTimeout:     cfg.Server.ReadTimeout,
		WriteTimeout:    cfg.Server.WriteTimeout,
		ShutdownTimeout: cfg.Server.ShutdownTimeout,
	}, httpserver.NewRouter(rc), logger.Named("http"))

	a.grpc, err = grpcserver.NewServer(grpcserver.Config{
		Addr:       fmt.Sprintf(":%d", cfg.Server.GRPCPort),
		Reflection: cfg.Server.Mode == gin.DebugMode,
	}, grpcserver.WithLogger(logger.Named("grpc")),
		grpcserver.WithMetrics(comps.Metrics),
		grpcserver.WithGracefulTimeout(cfg.Server.ShutdownTimeout))
	if err != nil {
		a.close()
		return nil, err
	}
	return a, nil
}

func (a *app) checkers() []grpcserver.Checker {
	out := make([]grpcserver.Checker, len(a.comps.Probes))
	for i, p := range a.comps.Probes {
		out[i] = p
	}
	return out
}

func (a *app) close() {
	if a.limiter != nil {
		a.limiter.Stop()
	}
	if err := a.comps.Close(); err != nil {
		a.comps.Logger.Warn("failed to release resources", logging.Err(err))
	}
}

// watchLogLevel applies log.level edits without a restart. Other settings
// need one.
func watchLogLevel(path string, logger logging.Logger) {
	lc, ok := logger.(logging.LevelController)
	if !ok {
		return
	}
	err := config.Watch(path, func(cfg *config.Config) {
		if err := lc.SetLevel(cfg.Log.Level); err != nil {
			logger.Warn("ignoring invalid log level", logging.String("level", cfg.Log.Level), logging.Err(err))
			return
		}
		logger.Info("log level updated", logging.String("level", cfg.Log.Level))
	}, func(err error) {
		logger.Warn("ignoring invalid config change", logging.Err(err))
	})
	if err != nil {
		logger.Warn("config watch disabled", logging.Err(err))
	}
}
