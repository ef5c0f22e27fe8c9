// Package bootstrap builds the runtime object graph from a Config: logger,
// metrics, element store, shared cache, event publisher, report archive,
// live feed and the compound service on top of them. Both binaries use it.
package bootstrap

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/turtacn/CompoundForge/internal/application/compound"
	"github.com/turtacn/CompoundForge/internal/config"
	domain "github.com/turtacn/CompoundForge/internal/domain/compound"
	"github.com/turtacn/CompoundForge/internal/domain/element"
	"github.com/turtacn/CompoundForge/internal/infrastructure/database/postgres"
	"github.com/turtacn/CompoundForge/internal/infrastructure/database/postgres/repositories"
	"github.com/turtacn/CompoundForge/internal/infrastructure/database/redis"
	"github.com/turtacn/CompoundForge/internal/infrastructure/messaging/kafka"
	"github.com/turtacn/CompoundForge/internal/infrastructure/monitoring/logging"
	prom "github.com/turtacn/CompoundForge/internal/infrastructure/monitoring/prometheus"
	"github.com/turtacn/CompoundForge/internal/infrastructure/storage/minio"
	"github.com/turtacn/CompoundForge/internal/interfaces/http/feed"
	"github.com/turtacn/CompoundForge/internal/interfaces/http/handlers"
)

// Options select which integrations New starts. Disabled integrations in the
// Config stay off regardless.
type Options struct {
	// SideChannels enables the kafka publisher and the minio archive.
	SideChannels bool
	// Feed creates the websocket hub.
	Feed bool
	// Metrics registers a Prometheus collector.
	Metrics bool
}

type Components struct {
	Config    *config.Config
	Logger    logging.Logger
	Collector prom.MetricsCollector
	Metrics   *prom.AppMetrics
	Elements  element.Repository
	Service   compound.Service
	Feed      *feed.Hub
	// DB is set when elements come from postgres.
	DB *postgres.Connection
	// Probes back /readyz and the gRPC health status.
	Probes []handlers.HealthChecker

	closers []func() error
}

// NewLogger builds the zap-backed logger from cfg.Log, with level overriding
// the configured level when set.
func NewLogger(cfg logging.LogConfig, level string) (logging.Logger, error) {
	if level != "" {
		cfg.Level = level
	}
	return logging.NewLogger(cfg)
}

// New wires every enabled integration. On error, whatever was already opened
// is closed.
func New(ctx context.Context, cfg *config.Config, logger logging.Logger, opts Options) (c *Components, err error) {
	if logger == nil {
		logger = logging.NewNopLogger()
	}
	c = &Components{Config: cfg, Logger: logger, Metrics: prom.NewNopAppMetrics()}
	defer func() {
		if err != nil {
			_ = c.Close()
			c = nil
		}
	}()

	if opts.Metrics && cfg.Metrics.Enabled {
		collector, cerr := prom.NewMetricsCollector(prom.CollectorConfig{
			Namespace:            cfg.Metrics.Namespace,
			EnableProcessMetrics: true,
			EnableGoMetrics:      true,
		}, logger)
		if cerr != nil {
			return nil, cerr
		}
		c.Collector = collector
		c.Metrics = prom.NewAppMetrics(collector)
	}

	if err = c.openElements(cfg); err != nil {
		return nil, err
	}

	strategy, err := domain.ParseStrategy(cfg.Engine.SearchStrategy)
	if err != nil {
		return nil, err
	}

	svcOpts := []compound.Option{compound.WithMetrics(c.Metrics)}
	if cfg.Redis.Enabled {
		cache, rerr := c.openRedis(ctx, cfg)
		if rerr != nil {
			return nil, rerr
		}
		svcOpts = append(svcOpts, compound.WithCache(cache))
	}
	if opts.SideChannels && cfg.Kafka.Enabled {
		pub, kerr := c.openKafka(cfg)
		if kerr != nil {
			return nil, kerr
		}
		svcOpts = append(svcOpts, compound.WithEvents(pub))
	}
	if opts.SideChannels && cfg.MinIO.Enabled {
		archive, merr := c.openMinIO(ctx, cfg)
		if merr != nil {
			return nil, merr
		}
		svcOpts = append(svcOpts, compound.WithArchive(archive))
	}
	if opts.Feed && cfg.Feed.Enabled {
		c.Feed = feed.NewHub(feed.Config{
			PingInterval: cfg.Feed.PingInterval,
			WriteTimeout: cfg.Feed.WriteTimeout,
			MaxClients:   cfg.Feed.MaxClients,
			BufferSize:   cfg.Feed.BufferSize,
			CheckOrigin:  originChecker(cfg.Server.CORSOrigins),
		}, logger.Named("feed"), c.Metrics)
		c.closers = append(c.closers, func() error { c.Feed.Close(); return nil })
		svcOpts = append(svcOpts, compound.WithNotifier(c.Feed))
	}

	c.Service, err = compound.NewService(c.Elements, domain.NewAnalyzer(domain.WithStrategy(strategy)), compound.Config{
		CacheSize:        cfg.Engine.CacheSize,
		CacheTTL:         cfg.Redis.DefaultTTL,
		MaxBatchSize:     cfg.Engine.MaxBatchSize,
		BatchConcurrency: cfg.Engine.BatchConcurrency,
	}, logger.Named("compound"), svcOpts...)
	if err != nil {
		return nil, err
	}
	return c, nil
}

func (c *Components) openElements(cfg *config.Config) error {
	if cfg.Elements.Source != "postgres" {
		c.Elements = element.NewMemoryRepository()
		return nil
	}
	conn, err := OpenDatabase(cfg, c.Logger)
	if err != nil {
		return err
	}
	c.DB = conn
	c.closers = append(c.closers, conn.Close)
	c.Probes = append(c.Probes, handlers.CheckerFunc("postgres", conn.HealthCheck))
	c.Elements = repositories.NewElementRepository(conn.DB(), c.Logger.Named("elements"), c.Metrics)
	return nil
}

// OpenDatabase connects to the element store described by cfg.Database.
func OpenDatabase(cfg *config.Config, logger logging.Logger) (*postgres.Connection, error) {
	d := cfg.Database
	return postgres.NewConnection(postgres.PostgresConfig{
		Host:            d.Host,
		Port:            d.Port,
		Database:        d.DBName,
		Username:        d.User,
		Password:        d.Password,
		SSLMode:         d.SSLMode,
		MaxOpenConns:    d.MaxOpenConns,
		MaxIdleConns:    d.MaxIdleConns,
		ConnMaxLifetime: d.ConnMaxLifetime,
		ConnMaxIdleTime: d.ConnMaxIdleTime,
	}, logger.Named("postgres"))
}

func (c *Components) openRedis(ctx context.Context, cfg *config.Config) (compound.Cache, error) {
	r := cfg.Redis
	client, err := redis.NewClient(&redis.RedisConfig{
		Addr:         r.Addr,
		Password:     r.Password,
		DB:           r.DB,
		PoolSize:     r.PoolSize,
		DialTimeout:  r.DialTimeout,
		ReadTimeout:  r.ReadTimeout,
		WriteTimeout: r.WriteTimeout,
	}, c.Logger.Named("redis"))
	if err != nil {
		return nil, err
	}
	c.closers = append(c.closers, client.Close)
	c.Probes = append(c.Probes, handlers.CheckerFunc("redis", client.Ping))
	return redis.NewRedisCache(client, c.Logger.Named("cache"),
		redis.WithPrefix(r.KeyPrefix),
		redis.WithDefaultTTL(r.DefaultTTL)), nil
}

func (c *Components) openKafka(cfg *config.Config) (*kafka.EventPublisher, error) {
	k := cfg.Kafka
	producer, err := kafka.NewProducer(kafka.ProducerConfig{
		Brokers:          k.Brokers,
		Acks:             AcksName(k.RequiredAcks),
		BatchTimeout:     k.BatchTimeout,
		CompressionCodec: k.Compression,
		WriteTimeout:     k.WriteTimeout,
	}, c.Logger.Named("kafka"))
	if err != nil {
		return nil, err
	}
	c.closers = append(c.closers, producer.Close)
	return kafka.NewEventPublisher(producer, k.Topic, c.Logger.Named("events")), nil
}

func (c *Components) openMinIO(ctx context.Context, cfg *config.Config) (minio.ReportArchive, error) {
	m := cfg.MinIO
	client, err := minio.NewClient(ctx, minio.Config{
		Endpoint:        m.Endpoint,
		AccessKeyID:     m.AccessKeyID,
		SecretAccessKey: m.SecretAccessKey,
		UseSSL:          m.UseSSL,
		Region:          m.Region,
		Bucket:          m.Bucket,
		RetentionDays:   m.RetentionDays,
	}, c.Logger.Named("minio"))
	if err != nil {
		return nil, err
	}
	c.closers = append(c.closers, client.Close)
	c.Probes = append(c.Probes, handlers.CheckerFunc("minio", func(ctx context.Context) error {
		st, err := client.HealthCheck(ctx)
		if err != nil {
			return err
		}
		if !st.BucketExists {
			return fmt.Errorf("bucket %s missing", client.Bucket())
		}
		return nil
	}))
	return minio.NewReportArchive(client, c.Logger.Named("archive")), nil
}

// AcksName maps the numeric acks setting onto the producer's names.
func AcksName(acks int) string {
	switch acks {
	case 0:
		return "none"
	case -1:
		return "all"
	default:
		return "one"
	}
}

// originChecker allows any origin when the list is empty or holds "*".
func originChecker(origins []string) func(r *http.Request) bool {
	if len(origins) == 0 {
		return nil
	}
	allowed := make(map[string]bool, len(origins))
	for _, o := range origins {
		if o == "*" {
			return nil
		}
		allowed[strings.ToLower(o)] = true
	}
	return func(r *http.Request) bool {
		origin := r.Header.Get("Origin")
		return origin == "" || allowed[strings.ToLower(origin)]
	}
}

// Close releases integrations in reverse order of opening.
func (c *Components) Close() error {
	var first error
	for i := len(c.closers) - 1; i >= 0; i-- {
		if err := c.closers[i](); err != nil && first == nil {
			first = err
		}
	}
	c.closers = nil
	return first
}
