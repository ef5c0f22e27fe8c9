package config

import (
	"time"

	"github.com/spf13/viper"
)

// ─────────────────────────────────────────────────────────────────────────────
// Default values
// ─────────────────────────────────────────────────────────────────────────────

const (
	DefaultServerPort      = 8080
	DefaultGRPCPort        = 9090
	DefaultServerMode      = "release"
	DefaultReadTimeout     = 15 * time.Second
	DefaultWriteTimeout    = 15 * time.Second
	DefaultMaxBodySize     = 1 << 20
	DefaultRateLimitBurst  = 20
	DefaultShutdownTimeout = 30 * time.Second

	DefaultSearchStrategy   = "preferred"
	DefaultCacheSize        = 1024
	DefaultMaxBatchSize     = 100
	DefaultBatchConcurrency = 8
	DefaultRequestTimeout   = 10 * time.Second

	DefaultElementSource = "embedded"

	DefaultDBHost         = "localhost"
	DefaultDBPort         = 5432
	DefaultDBUser         = "cforge"
	DefaultDBName         = "cforge"
	DefaultDBSSLMode      = "disable"
	DefaultDBMaxOpenConns = 10
	DefaultDBMaxIdleConns = 5
	DefaultDBConnLifetime = 30 * time.Minute

	DefaultRedisAddr      = "localhost:6379"
	DefaultRedisPoolSize  = 10
	DefaultRedisTTL       = time.Hour
	DefaultRedisKeyPrefix = "cforge:"

	DefaultKafkaBroker       = "localhost:9092"
	DefaultKafkaTopic        = "cforge.compound.analyzed"
	DefaultKafkaRequiredAcks = 1
	DefaultKafkaCompression  = "snappy"
	DefaultKafkaBatchTimeout = 10 * time.Millisecond
	DefaultKafkaWriteTimeout = 10 * time.Second

	DefaultMinIOEndpoint = "localhost:9000"
	DefaultMinIOBucket   = "cforge-reports"
	DefaultMinIORegion   = "us-east-1"

	DefaultFeedPingInterval = 30 * time.Second
	DefaultFeedWriteTimeout = 10 * time.Second
	DefaultFeedMaxClients   = 256
	DefaultFeedBufferSize   = 64

	DefaultMetricsNamespace = "cforge"
	DefaultMetricsPath      = "/metrics"

	DefaultLogLevel  = "info"
	DefaultLogFormat = "json"
)

// NewDefaultConfig returns a Config with every default applied. Optional
// integrations are disabled; the feed and metrics are on.
func NewDefaultConfig() *Config {
	cfg := &Config{
		Feed:    FeedConfig{Enabled: true},
		Metrics: MetricsConfig{Enabled: true},
	}
	ApplyDefaults(cfg)
	return cfg
}

// ApplyDefaults fills zero-value fields. Values already set are kept.
func ApplyDefaults(cfg *Config) {
	if cfg == nil {
		return
	}

	// ── Server ────────────────────────────────────────────────────────────────
	if cfg.Server.Port == 0 {
		cfg.Server.Port = DefaultServerPort
	}
	if cfg.Server.Mode == "" {
		cfg.Server.Mode = DefaultServerMode
	}
	if cfg.Server.ReadTimeout == 0 {
		cfg.Server.ReadTimeout = DefaultReadTimeout
	}
	if cfg.Server.WriteTimeout == 0 {
		cfg.Server.WriteTimeout = DefaultWriteTimeout
	}
	if cfg.Server.MaxBodySize == 0 {
		cfg.Server.MaxBodySize = DefaultMaxBodySize
	}
	if cfg.Server.RateLimitRPS > 0 && cfg.Server.RateLimitBurst == 0 {
		cfg.Server.RateLimitBurst = DefaultRateLimitBurst
	}
	if cfg.Server.ShutdownTimeout == 0 {
		cfg.Server.ShutdownTimeout = DefaultShutdownTimeout
	}

	// ── Engine ────────────────────────────────────────────────────────────────
	if cfg.Engine.SearchStrategy == "" {
		cfg.Engine.SearchStrategy = DefaultSearchStrategy
	}
	if cfg.Engine.CacheSize == 0 {
		cfg.Engine.CacheSize = DefaultCacheSize
	}
	if cfg.Engine.MaxBatchSize == 0 {
		cfg.Engine.MaxBatchSize = DefaultMaxBatchSize
	}
	if cfg.Engine.BatchConcurrency == 0 {
		cfg.Engine.BatchConcurrency = DefaultBatchConcurrency
	}
	if cfg.Engine.RequestTimeout == 0 {
		cfg.Engine.RequestTimeout = DefaultRequestTimeout
	}
	if cfg.Elements.Source == "" {
		cfg.Elements.Source = DefaultElementSource
	}

	// ── Database ──────────────────────────────────────────────────────────────
	if cfg.Database.Host == "" {
		cfg.Database.Host = DefaultDBHost
	}
	if cfg.Database.Port == 0 {
		cfg.Database.Port = DefaultDBPort
	}
	if cfg.Database.User == "" {
		cfg.Database.User = DefaultDBUser
	}
	if cfg.Database.DBName == "" {
		cfg.Database.DBName = DefaultDBName
	}
	if cfg.Database.SSLMode == "" {
		cfg.Database.SSLMode = DefaultDBSSLMode
	}
	if cfg.Database.MaxOpenConns == 0 {
		cfg.Database.MaxOpenConns = DefaultDBMaxOpenConns
	}
	if cfg.Database.MaxIdleConns == 0 {
		cfg.Database.MaxIdleConns = DefaultDBMaxIdleConns
	}
	if cfg.Database.ConnMaxLifetime == 0 {
		cfg.Database.ConnMaxLifetime = DefaultDBConnLifetime
	}

	// ── Redis ─────────────────────────────────────────────────────────────────
	if cfg.Redis.Addr == "" {
		cfg.Redis.Addr = DefaultRedisAddr
	}
	if cfg.Redis.PoolSize == 0 {
		cfg.Redis.PoolSize = DefaultRedisPoolSize
	}
	if cfg.Redis.DefaultTTL == 0 {
		cfg.Redis.DefaultTTL = DefaultRedisTTL
	}
	if cfg.Redis.KeyPrefix == "" {
		cfg.Redis.KeyPrefix = DefaultRedisKeyPrefix
	}

	// ── Kafka ─────────────────────────────────────────────────────────────────
	if len(cfg.Kafka.Brokers) == 0 {
		cfg.Kafka.Brokers = []string{DefaultKafkaBroker}
	}
	if cfg.Kafka.Topic == "" {
		cfg.Kafka.Topic = DefaultKafkaTopic
	}
	if cfg.Kafka.RequiredAcks == 0 {
		cfg.Kafka.RequiredAcks = DefaultKafkaRequiredAcks
	}
	if cfg.Kafka.Compression == "" {
		cfg.Kafka.Compression = DefaultKafkaCompression
	}
	if cfg.Kafka.BatchTimeout == 0 {
		cfg.Kafka.BatchTimeout = DefaultKafkaBatchTimeout
	}
	if cfg.Kafka.WriteTimeout == 0 {
		cfg.Kafka.WriteTimeout = DefaultKafkaWriteTimeout
	}

	// ── MinIO ─────────────────────────────────────────────────────────────────
	if cfg.MinIO.Endpoint == "" {
		cfg.MinIO.Endpoint = DefaultMinIOEndpoint
	}
	if cfg.MinIO.Bucket == "" {
		cfg.MinIO.Bucket = DefaultMinIOBucket
	}
	if cfg.MinIO.Region == "" {
		cfg.MinIO.Region = DefaultMinIORegion
	}

	// ── Feed / Metrics / Log ──────────────────────────────────────────────────
	if cfg.Feed.PingInterval == 0 {
		cfg.Feed.PingInterval = DefaultFeedPingInterval
	}
	if cfg.Feed.WriteTimeout == 0 {
		cfg.Feed.WriteTimeout = DefaultFeedWriteTimeout
	}
	if cfg.Feed.MaxClients == 0 {
		cfg.Feed.MaxClients = DefaultFeedMaxClients
	}
	if cfg.Feed.BufferSize == 0 {
		cfg.Feed.BufferSize = DefaultFeedBufferSize
	}
	if cfg.Metrics.Namespace == "" {
		cfg.Metrics.Namespace = DefaultMetricsNamespace
	}
	if cfg.Metrics.Path == "" {
		cfg.Metrics.Path = DefaultMetricsPath
	}
	if cfg.Log.Level == "" {
		cfg.Log.Level = DefaultLogLevel
	}
	if cfg.Log.Format == "" {
		cfg.Log.Format = DefaultLogFormat
	}
}

// registerKeys declares every key to viper so that AutomaticEnv resolves
// CFORGE_* variables during Unmarshal even when the key is absent from the
// file. Values mirror NewDefaultConfig.
func registerKeys(v *viper.Viper) {
	d := NewDefaultConfig()

	v.SetDefault("server.port", d.Server.Port)
	v.SetDefault("server.grpc_port", DefaultGRPCPort)
	v.SetDefault("server.mode", d.Server.Mode)
	v.SetDefault("server.read_timeout", d.Server.ReadTimeout)
	v.SetDefault("server.write_timeout", d.Server.WriteTimeout)
	v.SetDefault("server.max_body_size", d.Server.MaxBodySize)
	v.SetDefault("server.shutdown_timeout", d.Server.ShutdownTimeout)
	v.SetDefault("server.rate_limit_rps", 0)
	v.SetDefault("server.rate_limit_burst", DefaultRateLimitBurst)
	v.SetDefault("server.cors_origins", []string{})

	v.SetDefault("engine.search_strategy", d.Engine.SearchStrategy)
	v.SetDefault("engine.cache_size", d.Engine.CacheSize)
	v.SetDefault("engine.max_batch_size", d.Engine.MaxBatchSize)
	v.SetDefault("engine.batch_concurrency", d.Engine.BatchConcurrency)
	v.SetDefault("engine.request_timeout", d.Engine.RequestTimeout)
	v.SetDefault("elements.source", d.Elements.Source)

	v.SetDefault("database.host", d.Database.Host)
	v.SetDefault("database.port", d.Database.Port)
	v.SetDefault("database.user", d.Database.User)
	v.SetDefault("database.password", "")
	v.SetDefault("database.db_name", d.Database.DBName)
	v.SetDefault("database.ssl_mode", d.Database.SSLMode)
	v.SetDefault("database.max_open_conns", d.Database.MaxOpenConns)
	v.SetDefault("database.max_idle_conns", d.Database.MaxIdleConns)
	v.SetDefault("database.conn_max_lifetime", d.Database.ConnMaxLifetime)
	v.SetDefault("database.conn_max_idle_time", 0)

	v.SetDefault("redis.enabled", false)
	v.SetDefault("redis.addr", d.Redis.Addr)
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)
	v.SetDefault("redis.pool_size", d.Redis.PoolSize)
	v.SetDefault("redis.dial_timeout", 5*time.Second)
	v.SetDefault("redis.read_timeout", 3*time.Second)
	v.SetDefault("redis.write_timeout", 3*time.Second)
	v.SetDefault("redis.default_ttl", d.Redis.DefaultTTL)
	v.SetDefault("redis.key_prefix", d.Redis.KeyPrefix)

	v.SetDefault("kafka.enabled", false)
	v.SetDefault("kafka.brokers", d.Kafka.Brokers)
	v.SetDefault("kafka.topic", d.Kafka.Topic)
	v.SetDefault("kafka.required_acks", d.Kafka.RequiredAcks)
	v.SetDefault("kafka.compression", d.Kafka.Compression)
	v.SetDefault("kafka.batch_timeout", d.Kafka.BatchTimeout)
	v.SetDefault("kafka.write_timeout", d.Kafka.WriteTimeout)

	v.SetDefault("minio.enabled", false)
	v.SetDefault("minio.endpoint", d.MinIO.Endpoint)
	v.SetDefault("minio.access_key_id", "")
	v.SetDefault("minio.secret_access_key", "")
	v.SetDefault("minio.use_ssl", false)
	v.SetDefault("minio.region", d.MinIO.Region)
	v.SetDefault("minio.bucket", d.MinIO.Bucket)
	v.SetDefault("minio.retention_days", 0)

	v.SetDefault("feed.enabled", d.Feed.Enabled)
	v.SetDefault("feed.ping_interval", d.Feed.PingInterval)
	v.SetDefault("feed.write_timeout", d.Feed.WriteTimeout)
	v.SetDefault("feed.max_clients", d.Feed.MaxClients)
	v.SetDefault("feed.buffer_size", d.Feed.BufferSize)

	v.SetDefault("metrics.enabled", d.Metrics.Enabled)
	v.SetDefault("metrics.namespace", d.Metrics.Namespace)
	v.SetDefault("metrics.path", d.Metrics.Path)

	v.SetDefault("log.level", d.Log.Level)
	v.SetDefault("log.format", d.Log.Format)
}
