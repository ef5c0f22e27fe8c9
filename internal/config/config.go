// Package config defines the CompoundForge configuration tree and its
// validation. Loading lives in loader.go; defaults in defaults.go.
package config

import (
	"fmt"
	"time"

	"github.com/turtacn/CompoundForge/internal/infrastructure/monitoring/logging"
)

// ─────────────────────────────────────────────────────────────────────────────
// Sections
// ─────────────────────────────────────────────────────────────────────────────

// ServerConfig holds HTTP and gRPC listener settings.
type ServerConfig struct {
	Port            int           `mapstructure:"port"`
	GRPCPort        int           `mapstructure:"grpc_port"`
	Mode            string        `mapstructure:"mode"` // "debug" | "release" | "test"
	ReadTimeout     time.Duration `mapstructure:"read_timeout"`
	WriteTimeout    time.Duration `mapstructure:"write_timeout"`
	MaxBodySize     int64         `mapstructure:"max_body_size"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
	// RateLimitRPS limits analyze calls per client; 0 disables the limiter.
	RateLimitRPS   float64  `mapstructure:"rate_limit_rps"`
	RateLimitBurst int      `mapstructure:"rate_limit_burst"`
	CORSOrigins    []string `mapstructure:"cors_origins"`
}

// EngineConfig tunes the analysis service around the engine.
type EngineConfig struct {
	// SearchStrategy is "preferred" or "exhaustive".
	SearchStrategy   string        `mapstructure:"search_strategy"`
	CacheSize        int           `mapstructure:"cache_size"`
	MaxBatchSize     int           `mapstructure:"max_batch_size"`
	BatchConcurrency int           `mapstructure:"batch_concurrency"`
	RequestTimeout   time.Duration `mapstructure:"request_timeout"`
}

// ElementsConfig picks the element record source.
type ElementsConfig struct {
	// Source is "embedded" or "postgres".
	Source string `mapstructure:"source"`
}

// DatabaseConfig holds PostgreSQL connection parameters for the element store.
type DatabaseConfig struct {
	Host            string        `mapstructure:"host"`
	Port            int           `mapstructure:"port"`
	User            string        `mapstructure:"user"`
	Password        string        `mapstructure:"password"`
	DBName          string        `mapstructure:"db_name"`
	SSLMode         string        `mapstructure:"ssl_mode"`
	MaxOpenConns    int           `mapstructure:"max_open_conns"`
	MaxIdleConns    int           `mapstructure:"max_idle_conns"`
	ConnMaxLifetime time.Duration `mapstructure:"conn_max_lifetime"`
	ConnMaxIdleTime time.Duration `mapstructure:"conn_max_idle_time"`
}

// RedisConfig holds the shared analysis cache settings.
type RedisConfig struct {
	Enabled      bool          `mapstructure:"enabled"`
	Addr         string        `mapstructure:"addr"`
	Password     string        `mapstructure:"password"`
	DB           int           `mapstructure:"db"`
	PoolSize     int           `mapstructure:"pool_size"`
	DialTimeout  time.Duration `mapstructure:"dial_timeout"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
	DefaultTTL   time.Duration `mapstructure:"default_ttl"`
	KeyPrefix    string        `mapstructure:"key_prefix"`
}

// KafkaConfig holds the analysis event producer settings.
type KafkaConfig struct {
	Enabled      bool          `mapstructure:"enabled"`
	Brokers      []string      `mapstructure:"brokers"`
	Topic        string        `mapstructure:"topic"`
	RequiredAcks int           `mapstructure:"required_acks"`
	Compression  string        `mapstructure:"compression"`
	BatchTimeout time.Duration `mapstructure:"batch_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
}

// MinIOConfig holds the report archive settings.
type MinIOConfig struct {
	Enabled         bool   `mapstructure:"enabled"`
	Endpoint        string `mapstructure:"endpoint"`
	AccessKeyID     string `mapstructure:"access_key_id"`
	SecretAccessKey string `mapstructure:"secret_access_key"`
	UseSSL          bool   `mapstructure:"use_ssl"`
	Region          string `mapstructure:"region"`
	Bucket          string `mapstructure:"bucket"`
	// RetentionDays expires archived reports; 0 keeps them forever.
	RetentionDays int `mapstructure:"retention_days"`
}

// FeedConfig holds the websocket live feed settings.
type FeedConfig struct {
	Enabled      bool          `mapstructure:"enabled"`
	PingInterval time.Duration `mapstructure:"ping_interval"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
	MaxClients   int           `mapstructure:"max_clients"`
	BufferSize   int           `mapstructure:"buffer_size"`
}

// MetricsConfig holds Prometheus settings.
type MetricsConfig struct {
	Enabled   bool   `mapstructure:"enabled"`
	Namespace string `mapstructure:"namespace"`
	Path      string `mapstructure:"path"`
}

// ─────────────────────────────────────────────────────────────────────────────
// Root
// ─────────────────────────────────────────────────────────────────────────────

// Config is the root configuration.
type Config struct {
	Server   ServerConfig      `mapstructure:"server"`
	Engine   EngineConfig      `mapstructure:"engine"`
	Elements ElementsConfig    `mapstructure:"elements"`
	Database DatabaseConfig    `mapstructure:"database"`
	Redis    RedisConfig       `mapstructure:"redis"`
	Kafka    KafkaConfig       `mapstructure:"kafka"`
	MinIO    MinIOConfig       `mapstructure:"minio"`
	Feed     FeedConfig        `mapstructure:"feed"`
	Metrics  MetricsConfig     `mapstructure:"metrics"`
	Log      logging.LogConfig `mapstructure:"log"`
}

// Validate returns the first semantic error found. Disabled integrations are
// not checked.
func (c *Config) Validate() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("config: server.port %d is out of range [1, 65535]", c.Server.Port)
	}
	if c.Server.GRPCPort < 0 || c.Server.GRPCPort > 65535 {
		return fmt.Errorf("config: server.grpc_port %d is out of range [0, 65535]", c.Server.GRPCPort)
	}
	if c.Server.GRPCPort != 0 && c.Server.GRPCPort == c.Server.Port {
		return fmt.Errorf("config: server.grpc_port must differ from server.port")
	}
	switch c.Server.Mode {
	case "debug", "release", "test":
	default:
		return fmt.Errorf("config: server.mode %q is invalid; expected debug|release|test", c.Server.Mode)
	}
	if c.Server.RateLimitRPS < 0 {
		return fmt.Errorf("config: server.rate_limit_rps must be >= 0")
	}

	switch c.Engine.SearchStrategy {
	case "preferred", "exhaustive":
	default:
		return fmt.Errorf("config: engine.search_strategy %q is invalid; expected preferred|exhaustive", c.Engine.SearchStrategy)
	}
	if c.Engine.CacheSize < 0 {
		return fmt.Errorf("config: engine.cache_size must be >= 0, got %d", c.Engine.CacheSize)
	}
	if c.Engine.MaxBatchSize < 1 {
		return fmt.Errorf("config: engine.max_batch_size must be >= 1, got %d", c.Engine.MaxBatchSize)
	}
	if c.Engine.BatchConcurrency < 1 {
		return fmt.Errorf("config: engine.batch_concurrency must be >= 1, got %d", c.Engine.BatchConcurrency)
	}

	switch c.Elements.Source {
	case "embedded":
	case "postgres":
		if c.Database.Host == "" {
			return fmt.Errorf("config: database.host is required when elements.source is postgres")
		}
		if c.Database.Port < 1 || c.Database.Port > 65535 {
			return fmt.Errorf("config: database.port %d is out of range [1, 65535]", c.Database.Port)
		}
		if c.Database.User == "" {
			return fmt.Errorf("config: database.user is required when elements.source is postgres")
		}
		if c.Database.DBName == "" {
			return fmt.Errorf("config: database.db_name is required when elements.source is postgres")
		}
	default:
		return fmt.Errorf("config: elements.source %q is invalid; expected embedded|postgres", c.Elements.Source)
	}

	if c.Redis.Enabled {
		if c.Redis.Addr == "" {
			return fmt.Errorf("config: redis.addr is required when redis is enabled")
		}
		if c.Redis.DB < 0 {
			return fmt.Errorf("config: redis.db must be >= 0, got %d", c.Redis.DB)
		}
	}
	if c.Kafka.Enabled {
		if len(c.Kafka.Brokers) == 0 {
			return fmt.Errorf("config: kafka.brokers must contain at least one broker address")
		}
		if c.Kafka.Topic == "" {
			return fmt.Errorf("config: kafka.topic is required when kafka is enabled")
		}
	}
	if c.MinIO.Enabled {
		if c.MinIO.Endpoint == "" || c.MinIO.Bucket == "" {
			return fmt.Errorf("config: minio.endpoint and minio.bucket are required when minio is enabled")
		}
		if c.MinIO.RetentionDays < 0 {
			return fmt.Errorf("config: minio.retention_days must be >= 0")
		}
	}
	if c.Feed.Enabled && c.Feed.MaxClients < 1 {
		return fmt.Errorf("config: feed.max_clients must be >= 1, got %d", c.Feed.MaxClients)
	}
	if c.Metrics.Enabled && c.Metrics.Namespace == "" {
		return fmt.Errorf("config: metrics.namespace is required when metrics are enabled")
	}

	switch c.Log.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("config: log.level %q is invalid; expected debug|info|warn|error", c.Log.Level)
	}
	switch c.Log.Format {
	case "json", "console":
	default:
		return fmt.Errorf("config: log.format %q is invalid; expected json|console", c.Log.Format)
	}
	return nil
}

// DSN renders the lib/pq connection string for the database section.
func (d DatabaseConfig) DSN() string {
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		d.Host, d.Port, d.User, d.Password, d.DBName, d.SSLMode)
}
