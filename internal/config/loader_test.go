package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const validConfigYAML = `
server:
  port: 8181
  grpc_port: 9191
  mode: debug
engine:
  search_strategy: exhaustive
  max_batch_size: 25
redis:
  enabled: true
  addr: "cache:6379"
kafka:
  enabled: true
  brokers: ["kafka-1:9092", "kafka-2:9092"]
  topic: "compounds"
log:
  level: debug
  format: console
`

func createTempConfigFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoad_FromFile_ValidConfig(t *testing.T) {
	path := createTempConfigFile(t, validConfigYAML)
	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 8181, cfg.Server.Port)
	assert.Equal(t, 9191, cfg.Server.GRPCPort)
	assert.Equal(t, "debug", cfg.Server.Mode)
	assert.Equal(t, "exhaustive", cfg.Engine.SearchStrategy)
	assert.Equal(t, 25, cfg.Engine.MaxBatchSize)
	assert.True(t, cfg.Redis.Enabled)
	assert.Equal(t, "cache:6379", cfg.Redis.Addr)
	assert.Equal(t, []string{"kafka-1:9092", "kafka-2:9092"}, cfg.Kafka.Brokers)
	assert.Equal(t, "compounds", cfg.Kafka.Topic)
	assert.Equal(t, "console", cfg.Log.Format)
}

func TestLoad_FromFile_AppliesDefaults(t *testing.T) {
	path := createTempConfigFile(t, "server:\n  port: 8080\n")
	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, DefaultSearchStrategy, cfg.Engine.SearchStrategy)
	assert.Equal(t, DefaultBatchConcurrency, cfg.Engine.BatchConcurrency)
	assert.Equal(t, DefaultElementSource, cfg.Elements.Source)
	assert.Equal(t, DefaultLogLevel, cfg.Log.Level)
	assert.Equal(t, DefaultReadTimeout, cfg.Server.ReadTimeout)
	assert.True(t, cfg.Feed.Enabled)
	assert.True(t, cfg.Metrics.Enabled)
	assert.False(t, cfg.Redis.Enabled)
}

func TestLoad_FromFile_FileNotFound(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to read config file")
}

func TestLoad_FromFile_InvalidYAML(t *testing.T) {
	path := createTempConfigFile(t, "server: [")
	_, err := Load(path)
	assert.Error(t, err)
}

func TestLoad_FromFile_ValidationFailure(t *testing.T) {
	path := createTempConfigFile(t, "engine:\n  search_strategy: random\n")
	_, err := Load(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "engine.search_strategy")
}

func TestLoad_EnvOverride(t *testing.T) {
	path := createTempConfigFile(t, validConfigYAML)
	t.Setenv("CFORGE_SERVER_PORT", "9999")
	t.Setenv("CFORGE_ENGINE_SEARCH_STRATEGY", "preferred")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 9999, cfg.Server.Port)
	assert.Equal(t, "preferred", cfg.Engine.SearchStrategy)
}

func TestLoadFromEnv_NoFile(t *testing.T) {
	t.Setenv("CFORGE_ENGINE_CACHE_SIZE", "64")
	t.Setenv("CFORGE_REDIS_DEFAULT_TTL", "5m")
	t.Setenv("CFORGE_LOG_LEVEL", "warn")

	cfg, err := LoadFromEnv()
	require.NoError(t, err)
	assert.Equal(t, 64, cfg.Engine.CacheSize)
	assert.Equal(t, 5*time.Minute, cfg.Redis.DefaultTTL)
	assert.Equal(t, "warn", cfg.Log.Level)
	assert.Equal(t, DefaultServerPort, cfg.Server.Port)
}

func TestLoadOrDefault(t *testing.T) {
	cfg, err := LoadOrDefault("")
	require.NoError(t, err)
	assert.Equal(t, DefaultServerPort, cfg.Server.Port)

	path := createTempConfigFile(t, validConfigYAML)
	cfg, err = LoadOrDefault(path)
	require.NoError(t, err)
	assert.Equal(t, 8181, cfg.Server.Port)
}

func TestMustLoad(t *testing.T) {
	path := createTempConfigFile(t, validConfigYAML)
	assert.NotPanics(t, func() { MustLoad(path) })
	assert.Panics(t, func() { MustLoad(filepath.Join(t.TempDir(), "none.yaml")) })
}

func TestWatch_MissingFile(t *testing.T) {
	err := Watch(filepath.Join(t.TempDir(), "none.yaml"), func(*Config) {}, nil)
	assert.Error(t, err)
}

func TestWatch_ReportsChanges(t *testing.T) {
	path := createTempConfigFile(t, validConfigYAML)
	changed := make(chan *Config, 4)
	require.NoError(t, Watch(path, func(c *Config) { changed <- c }, nil))

	require.NoError(t, os.WriteFile(path, []byte("log:\n  level: error\n"), 0o644))

	select {
	case cfg := <-changed:
		assert.Equal(t, "error", cfg.Log.Level)
	case <-time.After(5 * time.Second):
		t.Skip("filesystem notifications unavailable")
	}
}
