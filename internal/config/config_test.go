package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, StoreMemory, cfg.SessionStore)
	assert.Equal(t, EmbeddingHash, cfg.EmbeddingProvider)
	assert.Equal(t, 3, cfg.GenerationMaxAttempts)
	assert.Equal(t, 4000, cfg.GenerationMaxTokens)
	assert.InDelta(t, 0.1, cfg.GenerationTemperature, 1e-6)
	assert.Equal(t, 120*time.Second, cfg.GenerationTimeout)
	assert.Equal(t, 3, cfg.VectorSearchK)
	assert.Equal(t, 24*time.Hour, cfg.SessionTTL)
	assert.Equal(t, int64(10*1024*1024), cfg.MaxFileSize)
	assert.Equal(t, []string{"*"}, cfg.CORSAllowedOrigins)
	assert.Empty(t, cfg.S3Endpoint)
	assert.False(t, cfg.GenerationEnabled())
}

func TestLoad_Environment(t *testing.T) {
	t.Setenv("PORT", "9090")
	t.Setenv("SESSION_STORE", "Redis")
	t.Setenv("REDIS_DB", "2")
	t.Setenv("SESSION_TTL", "90m")
	t.Setenv("OPENROUTER_API_KEY", "or-key")
	t.Setenv("S3_USE_SSL", "true")
	t.Setenv("CORS_ALLOWED_ORIGINS", "https://a.example, https://b.example")

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, "9090", cfg.Port)
	assert.Equal(t, StoreRedis, cfg.SessionStore)
	assert.Equal(t, 2, cfg.RedisDB)
	assert.Equal(t, 90*time.Minute, cfg.SessionTTL)
	assert.True(t, cfg.S3UseSSL)
	assert.True(t, cfg.GenerationEnabled())
	assert.Equal(t, "or-key", cfg.EmbeddingAPIKey())
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.CORSAllowedOrigins)
}

func TestLoad_FileThenEnvironment(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("port: \"7070\"\nlog_level: debug\nvector_search_k: 5\n"), 0o600))
	t.Setenv("LOG_LEVEL", "warn")

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "7070", cfg.Port)
	assert.Equal(t, "warn", cfg.LogLevel)
	assert.Equal(t, 5, cfg.VectorSearchK)
}

func TestLoad_Invalid(t *testing.T) {
	t.Setenv("SESSION_STORE", "memcached")
	t.Setenv("EMBEDDING_PROVIDER", "cohere")

	_, err := Load("")
	require.Error(t, err)
	assert.ErrorContains(t, err, "SESSION_STORE")
	assert.ErrorContains(t, err, "EMBEDDING_PROVIDER")
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	assert.ErrorContains(t, err, "failed to read config file")
}
