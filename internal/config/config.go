package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	Port        string
	DatabaseURL string
	LogLevel    string

	// S3. An empty endpoint disables raw upload storage.
	S3Endpoint        string
	S3AccessKeyID     string
	S3SecretAccessKey string
	S3BucketName      string
	S3UseSSL          bool

	// OpenRouter
	OpenRouterAPIKey  string
	OpenRouterModel   string
	OpenRouterBaseURL string

	GenerationMaxAttempts int
	GenerationMaxTokens   int
	GenerationTemperature float32
	GenerationTimeout     time.Duration

	// Retrieval
	EmbeddingProvider string
	OpenAIAPIKey      string
	EmbeddingModel    string
	EmbeddingDims     int
	VectorSearchK     int
	HistoryTurns      int

	// Sessions
	SessionStore  string
	RedisAddr     string
	RedisPassword string
	RedisDB       int
	SessionTTL    time.Duration

	CORSAllowedOrigins []string

	// Upload limits
	MaxFileSize int64
}

const (
	StoreMemory = "memory"
	StoreRedis  = "redis"

	EmbeddingHash   = "hash"
	EmbeddingOpenAI = "openai"
)

func defaults(v *viper.Viper) {
	v.SetDefault("PORT", "8080")
	v.SetDefault("DATABASE_URL", "data/proposals.db")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("S3_ENDPOINT", "")
	v.SetDefault("S3_ACCESS_KEY_ID", "minioadmin")
	v.SetDefault("S3_SECRET_ACCESS_KEY", "minioadmin")
	v.SetDefault("S3_BUCKET_NAME", "proposals")
	v.SetDefault("S3_USE_SSL", false)
	v.SetDefault("OPENROUTER_API_KEY", "")
	v.SetDefault("OPENROUTER_MODEL", "openai/gpt-4o-mini")
	v.SetDefault("OPENROUTER_BASE_URL", "https://openrouter.ai/api/v1")
	v.SetDefault("GENERATION_MAX_ATTEMPTS", 3)
	v.SetDefault("GENERATION_MAX_TOKENS", 4000)
	v.SetDefault("GENERATION_TEMPERATURE", 0.1)
	v.SetDefault("GENERATION_TIMEOUT", "120s")
	v.SetDefault("EMBEDDING_PROVIDER", EmbeddingHash)
	v.SetDefault("OPENAI_API_KEY", "")
	v.SetDefault("EMBEDDING_MODEL", "text-embedding-3-small")
	v.SetDefault("EMBEDDING_DIMS", 512)
	v.SetDefault("VECTOR_SEARCH_K", 3)
	v.SetDefault("HISTORY_TURNS", 3)
	v.SetDefault("SESSION_STORE", StoreMemory)
	v.SetDefault("REDIS_ADDR", "localhost:6379")
	v.SetDefault("REDIS_PASSWORD", "")
	v.SetDefault("REDIS_DB", 0)
	v.SetDefault("SESSION_TTL", "24h")
	v.SetDefault("CORS_ALLOWED_ORIGINS", "*")
	v.SetDefault("MAX_FILE_SIZE", 10*1024*1024)
}

// Load reads defaults, then the optional YAML file, then the environment.
// Later sources win. Missing API keys are not an error: the service starts
// and analysis requests fail until they are set.
func Load(configFile string) (*Config, error) {
	v := viper.New()
	defaults(v)

	if configFile != "" {
		v.SetConfigFile(configFile)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file %s: %w", configFile, err)
		}
	}
	v.AutomaticEnv()

	cfg := &Config{
		Port:                  v.GetString("PORT"),
		DatabaseURL:           v.GetString("DATABASE_URL"),
		LogLevel:              v.GetString("LOG_LEVEL"),
		S3Endpoint:            v.GetString("S3_ENDPOINT"),
		S3AccessKeyID:         v.GetString("S3_ACCESS_KEY_ID"),
		S3SecretAccessKey:     v.GetString("S3_SECRET_ACCESS_KEY"),
		S3BucketName:          v.GetString("S3_BUCKET_NAME"),
		S3UseSSL:              v.GetBool("S3_USE_SSL"),
		OpenRouterAPIKey:      v.GetString("OPENROUTER_API_KEY"),
		OpenRouterModel:       v.GetString("OPENROUTER_MODEL"),
		OpenRouterBaseURL:     v.GetString("OPENROUTER_BASE_URL"),
		GenerationMaxAttempts: v.GetInt("GENERATION_MAX_ATTEMPTS"),
		GenerationMaxTokens:   v.GetInt("GENERATION_MAX_TOKENS"),
		GenerationTemperature: float32(v.GetFloat64("GENERATION_TEMPERATURE")),
		GenerationTimeout:     v.GetDuration("GENERATION_TIMEOUT"),
		EmbeddingProvider:     strings.ToLower(v.GetString("EMBEDDING_PROVIDER")),
		OpenAIAPIKey:          v.GetString("OPENAI_API_KEY"),
		EmbeddingModel:        v.GetString("EMBEDDING_MODEL"),
		EmbeddingDims:         v.GetInt("EMBEDDING_DIMS"),
		VectorSearchK:         v.GetInt("VECTOR_SEARCH_K"),
		HistoryTurns:          v.GetInt("HISTORY_TURNS"),
		SessionStore:          strings.ToLower(v.GetString("SESSION_STORE")),
		RedisAddr:             v.GetString("REDIS_ADDR"),
		RedisPassword:         v.GetString("REDIS_PASSWORD"),
		RedisDB:               v.GetInt("REDIS_DB"),
		SessionTTL:            v.GetDuration("SESSION_TTL"),
		CORSAllowedOrigins:    splitList(v.GetString("CORS_ALLOWED_ORIGINS")),
		MaxFileSize:           v.GetInt64("MAX_FILE_SIZE"),
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	var errs []error
	if c.Port == "" {
		errs = append(errs, errors.New("PORT is required"))
	}
	if c.DatabaseURL == "" {
		errs = append(errs, errors.New("DATABASE_URL is required"))
	}
	if c.SessionStore != StoreMemory && c.SessionStore != StoreRedis {
		errs = append(errs, fmt.Errorf("SESSION_STORE must be %q or %q, got %q", StoreMemory, StoreRedis, c.SessionStore))
	}
	if c.EmbeddingProvider != EmbeddingHash && c.EmbeddingProvider != EmbeddingOpenAI {
		errs = append(errs, fmt.Errorf("EMBEDDING_PROVIDER must be %q or %q, got %q", EmbeddingHash, EmbeddingOpenAI, c.EmbeddingProvider))
	}
	if c.MaxFileSize <= 0 {
		errs = append(errs, errors.New("MAX_FILE_SIZE must be positive"))
	}
	if c.SessionTTL < 0 {
		errs = append(errs, errors.New("SESSION_TTL must not be negative"))
	}
	return errors.Join(errs...)
}

// GenerationEnabled reports whether a generation API key is configured.
func (c *Config) GenerationEnabled() bool {
	return c.OpenRouterAPIKey != ""
}

// EmbeddingAPIKey is the key for the OpenAI embeddings endpoint, falling
// back to the OpenRouter key.
func (c *Config) EmbeddingAPIKey() string {
	if c.OpenAIAPIKey != "" {
		return c.OpenAIAPIKey
	}
	return c.OpenRouterAPIKey
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
