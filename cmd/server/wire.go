package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/redis/go-redis/v9"

	"github.com/BerylCAtieno/proposal-analyzer-api/internal/config"
	"github.com/BerylCAtieno/proposal-analyzer-api/internal/db"
	"github.com/BerylCAtieno/proposal-analyzer-api/internal/generator"
	"github.com/BerylCAtieno/proposal-analyzer-api/internal/metrics"
	"github.com/BerylCAtieno/proposal-analyzer-api/internal/optimizer"
	"github.com/BerylCAtieno/proposal-analyzer-api/internal/repository"
	"github.com/BerylCAtieno/proposal-analyzer-api/internal/retrieval"
	"github.com/BerylCAtieno/proposal-analyzer-api/internal/router"
	"github.com/BerylCAtieno/proposal-analyzer-api/internal/services"
	"github.com/BerylCAtieno/proposal-analyzer-api/internal/session"
	"github.com/BerylCAtieno/proposal-analyzer-api/internal/storage"
	"github.com/BerylCAtieno/proposal-analyzer-api/internal/utils"
)

// maxCollections bounds the in-process vector index.
const maxCollections = 256

type application struct {
	handler http.Handler
	closers []func() error
}

func (a *application) Close() error {
	var errs []error
	for i := len(a.closers) - 1; i >= 0; i-- {
		errs = append(errs, a.closers[i]())
	}
	return errors.Join(errs...)
}

func build(ctx context.Context, cfg *config.Config, logger *utils.Logger) (*application, error) {
	app := &application{}
	m := metrics.New()

	if err := db.RunMigrations(cfg.DatabaseURL); err != nil {
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}
	database, err := db.NewSQLiteDB(cfg.DatabaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	app.closers = append(app.closers, database.Close)

	docs := repository.NewDocumentRepository(database)
	optimizations := repository.NewOptimizationRepository(database)

	var store storage.Storage
	if cfg.S3Endpoint != "" {
		store, err = storage.NewS3Storage(ctx, storage.S3Options{
			Endpoint:        cfg.S3Endpoint,
			AccessKeyID:     cfg.S3AccessKeyID,
			SecretAccessKey: cfg.S3SecretAccessKey,
			BucketName:      cfg.S3BucketName,
			UseSSL:          cfg.S3UseSSL,
		})
		if err != nil {
			app.Close()
			return nil, fmt.Errorf("failed to initialize S3 storage: %w", err)
		}
	} else {
		logger.Warn("S3_ENDPOINT not set, raw uploads will not be stored")
	}

	sessions, err := newSessionStore(ctx, cfg, app)
	if err != nil {
		app.Close()
		return nil, err
	}

	gen := newGenerator(cfg, m)
	var chat generator.Generator
	if gen != nil {
		policy := generator.DefaultRetryPolicy()
		policy.MaxAttempts = cfg.GenerationMaxAttempts
		chat = generator.WithRetry(gen, policy, logger)
	} else {
		logger.Warn("OPENROUTER_API_KEY not set, analysis endpoints will report the backend as unavailable")
	}

	index := retrieval.NewVectorIndex(newEmbedder(cfg)).WithMaxCollections(maxCollections)
	machine := session.NewMachine(sessions, chat, index, logger, m, session.Config{
		SearchK:      cfg.VectorSearchK,
		HistoryTurns: cfg.HistoryTurns,
	})
	agent := optimizer.NewAgent(chat, logger, m)

	app.handler = router.NewRouter(router.Services{
		Documents:    services.NewDocumentService(docs, optimizations, store, logger, m),
		Analysis:     services.NewAnalysisService(docs, machine, logger),
		Optimization: services.NewOptimizationService(docs, optimizations, agent, logger),
	}, router.Options{
		MaxFileSize:    cfg.MaxFileSize,
		AllowedOrigins: cfg.CORSAllowedOrigins,
	}, logger, m)

	return app, nil
}

// newGenerator returns nil when no API key is configured. The session
// machine and the optimizer share one retry wrapper around it.
func newGenerator(cfg *config.Config, m *metrics.Metrics) generator.Generator {
	if !cfg.GenerationEnabled() {
		return nil
	}
	return generator.Instrument(generator.NewOpenAI(generator.OpenAIConfig{
		APIKey:      cfg.OpenRouterAPIKey,
		BaseURL:     cfg.OpenRouterBaseURL,
		Model:       cfg.OpenRouterModel,
		MaxTokens:   cfg.GenerationMaxTokens,
		Temperature: cfg.GenerationTemperature,
		Timeout:     cfg.GenerationTimeout,
	}), m)
}

func newEmbedder(cfg *config.Config) retrieval.Embedder {
	if cfg.EmbeddingProvider == config.EmbeddingOpenAI {
		return retrieval.NewOpenAIEmbedder(cfg.EmbeddingAPIKey(), "", cfg.EmbeddingModel)
	}
	return retrieval.NewHashEmbedder(cfg.EmbeddingDims)
}

func newSessionStore(ctx context.Context, cfg *config.Config, app *application) (session.Store, error) {
	if cfg.SessionStore != config.StoreRedis {
		return session.NewMemoryStore(cfg.SessionTTL), nil
	}

	client := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to connect to redis at %s: %w", cfg.RedisAddr, err)
	}
	app.closers = append(app.closers, client.Close)
	return session.NewRedisStore(client, cfg.SessionTTL), nil
}
