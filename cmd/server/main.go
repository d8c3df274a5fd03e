package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/BerylCAtieno/proposal-analyzer-api/internal/config"
	"github.com/BerylCAtieno/proposal-analyzer-api/internal/db"
	"github.com/BerylCAtieno/proposal-analyzer-api/internal/utils"
)

func main() {
	if err := newRootCommand().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCommand() *cobra.Command {
	var configFile string

	root := &cobra.Command{
		Use:   "proposal-analyzer",
		Short: "Proposal analysis and RFP optimization API",
		// Running the binary without a subcommand starts the server.
		RunE: func(cmd *cobra.Command, _ []string) error {
			return serve(cmd.Context(), configFile)
		},
		SilenceUsage: true,
	}
	root.PersistentFlags().StringVarP(&configFile, "config", "c", "", "path to a YAML config file")

	root.AddCommand(&cobra.Command{
		Use:   "serve",
		Short: "Run migrations and start the HTTP server",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return serve(cmd.Context(), configFile)
		},
	})
	root.AddCommand(&cobra.Command{
		Use:   "migrate",
		Short: "Apply database migrations and exit",
		RunE: func(_ *cobra.Command, _ []string) error {
			cfg, err := config.Load(configFile)
			if err != nil {
				return err
			}
			logger := utils.NewLogger(cfg.LogLevel)
			if err := db.RunMigrations(cfg.DatabaseURL); err != nil {
				logger.Error("Failed to run migrations", "error", err)
				return err
			}
			logger.Info("Migrations applied", "database", cfg.DatabaseURL)
			return nil
		},
	})
	return root
}

func serve(ctx context.Context, configFile string) error {
	cfg, err := config.Load(configFile)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	logger := utils.NewLogger(cfg.LogLevel)

	app, err := build(ctx, cfg, logger)
	if err != nil {
		logger.Error("Failed to initialize service", "error", err)
		return err
	}
	defer app.Close()

	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      app.handler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: cfg.GenerationTimeout + 30*time.Second,
		IdleTimeout:  60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("Starting server", "port", cfg.Port,
			"generation_enabled", cfg.GenerationEnabled(),
			"session_store", cfg.SessionStore,
			"embedding_provider", cfg.EmbeddingProvider)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		logger.Error("Server failed to start", "error", err)
		return err
	case <-quit:
	}

	logger.Info("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("Server forced to shutdown", "error", err)
		return err
	}

	logger.Info("Server exited")
	return nil
}
