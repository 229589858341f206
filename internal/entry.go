// Package internal provides the main application initialization and runtime logic.
package internal

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"golang.org/x/sync/errgroup"

	"github.com/altafr/present99/internal/api"
	"github.com/altafr/present99/internal/deck"
	"github.com/altafr/present99/internal/export"
	"github.com/altafr/present99/internal/imagejob"
	"github.com/altafr/present99/internal/mcpserver"
	"github.com/altafr/present99/internal/openrouter"
	"github.com/altafr/present99/internal/replicate"
	"github.com/altafr/present99/internal/sse"
	"github.com/altafr/present99/internal/store"
	"github.com/altafr/present99/internal/themes"
)

// Run starts the application with the given options.
func Run(ctx context.Context, opts ...Option) error {
	app := &application{}

	for _, opt := range opts {
		opt(app)
	}

	if app.config == nil {
		return fmt.Errorf("config is required")
	}

	cfg := app.config

	// Initialize structured JSON logger.
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: cfg.App.LogLevel,
	}))
	slog.SetDefault(logger)

	logger.Info("Configuration loaded",
		slog.String("http_address", cfg.App.HTTP.Address()),
		slog.String("sqlite_path", cfg.SQLite.Path),
		slog.String("log_level", cfg.App.LogLevel.String()),
		slog.Bool("openrouter_enabled", cfg.Providers.OpenRouter.APIKey != ""),
		slog.Bool("replicate_enabled", cfg.Providers.Replicate.Token != ""))

	// Initialize presentation store.
	db, err := store.Open(cfg.SQLite.Path)
	if err != nil {
		return fmt.Errorf("init store: %w", err)
	}
	defer db.Close()

	// Theme catalog with optional YAML overrides.
	catalog, err := themes.NewCatalog(cfg.Themes.Path)
	if err != nil {
		return fmt.Errorf("init themes: %w", err)
	}

	// Provider clients.
	texts := openrouter.New(openrouter.Config{
		APIKey:  cfg.Providers.OpenRouter.APIKey,
		BaseURL: cfg.Providers.OpenRouter.BaseURL,
		Model:   cfg.Providers.OpenRouter.Model,
	})
	images := replicate.New(replicate.Config{
		Token:   cfg.Providers.Replicate.Token,
		BaseURL: cfg.Providers.Replicate.BaseURL,
		Version: cfg.Providers.Replicate.Version,
	})

	// SSE broker.
	broker := sse.NewBroker(2 * time.Second)
	defer broker.Close()

	// Domain services.
	decks := deck.NewService(texts, logger)
	jobs := imagejob.NewOrchestrator(images, db, broker, imagejob.PollerOpts{}, logger)
	exporter := export.New(logger)

	// Build API handler and router.
	h := api.NewHandler(decks, db, images, jobs, catalog, exporter, broker)
	apiRouter := api.NewRouter(h, cfg.Auth.AuthEnabled(), cfg.Auth.Token, broker)

	// Build chi router.
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	// Health check endpoints (unauthenticated).
	openRouterEnabled := cfg.Providers.OpenRouter.APIKey != ""
	replicateEnabled := cfg.Providers.Replicate.Token != ""
	r.Get("/health/live", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})
	r.Get("/health/ready", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = fmt.Fprintf(w, `{"status":"ok","openRouterEnabled":%t,"replicateEnabled":%t}`,
			openRouterEnabled, replicateEnabled)
	})

	// Mount API routes under /api.
	r.Mount("/api", apiRouter)

	httpServer := &http.Server{
		Addr:    cfg.App.HTTP.Address(),
		Handler: r,
	}

	logger.Info("Server starting...", slog.String("http_address", cfg.App.HTTP.Address()))

	g, gCtx := errgroup.WithContext(ctx)

	// Start theme watcher with SSE callback.
	g.Go(func() error {
		if err := catalog.Watch(gCtx, logger, func() {
			broker.PublishThemeUpdate()
		}); err != nil {
			logger.Warn("theme watcher stopped", slog.String("error", err.Error()))
		}
		return nil
	})

	// Start HTTP server.
	g.Go(func() error {
		logger.Info("Starting HTTP server", slog.String("address", cfg.App.HTTP.Address()))
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("HTTP server error: %w", err)
		}
		return nil
	})

	// Handle shutdown signals.
	g.Go(func() error {
		quit := make(chan os.Signal, 1)
		signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

		select {
		case sig := <-quit:
			logger.Info("Received shutdown signal", slog.String("signal", sig.String()))
		case <-gCtx.Done():
			logger.Info("Context cancelled, initiating shutdown")
		}

		logger.Info("Shutting down server...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			logger.Error("HTTP server shutdown error", slog.String("error", err.Error()))
		}

		// Let in-flight image pollers drain before the store closes.
		jobs.Wait()

		return nil
	})

	if err := g.Wait(); err != nil {
		logger.Error("Application error", slog.String("error", err.Error()))
		return err
	}

	logger.Info("Server stopped successfully")
	return nil
}

// RunMCP starts the MCP stdio server using the same configuration as the
// HTTP app. Logs go to stderr so stdout stays a clean protocol channel.
func RunMCP(cfg *Config) error {
	logger := slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{
		Level: cfg.App.LogLevel,
	}))
	slog.SetDefault(logger)

	db, err := store.Open(cfg.SQLite.Path)
	if err != nil {
		return fmt.Errorf("init store: %w", err)
	}
	defer db.Close()

	catalog, err := themes.NewCatalog(cfg.Themes.Path)
	if err != nil {
		return fmt.Errorf("init themes: %w", err)
	}

	texts := openrouter.New(openrouter.Config{
		APIKey:  cfg.Providers.OpenRouter.APIKey,
		BaseURL: cfg.Providers.OpenRouter.BaseURL,
		Model:   cfg.Providers.OpenRouter.Model,
	})
	decks := deck.NewService(texts, logger)

	return mcpserver.New(decks, db, catalog).ServeStdio()
}
