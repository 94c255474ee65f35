// Package internal provides the main application initialization and runtime logic.
package internal

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"golang.org/x/sync/errgroup"

	"github.com/jbrinkw/daybook/internal/api"
	"github.com/jbrinkw/daybook/internal/index"
	"github.com/jbrinkw/daybook/internal/noteservice"
	"github.com/jbrinkw/daybook/internal/sse"
	"github.com/jbrinkw/daybook/internal/storage"
)

// deps is the wiring both entrypoints share: config, logger, vault
// storage, and the entries index.
type deps struct {
	cfg    *Config
	logger *slog.Logger
	store  storage.Provider
	db     *index.DB
}

// bootstrap applies options, then opens the vault and the entries index
// and brings the index up to date. logTarget is where the default logger
// writes; the MCP entrypoint keeps stdout free for the JSON-RPC
// transport. createVault makes a missing vault directory instead of
// failing on it.
func bootstrap(opts []Option, logTarget io.Writer, createVault bool) (*deps, error) {
	app := &application{}
	for _, opt := range opts {
		opt(app)
	}
	if app.config == nil {
		return nil, fmt.Errorf("config is required")
	}
	cfg := app.config

	logger := app.logger
	if logger == nil {
		logger = slog.New(slog.NewJSONHandler(logTarget, &slog.HandlerOptions{
			Level: cfg.App.LogLevel,
		}))
	}
	slog.SetDefault(logger)

	if createVault {
		if err := os.MkdirAll(cfg.Vault.Path, 0o755); err != nil {
			return nil, fmt.Errorf("create vault: %w", err)
		}
	}
	store, err := storage.NewFS(cfg.Vault.Path)
	if err != nil {
		return nil, fmt.Errorf("open vault storage: %w", err)
	}
	db, err := index.Open(cfg.SQLite.Path)
	if err != nil {
		return nil, fmt.Errorf("open entries index: %w", err)
	}

	if err := index.Sync(db, store, logger); err != nil {
		logger.Warn("startup sync failed", slog.String("error", err.Error()))
	}
	return &deps{cfg: cfg, logger: logger, store: store, db: db}, nil
}

// Run starts the HTTP server with the given options.
func Run(ctx context.Context, opts ...Option) error {
	d, err := bootstrap(opts, os.Stdout, true)
	if err != nil {
		return err
	}
	defer d.db.Close()
	cfg, logger := d.cfg, d.logger

	broker := sse.NewBroker(2 * time.Second)
	defer broker.Close()

	svc := noteservice.NewService(d.store, d.db, logger)

	httpServer := &http.Server{
		Addr:    cfg.App.HTTP.Address(),
		Handler: buildHandler(cfg, svc, broker),
	}

	logger.Info("Server starting...",
		slog.String("http_address", cfg.App.HTTP.Address()),
		slog.String("vault_path", cfg.Vault.Path),
		slog.String("sqlite_path", cfg.SQLite.Path),
		slog.String("log_level", cfg.App.LogLevel.String()))

	watch := func(watchCtx context.Context) error {
		return index.Watch(watchCtx, d.db, d.store, cfg.Vault.Path, logger, broker.PublishFileEvent)
	}
	if err := serve(ctx, logger, httpServer, watch); err != nil {
		logger.Error("Application error", slog.String("error", err.Error()))
		return err
	}

	logger.Info("Server stopped successfully")
	return nil
}

// buildHandler assembles the chi router: health endpoints, the API under
// /api, and attachment files at the root.
func buildHandler(cfg *Config, svc *noteservice.Service, broker *sse.Broker) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	// Health check endpoints (unauthenticated).
	r.Get("/health/live", healthOK)
	r.Get("/health/ready", healthOK)

	r.Mount("/api", api.NewRouter(svc, cfg.Auth.AuthEnabled(), cfg.Auth.Token, broker, cfg.Vault.Path))

	// Attachment files are served at the root so /attachments URLs in note
	// content resolve directly.
	attachments := api.NewAttachmentHandler(cfg.Vault.Path)
	r.Get("/attachments/{filename}", attachments.ServeFile)

	return r
}

func healthOK(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(`{"status":"ok"}`))
}

// serve runs the HTTP server, the vault watcher, and the signal handler
// until one fails or a shutdown signal arrives.
func serve(ctx context.Context, logger *slog.Logger, httpServer *http.Server, watch func(context.Context) error) error {
	g, gCtx := errgroup.WithContext(ctx)

	// gCtx is not cancelled on a clean shutdown, so the watcher gets its
	// own cancel that the signal handler fires after the server drains.
	watchCtx, stopWatch := context.WithCancel(gCtx)
	defer stopWatch()

	g.Go(func() error {
		if err := watch(watchCtx); err != nil {
			logger.Warn("file watcher stopped", slog.String("error", err.Error()))
		}
		return nil
	})

	g.Go(func() error {
		logger.Info("HTTP server listening", slog.String("address", httpServer.Addr))
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("HTTP server error: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		quit := make(chan os.Signal, 1)
		signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

		select {
		case sig := <-quit:
			logger.Info("Shutdown signal received", slog.String("signal", sig.String()))
		case <-gCtx.Done():
			logger.Info("Context cancelled, shutting down")
		}

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			logger.Error("HTTP server shutdown failed", slog.String("error", err.Error()))
		}
		stopWatch()

		return nil
	})

	return g.Wait()
}
