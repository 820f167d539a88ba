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

	"github.com/starford/notepad/internal/api"
	"github.com/starford/notepad/internal/journal"
	"github.com/starford/notepad/internal/mcpserver"
	"github.com/starford/notepad/internal/notestore"
	"github.com/starford/notepad/internal/sse"
	"github.com/starford/notepad/internal/storage"
	"github.com/starford/notepad/internal/watcher"
)

// Run starts the application with the given options.
func Run(ctx context.Context, opts ...Option) error {
	app := &application{
		stdin:  os.Stdin,
		stdout: os.Stdout,
	}

	for _, opt := range opts {
		opt(app)
	}

	if app.config == nil {
		return fmt.Errorf("config is required")
	}

	cfg := app.config

	// stdout carries the protocol in stdio mode, so logs go to stderr there.
	var logOut io.Writer = os.Stdout
	if cfg.MCP.Transport == TransportStdio {
		logOut = os.Stderr
	}
	logger := slog.New(slog.NewJSONHandler(logOut, &slog.HandlerOptions{
		Level: cfg.App.LogLevel,
	}))
	slog.SetDefault(logger)

	logger.Info("Configuration loaded",
		slog.String("http_address", cfg.App.HTTP.Address()),
		slog.String("store_path", cfg.Store.Path),
		slog.Bool("store_lock", cfg.Store.Lock),
		slog.String("mcp_transport", cfg.MCP.Transport),
		slog.String("journal_path", cfg.Journal.Path),
		slog.String("log_level", cfg.App.LogLevel.String()))

	file, err := storage.NewOSFile(cfg.Store.Path)
	if err != nil {
		return fmt.Errorf("init storage: %w", err)
	}

	broker := sse.NewBroker(time.Second)
	defer broker.Close()

	storeOpts := []notestore.Option{
		notestore.WithLogger(logger),
		notestore.WithNotifier(broker.PublishMutation),
	}
	if cfg.Store.Lock {
		storeOpts = append(storeOpts, notestore.WithLocker(storage.NewFileLock(storage.LockPath(file.Path()))))
	}

	// history stays a nil interface when the journal is disabled.
	var history mcpserver.History
	if cfg.Journal.Enabled() {
		db, err := journal.Open(cfg.Journal.Path)
		if err != nil {
			return fmt.Errorf("init journal: %w", err)
		}
		defer db.Close()
		storeOpts = append(storeOpts, notestore.WithJournal(db))
		history = db
	}

	store := notestore.New(file, storeOpts...)
	logger.Info("Notes store ready", slog.String("path", store.Path()))
	mcpSrv := mcpserver.New(store, history, logger)

	g, gCtx := errgroup.WithContext(ctx)

	g.Go(func() error {
		if err := watcher.Watch(gCtx, store.Path(), watcher.DefaultDebounce, logger, broker.PublishFileChange); err != nil {
			logger.Warn("watcher failed", slog.String("error", err.Error()))
		}
		return nil
	})

	if cfg.MCP.Transport == TransportStdio {
		g.Go(func() error {
			logger.Info("Serving MCP over stdio")
			if err := mcpSrv.ServeStdio(gCtx, app.stdin, app.stdout); err != nil && !errors.Is(err, context.Canceled) {
				return fmt.Errorf("MCP stdio error: %w", err)
			}
			return context.Canceled
		})
	} else {
		httpServer := &http.Server{
			Addr:              cfg.App.HTTP.Address(),
			Handler:           newRouter(cfg, store, history, broker, mcpSrv),
			ReadHeaderTimeout: 10 * time.Second,
		}

		g.Go(func() error {
			logger.Info("Starting HTTP server",
				slog.String("address", cfg.App.HTTP.Address()),
				slog.String("mcp_endpoint", cfg.MCP.Endpoint))
			if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				return fmt.Errorf("HTTP server error: %w", err)
			}
			return nil
		})

		g.Go(func() error {
			<-gCtx.Done()
			logger.Info("Shutting down server...")
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			if err := httpServer.Shutdown(shutdownCtx); err != nil {
				logger.Error("HTTP server shutdown error", slog.String("error", err.Error()))
			}
			return nil
		})
	}

	// Handle shutdown signals.
	g.Go(func() error {
		quit := make(chan os.Signal, 1)
		signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
		defer signal.Stop(quit)

		select {
		case sig := <-quit:
			logger.Info("Received shutdown signal", slog.String("signal", sig.String()))
			return context.Canceled
		case <-gCtx.Done():
			return nil
		}
	})

	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		logger.Error("Application error", slog.String("error", err.Error()))
		return err
	}

	logger.Info("Server stopped successfully")
	return nil
}

// newRouter builds the root chi router: health checks, REST API, SSE and MCP.
func newRouter(cfg *Config, store *notestore.Store, history mcpserver.History, broker *sse.Broker, mcpSrv *mcpserver.Server) http.Handler {
	var apiHistory api.History
	if history != nil {
		apiHistory = history
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)

	r.Get("/health/live", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})
	r.Get("/health/ready", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})

	r.Group(func(r chi.Router) {
		r.Use(middleware.Logger)
		r.Mount("/api", api.NewRouter(store, apiHistory, cfg.Auth.AuthEnabled(), cfg.Auth.Token, broker))
	})

	// MCP streamable HTTP keeps long-lived GET streams, so it skips the request logger.
	r.Handle(cfg.MCP.Endpoint, mcpSrv.HTTPHandler(cfg.MCP.Endpoint))

	return r
}
