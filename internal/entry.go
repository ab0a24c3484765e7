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
	"github.com/go-chi/cors"
	"golang.org/x/sync/errgroup"

	"github.com/starford/promptloom/internal/api"
	"github.com/starford/promptloom/internal/drafts"
	"github.com/starford/promptloom/internal/index"
	"github.com/starford/promptloom/internal/library"
	"github.com/starford/promptloom/internal/mcpserver"
	"github.com/starford/promptloom/internal/metrics"
	"github.com/starford/promptloom/internal/promptservice"
	"github.com/starford/promptloom/internal/sse"
	"github.com/starford/promptloom/internal/store"
)

// core holds the components shared by the HTTP and MCP entry points.
type core struct {
	store    *store.MemStore
	db       *index.DB
	broker   *sse.Broker
	metrics  *metrics.Collector
	svc      *promptservice.Service
	importer *library.Importer
}

func (c *core) close() {
	c.broker.Close()
	if err := c.db.Close(); err != nil {
		slog.Warn("index close failed", slog.String("error", err.Error()))
	}
}

func setup(opts []Option) (*application, *slog.Logger, error) {
	app := &application{logOutput: os.Stdout}
	for _, opt := range opts {
		opt(app)
	}
	if app.config == nil {
		return nil, nil, fmt.Errorf("config is required")
	}

	// Initialize structured JSON logger.
	logger := slog.New(slog.NewJSONHandler(app.logOutput, &slog.HandlerOptions{
		Level: app.config.App.LogLevel,
	}))
	slog.SetDefault(logger)
	return app, logger, nil
}

func newCore(ctx context.Context, cfg *Config, logger *slog.Logger) (*core, error) {
	st := store.NewMemStore()
	if cfg.Seed.Defaults {
		store.Seed(st)
	}

	db, err := index.Open(cfg.Index.DSN)
	if err != nil {
		return nil, fmt.Errorf("init index: %w", err)
	}
	if err := index.Sync(db, st, logger); err != nil {
		logger.Warn("initial index sync failed", slog.String("error", err.Error()))
	}

	c := &core{
		store:   st,
		db:      db,
		broker:  sse.NewBroker(cfg.Events.Throttle),
		metrics: metrics.NewCollector("promptloom"),
	}
	c.svc = promptservice.NewService(st, db,
		promptservice.WithNotifier(c.broker),
		promptservice.WithMetrics(c.metrics),
		promptservice.WithLogger(logger),
	)

	if cfg.Library.Enabled() {
		if err := os.MkdirAll(cfg.Library.Path, 0o755); err != nil {
			c.close()
			return nil, fmt.Errorf("create library dir: %w", err)
		}
		fsys, err := library.NewFS(cfg.Library.Path)
		if err != nil {
			c.close()
			return nil, fmt.Errorf("init library: %w", err)
		}
		c.importer = library.NewImporter(fsys, c.svc, logger, c.metrics)
		if err := c.importer.Sync(ctx); err != nil {
			logger.Warn("initial library import failed", slog.String("error", err.Error()))
		}
	}
	return c, nil
}

// watch runs the library watcher when one is configured.
func (c *core) watch(ctx context.Context, cfg *Config, logger *slog.Logger) error {
	if c.importer == nil || !cfg.Library.Watch {
		return nil
	}
	if err := library.Watch(ctx, c.importer, logger); err != nil {
		return fmt.Errorf("library watcher: %w", err)
	}
	return nil
}

// Run starts the HTTP application with the given options.
func Run(ctx context.Context, opts ...Option) error {
	app, logger, err := setup(opts)
	if err != nil {
		return err
	}
	cfg := app.config

	logger.Info("Configuration loaded",
		slog.String("http_address", cfg.App.HTTP.Address()),
		slog.String("index_dsn", cfg.Index.DSN),
		slog.String("library_path", cfg.Library.Path),
		slog.Bool("seed_defaults", cfg.Seed.Defaults),
		slog.String("log_level", cfg.App.LogLevel.String()))

	c, err := newCore(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer c.close()

	reg := drafts.NewRegistry(c.svc, c.svc,
		drafts.WithTTL(cfg.Drafts.TTL),
		drafts.WithMax(cfg.Drafts.Max),
		drafts.WithLogger(logger),
		drafts.WithMetrics(c.metrics),
	)

	apiRouter := api.NewRouter(c.svc, reg, cfg.Auth.AuthEnabled(), cfg.Auth.Token, c.broker)

	// Build chi router.
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(c.metrics.Middleware)
	if len(cfg.App.HTTP.AllowedOrigins) > 0 {
		r.Use(cors.Handler(cors.Options{
			AllowedOrigins: cfg.App.HTTP.AllowedOrigins,
			AllowedMethods: []string{"GET", "POST", "PATCH", "DELETE", "OPTIONS"},
			AllowedHeaders: []string{"Accept", "Authorization", "Content-Type"},
			ExposedHeaders: []string{"Content-Disposition"},
			MaxAge:         300,
		}))
	}

	// Health check endpoints (unauthenticated).
	r.Get("/health/live", func(w http.ResponseWriter, _ *http.Request) {
		writeStatus(w, http.StatusOK, "ok")
	})
	r.Get("/health/ready", func(w http.ResponseWriter, r *http.Request) {
		if err := c.db.Ping(r.Context()); err != nil {
			logger.Warn("readiness check failed", slog.String("error", err.Error()))
			writeStatus(w, http.StatusServiceUnavailable, "unavailable")
			return
		}
		writeStatus(w, http.StatusOK, "ok")
	})

	r.Handle("/metrics", c.metrics.Handler())

	// Mount API routes under /api.
	r.Mount("/api", apiRouter)

	if cfg.MCP.HTTPEnabled {
		mcpSrv := mcpserver.New(c.svc, logger)
		r.Handle("/mcp", api.AuthMiddleware(cfg.Auth.AuthEnabled(), cfg.Auth.Token)(mcpSrv.HTTPHandler()))
	}

	httpServer := &http.Server{
		Addr:              cfg.App.HTTP.Address(),
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}
	// Open SSE streams only end when the broker closes their channels.
	httpServer.RegisterOnShutdown(c.broker.Close)

	logger.Info("Server starting...", slog.String("http_address", cfg.App.HTTP.Address()))

	g, gCtx := errgroup.WithContext(ctx)

	g.Go(func() error {
		return c.watch(gCtx, cfg, logger)
	})

	// Expire idle drafts.
	g.Go(func() error {
		return reg.Run(gCtx, cfg.Drafts.Interval)
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
		defer signal.Stop(quit)

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

		// Stop the watcher and the janitor too.
		return errShutdown
	})

	if err := g.Wait(); err != nil && !errors.Is(err, errShutdown) {
		logger.Error("Application error", slog.String("error", err.Error()))
		return err
	}

	logger.Info("Server stopped successfully")
	return nil
}

// RunMCP serves the MCP tools on stdin/stdout until the client disconnects.
func RunMCP(ctx context.Context, opts ...Option) error {
	opts = append([]Option{WithLogOutput(os.Stderr)}, opts...)
	app, logger, err := setup(opts)
	if err != nil {
		return err
	}
	cfg := app.config

	c, err := newCore(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer c.close()

	srv := mcpserver.New(c.svc, logger)

	g, gCtx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return c.watch(gCtx, cfg, logger)
	})
	g.Go(func() error {
		logger.Info("Starting MCP stdio server")
		if err := srv.ServeStdio(); err != nil {
			return fmt.Errorf("mcp stdio: %w", err)
		}
		return errShutdown
	})

	if err := g.Wait(); err != nil && !errors.Is(err, errShutdown) {
		return err
	}
	return nil
}

// errShutdown cancels the errgroup once the server loop has returned.
var errShutdown = errors.New("shutdown")

func writeStatus(w http.ResponseWriter, code int, status string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_, _ = fmt.Fprintf(w, `{"status":%q}`, status)
}
