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
	"runtime/debug"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/starford/boxgraph/internal/analyzer"
	"github.com/starford/boxgraph/internal/api"
	"github.com/starford/boxgraph/internal/embedding"
	"github.com/starford/boxgraph/internal/legend"
	"github.com/starford/boxgraph/internal/mcpserver"
	"github.com/starford/boxgraph/internal/pipeline"
	"github.com/starford/boxgraph/internal/query"
	"github.com/starford/boxgraph/internal/storage"
	"github.com/starford/boxgraph/internal/watch"
)

func newApplication(opts []Option) (*application, error) {
	app := &application{version: "dev", logOut: os.Stdout}
	for _, opt := range opts {
		opt(app)
	}
	if app.config == nil {
		return nil, fmt.Errorf("config is required")
	}
	return app, nil
}

// logger builds the structured JSON logger and installs it as the default.
func (a *application) logger(attrs ...any) *slog.Logger {
	logger := slog.New(slog.NewJSONHandler(a.logOut, &slog.HandlerOptions{
		Level: a.config.App.LogLevel,
	})).With(attrs...)
	slog.SetDefault(logger)
	return logger
}

// RunBuild builds the knowledge graph once. In watch mode it then keeps
// rebuilding after source changes until a shutdown signal arrives.
func RunBuild(ctx context.Context, opts ...Option) error {
	app, err := newApplication(opts)
	if err != nil {
		return err
	}
	cfg := app.config
	logger := app.logger(slog.String("run_id", uuid.NewString()))

	logger.Info("Configuration loaded",
		slog.String("root", cfg.Scan.Root),
		slog.String("output_dir", cfg.Output.Dir),
		slog.String("extractor", cfg.Analyzer.Extractor),
		slog.String("embedder", cfg.Embedder.Provider),
		slog.String("log_level", cfg.App.LogLevel.String()))

	p, err := newPipeline(ctx, cfg, logger)
	if err != nil {
		return err
	}
	if _, err := p.Run(ctx); err != nil {
		return err
	}
	if !app.watch {
		return nil
	}

	w, err := watch.New(cfg.Scan.Root, p.Discoverer(), cfg.Watch.Debounce, func(ctx context.Context) error {
		_, err := p.Run(ctx)
		return err
	}, logger)
	if err != nil {
		return err
	}

	g, gCtx := errgroup.WithContext(ctx)
	watchCtx, stop := context.WithCancel(gCtx)
	defer stop()

	g.Go(func() error {
		defer stop()
		return w.Run(watchCtx)
	})
	g.Go(func() error {
		waitForShutdown(watchCtx, logger)
		stop()
		return nil
	})

	if err := g.Wait(); err != nil {
		logger.Error("Application error", slog.String("error", err.Error()))
		return err
	}
	logger.Info("Watcher stopped successfully")
	return nil
}

// newPipeline wires the configured extractor, embedder and category rules
// into a build pipeline.
func newPipeline(ctx context.Context, cfg *Config, logger *slog.Logger) (*pipeline.Pipeline, error) {
	extractor, err := analyzer.NewExtractor(cfg.Analyzer.Extractor)
	if err != nil {
		return nil, fmt.Errorf("init analyzer: %w", err)
	}
	embedder, err := embedding.New(ctx, cfg.Embedder.Options())
	if err != nil {
		return nil, fmt.Errorf("init embedder: %w", err)
	}
	p, err := pipeline.New(pipeline.Config{
		Root:      cfg.Scan.Root,
		Include:   cfg.Scan.Include,
		Exclude:   cfg.Scan.Exclude,
		OutputDir: cfg.Output.Dir,
		Project: legend.Project{
			Name:        cfg.Project.Name,
			Description: cfg.Project.Description,
			Version:     cfg.Project.Version,
			Protocol:    cfg.Project.Protocol,
		},
		Security: cfg.Project.Security,
		Rules:    cfg.Analyzer.Categories,
		KeyBoxes: cfg.Project.KeyBoxes,
	},
		pipeline.WithAnalyzer(analyzer.New(
			analyzer.WithExtractor(extractor),
			analyzer.WithSubject(cfg.Project.Subject),
		)),
		pipeline.WithEmbedder(embedder),
		pipeline.WithLogger(logger),
	)
	if err != nil {
		return nil, fmt.Errorf("init pipeline: %w", err)
	}
	return p, nil
}

// LoadGraph reads the artifacts from the configured output directory.
func LoadGraph(cfg *Config) (*query.Graph, error) {
	store, err := storage.NewFS(cfg.Output.Dir)
	if err != nil {
		return nil, fmt.Errorf("open output dir: %w", err)
	}
	return query.Load(store)
}

// Serve loads the graph and serves the query API over HTTP until a
// shutdown signal arrives.
func Serve(ctx context.Context, opts ...Option) error {
	app, err := newApplication(opts)
	if err != nil {
		return err
	}
	cfg := app.config
	logger := app.logger()

	graph, err := LoadGraph(cfg)
	if err != nil {
		return err
	}
	logger.Info("Knowledge graph loaded",
		slog.String("output_dir", cfg.Output.Dir),
		slog.Int("boxes", graph.Stats().Boxes))

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	// Health check endpoints (unauthenticated).
	r.Get("/health/live", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})

	r.Mount("/api", api.NewRouter(graph, cfg.Auth.AuthEnabled(), cfg.Auth.Token))

	httpServer := &http.Server{
		Addr:              cfg.App.HTTP.Address(),
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, gCtx := errgroup.WithContext(ctx)

	g.Go(func() error {
		logger.Info("Starting HTTP server", slog.String("address", cfg.App.HTTP.Address()))
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("HTTP server error: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		waitForShutdown(gCtx, logger)
		logger.Info("Shutting down server...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			logger.Error("HTTP server shutdown error", slog.String("error", err.Error()))
		}
		return nil
	})

	if err := g.Wait(); err != nil {
		logger.Error("Application error", slog.String("error", err.Error()))
		return err
	}

	logger.Info("Server stopped successfully")
	return nil
}

// ServeMCP loads the graph and serves the query tools over stdio.
// Logs must not go to stdout, which carries the protocol.
func ServeMCP(ctx context.Context, opts ...Option) error {
	app, err := newApplication(append([]Option{WithLogOutput(os.Stderr)}, opts...))
	if err != nil {
		return err
	}
	logger := app.logger()

	graph, err := LoadGraph(app.config)
	if err != nil {
		return err
	}
	logger.Info("MCP server starting", slog.Int("boxes", graph.Stats().Boxes))
	return mcpserver.New(graph, app.version).ServeStdio()
}

// LogError logs a fatal application error together with the current
// goroutine's stack trace.
func LogError(logger *slog.Logger, err error) {
	logger.Error("application error",
		slog.String("error", err.Error()),
		slog.String("stack", string(debug.Stack())),
	)
}

// waitForShutdown blocks until SIGINT/SIGTERM or ctx cancellation.
func waitForShutdown(ctx context.Context, logger *slog.Logger) {
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(quit)

	select {
	case sig := <-quit:
		logger.Info("Received shutdown signal", slog.String("signal", sig.String()))
	case <-ctx.Done():
		logger.Info("Context cancelled, initiating shutdown")
	}
}
