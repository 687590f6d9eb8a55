// Package app wires configuration into the long-lived services behind the thanks function.
package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/JakeFAU/dusty-domains/internal/api"
	"github.com/JakeFAU/dusty-domains/internal/config"
	"github.com/JakeFAU/dusty-domains/internal/logging"
	"github.com/JakeFAU/dusty-domains/internal/render"
	"github.com/JakeFAU/dusty-domains/internal/screenshot"
	"github.com/JakeFAU/dusty-domains/internal/storage/airtable"
	"github.com/JakeFAU/dusty-domains/internal/storage/memory"
	"github.com/JakeFAU/dusty-domains/internal/storage/postgres"
	"github.com/JakeFAU/dusty-domains/internal/storage/sqlite"
	"github.com/JakeFAU/dusty-domains/internal/thanks"
	"github.com/JakeFAU/dusty-domains/web"
)

// ThanksTemplate is the page template rendered for the thanks route.
const ThanksTemplate = "thanks.html"

const shutdownTimeout = 10 * time.Second

type pinger interface {
	Ping(ctx context.Context) error
}

// App contains the application's dependencies.
type App struct {
	cfg       config.Config
	logger    *zap.Logger
	store     screenshot.Store
	handler   *thanks.Handler
	apiServer *api.Server
}

// Build constructs every service described by cfg.
func Build(ctx context.Context, cfg config.Config) (*App, error) {
	logger, err := logging.New(cfg.Logging.Development, cfg.Logging.Level)
	if err != nil {
		return nil, fmt.Errorf("init logger: %w", err)
	}
	return BuildWithLogger(ctx, cfg, logger)
}

// BuildWithLogger is Build with a caller-supplied logger.
func BuildWithLogger(ctx context.Context, cfg config.Config, logger *zap.Logger) (*App, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	logger.Info("creating application",
		zap.String("store_backend", cfg.Store.Backend),
		zap.String("route", cfg.Render.Route),
		zap.String("pattern", cfg.Render.Pattern),
	)

	store, err := openStore(ctx, cfg, logger)
	if err != nil {
		return nil, err
	}

	engine, err := render.New(web.Templates, []render.Route{
		{Name: cfg.Render.Route, Pattern: cfg.Render.Pattern, Template: ThanksTemplate},
	}, render.WithGlobalData(map[string]any{
		"title": cfg.Site.Title,
		"url":   cfg.Site.URL,
	}))
	if err != nil {
		closeStore(store, logger)
		return nil, fmt.Errorf("init renderer: %w", err)
	}

	resolver := screenshot.NewResolver(store,
		screenshot.WithDefaultURL(cfg.Screenshot.DefaultURL),
		screenshot.WithLogger(logger.Named("screenshot")),
	)
	handler := thanks.NewHandler(engine, resolver, logger.Named("thanks"))

	a := &App{
		cfg:     cfg,
		logger:  logger,
		store:   store,
		handler: handler,
	}
	a.apiServer = api.NewServer(handler, api.Options{
		RequestTimeout: cfg.RequestTimeout(),
		Ready:          a.ready,
	}, logger.Named("api"))
	return a, nil
}

func openStore(ctx context.Context, cfg config.Config, logger *zap.Logger) (screenshot.Store, error) {
	switch cfg.Store.Backend {
	case config.BackendAirtable:
		logger.Info("using airtable record store", zap.String("table", cfg.Airtable.Table))
		client, err := airtable.New(airtable.Config{
			BaseURL: cfg.Airtable.BaseURL,
			BaseID:  cfg.Airtable.BaseID,
			APIKey:  cfg.Airtable.APIKey,
			Table:   cfg.Airtable.Table,
			Timeout: cfg.AirtableTimeout(),
		}, nil, logger.Named("airtable"))
		if err != nil {
			return nil, fmt.Errorf("init airtable store: %w", err)
		}
		return client, nil
	case config.BackendPostgres:
		logger.Info("using postgres record store", zap.String("table", cfg.Postgres.Table))
		store, err := postgres.NewSubmissionStore(ctx, postgres.Config{
			DSN:      cfg.Postgres.DSN,
			Table:    cfg.Postgres.Table,
			MaxConns: cfg.Postgres.MaxConns,
		})
		if err != nil {
			return nil, fmt.Errorf("init postgres store: %w", err)
		}
		return store, nil
	case config.BackendSQLite:
		logger.Info("using sqlite record store", zap.String("path", cfg.SQLite.Path))
		store, err := sqlite.Open(ctx, cfg.SQLite.Path)
		if err != nil {
			return nil, fmt.Errorf("init sqlite store: %w", err)
		}
		return store, nil
	case config.BackendMemory:
		logger.Info("using in-memory record store; every site gets the default screenshot until seeded")
		return memory.NewSubmissionStore(), nil
	default:
		return nil, fmt.Errorf("unknown store backend: %s", cfg.Store.Backend)
	}
}

// Handler returns the thanks page handler shared by every entry point.
func (a *App) Handler() *thanks.Handler {
	return a.handler
}

// HTTPHandler returns the router served by Run.
func (a *App) HTTPHandler() http.Handler {
	return a.apiServer.Handler()
}

// Store returns the configured record store.
func (a *App) Store() screenshot.Store {
	return a.store
}

// Logger returns the application logger.
func (a *App) Logger() *zap.Logger {
	return a.logger
}

func (a *App) ready(ctx context.Context) error {
	if p, ok := a.store.(pinger); ok {
		return p.Ping(ctx)
	}
	return nil
}

// Run serves HTTP until ctx is canceled or the process is signaled.
func (a *App) Run(ctx context.Context) error {
	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", a.cfg.Server.Port),
		Handler:           a.apiServer.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	serveErr := make(chan error, 1)
	go func() {
		a.logger.Info("http server started", zap.Int("port", a.cfg.Server.Port))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			a.logger.Error("http server error", zap.Error(err))
			serveErr <- err
		}
		close(serveErr)
	}()

	var runErr error
	select {
	case <-ctx.Done():
		a.logger.Info("shutdown initiated")
	case err, ok := <-serveErr:
		if ok {
			runErr = fmt.Errorf("serve http: %w", err)
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		a.logger.Error("server shutdown error", zap.Error(err))
	}
	return runErr
}

// Close releases the record store and flushes the logger.
func (a *App) Close() {
	closeStore(a.store, a.logger)
	a.logger.Info("shutdown complete")
	_ = a.logger.Sync()
}

func closeStore(store screenshot.Store, logger *zap.Logger) {
	c, ok := store.(io.Closer)
	if !ok {
		return
	}
	if err := c.Close(); err != nil {
		logger.Warn("record store close failed", zap.Error(err))
	}
}
