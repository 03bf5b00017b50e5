// Package app assembles the API from configuration.
package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/tasktrack/tasktrack/internal/auth"
	"github.com/tasktrack/tasktrack/internal/cache"
	"github.com/tasktrack/tasktrack/internal/config"
	"github.com/tasktrack/tasktrack/internal/handler"
	"github.com/tasktrack/tasktrack/internal/metrics"
	"github.com/tasktrack/tasktrack/internal/repository"
	"github.com/tasktrack/tasktrack/internal/repository/sqlite"
	"github.com/tasktrack/tasktrack/internal/service"
)

// Store is the persistence backend: PostgreSQL or the embedded SQLite store.
type Store interface {
	service.UserStore
	service.TodoStore
	Migrate(ctx context.Context) error
	Ping(ctx context.Context) error
	Close() error
}

// Component is a resource released on shutdown.
type Component struct {
	Name  string
	Close func(ctx context.Context) error
}

// App is the assembled HTTP API and the resources behind it.
type App struct {
	Handler http.Handler
	Metrics *metrics.InMemoryRecorder
	Store   Store

	components []Component
}

// New connects the store and, when configured, Redis, then builds the router.
// On error every resource opened so far is released.
func New(ctx context.Context, cfg *config.Config, logger *slog.Logger) (_ *App, err error) {
	a := &App{Metrics: metrics.NewInMemory()}
	defer func() {
		if err != nil {
			_ = a.Close(context.Background())
		}
	}()

	store, backend, err := openStore(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("open %s store: %w", backend, err)
	}
	a.Store = store
	a.register("database", func(context.Context) error { return store.Close() })
	logger.Info("connected to database", slog.String("backend", backend))

	if cfg.AutoMigrate {
		if err := store.Migrate(ctx); err != nil {
			return nil, fmt.Errorf("migrate: %w", err)
		}
		logger.Info("database schema ready")
	}

	routes := handler.RouterConfig{
		Logger:             logger,
		Metrics:            a.Metrics,
		Snapshotter:        a.Metrics,
		Database:           store,
		IsDevelopment:      cfg.IsDevelopment(),
		CORSAllowedOrigins: cfg.GetCORSAllowedOrigins(),
		MaxRequestBodySize: cfg.MaxRequestBodySize,
	}

	var identities auth.IdentityCache
	if cfg.RedisURL != "" {
		client, err := cache.New(ctx, cfg.RedisURL)
		if err != nil {
			return nil, fmt.Errorf("connect redis: %w", err)
		}
		a.register("redis", func(context.Context) error { return client.Close() })
		logger.Info("connected to Redis")

		identities = cache.NewIdentityCache(client, cfg.IdentityCacheTTL)
		routes.Cache = client
	}

	hasher := auth.NewHasher(cfg.BcryptCost, logger, auth.WithLegacyHook(a.Metrics.IncLegacyHash))
	tokens := auth.NewTokenService(cfg.SecretKey, cfg.JWTAlgorithm, cfg.AccessTokenTTL, logger)

	routes.Auth = service.NewAuthService(store, hasher, tokens, a.Metrics, logger)
	routes.Todos = service.NewTodoService(store, a.Metrics)
	routes.Resolver = auth.NewResolver(tokens, store, identities, logger)

	a.Handler = handler.NewRouter(routes)
	return a, nil
}

// Components returns the resources to release, in the order they were opened.
func (a *App) Components() []Component {
	return a.components
}

// Close releases every resource in reverse order.
func (a *App) Close(ctx context.Context) error {
	var errs []error
	for i := len(a.components) - 1; i >= 0; i-- {
		c := a.components[i]
		if err := c.Close(ctx); err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", c.Name, err))
		}
	}
	a.components = nil
	return errors.Join(errs...)
}

func (a *App) register(name string, fn func(ctx context.Context) error) {
	a.components = append(a.components, Component{Name: name, Close: fn})
}

func openStore(ctx context.Context, cfg *config.Config) (Store, string, error) {
	if cfg.UsesSQLite() {
		store, err := sqlite.Open(ctx, cfg.SQLitePath())
		return store, "sqlite", err
	}
	repo, err := repository.New(ctx, cfg.DatabaseURL)
	return repo, "postgres", err
}
