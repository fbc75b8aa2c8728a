// @title                      Task API
// @version                    1.0
// @description                Task management with username/password registration and JWT bearer sessions.
// @BasePath                   /
// @securityDefinitions.apikey BearerAuth
// @in                         header
// @name                       Authorization
// @description                Type "Bearer" followed by a space and the access token.
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"

	"github.com/taskhub/task-api/internal/api"
	"github.com/taskhub/task-api/internal/api/handler"
	"github.com/taskhub/task-api/internal/core/ports"
	"github.com/taskhub/task-api/internal/core/service"
	"github.com/taskhub/task-api/internal/infrastructure/config"
	"github.com/taskhub/task-api/internal/infrastructure/db/mongo"
	"github.com/taskhub/task-api/internal/infrastructure/db/redis"
	"github.com/taskhub/task-api/internal/infrastructure/db/sqlite"
	"github.com/taskhub/task-api/pkg/logger"
)

const (
	serviceName     = "task-api"
	shutdownTimeout = 10 * time.Second
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load(ctx)
	if err != nil {
		boot := logger.New(logger.Options{Service: serviceName, Output: os.Stderr})
		boot.Error().Err(err).Msg("configuration error")
		os.Exit(1)
	}

	log := logger.Init(logger.Options{
		Level:   cfg.LogLevel,
		Pretty:  cfg.IsDevelopment(),
		Service: serviceName,
	})

	if err := run(ctx, cfg, log); err != nil {
		log.Error().Err(err).Msg("server exited")
		os.Exit(1)
	}
}

// stores bundles the repositories chosen by STORE_DRIVER.
type stores struct {
	users  ports.UserRepository
	tasks  ports.TaskRepository
	checks map[string]handler.HealthCheck
	close  func(context.Context)
}

func run(ctx context.Context, cfg *config.Config, log zerolog.Logger) error {
	st, err := openStores(ctx, cfg)
	if err != nil {
		return err
	}
	defer st.close(context.Background())

	var idem service.IdempotencyStore
	if cfg.Redis.Enabled {
		rdb, err := redis.Connect(ctx, redis.Config{Addr: cfg.Redis.Addr, DB: cfg.Redis.DB})
		if err != nil {
			// Task creation still works without replay protection.
			log.Warn().Err(err).Str("addr", cfg.Redis.Addr).Msg("redis unavailable, idempotency keys disabled")
		} else {
			defer rdb.Close()
			idem = redis.NewIdempotencyStore(rdb)
			st.checks["redis"] = func(ctx context.Context) error { return redis.Ping(ctx, rdb, 0) }
		}
	}

	tokens, err := service.NewTokenService(st.users, cfg.Auth.SecretKey, cfg.Auth.Algorithm, cfg.Auth.TokenTTL())
	if err != nil {
		return fmt.Errorf("token service: %w", err)
	}
	hasher := service.NewBcryptHasher(cfg.Auth.BcryptCost)
	authService := service.NewAuthService(st.users, hasher, tokens, log.With().Str("component", "auth").Logger())
	taskService := service.NewTaskService(st.tasks, idem, log.With().Str("component", "tasks").Logger())

	e := api.NewRouter(api.Dependencies{
		AuthService:  authService,
		TaskService:  taskService,
		TokenTTL:     tokens.TTL(),
		HealthChecks: st.checks,
		Logger:       log,
	})

	errCh := make(chan error, 1)
	go func() {
		log.Info().Str("port", cfg.Port).Str("store", cfg.Store.Driver).Msg("http server listening")
		if err := e.Start(":" + cfg.Port); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	log.Info().Msg("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return e.Shutdown(shutdownCtx)
}

func openStores(ctx context.Context, cfg *config.Config) (*stores, error) {
	switch cfg.Store.Driver {
	case config.StoreSQLite:
		db, err := sqlite.Open(ctx, sqlite.Config{Path: cfg.SQLite.Path})
		if err != nil {
			return nil, err
		}
		return &stores{
			users: sqlite.NewUserRepository(db),
			tasks: sqlite.NewTaskRepository(db),
			checks: map[string]handler.HealthCheck{
				"sqlite": db.PingContext,
			},
			close: func(context.Context) { _ = db.Close() },
		}, nil

	default:
		client, db, err := mongo.Connect(ctx, mongo.Config{URI: cfg.Mongo.URI, Database: cfg.Mongo.Database})
		if err != nil {
			return nil, err
		}
		if err := mongo.EnsureIndexes(ctx, db); err != nil {
			_ = client.Disconnect(ctx)
			return nil, err
		}
		return &stores{
			users: mongo.NewUserRepository(db),
			tasks: mongo.NewTaskRepository(db),
			checks: map[string]handler.HealthCheck{
				"mongodb": func(ctx context.Context) error { return mongo.Ping(ctx, db) },
			},
			close: func(ctx context.Context) { _ = client.Disconnect(ctx) },
		}, nil
	}
}
