package main

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"account_service/internal/cache"
	"account_service/internal/config"
	"account_service/internal/logger"
	"account_service/internal/repository"
	"account_service/internal/repository/db"

	"github.com/sethvargo/go-retry"
)

// memoryJanitorInterval is how often the in-process cache drops expired entries.
const memoryJanitorInterval = time.Minute

// withRetry retries fn with exponential backoff. Only used while starting up;
// request paths never retry.
func withRetry(ctx context.Context, cfg config.StartupConfig, log *logger.Logger, what string, fn func(context.Context) error) error {
	base := cfg.ConnectBackoff
	if base <= 0 {
		base = 200 * time.Millisecond
	}
	backoff := retry.WithMaxRetries(cfg.ConnectRetries, retry.NewExponential(base))

	attempt := 0
	return retry.Do(ctx, backoff, func(ctx context.Context) error {
		attempt++
		if err := fn(ctx); err != nil {
			log.Warnw("startup_connect_failed", "target", what, "attempt", attempt, "err", err)
			return retry.RetryableError(err)
		}
		return nil
	})
}

// store bundles the repository with the function that releases its connection.
type store struct {
	repos *repository.Repository
	close func() error
}

func openStore(ctx context.Context, cfg *config.Config, log *logger.Logger) (*store, error) {
	switch cfg.Store.Driver {
	case config.DriverSQLite:
		var conn *sql.DB
		err := withRetry(ctx, cfg.Startup, log, "sqlite", func(ctx context.Context) (err error) {
			conn, err = db.InitDB(ctx, cfg.Store.SQLite.Path)
			return err
		})
		if err != nil {
			return nil, err
		}
		return &store{repos: repository.NewSQLRepository(conn, repository.SQLite), close: conn.Close}, nil

	case config.DriverPostgres:
		pool := db.PostgresPool{
			MaxOpenConns:    cfg.Store.Postgres.MaxOpenConns,
			MaxIdleConns:    cfg.Store.Postgres.MaxIdleConns,
			ConnMaxLifetime: cfg.Store.Postgres.ConnMaxLifetime,
		}
		var conn *sql.DB
		err := withRetry(ctx, cfg.Startup, log, "postgres", func(ctx context.Context) (err error) {
			conn, err = db.InitPostgres(ctx, cfg.Store.Postgres.DSN, pool)
			return err
		})
		if err != nil {
			return nil, err
		}
		return &store{repos: repository.NewSQLRepository(conn, repository.Postgres), close: conn.Close}, nil

	case config.DriverFirestore:
		client, err := db.InitFirestore(ctx, db.FirestoreConfig{
			ProjectID:       cfg.Store.Firestore.ProjectID,
			CredentialsFile: cfg.Store.Firestore.CredentialsFile,
		})
		if err != nil {
			return nil, err
		}
		return &store{
			repos: repository.NewFirestoreRepository(client, cfg.Store.Firestore.Collection),
			close: client.Close,
		}, nil

	default:
		return nil, fmt.Errorf("unknown store driver %q", cfg.Store.Driver)
	}
}

func openCache(ctx context.Context, cfg *config.Config, log *logger.Logger) (cache.Cache, error) {
	switch cfg.Cache.Driver {
	case config.DriverMemory:
		return cache.NewMemory(memoryJanitorInterval), nil

	case config.DriverRedis:
		var c *cache.Redis
		err := withRetry(ctx, cfg.Startup, log, "redis", func(ctx context.Context) (err error) {
			c, err = cache.NewRedis(ctx, cache.RedisConfig{
				Addr:     cfg.Cache.Redis.Addr,
				Password: cfg.Cache.Redis.Password,
				DB:       cfg.Cache.Redis.DB,
			})
			return err
		})
		if err != nil {
			return nil, err
		}
		return c, nil

	default:
		return nil, fmt.Errorf("unknown cache driver %q", cfg.Cache.Driver)
	}
}
