package application

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/sethvargo/go-retry"

	"thirdcoast.systems/leadsync/internal/config"
)

var (
	dbOpenBackoffBase = 1 * time.Second
	dbPingTimeout     = 1 * time.Second
)

// OpenDBPoolWithRetry initializes a new PostgreSQL connection pool and waits
// until it answers a ping, backing off between attempts.
func OpenDBPoolWithRetry(ctx context.Context, conf config.Config, log *slog.Logger) (*pgxpool.Pool, error) {
	cfg, err := pgxpool.ParseConfig(conf.DatabaseDSN)
	if err != nil {
		return nil, fmt.Errorf("failed to parse DSN: %w", err)
	}

	retries := conf.DatabaseRetries
	if retries < 1 {
		retries = 1
	}
	backoff := func() retry.Backoff {
		return retry.WithMaxRetries(uint64(retries-1), retry.NewFibonacci(dbOpenBackoffBase))
	}

	log = log.With("db_host", cfg.ConnConfig.Host)
	log.Info("Connecting to database")

	pool, err := retry.DoValue(ctx, backoff(), func(ctx context.Context) (*pgxpool.Pool, error) {
		pool, err := pgxpool.NewWithConfig(ctx, cfg)
		if err != nil {
			log.Warn("Database pool not ready, retrying", "error", err)
			return nil, retry.RetryableError(err)
		}
		return pool, nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database after %d attempts: %w", retries, err)
	}

	err = retry.Do(ctx, backoff(), func(ctx context.Context) error {
		pingCtx, cancel := context.WithTimeout(ctx, dbPingTimeout)
		defer cancel()
		if err := pool.Ping(pingCtx); err != nil {
			log.Warn("Database ping failed, retrying", "error", err)
			return retry.RetryableError(err)
		}
		return nil
	})
	if err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping database after %d attempts: %w", retries, err)
	}

	log.Info("Connected to database")
	return pool, nil
}
