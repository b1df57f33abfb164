// Package benchstore persists completed benchmark runs: a PostgresStore for
// durable, queryable storage and a JSONFileStore fallback for environments
// without a database, both behind the same Store interface.
package benchstore

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/lib/pq" // imported for side-effects: registers the postgres driver
	"go.uber.org/zap"
)

// DBConfig holds database connection configuration.
type DBConfig struct {
	DSN           string
	MaxConns      int
	MaxIdleConns  int
	MaxRetries    int           // default: 5
	RetryInterval time.Duration // default: 1s
}

// NewDB opens a postgres connection pool, retrying with exponential backoff
// until it can ping the server or MaxRetries is exhausted.
func NewDB(cfg DBConfig, logger *zap.Logger) (*sql.DB, error) {
	if cfg.DSN == "" {
		return nil, fmt.Errorf("benchstore: database DSN is required")
	}

	maxRetries := cfg.MaxRetries
	if maxRetries <= 0 {
		maxRetries = 5
	}
	retryInterval := cfg.RetryInterval
	if retryInterval <= 0 {
		retryInterval = time.Second
	}

	db, err := sql.Open("postgres", cfg.DSN)
	if err != nil {
		return nil, fmt.Errorf("benchstore: failed to open database: %w", err)
	}

	db.SetMaxOpenConns(cfg.MaxConns)
	db.SetMaxIdleConns(cfg.MaxIdleConns)
	db.SetConnMaxLifetime(time.Hour)

	var lastErr error
	for attempt := 1; attempt <= maxRetries; attempt++ {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		err := db.PingContext(ctx)
		cancel()

		if err == nil {
			logger.Info("benchstore: database connection established",
				zap.Int("max_conns", cfg.MaxConns),
				zap.Int("max_idle_conns", cfg.MaxIdleConns),
				zap.Int("attempts", attempt),
			)
			return db, nil
		}

		lastErr = err
		if attempt < maxRetries {
			exp := attempt - 1
			if exp > 10 {
				exp = 10
			}
			mult := time.Duration(1)
			for i := 0; i < exp; i++ {
				mult *= 2
			}
			waitTime := retryInterval * mult
			if waitTime > 30*time.Second {
				waitTime = 30 * time.Second
			}
			logger.Warn("benchstore: database connection failed, retrying",
				zap.Int("attempt", attempt),
				zap.Int("max_retries", maxRetries),
				zap.Duration("retry_in", waitTime),
				zap.Error(err),
			)
			time.Sleep(waitTime)
		}
	}

	db.Close()
	return nil, fmt.Errorf("benchstore: failed to connect after %d attempts: %w", maxRetries, lastErr)
}

// Schema is the DDL PostgresStore needs. cmd/server applies it at startup
// whenever DATABASE_DSN is set; every statement is IF NOT EXISTS, so
// applying it again is harmless.
const Schema = `
CREATE TABLE IF NOT EXISTS bench_runs (
	run_id       TEXT PRIMARY KEY,
	completed_at TIMESTAMPTZ NOT NULL DEFAULT now(),
	target_rps   DOUBLE PRECISION NOT NULL,
	p95_ms       DOUBLE PRECISION NOT NULL,
	p99_ms       DOUBLE PRECISION NOT NULL,
	success_rate DOUBLE PRECISION NOT NULL,
	metrics      JSONB NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_bench_runs_completed_at ON bench_runs (completed_at DESC);
`
