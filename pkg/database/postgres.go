package database

import (
	"context"
	"fmt"
	"strconv"

	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"
)

// NewPostgresPool creates a pgx connection pool for PostgreSQL.
// lockTimeoutMS > 0 sets a session lock_timeout so a transaction waiting on
// a contended row lock fails fast with a transient error instead of queueing
// indefinitely.
func NewPostgresPool(ctx context.Context, dsn string, lockTimeoutMS int, logger *zap.Logger) (*pgxpool.Pool, error) {
	config, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("parse pgx config: %w", err)
	}
	if lockTimeoutMS > 0 {
		config.ConnConfig.RuntimeParams["lock_timeout"] = strconv.Itoa(lockTimeoutMS)
	}

	pool, err := pgxpool.NewWithConfig(ctx, config)
	if err != nil {
		return nil, fmt.Errorf("create pool: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	logger.Info("PostgreSQL connection pool established")
	return pool, nil
}
