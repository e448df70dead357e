package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

// DefaultMaxConns is the pool size when no WithMaxConns option is given.
const DefaultMaxConns = 10

// PoolOption tunes the pgx pool before it is opened.
type PoolOption func(*pgxpool.Config)

// WithMaxConns caps open connections. Values <= 0 keep the default.
func WithMaxConns(n int32) PoolOption {
	return func(c *pgxpool.Config) {
		if n > 0 {
			c.MaxConns = n
		}
	}
}

// Connect opens a pgx connection pool and performs a Ping to ensure connectivity.
// A failed Ping is fatal at startup; at request time the pool reconnects on its own.
func Connect(ctx context.Context, dsn string, opts ...PoolOption) (*pgxpool.Pool, error) {
	config, err := poolConfig(dsn, opts...)
	if err != nil {
		return nil, err
	}

	pool, err := pgxpool.NewWithConfig(ctx, config)
	if err != nil {
		return nil, fmt.Errorf("open pgx pool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}
	return pool, nil
}

func poolConfig(dsn string, opts ...PoolOption) (*pgxpool.Config, error) {
	config, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("parse pgx config: %w", err)
	}
	config.MaxConns = DefaultMaxConns
	config.MinConns = 0
	config.MaxConnLifetime = time.Hour
	config.HealthCheckPeriod = 30 * time.Second
	for _, opt := range opts {
		opt(config)
	}
	return config, nil
}
