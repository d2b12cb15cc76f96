package db

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

// NewPool connects to Postgres and verifies the connection. A store that
// cannot be reached at startup is fatal to the caller.
func NewPool(ctx context.Context, dsn string, minConns, maxConns int32) (*pgxpool.Pool, error) {
	cfg, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("parse dsn: %w", err)
	}
	if minConns > 0 {
		cfg.MinConns = minConns
	}
	if maxConns > 0 {
		cfg.MaxConns = maxConns
	}

	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("create pool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}
	return pool, nil
}

var schema = []string{
	`CREATE TABLE IF NOT EXISTS accounts (
		account_number TEXT PRIMARY KEY,
		hash_value     TEXT NOT NULL UNIQUE,
		account_type   TEXT NOT NULL,
		account_data   JSONB NOT NULL,
		created_at     TIMESTAMPTZ NOT NULL DEFAULT now(),
		updated_at     TIMESTAMPTZ NOT NULL DEFAULT now()
	)`,
	`CREATE TABLE IF NOT EXISTS orders (
		order_id       BIGINT PRIMARY KEY,
		account_number TEXT NOT NULL,
		status         TEXT NOT NULL,
		order_data     JSONB NOT NULL,
		entered_time   TIMESTAMPTZ NOT NULL DEFAULT now(),
		close_time     TIMESTAMPTZ,
		updated_at     TIMESTAMPTZ NOT NULL DEFAULT now()
	)`,
	`CREATE TABLE IF NOT EXISTS transactions (
		activity_id      BIGINT PRIMARY KEY,
		account_number   TEXT NOT NULL,
		type             TEXT NOT NULL,
		transaction_data JSONB NOT NULL,
		time             TIMESTAMPTZ NOT NULL DEFAULT now()
	)`,
	`CREATE TABLE IF NOT EXISTS user_preferences (
		id              INT PRIMARY KEY CHECK (id = 1),
		preference_data JSONB NOT NULL,
		updated_at      TIMESTAMPTZ NOT NULL DEFAULT now()
	)`,
	`CREATE INDEX IF NOT EXISTS idx_orders_account ON orders (account_number)`,
	`CREATE INDEX IF NOT EXISTS idx_orders_status ON orders (status)`,
	`CREATE INDEX IF NOT EXISTS idx_orders_entered_time ON orders (entered_time)`,
	`CREATE INDEX IF NOT EXISTS idx_transactions_account_time ON transactions (account_number, time)`,
}

// Migrate creates the four tables and their filter indexes. Statements are
// idempotent so startup can run them unconditionally.
func Migrate(ctx context.Context, pool *pgxpool.Pool) error {
	for _, stmt := range schema {
		if _, err := pool.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("migrate: %w", err)
		}
	}
	return nil
}
