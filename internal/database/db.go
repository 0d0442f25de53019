package database

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// ErrNotFound is returned when a lookup matches no row.
var ErrNotFound = errors.New("not found")

type DB struct {
	pool *pgxpool.Pool
}

type Config struct {
	Host        string
	Port        int
	User        string
	Password    string
	Database    string
	MaxConns    int32
	MinConns    int32
	MaxConnLife time.Duration
	MaxConnIdle time.Duration
}

func New(ctx context.Context, cfg Config) (*DB, error) {
	dsn := fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=disable",
		cfg.User, cfg.Password, cfg.Host, cfg.Port, cfg.Database)

	poolConfig, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	poolConfig.MaxConns = cfg.MaxConns
	poolConfig.MinConns = cfg.MinConns
	poolConfig.MaxConnLifetime = cfg.MaxConnLife
	poolConfig.MaxConnIdleTime = cfg.MaxConnIdle

	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to create pool: %w", err)
	}

	// Test connection
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return &DB{pool: pool}, nil
}

func (db *DB) Close() {
	db.pool.Close()
}

// Migrate creates the tables the stores depend on.
func (db *DB) Migrate(ctx context.Context) error {
	schema := `
CREATE TABLE IF NOT EXISTS calculation_history (
	id UUID PRIMARY KEY,
	link TEXT NOT NULL,
	item_name TEXT,
	destination_address TEXT NOT NULL,
	destination_zip TEXT NOT NULL,
	shipping_method TEXT NOT NULL,
	item_price_jpy DOUBLE PRECISION,
	item_price_usd DOUBLE PRECISION,
	domestic_shipping_jpy DOUBLE PRECISION,
	domestic_shipping_usd DOUBLE PRECISION,
	service_fee_jpy DOUBLE PRECISION,
	service_fee_usd DOUBLE PRECISION,
	international_shipping_jpy DOUBLE PRECISION,
	international_shipping_usd DOUBLE PRECISION,
	customs_duty_usd DOUBLE PRECISION,
	customs_processing_usd DOUBLE PRECISION,
	total_jpy DOUBLE PRECISION,
	total_usd DOUBLE PRECISION,
	exchange_rate DOUBLE PRECISION,
	created_at TIMESTAMPTZ NOT NULL DEFAULT now()
);
CREATE INDEX IF NOT EXISTS idx_calculation_history_created_at
	ON calculation_history (created_at DESC);

CREATE TABLE IF NOT EXISTS saved_addresses (
	id UUID PRIMARY KEY,
	address TEXT NOT NULL,
	zip_code TEXT NOT NULL,
	name TEXT,
	created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
	last_used TIMESTAMPTZ NOT NULL DEFAULT now(),
	use_count INTEGER NOT NULL DEFAULT 1,
	UNIQUE (address, zip_code)
);
`
	if _, err := db.pool.Exec(ctx, schema); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}
	return nil
}

// Exec executes a query without returning any rows
func (db *DB) Exec(ctx context.Context, sql string, args ...interface{}) (pgconn.CommandTag, error) {
	return db.pool.Exec(ctx, sql, args...)
}

// Query executes a query that returns rows
func (db *DB) Query(ctx context.Context, sql string, args ...interface{}) (pgx.Rows, error) {
	return db.pool.Query(ctx, sql, args...)
}

// QueryRow executes a query that is expected to return at most one row
func (db *DB) QueryRow(ctx context.Context, sql string, args ...interface{}) pgx.Row {
	return db.pool.QueryRow(ctx, sql, args...)
}

func (db *DB) Pool() *pgxpool.Pool {
	return db.pool
}
