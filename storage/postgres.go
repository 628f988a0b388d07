package storage

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PostgresBackend stores values in a kv_slots table through a pgx pool.
type PostgresBackend struct {
	pool *pgxpool.Pool
}

// NewPostgresBackend connects to databaseURL and ensures the table exists.
func NewPostgresBackend(ctx context.Context, databaseURL string) (*PostgresBackend, error) {
	cfg, err := pgxpool.ParseConfig(databaseURL)
	if err != nil {
		return nil, fmt.Errorf("parse database url: %w", err)
	}

	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("connect to database: %w", err)
	}

	b := &PostgresBackend{pool: pool}
	if err := b.migrate(ctx); err != nil {
		pool.Close()
		return nil, err
	}
	return b, nil
}

// Close releases database resources.
func (b *PostgresBackend) Close() error {
	if b.pool != nil {
		b.pool.Close()
	}
	return nil
}

func (b *PostgresBackend) migrate(ctx context.Context) error {
	const stmt = `CREATE TABLE IF NOT EXISTS kv_slots (
		slot_key TEXT PRIMARY KEY,
		value BYTEA NOT NULL,
		updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	);`
	if _, err := b.pool.Exec(ctx, stmt); err != nil {
		return fmt.Errorf("apply migrations: %w", err)
	}
	return nil
}

// Get loads the row for key.
func (b *PostgresBackend) Get(ctx context.Context, key string) ([]byte, error) {
	key, err := validateKey(key)
	if err != nil {
		return nil, err
	}

	var value []byte
	err = b.pool.QueryRow(ctx, `SELECT value FROM kv_slots WHERE slot_key = $1`, key).Scan(&value)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrKeyNotFound
		}
		return nil, fmt.Errorf("failed to read slot: %w", err)
	}
	return value, nil
}

// Put upserts the row for key.
func (b *PostgresBackend) Put(ctx context.Context, key string, value []byte) error {
	key, err := validateKey(key)
	if err != nil {
		return err
	}

	const query = `
		INSERT INTO kv_slots (slot_key, value, updated_at)
		VALUES ($1, $2, NOW())
		ON CONFLICT (slot_key) DO UPDATE SET value = EXCLUDED.value, updated_at = EXCLUDED.updated_at;`
	if _, err := b.pool.Exec(ctx, query, key, value); err != nil {
		return fmt.Errorf("failed to write slot: %w", err)
	}
	return nil
}

// Delete removes the row for key.
func (b *PostgresBackend) Delete(ctx context.Context, key string) error {
	key, err := validateKey(key)
	if err != nil {
		return err
	}

	tag, err := b.pool.Exec(ctx, `DELETE FROM kv_slots WHERE slot_key = $1`, key)
	if err != nil {
		return fmt.Errorf("failed to delete slot: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrKeyNotFound
	}
	return nil
}
