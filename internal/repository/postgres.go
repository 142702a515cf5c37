package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

type pgxPool interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

var _ pgxPool = (*pgxpool.Pool)(nil)

const kvSchema = `CREATE TABLE IF NOT EXISTS kv_entries (
	key        TEXT PRIMARY KEY,
	value      TEXT NOT NULL,
	expires_at TIMESTAMPTZ
);
CREATE INDEX IF NOT EXISTS kv_entries_expires_at_idx ON kv_entries (expires_at)`

// PostgresStore implements Store on a single kv_entries table. Expired rows
// are ignored on read and overwritten on write.
type PostgresStore struct {
	pool  pgxPool
	close func()
	now   func() time.Time
}

// NewPostgresStore wires a pgx backed store.
func NewPostgresStore(pool *pgxpool.Pool) *PostgresStore {
	return &PostgresStore{pool: pool, close: pool.Close, now: time.Now}
}

var _ Store = (*PostgresStore)(nil)

// Migrate creates the kv_entries table when missing.
func (s *PostgresStore) Migrate(ctx context.Context) error {
	if _, err := s.pool.Exec(ctx, kvSchema); err != nil {
		return fmt.Errorf("migrate kv_entries: %w", err)
	}
	return nil
}

func (s *PostgresStore) Get(ctx context.Context, key string) ([]byte, error) {
	row := s.pool.QueryRow(ctx, `SELECT value FROM kv_entries WHERE key = $1 AND (expires_at IS NULL OR expires_at > NOW())`, key)

	var value string
	if err := row.Scan(&value); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("query kv entry: %w", err)
	}
	return []byte(value), nil
}

func (s *PostgresStore) MGet(ctx context.Context, keys ...string) ([][]byte, error) {
	values := make([][]byte, len(keys))
	if len(keys) == 0 {
		return values, nil
	}

	rows, err := s.pool.Query(ctx, `SELECT key, value FROM kv_entries WHERE key = ANY($1) AND (expires_at IS NULL OR expires_at > NOW())`, keys)
	if err != nil {
		return nil, fmt.Errorf("query kv entries: %w", err)
	}
	defer rows.Close()

	found := make(map[string][]byte, len(keys))
	for rows.Next() {
		var key, value string
		if err := rows.Scan(&key, &value); err != nil {
			return nil, fmt.Errorf("scan kv entry: %w", err)
		}
		found[key] = []byte(value)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate kv entries: %w", err)
	}

	for i, key := range keys {
		values[i] = found[key]
	}
	return values, nil
}

func (s *PostgresStore) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	_, err := s.pool.Exec(ctx, `INSERT INTO kv_entries (key, value, expires_at) VALUES ($1, $2, $3)
ON CONFLICT (key) DO UPDATE SET value = EXCLUDED.value, expires_at = EXCLUDED.expires_at`, key, string(value), s.expiry(ttl))
	if err != nil {
		return fmt.Errorf("upsert kv entry: %w", err)
	}
	return nil
}

func (s *PostgresStore) Delete(ctx context.Context, keys ...string) error {
	if len(keys) == 0 {
		return nil
	}
	if _, err := s.pool.Exec(ctx, `DELETE FROM kv_entries WHERE key = ANY($1)`, keys); err != nil {
		return fmt.Errorf("delete kv entries: %w", err)
	}
	return nil
}

func (s *PostgresStore) IncrWithTTL(ctx context.Context, key string, ttl time.Duration) (int64, error) {
	row := s.pool.QueryRow(ctx, `INSERT INTO kv_entries (key, value, expires_at) VALUES ($1, '1', $2)
ON CONFLICT (key) DO UPDATE SET
	value = CASE
		WHEN kv_entries.expires_at IS NOT NULL AND kv_entries.expires_at <= NOW() THEN '1'
		ELSE (kv_entries.value::bigint + 1)::text
	END,
	expires_at = CASE
		WHEN kv_entries.expires_at IS NOT NULL AND kv_entries.expires_at <= NOW() THEN EXCLUDED.expires_at
		ELSE kv_entries.expires_at
	END
RETURNING value::bigint`, key, s.expiry(ttl))

	var count int64
	if err := row.Scan(&count); err != nil {
		return 0, fmt.Errorf("increment kv counter: %w", err)
	}
	return count, nil
}

func (s *PostgresStore) Ping(ctx context.Context) error {
	var one int
	if err := s.pool.QueryRow(ctx, `SELECT 1`).Scan(&one); err != nil {
		return fmt.Errorf("ping kv store: %w", err)
	}
	return nil
}

func (s *PostgresStore) Close() error {
	if s.close != nil {
		s.close()
	}
	return nil
}

func (s *PostgresStore) expiry(ttl time.Duration) *time.Time {
	if ttl <= 0 {
		return nil
	}
	at := s.now().Add(ttl).UTC()
	return &at
}
