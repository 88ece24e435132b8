package store

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/serroba/attempt-limiter-go/internal/ratelimit"
)

const counterSchema = `
	CREATE TABLE IF NOT EXISTS rate_limit_counters (
		key        TEXT PRIMARY KEY,
		value      BIGINT NOT NULL,
		updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
	)
`

// CounterPostgresStore is a PostgreSQL implementation of ratelimit.Store.
type CounterPostgresStore struct {
	pool *pgxpool.Pool
}

// NewCounterPostgresStore creates a new PostgreSQL-backed counter store.
func NewCounterPostgresStore(pool *pgxpool.Pool) *CounterPostgresStore {
	return &CounterPostgresStore{pool: pool}
}

// EnsureSchema creates the counters table if it does not exist.
func (p *CounterPostgresStore) EnsureSchema(ctx context.Context) error {
	_, err := p.pool.Exec(ctx, counterSchema)

	return err
}

// Get selects the counter value for key, returning def when no row exists.
func (p *CounterPostgresStore) Get(ctx context.Context, key string, def int64) (int64, error) {
	query := `
		SELECT value
		FROM rate_limit_counters
		WHERE key = $1
	`

	var value int64

	err := p.pool.QueryRow(ctx, query, key).Scan(&value)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return def, nil
		}

		return 0, err
	}

	return value, nil
}

// Set upserts the counter value for key.
func (p *CounterPostgresStore) Set(ctx context.Context, key string, value int64) error {
	query := `
		INSERT INTO rate_limit_counters (key, value, updated_at)
		VALUES ($1, $2, now())
		ON CONFLICT (key) DO UPDATE SET value = EXCLUDED.value, updated_at = EXCLUDED.updated_at
	`

	_, err := p.pool.Exec(ctx, query, key, value)

	return err
}

// Compile-time check.
var _ ratelimit.Store = (*CounterPostgresStore)(nil)
