package store

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/sethvargo/go-retry"
)

// PostgresKV stores keys in the sessions table with an expires_at column.
// Writes are retried with backoff: a dropped write desynchronizes the
// displayed countdown from the true phase, so failures surface as errors
// only after the retries are exhausted.
type PostgresKV struct {
	pool *pgxpool.Pool
}

// NewPostgresKV creates a KV backed by the given pool.
func NewPostgresKV(pool *pgxpool.Pool) *PostgresKV {
	return &PostgresKV{pool: pool}
}

func writeBackoff() retry.Backoff {
	return retry.WithMaxRetries(3, retry.NewExponential(50*time.Millisecond))
}

func (s *PostgresKV) Get(ctx context.Context, key string) ([]byte, error) {
	var value []byte
	err := s.pool.QueryRow(ctx,
		`SELECT value FROM sessions WHERE key = $1 AND expires_at > now()`, key,
	).Scan(&value)
	if err == pgx.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get %q: %w", key, err)
	}
	return value, nil
}

func (s *PostgresKV) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	err := retry.Do(ctx, writeBackoff(), func(ctx context.Context) error {
		_, err := s.pool.Exec(ctx,
			`INSERT INTO sessions (key, value, expires_at) VALUES ($1, $2, $3)
			 ON CONFLICT (key) DO UPDATE SET value = EXCLUDED.value, expires_at = EXCLUDED.expires_at`,
			key, value, time.Now().UTC().Add(ttl))
		if err != nil {
			return retry.RetryableError(err)
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("set %q: %w", key, err)
	}
	return nil
}

func (s *PostgresKV) Delete(ctx context.Context, key string) error {
	err := retry.Do(ctx, writeBackoff(), func(ctx context.Context) error {
		_, err := s.pool.Exec(ctx, `DELETE FROM sessions WHERE key = $1`, key)
		if err != nil {
			return retry.RetryableError(err)
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("delete %q: %w", key, err)
	}
	return nil
}

// PurgeExpired removes rows past their expiry. Reads already ignore expired
// rows; this keeps the table from growing unbounded.
func (s *PostgresKV) PurgeExpired(ctx context.Context) (int64, error) {
	tag, err := s.pool.Exec(ctx, `DELETE FROM sessions WHERE expires_at <= now()`)
	if err != nil {
		return 0, fmt.Errorf("purge expired sessions: %w", err)
	}
	return tag.RowsAffected(), nil
}
