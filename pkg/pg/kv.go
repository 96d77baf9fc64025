package pg

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/dmitrymomot/authenticator/pkg/registry"
)

var _ registry.KV = (*KV)(nil)

// KV implements registry.KV on the authenticator_kv table created by Migrate.
type KV struct {
	pool *pgxpool.Pool
}

func NewKV(pool *pgxpool.Pool) *KV {
	return &KV{pool: pool}
}

// Get returns (nil, nil) when the key does not exist.
func (s *KV) Get(ctx context.Context, key string) ([]byte, error) {
	var value []byte
	err := s.pool.QueryRow(ctx, `SELECT value FROM authenticator_kv WHERE key = $1`, key).Scan(&value)
	if IsNotFoundError(err) {
		return nil, nil
	}
	if err != nil {
		return nil, errors.Join(ErrFailedToGetValue, fmt.Errorf("key %q: %w", key, err))
	}
	return value, nil
}

func (s *KV) Set(ctx context.Context, key string, value []byte) error {
	_, err := s.pool.Exec(ctx, `INSERT INTO authenticator_kv (key, value, updated_at) VALUES ($1, $2, now())
		ON CONFLICT (key) DO UPDATE SET value = EXCLUDED.value, updated_at = now()`, key, value)
	if err != nil {
		return errors.Join(ErrFailedToSetValue, fmt.Errorf("key %q: %w", key, err))
	}
	return nil
}

func (s *KV) Delete(ctx context.Context, key string) error {
	if _, err := s.pool.Exec(ctx, `DELETE FROM authenticator_kv WHERE key = $1`, key); err != nil {
		return errors.Join(ErrFailedToDeleteValue, fmt.Errorf("key %q: %w", key, err))
	}
	return nil
}
