package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/dmitrymomot/authenticator/pkg/registry"
)

var _ registry.KV = (*KV)(nil)

// KV implements registry.KV on the kv table created by Migrate.
type KV struct {
	db *DB
}

func NewKV(db *DB) *KV {
	return &KV{db: db}
}

// Get returns (nil, nil) when the key does not exist.
func (s *KV) Get(ctx context.Context, key string) ([]byte, error) {
	var value []byte
	err := s.db.Reader.QueryRowContext(ctx, `SELECT value FROM kv WHERE key = ?`, key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, errors.Join(ErrFailedToGetValue, fmt.Errorf("key %q: %w", key, err))
	}
	return value, nil
}

func (s *KV) Set(ctx context.Context, key string, value []byte) error {
	_, err := s.db.Writer.ExecContext(ctx, `INSERT INTO kv (key, value, updated_at) VALUES (?, ?, CURRENT_TIMESTAMP)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = CURRENT_TIMESTAMP`, key, value)
	if err != nil {
		return errors.Join(ErrFailedToSetValue, fmt.Errorf("key %q: %w", key, err))
	}
	return nil
}

// Delete is a no-op for missing keys.
func (s *KV) Delete(ctx context.Context, key string) error {
	if _, err := s.db.Writer.ExecContext(ctx, `DELETE FROM kv WHERE key = ?`, key); err != nil {
		return errors.Join(ErrFailedToDeleteValue, fmt.Errorf("key %q: %w", key, err))
	}
	return nil
}
