package redis

import (
	"context"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/dmitrymomot/authenticator/pkg/registry"
)

var _ registry.KV = (*KV)(nil)

// KV implements registry.KV with plain GET/SET/DEL on prefixed keys.
// Values never expire.
type KV struct {
	db     redis.UniversalClient
	prefix string
}

// NewKV wraps client. prefix is prepended to every key.
func NewKV(client redis.UniversalClient, prefix string) *KV {
	return &KV{db: client, prefix: prefix}
}

// Get returns (nil, nil) for missing keys (redis.Nil).
func (s *KV) Get(ctx context.Context, key string) ([]byte, error) {
	val, err := s.db.Get(ctx, s.prefix+key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, errors.Join(ErrFailedToGetValue, fmt.Errorf("key %q: %w", key, err))
	}
	return val, nil
}

func (s *KV) Set(ctx context.Context, key string, value []byte) error {
	if err := s.db.Set(ctx, s.prefix+key, value, 0).Err(); err != nil {
		return errors.Join(ErrFailedToSetValue, fmt.Errorf("key %q: %w", key, err))
	}
	return nil
}

func (s *KV) Delete(ctx context.Context, key string) error {
	if err := s.db.Del(ctx, s.prefix+key).Err(); err != nil {
		return errors.Join(ErrFailedToDeleteValue, fmt.Errorf("key %q: %w", key, err))
	}
	return nil
}

// Conn returns the underlying client for advanced operations.
func (s *KV) Conn() redis.UniversalClient {
	return s.db
}
