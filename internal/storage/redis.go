package storage

import (
	"context"
	"errors"
	"fmt"

	lowimpl "github.com/redis/go-redis/v9"

	"canvasdoc/internal/domain"
)

// RedisStore keeps serialized projects as plain Redis string values.
type RedisStore struct {
	internal *lowimpl.Client
}

var _ domain.ProjectStore = (*RedisStore)(nil)

// NewRedisStore connects to addr and verifies the connection.
func NewRedisStore(ctx context.Context, addr, password string, db int) (*RedisStore, error) {
	client := lowimpl.NewClient(&lowimpl.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("ping redis %s: %w", addr, err)
	}
	return &RedisStore{internal: client}, nil
}

// NewRedisStoreFromClient wraps an existing client.
func NewRedisStoreFromClient(c *lowimpl.Client) *RedisStore {
	return &RedisStore{internal: c}
}

func (s *RedisStore) Load(ctx context.Context, key string) (string, bool, error) {
	val, err := s.internal.Get(ctx, key).Result()
	if errors.Is(err, lowimpl.Nil) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("redis get %s: %w", key, err)
	}
	return val, true, nil
}

func (s *RedisStore) Save(ctx context.Context, key, value string) error {
	if err := s.internal.Set(ctx, key, value, 0).Err(); err != nil {
		return fmt.Errorf("redis set %s: %w", key, err)
	}
	return nil
}

func (s *RedisStore) Close() error {
	if s.internal == nil {
		return nil
	}
	return s.internal.Close()
}
