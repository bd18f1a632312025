package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	redisv9 "github.com/redis/go-redis/v9"
)

// RedisStore keeps snapshots in Redis so several server processes share one
// view of upstream. Keys are written without expiry.
type RedisStore[V any] struct {
	client *redisv9.Client
	prefix string
}

func NewRedisStore[V any](client *redisv9.Client, prefix string) *RedisStore[V] {
	return &RedisStore[V]{client: client, prefix: prefix}
}

func (s *RedisStore[V]) Get(ctx context.Context, key string) (Entry[V], bool, error) {
	var entry Entry[V]
	raw, err := s.client.Get(ctx, s.prefix+key).Bytes()
	if errors.Is(err, redisv9.Nil) {
		return entry, false, nil
	}
	if err != nil {
		return entry, false, fmt.Errorf("redis get snapshot failed: %w", err)
	}
	if err := json.Unmarshal(raw, &entry); err != nil {
		return entry, false, fmt.Errorf("unmarshal cached snapshot failed: %w", err)
	}
	return entry, true, nil
}

func (s *RedisStore[V]) Set(ctx context.Context, key string, entry Entry[V]) error {
	payload, err := json.Marshal(entry)
	if err != nil {
		return fmt.Errorf("marshal snapshot failed: %w", err)
	}
	if err := s.client.Set(ctx, s.prefix+key, payload, 0).Err(); err != nil {
		return fmt.Errorf("redis set snapshot failed: %w", err)
	}
	return nil
}
