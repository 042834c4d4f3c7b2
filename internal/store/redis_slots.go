package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"
)

// defaultRedisPrefix namespaces slot keys in a shared Redis.
const defaultRedisPrefix = "gqltester:slot"

// RedisSlots stores slots as plain Redis strings.
type RedisSlots struct {
	client redis.UniversalClient
	prefix string
}

// NewRedisSlots constructs a RedisSlots. An empty prefix uses the default.
func NewRedisSlots(client redis.UniversalClient, prefix string) *RedisSlots {
	if prefix == "" {
		prefix = defaultRedisPrefix
	}
	return &RedisSlots{client: client, prefix: prefix}
}

func (s *RedisSlots) redisKey(owner, key string) string {
	return fmt.Sprintf("%s:%s:%s", s.prefix, owner, key)
}

// Load returns the stored text or ErrSlotNotFound.
func (s *RedisSlots) Load(ctx context.Context, owner, key string) (string, error) {
	value, errGet := s.client.Get(ctx, s.redisKey(owner, key)).Result()
	if errGet != nil {
		if errors.Is(errGet, redis.Nil) {
			return "", ErrSlotNotFound
		}
		return "", fmt.Errorf("store: redis get %s: %w", key, errGet)
	}
	return value, nil
}

// Save writes the value without expiry.
func (s *RedisSlots) Save(ctx context.Context, owner, key, value string) error {
	if errSet := s.client.Set(ctx, s.redisKey(owner, key), value, 0).Err(); errSet != nil {
		return fmt.Errorf("store: redis set %s: %w", key, errSet)
	}
	return nil
}

// Delete removes the key.
func (s *RedisSlots) Delete(ctx context.Context, owner, key string) error {
	if errDel := s.client.Del(ctx, s.redisKey(owner, key)).Err(); errDel != nil {
		return fmt.Errorf("store: redis del %s: %w", key, errDel)
	}
	return nil
}
