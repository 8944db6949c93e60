package settings

import (
	"context"
	"errors"

	"github.com/redis/go-redis/v9"
)

// RedisStorage stores values under prefix+key in Redis.
type RedisStorage struct {
	client *redis.Client
	prefix string
}

// NewRedisStorage builds storage scoped by prefix.
func NewRedisStorage(client *redis.Client, prefix string) *RedisStorage {
	return &RedisStorage{client: client, prefix: prefix}
}

func (r *RedisStorage) Get(ctx context.Context, key string) (string, bool, error) {
	if r.client == nil {
		return "", false, errors.New("redis client not configured")
	}
	val, err := r.client.Get(ctx, r.prefix+key).Result()
	if errors.Is(err, redis.Nil) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return val, true, nil
}

func (r *RedisStorage) Set(ctx context.Context, key, value string) error {
	if r.client == nil {
		return errors.New("redis client not configured")
	}
	return r.client.Set(ctx, r.prefix+key, value, 0).Err()
}
