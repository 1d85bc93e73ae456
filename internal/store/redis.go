package store

import (
	"context"
	"errors"
	"time"

	"github.com/iksnae/manoj-chat/internal"
	"github.com/redis/go-redis/v9"
)

// DefaultRedisPrefix namespaces keys written by the redis backend.
const DefaultRedisPrefix = "manoj-chat:"

// RedisBackend stores values as redis strings.
type RedisBackend struct {
	client *redis.Client
	prefix string
	ttl    time.Duration
}

// NewRedisBackend creates a redis backend. A zero ttl keeps keys forever.
func NewRedisBackend(client *redis.Client, prefix string, ttl time.Duration) *RedisBackend {
	return &RedisBackend{
		client: client,
		prefix: prefix,
		ttl:    ttl,
	}
}

// Get implements Backend. Reads refresh the TTL.
func (b *RedisBackend) Get(ctx context.Context, key string) (string, bool, error) {
	val, err := b.client.Get(ctx, b.key(key)).Result()
	if errors.Is(err, redis.Nil) {
		return "", false, nil
	}
	if err != nil {
		return "", false, &internal.StorageError{Backend: string(DriverRedis), Key: key, Op: "get", Err: err}
	}

	if b.ttl > 0 {
		if err := b.client.Expire(ctx, b.key(key), b.ttl).Err(); err != nil {
			internal.LogDebug("redis: failed to refresh TTL for %s: %v", key, err)
		}
	}
	return val, true, nil
}

// Set implements Backend.
func (b *RedisBackend) Set(ctx context.Context, key, value string) error {
	if err := b.client.Set(ctx, b.key(key), value, b.ttl).Err(); err != nil {
		return &internal.StorageError{Backend: string(DriverRedis), Key: key, Op: "set", Err: err}
	}
	return nil
}

// Delete implements Backend.
func (b *RedisBackend) Delete(ctx context.Context, key string) error {
	if err := b.client.Del(ctx, b.key(key)).Err(); err != nil {
		return &internal.StorageError{Backend: string(DriverRedis), Key: key, Op: "delete", Err: err}
	}
	return nil
}

// Close implements Backend.
func (b *RedisBackend) Close() error {
	return b.client.Close()
}

func (b *RedisBackend) key(key string) string {
	return b.prefix + key
}
