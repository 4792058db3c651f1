package record

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
)

// DefaultNamespace prefixes cache keys so session entries never collide
// with unrelated data sharing the same Redis database.
const DefaultNamespace = "sessionkit:"

// RedisCache implements Cache on top of a Redis client.
type RedisCache struct {
	client    redis.UniversalClient
	namespace string
}

// NewRedisCache creates a Redis-backed cache. An empty namespace falls back
// to DefaultNamespace.
func NewRedisCache(client redis.UniversalClient, namespace string) *RedisCache {
	if namespace == "" {
		namespace = DefaultNamespace
	}
	return &RedisCache{
		client:    client,
		namespace: namespace,
	}
}

func (c *RedisCache) key(sid string) string {
	return c.namespace + sid
}

// Get returns the raw cache entry for sid, or ErrNotFound on a miss.
func (c *RedisCache) Get(ctx context.Context, sid string) ([]byte, error) {
	data, err := c.client.Get(ctx, c.key(sid)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return data, nil
}

// Set stores data under sid. A zero ttl stores without expiration.
func (c *RedisCache) Set(ctx context.Context, sid string, data []byte, ttl time.Duration) error {
	return c.client.Set(ctx, c.key(sid), data, ttl).Err()
}

// Delete removes the entry for sid. Deleting a missing key is not an error.
func (c *RedisCache) Delete(ctx context.Context, sid string) error {
	return c.client.Del(ctx, c.key(sid)).Err()
}
