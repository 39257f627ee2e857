// Package cache fronts reads of order and product projections with a
// best-effort Redis cache. It is never authoritative: every failure degrades
// to a miss and must not fail the surrounding business operation.
package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"time"

	"github.com/go-redis/redis/v8"
)

// DefaultTTL bounds how stale a cached projection may be.
const DefaultTTL = time.Hour

// OrderKey is the cache key for an order projection.
func OrderKey(orderID int64) string {
	return fmt.Sprintf("order:%d", orderID)
}

// ProductKey is the cache key for a product projection.
func ProductKey(productID int64) string {
	return fmt.Sprintf("product:%d", productID)
}

// Cache is the key/value contract consumed by the services. Implementations
// are best-effort; a false/nil return with a non-nil error means "degraded",
// never "operation failed".
type Cache interface {
	Get(ctx context.Context, key string, dest any) (bool, error)
	Set(ctx context.Context, key string, value any, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
}

// RedisCache implements Cache on a Redis client with JSON values.
type RedisCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedisCache builds a cache around addr. The connection is verified
// lazily; an unreachable Redis degrades every read to a miss.
func NewRedisCache(addr string, ttl time.Duration) *RedisCache {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	client := redis.NewClient(&redis.Options{Addr: addr})
	return &RedisCache{client: client, ttl: ttl}
}

// Ping verifies connectivity. Callers log the outcome and proceed either way.
func (c *RedisCache) Ping(ctx context.Context) error {
	return c.client.Ping(ctx).Err()
}

// Get loads key into dest. The bool reports a hit; errors mean the cache is
// degraded and the caller should fall through to the system of record.
func (c *RedisCache) Get(ctx context.Context, key string, dest any) (bool, error) {
	data, err := c.client.Get(ctx, key).Bytes()
	if err == redis.Nil {
		return false, nil
	}
	if err != nil {
		log.Printf("[Cache] GET %s: %v", key, err)
		return false, err
	}
	if err := json.Unmarshal(data, dest); err != nil {
		log.Printf("[Cache] GET %s: corrupt value: %v", key, err)
		return false, err
	}
	return true, nil
}

// Set stores value under key with the configured TTL (ttl <= 0 uses it).
func (c *RedisCache) Set(ctx context.Context, key string, value any, ttl time.Duration) error {
	if ttl <= 0 {
		ttl = c.ttl
	}
	data, err := json.Marshal(value)
	if err != nil {
		log.Printf("[Cache] SET %s: marshal: %v", key, err)
		return err
	}
	if err := c.client.Set(ctx, key, data, ttl).Err(); err != nil {
		log.Printf("[Cache] SET %s: %v", key, err)
		return err
	}
	return nil
}

// Delete invalidates key so the next read repopulates from the system of
// record.
func (c *RedisCache) Delete(ctx context.Context, key string) error {
	if err := c.client.Del(ctx, key).Err(); err != nil {
		log.Printf("[Cache] DEL %s: %v", key, err)
		return err
	}
	return nil
}

// Close releases the underlying client.
func (c *RedisCache) Close() error {
	return c.client.Close()
}
