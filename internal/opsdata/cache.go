package opsdata

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

const cacheVersionKey = "opsboard:data:version"

// Cache stores validated payloads in Redis under a versioned key so a single
// Bump invalidates every instance.
type Cache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewCache instantiates the cache helper. A nil client disables caching.
func NewCache(client *redis.Client, ttl time.Duration) *Cache {
	return &Cache{client: client, ttl: ttl}
}

func (c *Cache) enabled() bool {
	return c != nil && c.client != nil
}

// Version returns the current cache version, initialising when missing.
func (c *Cache) Version(ctx context.Context) (int64, error) {
	if !c.enabled() {
		return 0, nil
	}
	ver, err := c.client.Get(ctx, cacheVersionKey).Int64()
	if errors.Is(err, redis.Nil) {
		if err := c.client.Set(ctx, cacheVersionKey, 1, 0).Err(); err != nil {
			return 0, err
		}
		return 1, nil
	}
	if err != nil {
		return 0, err
	}
	if ver <= 0 {
		ver = 1
		if err := c.client.Set(ctx, cacheVersionKey, ver, 0).Err(); err != nil {
			return 0, err
		}
	}
	return ver, nil
}

// BuildKey composes the cache key with the current version.
func (c *Cache) BuildKey(ctx context.Context, parts ...string) (string, error) {
	joined := strings.Join(parts, ":")
	if !c.enabled() {
		return joined, nil
	}
	ver, err := c.Version(ctx)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%s:%d", joined, ver), nil
}

// Fetch returns the cached bytes for key or populates them from loader. The
// bool reports whether the value came from Redis.
func (c *Cache) Fetch(ctx context.Context, key string, loader func(context.Context) ([]byte, error)) ([]byte, bool, error) {
	if loader == nil {
		return nil, false, errors.New("cache: loader required")
	}
	if !c.enabled() {
		raw, err := loader(ctx)
		return raw, false, err
	}
	payload, err := c.client.Get(ctx, key).Bytes()
	if err == nil {
		return payload, true, nil
	}
	if !errors.Is(err, redis.Nil) {
		return nil, false, err
	}
	raw, err := loader(ctx)
	if err != nil {
		return nil, false, err
	}
	if err := c.client.Set(ctx, key, raw, c.ttl).Err(); err != nil {
		return nil, false, err
	}
	return raw, false, nil
}

// Remaining reports how long key stays in Redis. It falls back to the
// configured TTL when Redis cannot say.
func (c *Cache) Remaining(ctx context.Context, key string) time.Duration {
	if !c.enabled() {
		return 0
	}
	d, err := c.client.PTTL(ctx, key).Result()
	if err != nil || d <= 0 {
		return c.ttl
	}
	if c.ttl > 0 && d > c.ttl {
		return c.ttl
	}
	return d
}

// Bump invalidates every instance's cached payload by moving the version.
func (c *Cache) Bump(ctx context.Context) (int64, error) {
	if !c.enabled() {
		return 0, nil
	}
	return c.client.Incr(ctx, cacheVersionKey).Result()
}

func keyPayload(source string) string {
	return strings.Join([]string{"opsboard", "data", source}, ":")
}
