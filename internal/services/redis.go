package services

import (
	"context"
	"encoding/json"
	"log"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisCache provides caching functionality using Redis. A nil
// *RedisCache is valid and caches nothing.
type RedisCache struct {
	client *redis.Client
	prefix string
}

// NewRedisCache creates a new Redis cache client
func NewRedisCache(redisURL string) (*RedisCache, error) {
	opt, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, err
	}

	client := redis.NewClient(opt)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, err
	}

	log.Println("Redis connection established")
	return &RedisCache{client: client, prefix: "gym:"}, nil
}

// Set stores a value in cache with expiration
func (c *RedisCache) Set(ctx context.Context, key string, value interface{}, expiration time.Duration) error {
	if c == nil {
		return nil
	}
	data, err := json.Marshal(value)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, c.prefix+key, data, expiration).Err()
}

// Get retrieves a value from cache. A miss returns redis.Nil.
func (c *RedisCache) Get(ctx context.Context, key string, dest interface{}) error {
	if c == nil {
		return redis.Nil
	}
	data, err := c.client.Get(ctx, c.prefix+key).Bytes()
	if err != nil {
		return err
	}
	return json.Unmarshal(data, dest)
}

// GetOrSet retrieves a value from cache, or calls fn to fetch and cache it.
// fn is only called if the key doesn't exist in cache.
func GetOrSet[T any](c *RedisCache, ctx context.Context, key string, expiration time.Duration, fn func() (T, error)) (T, error) {
	var result T

	if err := c.Get(ctx, key, &result); err == nil {
		return result, nil
	}

	result, err := fn()
	if err != nil {
		return result, err
	}

	// A failed cache write only costs a recompute next time
	if err := c.Set(ctx, key, result, expiration); err != nil {
		log.Printf("cache set %s: %v", key, err)
	}

	return result, nil
}

// Delete removes keys from cache
func (c *RedisCache) Delete(ctx context.Context, keys ...string) error {
	if c == nil || len(keys) == 0 {
		return nil
	}
	prefixed := make([]string, len(keys))
	for i, k := range keys {
		prefixed[i] = c.prefix + k
	}
	return c.client.Del(ctx, prefixed...).Err()
}

// Close closes the Redis connection
func (c *RedisCache) Close() error {
	if c == nil {
		return nil
	}
	return c.client.Close()
}
