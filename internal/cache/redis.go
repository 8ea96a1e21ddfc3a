package cache

import (
	"context"
	"errors"
	"sync/atomic"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisCache is a Cache stored in Redis under a key prefix.
type RedisCache struct {
	client     *redis.Client
	prefix     string
	defaultTTL time.Duration
	closed     atomic.Bool
}

// RedisCacheOptions configures the Redis cache.
type RedisCacheOptions struct {
	// URL is the Redis connection URL (e.g., redis://localhost:6379/0)
	URL            string
	Prefix         string
	DefaultTTL     time.Duration
	ConnectTimeout time.Duration
}

// NewRedisClient parses url and checks the connection.
func NewRedisClient(ctx context.Context, url string, connectTimeout time.Duration) (*redis.Client, error) {
	if url == "" {
		return nil, errors.New("redis URL is required")
	}
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, err
	}
	if connectTimeout <= 0 {
		connectTimeout = 5 * time.Second
	}
	opts.DialTimeout = connectTimeout

	client := redis.NewClient(opts)
	pingCtx, cancel := context.WithTimeout(ctx, connectTimeout)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return nil, err
	}
	return client, nil
}

// NewRedisCache connects to Redis and returns a cache owning the client.
func NewRedisCache(ctx context.Context, opts RedisCacheOptions) (*RedisCache, error) {
	client, err := NewRedisClient(ctx, opts.URL, opts.ConnectTimeout)
	if err != nil {
		return nil, err
	}
	return NewRedisCacheWithClient(client, opts.Prefix, opts.DefaultTTL), nil
}

// NewRedisCacheWithClient wraps an existing client, e.g. one shared with the
// session store.
func NewRedisCacheWithClient(client *redis.Client, prefix string, defaultTTL time.Duration) *RedisCache {
	if defaultTTL <= 0 {
		defaultTTL = time.Hour
	}
	return &RedisCache{client: client, prefix: prefix, defaultTTL: defaultTTL}
}

// Client exposes the underlying client.
func (c *RedisCache) Client() *redis.Client { return c.client }

func (c *RedisCache) key(k string) string { return c.prefix + k }

func (c *RedisCache) Get(ctx context.Context, key string) ([]byte, error) {
	if c.closed.Load() {
		return nil, ErrCacheClosed
	}
	val, err := c.client.Get(ctx, c.key(key)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrCacheMiss
	}
	if err != nil {
		return nil, err
	}
	return val, nil
}

func (c *RedisCache) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	if c.closed.Load() {
		return ErrCacheClosed
	}
	if ttl <= 0 {
		ttl = c.defaultTTL
	}
	return c.client.Set(ctx, c.key(key), value, ttl).Err()
}

func (c *RedisCache) Delete(ctx context.Context, key string) error {
	if c.closed.Load() {
		return ErrCacheClosed
	}
	return c.client.Del(ctx, c.key(key)).Err()
}

func (c *RedisCache) Close() error {
	if c.closed.Swap(true) {
		return nil
	}
	return c.client.Close()
}
