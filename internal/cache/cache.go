// Package cache provides the byte caches in front of the settings documents:
// an in-process map for single instances and Redis when several instances
// share state.
package cache

import (
	"context"
	"time"
)

// Cache is implemented by every cache backend. Implementations are safe for
// concurrent use.
type Cache interface {
	// Get returns ErrCacheMiss when key is absent or expired.
	Get(ctx context.Context, key string) ([]byte, error)
	// Set stores value; a zero ttl uses the cache default.
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
	Close() error
}

// Error is a cache sentinel error.
type Error string

func (e Error) Error() string { return string(e) }

const (
	ErrCacheMiss   Error = "cache miss"
	ErrCacheClosed Error = "cache closed"
)
