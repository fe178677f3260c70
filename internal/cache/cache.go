// Package cache holds the key-value store used for the product list cache,
// login rate limiting and order idempotency keys.
package cache

import (
	"context"
	"errors"
	"time"
)

// ErrMiss is returned by Get when the key does not exist or has expired.
var ErrMiss = errors.New("cache miss")

// Store is implemented by the Redis client and by Memory.
type Store interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Delete(ctx context.Context, keys ...string) error
	// DeletePrefix removes every key starting with prefix.
	DeletePrefix(ctx context.Context, prefix string) error
	// Allow counts one hit on key and reports whether the count is still
	// within limit for the current window.
	Allow(ctx context.Context, key string, limit int, window time.Duration) (bool, error)
	// Reserve sets key only if it does not exist yet.
	Reserve(ctx context.Context, key string, value []byte, ttl time.Duration) (bool, error)
	Ping(ctx context.Context) error
	Close() error
}
