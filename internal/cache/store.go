// Package cache provides the byte-oriented cache store used for ranked feed
// pages, with Redis and in-memory implementations.
package cache

import (
	"context"
	"time"
)

// Store is a byte-oriented cache with TTL support. Implementations must be
// safe for concurrent use. Callers treat every error as a miss: the cache
// accelerates reads and is never the source of truth.
type Store interface {
	// Get returns the cached value for key. The second return value
	// reports whether the key was present.
	Get(ctx context.Context, key string) ([]byte, bool, error)

	// Set stores value under key with the given TTL. A non-positive TTL
	// stores the value without expiry.
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error

	// Delete removes the given keys. Deleting absent keys is not an error.
	Delete(ctx context.Context, keys ...string) error
}
