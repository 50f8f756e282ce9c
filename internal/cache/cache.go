// Package cache provides the key-value layer in front of the relational
// store. Entries are serialized entity snapshots with a uniform TTL; the
// cache is best-effort and never authoritative.
package cache

import (
	"context"
	"errors"
	"time"
)

// ErrMiss is returned by Get when a key is absent or its TTL has elapsed.
var ErrMiss = errors.New("cache: miss")

// Store is the contract shared by the Redis and in-process backends.
// Implementations must be safe for concurrent use by multiple requests.
type Store interface {
	// Get returns the value stored under key, or ErrMiss.
	Get(ctx context.Context, key string) ([]byte, error)
	// Set stores value under key for ttl. Every Set resets the full TTL
	// window; there is no sliding expiration.
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	// Delete removes key. Deleting an absent key is not an error.
	Delete(ctx context.Context, key string) error
}
