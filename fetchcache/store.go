// Package fetchcache coordinates collection fetches: one in-flight request
// per derived key, a TTL result cache in front of the network, and
// event-driven invalidation by subject.
package fetchcache

import (
	"context"
	"time"
)

// Store is a cache storage backend. Values are serialized collections.
type Store interface {
	// Name returns the backend name.
	Name() string

	// Get returns the stored value, or ErrCacheMiss when the key is
	// absent or expired.
	Get(ctx context.Context, key string) ([]byte, error)

	// Set stores a value. A non-positive ttl means no expiry.
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error

	// Delete removes one key. Deleting an absent key is not an error.
	Delete(ctx context.Context, key string) error

	// DeleteByPrefix removes every key sharing the prefix.
	DeleteByPrefix(ctx context.Context, prefix string) error

	// Clear removes every key.
	Clear(ctx context.Context) error

	// Close releases the backend.
	Close() error
}
