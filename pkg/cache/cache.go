// Package cache stores partitioning results keyed by the tree content and
// the request parameters.
//
// Backends:
//   - [FileCache]: one JSON file per entry, for the CLI
//   - [RedisCache]: shared cache for several API instances
//   - [NullCache]: caching disabled
//
// Keys are produced by a [Keyer]; [ScopedKeyer] prefixes them to separate
// tenants or environments sharing one backend.
package cache

import (
	"context"
	"time"
)

// Cache is a byte-oriented key/value store with per-entry expiry.
type Cache interface {
	// Get returns the entry and true on a hit. A miss is not an error.
	Get(ctx context.Context, key string) ([]byte, bool, error)

	// Set stores data under key. A zero ttl never expires.
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error

	// Delete removes key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error

	// Close releases backend resources.
	Close() error
}

// DefaultTTL is the lifetime of cached results.
const DefaultTTL = 7 * 24 * time.Hour
