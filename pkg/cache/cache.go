// Package cache stores analysis results and rendered artifacts between runs.
//
// Entries are opaque byte slices addressed by string keys. Keys are built by
// a [Keyer] from the content hash of the input graph plus the options that
// affect the output, so any change to the graph file or the flags produces
// a fresh key.
//
// Implementations:
//   - [FileCache]: one JSON file per entry under a directory, used by the CLI
//   - [RedisCache]: shared entries in Redis, for the API server and CI fleets
//   - [NullCache]: stores nothing, used with --no-cache and in tests
package cache

import (
	"context"
	"time"
)

// Cache is a byte-oriented key/value store with optional expiry.
type Cache interface {
	// Get returns the value for key. The bool reports whether it was found.
	Get(ctx context.Context, key string) ([]byte, bool, error)

	// Set stores data under key. A ttl of zero means no expiry.
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error

	// Delete removes key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error

	// Close releases resources held by the cache.
	Close() error
}

// Default time-to-live values for cache entries.
const (
	// AnalysisTTL applies to cached repetitions vectors.
	AnalysisTTL = 7 * 24 * time.Hour

	// ArtifactTTL applies to rendered diagrams.
	ArtifactTTL = 24 * time.Hour
)
