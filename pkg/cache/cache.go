// Package cache provides result caching for conversion runs.
//
// The expensive step of a cdhidef run is the external clustering
// subprocess, so the pipeline caches the finished interchange document
// keyed by a hash of the input graph plus the clustering parameters.
// Re-running the same input with the same parameters serves the document
// from cache instead of re-clustering.
//
// Backends:
//   - FileCache: per-user directory cache for CLI usage
//   - RedisCache: shared cache for serve-mode deployments
//   - NullCache: caching disabled
package cache

import (
	"context"
	"time"
)

// TTLs for cached entries.
const (
	// TTLDocument is how long converted documents are kept. Conversion is
	// deterministic, so the TTL only bounds disk growth.
	TTLDocument = 7 * 24 * time.Hour
)

// Cache is the interface implemented by all cache backends.
type Cache interface {
	// Get retrieves a value. The second return value reports a hit.
	Get(ctx context.Context, key string) ([]byte, bool, error)

	// Set stores a value with a TTL. A zero TTL means no expiration.
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error

	// Delete removes a value. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error

	// Close releases backend resources.
	Close() error
}

// NullCache misses every lookup, so each run re-clusters and
// re-converts. It backs --no-cache and the "none" backend, and keeps
// tests free of cache state.
type NullCache struct{}

// NewNullCache creates a null cache.
func NewNullCache() Cache {
	return &NullCache{}
}

// Get always returns a miss.
func (c *NullCache) Get(ctx context.Context, key string) ([]byte, bool, error) {
	return nil, false, nil
}

// Set discards the document.
func (c *NullCache) Set(ctx context.Context, key string, data []byte, ttl time.Duration) error {
	return nil
}

// Delete does nothing.
func (c *NullCache) Delete(ctx context.Context, key string) error {
	return nil
}

// Close does nothing.
func (c *NullCache) Close() error {
	return nil
}

var _ Cache = (*NullCache)(nil)
