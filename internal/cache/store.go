// Package cache provides the on-device key-value store holding the latest
// known snapshot of each entity collection plus sync bookkeeping.
//
// The cache is a best-effort accelerator, never the source of truth once the
// cloud is configured: callers treat any store failure as a cache miss
// rather than propagating it. There are no transactions across keys; a
// multi-key refresh is a batch of independent writes, and a crash mid-batch
// may leave some keys stale but never corrupts an individual value.
package cache

import "context"

// Store is the persistence contract for the local cache.
//
// Values are opaque JSON documents; each key holds a complete snapshot so a
// partial batch never leaves a half-written value behind.
type Store interface {
	// Get returns the value for key. The second result is false when the
	// key is absent.
	Get(ctx context.Context, key string) ([]byte, bool, error)

	// Set writes the value for key, replacing any previous value.
	Set(ctx context.Context, key string, value []byte) error

	// Remove deletes key. Removing an absent key is not an error.
	Remove(ctx context.Context, key string) error

	// RemoveMany deletes all given keys as independent writes.
	RemoveMany(ctx context.Context, keys []string) error

	// Close releases store resources.
	Close() error
}
