package cache

import "time"

// Cache is an in-process L1 cache used for data derived from the shared
// store, such as the decoded catalog symbol index. It is an optimization in
// front of Redis, never a source of truth.
type Cache interface {
	// Get retrieves a value from the cache.
	// Returns (value, true) if found, (nil, false) if not found.
	Get(key string) (interface{}, bool)

	// Set stores a value in the cache with a TTL.
	Set(key string, value interface{}, ttl time.Duration) bool

	// Delete removes a value from the cache.
	Delete(key string)

	// Close closes the cache and releases resources.
	Close()
}
