package common

import "time"

// CacheInterface is implemented by the in-memory and Redis caches. Values
// round-trip through JSON so both backends return the same shapes.
type CacheInterface interface {
	Set(key string, value interface{}, ttl time.Duration)
	// Get decodes into dest and reports a hit
	Get(key string, dest interface{}) bool
	Delete(key string)
	Close() error
}
