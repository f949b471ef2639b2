package common

import "time"

// CacheRepository defines a minimal interface for a key/value cache. The MVP
// client stores raw []byte values in it, typically the JSON bytes of slowly
// changing reference data such as contribution types and technology areas.
//
// An in-memory store is the default backing; anything with get/set/delete
// semantics (Redis, a file cache, ...) can stand in by implementing the
// three methods.
type CacheRepository interface {
	Get(key string) (value []byte, found bool)
	Set(key string, value []byte, expiration time.Duration)
	Delete(key string)
}
