// Package cache stores opaque byte payloads under string keys with an
// optional time-to-live.
//
// # Backends
//
//   - [NullCache]: stores nothing; the default when caching is disabled
//   - [FileCache]: one JSON file per entry, for CLI runs
//   - [RedisCache]: shared cache for multi-instance servers
//
// [Prefixed] namespaces a backend so unrelated callers can share it.
//
// # Usage
//
// The LLM client caches chat completions keyed by a hash of the request:
//
//	c, err := cache.NewFileCache(dir)
//	key := cache.Key("chat", model, messages)
//	if data, hit, _ := c.Get(ctx, key); hit {
//	    return data
//	}
//	data := callModel()
//	_ = c.Set(ctx, key, data, 24*time.Hour)
package cache

import (
	"context"
	"errors"
	"time"
)

// ErrCacheMiss is returned by helpers that need to report a miss as an
// error. Get itself reports misses through its hit result.
var ErrCacheMiss = errors.New("cache miss")

// Cache is the interface every backend implements.
type Cache interface {
	// Get returns the stored data and hit=true, or hit=false on a miss or
	// an expired entry. err is reserved for backend failures.
	Get(ctx context.Context, key string) (data []byte, hit bool, err error)

	// Set stores data. A ttl of zero means no expiry.
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error

	// Delete removes key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error

	// Close releases backend resources.
	Close() error
}

// GetOrErr is Get with a miss reported as [ErrCacheMiss].
func GetOrErr(ctx context.Context, c Cache, key string) ([]byte, error) {
	data, hit, err := c.Get(ctx, key)
	if err != nil {
		return nil, err
	}
	if !hit {
		return nil, ErrCacheMiss
	}
	return data, nil
}
