package cache

import (
	"context"
	"time"
)

// PrefixedCache prepends a fixed prefix to every key of an inner cache.
type PrefixedCache struct {
	inner  Cache
	prefix string
}

// Prefixed wraps inner so that all keys are namespaced with prefix, for
// example "sketchstack:llm:". A nil inner yields a [NullCache].
func Prefixed(inner Cache, prefix string) Cache {
	if inner == nil {
		inner = NewNullCache()
	}
	return &PrefixedCache{inner: inner, prefix: prefix}
}

func (c *PrefixedCache) Get(ctx context.Context, key string) ([]byte, bool, error) {
	return c.inner.Get(ctx, c.prefix+key)
}

func (c *PrefixedCache) Set(ctx context.Context, key string, data []byte, ttl time.Duration) error {
	return c.inner.Set(ctx, c.prefix+key, data, ttl)
}

func (c *PrefixedCache) Delete(ctx context.Context, key string) error {
	return c.inner.Delete(ctx, c.prefix+key)
}

// Close closes the inner cache.
func (c *PrefixedCache) Close() error { return c.inner.Close() }

var _ Cache = (*PrefixedCache)(nil)
