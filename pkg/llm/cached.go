package llm

import (
	"context"
	"io"
	"time"

	"github.com/charmbracelet/log"

	"github.com/harishkotra/SketchStack/pkg/cache"
	"github.com/harishkotra/SketchStack/pkg/observability"
)

const cacheKeyType = "chat"

// CachedClient memoizes replies of an inner client. The key covers the
// model, temperature and every message, so identical requests within the
// ttl are answered without calling the model.
type CachedClient struct {
	inner  Client
	cache  cache.Cache
	ttl    time.Duration
	model  string
	logger *log.Logger
}

// NewCachedClient wraps inner. model names the inner client's default model
// so that keys stay distinct when the default changes. A nil c disables
// caching.
func NewCachedClient(inner Client, c cache.Cache, ttl time.Duration, model string, logger *log.Logger) *CachedClient {
	if c == nil {
		c = cache.NewNullCache()
	}
	if logger == nil {
		logger = log.New(io.Discard)
	}
	return &CachedClient{inner: inner, cache: c, ttl: ttl, model: model, logger: logger}
}

// Chat returns a cached reply or calls the inner client and stores the
// result. Cache failures are logged and never fail the call.
func (c *CachedClient) Chat(ctx context.Context, messages []Message, opts ChatOptions) (string, error) {
	model := c.model
	if opts.Model != "" {
		model = opts.Model
	}
	key := cache.Key(cacheKeyType, model, opts.Temperature, messages)
	hooks := observability.Cache()

	data, hit, err := c.cache.Get(ctx, key)
	if err != nil {
		c.logger.Warn("cache read failed", "err", err)
	}
	if hit {
		hooks.OnCacheHit(ctx, cacheKeyType)
		return string(data), nil
	}
	hooks.OnCacheMiss(ctx, cacheKeyType)

	reply, err := c.inner.Chat(ctx, messages, opts)
	if err != nil {
		return "", err
	}
	if err := c.cache.Set(ctx, key, []byte(reply), c.ttl); err != nil {
		c.logger.Warn("cache write failed", "err", err)
	} else {
		hooks.OnCacheSet(ctx, cacheKeyType, len(reply))
	}
	return reply, nil
}

// Models forwards to the inner client. It is never cached.
func (c *CachedClient) Models(ctx context.Context) ([]string, error) {
	if l, ok := c.inner.(ModelLister); ok {
		return l.Models(ctx)
	}
	return nil, ErrModelsUnsupported
}

var (
	_ Client      = (*CachedClient)(nil)
	_ ModelLister = (*CachedClient)(nil)
)
