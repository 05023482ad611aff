// Package observability provides hooks for metrics, tracing, and logging.
//
// Libraries in this module emit events through package-level hooks instead of
// depending on a metrics backend directly. The server registers Prometheus
// implementations at startup; everything else (CLI runs, tests) gets no-ops.
//
// # Architecture
//
// The package uses a simple hooks pattern:
//   - Define hook interfaces for different event categories
//   - Provide no-op default implementations
//   - Allow registration of custom implementations at startup
//
// Hooks are registered by main, not by libraries, so there are no import
// cycles between instrumented packages and the backend.
//
// # Usage
//
// Register hooks at application startup:
//
//	func main() {
//	    observability.SetPipelineHooks(&myPipelineHooks{})
//	    observability.SetUpstreamHooks(&myUpstreamHooks{})
//	    // ... run application
//	}
//
// Libraries call hooks to emit events:
//
//	observability.Pipeline().OnStageStart(ctx, "extract")
//	// ... call the model ...
//	observability.Pipeline().OnStageComplete(ctx, "extract", time.Since(start), err)
package observability

import (
	"context"
	"sync"
	"time"
)

// =============================================================================
// Pipeline Hooks
// =============================================================================

// PipelineHooks receives events from the generate/refine pipeline.
type PipelineHooks interface {
	// OnStageStart records the start of a named stage (extract, validate,
	// derive, layout, render, refine).
	OnStageStart(ctx context.Context, stage string)

	// OnStageComplete records the end of a stage. err is nil on success.
	OnStageComplete(ctx context.Context, stage string, duration time.Duration, err error)

	// OnRepairAttempt records a failed validation attempt for schema.
	// attempt is 1-based.
	OnRepairAttempt(ctx context.Context, schema string, attempt int, err error)
}

// =============================================================================
// Cache Hooks
// =============================================================================

// CacheHooks receives events from cache operations.
type CacheHooks interface {
	// OnCacheHit records a cache hit.
	OnCacheHit(ctx context.Context, keyType string)

	// OnCacheMiss records a cache miss.
	OnCacheMiss(ctx context.Context, keyType string)

	// OnCacheSet records a cache write.
	OnCacheSet(ctx context.Context, keyType string, size int)
}

// =============================================================================
// Upstream Hooks
// =============================================================================

// UpstreamHooks receives events from calls to external collaborators such as
// the language model service and tool servers.
type UpstreamHooks interface {
	// OnRequest records an outgoing call. upstream names the collaborator
	// ("ollama", "mcp") and op the operation ("chat", "open_drawio_xml").
	OnRequest(ctx context.Context, upstream, op string)

	// OnResponse records a completed call. status is the HTTP status code
	// when there is one, 0 otherwise.
	OnResponse(ctx context.Context, upstream, op string, status int, duration time.Duration)

	// OnError records a failed call (network failure, timeout, tool error).
	OnError(ctx context.Context, upstream, op string, err error)
}

// =============================================================================
// No-op Implementations
// =============================================================================

// NoopPipelineHooks is a no-op implementation of PipelineHooks.
type NoopPipelineHooks struct{}

func (NoopPipelineHooks) OnStageStart(context.Context, string)                          {}
func (NoopPipelineHooks) OnStageComplete(context.Context, string, time.Duration, error) {}
func (NoopPipelineHooks) OnRepairAttempt(context.Context, string, int, error)           {}

// NoopCacheHooks is a no-op implementation of CacheHooks.
type NoopCacheHooks struct{}

func (NoopCacheHooks) OnCacheHit(context.Context, string)      {}
func (NoopCacheHooks) OnCacheMiss(context.Context, string)     {}
func (NoopCacheHooks) OnCacheSet(context.Context, string, int) {}

// NoopUpstreamHooks is a no-op implementation of UpstreamHooks.
type NoopUpstreamHooks struct{}

func (NoopUpstreamHooks) OnRequest(context.Context, string, string)                      {}
func (NoopUpstreamHooks) OnResponse(context.Context, string, string, int, time.Duration) {}
func (NoopUpstreamHooks) OnError(context.Context, string, string, error)                 {}

// =============================================================================
// Global Hook Registry
// =============================================================================

var (
	pipelineHooks PipelineHooks = NoopPipelineHooks{}
	cacheHooks    CacheHooks    = NoopCacheHooks{}
	upstreamHooks UpstreamHooks = NoopUpstreamHooks{}
	hooksMu       sync.RWMutex
)

// SetPipelineHooks registers custom pipeline hooks.
// This should be called once at application startup before any pipeline operations.
func SetPipelineHooks(h PipelineHooks) {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	if h != nil {
		pipelineHooks = h
	}
}

// SetCacheHooks registers custom cache hooks.
// This should be called once at application startup before any cache operations.
func SetCacheHooks(h CacheHooks) {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	if h != nil {
		cacheHooks = h
	}
}

// SetUpstreamHooks registers custom upstream hooks.
func SetUpstreamHooks(h UpstreamHooks) {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	if h != nil {
		upstreamHooks = h
	}
}

// Pipeline returns the registered pipeline hooks.
func Pipeline() PipelineHooks {
	hooksMu.RLock()
	defer hooksMu.RUnlock()
	return pipelineHooks
}

// Cache returns the registered cache hooks.
func Cache() CacheHooks {
	hooksMu.RLock()
	defer hooksMu.RUnlock()
	return cacheHooks
}

// Upstream returns the registered upstream hooks.
func Upstream() UpstreamHooks {
	hooksMu.RLock()
	defer hooksMu.RUnlock()
	return upstreamHooks
}

// Reset restores all hooks to their no-op defaults.
// This is primarily useful for testing.
func Reset() {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	pipelineHooks = NoopPipelineHooks{}
	cacheHooks = NoopCacheHooks{}
	upstreamHooks = NoopUpstreamHooks{}
}

// Stage runs fn as a named pipeline stage, emitting start and completion
// events around it.
func Stage(ctx context.Context, name string, fn func() error) error {
	h := Pipeline()
	h.OnStageStart(ctx, name)
	start := time.Now()
	err := fn()
	h.OnStageComplete(ctx, name, time.Since(start), err)
	return err
}
