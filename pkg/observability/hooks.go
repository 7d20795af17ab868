// Package observability provides hooks for metrics, tracing, and logging.
//
// Libraries emit events through the registered hooks without depending on
// any observability backend; the binary decides what listens:
//
//	func main() {
//	    observability.SetPartitionHooks(observability.NewLogHooks(logger))
//	    // ... run application
//	}
//
// Libraries call hooks to emit events:
//
//	observability.Partition().OnPartitionStart(ctx, "ltree", t.Len())
//	// ... partition ...
//	observability.Partition().OnPartitionComplete(ctx, "ltree", res.Feasible, res.Stats.Created, time.Since(start), err)
//
// All hooks default to no-ops.
package observability

import (
	"context"
	"sync"
	"time"
)

// =============================================================================
// Partition Hooks
// =============================================================================

// PartitionHooks receives events from partitioning runs.
type PartitionHooks interface {
	OnPartitionStart(ctx context.Context, algorithm string, nodes int)
	OnPartitionComplete(ctx context.Context, algorithm string, feasible bool, subcases int64, duration time.Duration, err error)
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
// API Hooks
// =============================================================================

// APIHooks receives events from the HTTP service.
type APIHooks interface {
	// OnRequest records an incoming request on a route pattern.
	OnRequest(ctx context.Context, method, route string)

	// OnResponse records the response status and handling time.
	OnResponse(ctx context.Context, method, route string, status int, duration time.Duration)
}

// =============================================================================
// No-op Implementations
// =============================================================================

// NoopPartitionHooks is a no-op implementation of PartitionHooks.
type NoopPartitionHooks struct{}

func (NoopPartitionHooks) OnPartitionStart(context.Context, string, int) {}
func (NoopPartitionHooks) OnPartitionComplete(context.Context, string, bool, int64, time.Duration, error) {
}

// NoopCacheHooks is a no-op implementation of CacheHooks.
type NoopCacheHooks struct{}

func (NoopCacheHooks) OnCacheHit(context.Context, string)      {}
func (NoopCacheHooks) OnCacheMiss(context.Context, string)     {}
func (NoopCacheHooks) OnCacheSet(context.Context, string, int) {}

// NoopAPIHooks is a no-op implementation of APIHooks.
type NoopAPIHooks struct{}

func (NoopAPIHooks) OnRequest(context.Context, string, string)                         {}
func (NoopAPIHooks) OnResponse(context.Context, string, string, int, time.Duration) {}

// =============================================================================
// Global Hook Registry
// =============================================================================

var (
	partitionHooks PartitionHooks = NoopPartitionHooks{}
	cacheHooks     CacheHooks     = NoopCacheHooks{}
	apiHooks       APIHooks       = NoopAPIHooks{}
	hooksMu        sync.RWMutex
)

// SetPartitionHooks registers custom partition hooks.
// This should be called once at application startup.
func SetPartitionHooks(h PartitionHooks) {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	if h != nil {
		partitionHooks = h
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

// SetAPIHooks registers custom API hooks.
func SetAPIHooks(h APIHooks) {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	if h != nil {
		apiHooks = h
	}
}

// Partition returns the registered partition hooks.
func Partition() PartitionHooks {
	hooksMu.RLock()
	defer hooksMu.RUnlock()
	return partitionHooks
}

// Cache returns the registered cache hooks.
func Cache() CacheHooks {
	hooksMu.RLock()
	defer hooksMu.RUnlock()
	return cacheHooks
}

// API returns the registered API hooks.
func API() APIHooks {
	hooksMu.RLock()
	defer hooksMu.RUnlock()
	return apiHooks
}

// Reset restores all hooks to their no-op defaults.
// This is primarily useful for testing.
func Reset() {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	partitionHooks = NoopPartitionHooks{}
	cacheHooks = NoopCacheHooks{}
	apiHooks = NoopAPIHooks{}
}
