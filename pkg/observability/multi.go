package observability

import (
	"context"
	"time"
)

// Multi fans every event out to each member implementing the matching
// hooks interface. Members implementing none are ignored.
type Multi []any

func (m Multi) OnPartitionStart(ctx context.Context, algorithm string, nodes int) {
	for _, h := range m {
		if p, ok := h.(PartitionHooks); ok {
			p.OnPartitionStart(ctx, algorithm, nodes)
		}
	}
}

func (m Multi) OnPartitionComplete(ctx context.Context, algorithm string, feasible bool, subcases int64, d time.Duration, err error) {
	for _, h := range m {
		if p, ok := h.(PartitionHooks); ok {
			p.OnPartitionComplete(ctx, algorithm, feasible, subcases, d, err)
		}
	}
}

func (m Multi) OnCacheHit(ctx context.Context, keyType string) {
	for _, h := range m {
		if c, ok := h.(CacheHooks); ok {
			c.OnCacheHit(ctx, keyType)
		}
	}
}

func (m Multi) OnCacheMiss(ctx context.Context, keyType string) {
	for _, h := range m {
		if c, ok := h.(CacheHooks); ok {
			c.OnCacheMiss(ctx, keyType)
		}
	}
}

func (m Multi) OnCacheSet(ctx context.Context, keyType string, size int) {
	for _, h := range m {
		if c, ok := h.(CacheHooks); ok {
			c.OnCacheSet(ctx, keyType, size)
		}
	}
}

func (m Multi) OnRequest(ctx context.Context, method, route string) {
	for _, h := range m {
		if a, ok := h.(APIHooks); ok {
			a.OnRequest(ctx, method, route)
		}
	}
}

func (m Multi) OnResponse(ctx context.Context, method, route string, status int, d time.Duration) {
	for _, h := range m {
		if a, ok := h.(APIHooks); ok {
			a.OnResponse(ctx, method, route, status, d)
		}
	}
}

// Install registers m for all three hook kinds.
func (m Multi) Install() {
	SetPartitionHooks(m)
	SetCacheHooks(m)
	SetAPIHooks(m)
}
