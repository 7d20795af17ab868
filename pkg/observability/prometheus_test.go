package observability

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestPrometheusHooks(t *testing.T) {
	reg := prometheus.NewRegistry()
	h, err := NewPrometheusHooks(reg)
	if err != nil {
		t.Fatalf("NewPrometheusHooks() error = %v", err)
	}
	ctx := context.Background()

	h.OnPartitionComplete(ctx, "ltree", true, 40, time.Millisecond, nil)
	h.OnPartitionComplete(ctx, "ltree", false, 2, time.Millisecond, nil)
	h.OnPartitionComplete(ctx, "btree", false, 0, time.Millisecond, errors.New("x"))
	h.OnCacheHit(ctx, "partition")
	h.OnCacheSet(ctx, "partition", 128)
	h.OnRequest(ctx, "POST", "/v1/partition")
	h.OnResponse(ctx, "POST", "/v1/partition", 200, time.Millisecond)

	tests := []struct {
		name string
		c    prometheus.Collector
		want float64
	}{
		{"feasible", h.partitions.WithLabelValues("ltree", "feasible"), 1},
		{"infeasible", h.partitions.WithLabelValues("ltree", "infeasible"), 1},
		{"error", h.partitions.WithLabelValues("btree", "error"), 1},
		{"subcases", h.subcases.WithLabelValues("ltree"), 42},
		{"cache hit", h.cacheEvents.WithLabelValues("partition", "hit"), 1},
		{"cache bytes", h.cacheBytes.WithLabelValues("partition"), 128},
		{"requests", h.requests.WithLabelValues("POST", "/v1/partition", "200"), 1},
		{"in flight", h.inFlight, 0},
	}
	for _, tt := range tests {
		if got := testutil.ToFloat64(tt.c); got != tt.want {
			t.Errorf("%s = %v, want %v", tt.name, got, tt.want)
		}
	}

	if _, err := NewPrometheusHooks(reg); err == nil {
		t.Error("registering twice should fail")
	}
}

func TestMulti(t *testing.T) {
	reg := prometheus.NewRegistry()
	p, err := NewPrometheusHooks(reg)
	if err != nil {
		t.Fatal(err)
	}
	m := Multi{p, NoopCacheHooks{}, "ignored"}
	m.Install()
	t.Cleanup(Reset)

	Cache().OnCacheMiss(context.Background(), "compare")
	API().OnRequest(context.Background(), "GET", "/healthz")
	if got := testutil.ToFloat64(p.cacheEvents.WithLabelValues("compare", "miss")); got != 1 {
		t.Errorf("cache misses = %v, want 1", got)
	}
	if got := testutil.ToFloat64(p.inFlight); got != 1 {
		t.Errorf("in flight = %v, want 1", got)
	}
}
