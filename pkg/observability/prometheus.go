package observability

import (
	"context"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// PrometheusHooks exports every event as Prometheus metrics.
type PrometheusHooks struct {
	partitions       *prometheus.CounterVec
	partitionSeconds *prometheus.HistogramVec
	subcases         *prometheus.CounterVec
	cacheEvents      *prometheus.CounterVec
	cacheBytes       *prometheus.CounterVec
	requests         *prometheus.CounterVec
	requestSeconds   *prometheus.HistogramVec
	inFlight         prometheus.Gauge
}

// NewPrometheusHooks creates the collectors and registers them with reg.
func NewPrometheusHooks(reg prometheus.Registerer) (*PrometheusHooks, error) {
	h := &PrometheusHooks{
		partitions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "slambuc_partitions_total",
			Help: "Partitioning runs by algorithm and outcome.",
		}, []string{"algorithm", "outcome"}),
		partitionSeconds: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "slambuc_partition_duration_seconds",
			Help:    "Partitioning run duration.",
			Buckets: prometheus.ExponentialBuckets(0.0005, 4, 10),
		}, []string{"algorithm"}),
		subcases: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "slambuc_subcases_total",
			Help: "Subcases created by the DP engines.",
		}, []string{"algorithm"}),
		cacheEvents: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "slambuc_cache_events_total",
			Help: "Cache hits, misses and writes by key type.",
		}, []string{"type", "event"}),
		cacheBytes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "slambuc_cache_written_bytes_total",
			Help: "Bytes written to the result cache.",
		}, []string{"type"}),
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "slambuc_http_requests_total",
			Help: "HTTP requests by route and status.",
		}, []string{"method", "route", "status"}),
		requestSeconds: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "slambuc_http_request_duration_seconds",
			Help:    "HTTP request handling time.",
			Buckets: prometheus.DefBuckets,
		}, []string{"method", "route"}),
		inFlight: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "slambuc_http_requests_in_flight",
			Help: "Requests currently being handled.",
		}),
	}
	for _, c := range []prometheus.Collector{
		h.partitions, h.partitionSeconds, h.subcases,
		h.cacheEvents, h.cacheBytes,
		h.requests, h.requestSeconds, h.inFlight,
	} {
		if err := reg.Register(c); err != nil {
			return nil, err
		}
	}
	return h, nil
}

func (h *PrometheusHooks) OnPartitionStart(context.Context, string, int) {}

func (h *PrometheusHooks) OnPartitionComplete(_ context.Context, algorithm string, feasible bool, subcases int64, d time.Duration, err error) {
	outcome := "infeasible"
	switch {
	case err != nil:
		outcome = "error"
	case feasible:
		outcome = "feasible"
	}
	h.partitions.WithLabelValues(algorithm, outcome).Inc()
	h.partitionSeconds.WithLabelValues(algorithm).Observe(d.Seconds())
	h.subcases.WithLabelValues(algorithm).Add(float64(subcases))
}

func (h *PrometheusHooks) OnCacheHit(_ context.Context, keyType string) {
	h.cacheEvents.WithLabelValues(keyType, "hit").Inc()
}

func (h *PrometheusHooks) OnCacheMiss(_ context.Context, keyType string) {
	h.cacheEvents.WithLabelValues(keyType, "miss").Inc()
}

func (h *PrometheusHooks) OnCacheSet(_ context.Context, keyType string, size int) {
	h.cacheEvents.WithLabelValues(keyType, "set").Inc()
	h.cacheBytes.WithLabelValues(keyType).Add(float64(size))
}

func (h *PrometheusHooks) OnRequest(context.Context, string, string) {
	h.inFlight.Inc()
}

func (h *PrometheusHooks) OnResponse(_ context.Context, method, route string, status int, d time.Duration) {
	h.inFlight.Dec()
	h.requests.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	h.requestSeconds.WithLabelValues(method, route).Observe(d.Seconds())
}

var (
	_ PartitionHooks = (*PrometheusHooks)(nil)
	_ CacheHooks     = (*PrometheusHooks)(nil)
	_ APIHooks       = (*PrometheusHooks)(nil)
)
