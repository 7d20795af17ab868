package observability

import (
	"context"
	"time"

	"github.com/charmbracelet/log"
)

// LogHooks writes every event to a logger at debug level; errors and
// server-side failures are logged as warnings.
type LogHooks struct {
	logger *log.Logger
}

// NewLogHooks returns hooks logging through logger. A nil logger selects
// the default logger.
func NewLogHooks(logger *log.Logger) *LogHooks {
	if logger == nil {
		logger = log.Default()
	}
	return &LogHooks{logger: logger.WithPrefix("obs")}
}

func (h *LogHooks) OnPartitionStart(_ context.Context, algorithm string, nodes int) {
	h.logger.Debug("partition start", "algorithm", algorithm, "nodes", nodes)
}

func (h *LogHooks) OnPartitionComplete(_ context.Context, algorithm string, feasible bool, subcases int64, d time.Duration, err error) {
	if err != nil {
		h.logger.Warn("partition failed", "algorithm", algorithm, "err", err, "duration", d)
		return
	}
	h.logger.Debug("partition done", "algorithm", algorithm, "feasible", feasible, "subcases", subcases, "duration", d)
}

func (h *LogHooks) OnCacheHit(_ context.Context, keyType string) {
	h.logger.Debug("cache hit", "type", keyType)
}

func (h *LogHooks) OnCacheMiss(_ context.Context, keyType string) {
	h.logger.Debug("cache miss", "type", keyType)
}

func (h *LogHooks) OnCacheSet(_ context.Context, keyType string, size int) {
	h.logger.Debug("cache set", "type", keyType, "bytes", size)
}

func (h *LogHooks) OnRequest(_ context.Context, method, route string) {
	h.logger.Debug("request", "method", method, "route", route)
}

func (h *LogHooks) OnResponse(_ context.Context, method, route string, status int, d time.Duration) {
	if status >= 500 {
		h.logger.Warn("response", "method", method, "route", route, "status", status, "duration", d)
		return
	}
	h.logger.Debug("response", "method", method, "route", route, "status", status, "duration", d)
}

var (
	_ PartitionHooks = (*LogHooks)(nil)
	_ CacheHooks     = (*LogHooks)(nil)
	_ APIHooks       = (*LogHooks)(nil)
)
