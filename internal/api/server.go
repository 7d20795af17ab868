// Package api serves partitioning over HTTP.
//
// Routes:
//
//	GET    /healthz          liveness and build version
//	GET    /metrics          Prometheus metrics, when a registry is configured
//	GET    /v1/algorithms    registered algorithms
//	POST   /v1/partition     partition a tree
//	POST   /v1/compare       run several algorithms on a tree
//	GET    /v1/runs          list archived runs
//	GET    /v1/runs/{id}     fetch an archived run
//	DELETE /v1/runs/{id}     delete an archived run
//
// Request bodies carry the tree in the JSON format of pkg/io under "tree"
// next to the pipeline options:
//
//	{"tree": {...}, "algorithm": "ltree", "M": 512, "cp_end": 7, "save": true}
package api

import (
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/hsnlab/SLAMBUC/pkg/observability"
	"github.com/hsnlab/SLAMBUC/pkg/pipeline"
)

// Options configures a Server.
type Options struct {
	// RequestTimeout bounds each request, partitioning included.
	RequestTimeout time.Duration
	// MaxBodyBytes caps request bodies.
	MaxBodyBytes int64
	// Metrics exposes /metrics when set.
	Metrics prometheus.Gatherer
	Logger  *log.Logger
}

// Server holds the handlers' dependencies.
type Server struct {
	runner *pipeline.Runner
	opts   Options
	log    *log.Logger
}

// New creates a server around runner. Run routes answer 501 when the
// runner has no store.
func New(runner *pipeline.Runner, opts Options) *Server {
	if opts.RequestTimeout <= 0 {
		opts.RequestTimeout = time.Minute
	}
	if opts.MaxBodyBytes <= 0 {
		opts.MaxBodyBytes = 8 << 20
	}
	if opts.Logger == nil {
		opts.Logger = log.Default()
	}
	return &Server{runner: runner, opts: opts, log: opts.Logger}
}

// Handler builds the router.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(s.observe)
	r.Use(middleware.Recoverer)

	r.Get("/healthz", s.health)
	if s.opts.Metrics != nil {
		r.Handle("/metrics", promhttp.HandlerFor(s.opts.Metrics, promhttp.HandlerOpts{}))
	}

	r.Route("/v1", func(r chi.Router) {
		r.Use(middleware.Timeout(s.opts.RequestTimeout))
		r.Use(middleware.AllowContentType("application/json"))
		r.Get("/algorithms", s.algorithms)
		r.Post("/partition", s.partition)
		r.Post("/compare", s.compare)
		r.Route("/runs", func(r chi.Router) {
			r.Get("/", s.listRuns)
			r.Get("/{id}", s.getRun)
			r.Delete("/{id}", s.deleteRun)
		})
	})
	return r
}

// observe reports every request to the API hooks under its route pattern.
func (s *Server) observe(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		hooks := observability.API()
		hooks.OnRequest(r.Context(), r.Method, r.URL.Path)

		next.ServeHTTP(ww, r)

		route := r.URL.Path
		if rctx := chi.RouteContext(r.Context()); rctx != nil {
			if p := rctx.RoutePattern(); p != "" {
				route = p
			}
		}
		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}
		d := time.Since(start)
		hooks.OnResponse(r.Context(), r.Method, route, status, d)
		s.log.Debug("request", "method", r.Method, "route", route, "status", status,
			"duration", d, "id", middleware.GetReqID(r.Context()))
	})
}
