package pipeline

import (
	"bytes"
	"context"
	"encoding/json"
	"time"

	"github.com/charmbracelet/log"

	"github.com/hsnlab/SLAMBUC/pkg/cache"
	"github.com/hsnlab/SLAMBUC/pkg/errors"
	pkgio "github.com/hsnlab/SLAMBUC/pkg/io"
	"github.com/hsnlab/SLAMBUC/pkg/observability"
	"github.com/hsnlab/SLAMBUC/pkg/partition"
	"github.com/hsnlab/SLAMBUC/pkg/render"
	"github.com/hsnlab/SLAMBUC/pkg/store"
	"github.com/hsnlab/SLAMBUC/pkg/tree"
)

// Runner executes requests with caching and optional archiving.
// Both CLI and API use it so caching behaves the same everywhere.
//
// The Runner holds no per-request state; multiple goroutines can safely
// share one Runner with different options.
type Runner struct {
	Cache  cache.Cache
	Keyer  cache.Keyer
	Store  store.Store // may be nil
	Logger *log.Logger
	TTL    time.Duration
}

// NewRunner creates a runner.
// If keyer is nil, a DefaultKeyer is used.
// If c is nil, a NullCache is used (caching disabled).
// A nil store disables archiving.
func NewRunner(c cache.Cache, keyer cache.Keyer, st store.Store, logger *log.Logger) *Runner {
	if keyer == nil {
		keyer = cache.NewDefaultKeyer()
	}
	if c == nil {
		c = cache.NewNullCache()
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Runner{
		Cache:  c,
		Keyer:  keyer,
		Store:  st,
		Logger: logger,
		TTL:    cache.DefaultTTL,
	}
}

// TreeHash returns the content hash of the tree's canonical JSON.
func TreeHash(t *tree.Tree) (string, error) {
	var buf bytes.Buffer
	if err := pkgio.WriteJSON(t, &buf); err != nil {
		return "", err
	}
	return cache.Hash(buf.Bytes()), nil
}

// Execute partitions t, renders the requested diagrams and archives the
// run when asked to.
func (r *Runner) Execute(ctx context.Context, t *tree.Tree, opts Options) (*Result, error) {
	if t == nil {
		return nil, errors.New(errors.ErrCodeInvalidTree, "tree is nil")
	}
	opts.SetDefaults()
	if err := opts.Validate(); err != nil {
		return nil, err
	}
	if opts.Save && r.Store == nil {
		return nil, errors.New(errors.ErrCodeInvalidParams, "no run store configured")
	}

	start := time.Now()
	hash, err := TreeHash(t)
	if err != nil {
		return nil, err
	}
	out := &Result{TreeName: t.Name(), TreeHash: hash}

	out.Result, out.CacheHit, err = r.partitionCached(ctx, t, hash, opts)
	if err != nil {
		return nil, err
	}
	out.Path = CriticalPath(t, opts.Params)

	if len(opts.Formats) > 0 {
		out.Artifacts, err = Render(ctx, t, out.Result, out.Path, opts)
		if err != nil {
			return nil, err
		}
	}
	out.Duration = time.Since(start)

	if opts.Save {
		run := store.NewRun(t.Name(), hash, opts.Request(), out.Result)
		run.Duration = out.Duration
		if err := r.Store.Save(ctx, run); err != nil {
			return nil, err
		}
		out.RunID = run.ID
	}

	r.Logger.Info("partitioned",
		"tree", t.Name(),
		"algorithm", opts.Algorithm,
		"feasible", out.Result.Feasible,
		"cost", out.Result.Cost,
		"latency", out.Result.Latency,
		"cached", out.CacheHit,
		"duration", out.Duration)
	return out, nil
}

func (r *Runner) partitionCached(ctx context.Context, t *tree.Tree, hash string, opts Options) (partition.Result, bool, error) {
	key := r.Keyer.PartitionKey(hash, opts.KeyOpts())
	if !opts.Refresh {
		if res, ok := r.lookup(ctx, key, "partition"); ok {
			var cached partition.Result
			if err := json.Unmarshal(res, &cached); err == nil {
				return cached, true, nil
			}
		}
	}

	res, err := Partition(ctx, t, opts)
	if err != nil {
		return partition.Result{}, false, err
	}
	r.remember(ctx, key, "partition", res)
	return res, false, nil
}

// lookup reads key and reports the hit or miss to the cache hooks. A
// disabled cache reports nothing.
func (r *Runner) lookup(ctx context.Context, key, keyType string) ([]byte, bool) {
	if cache.Disabled(r.Cache) {
		return nil, false
	}
	data, hit, err := r.Cache.Get(ctx, key)
	if err != nil {
		r.Logger.Warn("cache read failed", "key", key, "err", err)
	}
	if err != nil || !hit {
		observability.Cache().OnCacheMiss(ctx, keyType)
		return nil, false
	}
	observability.Cache().OnCacheHit(ctx, keyType)
	return data, true
}

// remember writes v under key. Cache failures are logged, never returned.
func (r *Runner) remember(ctx context.Context, key, keyType string, v any) {
	if cache.Disabled(r.Cache) {
		return
	}
	data, err := json.Marshal(v)
	if err != nil {
		return
	}
	if err := r.Cache.Set(ctx, key, data, r.TTL); err != nil {
		r.Logger.Warn("cache write failed", "key", key, "err", err)
		return
	}
	observability.Cache().OnCacheSet(ctx, keyType, len(data))
}

// Partition runs the requested algorithm without caching, wrapping it in
// the approximation when a knob is set.
func Partition(ctx context.Context, t *tree.Tree, opts Options) (partition.Result, error) {
	opts.SetDefaults()
	hooks := observability.Partition()
	hooks.OnPartitionStart(ctx, opts.Algorithm, t.Len())
	start := time.Now()

	var (
		res partition.Result
		err error
	)
	if opts.Approximate() {
		res, err = partition.Approximate(ctx, t, opts.Params, opts.Approx(), opts.Algorithm)
	} else {
		var alg partition.Algorithm
		if alg, err = partition.Lookup(opts.Algorithm); err == nil {
			res, err = alg(ctx, t, opts.Params)
		}
	}
	hooks.OnPartitionComplete(ctx, opts.Algorithm, res.Feasible, res.Stats.Created, time.Since(start), err)
	return res, err
}

// CriticalPath resolves the critical path of p on t, or nil when the
// parameters do not name a valid one.
func CriticalPath(t *tree.Tree, p partition.Params) []tree.NodeID {
	root := p.Root
	if root == tree.Platform {
		root = t.Root()
	}
	path, err := t.CriticalPath(root, p.CPEnd)
	if err != nil {
		return nil
	}
	return path
}

// Render draws res in every requested format.
func Render(ctx context.Context, t *tree.Tree, res partition.Result, path []tree.NodeID, opts Options) (map[string][]byte, error) {
	dot := render.ToDOT(t, res, path, render.Options{Detailed: opts.Detailed})
	artifacts := make(map[string][]byte, len(opts.Formats))
	for _, format := range opts.Formats {
		data, err := render.Render(ctx, dot, format)
		if err != nil {
			return nil, err
		}
		artifacts[format] = data
	}
	return artifacts, nil
}
