package pipeline

import (
	"context"
	"io"
	"sync"
	"testing"
	"time"

	"github.com/charmbracelet/log"

	"github.com/hsnlab/SLAMBUC/pkg/cache"
	"github.com/hsnlab/SLAMBUC/pkg/errors"
	"github.com/hsnlab/SLAMBUC/pkg/observability"
	"github.com/hsnlab/SLAMBUC/pkg/partition"
	"github.com/hsnlab/SLAMBUC/pkg/render"
	"github.com/hsnlab/SLAMBUC/pkg/store"
	"github.com/hsnlab/SLAMBUC/pkg/tree"
)

func chain(t *testing.T) *tree.Tree {
	t.Helper()
	tr := tree.New("chain")
	for id := tree.NodeID(1); id <= 3; id++ {
		if err := tr.AddNode(tree.Node{ID: id, Runtime: 10, Memory: 2}); err != nil {
			t.Fatal(err)
		}
	}
	for _, e := range []tree.Edge{
		{From: tree.Platform, To: 1, Rate: 1},
		{From: 1, To: 2, Rate: 1},
		{From: 2, To: 3, Rate: 1},
	} {
		if err := tr.AddEdge(e); err != nil {
			t.Fatal(err)
		}
	}
	return tr
}

func chainOptions() Options {
	opts := Options{Params: partition.DefaultParams()}
	opts.CPEnd, opts.Delay, opts.M = 3, 5, 4
	return opts
}

func quietLogger() *log.Logger {
	return log.NewWithOptions(io.Discard, log.Options{Level: log.FatalLevel})
}

type countingHooks struct {
	observability.NoopPartitionHooks
	mu                   sync.Mutex
	starts, hits, misses int
	sets                 int
}

func (h *countingHooks) OnPartitionStart(context.Context, string, int) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.starts++
}

func (h *countingHooks) OnCacheHit(context.Context, string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.hits++
}

func (h *countingHooks) OnCacheMiss(context.Context, string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.misses++
}

func (h *countingHooks) OnCacheSet(context.Context, string, int) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.sets++
}

func TestExecute(t *testing.T) {
	r := NewRunner(nil, nil, nil, quietLogger())
	res, err := r.Execute(context.Background(), chain(t), chainOptions())
	if err != nil {
		t.Fatalf("Execute() error = %v", err)
	}
	got := res.Result
	if !got.Feasible || got.Cost != 30 || got.Latency != 35 || len(got.Partition) != 2 {
		t.Errorf("Execute() = %+v, want 2 blocks with cost 30 and latency 35", got)
	}
	if len(res.Path) != 3 || res.TreeHash == "" || res.CacheHit {
		t.Errorf("Execute() path %v hash %q hit %v", res.Path, res.TreeHash, res.CacheHit)
	}
}

func TestExecuteCaching(t *testing.T) {
	hooks := &countingHooks{}
	observability.SetPartitionHooks(hooks)
	observability.SetCacheHooks(hooks)
	t.Cleanup(observability.Reset)

	c, err := cache.NewFileCache(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	r := NewRunner(c, nil, nil, quietLogger())
	ctx := context.Background()
	tr := chain(t)

	first, err := r.Execute(ctx, tr, chainOptions())
	if err != nil {
		t.Fatal(err)
	}
	second, err := r.Execute(ctx, tr, chainOptions())
	if err != nil {
		t.Fatal(err)
	}
	if first.CacheHit || !second.CacheHit {
		t.Errorf("CacheHit = %v then %v, want false then true", first.CacheHit, second.CacheHit)
	}
	if second.Result.Cost != first.Result.Cost {
		t.Errorf("cached cost %d, computed %d", second.Result.Cost, first.Result.Cost)
	}

	other := chainOptions()
	other.M = 6
	third, err := r.Execute(ctx, tr, other)
	if err != nil {
		t.Fatal(err)
	}
	if third.CacheHit || len(third.Result.Partition) != 1 {
		t.Errorf("different bound reused a cached result: %+v", third)
	}

	refresh := chainOptions()
	refresh.Refresh = true
	if res, _ := r.Execute(ctx, tr, refresh); res.CacheHit {
		t.Error("Refresh should bypass the cache")
	}

	if hooks.starts != 3 || hooks.hits != 1 || hooks.misses != 2 || hooks.sets != 3 {
		t.Errorf("hooks starts=%d hits=%d misses=%d sets=%d, want 3/1/2/3",
			hooks.starts, hooks.hits, hooks.misses, hooks.sets)
	}
}

func TestExecuteWithoutCache(t *testing.T) {
	hooks := &countingHooks{}
	observability.SetPartitionHooks(hooks)
	observability.SetCacheHooks(hooks)
	t.Cleanup(observability.Reset)

	r := NewRunner(nil, nil, nil, quietLogger())
	for range 2 {
		res, err := r.Execute(context.Background(), chain(t), chainOptions())
		if err != nil {
			t.Fatal(err)
		}
		if res.CacheHit {
			t.Error("CacheHit = true with caching disabled")
		}
	}
	if hooks.starts != 2 || hooks.hits+hooks.misses+hooks.sets != 0 {
		t.Errorf("hooks starts=%d hits=%d misses=%d sets=%d, want 2/0/0/0",
			hooks.starts, hooks.hits, hooks.misses, hooks.sets)
	}
}

func TestExecuteSave(t *testing.T) {
	st, err := store.NewFileStore(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	r := NewRunner(nil, nil, st, quietLogger())
	opts := chainOptions()
	opts.Save = true
	res, err := r.Execute(context.Background(), chain(t), opts)
	if err != nil {
		t.Fatal(err)
	}
	run, err := st.Get(context.Background(), res.RunID)
	if err != nil {
		t.Fatalf("Get(%q) error = %v", res.RunID, err)
	}
	if run.TreeHash != res.TreeHash || run.Request.M != 4 || run.Result.Cost != 30 {
		t.Errorf("archived run = %+v", run)
	}

	noStore := NewRunner(nil, nil, nil, quietLogger())
	if _, err := noStore.Execute(context.Background(), chain(t), opts); !errors.Is(err, errors.ErrCodeInvalidParams) {
		t.Errorf("Execute() without store error = %v, want %s", err, errors.ErrCodeInvalidParams)
	}
}

func TestExecuteRender(t *testing.T) {
	opts := chainOptions()
	opts.Formats = []string{render.FormatDOT}
	res, err := NewRunner(nil, nil, nil, quietLogger()).Execute(context.Background(), chain(t), opts)
	if err != nil {
		t.Fatal(err)
	}
	if len(res.Artifacts[render.FormatDOT]) == 0 {
		t.Error("missing dot artifact")
	}
}

func TestOptionsValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(o *Options)
		want   errors.Code
	}{
		{"unknown algorithm", func(o *Options) { o.Algorithm = "simplex" }, errors.ErrCodeUnknownAlgorithm},
		{"bad N", func(o *Options) { o.N = -1 }, errors.ErrCodeInvalidParams},
		{"negative epsilon", func(o *Options) { o.Epsilon = -0.1 }, errors.ErrCodeInvalidParams},
		{"approximate greedy", func(o *Options) { o.Algorithm, o.Epsilon = partition.AlgGreedy, 0.5 }, errors.ErrCodeInvalidParams},
		{"bad format", func(o *Options) { o.Formats = []string{"pdf"} }, errors.ErrCodeInvalidFormat},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			opts := chainOptions()
			tt.mutate(&opts)
			opts.SetDefaults()
			if err := opts.Validate(); !errors.Is(err, tt.want) {
				t.Errorf("Validate() error = %v, want %s", err, tt.want)
			}
		})
	}
}

func TestExecuteApproximate(t *testing.T) {
	opts := chainOptions()
	opts.Epsilon = 0.5
	res, err := NewRunner(nil, nil, nil, quietLogger()).Execute(context.Background(), chain(t), opts)
	if err != nil {
		t.Fatal(err)
	}
	if res.Result.Approx == nil || res.Result.Cost != 30 {
		t.Errorf("Execute() = %+v, want an approximation report and cost 30", res.Result)
	}
}

func TestCompare(t *testing.T) {
	c, err := cache.NewFileCache(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	r := NewRunner(c, nil, nil, quietLogger())
	tr := chain(t)

	cmp, err := r.Compare(context.Background(), tr, nil, chainOptions())
	if err != nil {
		t.Fatalf("Compare() error = %v", err)
	}
	if len(cmp.Entries) != len(partition.Algorithms()) {
		t.Fatalf("Compare() ran %d algorithms, want all", len(cmp.Entries))
	}
	best, ok := cmp.Best()
	if !ok || best.Result.Cost != 30 || !best.Exact {
		t.Errorf("Best() = %+v, %v", best, ok)
	}
	for _, e := range cmp.Entries {
		if e.Gap < 0 {
			t.Errorf("%s gap %v below zero", e.Algorithm, e.Gap)
		}
	}

	again, err := r.Compare(context.Background(), tr, nil, chainOptions())
	if err != nil {
		t.Fatal(err)
	}
	if !again.CacheHit {
		t.Error("second Compare() should hit the cache")
	}

	if _, err := r.Compare(context.Background(), tr, []string{"nope"}, chainOptions()); !errors.Is(err, errors.ErrCodeUnknownAlgorithm) {
		t.Errorf("Compare() error = %v, want %s", err, errors.ErrCodeUnknownAlgorithm)
	}
}

func TestStress(t *testing.T) {
	p := partition.DefaultParams()
	p.M = 6
	report, err := Stress(context.Background(), StressOptions{
		Trees:     20,
		Nodes:     8,
		Seed:      7,
		Divisible: true,
		Workers:   4,
		Params:    p,
		Tree:      tree.RandomOptions{MaxRuntime: 20, MaxMemory: 4, MaxData: 5},
	})
	if err != nil {
		t.Fatalf("Stress() error = %v", err)
	}
	if !report.OK() {
		t.Errorf("Stress() failures: %+v", report.Failures)
	}
	if report.Trees != 20 || len(report.Algorithms) != 3 {
		t.Errorf("report = %+v", report)
	}
	for _, s := range report.Algorithms {
		if s.Runs != 20 {
			t.Errorf("%s ran %d times, want 20", s.Algorithm, s.Runs)
		}
		if s.Exact && s.Optimal != report.Feasible {
			t.Errorf("%s optimal on %d of %d feasible trees", s.Algorithm, s.Optimal, report.Feasible)
		}
	}
}

func TestStressTooLarge(t *testing.T) {
	_, err := Stress(context.Background(), StressOptions{Nodes: partition.MaxExhaustiveNodes + 1})
	if !errors.Is(err, errors.ErrCodeTooLarge) {
		t.Errorf("Stress() error = %v, want %s", err, errors.ErrCodeTooLarge)
	}
}

func TestStressCancelled(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), time.Nanosecond)
	defer cancel()
	time.Sleep(time.Millisecond)
	if _, err := Stress(ctx, StressOptions{Trees: 5, Nodes: 12, Params: partition.DefaultParams()}); err == nil {
		t.Error("Stress() should fail on a cancelled context")
	}
}
