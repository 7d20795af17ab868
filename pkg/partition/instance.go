package partition

import (
	"context"
	stderrors "errors"
	"time"

	"github.com/charmbracelet/log"

	"github.com/hsnlab/SLAMBUC/pkg/errors"
	"github.com/hsnlab/SLAMBUC/pkg/metrics"
	"github.com/hsnlab/SLAMBUC/pkg/tree"
)

// instance is one validated partitioning problem. The tree is shared
// read-only by every worker; all mutable DP state lives in per-node slots
// owned by the worker processing that node.
type instance struct {
	tree   *tree.Tree
	root   tree.NodeID
	model  metrics.Model
	params Params
	index  map[tree.NodeID]int
	trim   trimmer
	stats  *counters
	log    *log.Logger

	warnings []string
}

// prepare validates the request and builds the instance. A non-nil Result
// means the lower-bound check already proved the instance infeasible.
func prepare(t *tree.Tree, p Params) (*instance, *Result, error) {
	p.SetDefaults()
	if err := p.Validate(); err != nil {
		return nil, nil, err
	}
	if t == nil {
		return nil, nil, errors.New(errors.ErrCodeInvalidTree, "tree is nil")
	}
	if err := t.Validate(t.Root()); err != nil {
		return nil, nil, errors.Wrap(errors.ErrCodeInvalidTree, err, "invalid call tree %q", t.Name())
	}
	root := p.Root
	if root == tree.Platform {
		root = t.Root()
	}
	if !t.Has(root) {
		return nil, nil, errors.New(errors.ErrCodeInvalidParams, "root %d is not a function of %q", root, t.Name())
	}
	path, err := t.CriticalPath(root, p.CPEnd)
	if err != nil {
		return nil, nil, errors.Wrap(errors.ErrCodeUnreachablePath, err, "critical path %d -> %d", root, p.CPEnd)
	}
	p.Root = root

	in := &instance{
		tree: t,
		root: root,
		model: metrics.Model{
			Tree:  t,
			Path:  metrics.NewPath(path),
			N:     p.N,
			Unit:  p.Unit,
			Delay: p.Delay,
		},
		params: p,
		index:  make(map[tree.NodeID]int, t.Len()),
		stats:  &counters{},
		log:    p.Logger,
	}
	for _, v := range t.PostOrder(root) {
		in.index[v] = len(in.index)
	}

	if memOK, latOK := in.model.LowerBounds(root, p.M, p.L); !memOK || !latOK {
		in.log.Debug("lower bound check failed", "tree", t.Name(), "memory", memOK, "latency", latOK)
		res := Infeasible()
		res.Stats.PreChecked = true
		return in, &res, nil
	}
	return in, nil, nil
}

func (in *instance) newFrontier() *Frontier {
	return NewFrontier(in.params.bounds(), in.params.Bidirectional, in.stats)
}

// slot returns the dense per-node index used to address DP slots.
func (in *instance) slot(v tree.NodeID) int { return in.index[v] }

// singletonLatency is the latency of the block {v} without its input read
// and without the write to its critical callee; the tree root pays for its
// own input since no caller block does.
func (in *instance) singletonLatency(v tree.NodeID) int64 {
	if !in.model.Path.Contains(v) {
		return 0
	}
	lat := in.tree.Runtime(v)
	if v == in.root {
		lat += in.tree.Data(v)
	}
	return lat
}

// cutLatency is the latency added by cutting the critical callee b off the
// block of v, where mul is the instance multiplier of v in its block and
// sub is the latency of b's subtree.
func (in *instance) cutLatency(v, b tree.NodeID, mul, sub int64) int64 {
	t := in.tree
	write := mul * metrics.Rounds(t.Rate(v), t.Rate(b), in.params.N) * t.Data(b)
	return write + in.params.Delay + t.Data(b) + sub
}

// engine searches the root frontier and returns its best entry.
type engine func(ctx context.Context, in *instance) (*SubCase, error)

// run validates the request, runs the engine and reconstructs the winning
// partition.
func run(ctx context.Context, t *tree.Tree, p Params, tr trimmer, name string, eng engine) (Result, error) {
	in, pre, err := prepare(t, p)
	if err != nil {
		return Result{}, err
	}
	if pre != nil {
		return *pre, nil
	}
	in.trim = tr

	start := time.Now()
	best, err := eng(ctx, in)
	if err != nil {
		if stderrors.Is(err, context.Canceled) || stderrors.Is(err, context.DeadlineExceeded) {
			return Result{}, errors.Wrap(errors.ErrCodeCancelled, err, "%s aborted", name)
		}
		return Result{}, err
	}
	res, err := in.finish(best)
	if err != nil {
		return Result{}, err
	}
	in.log.Debug("partitioning done",
		"algorithm", name,
		"tree", t.Name(),
		"feasible", res.Feasible,
		"cost", res.Cost,
		"latency", res.Latency,
		"subcases", res.Stats.Created,
		"duration", time.Since(start))
	return res, nil
}

// finish turns the winning subcase into a Result.
func (in *instance) finish(best *SubCase) (Result, error) {
	res := Infeasible()
	if best != nil {
		blocks, err := Blocks(in.tree, in.root, best.Barriers)
		if err != nil {
			return Result{}, errors.Wrap(errors.ErrCodeInternal, err, "inconsistent barrier set %v", best.Barriers)
		}
		res = Result{
			Feasible:  true,
			Partition: blocks,
			Cost:      best.Cost,
			Latency:   best.Latency,
			Barriers:  best.Barriers.Slice(),
		}
	}
	res.Stats = in.stats.snapshot()
	res.Warnings = in.warnings
	return res, nil
}

// warn records a warning on the result and logs it.
func (in *instance) warn(msg string, keyvals ...any) {
	in.warnings = append(in.warnings, msg)
	in.log.Warn(msg, keyvals...)
}
