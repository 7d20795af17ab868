package partition

import (
	"context"

	"github.com/hsnlab/SLAMBUC/pkg/errors"
	"github.com/hsnlab/SLAMBUC/pkg/tree"
)

// MaxExhaustiveNodes is the largest subtree Exhaustive accepts.
const MaxExhaustiveNodes = 20

// Exhaustive evaluates every barrier set of the subtree and returns the
// cheapest partition within the limits, preferring lower latency on ties.
// It serves as the reference for the DP engines on small trees.
func Exhaustive(ctx context.Context, t *tree.Tree, p Params) (Result, error) {
	in, pre, err := prepare(t, p)
	if err != nil {
		return Result{}, err
	}
	if pre != nil {
		return *pre, nil
	}
	var rest []tree.NodeID
	for _, v := range t.Subtree(in.root) {
		if v != in.root {
			rest = append(rest, v)
		}
	}
	if len(rest)+1 > MaxExhaustiveNodes {
		return Result{}, errors.New(errors.ErrCodeTooLarge,
			"exhaustive search is limited to %d nodes, tree %q has %d", MaxExhaustiveNodes, t.Name(), len(rest)+1)
	}

	res := Infeasible()
	total := uint64(1) << len(rest)
	for mask := range total {
		if mask%1024 == 0 {
			if err := ctx.Err(); err != nil {
				return Result{}, errors.Wrap(errors.ErrCodeCancelled, err, "exhaustive aborted")
			}
		}
		heads := []tree.NodeID{in.root}
		for i, v := range rest {
			if mask&(1<<i) != 0 {
				heads = append(heads, v)
			}
		}
		barriers := tree.NewNodeSet(heads...)
		blocks, err := Blocks(t, in.root, barriers)
		if err != nil {
			return Result{}, errors.Wrap(errors.ErrCodeInternal, err, "barrier set %v", barriers)
		}
		tot, err := in.model.Recalculate(in.root, blocks)
		if err != nil {
			return Result{}, errors.Wrap(errors.ErrCodeInternal, err, "barrier set %v", barriers)
		}
		res.Stats.Created++
		if tot.MaxMemory > in.params.M || tot.MaxCPU > int64(in.params.N) || tot.Latency > in.params.L {
			res.Stats.Rejected++
			continue
		}
		if res.Feasible && (tot.Cost > res.Cost || tot.Cost == res.Cost && tot.Latency >= res.Latency) {
			continue
		}
		res.Feasible = true
		res.Partition = blocks
		res.Cost = tot.Cost
		res.Latency = tot.Latency
		res.Barriers = barriers.Slice()
	}
	in.log.Debug("exhaustive search done", "tree", t.Name(), "feasible", res.Feasible, "candidates", total)
	return res, nil
}
