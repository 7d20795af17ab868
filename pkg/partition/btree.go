package partition

import (
	"context"

	"github.com/hsnlab/SLAMBUC/pkg/metrics"
	"github.com/hsnlab/SLAMBUC/pkg/tree"
)

// SuboptimalWarning is attached to bottom-up results computed with more than
// one vCPU per block.
const SuboptimalWarning = "bottom-up merging is not monotone for N > 1; the result may be suboptimal"

// IndivisibleWarning is attached to bottom-up results for subtrees where some
// callee's rate is not a multiple of its caller's.
const IndivisibleWarning = "bottom-up merging is not monotone for indivisible invocation rates; the result may be suboptimal"

// BottomUp partitions the tree by merging child frontiers into their
// caller's frontier in post-order.
//
// Every subcase of a node keeps its open top block so that a MERGE can
// recompute the block's cost and memory relative to the caller's rate. The
// result is optimal when each node's rate is a multiple of its caller's and
// N is 1. Otherwise the merge cost loses monotonicity and the result carries
// [SuboptimalWarning] or [IndivisibleWarning].
func BottomUp(ctx context.Context, t *tree.Tree, p Params) (Result, error) {
	return run(ctx, t, p, trimmer{}, "btree", bottomUp)
}

func bottomUp(ctx context.Context, in *instance) (*SubCase, error) {
	if in.params.N > 1 {
		in.warn(SuboptimalWarning, "N", in.params.N)
	}
	if !in.tree.DivisibleRates(in.root) {
		in.warn(IndivisibleWarning, "tree", in.tree.Name(), "root", in.root)
	}
	frontiers := make([]*Frontier, len(in.index))

	err := in.schedule(ctx, func(v tree.NodeID) error {
		f := in.newFrontier()
		f.Insert(in.btreeSingleton(v))
		for _, b := range in.tree.Children(v) {
			fb := frontiers[in.slot(b)]
			frontiers[in.slot(b)] = nil
			closedB := summarize(fb.All(), in.trim)

			next := in.newFrontier()
			for _, sv := range f.All() {
				for _, c := range closedB {
					next.Insert(in.btreeCut(v, b, sv, c))
				}
				for _, sb := range fb.All() {
					next.Insert(in.btreeMerge(v, b, sv, sb))
				}
			}
			f = next
		}
		frontiers[in.slot(v)] = f
		return nil
	})
	if err != nil {
		return nil, err
	}
	return frontiers[in.slot(in.root)].Best(), nil
}

func (in *instance) btreeSingleton(v tree.NodeID) *SubCase {
	top := tree.NewNodeSet(v)
	cost := in.model.SingletonCost(v)
	lat := in.singletonLatency(v)
	return &SubCase{
		Cost:       cost,
		TopCost:    cost,
		Latency:    lat,
		TopLatency: lat,
		Memory:     in.model.BlockMemory(v, top),
		CPU:        1,
		Mul:        1,
		Top:        top,
		Barriers:   top,
	}
}

// btreeCut closes b's subtree as its own blocks below v's open block.
func (in *instance) btreeCut(v, b tree.NodeID, sv *SubCase, c closed) *SubCase {
	s := *sv
	s.Cost = sv.Cost + c.Cost
	s.Barriers = sv.Barriers.Union(c.Barriers)
	if in.model.Path.Contains(b) {
		write := metrics.Rounds(in.tree.Rate(v), in.tree.Rate(b), in.params.N) * in.tree.Data(b)
		s.TopLatency = sv.TopLatency + write
		s.Latency = sv.Latency + in.cutLatency(v, b, 1, c.Latency)
	}
	return &s
}

// btreeMerge absorbs b's open block into v's open block. The joint block is
// re-evaluated relative to v's rate.
func (in *instance) btreeMerge(v, b tree.NodeID, sv, sb *SubCase) *SubCase {
	top := sv.Top.Union(sb.Top)
	topCost := in.model.BlockCost(v, top)
	s := &SubCase{
		Cost:       sv.Cost - sv.TopCost + sb.Cost - sb.TopCost + topCost,
		TopCost:    topCost,
		Latency:    sv.Latency,
		TopLatency: sv.TopLatency,
		Memory:     in.model.BlockMemory(v, top),
		CPU:        in.model.BlockCPU(v, top),
		Mul:        1,
		Top:        top,
		Barriers:   sv.Barriers.Union(sb.Barriers).Without(b),
	}
	if in.model.Path.Contains(b) {
		k := metrics.Rounds(in.tree.Rate(v), in.tree.Rate(b), in.params.N)
		s.TopLatency = sv.TopLatency + k*sb.TopLatency
		s.Latency = sv.Latency + (sb.Latency - sb.TopLatency) + k*sb.TopLatency
	}
	return s
}
