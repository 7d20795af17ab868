package partition

import (
	"context"

	"github.com/hsnlab/SLAMBUC/pkg/metrics"
	"github.com/hsnlab/SLAMBUC/pkg/tree"
)

// LeftRight partitions the tree with one left-right pass per subtree root.
//
// The pass for n walks T_n in left-right order and keeps a frontier per
// cell (v, b): the block headed by n contains v, and v's callees up to b
// have been decided. Entering v merges it into the block of its caller u
// from cell (u, prior sibling of v). Completing a callee b of v either
// inherits the merged cell (b, last callee of b) or cuts b off from cell
// (v, prior sibling of b), reusing the closed summary of T_b computed by
// b's own pass. The summary of T_n is the Pareto list of the final cell.
//
// Costs, memory and latency grow additively or monotonically per step, so
// the result is optimal for every N.
func LeftRight(ctx context.Context, t *tree.Tree, p Params) (Result, error) {
	return run(ctx, t, p, trimmer{}, "ltree", leftRight)
}

type cell struct {
	v, b tree.NodeID
}

func leftRight(ctx context.Context, in *instance) (*SubCase, error) {
	summaries := make([]summary, len(in.index))
	var final *Frontier

	err := in.schedule(ctx, func(n tree.NodeID) error {
		f, err := in.ltreePass(ctx, n, summaries)
		if err != nil {
			return err
		}
		if n == in.root {
			final = f
			return nil
		}
		summaries[in.slot(n)] = summarize(f.All(), in.trim)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return final.Best(), nil
}

// ltreePass runs the left-right pass over T_n and returns the frontier of
// partitionings whose top block is headed by n.
func (in *instance) ltreePass(ctx context.Context, n tree.NodeID, summaries []summary) (*Frontier, error) {
	t := in.tree
	dp := make(map[cell]*Frontier)

	for s := range t.LeftRight(n) {
		switch {
		case s.V == n && !s.Completes():
			f := in.newFrontier()
			f.Insert(in.ltreeSingleton(n))
			dp[cell{n, tree.Platform}] = f

		case !s.Completes():
			src := dp[cell{s.Parent, s.Prior}]
			f := in.newFrontier()
			for _, su := range src.All() {
				f.Insert(in.ltreeMerge(n, s.Parent, s.V, su))
			}
			dp[cell{s.V, tree.Platform}] = f

		default:
			if err := ctx.Err(); err != nil {
				return nil, err
			}
			merged := cell{s.B, t.LastChild(s.B)}
			prior := cell{s.V, s.Prior}
			f := dp[merged]
			for _, sv := range dp[prior].All() {
				for _, c := range summaries[in.slot(s.B)] {
					f.Insert(in.ltreeCut(s.V, s.B, sv, c))
				}
			}
			delete(dp, merged)
			delete(dp, prior)
			dp[cell{s.V, s.B}] = f
		}
	}
	return dp[cell{n, t.LastChild(n)}], nil
}

func (in *instance) ltreeSingleton(n tree.NodeID) *SubCase {
	m := in.tree.Memory(n)
	return &SubCase{
		Cost:     in.model.SingletonCost(n),
		Latency:  in.singletonLatency(n),
		Memory:   metrics.Memory{Prefetch: m, Operative: m},
		CPU:      1,
		Mul:      1,
		Barriers: tree.NewNodeSet(n),
	}
}

// ltreeMerge adds v to the block headed by n, whose member u calls v.
func (in *instance) ltreeMerge(n, u, v tree.NodeID, su *SubCase) *SubCase {
	t := in.tree
	reps := metrics.Replicas(t.Rate(n), t.Rate(v), in.params.N)
	s := &SubCase{
		Cost:     su.Cost + in.model.MergeCost(n, v),
		Latency:  su.Latency,
		Memory:   su.Memory.Merge(t.Memory(v), reps),
		CPU:      max(su.CPU, reps),
		Mul:      su.Mul,
		Barriers: su.Barriers,
	}
	if in.model.Path.Contains(v) {
		s.Mul = su.Mul * metrics.Rounds(t.Rate(u), t.Rate(v), in.params.N)
		s.Latency = su.Latency + s.Mul*t.Runtime(v)
	}
	return s
}

// ltreeCut closes T_b below v with the closed partitioning c.
func (in *instance) ltreeCut(v, b tree.NodeID, sv *SubCase, c closed) *SubCase {
	s := *sv
	s.Cost = sv.Cost + c.Cost
	s.Barriers = sv.Barriers.Union(c.Barriers)
	if in.model.Path.Contains(b) {
		s.Latency = sv.Latency + in.cutLatency(v, b, sv.Mul, c.Latency)
	}
	return &s
}
