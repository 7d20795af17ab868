package partition

import (
	"container/heap"
	"context"
	"slices"

	"github.com/hsnlab/SLAMBUC/pkg/errors"
	"github.com/hsnlab/SLAMBUC/pkg/tree"
)

// Greedy is a fast heuristic without optimality guarantee.
//
// It first splits the critical path into memory-feasible segments, adding
// the cut that lowers the path latency the most until the latency bound
// holds. Blocks are then grown from every barrier by absorbing the callee
// behind the heaviest rate*data edge until the memory bound stops the
// growth; the remaining callees head new blocks. The result is infeasible
// when the grown partition still violates a bound.
func Greedy(ctx context.Context, t *tree.Tree, p Params) (Result, error) {
	in, pre, err := prepare(t, p)
	if err != nil {
		return Result{}, err
	}
	if pre != nil {
		return *pre, nil
	}
	cuts, ok := in.splitPath()
	if !ok {
		in.log.Debug("no feasible critical path split", "tree", t.Name())
		return Infeasible(), nil
	}

	var partition [][]tree.NodeID
	var barriers []tree.NodeID
	heads := []tree.NodeID{in.root}
	for len(heads) > 0 {
		if err := ctx.Err(); err != nil {
			return Result{}, errors.Wrap(errors.ErrCodeCancelled, err, "greedy aborted")
		}
		h := heads[0]
		heads = heads[1:]
		blk, next := in.growBlock(h, cuts)
		barriers = append(barriers, h)
		partition = append(partition, blk.Slice())
		heads = append(heads, next...)
	}

	tot, err := in.model.Recalculate(in.root, partition)
	if err != nil {
		return Result{}, errors.Wrap(errors.ErrCodeInternal, err, "greedy produced an invalid partition")
	}
	if tot.Latency > in.params.L || tot.MaxMemory > in.params.M {
		in.log.Debug("greedy partition violates the limits", "latency", tot.Latency, "memory", tot.MaxMemory)
		return Infeasible(), nil
	}
	slices.SortFunc(partition, func(a, b []tree.NodeID) int { return int(a[0]) - int(b[0]) })
	slices.Sort(barriers)
	return Result{
		Feasible:  true,
		Partition: partition,
		Cost:      tot.Cost,
		Latency:   tot.Latency,
		Barriers:  barriers,
		Stats:     Stats{Created: int64(len(partition))},
	}, nil
}

// splitPath picks the critical path nodes that must head a block. It reports
// false when no split satisfies both limits.
func (in *instance) splitPath() (tree.NodeSet, bool) {
	path := in.model.Path.Nodes()
	var cuts []int // positions in path, excluding 0
	for {
		bestLat, bestCut := Unbounded, -1
		feasLat, feasCut := Unbounded, -1
		for c := 1; c <= len(path); c++ {
			if slices.Contains(cuts, c) {
				continue
			}
			trial := cuts
			if c < len(path) {
				trial = append(slices.Clone(cuts), c)
			}
			lat, memOK := in.segments(path, trial)
			if c < len(path) && lat < bestLat {
				bestLat, bestCut = lat, c
			}
			if memOK && lat < feasLat {
				feasLat, feasCut = lat, c
			}
		}
		if feasLat <= in.params.L {
			if feasCut < len(path) {
				cuts = append(cuts, feasCut)
			}
			break
		}
		if bestCut < 0 {
			return nil, false
		}
		cuts = append(cuts, bestCut)
	}
	heads := []tree.NodeID{path[0]}
	for _, c := range cuts {
		heads = append(heads, path[c])
	}
	return tree.NewNodeSet(heads...), true
}

// segments evaluates the path split at the given positions and reports its
// latency and whether every segment fits into memory. The position
// len(path) stands for the split without a new cut.
func (in *instance) segments(path []tree.NodeID, cuts []int) (int64, bool) {
	bounds := append([]int{0}, cuts...)
	slices.Sort(bounds)
	bounds = append(bounds, len(path))
	var lat int64
	memOK := true
	for i := 0; i+1 < len(bounds); i++ {
		seg := tree.NewNodeSet(path[bounds[i]:bounds[i+1]]...)
		head := path[bounds[i]]
		lat += in.model.BlockLatency(head, seg)
		if in.model.BlockMemory(head, seg).Max() > in.params.M {
			memOK = false
		}
	}
	return lat + in.params.Delay*int64(len(bounds)-2), memOK
}

// growBlock grows the block headed by h and returns it with the callees
// left outside.
func (in *instance) growBlock(h tree.NodeID, cuts tree.NodeSet) (tree.NodeSet, []tree.NodeID) {
	t := in.tree
	blk := tree.NewNodeSet(h)
	q := &edgeQueue{}
	push := func(v tree.NodeID) {
		for _, c := range t.Children(v) {
			if cuts.Contains(c) {
				continue
			}
			heap.Push(q, edgeItem{
				node:   c,
				must:   in.model.Path.Contains(c),
				weight: t.Rate(c) * t.Data(c),
			})
		}
	}
	push(h)
	for q.Len() > 0 {
		it := heap.Pop(q).(edgeItem)
		grown := blk.With(it.node)
		if in.model.BlockMemory(h, grown).Max() > in.params.M {
			break
		}
		blk = grown
		push(it.node)
	}
	var next []tree.NodeID
	for _, v := range blk {
		for _, c := range t.Children(v) {
			if !blk.Contains(c) {
				next = append(next, c)
			}
		}
	}
	return blk, next
}

type edgeItem struct {
	node   tree.NodeID
	must   bool
	weight int64
}

// edgeQueue pops path edges first, then the heaviest edge, then the lowest
// node ID.
type edgeQueue []edgeItem

func (q edgeQueue) Len() int { return len(q) }

func (q edgeQueue) Less(i, j int) bool {
	a, b := q[i], q[j]
	if a.must != b.must {
		return a.must
	}
	if a.weight != b.weight {
		return a.weight > b.weight
	}
	return a.node < b.node
}

func (q edgeQueue) Swap(i, j int) { q[i], q[j] = q[j], q[i] }

func (q *edgeQueue) Push(x any) { *q = append(*q, x.(edgeItem)) }

func (q *edgeQueue) Pop() any {
	old := *q
	it := old[len(old)-1]
	*q = old[:len(old)-1]
	return it
}
