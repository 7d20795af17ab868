package partition

import (
	"slices"

	"github.com/hsnlab/SLAMBUC/pkg/errors"
	"github.com/hsnlab/SLAMBUC/pkg/tree"
)

// Blocks rebuilds the partition of the subtree rooted at root from its
// barrier nodes. Each barrier heads the block of its non-barrier
// descendants reachable without crossing another barrier.
//
// The result lists every block sorted, and blocks ordered by their smallest
// member. The same barrier set always yields the same partition.
func Blocks(t *tree.Tree, root tree.NodeID, barriers tree.NodeSet) ([][]tree.NodeID, error) {
	if !barriers.Contains(root) {
		return nil, errors.New(errors.ErrCodeInvalidPartition, "root %d is not a barrier", root)
	}
	var (
		out     [][]tree.NodeID
		seen    = make(map[tree.NodeID]bool)
		pending = []tree.NodeID{root}
		heads   int
	)
	for len(pending) > 0 {
		b := pending[len(pending)-1]
		pending = pending[:len(pending)-1]
		heads++

		var blk []tree.NodeID
		walk := []tree.NodeID{b}
		for len(walk) > 0 {
			v := walk[len(walk)-1]
			walk = walk[:len(walk)-1]
			if seen[v] {
				return nil, errors.New(errors.ErrCodeInvalidPartition, "node %d assigned twice", v)
			}
			seen[v] = true
			blk = append(blk, v)
			for _, c := range t.Children(v) {
				if barriers.Contains(c) {
					pending = append(pending, c)
				} else {
					walk = append(walk, c)
				}
			}
		}
		slices.Sort(blk)
		out = append(out, blk)
	}
	if heads != barriers.Len() {
		return nil, errors.New(errors.ErrCodeInvalidPartition,
			"%d of %d barriers lie outside the subtree of %d", barriers.Len()-heads, barriers.Len(), root)
	}
	if want := t.Subtree(root).Len(); len(seen) != want {
		return nil, errors.New(errors.ErrCodeInvalidPartition, "partition covers %d of %d nodes", len(seen), want)
	}
	slices.SortFunc(out, func(a, b []tree.NodeID) int { return int(a[0]) - int(b[0]) })
	return out, nil
}
