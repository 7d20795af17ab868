package tree

import "math/rand/v2"

// RandomOptions bounds the attributes drawn by [Random]. Zero fields take
// the defaults noted on each field.
type RandomOptions struct {
	MaxRuntime int64 // default 50
	MaxMemory  int64 // default 5
	MaxData    int64 // default 10, negative disables data overhead
	MaxRate    int64 // default 3
	// DivisibleRates draws every rate as a multiple of its caller's rate,
	// keeping instance multipliers exact for N=1.
	DivisibleRates bool
}

func (o *RandomOptions) setDefaults() {
	if o.MaxRuntime <= 0 {
		o.MaxRuntime = 50
	}
	if o.MaxMemory <= 0 {
		o.MaxMemory = 5
	}
	if o.MaxData < 0 {
		o.MaxData = 0
	} else if o.MaxData == 0 {
		o.MaxData = 10
	}
	if o.MaxRate <= 0 {
		o.MaxRate = 3
	}
}

// Random builds a random call tree with n functions numbered 1..n, node 1
// being the root. Each node i > 1 is attached to a uniformly chosen caller
// among 1..i-1.
func Random(rng *rand.Rand, name string, n int, opts RandomOptions) *Tree {
	opts.setDefaults()
	t := New(name)
	for i := 1; i <= n; i++ {
		_ = t.AddNode(Node{
			ID:      NodeID(i),
			Runtime: 1 + rng.Int64N(opts.MaxRuntime),
			Memory:  1 + rng.Int64N(opts.MaxMemory),
		})
	}
	if n == 0 {
		return t
	}
	_ = t.AddEdge(Edge{From: Platform, To: 1, Rate: 1, Data: rng.Int64N(opts.MaxData + 1)})
	for i := 2; i <= n; i++ {
		p := NodeID(1 + rng.IntN(i-1))
		rate := 1 + rng.Int64N(opts.MaxRate)
		if opts.DivisibleRates {
			rate = t.Rate(p) * rate
		}
		_ = t.AddEdge(Edge{
			From: p,
			To:   NodeID(i),
			Rate: rate,
			Data: rng.Int64N(opts.MaxData + 1),
		})
	}
	return t
}

// DeepestLeaf returns the leaf with the longest caller chain, ties broken
// by the smaller ID. Handy as a default critical-path tail.
func (t *Tree) DeepestLeaf(root NodeID) NodeID {
	depth := map[NodeID]int{root: 0}
	best, bestDepth := root, 0
	for s := range t.LeftRight(root) {
		if s.Completes() || s.V == root {
			continue
		}
		d := depth[s.Parent] + 1
		depth[s.V] = d
		if t.IsLeaf(s.V) && (d > bestDepth || (d == bestDepth && s.V < best)) {
			best, bestDepth = s.V, d
		}
	}
	return best
}
