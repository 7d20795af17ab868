package partition

import (
	"cmp"
	"slices"
	"sort"

	"github.com/hsnlab/SLAMBUC/pkg/metrics"
	"github.com/hsnlab/SLAMBUC/pkg/tree"
)

// SubCase is one candidate partitioning of a subtree whose top block is
// still open for merging.
type SubCase struct {
	// Cost of the whole subtree, open top block included.
	Cost int64
	// TopCost is the share of Cost spent in the open top block.
	TopCost int64
	// Latency accumulated on the critical path so far.
	Latency int64
	// TopLatency is the share of Latency spent in the open top block.
	TopLatency int64
	// Memory footprint of the open top block.
	Memory metrics.Memory
	// CPU is the vCPU demand of the open top block.
	CPU int64
	// Mul is the instance multiplier of the deepest critical-path node of
	// the open top block.
	Mul int64
	// Top lists the open top block's members when the engine needs them.
	Top tree.NodeSet
	// Barriers holds the heads of all blocks, the open one included.
	Barriers tree.NodeSet
}

// dominates reports whether s is no worse than o in every tracked
// dimension. Equal subcases dominate each other.
func (s *SubCase) dominates(o *SubCase) bool {
	return s.Latency <= o.Latency &&
		s.TopLatency <= o.TopLatency &&
		s.Memory.LessEq(o.Memory) &&
		s.Cost <= o.Cost
}

// Bounds are the global limits every subcase must respect.
type Bounds struct {
	M int64 // memory per block
	L int64 // critical-path latency
	N int64 // vCPU per block
}

func (b Bounds) admits(s *SubCase) bool {
	return s.Memory.Max() <= b.M && s.CPU <= b.N && s.Latency <= b.L
}

// Frontier keeps the non-dominated subcases of one DP cell ordered by
// latency.
//
// Insertion costs O(k) for k entries: only entries with lower or equal
// latency can dominate a candidate, and only entries with higher or equal
// latency can be dominated by it. The unidirectional mode skips the
// eviction scan; the frontier may then hold dominated entries, which never
// changes the optimum but may grow the state space.
type Frontier struct {
	bounds        Bounds
	bidirectional bool
	entries       []*SubCase
	stats         *counters
}

// NewFrontier creates an empty frontier. A nil stats sink is allowed.
func NewFrontier(b Bounds, bidirectional bool, stats *counters) *Frontier {
	if stats == nil {
		stats = &counters{}
	}
	return &Frontier{bounds: b, bidirectional: bidirectional, stats: stats}
}

// Insert offers a candidate and reports whether it was kept.
func (f *Frontier) Insert(c *SubCase) bool {
	f.stats.created.Add(1)
	if !f.bounds.admits(c) {
		f.stats.rejected.Add(1)
		return false
	}
	// Entries with latency above the candidate's cannot dominate it.
	upper := sort.Search(len(f.entries), func(i int) bool { return f.entries[i].Latency > c.Latency })
	for _, e := range f.entries[:upper] {
		if e.dominates(c) {
			f.stats.pruned.Add(1)
			return false
		}
	}
	lower := sort.Search(len(f.entries), func(i int) bool { return f.entries[i].Latency >= c.Latency })
	if f.bidirectional {
		kept := f.entries[:lower]
		for _, e := range f.entries[lower:] {
			if c.dominates(e) {
				f.stats.pruned.Add(1)
				continue
			}
			kept = append(kept, e)
		}
		clear(f.entries[len(kept):])
		f.entries = kept
	}
	pos := sort.Search(len(f.entries), func(i int) bool { return f.entries[i].Latency > c.Latency })
	f.entries = slices.Insert(f.entries, pos, c)
	f.stats.observe(len(f.entries))
	return true
}

// Len returns the number of entries.
func (f *Frontier) Len() int { return len(f.entries) }

// All returns the entries in ascending latency order. The slice must not be
// modified.
func (f *Frontier) All() []*SubCase { return f.entries }

// Best returns the cheapest entry, preferring lower latency on ties, or nil
// for an empty frontier.
func (f *Frontier) Best() *SubCase {
	var best *SubCase
	for _, e := range f.entries {
		if best == nil || e.Cost < best.Cost {
			best = e
		}
	}
	return best
}

// closed is a finished partitioning of a subtree offered to its caller's
// CUT transitions.
type closed struct {
	Latency  int64
	Cost     int64
	Barriers tree.NodeSet
}

// summary is a Pareto list of closed subtree partitionings: ascending
// latency, strictly descending cost.
type summary []closed

// trimmer coarsens summaries for the approximation scheme. The zero value
// keeps summaries exact.
type trimmer struct {
	// ratio lets an entry stand in for another of cost up to ratio times
	// its own; 1 disables cost trimming.
	ratio float64
	// grid lets an entry stand in for another whose latency is lower by up
	// to grid.
	grid int64
}

func (tr trimmer) active() bool { return tr.ratio > 1 || tr.grid > 0 }

// summarize collapses subcases into their (latency, cost) Pareto list.
func summarize(entries []*SubCase, tr trimmer) summary {
	sorted := slices.Clone(entries)
	slices.SortStableFunc(sorted, func(a, b *SubCase) int {
		if c := cmp.Compare(a.Latency, b.Latency); c != 0 {
			return c
		}
		return cmp.Compare(a.Cost, b.Cost)
	})
	var out summary
	for _, e := range sorted {
		if n := len(out); n > 0 && out[n-1].Cost <= e.Cost {
			continue
		}
		out = append(out, closed{Latency: e.Latency, Cost: e.Cost, Barriers: e.Barriers})
	}
	if tr.active() {
		out = out.trim(tr)
	}
	return out
}

// trim drops entries that a kept entry represents within the tolerances:
// first any entry whose latency is at most the grid below a cheaper kept
// entry, then any entry whose cost is at most ratio times above the cost of
// a kept entry of lower latency. Every dropped entry is represented by a
// kept one with latency + grid and cost * ratio at most, so the errors of
// one call do not compound.
func (s summary) trim(tr trimmer) summary {
	var coarse summary
	for i := len(s) - 1; i >= 0; i-- {
		e := s[i]
		if n := len(coarse); tr.grid > 0 && n > 0 && coarse[n-1].Latency-e.Latency <= tr.grid {
			continue
		}
		coarse = append(coarse, e)
	}
	slices.Reverse(coarse)
	if tr.ratio <= 1 {
		return coarse
	}
	var out summary
	for _, e := range coarse {
		if n := len(out); n > 0 && float64(out[n-1].Cost) <= tr.ratio*float64(e.Cost) {
			continue
		}
		out = append(out, e)
	}
	return out
}
