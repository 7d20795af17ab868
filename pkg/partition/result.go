package partition

import (
	"sync/atomic"

	"github.com/hsnlab/SLAMBUC/pkg/tree"
)

// Result is the outcome of a partitioning call. An infeasible instance is a
// regular result with Feasible unset and no partition; it is never an error.
type Result struct {
	Feasible  bool            `json:"feasible"`
	Partition [][]tree.NodeID `json:"partition,omitempty"`
	Cost      int64           `json:"cost"`
	Latency   int64           `json:"latency"`
	Barriers  []tree.NodeID   `json:"barriers,omitempty"`
	Warnings  []string        `json:"warnings,omitempty"`
	Stats     Stats           `json:"stats"`
	Approx    *ApproxReport   `json:"approx,omitempty"`
}

// Infeasible returns the sentinel result for instances without any
// partition satisfying the limits.
func Infeasible() Result { return Result{} }

// Stats describes the search effort of one call.
type Stats struct {
	// Created counts candidate subcases offered to frontiers.
	Created int64 `json:"created"`
	// Rejected counts candidates violating a bound.
	Rejected int64 `json:"rejected"`
	// Pruned counts candidates discarded or evicted by dominance.
	Pruned int64 `json:"pruned"`
	// PeakFrontier is the largest frontier observed.
	PeakFrontier int64 `json:"peak_frontier"`
	// PreChecked is set when a lower-bound check proved infeasibility
	// without searching.
	PreChecked bool `json:"prechecked,omitempty"`
}

// counters collects Stats from concurrent workers.
type counters struct {
	created, rejected, pruned, peak atomic.Int64
}

func (c *counters) observe(size int) {
	n := int64(size)
	for {
		cur := c.peak.Load()
		if n <= cur || c.peak.CompareAndSwap(cur, n) {
			return
		}
	}
}

func (c *counters) snapshot() Stats {
	return Stats{
		Created:      c.created.Load(),
		Rejected:     c.rejected.Load(),
		Pruned:       c.pruned.Load(),
		PeakFrontier: c.peak.Load(),
	}
}
