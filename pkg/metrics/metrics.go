// Package metrics computes the cost, memory, vCPU and latency of blocks and
// partitions under the parallel execution model.
//
// A block is headed by its barrier node b, invoked at rate r_b. A member v
// invoked at rate r_v runs ceil(r_v / (r_b*N)) sequential instance rounds
// per block invocation and keeps min(ceil(r_v/r_b), N) replicas resident,
// where N is the vCPU cap of the block.
//
// All functions are pure and assume a validated tree (see [tree.Tree.Validate]).
// [Model.CheckBlock] reports sets that are not parent-closed.
package metrics

import (
	"errors"
	"fmt"
	"slices"

	"github.com/hsnlab/SLAMBUC/pkg/tree"
)

var (
	// ErrEmptyBlock is returned for blocks without members.
	ErrEmptyBlock = errors.New("empty block")

	// ErrNotParentClosed is returned when a block has more than one member
	// whose caller lies outside the block.
	ErrNotParentClosed = errors.New("block is not parent-closed")

	// ErrOverlap is returned when a node appears in more than one block.
	ErrOverlap = errors.New("blocks overlap")

	// ErrIncomplete is returned when a partition misses some node.
	ErrIncomplete = errors.New("partition does not cover the tree")
)

// Rounds returns the sequential instance rounds of a callee invoked at rV
// per invocation of a block invoked at rBarr with n vCPUs.
func Rounds(rBarr, rV int64, n int) int64 {
	return ceilDiv(rV, rBarr*int64(max(n, 1)))
}

// Replicas returns the number of concurrently resident instances of a
// callee invoked at rV inside a block invoked at rBarr, capped at n.
func Replicas(rBarr, rV int64, n int) int64 {
	return min(ceilDiv(rV, rBarr), int64(max(n, 1)))
}

// RoundUp rounds x up to a multiple of unit. Units below 2 leave x as is.
func RoundUp(x, unit int64) int64 {
	if unit <= 1 {
		return x
	}
	return ceilDiv(x, unit) * unit
}

func ceilDiv(a, b int64) int64 {
	if a <= 0 {
		return 0
	}
	return (a + b - 1) / b
}

// Memory is the footprint of a block: the sum of member demands needed to
// prefetch all code and the peak demand of concurrently operating replicas.
type Memory struct {
	Prefetch  int64 `json:"prefetch"`
	Operative int64 `json:"operative"`
}

// Max returns the effective footprint checked against the memory bound.
func (m Memory) Max() int64 { return max(m.Prefetch, m.Operative) }

// LessEq reports whether m is no larger than o in both components.
func (m Memory) LessEq(o Memory) bool {
	return m.Prefetch <= o.Prefetch && m.Operative <= o.Operative
}

// Merge returns the footprint after adding a member of demand mem with the
// given replica count.
func (m Memory) Merge(mem, replicas int64) Memory {
	return Memory{Prefetch: m.Prefetch + mem, Operative: max(m.Operative, replicas*mem)}
}

// Path is a critical path with constant-time membership and successor
// lookups.
type Path struct {
	order []tree.NodeID
	pos   map[tree.NodeID]int
}

// NewPath indexes a root-first chain as returned by [tree.Tree.CriticalPath].
func NewPath(ids []tree.NodeID) Path {
	pos := make(map[tree.NodeID]int, len(ids))
	for i, v := range ids {
		pos[v] = i
	}
	return Path{order: slices.Clone(ids), pos: pos}
}

// Contains reports whether v is on the path.
func (p Path) Contains(v tree.NodeID) bool {
	_, ok := p.pos[v]
	return ok
}

// Next returns the path node following v.
func (p Path) Next(v tree.NodeID) (tree.NodeID, bool) {
	i, ok := p.pos[v]
	if !ok || i+1 >= len(p.order) {
		return tree.Platform, false
	}
	return p.order[i+1], true
}

// Nodes returns the path in root-first order.
func (p Path) Nodes() []tree.NodeID { return slices.Clone(p.order) }

// Len returns the number of path nodes.
func (p Path) Len() int { return len(p.order) }

// Model binds the tree, its critical path and the execution parameters.
type Model struct {
	Tree  *tree.Tree
	Path  Path
	N     int   // vCPU cap per block
	Unit  int64 // runtime rounding granularity for cost
	Delay int64 // invocation delay between critical-path blocks
}

func (m Model) rounds(b, v tree.NodeID) int64 {
	return Rounds(m.Tree.Rate(b), m.Tree.Rate(v), m.N)
}

func (m Model) replicas(b, v tree.NodeID) int64 {
	return Replicas(m.Tree.Rate(b), m.Tree.Rate(v), m.N)
}

// SingletonCost is the cost of the block {v}.
func (m Model) SingletonCost(v tree.NodeID) int64 {
	t := m.Tree
	c := t.Data(v) + RoundUp(t.Runtime(v), m.Unit)
	for _, s := range t.Children(v) {
		c += m.rounds(v, s) * t.Data(s)
	}
	return t.Rate(v) * c
}

// MergeCost is the cost change of absorbing v into a block headed by barr
// that already contains v's caller.
func (m Model) MergeCost(barr, v tree.NodeID) int64 {
	t := m.Tree
	c := m.rounds(barr, v) * (RoundUp(t.Runtime(v), m.Unit) - t.Data(v))
	for _, s := range t.Children(v) {
		c += m.rounds(barr, s) * t.Data(s)
	}
	return t.Rate(barr) * c
}

// BlockCost is the invocation cost of the block headed by barr: the read of
// its input, the rounded runtime of every member and the write of every
// edge leaving the block, each weighted by instance rounds and scaled by the
// barrier's invocation rate.
func (m Model) BlockCost(barr tree.NodeID, nodes tree.NodeSet) int64 {
	t := m.Tree
	c := t.Data(barr)
	for _, v := range nodes {
		c += m.rounds(barr, v) * RoundUp(t.Runtime(v), m.Unit)
		for _, s := range t.Children(v) {
			if !nodes.Contains(s) {
				c += m.rounds(barr, s) * t.Data(s)
			}
		}
	}
	return t.Rate(barr) * c
}

// BlockMemory is the footprint of the block headed by barr.
func (m Model) BlockMemory(barr tree.NodeID, nodes tree.NodeSet) Memory {
	var mem Memory
	for _, v := range nodes {
		mem = mem.Merge(m.Tree.Memory(v), m.replicas(barr, v))
	}
	return mem
}

// BlockCPU is the vCPU demand of the block: its largest replica count.
func (m Model) BlockCPU(barr tree.NodeID, nodes tree.NodeSet) int64 {
	var cpu int64
	for _, v := range nodes {
		cpu = max(cpu, m.replicas(barr, v))
	}
	return cpu
}

// BlockLatency is the critical-path latency spent in the block headed by
// barr: the input read, the runtimes of the in-block path chain scaled by
// their instance rounds and the write to the next path node if it lies in
// another block. Blocks off the critical path contribute nothing.
func (m Model) BlockLatency(barr tree.NodeID, nodes tree.NodeSet) int64 {
	if !m.Path.Contains(barr) {
		return 0
	}
	t := m.Tree
	lat, mult := t.Data(barr), int64(1)
	for c := barr; ; {
		lat += mult * t.Runtime(c)
		next, ok := m.Path.Next(c)
		if !ok {
			return lat
		}
		if !nodes.Contains(next) {
			return lat + mult*m.rounds(c, next)*t.Data(next)
		}
		mult *= m.rounds(c, next)
		c = next
	}
}

// Head returns the barrier of a block: its only member whose caller lies
// outside the block.
func (m Model) Head(nodes tree.NodeSet) (tree.NodeID, error) {
	if nodes.Len() == 0 {
		return tree.Platform, ErrEmptyBlock
	}
	head := tree.Platform
	for _, v := range nodes {
		if !m.Tree.Has(v) || v == tree.Platform {
			return tree.Platform, fmt.Errorf("%w: %d", tree.ErrUnknownNode, v)
		}
		if p, _ := m.Tree.Parent(v); nodes.Contains(p) {
			continue
		}
		if head != tree.Platform {
			return tree.Platform, fmt.Errorf("%w: %v has heads %d and %d", ErrNotParentClosed, nodes, head, v)
		}
		head = v
	}
	return head, nil
}

// CheckBlock verifies that nodes form a parent-closed block headed by barr.
func (m Model) CheckBlock(barr tree.NodeID, nodes tree.NodeSet) error {
	head, err := m.Head(nodes)
	if err != nil {
		return err
	}
	if head != barr {
		return fmt.Errorf("%w: %v is headed by %d, not %d", ErrNotParentClosed, nodes, head, barr)
	}
	return nil
}

// Totals aggregates the metrics of a whole partition.
type Totals struct {
	Cost      int64 `json:"cost"`
	Latency   int64 `json:"latency"`
	MaxMemory int64 `json:"max_memory"`
	MaxCPU    int64 `json:"max_cpu"`
	Blocks    int   `json:"blocks"`
}

// Recalculate validates a partition of the subtree rooted at root and
// returns its cost and critical-path latency. Path blocks are chained with
// one invocation delay between consecutive blocks.
func (m Model) Recalculate(root tree.NodeID, partition [][]tree.NodeID) (Totals, error) {
	var tot Totals
	seen := make(map[tree.NodeID]bool)
	pathBlocks := 0
	for _, blk := range partition {
		nodes := tree.NewNodeSet(blk...)
		if nodes.Len() != len(blk) {
			return Totals{}, fmt.Errorf("%w: duplicate inside %v", ErrOverlap, blk)
		}
		barr, err := m.Head(nodes)
		if err != nil {
			return Totals{}, err
		}
		for _, v := range nodes {
			if seen[v] {
				return Totals{}, fmt.Errorf("%w: node %d", ErrOverlap, v)
			}
			seen[v] = true
		}
		tot.Cost += m.BlockCost(barr, nodes)
		tot.MaxMemory = max(tot.MaxMemory, m.BlockMemory(barr, nodes).Max())
		tot.MaxCPU = max(tot.MaxCPU, m.BlockCPU(barr, nodes))
		if m.Path.Contains(barr) {
			tot.Latency += m.BlockLatency(barr, nodes)
			pathBlocks++
		}
		tot.Blocks++
	}
	sub := m.Tree.Subtree(root)
	for _, v := range sub {
		if !seen[v] {
			return Totals{}, fmt.Errorf("%w: node %d missing", ErrIncomplete, v)
		}
	}
	if len(seen) != sub.Len() {
		return Totals{}, fmt.Errorf("%w: nodes outside the subtree of %d", ErrIncomplete, root)
	}
	if pathBlocks > 1 {
		tot.Latency += m.Delay * int64(pathBlocks-1)
	}
	return tot, nil
}

// LowerBounds reports whether the cheapest conceivable partition could
// satisfy the limits: every single function must fit into memory and the
// path runtimes plus the root's input read must fit into the latency bound.
// A false result proves infeasibility without searching.
func (m Model) LowerBounds(root tree.NodeID, memLimit, latLimit int64) (memOK, latOK bool) {
	memOK = true
	for _, v := range m.Tree.Subtree(root) {
		if m.Tree.Memory(v) > memLimit {
			memOK = false
			break
		}
	}
	lat := m.Tree.Data(root)
	for _, v := range m.Path.order {
		lat += m.Tree.Runtime(v)
	}
	return memOK, lat <= latLimit
}
