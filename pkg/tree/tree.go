package tree

import (
	"errors"
	"fmt"
	"maps"
	"slices"
)

var (
	// ErrInvalidNode is returned by [Tree.AddNode] when the node ID is not
	// positive or its runtime or memory demand is not positive.
	ErrInvalidNode = errors.New("invalid node")

	// ErrDuplicateNode is returned by [Tree.AddNode] when a node with the same
	// ID already exists in the tree.
	ErrDuplicateNode = errors.New("duplicate node ID")

	// ErrUnknownNode is returned when an edge endpoint or a requested node
	// does not exist in the tree.
	ErrUnknownNode = errors.New("unknown node")

	// ErrMultipleParents is returned by [Tree.AddEdge] when the target node
	// already has a caller. Call trees are out-trees; re-convergent paths are
	// not representable.
	ErrMultipleParents = errors.New("node already has a parent")

	// ErrInvalidRate is returned by [Tree.AddEdge] when the invocation rate
	// is not positive.
	ErrInvalidRate = errors.New("invocation rate must be positive")

	// ErrInvalidData is returned by [Tree.AddEdge] when the data overhead is
	// negative.
	ErrInvalidData = errors.New("data overhead must not be negative")

	// ErrDetachedRoot is returned by [Tree.Validate] when the requested root
	// is not invoked by the platform.
	ErrDetachedRoot = errors.New("root is not attached to the platform")

	// ErrUnreachableNode is returned by [Tree.Validate] when some node cannot
	// be reached from the root, including nodes caught in a parent cycle.
	ErrUnreachableNode = errors.New("node is not reachable from root")
)

// NodeID identifies a function in the call tree. IDs are positive; the zero
// value is reserved for [Platform].
type NodeID int

// Platform is the synthetic caller of the tree root. It carries no runtime
// or memory and is never part of a block. As a critical-path tail it means
// "no tail": the critical path degenerates to the root alone.
const Platform NodeID = 0

// Node is a serverless function with its per-invocation runtime and its
// memory demand. Immutable once added to a [Tree].
type Node struct {
	ID      NodeID `json:"id"`
	Runtime int64  `json:"runtime"`
	Memory  int64  `json:"memory"`
}

// Edge is a caller-callee relation. Rate is the invocation rate of the
// callee and Data is the transfer overhead paid only when the edge crosses a
// block boundary.
type Edge struct {
	From NodeID `json:"from"`
	To   NodeID `json:"to"`
	Rate int64  `json:"rate"`
	Data int64  `json:"data"`
}

// Tree is a rooted out-tree of functions hanging off the [Platform].
// Children keep their insertion order, which is the left-to-right order used
// by the left-right traversal.
//
// The zero value is not usable - use New to create a valid Tree instance.
// Tree is read-only after construction and safe for concurrent readers.
type Tree struct {
	name     string
	nodes    map[NodeID]*Node
	parent   map[NodeID]NodeID
	inEdge   map[NodeID]Edge
	children map[NodeID][]NodeID
}

// New creates an empty tree holding only the platform node.
func New(name string) *Tree {
	return &Tree{
		name:     name,
		nodes:    map[NodeID]*Node{Platform: {ID: Platform}},
		parent:   make(map[NodeID]NodeID),
		inEdge:   make(map[NodeID]Edge),
		children: make(map[NodeID][]NodeID),
	}
}

// Name returns the tree's display name.
func (t *Tree) Name() string { return t.name }

// AddNode adds a function to the tree.
// Returns ErrInvalidNode for a non-positive ID, runtime or memory and
// ErrDuplicateNode if the ID is taken.
func (t *Tree) AddNode(n Node) error {
	if n.ID <= Platform || n.Runtime <= 0 || n.Memory <= 0 {
		return fmt.Errorf("%w: %+v", ErrInvalidNode, n)
	}
	if _, exists := t.nodes[n.ID]; exists {
		return fmt.Errorf("%w: %d", ErrDuplicateNode, n.ID)
	}
	node := n
	t.nodes[n.ID] = &node
	return nil
}

// AddEdge connects a caller to a callee. The callee is appended as the
// right-most child of the caller.
func (t *Tree) AddEdge(e Edge) error {
	if _, ok := t.nodes[e.From]; !ok {
		return fmt.Errorf("%w: source %d", ErrUnknownNode, e.From)
	}
	if _, ok := t.nodes[e.To]; !ok || e.To == Platform {
		return fmt.Errorf("%w: target %d", ErrUnknownNode, e.To)
	}
	if _, ok := t.parent[e.To]; ok {
		return fmt.Errorf("%w: %d", ErrMultipleParents, e.To)
	}
	if e.Rate <= 0 {
		return fmt.Errorf("%w: %d->%d", ErrInvalidRate, e.From, e.To)
	}
	if e.Data < 0 {
		return fmt.Errorf("%w: %d->%d", ErrInvalidData, e.From, e.To)
	}
	t.parent[e.To] = e.From
	t.inEdge[e.To] = e
	t.children[e.From] = append(t.children[e.From], e.To)
	return nil
}

// Node returns the node with the given ID.
func (t *Tree) Node(id NodeID) (Node, bool) {
	n, ok := t.nodes[id]
	if !ok {
		return Node{}, false
	}
	return *n, true
}

// Has reports whether the node exists. The platform always exists.
func (t *Tree) Has(id NodeID) bool {
	_, ok := t.nodes[id]
	return ok
}

// Runtime returns the node's runtime, zero for unknown nodes.
func (t *Tree) Runtime(id NodeID) int64 {
	if n, ok := t.nodes[id]; ok {
		return n.Runtime
	}
	return 0
}

// Memory returns the node's memory demand, zero for unknown nodes.
func (t *Tree) Memory(id NodeID) int64 {
	if n, ok := t.nodes[id]; ok {
		return n.Memory
	}
	return 0
}

// Parent returns the caller of id. The second result is false for the
// platform and for detached nodes.
func (t *Tree) Parent(id NodeID) (NodeID, bool) {
	p, ok := t.parent[id]
	return p, ok
}

// InEdge returns the edge invoking id.
func (t *Tree) InEdge(id NodeID) (Edge, bool) {
	e, ok := t.inEdge[id]
	return e, ok
}

// Rate returns the invocation rate of id, zero if it has no caller.
func (t *Tree) Rate(id NodeID) int64 { return t.inEdge[id].Rate }

// Data returns the transfer overhead on the edge into id.
func (t *Tree) Data(id NodeID) int64 { return t.inEdge[id].Data }

// Children returns the callees of id in left-to-right order.
// The returned slice must not be modified.
func (t *Tree) Children(id NodeID) []NodeID { return t.children[id] }

// IsLeaf reports whether id has no callees.
func (t *Tree) IsLeaf(id NodeID) bool { return len(t.children[id]) == 0 }

// Nodes returns all function IDs in ascending order, platform excluded.
func (t *Tree) Nodes() []NodeID {
	ids := slices.Sorted(maps.Keys(t.nodes))
	return ids[1:]
}

// Edges returns all edges ordered by callee ID.
func (t *Tree) Edges() []Edge {
	out := make([]Edge, 0, len(t.inEdge))
	for _, id := range slices.Sorted(maps.Keys(t.inEdge)) {
		out = append(out, t.inEdge[id])
	}
	return out
}

// Len returns the number of functions, platform excluded.
func (t *Tree) Len() int { return len(t.nodes) - 1 }

// Root returns the first callee of the platform, or Platform if the tree
// is empty.
func (t *Tree) Root() NodeID {
	if ch := t.children[Platform]; len(ch) > 0 {
		return ch[0]
	}
	return Platform
}

// Validate checks that root hangs off the platform and that every function
// of the tree is reachable from it. Cycles among detached nodes surface as
// ErrUnreachableNode.
func (t *Tree) Validate(root NodeID) error {
	if !t.Has(root) || root == Platform {
		return fmt.Errorf("%w: root %d", ErrUnknownNode, root)
	}
	if p, ok := t.parent[root]; !ok || p != Platform {
		return fmt.Errorf("%w: %d", ErrDetachedRoot, root)
	}
	seen := make(map[NodeID]bool, t.Len())
	for _, v := range t.PostOrder(root) {
		seen[v] = true
	}
	for _, id := range t.Nodes() {
		if !seen[id] {
			return fmt.Errorf("%w: %d", ErrUnreachableNode, id)
		}
	}
	return nil
}

// Subtree returns the node set of the subtree rooted at root.
func (t *Tree) Subtree(root NodeID) NodeSet {
	var ids []NodeID
	for _, v := range t.PostOrder(root) {
		ids = append(ids, v)
	}
	return NewNodeSet(ids...)
}
