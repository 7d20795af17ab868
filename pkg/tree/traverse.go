package tree

import "iter"

type frame struct {
	v    NodeID
	next int
}

// PostOrder yields (caller, node) pairs of the subtree rooted at root with
// every node after all of its callees. Callees are visited left to right.
// The traversal uses an explicit stack, so depth is bounded only by memory.
func (t *Tree) PostOrder(root NodeID) iter.Seq2[NodeID, NodeID] {
	return func(yield func(NodeID, NodeID) bool) {
		if !t.Has(root) {
			return
		}
		stack := []frame{{v: root}}
		for len(stack) > 0 {
			top := &stack[len(stack)-1]
			if ch := t.children[top.v]; top.next < len(ch) {
				c := ch[top.next]
				top.next++
				stack = append(stack, frame{v: c})
				continue
			}
			v := top.v
			stack = stack[:len(stack)-1]
			if !yield(t.parent[v], v) {
				return
			}
		}
	}
}

// Step is one move of the left-right traversal.
//
// A merge step (B == Platform) enters V, whose left sibling under Parent is
// Prior. A completion step (B != Platform) reports that the subtree of V's
// callee B has been fully traversed; Prior is then B's left sibling.
// Missing siblings are reported as Platform.
type Step struct {
	Parent NodeID
	Prior  NodeID
	V      NodeID
	B      NodeID
}

// Completes reports whether the step closes the subtree of a callee.
func (s Step) Completes() bool { return s.B != Platform }

// LeftRight yields the left-right traversal of the subtree rooted at root:
// the merge step of every node precedes the steps of its subtree and each
// callee's completion step directly follows the callee's last step.
func (t *Tree) LeftRight(root NodeID) iter.Seq[Step] {
	return func(yield func(Step) bool) {
		if !t.Has(root) {
			return
		}
		if !yield(Step{Parent: t.parent[root], V: root}) {
			return
		}
		stack := []frame{{v: root}}
		for len(stack) > 0 {
			top := &stack[len(stack)-1]
			ch := t.children[top.v]
			if top.next < len(ch) {
				b := ch[top.next]
				var prior NodeID
				if top.next > 0 {
					prior = ch[top.next-1]
				}
				top.next++
				if !yield(Step{Parent: top.v, Prior: prior, V: b}) {
					return
				}
				stack = append(stack, frame{v: b})
				continue
			}
			done := top.v
			stack = stack[:len(stack)-1]
			if len(stack) == 0 {
				return
			}
			up := stack[len(stack)-1]
			var prior NodeID
			if up.next > 1 {
				prior = t.children[up.v][up.next-2]
			}
			if !yield(Step{Parent: t.parent[up.v], Prior: prior, V: up.v, B: done}) {
				return
			}
		}
	}
}

// Heights groups the subtree of root by node height: level 0 holds the
// leaves, level k the nodes whose deepest callee chain has k edges. Every
// node appears after all of its callees' levels, so levels can be processed
// in order with each level's nodes handled independently.
func (t *Tree) Heights(root NodeID) [][]NodeID {
	height := make(map[NodeID]int)
	var levels [][]NodeID
	for _, v := range t.PostOrder(root) {
		h := 0
		for _, c := range t.children[v] {
			h = max(h, height[c]+1)
		}
		height[v] = h
		for len(levels) <= h {
			levels = append(levels, nil)
		}
		levels[h] = append(levels[h], v)
	}
	return levels
}

// LastChild returns the right-most callee of v, or Platform for leaves.
func (t *Tree) LastChild(v NodeID) NodeID {
	ch := t.children[v]
	if len(ch) == 0 {
		return Platform
	}
	return ch[len(ch)-1]
}

// DivisibleRates reports whether every callee in the subtree of root is
// invoked at a multiple of its caller's rate. The edge into root itself is
// not considered.
func (t *Tree) DivisibleRates(root NodeID) bool {
	for _, v := range t.PostOrder(root) {
		if v == root {
			continue
		}
		if t.Rate(v)%t.Rate(t.parent[v]) != 0 {
			return false
		}
	}
	return true
}
