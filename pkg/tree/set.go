package tree

import (
	"slices"
	"strconv"
	"strings"
)

// NodeSet is an immutable sorted set of node IDs. Operations return new
// sets and never modify their receiver, so sets can be shared freely between
// DP states.
type NodeSet []NodeID

// NewNodeSet builds a set from arbitrary IDs; duplicates are dropped.
func NewNodeSet(ids ...NodeID) NodeSet {
	s := slices.Clone(ids)
	slices.Sort(s)
	return NodeSet(slices.Compact(s))
}

// Len returns the number of members.
func (s NodeSet) Len() int { return len(s) }

// Contains reports whether id is a member.
func (s NodeSet) Contains(id NodeID) bool {
	_, ok := slices.BinarySearch(s, id)
	return ok
}

// With returns s ∪ {id}.
func (s NodeSet) With(id NodeID) NodeSet {
	i, ok := slices.BinarySearch(s, id)
	if ok {
		return s
	}
	out := make(NodeSet, 0, len(s)+1)
	out = append(out, s[:i]...)
	out = append(out, id)
	return append(out, s[i:]...)
}

// Without returns s \ {id}.
func (s NodeSet) Without(id NodeID) NodeSet {
	i, ok := slices.BinarySearch(s, id)
	if !ok {
		return s
	}
	out := make(NodeSet, 0, len(s)-1)
	out = append(out, s[:i]...)
	return append(out, s[i+1:]...)
}

// Union returns s ∪ o.
func (s NodeSet) Union(o NodeSet) NodeSet {
	if len(o) == 0 {
		return s
	}
	if len(s) == 0 {
		return o
	}
	out := make(NodeSet, 0, len(s)+len(o))
	i, j := 0, 0
	for i < len(s) && j < len(o) {
		switch {
		case s[i] < o[j]:
			out = append(out, s[i])
			i++
		case s[i] > o[j]:
			out = append(out, o[j])
			j++
		default:
			out = append(out, s[i])
			i++
			j++
		}
	}
	out = append(out, s[i:]...)
	return append(out, o[j:]...)
}

// Slice returns a copy of the members in ascending order.
func (s NodeSet) Slice() []NodeID { return slices.Clone(s) }

// Equal reports whether both sets hold the same members.
func (s NodeSet) Equal(o NodeSet) bool { return slices.Equal(s, o) }

func (s NodeSet) String() string {
	parts := make([]string, len(s))
	for i, id := range s {
		parts[i] = strconv.Itoa(int(id))
	}
	return "{" + strings.Join(parts, ",") + "}"
}
