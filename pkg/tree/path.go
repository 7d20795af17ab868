package tree

import (
	"errors"
	"fmt"
	"slices"
)

// ErrEmptyPath is returned by [Tree.CriticalPath] when the tail cannot be
// reached from the root by following callers.
var ErrEmptyPath = errors.New("critical path tail is not reachable from root")

// CriticalPath returns the chain root…tail in root-first order. A Platform
// tail yields the trivial path holding only root.
func (t *Tree) CriticalPath(root, tail NodeID) ([]NodeID, error) {
	if !t.Has(root) || root == Platform {
		return nil, fmt.Errorf("%w: root %d", ErrUnknownNode, root)
	}
	if tail == Platform {
		return []NodeID{root}, nil
	}
	if !t.Has(tail) {
		return nil, fmt.Errorf("%w: tail %d", ErrUnknownNode, tail)
	}
	path := []NodeID{tail}
	for v := tail; v != root; {
		p, ok := t.parent[v]
		if !ok || p == Platform {
			return nil, fmt.Errorf("%w: %d -> %d", ErrEmptyPath, root, tail)
		}
		path = append(path, p)
		v = p
	}
	slices.Reverse(path)
	return path, nil
}
