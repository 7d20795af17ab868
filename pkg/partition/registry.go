package partition

import (
	"context"
	"slices"

	"github.com/hsnlab/SLAMBUC/pkg/errors"
	"github.com/hsnlab/SLAMBUC/pkg/tree"
)

// Algorithm is the common signature of every partitioning algorithm.
type Algorithm func(ctx context.Context, t *tree.Tree, p Params) (Result, error)

// Algorithm names accepted by [Lookup].
const (
	AlgBottomUp   = "btree"
	AlgLeftRight  = "ltree"
	AlgGreedy     = "greedy"
	AlgExhaustive = "exhaustive"
)

// DefaultAlgorithm is exact for every vCPU cap.
const DefaultAlgorithm = AlgLeftRight

var registry = map[string]Algorithm{
	AlgBottomUp:   BottomUp,
	AlgLeftRight:  LeftRight,
	AlgGreedy:     Greedy,
	AlgExhaustive: Exhaustive,
}

// Lookup returns the algorithm registered under name.
func Lookup(name string) (Algorithm, error) {
	if err := errors.ValidateAlgorithmName(name); err != nil {
		return nil, err
	}
	alg, ok := registry[name]
	if !ok {
		return nil, errors.New(errors.ErrCodeUnknownAlgorithm, "unknown algorithm %q (have %v)", name, Algorithms())
	}
	return alg, nil
}

// Algorithms lists the registered names in sorted order.
func Algorithms() []string {
	names := make([]string, 0, len(registry))
	for name := range registry {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

// Exact reports whether the named algorithm guarantees an optimal result
// on every input. The bottom-up engine does not; see [ExactFor].
func Exact(name string) bool {
	switch name {
	case AlgLeftRight, AlgExhaustive:
		return true
	}
	return false
}

// ExactFor reports whether the named algorithm guarantees an optimal result
// for the subtree and parameters of one request. The bottom-up engine is
// exact for N = 1 when every rate in the subtree divides its callees'.
func ExactFor(name string, t *tree.Tree, p Params) bool {
	if name != AlgBottomUp {
		return Exact(name)
	}
	root := p.Root
	if root == tree.Platform {
		root = t.Root()
	}
	return p.N <= 1 && t.Has(root) && t.DivisibleRates(root)
}
