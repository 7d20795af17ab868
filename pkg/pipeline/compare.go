package pipeline

import (
	"context"
	"encoding/json"
	"slices"
	"time"

	"github.com/hsnlab/SLAMBUC/pkg/errors"
	"github.com/hsnlab/SLAMBUC/pkg/partition"
	"github.com/hsnlab/SLAMBUC/pkg/tree"
)

// Entry is one algorithm's outcome in a comparison.
type Entry struct {
	Algorithm string           `json:"algorithm"`
	Exact     bool             `json:"exact"`
	Result    partition.Result `json:"result"`
	Duration  time.Duration    `json:"duration"`
	// Gap is the relative cost above the cheapest feasible entry.
	Gap float64 `json:"gap"`
}

// Comparison runs several algorithms on one instance.
type Comparison struct {
	TreeName string  `json:"tree_name"`
	TreeHash string  `json:"tree_hash"`
	Entries  []Entry `json:"entries"`
	CacheHit bool    `json:"cache_hit"`
}

// Best returns the cheapest feasible entry, preferring exact algorithms on
// ties.
func (c Comparison) Best() (Entry, bool) {
	var (
		best  Entry
		found bool
	)
	for _, e := range c.Entries {
		if !e.Result.Feasible {
			continue
		}
		if !found || e.Result.Cost < best.Result.Cost || (e.Result.Cost == best.Result.Cost && e.Exact && !best.Exact) {
			best, found = e, true
		}
	}
	return best, found
}

// DefaultAlgorithms lists the algorithms compared when none are named:
// every registered one, without the exhaustive baseline on trees too large
// for it.
func DefaultAlgorithms(t *tree.Tree) []string {
	algs := partition.Algorithms()
	if t.Len() > partition.MaxExhaustiveNodes {
		algs = slices.DeleteFunc(algs, func(a string) bool { return a == partition.AlgExhaustive })
	}
	return algs
}

// Compare runs each algorithm with the same parameters. The approximation
// knobs and Formats of opts are ignored.
func (r *Runner) Compare(ctx context.Context, t *tree.Tree, algorithms []string, opts Options) (*Comparison, error) {
	if t == nil {
		return nil, errors.New(errors.ErrCodeInvalidTree, "tree is nil")
	}
	if len(algorithms) == 0 {
		algorithms = DefaultAlgorithms(t)
	}
	opts.Epsilon, opts.Lambda, opts.Formats = 0, 0, nil
	opts.SetDefaults()
	for _, alg := range algorithms {
		o := opts
		o.Algorithm = alg
		if err := o.Validate(); err != nil {
			return nil, err
		}
	}

	hash, err := TreeHash(t)
	if err != nil {
		return nil, err
	}
	key := r.Keyer.CompareKey(hash, algorithms, opts.KeyOpts())
	if !opts.Refresh {
		if data, ok := r.lookup(ctx, key, "compare"); ok {
			var cached Comparison
			if err := json.Unmarshal(data, &cached); err == nil {
				cached.CacheHit = true
				return &cached, nil
			}
		}
	}

	cmp := &Comparison{TreeName: t.Name(), TreeHash: hash}
	for _, alg := range algorithms {
		o := opts
		o.Algorithm = alg
		start := time.Now()
		res, err := Partition(ctx, t, o)
		if err != nil {
			return nil, err
		}
		cmp.Entries = append(cmp.Entries, Entry{
			Algorithm: alg,
			Exact:     partition.ExactFor(alg, t, opts.Params),
			Result:    res,
			Duration:  time.Since(start),
		})
	}
	if best, ok := cmp.Best(); ok && best.Result.Cost > 0 {
		for i := range cmp.Entries {
			if e := &cmp.Entries[i]; e.Result.Feasible {
				e.Gap = float64(e.Result.Cost-best.Result.Cost) / float64(best.Result.Cost)
			}
		}
	}

	r.remember(ctx, key, "compare", cmp)
	r.Logger.Info("compared algorithms", "tree", t.Name(), "algorithms", algorithms)
	return cmp, nil
}
