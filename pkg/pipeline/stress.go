package pipeline

import (
	"cmp"
	"context"
	"fmt"
	"io"
	"math/rand/v2"
	"slices"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"golang.org/x/sync/errgroup"

	"github.com/hsnlab/SLAMBUC/pkg/errors"
	"github.com/hsnlab/SLAMBUC/pkg/partition"
	"github.com/hsnlab/SLAMBUC/pkg/tree"
)

// StressOptions configures a randomized validation campaign.
type StressOptions struct {
	// Trees is the number of random trees (default 100).
	Trees int
	// Nodes is the size of each tree (default 10, at most MaxExhaustiveNodes).
	Nodes int
	// Seed makes the campaign reproducible.
	Seed uint64
	// Algorithms are checked against the exhaustive baseline (default: all).
	Algorithms []string
	// Divisible draws rates as multiples of the caller's rate.
	Divisible bool
	// Workers bounds the trees processed concurrently (default 1).
	Workers int
	// Params are shared by every run. A zero CPEnd selects the deepest leaf.
	Params partition.Params
	// Tree overrides the generator bounds.
	Tree tree.RandomOptions
}

// Failure describes one disagreement found by Stress.
type Failure struct {
	Index     int    `json:"index"`
	Algorithm string `json:"algorithm"`
	Reason    string `json:"reason"`
}

// AlgorithmStats summarizes one algorithm over the campaign.
type AlgorithmStats struct {
	Algorithm  string        `json:"algorithm"`
	Exact      bool          `json:"exact"`
	Runs       int           `json:"runs"`
	Feasible   int           `json:"feasible"`
	Optimal    int           `json:"optimal"`
	Mismatches int           `json:"mismatches"`
	Invalid    int           `json:"invalid"`
	MaxGap     float64       `json:"max_gap"`
	Duration   time.Duration `json:"duration"`
}

// StressReport is the outcome of Stress.
type StressReport struct {
	Trees      int              `json:"trees"`
	Feasible   int              `json:"feasible"`
	Algorithms []AlgorithmStats `json:"algorithms"`
	Failures   []Failure        `json:"failures,omitempty"`
}

// OK reports whether no algorithm produced an invalid result and every
// exact algorithm matched the baseline.
func (r StressReport) OK() bool { return len(r.Failures) == 0 }

func (o *StressOptions) setDefaults() {
	if o.Trees <= 0 {
		o.Trees = 100
	}
	if o.Nodes <= 0 {
		o.Nodes = 10
	}
	if len(o.Algorithms) == 0 {
		o.Algorithms = slices.DeleteFunc(partition.Algorithms(), func(a string) bool {
			return a == partition.AlgExhaustive
		})
	}
	if o.Workers <= 0 {
		o.Workers = 1
	}
	if o.Params.Logger == nil {
		o.Params.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}
}

// Stress partitions random trees with every algorithm and checks each
// result against the exhaustive baseline: exact algorithms must match the
// optimum cost and every feasible result must recompute to its reported
// metrics within the limits.
func Stress(ctx context.Context, opts StressOptions) (*StressReport, error) {
	opts.setDefaults()
	if opts.Nodes > partition.MaxExhaustiveNodes {
		return nil, errors.New(errors.ErrCodeTooLarge, "stress trees are limited to %d nodes", partition.MaxExhaustiveNodes)
	}
	algs := make([]partition.Algorithm, len(opts.Algorithms))
	for i, name := range opts.Algorithms {
		alg, err := partition.Lookup(name)
		if err != nil {
			return nil, err
		}
		algs[i] = alg
	}

	report := &StressReport{Trees: opts.Trees}
	stats := make([]AlgorithmStats, len(algs))
	for i, name := range opts.Algorithms {
		p := opts.Params
		p.SetDefaults()
		// bottom-up merging is exact only when every rate divides its callees'
		exact := partition.Exact(name) || name == partition.AlgBottomUp && p.N <= 1 && opts.Divisible
		stats[i] = AlgorithmStats{Algorithm: name, Exact: exact}
	}
	var mu sync.Mutex

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(opts.Workers)
	for idx := range opts.Trees {
		g.Go(func() error {
			t, p := opts.instance(idx)
			base, err := partition.Exhaustive(ctx, t, p)
			if err != nil {
				return err
			}

			type outcome struct {
				res     partition.Result
				dur     time.Duration
				fail    string
				invalid bool
			}
			outs := make([]outcome, len(algs))
			for i, alg := range algs {
				start := time.Now()
				res, err := alg(ctx, t, p)
				if err != nil {
					return fmt.Errorf("tree %d, %s: %w", idx, opts.Algorithms[i], err)
				}
				outs[i] = outcome{res: res, dur: time.Since(start)}
				if err := partition.Check(t, p, res); err != nil {
					outs[i].fail, outs[i].invalid = err.Error(), true
				} else if stats[i].Exact && (res.Feasible != base.Feasible || res.Cost != base.Cost) {
					outs[i].fail = fmt.Sprintf("feasible=%v cost=%d, optimum feasible=%v cost=%d",
						res.Feasible, res.Cost, base.Feasible, base.Cost)
				}
			}

			mu.Lock()
			defer mu.Unlock()
			if base.Feasible {
				report.Feasible++
			}
			for i, out := range outs {
				s := &stats[i]
				s.Runs++
				s.Duration += out.dur
				if out.res.Feasible {
					s.Feasible++
					if base.Feasible && out.res.Cost == base.Cost {
						s.Optimal++
					}
					if base.Feasible && base.Cost > 0 {
						s.MaxGap = max(s.MaxGap, float64(out.res.Cost-base.Cost)/float64(base.Cost))
					}
				}
				if out.fail == "" {
					continue
				}
				if out.invalid {
					s.Invalid++
				} else {
					s.Mismatches++
				}
				report.Failures = append(report.Failures, Failure{Index: idx, Algorithm: s.Algorithm, Reason: out.fail})
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	slices.SortFunc(report.Failures, func(a, b Failure) int {
		if a.Index != b.Index {
			return a.Index - b.Index
		}
		return cmp.Compare(a.Algorithm, b.Algorithm)
	})
	report.Algorithms = stats
	return report, nil
}

// instance generates the idx-th tree of the campaign and its parameters.
func (o StressOptions) instance(idx int) (*tree.Tree, partition.Params) {
	rng := rand.New(rand.NewPCG(o.Seed, uint64(idx)))
	ropts := o.Tree
	ropts.DivisibleRates = o.Divisible
	t := tree.Random(rng, fmt.Sprintf("stress-%d", idx), o.Nodes, ropts)
	p := o.Params
	if p.CPEnd == tree.Platform {
		p.CPEnd = t.DeepestLeaf(t.Root())
	}
	return t, p
}
