package partition

import (
	"context"
	"math"

	"github.com/hsnlab/SLAMBUC/pkg/errors"
	"github.com/hsnlab/SLAMBUC/pkg/tree"
)

// Approx selects the trade-offs of the approximation scheme.
type Approx struct {
	// Epsilon > 0 bounds the cost of the result by (1+Epsilon) times the
	// optimum.
	Epsilon float64 `json:"epsilon,omitempty" toml:"epsilon"`
	// Lambda > 0 lets the critical-path latency exceed L by up to Lambda*L.
	Lambda float64 `json:"lambda,omitempty" toml:"lambda"`
}

// Knob names reported by [Approx.Active].
const (
	KnobEpsilon = "epsilon"
	KnobLambda  = "lambda"
)

// Validate rejects negative or non-finite knobs.
func (a Approx) Validate() error {
	for name, v := range map[string]float64{KnobEpsilon: a.Epsilon, KnobLambda: a.Lambda} {
		if v < 0 || math.IsNaN(v) || math.IsInf(v, 0) {
			return errors.New(errors.ErrCodeInvalidParams, "%s must be a finite non-negative number: %v", name, v)
		}
	}
	return nil
}

// Active lists the knobs that change the search.
func (a Approx) Active() []string {
	var knobs []string
	if a.Epsilon > 0 {
		knobs = append(knobs, KnobEpsilon)
	}
	if a.Lambda > 0 {
		knobs = append(knobs, KnobLambda)
	}
	return knobs
}

// ApproxReport documents how an approximate result relates to the nominal
// problem.
type ApproxReport struct {
	Epsilon float64  `json:"epsilon"`
	Lambda  float64  `json:"lambda"`
	Knobs   []string `json:"knobs,omitempty"`
	// NominalL is the latency bound of the request.
	NominalL int64 `json:"nominal_L"`
	// RelaxedL is the bound the search actually enforced.
	RelaxedL int64 `json:"relaxed_L"`
	// LatencyExcess is how far the result exceeds NominalL. A positive
	// excess within Lambda*NominalL is a valid answer.
	LatencyExcess int64 `json:"latency_excess"`
}

// Approximate runs a DP engine on coarsened closed-subtree summaries.
//
// With Epsilon set, a summary entry is dropped when a kept entry of no
// higher latency costs at most (1+Epsilon)^(1/n) times as much, n being the
// subtree size; the per-level errors compound to at most 1+Epsilon. With
// Lambda set, the latency bound is relaxed to L + Lambda*L and summary
// entries are merged on a latency grid of Lambda*L/n.
//
// engineName is "ltree" or "btree"; empty selects "ltree". The cost bound
// holds whenever the chosen engine is exact on the instance.
func Approximate(ctx context.Context, t *tree.Tree, p Params, a Approx, engineName string) (Result, error) {
	if err := a.Validate(); err != nil {
		return Result{}, err
	}
	var eng engine
	switch engineName {
	case "", "ltree":
		engineName, eng = "ltree", leftRight
	case "btree":
		eng = bottomUp
	default:
		return Result{}, errors.New(errors.ErrCodeUnknownAlgorithm, "no approximation for algorithm %q", engineName)
	}

	p.SetDefaults()
	size := 1
	if t != nil {
		root := p.Root
		if root == tree.Platform {
			root = t.Root()
		}
		size = max(1, t.Subtree(root).Len())
	}

	nominal := p.L
	var tr trimmer
	if a.Epsilon > 0 {
		tr.ratio = math.Pow(1+a.Epsilon, 1/float64(size))
	}
	if a.Lambda > 0 && p.L != Unbounded {
		slack := int64(math.Floor(a.Lambda * float64(p.L)))
		if slack > Unbounded-p.L {
			slack = Unbounded - p.L
		}
		p.L += slack
		tr.grid = slack / int64(size)
	}

	res, err := run(ctx, t, p, tr, engineName, eng)
	if err != nil {
		return Result{}, err
	}
	res.Approx = &ApproxReport{
		Epsilon:  a.Epsilon,
		Lambda:   a.Lambda,
		Knobs:    a.Active(),
		NominalL: nominal,
		RelaxedL: p.L,
	}
	if res.Feasible && res.Latency > nominal {
		res.Approx.LatencyExcess = res.Latency - nominal
	}
	return res, nil
}
