// Package pipeline runs partitioning requests end to end for the CLI and
// the HTTP API.
//
// A request goes through three stages:
//
//  1. Hash: the tree is serialized to its canonical JSON and hashed
//  2. Partition: the chosen algorithm runs, unless the cache already holds
//     the result for this tree and these parameters
//  3. Render: optional diagrams in the requested formats
//
// Results can be archived in a [store.Store].
//
// # Usage
//
//	runner := pipeline.NewRunner(c, nil, st, logger)
//	opts := pipeline.Options{Algorithm: "ltree", Params: partition.DefaultParams()}
//	opts.M = 512
//	res, err := runner.Execute(ctx, t, opts)
//	if err != nil {
//	    return err
//	}
//	fmt.Println(res.Result.Cost)
package pipeline

import (
	"io"
	"time"

	"github.com/charmbracelet/log"

	"github.com/hsnlab/SLAMBUC/pkg/cache"
	"github.com/hsnlab/SLAMBUC/pkg/errors"
	"github.com/hsnlab/SLAMBUC/pkg/partition"
	"github.com/hsnlab/SLAMBUC/pkg/render"
	"github.com/hsnlab/SLAMBUC/pkg/store"
	"github.com/hsnlab/SLAMBUC/pkg/tree"
)

// =============================================================================
// Options - Request Configuration
// =============================================================================

// Options configures one request. The embedded Params are flattened in
// JSON so API bodies read {"algorithm": "ltree", "M": 512, ...}.
type Options struct {
	partition.Params

	Algorithm string  `json:"algorithm,omitempty"`
	Epsilon   float64 `json:"epsilon,omitempty"`
	Lambda    float64 `json:"lambda,omitempty"`

	// Formats lists diagram formats to render (dot, svg, png).
	Formats []string `json:"formats,omitempty"`
	// Detailed adds attributes to diagram labels.
	Detailed bool `json:"detailed,omitempty"`

	// Refresh skips the cache lookup; the fresh result still overwrites it.
	Refresh bool `json:"refresh,omitempty"`
	// Save archives the run in the runner's store.
	Save bool `json:"save,omitempty"`
}

// SetDefaults fills the algorithm, the parameter defaults and a discarding
// logger.
func (o *Options) SetDefaults() {
	if o.Algorithm == "" {
		o.Algorithm = partition.DefaultAlgorithm
	}
	if o.Logger == nil {
		o.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}
	o.Params.SetDefaults()
}

// Validate checks the algorithm, the parameters, the approximation knobs
// and the formats.
func (o Options) Validate() error {
	if _, err := partition.Lookup(o.Algorithm); err != nil {
		return err
	}
	if err := o.Params.Validate(); err != nil {
		return err
	}
	if err := o.Approx().Validate(); err != nil {
		return err
	}
	if o.Approximate() && o.Algorithm != partition.AlgLeftRight && o.Algorithm != partition.AlgBottomUp {
		return errors.New(errors.ErrCodeInvalidParams, "approximation needs a DP engine, not %q", o.Algorithm)
	}
	for _, f := range o.Formats {
		if err := render.ValidateFormat(f); err != nil {
			return err
		}
	}
	return nil
}

// Approx returns the approximation knobs.
func (o Options) Approx() partition.Approx {
	return partition.Approx{Epsilon: o.Epsilon, Lambda: o.Lambda}
}

// Approximate reports whether any approximation knob is set.
func (o Options) Approximate() bool {
	return len(o.Approx().Active()) > 0
}

// KeyOpts returns the fields that identify a cached result.
func (o Options) KeyOpts() cache.PartitionKeyOpts {
	return cache.PartitionKeyOpts{
		Algorithm:     o.Algorithm,
		Root:          int(o.Root),
		CPEnd:         int(o.CPEnd),
		M:             o.M,
		L:             o.L,
		N:             o.N,
		Delay:         o.Delay,
		Unit:          o.Unit,
		Bidirectional: o.Bidirectional,
		Epsilon:       o.Epsilon,
		Lambda:        o.Lambda,
	}
}

// Request returns the archived form of the options.
func (o Options) Request() store.Request {
	k := o.KeyOpts()
	return store.Request{
		Algorithm:     k.Algorithm,
		Root:          k.Root,
		CPEnd:         k.CPEnd,
		M:             k.M,
		L:             k.L,
		N:             k.N,
		Delay:         k.Delay,
		Unit:          k.Unit,
		Bidirectional: k.Bidirectional,
		Epsilon:       k.Epsilon,
		Lambda:        k.Lambda,
	}
}

// =============================================================================
// Result
// =============================================================================

// Result is the outcome of Execute.
type Result struct {
	Result partition.Result `json:"result"`

	// TreeName and TreeHash identify the input tree.
	TreeName string `json:"tree_name"`
	TreeHash string `json:"tree_hash"`

	// Path is the critical path the latency refers to.
	Path []tree.NodeID `json:"critical_path"`

	// RunID is set when the run was archived.
	RunID string `json:"run_id,omitempty"`

	// Artifacts holds rendered diagrams keyed by format.
	Artifacts map[string][]byte `json:"-"`

	CacheHit bool          `json:"cache_hit"`
	Duration time.Duration `json:"duration"`
}
