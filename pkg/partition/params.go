package partition

import (
	"io"
	"math"

	"github.com/charmbracelet/log"

	"github.com/hsnlab/SLAMBUC/pkg/errors"
	"github.com/hsnlab/SLAMBUC/pkg/tree"
)

// Unbounded disables a memory or latency limit.
const Unbounded int64 = math.MaxInt64

// Default values shared by the CLI, the API and the config loader.
const (
	DefaultN     = 1
	DefaultDelay = int64(1)
	DefaultUnit  = int64(1)
)

// Params configures one partitioning call.
type Params struct {
	// Root is the tree root; zero selects the platform's callee.
	Root tree.NodeID `json:"root,omitempty"`
	// CPEnd is the critical-path tail; zero means no latency-constrained path.
	CPEnd tree.NodeID `json:"cp_end,omitempty"`
	// M is the memory bound per block.
	M int64 `json:"M,omitempty"`
	// L is the latency bound on the critical path.
	L int64 `json:"L,omitempty"`
	// N is the vCPU cap per block.
	N int `json:"N,omitempty"`
	// Delay is the invocation overhead between critical-path blocks.
	Delay int64 `json:"delay"`
	// Unit is the runtime rounding granularity of the cost model.
	Unit int64 `json:"unit,omitempty"`
	// Bidirectional also evicts frontier entries dominated by a newcomer.
	// Both modes yield the same optimum.
	Bidirectional bool `json:"bidirectional"`
	// Workers > 1 processes independent subtrees concurrently.
	Workers int `json:"workers,omitempty"`

	Logger *log.Logger `json:"-"`
}

// DefaultParams returns unbounded limits, a single vCPU, unit delay and
// bidirectional dominance elimination.
func DefaultParams() Params {
	return Params{
		M:             Unbounded,
		L:             Unbounded,
		N:             DefaultN,
		Delay:         DefaultDelay,
		Unit:          DefaultUnit,
		Bidirectional: true,
	}
}

// SetDefaults fills zero limits with unbounded values and a zero vCPU cap
// with one. Delay is left untouched since zero is a meaningful delay.
func (p *Params) SetDefaults() {
	if p.M == 0 {
		p.M = Unbounded
	}
	if p.L == 0 {
		p.L = Unbounded
	}
	if p.N == 0 {
		p.N = DefaultN
	}
	if p.Unit == 0 {
		p.Unit = DefaultUnit
	}
	if p.Logger == nil {
		p.Logger = log.New(io.Discard)
	}
}

// Validate rejects parameters no partitioning could interpret.
func (p Params) Validate() error {
	switch {
	case p.Root < 0:
		return errors.New(errors.ErrCodeInvalidParams, "root must not be negative: %d", p.Root)
	case p.CPEnd < 0:
		return errors.New(errors.ErrCodeInvalidParams, "critical path tail must not be negative: %d", p.CPEnd)
	case p.M <= 0:
		return errors.New(errors.ErrCodeInvalidParams, "memory bound must be positive: %d", p.M)
	case p.L <= 0:
		return errors.New(errors.ErrCodeInvalidParams, "latency bound must be positive: %d", p.L)
	case p.N < 1:
		return errors.New(errors.ErrCodeInvalidParams, "vCPU cap must be at least 1: %d", p.N)
	case p.Delay < 0:
		return errors.New(errors.ErrCodeInvalidParams, "delay must not be negative: %d", p.Delay)
	case p.Unit < 0:
		return errors.New(errors.ErrCodeInvalidParams, "unit must not be negative: %d", p.Unit)
	case p.Workers < 0:
		return errors.New(errors.ErrCodeInvalidParams, "workers must not be negative: %d", p.Workers)
	}
	return nil
}

func (p Params) bounds() Bounds {
	return Bounds{M: p.M, L: p.L, N: int64(p.N)}
}
