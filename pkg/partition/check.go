package partition

import (
	"github.com/hsnlab/SLAMBUC/pkg/errors"
	"github.com/hsnlab/SLAMBUC/pkg/metrics"
	"github.com/hsnlab/SLAMBUC/pkg/tree"
)

// Check recomputes a feasible result from scratch and reports an
// ErrCodeInvalidPartition error when its blocks, totals or limits disagree
// with what the result claims. Infeasible results must carry no partition.
func Check(t *tree.Tree, p Params, res Result) error {
	if !res.Feasible {
		if len(res.Partition) != 0 {
			return errors.New(errors.ErrCodeInvalidPartition, "infeasible result carries %d blocks", len(res.Partition))
		}
		return nil
	}
	in, _, err := prepare(t, p)
	if err != nil {
		return err
	}
	p = in.params
	tot, err := in.model.Recalculate(in.root, res.Partition)
	if err != nil {
		return errors.Wrap(errors.ErrCodeInvalidPartition, err, "partition %v", res.Partition)
	}
	switch {
	case tot.Cost != res.Cost:
		return errors.New(errors.ErrCodeInvalidPartition, "cost %d, recalculated %d", res.Cost, tot.Cost)
	case tot.Latency != res.Latency:
		return errors.New(errors.ErrCodeInvalidPartition, "latency %d, recalculated %d", res.Latency, tot.Latency)
	case tot.MaxMemory > p.M:
		return errors.New(errors.ErrCodeInvalidPartition, "block memory %d exceeds M = %d", tot.MaxMemory, p.M)
	case tot.Latency > p.L && res.Approx == nil:
		return errors.New(errors.ErrCodeInvalidPartition, "latency %d exceeds L = %d", tot.Latency, p.L)
	case res.Approx != nil && tot.Latency > res.Approx.RelaxedL:
		return errors.New(errors.ErrCodeInvalidPartition, "latency %d exceeds relaxed L = %d", tot.Latency, res.Approx.RelaxedL)
	}
	return nil
}

// Totals recomputes the metrics of a partition of the subtree selected by p.
func Totals(t *tree.Tree, p Params, blocks [][]tree.NodeID) (metrics.Totals, error) {
	in, _, err := prepare(t, p)
	if err != nil {
		return metrics.Totals{}, err
	}
	tot, err := in.model.Recalculate(in.root, blocks)
	if err != nil {
		return metrics.Totals{}, errors.Wrap(errors.ErrCodeInvalidPartition, err, "partition %v", blocks)
	}
	return tot, nil
}
