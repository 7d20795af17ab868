package cli

import (
	"strconv"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/hsnlab/SLAMBUC/pkg/errors"
	"github.com/hsnlab/SLAMBUC/pkg/partition"
	"github.com/hsnlab/SLAMBUC/pkg/tree"
)

// cpDeepest selects the deepest leaf below the root as critical path end.
const cpDeepest = "deepest"

// paramFlags are the partitioning parameters shared by several commands.
// Only flags given on the command line override the configuration.
type paramFlags struct {
	root           int
	cpEnd          string
	m, l           int64
	n              int
	delay, unit    int64
	unidirectional bool
	workers        int
}

// register adds the flags to fs. Without withPath the root and critical
// path flags are left out, for commands that generate their own trees.
func (f *paramFlags) register(fs *pflag.FlagSet, withPath bool) {
	if withPath {
		fs.IntVar(&f.root, "root", 0, "root function of the partitioned subtree (default: tree root)")
		fs.StringVar(&f.cpEnd, "cp-end", "", `last function of the critical path, or "deepest"`)
	}
	fs.Int64VarP(&f.m, "memory", "M", 0, "memory limit per block (0: unbounded)")
	fs.Int64VarP(&f.l, "latency", "L", 0, "latency limit on the critical path (0: unbounded)")
	fs.IntVarP(&f.n, "vcpus", "N", 0, "vCPU count per instance")
	fs.Int64Var(&f.delay, "delay", 0, "invocation delay between blocks")
	fs.Int64Var(&f.unit, "unit", 0, "billing rounding unit")
	fs.BoolVar(&f.unidirectional, "unidirectional", false, "keep only cost-optimal subcases during the search")
	fs.IntVar(&f.workers, "workers", 0, "parallel workers for independent subtrees")
}

// params overlays the changed flags on base. t may be nil when the path
// flags are not registered.
func (f *paramFlags) params(cmd *cobra.Command, t *tree.Tree, base partition.Params) (partition.Params, error) {
	p := base
	changed := cmd.Flags().Changed
	if changed("root") {
		p.Root = tree.NodeID(f.root)
	}
	if changed("memory") {
		p.M = unbounded(f.m)
	}
	if changed("latency") {
		p.L = unbounded(f.l)
	}
	if changed("vcpus") {
		p.N = f.n
	}
	if changed("delay") {
		p.Delay = f.delay
	}
	if changed("unit") {
		p.Unit = f.unit
	}
	if changed("unidirectional") {
		p.Bidirectional = !f.unidirectional
	}
	if changed("workers") {
		p.Workers = f.workers
	}
	end, err := cpEnd(t, p.Root, f.cpEnd)
	if err != nil {
		return p, err
	}
	p.CPEnd = end
	return p, nil
}

func unbounded(v int64) int64 {
	if v <= 0 {
		return partition.Unbounded
	}
	return v
}

// cpEnd resolves the --cp-end flag against t.
func cpEnd(t *tree.Tree, root tree.NodeID, s string) (tree.NodeID, error) {
	switch s {
	case "":
		return tree.Platform, nil
	case cpDeepest:
		if root == tree.Platform {
			root = t.Root()
		}
		return t.DeepestLeaf(root), nil
	}
	id, err := strconv.Atoi(s)
	if err != nil || id < 0 {
		return 0, errors.New(errors.ErrCodeInvalidParams, "invalid critical path end %q", s)
	}
	return tree.NodeID(id), nil
}
