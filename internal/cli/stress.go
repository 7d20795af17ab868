package cli

import (
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/hsnlab/SLAMBUC/pkg/errors"
	"github.com/hsnlab/SLAMBUC/pkg/pipeline"
)

type stressOpts struct {
	params     paramFlags
	trees      int
	nodes      int
	seed       uint64
	algorithms []string
	divisible  bool
	jobs       int
	json       bool
}

func (c *CLI) stressCommand() *cobra.Command {
	var opts stressOpts

	cmd := &cobra.Command{
		Use:   "stress",
		Short: "Check the algorithms against the exhaustive baseline",
		Long: `Partition random call trees with every algorithm and compare each result
with the exhaustive search. Exact algorithms must reach the optimum and every
feasible partition must recompute to its reported cost and latency within the
limits. The command fails when any check does.`,
		Example: `  slambuc stress --trees 500 --nodes 12 -M 6
  slambuc stress --divisible --alg btree,ltree -N 1 --seed 7`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runStress(cmd, &opts)
		},
	}

	opts.params.register(cmd.Flags(), false)
	cmd.Flags().IntVar(&opts.trees, "trees", 100, "number of random trees")
	cmd.Flags().IntVar(&opts.nodes, "nodes", 10, "functions per tree")
	cmd.Flags().Uint64Var(&opts.seed, "seed", 1, "random seed")
	cmd.Flags().StringSliceVar(&opts.algorithms, "alg", nil, "algorithms to check (default: all but exhaustive)")
	cmd.Flags().BoolVar(&opts.divisible, "divisible", false, "draw rates that divide their callees' rates")
	cmd.Flags().IntVarP(&opts.jobs, "jobs", "j", 4, "trees checked in parallel")
	cmd.Flags().BoolVar(&opts.json, "json", false, "print the report as JSON")
	return cmd
}

func (c *CLI) runStress(cmd *cobra.Command, opts *stressOpts) error {
	ctx := cmd.Context()
	out := cmd.OutOrStdout()
	logger := loggerFromContext(ctx)

	p, err := opts.params.params(cmd, nil, c.Config.Partition.Params())
	if err != nil {
		return err
	}
	prog := newProgress(logger)
	spin := newSpinner(ctx, cmd.ErrOrStderr(), fmt.Sprintf("Checking %d trees...", opts.trees))
	if !opts.json {
		spin.Start()
	}
	report, err := pipeline.Stress(ctx, pipeline.StressOptions{
		Trees:      opts.trees,
		Nodes:      opts.nodes,
		Seed:       opts.seed,
		Algorithms: opts.algorithms,
		Divisible:  opts.divisible,
		Workers:    opts.jobs,
		Params:     p,
	})
	spin.Stop()
	if err != nil {
		return err
	}
	prog.done(fmt.Sprintf("Checked %d trees", report.Trees))

	if opts.json {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		if err := enc.Encode(report); err != nil {
			return err
		}
	} else {
		printStressReport(cmd, report)
	}
	if !report.OK() {
		return errors.New(errors.ErrCodeInternal, "%d checks failed", len(report.Failures))
	}
	return nil
}

func printStressReport(cmd *cobra.Command, r *pipeline.StressReport) {
	out := cmd.OutOrStdout()
	rows := make([][]string, len(r.Algorithms))
	for i, s := range r.Algorithms {
		rows[i] = []string{
			s.Algorithm,
			yesNo(s.Exact),
			strconv.Itoa(s.Feasible),
			strconv.Itoa(s.Optimal),
			strconv.Itoa(s.Mismatches),
			strconv.Itoa(s.Invalid),
			strconv.FormatFloat(s.MaxGap*100, 'f', 1, 64) + "%",
			s.Duration.String(),
		}
	}
	fmt.Fprintln(out, StyleTitle.Render(fmt.Sprintf("%d trees, %d feasible", r.Trees, r.Feasible)))
	fmt.Fprintln(out, renderTable([]string{"Algorithm", "Exact", "Feasible", "Optimal", "Mismatches", "Invalid", "Max gap", "Time"}, rows, -1))
	if r.OK() {
		printSuccess(out, "All checks passed")
		return
	}
	for _, f := range r.Failures {
		printError(out, "tree %d, %s: %s", f.Index, f.Algorithm, f.Reason)
	}
}
