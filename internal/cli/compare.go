package cli

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	pkgio "github.com/hsnlab/SLAMBUC/pkg/io"
	"github.com/hsnlab/SLAMBUC/pkg/pipeline"
)

type compareOpts struct {
	params     paramFlags
	algorithms []string
	json       bool
	noCache    bool
	refresh    bool
}

func (c *CLI) compareCommand() *cobra.Command {
	var opts compareOpts

	cmd := &cobra.Command{
		Use:   "compare [tree-file]",
		Short: "Run several algorithms on one tree",
		Long: `Run several algorithms on the same tree and parameters and print their
cost, latency and search effort side by side. The gap column is the relative
cost above the best feasible result.`,
		Example: `  slambuc compare app.json -M 512 --cp-end deepest
  slambuc compare app.json --alg ltree,greedy -N 2`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runCompare(cmd, args[0], &opts)
		},
	}

	opts.params.register(cmd.Flags(), true)
	cmd.Flags().StringSliceVar(&opts.algorithms, "alg", nil, "algorithms to compare (default: all that fit the tree)")
	cmd.Flags().BoolVar(&opts.json, "json", false, "print the comparison as JSON")
	cmd.Flags().BoolVar(&opts.noCache, "no-cache", false, "disable the result cache")
	cmd.Flags().BoolVar(&opts.refresh, "refresh", false, "recompute even when cached")
	return cmd
}

func (c *CLI) runCompare(cmd *cobra.Command, input string, opts *compareOpts) error {
	ctx := cmd.Context()
	out := cmd.OutOrStdout()

	for _, alg := range opts.algorithms {
		if err := algorithmArg(alg); err != nil {
			return err
		}
	}
	t, err := pkgio.ImportFile(input)
	if err != nil {
		return err
	}
	req, err := c.options(cmd, t, &opts.params)
	if err != nil {
		return err
	}
	req.Refresh = opts.refresh

	runner, closeRunner, err := c.newRunner(ctx, opts.noCache)
	if err != nil {
		return err
	}
	defer closeRunner()

	spin := newSpinner(ctx, cmd.ErrOrStderr(), fmt.Sprintf("Comparing algorithms on %s...", t.Name()))
	if !opts.json {
		spin.Start()
	}
	cmp, err := runner.Compare(ctx, t, opts.algorithms, req)
	spin.Stop()
	if err != nil {
		return err
	}

	if opts.json {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(cmp)
	}
	printComparison(cmd, cmp)
	return nil
}

func printComparison(cmd *cobra.Command, cmp *pipeline.Comparison) {
	out := cmd.OutOrStdout()
	best, ok := cmp.Best()
	highlight := -1
	rows := make([][]string, len(cmp.Entries))
	for i, e := range cmp.Entries {
		if ok && e.Algorithm == best.Algorithm {
			highlight = i
		}
		rows[i] = compareRow(e)
	}
	fmt.Fprintln(out, StyleTitle.Render("Comparison for "+cmp.TreeName))
	fmt.Fprintln(out, renderTable([]string{"Algorithm", "Exact", "Feasible", "Cost", "Latency", "Blocks", "Subcases", "Time", "Gap"}, rows, highlight))
	if !ok {
		printWarning(out, "No algorithm found a feasible partition")
		return
	}
	printSuccess(out, "Best: %s (cost %d)", best.Algorithm, best.Result.Cost)
	if cmp.CacheHit {
		printDetail(out, "%s", iconCached)
	}
}

func compareRow(e pipeline.Entry) []string {
	res := e.Result
	row := []string{e.Algorithm, yesNo(e.Exact), yesNo(res.Feasible), "-", "-", "-",
		strconv.FormatInt(res.Stats.Created, 10), e.Duration.String(), "-"}
	if res.Feasible {
		row[3] = strconv.FormatInt(res.Cost, 10)
		row[4] = strconv.FormatInt(res.Latency, 10)
		row[5] = strconv.Itoa(len(res.Partition))
		row[8] = strings.TrimSuffix(strconv.FormatFloat(e.Gap*100, 'f', 1, 64), ".0") + "%"
	}
	return row
}

func yesNo(b bool) string {
	if b {
		return "yes"
	}
	return "no"
}
