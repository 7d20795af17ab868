package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/hsnlab/SLAMBUC/pkg/errors"
	pkgio "github.com/hsnlab/SLAMBUC/pkg/io"
	"github.com/hsnlab/SLAMBUC/pkg/partition"
	"github.com/hsnlab/SLAMBUC/pkg/pipeline"
	"github.com/hsnlab/SLAMBUC/pkg/tree"
)

// partitionOpts holds the command-line flags for the partition command.
type partitionOpts struct {
	params    paramFlags
	algorithm string
	epsilon   float64
	lambda    float64
	formats   string
	output    string
	detailed  bool
	json      bool
	save      bool
	noCache   bool
	refresh   bool
}

func (c *CLI) partitionCommand() *cobra.Command {
	var opts partitionOpts

	cmd := &cobra.Command{
		Use:   "partition [tree-file]",
		Short: "Partition a call tree",
		Long: `Partition the call tree in a JSON or YAML file into deployment blocks.

The result lists the blocks, the total cost and the latency of the critical
path. Infeasible limits are reported, not treated as errors.`,
		Example: `  slambuc partition app.json -M 512 -L 1200 --cp-end deepest
  slambuc partition app.yaml --alg btree -N 2 --format svg -o app
  slambuc partition app.json -M 512 --epsilon 0.2 --json`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runPartition(cmd, args[0], &opts)
		},
	}

	opts.params.register(cmd.Flags(), true)
	cmd.Flags().StringVar(&opts.algorithm, "alg", "", "algorithm: "+strings.Join(partition.Algorithms(), ", ")+" (default from config)")
	cmd.Flags().Float64Var(&opts.epsilon, "epsilon", 0, "cost approximation factor (0: exact)")
	cmd.Flags().Float64Var(&opts.lambda, "lambda", 0, "latency relaxation factor (0: exact)")
	cmd.Flags().StringVarP(&opts.formats, "format", "f", "", "diagram format(s): dot, svg, png (comma-separated)")
	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "diagram file (single format) or base path")
	cmd.Flags().BoolVar(&opts.detailed, "detailed", false, "show function attributes in diagrams")
	cmd.Flags().BoolVar(&opts.json, "json", false, "print the result as JSON")
	cmd.Flags().BoolVar(&opts.save, "save", false, "archive the run")
	cmd.Flags().BoolVar(&opts.noCache, "no-cache", false, "disable the result cache")
	cmd.Flags().BoolVar(&opts.refresh, "refresh", false, "recompute even when cached")

	_ = cmd.RegisterFlagCompletionFunc("alg", func(*cobra.Command, []string, string) ([]string, cobra.ShellCompDirective) {
		return partition.Algorithms(), cobra.ShellCompDirectiveNoFileComp
	})
	return cmd
}

func (c *CLI) runPartition(cmd *cobra.Command, input string, opts *partitionOpts) error {
	ctx := cmd.Context()
	logger := loggerFromContext(ctx)
	out := cmd.OutOrStdout()

	if err := algorithmArg(opts.algorithm); err != nil {
		return err
	}
	t, err := pkgio.ImportFile(input)
	if err != nil {
		return err
	}
	formats := parseFormats(opts.formats)
	if err := validateFormats(formats); err != nil {
		return err
	}

	req, err := c.options(cmd, t, &opts.params)
	if err != nil {
		return err
	}
	if opts.algorithm != "" {
		req.Algorithm = opts.algorithm
	}
	req.Epsilon, req.Lambda = opts.epsilon, opts.lambda
	req.Formats = formats
	req.Detailed = opts.detailed
	req.Save = opts.save
	req.Refresh = opts.refresh

	runner, closeRunner, err := c.newRunner(ctx, opts.noCache)
	if err != nil {
		return err
	}
	defer closeRunner()

	logger.Debug("partitioning", "tree", t.Name(), "nodes", t.Len(), "algorithm", req.Algorithm)
	prog := newProgress(logger)
	spin := newSpinner(ctx, cmd.ErrOrStderr(), fmt.Sprintf("Partitioning %s with %s...", t.Name(), req.Algorithm))
	if !opts.json {
		spin.Start()
	}
	res, err := runner.Execute(ctx, t, req)
	spin.Stop()
	if err != nil {
		return err
	}
	prog.done(fmt.Sprintf("Partitioned %s", t.Name()))

	if opts.json {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(res)
	}

	printResult(out, t.Name(), res.Result, res.Path)
	printStats(out, len(res.Result.Partition), res.Result.Stats.Created, res.CacheHit)
	if res.RunID != "" {
		printKeyValue(out, "run", res.RunID)
	}

	if len(formats) > 0 {
		output := opts.output
		if output == "" {
			output = defaultOutput(input, "partition")
		}
		paths, err := writeArtifacts(res.Artifacts, formats, output)
		if err != nil {
			return err
		}
		for _, p := range paths {
			printFile(out, p)
		}
	} else if res.Result.Feasible {
		printNextStep(out, "Draw it", fmt.Sprintf("slambuc partition %s --format svg", input))
	}
	return nil
}

// options builds the request defaults from the configuration and overlays
// the parameter flags.
func (c *CLI) options(cmd *cobra.Command, t *tree.Tree, flags *paramFlags) (pipeline.Options, error) {
	p, err := flags.params(cmd, t, c.Config.Partition.Params())
	if err != nil {
		return pipeline.Options{}, err
	}
	p.Logger = loggerFromContext(cmd.Context())
	return pipeline.Options{Params: p, Algorithm: c.Config.Partition.Algorithm}, nil
}

// printResult prints the partition, its metrics and any warnings.
func printResult(w io.Writer, name string, res partition.Result, path []tree.NodeID) {
	if !res.Feasible {
		printWarning(w, "No partition of %s satisfies the limits", name)
		for _, msg := range res.Warnings {
			printDetail(w, "%s", msg)
		}
		return
	}
	printSuccess(w, "Partitioned %s into %s blocks", name, StyleNumber.Render(strconv.Itoa(len(res.Partition))))
	for i, block := range res.Partition {
		printKeyValue(w, fmt.Sprintf("block %d", i+1), formatIDs(block))
	}
	printKeyValue(w, "cost", strconv.FormatInt(res.Cost, 10))
	printKeyValue(w, "latency", strconv.FormatInt(res.Latency, 10))
	if len(path) > 0 {
		printKeyValue(w, "path", formatIDs(path))
	}
	if a := res.Approx; a != nil {
		printKeyValue(w, "approx", strings.Join(a.Knobs, ", "))
		if a.LatencyExcess > 0 {
			printWarning(w, "Latency exceeds the nominal limit by %d", a.LatencyExcess)
		}
	}
	for _, msg := range res.Warnings {
		printWarning(w, "%s", msg)
	}
}

func formatIDs(ids []tree.NodeID) string {
	parts := make([]string, len(ids))
	for i, id := range ids {
		parts[i] = strconv.Itoa(int(id))
	}
	return "[" + strings.Join(parts, " ") + "]"
}

// algorithmArg validates a positional or flag algorithm name early, before
// the tree is read.
func algorithmArg(name string) error {
	if name == "" {
		return nil
	}
	if err := errors.ValidateAlgorithmName(name); err != nil {
		return err
	}
	_, err := partition.Lookup(name)
	return err
}
