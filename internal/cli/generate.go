package cli

import (
	"math/rand/v2"

	"github.com/spf13/cobra"

	"github.com/hsnlab/SLAMBUC/pkg/errors"
	pkgio "github.com/hsnlab/SLAMBUC/pkg/io"
	"github.com/hsnlab/SLAMBUC/pkg/tree"
)

type generateOpts struct {
	nodes     int
	seed      uint64
	name      string
	output    string
	yaml      bool
	divisible bool
	tree      tree.RandomOptions
}

func (c *CLI) generateCommand() *cobra.Command {
	var opts generateOpts

	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Write a random call tree",
		Long: `Generate a random call tree with functions numbered 1..n under the
platform. The same seed always yields the same tree.`,
		Example: `  slambuc generate --nodes 30 --seed 4 -o app.json
  slambuc generate --nodes 8 --yaml`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if opts.nodes <= 0 {
				return errors.New(errors.ErrCodeInvalidParams, "--nodes must be positive")
			}
			if opts.name == "" {
				opts.name = "random"
			}
			if err := errors.ValidateName(opts.name); err != nil {
				return err
			}
			opts.tree.DivisibleRates = opts.divisible
			t := tree.Random(rand.New(rand.NewPCG(opts.seed, 0)), opts.name, opts.nodes, opts.tree)

			if opts.output != "" {
				if err := pkgio.ExportFile(t, opts.output); err != nil {
					return err
				}
				printSuccess(cmd.OutOrStdout(), "Generated %s with %d functions", opts.name, t.Len())
				printFile(cmd.OutOrStdout(), opts.output)
				return nil
			}
			if opts.yaml {
				return pkgio.WriteYAML(t, cmd.OutOrStdout())
			}
			return pkgio.WriteJSON(t, cmd.OutOrStdout())
		},
	}

	cmd.Flags().IntVarP(&opts.nodes, "nodes", "n", 10, "number of functions")
	cmd.Flags().Uint64Var(&opts.seed, "seed", 1, "random seed")
	cmd.Flags().StringVar(&opts.name, "name", "", "tree name (default \"random\")")
	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "output file; .yaml/.yml writes YAML (default: stdout)")
	cmd.Flags().BoolVar(&opts.yaml, "yaml", false, "write YAML to stdout")
	cmd.Flags().BoolVar(&opts.divisible, "divisible", false, "draw rates that divide their callees' rates")
	cmd.Flags().Int64Var(&opts.tree.MaxRuntime, "max-runtime", 0, "largest function runtime (default 50)")
	cmd.Flags().Int64Var(&opts.tree.MaxMemory, "max-memory", 0, "largest function memory (default 5)")
	cmd.Flags().Int64Var(&opts.tree.MaxData, "max-data", 0, "largest data read (default 10, negative for none)")
	cmd.Flags().Int64Var(&opts.tree.MaxRate, "max-rate", 0, "largest invocation rate (default 3)")
	return cmd
}
