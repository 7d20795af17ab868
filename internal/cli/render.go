package cli

import (
	"github.com/spf13/cobra"

	"github.com/hsnlab/SLAMBUC/pkg/errors"
	pkgio "github.com/hsnlab/SLAMBUC/pkg/io"
	"github.com/hsnlab/SLAMBUC/pkg/partition"
	"github.com/hsnlab/SLAMBUC/pkg/pipeline"
	"github.com/hsnlab/SLAMBUC/pkg/store"
	"github.com/hsnlab/SLAMBUC/pkg/tree"
)

type renderOpts struct {
	formats  string
	output   string
	detailed bool
}

func (c *CLI) renderCommand() *cobra.Command {
	opts := renderOpts{formats: "svg"}

	cmd := &cobra.Command{
		Use:   "render [run-id] [tree-file]",
		Short: "Draw an archived run",
		Long: `Draw the partition of an archived run over its call tree. The tree file
must hold the same tree the run was computed on.`,
		Example: `  slambuc render 6f1c0b9e-... app.json --format svg,png -o app`,
		Args:    cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runRender(cmd, args[0], args[1], &opts)
		},
	}

	cmd.Flags().StringVarP(&opts.formats, "format", "f", opts.formats, "diagram format(s): dot, svg, png (comma-separated)")
	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "diagram file (single format) or base path")
	cmd.Flags().BoolVar(&opts.detailed, "detailed", false, "show function attributes in diagrams")
	return cmd
}

func (c *CLI) runRender(cmd *cobra.Command, id, input string, opts *renderOpts) error {
	ctx := cmd.Context()
	out := cmd.OutOrStdout()

	formats := parseFormats(opts.formats)
	if len(formats) == 0 {
		return errors.New(errors.ErrCodeInvalidFormat, "no output format given")
	}
	if err := validateFormats(formats); err != nil {
		return err
	}
	st, closeStore, err := c.openStore(cmd)
	if err != nil {
		return err
	}
	defer closeStore()

	run, err := st.Get(ctx, id)
	if err != nil {
		return err
	}
	t, err := pkgio.ImportFile(input)
	if err != nil {
		return err
	}
	hash, err := pipeline.TreeHash(t)
	if err != nil {
		return err
	}
	if hash != run.TreeHash {
		return errors.New(errors.ErrCodeInvalidTree, "%s is not the tree of run %s", input, id)
	}

	p := requestParams(run.Request)
	artifacts, err := pipeline.Render(ctx, t, run.Result, pipeline.CriticalPath(t, p), pipeline.Options{
		Formats:  formats,
		Detailed: opts.detailed,
	})
	if err != nil {
		return err
	}
	output := opts.output
	if output == "" {
		output = defaultOutput(input, id)
	}
	paths, err := writeArtifacts(artifacts, formats, output)
	if err != nil {
		return err
	}
	printSuccess(out, "Rendered run %s", id)
	for _, path := range paths {
		printFile(out, path)
	}
	return nil
}

// requestParams restores the parameters an archived run was computed with.
func requestParams(r store.Request) partition.Params {
	p := partition.DefaultParams()
	p.Root = tree.NodeID(r.Root)
	p.CPEnd = tree.NodeID(r.CPEnd)
	p.M, p.L, p.N = r.M, r.L, r.N
	p.Delay, p.Unit = r.Delay, r.Unit
	p.Bidirectional = r.Bidirectional
	return p
}
