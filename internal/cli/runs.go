package cli

import (
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"github.com/hsnlab/SLAMBUC/pkg/errors"
	"github.com/hsnlab/SLAMBUC/pkg/store"
)

func (c *CLI) runsCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "runs",
		Short: "Manage archived runs",
		Long:  `List, show and delete runs archived with partition --save.`,
	}

	cmd.AddCommand(c.runsListCommand())
	cmd.AddCommand(c.runsShowCommand())
	cmd.AddCommand(c.runsDeleteCommand())
	return cmd
}

// openStore opens the configured archive and fails when it is disabled.
func (c *CLI) openStore(cmd *cobra.Command) (store.Store, func(), error) {
	st, err := c.newStore(cmd.Context())
	if err != nil {
		return nil, nil, err
	}
	if st == nil {
		return nil, nil, errors.New(errors.ErrCodeUnsupported, "run archive is disabled in the configuration")
	}
	return st, func() {
		if err := st.Close(); err != nil {
			c.Logger.Warn("close store", "err", err)
		}
	}, nil
}

func (c *CLI) runsListCommand() *cobra.Command {
	var (
		filter store.Filter
		asJSON bool
	)
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List archived runs, newest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			st, closeStore, err := c.openStore(cmd)
			if err != nil {
				return err
			}
			defer closeStore()

			runs, err := st.List(cmd.Context(), filter)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if asJSON {
				enc := json.NewEncoder(out)
				enc.SetIndent("", "  ")
				return enc.Encode(runs)
			}
			if len(runs) == 0 {
				printInfo(out, "No archived runs")
				return nil
			}
			rows := make([][]string, len(runs))
			for i, r := range runs {
				cost := "-"
				if r.Result.Feasible {
					cost = strconv.FormatInt(r.Result.Cost, 10)
				}
				rows[i] = []string{r.ID, r.TreeName, r.Request.Algorithm, cost, r.CreatedAt.Local().Format(time.DateTime)}
			}
			fmt.Fprintln(out, renderTable([]string{"ID", "Tree", "Algorithm", "Cost", "Created"}, rows, -1))
			return nil
		},
	}
	cmd.Flags().StringVar(&filter.TreeHash, "tree-hash", "", "only runs on this tree")
	cmd.Flags().StringVar(&filter.Algorithm, "alg", "", "only runs of this algorithm")
	cmd.Flags().IntVar(&filter.Limit, "limit", 20, "maximum number of runs (0: all)")
	cmd.Flags().BoolVar(&asJSON, "json", false, "print runs as JSON")
	return cmd
}

func (c *CLI) runsShowCommand() *cobra.Command {
	var asJSON bool
	cmd := &cobra.Command{
		Use:   "show [run-id]",
		Short: "Show an archived run",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			st, closeStore, err := c.openStore(cmd)
			if err != nil {
				return err
			}
			defer closeStore()

			run, err := st.Get(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if asJSON {
				enc := json.NewEncoder(out)
				enc.SetIndent("", "  ")
				return enc.Encode(run)
			}
			printKeyValue(out, "id", run.ID)
			printKeyValue(out, "tree", run.TreeName)
			printKeyValue(out, "hash", run.TreeHash)
			printKeyValue(out, "algorithm", run.Request.Algorithm)
			printKeyValue(out, "created", run.CreatedAt.Local().Format(time.DateTime))
			printResult(out, run.TreeName, run.Result, nil)
			return nil
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "print the run as JSON")
	return cmd
}

func (c *CLI) runsDeleteCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "delete [run-id]...",
		Short: "Delete archived runs",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			st, closeStore, err := c.openStore(cmd)
			if err != nil {
				return err
			}
			defer closeStore()

			for _, id := range args {
				if err := st.Delete(cmd.Context(), id); err != nil {
					return err
				}
				printSuccess(cmd.OutOrStdout(), "Deleted run %s", id)
			}
			return nil
		},
	}
}
