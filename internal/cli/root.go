package cli

import (
	"context"
	"os"

	"github.com/spf13/cobra"
)

// Execute builds the command tree, maps --verbose to the log level and runs
// the command named on the command line.
//
// Logging:
//   - Default: info level (logs to stderr)
//   - With --verbose (-v): debug level
//
// Example:
//
//	func main() {
//	    if err := cli.Execute(context.Background()); err != nil {
//	        os.Exit(1)
//	    }
//	}
func Execute(ctx context.Context) error {
	return newRoot(New(os.Stderr, LogInfo)).ExecuteContext(ctx)
}

func newRoot(c *CLI) *cobra.Command {
	var verbose bool
	root := c.RootCommand()
	root.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable verbose logging")

	loadConfig := root.PersistentPreRunE
	root.PersistentPreRunE = func(cmd *cobra.Command, args []string) error {
		level := LogInfo
		if verbose {
			level = LogDebug
		}
		c.SetLogLevel(level)
		return loadConfig(cmd, args)
	}
	return root
}
