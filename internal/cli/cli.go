// Package cli implements the slambuc command-line interface.
package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/hsnlab/SLAMBUC/pkg/buildinfo"
	"github.com/hsnlab/SLAMBUC/pkg/cache"
	"github.com/hsnlab/SLAMBUC/pkg/config"
	"github.com/hsnlab/SLAMBUC/pkg/pipeline"
	"github.com/hsnlab/SLAMBUC/pkg/render"
	"github.com/hsnlab/SLAMBUC/pkg/store"
)

// =============================================================================
// Constants
// =============================================================================

const (
	// appName is the application name used for directories and display.
	appName = "slambuc"
)

// Log levels exported for use in main.go.
const (
	LogDebug = log.DebugLevel
	LogInfo  = log.InfoLevel
)

// =============================================================================
// CLI - Central CLI State
// =============================================================================

// CLI holds shared state for all commands.
type CLI struct {
	Logger *log.Logger
	Config config.Config

	configPath string
}

// New creates a new CLI instance with a default logger and the built-in
// configuration. The configuration file is read when a command runs.
func New(w io.Writer, level log.Level) *CLI {
	return &CLI{
		Logger: newLogger(w, level),
		Config: config.Default(),
	}
}

// SetLogLevel updates the logger's level.
func (c *CLI) SetLogLevel(level log.Level) {
	c.Logger.SetLevel(level)
}

// RootCommand creates the root cobra command with all subcommands registered.
func (c *CLI) RootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:   appName,
		Short: "slambuc partitions serverless call trees",
		Long: `slambuc groups the functions of a serverless application's call tree into
deployment blocks, minimizing the billed cost under a memory limit per block
and a latency limit on a chosen critical path.`,
		Version:      buildinfo.Version,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(c.configPath)
			if err != nil {
				return err
			}
			c.Config = cfg
			cmd.SetContext(withLogger(cmd.Context(), c.Logger))
			return nil
		},
	}

	root.SetVersionTemplate(buildinfo.Template())
	root.PersistentFlags().StringVar(&c.configPath, "config", "", "config file (default "+config.DefaultPath()+")")

	root.AddCommand(c.partitionCommand())
	root.AddCommand(c.compareCommand())
	root.AddCommand(c.stressCommand())
	root.AddCommand(c.generateCommand())
	root.AddCommand(c.renderCommand())
	root.AddCommand(c.runsCommand())
	root.AddCommand(c.serveCommand())
	root.AddCommand(c.cacheCommand())
	root.AddCommand(c.completionCommand())

	return root
}

// =============================================================================
// Runner Factory
// =============================================================================

// newRunner creates a pipeline runner from the configured backends. The
// returned function releases them.
func (c *CLI) newRunner(ctx context.Context, noCache bool) (*pipeline.Runner, func(), error) {
	rc, err := c.newCache(ctx, noCache)
	if err != nil {
		return nil, nil, err
	}
	st, err := c.newStore(ctx)
	if err != nil {
		rc.Close()
		return nil, nil, err
	}
	runner := pipeline.NewRunner(rc, nil, st, c.Logger)
	if c.Config.Cache.TTL > 0 {
		runner.TTL = c.Config.Cache.TTL
	}
	closer := func() {
		if err := rc.Close(); err != nil {
			c.Logger.Warn("close cache", "err", err)
		}
		if st != nil {
			if err := st.Close(); err != nil {
				c.Logger.Warn("close store", "err", err)
			}
		}
	}
	return runner, closer, nil
}

func (c *CLI) newCache(ctx context.Context, noCache bool) (cache.Cache, error) {
	cfg := c.Config.Cache
	if noCache || cfg.Backend == config.BackendNone {
		return cache.NewNullCache(), nil
	}
	if cfg.Backend == config.BackendRedis {
		return cache.NewRedisCache(ctx, cache.RedisConfig{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
			Prefix:   cfg.Redis.Prefix,
		})
	}
	dir := cfg.Dir
	if dir == "" {
		var err error
		if dir, err = cacheDir(); err != nil {
			c.Logger.Debug("no cache directory, caching disabled", "err", err)
			return cache.NewNullCache(), nil
		}
	}
	return cache.NewFileCache(dir)
}

// newStore opens the run archive; nil means archiving is disabled.
func (c *CLI) newStore(ctx context.Context) (store.Store, error) {
	cfg := c.Config.Store
	switch cfg.Backend {
	case config.BackendNone:
		return nil, nil
	case config.BackendMongo:
		return store.NewMongoStore(ctx, store.MongoConfig{
			URI:        cfg.Mongo.URI,
			Database:   cfg.Mongo.Database,
			Collection: cfg.Mongo.Collection,
		})
	}
	return store.NewFileStore(cfg.Dir)
}

// =============================================================================
// Paths
// =============================================================================

// cacheDir returns the cache directory using XDG standard (~/.cache/slambuc/).
func cacheDir() (string, error) {
	if cacheHome := os.Getenv("XDG_CACHE_HOME"); cacheHome != "" {
		return filepath.Join(cacheHome, appName), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".cache", appName), nil
}

// =============================================================================
// Output Helpers
// =============================================================================

// parseFormats parses a comma-separated format string into a slice.
func parseFormats(s string) []string {
	if s == "" {
		return nil
	}
	formats := strings.Split(s, ",")
	for i := range formats {
		formats[i] = strings.TrimSpace(formats[i])
	}
	return formats
}

// writeArtifacts writes rendered diagrams. A single format goes to output
// as given; several formats use output as the base name.
func writeArtifacts(artifacts map[string][]byte, formats []string, output string) ([]string, error) {
	var paths []string
	for _, f := range formats {
		data, ok := artifacts[f]
		if !ok {
			continue
		}
		path := output + "." + f
		if len(formats) == 1 && filepath.Ext(output) != "" {
			path = output
		}
		if err := os.WriteFile(path, data, 0o644); err != nil {
			return paths, fmt.Errorf("write %s: %w", path, err)
		}
		paths = append(paths, path)
	}
	return paths, nil
}

// defaultOutput derives the artifact base name from the input file.
func defaultOutput(input, suffix string) string {
	base := strings.TrimSuffix(input, filepath.Ext(input))
	return base + "_" + suffix
}

func validateFormats(formats []string) error {
	for _, f := range formats {
		if err := render.ValidateFormat(f); err != nil {
			return err
		}
	}
	return nil
}
