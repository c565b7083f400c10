package cli

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/matzehuels/sptree/pkg/cache"
	"github.com/matzehuels/sptree/pkg/config"
	"github.com/matzehuels/sptree/pkg/generate"
	"github.com/matzehuels/sptree/pkg/graph"
	sptreeio "github.com/matzehuels/sptree/pkg/io"
	"github.com/matzehuels/sptree/pkg/pipeline"
	"github.com/matzehuels/sptree/pkg/planar"
	"github.com/matzehuels/sptree/pkg/storage"
)

// =============================================================================
// Constants
// =============================================================================

// appName is the application name used for directories and display.
const appName = config.AppName

// Log levels exported for use in main.go.
const (
	LogDebug = log.DebugLevel
	LogInfo  = log.InfoLevel
	LogWarn  = log.WarnLevel
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

// New creates a new CLI instance with a default logger and configuration.
// The configuration file is read when a command runs.
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

// loadConfig reads the --config file, or the default one if it exists.
func (c *CLI) loadConfig() error {
	cfg, err := config.Load(c.configPath)
	if err != nil {
		return err
	}
	c.Config = cfg
	return nil
}

// =============================================================================
// Runner Factory
// =============================================================================

// newRunner creates a pipeline runner for CLI use.
func (c *CLI) newRunner(noCache bool) (*pipeline.Runner, error) {
	cache, err := c.newCache(noCache)
	if err != nil {
		return nil, err
	}
	return pipeline.NewRunner(cache, nil, c.Logger), nil
}

func (c *CLI) newCache(noCache bool) (cache.Cache, error) {
	if noCache || c.Config.Cache.Disabled {
		return cache.NewNullCache(), nil
	}
	dir, err := c.cacheDir()
	if err != nil {
		return cache.NewNullCache(), nil
	}
	return cache.NewFileCache(dir)
}

// newGraphStore opens the local store of named graphs.
func (c *CLI) newGraphStore() (*storage.FileStore, error) {
	dir, err := c.Config.StorageDir()
	if err != nil {
		return nil, fmt.Errorf("get storage dir: %w", err)
	}
	return storage.NewFileStore(dir)
}

// =============================================================================
// Paths
// =============================================================================

// cacheDir returns the cache directory: [cache] dir from the config, or the
// XDG default (~/.cache/sptree/).
func (c *CLI) cacheDir() (string, error) {
	return c.Config.CacheDir()
}

// defaultOutput derives an output path from the input file name, or from
// the app name for generated graphs.
func defaultOutput(input, ext string) string {
	if input == "" {
		return appName + "." + ext
	}
	base := filepath.Base(input)
	return base[:len(base)-len(filepath.Ext(base))] + "." + ext
}

// =============================================================================
// Graph Source Flags
// =============================================================================

// sourceFlags selects the graph a command works on: an input file, or a
// generated graph whose options default to the [generate] config section.
type sourceFlags struct {
	gen     generate.Options
	noCache bool
	refresh bool
}

func (f *sourceFlags) register(cmd *cobra.Command) {
	cmd.Flags().IntVarP(&f.gen.N, "points", "n", 0, "number of points to generate when no file is given")
	cmd.Flags().Uint64Var(&f.gen.Seed, "seed", 0, "random seed for generated graphs")
	cmd.Flags().IntVar(&f.gen.Canvas, "canvas", 0, "canvas size for generated graphs")
	cmd.Flags().IntVar(&f.gen.Margin, "margin", 0, "canvas margin for generated graphs")
	cmd.Flags().BoolVar(&f.noCache, "no-cache", false, "disable caching")
	cmd.Flags().BoolVar(&f.refresh, "refresh", false, "recompute even if cached")
}

// options builds pipeline options. Generator flags left unset take the
// configured values.
func (f *sourceFlags) options(cmd *cobra.Command, cfg config.Config, args []string) pipeline.Options {
	opts := pipeline.Options{Refresh: f.refresh}
	if len(args) > 0 {
		opts.Input = args[0]
		return opts
	}
	gen := cfg.Generate
	flags := cmd.Flags()
	if flags.Changed("points") {
		gen.N = f.gen.N
	}
	if flags.Changed("seed") {
		gen.Seed = f.gen.Seed
	}
	if flags.Changed("canvas") {
		gen.Canvas = f.gen.Canvas
	}
	if flags.Changed("margin") {
		gen.Margin = f.gen.Margin
	}
	opts.Generate = gen
	return opts
}

// =============================================================================
// Graph Files
// =============================================================================

// writeGraph writes g to path as JSON or text records, chosen by extension.
// An empty path writes text records to stdout.
func writeGraph(g *planar.Graph, path string) error {
	if path == "" {
		return sptreeio.WriteGraph(g, os.Stdout)
	}
	if graph.FormatForPath(path) == graph.FormatJSON {
		return graph.WriteGraphFile(g, path)
	}
	return sptreeio.ExportFile(g, path)
}

// readGraph loads a graph file of either format.
func readGraph(path string) (*planar.Graph, error) {
	return pipeline.Load(pipeline.Options{Input: path})
}
