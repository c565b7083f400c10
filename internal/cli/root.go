// Package cli implements the sptree command-line interface.
//
// The commands generate planar graphs, build shortest-path forests from one
// or two roots, render the result, edit graph files, explore a graph
// interactively and serve the HTTP API. The CLI is built using cobra and
// logs via the charmbracelet/log library.
//
// # Commands
//
//   - generate: Sample and triangulate a random planar graph
//   - analyze: Build both forests and summarize depths and their difference
//   - depth: Query the depth of individual vertices
//   - render: Draw the graph and its tree as DOT, SVG, PDF or PNG
//   - edit: Add vertices and edges to a graph file
//   - explore: Pick roots interactively in the terminal
//   - graphs: Manage saved graphs
//   - serve: Run the HTTP API
//   - cache, config: Inspect local state
//
// Commands without a graph file argument work on a generated graph whose
// options come from the [generate] section of the configuration file.
//
// # Logging
//
// All commands support --verbose (-v) for debug-level logging.
package cli

import (
	"github.com/spf13/cobra"

	"github.com/matzehuels/sptree/pkg/buildinfo"
)

// RootCommand creates the root cobra command with all subcommands registered.
// The configuration file is loaded before any subcommand runs.
func (c *CLI) RootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:          appName,
		Short:        "sptree builds shortest-path trees over planar graphs",
		Long:         `sptree generates planar graphs, builds breadth-first shortest-path forests from one or two roots, and shows where the two depth fields agree and differ.`,
		Version:      buildinfo.Version,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return c.loadConfig()
		},
	}

	root.SetVersionTemplate(buildinfo.Template())
	root.PersistentFlags().StringVar(&c.configPath, "config", "", "config file (default $XDG_CONFIG_HOME/sptree/config.toml)")

	// Register all subcommands
	root.AddCommand(c.generateCommand())
	root.AddCommand(c.analyzeCommand())
	root.AddCommand(c.depthCommand())
	root.AddCommand(c.renderCommand())
	root.AddCommand(c.editCommand())
	root.AddCommand(c.exploreCommand())
	root.AddCommand(c.graphsCommand())
	root.AddCommand(c.serveCommand())
	root.AddCommand(c.cacheCommand())
	root.AddCommand(c.configCommand())
	root.AddCommand(c.completionCommand())

	return root
}
