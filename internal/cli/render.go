package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/matzehuels/sptree/pkg/pipeline"
	"github.com/matzehuels/sptree/pkg/render"
)

// renderOpts holds the command-line flags for the render command.
type renderOpts struct {
	output    string // output file path; "-" writes to stdout
	format    string // dot, svg, pdf or png
	root      int    // primary root
	root2     int    // secondary root
	maxLabels int    // depth labels are drawn up to this many vertices
	secondary bool   // also draw the secondary tree
}

// renderCommand creates the render command.
func (c *CLI) renderCommand() *cobra.Command {
	var src sourceFlags
	opts := renderOpts{format: render.FormatSVG}

	cmd := &cobra.Command{
		Use:   "render [graph]",
		Short: "Draw a graph and its shortest-path tree",
		Long: `Draw a graph and its shortest-path tree.

Vertices sit at their stored positions and are coloured by the depth
difference between the two roots: green near the primary root, red near the
secondary root. Primary tree edges are drawn in orange. Small graphs get
depth labels.

DOT output is produced directly; SVG goes through Graphviz, and PDF and PNG
additionally need rsvg-convert on the PATH. Results are cached locally.`,
		Example: `  sptree render graph.txt --root2 40 -o graph.svg
  sptree render -n 200 -f dot -o - | dot -Kneato -n -Tpng > g.png`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := render.ValidateFormat(opts.format); err != nil {
				return err
			}
			if !cmd.Flags().Changed("max-labels") {
				opts.maxLabels = c.Config.Render.MaxLabels
			}
			if !cmd.Flags().Changed("secondary-tree") {
				opts.secondary = c.Config.Render.Secondary
			}
			p := src.options(cmd, c.Config, args)
			p.Root, p.Root2 = opts.root, opts.root2
			p.Format = opts.format
			p.MaxLabels = opts.maxLabels
			p.SecondaryTree = opts.secondary
			return c.runRender(cmd.Context(), p, src.noCache, opts.output)
		},
	}

	src.register(cmd)
	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "output file (default: input name with the format extension)")
	cmd.Flags().StringVarP(&opts.format, "format", "f", opts.format, "output format: dot, svg, pdf, png")
	cmd.Flags().IntVar(&opts.root, "root", 0, "primary root vertex")
	cmd.Flags().IntVar(&opts.root2, "root2", 0, "secondary root vertex")
	cmd.Flags().IntVar(&opts.maxLabels, "max-labels", 0, "label depths on graphs up to this size (negative disables)")
	cmd.Flags().BoolVar(&opts.secondary, "secondary-tree", false, "also draw the secondary tree")

	return cmd
}

func (c *CLI) runRender(ctx context.Context, opts pipeline.Options, noCache bool, output string) error {
	runner, err := c.newRunner(noCache)
	if err != nil {
		return fmt.Errorf("initialize runner: %w", err)
	}
	defer runner.Close()

	toStdout := output == "-"
	spinner := newSpinner(ctx, "Loading graph...")
	if !toStdout {
		spinner.Start()
		defer spinner.Stop()
	}

	g, err := runner.Load(ctx, opts)
	if err != nil {
		return fmt.Errorf("load: %w", err)
	}

	spinner.SetMessage(fmt.Sprintf("Rendering %s...", opts.Format))
	data, cacheHit, err := runner.RenderWithCacheInfo(ctx, g, opts)
	if err != nil {
		return fmt.Errorf("render: %w", err)
	}

	if toStdout {
		_, err := os.Stdout.Write(data)
		return err
	}
	spinner.Stop()

	if output == "" {
		output = defaultOutput(opts.Input, opts.Format)
	}
	if err := os.WriteFile(output, data, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", output, err)
	}

	printSuccess("Rendered %s", opts.Format)
	printStats(g.Len(), g.EdgeCount(), cacheHit)
	printFile(output)
	return nil
}
