package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/matzehuels/sptree/pkg/pipeline"
)

// generateCommand creates the generate command.
func (c *CLI) generateCommand() *cobra.Command {
	var (
		src    sourceFlags
		output string
	)

	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Generate a random planar graph",
		Long: `Generate a random planar graph.

Points are sampled uniformly from a disk, Delaunay-triangulated and scaled
onto a square canvas. The result is written as text records (one line per
vertex: neighbor ids followed by x and y) or as JSON when the output file
ends in .json. Without -o the records go to stdout.

Generated graphs are cached by their options, so the same seed is only
triangulated once.`,
		Example: `  sptree generate -n 500 --seed 7 -o graph.txt
  sptree generate -n 50 | head`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runGenerate(cmd.Context(), src.options(cmd, c.Config, nil), src.noCache, output)
		},
	}

	src.register(cmd)
	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (.txt or .json); stdout if empty")

	return cmd
}

func (c *CLI) runGenerate(ctx context.Context, opts pipeline.Options, noCache bool, output string) error {
	runner, err := c.newRunner(noCache)
	if err != nil {
		return fmt.Errorf("initialize runner: %w", err)
	}
	defer runner.Close()

	g, cacheHit, err := runner.LoadWithCacheInfo(ctx, opts)
	if err != nil {
		return fmt.Errorf("generate: %w", err)
	}

	if err := writeGraph(g, output); err != nil {
		return err
	}
	if output == "" {
		return nil
	}

	printSuccess("Generated %d points (seed %d)", opts.Generate.N, opts.Generate.Seed)
	printStats(g.Len(), g.EdgeCount(), cacheHit)
	printFile(output)
	printNewline()
	printNextStep("Analyze it", fmt.Sprintf("%s analyze %s --root2 %d", appName, output, g.Len()-1))
	return nil
}
