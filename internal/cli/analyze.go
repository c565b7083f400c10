package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/matzehuels/sptree/pkg/pipeline"
)

// analyzeCommand creates the analyze command.
func (c *CLI) analyzeCommand() *cobra.Command {
	var (
		src    sourceFlags
		root   int
		root2  int
		asJSON bool
		hist   bool
	)

	cmd := &cobra.Command{
		Use:   "analyze [graph]",
		Short: "Build shortest-path forests from two roots",
		Long: `Build shortest-path forests from two roots.

The primary forest gives every vertex its hop distance from --root; the
secondary forest does the same from --root2. The summary reports how far
each forest reaches and how the depth difference (primary minus secondary)
is distributed. Vertices with difference zero lie on the bisector between
the two roots.

Without a graph file a graph is generated from the [generate] config section
and the -n/--seed flags.`,
		Example: `  sptree analyze graph.txt --root 0 --root2 41
  sptree analyze -n 1000 --root2 999 --histogram
  sptree analyze graph.json --json > report.json`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts := src.options(cmd, c.Config, args)
			opts.Root, opts.Root2 = root, root2
			return c.runAnalyze(cmd.Context(), opts, src.noCache, asJSON, hist)
		},
	}

	src.register(cmd)
	cmd.Flags().IntVar(&root, "root", 0, "primary root vertex")
	cmd.Flags().IntVar(&root2, "root2", 0, "secondary root vertex")
	cmd.Flags().BoolVar(&asJSON, "json", false, "print the full report as JSON")
	cmd.Flags().BoolVar(&hist, "histogram", false, "print the distribution of depth differences")

	return cmd
}

func (c *CLI) runAnalyze(ctx context.Context, opts pipeline.Options, noCache, asJSON, hist bool) error {
	runner, err := c.newRunner(noCache)
	if err != nil {
		return fmt.Errorf("initialize runner: %w", err)
	}
	defer runner.Close()

	result, err := runner.Execute(ctx, opts)
	if err != nil {
		return err
	}
	report := result.Report

	if asJSON {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(report)
	}

	printSuccess("Analyzed %s", opts.Source())
	printStats(report.Vertices, report.Edges, result.CacheInfo.AnalyzeHit)
	printNewline()
	printKeyValue("Primary", forestSummary(report.Primary.Root, report.Primary.Reached, report.Primary.Height, report.Vertices))
	printKeyValue("Secondary", forestSummary(report.Secondary.Root, report.Secondary.Reached, report.Secondary.Height, report.Vertices))
	printKeyValue("Difference", fmt.Sprintf("%d .. %d (%d on the bisector)",
		report.Diff.Min, report.Diff.Max, countZero(report.Diff.Values)))

	if hist {
		printNewline()
		printHistogram(report.Diff.Values)
	}
	return nil
}

func forestSummary(root, reached, height, n int) string {
	return fmt.Sprintf("root %d, reaches %d/%d, height %d", root, reached, n, height)
}

func countZero(values []int) int {
	n := 0
	for _, v := range values {
		if v == 0 {
			n++
		}
	}
	return n
}
