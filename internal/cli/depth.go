package cli

import (
	"context"
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	errs "github.com/matzehuels/sptree/pkg/errors"
	"github.com/matzehuels/sptree/pkg/pipeline"
)

// depthCommand creates the depth command.
func (c *CLI) depthCommand() *cobra.Command {
	var (
		noCache bool
		root    int
		root2   int
	)

	cmd := &cobra.Command{
		Use:   "depth <graph> <vertex>...",
		Short: "Print the depth of vertices",
		Long: `Print the depth of vertices.

For each vertex prints its id, its depth in the forest rooted at --root, and
its depth difference against the forest rooted at --root2, tab separated.
Vertices the primary root cannot reach have depth 0.`,
		Example: `  sptree depth graph.txt 5 17 --root 3`,
		Args:    cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			vertices, err := parseVertices(args[1:])
			if err != nil {
				return err
			}
			opts := pipeline.Options{Input: args[0], Root: root, Root2: root2}
			return c.runDepth(cmd.Context(), opts, noCache, vertices)
		},
	}

	cmd.Flags().IntVar(&root, "root", 0, "primary root vertex")
	cmd.Flags().IntVar(&root2, "root2", 0, "secondary root vertex")
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "disable caching")

	return cmd
}

func (c *CLI) runDepth(ctx context.Context, opts pipeline.Options, noCache bool, vertices []int) error {
	runner, err := c.newRunner(noCache)
	if err != nil {
		return fmt.Errorf("initialize runner: %w", err)
	}
	defer runner.Close()

	g, err := runner.Load(ctx, opts)
	if err != nil {
		return err
	}
	report, err := runner.Analyze(ctx, g, opts)
	if err != nil {
		return err
	}

	for _, v := range vertices {
		depth, err := report.Depth(v)
		if err != nil {
			return err
		}
		diff, err := report.DiffAt(v)
		if err != nil {
			return err
		}
		fmt.Printf("%d\t%d\t%d\n", v, depth, diff)
	}
	return nil
}

func parseVertices(args []string) ([]int, error) {
	out := make([]int, len(args))
	for i, a := range args {
		v, err := strconv.Atoi(a)
		if err != nil {
			return nil, errs.New(errs.ErrCodeInvalidVertexID, "vertex %q is not an integer", a)
		}
		out[i] = v
	}
	return out, nil
}
