package cli

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	errs "github.com/matzehuels/sptree/pkg/errors"
	"github.com/matzehuels/sptree/pkg/planar"
	"github.com/matzehuels/sptree/pkg/session"
)

// editCommand creates the edit command.
func (c *CLI) editCommand() *cobra.Command {
	var (
		vertices []string
		edges    []string
		reset    bool
		output   string
	)

	cmd := &cobra.Command{
		Use:   "edit <graph>",
		Short: "Add vertices and edges to a graph file",
		Long: `Add vertices and edges to a graph file.

Edits apply in order: --reset first, then every --add-vertex, then every
--add-edge. New vertices take the next free ids, so an edge may refer to a
vertex added by the same command. The graph is written back in place unless
-o is given. A file that does not exist yet starts out empty.`,
		Example: `  sptree edit graph.txt --add-vertex 100,200 --add-edge 0,42
  sptree edit new.txt --add-vertex 0,0 --add-vertex 10,0 --add-edge 0,1`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if output == "" {
				output = args[0]
			}
			return c.runEdit(args[0], output, reset, vertices, edges)
		},
	}

	cmd.Flags().StringArrayVar(&vertices, "add-vertex", nil, "add a vertex at x,y (repeatable)")
	cmd.Flags().StringArrayVar(&edges, "add-edge", nil, "add an edge u,v (repeatable)")
	cmd.Flags().BoolVar(&reset, "reset", false, "start from an empty graph")
	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (default: overwrite the input)")

	return cmd
}

func (c *CLI) runEdit(input, output string, reset bool, vertices, edges []string) error {
	prog := newProgress(c.Logger)

	g, err := readGraph(input)
	switch {
	case errs.Is(err, errs.ErrCodeFileNotFound):
		g = planar.New()
	case err != nil:
		return err
	}

	s := session.NewWithGraph(g, c.Logger)
	if reset {
		s.Reset()
	}
	for _, v := range vertices {
		x, y, err := parsePair(v, strconv.ParseFloat)
		if err != nil {
			return fmt.Errorf("--add-vertex %q: %w", v, err)
		}
		if err := errs.ValidateGridPoint(x, y); err != nil {
			return fmt.Errorf("--add-vertex %q: %w", v, err)
		}
		id := s.AddVertex(planar.Point{X: x, Y: y})
		c.Logger.Debug("added vertex", "id", id, "x", x, "y", y)
	}
	for _, e := range edges {
		u, w, err := parsePair(e, parseInt)
		if err != nil {
			return fmt.Errorf("--add-edge %q: %w", e, err)
		}
		if err := s.AddEdge(u, w); err != nil {
			return fmt.Errorf("--add-edge %q: %w", e, err)
		}
		c.Logger.Debug("added edge", "from", u, "to", w)
	}

	if err := writeGraph(s.Graph(), output); err != nil {
		return err
	}
	prog.done(fmt.Sprintf("Applied %d edits", len(vertices)+len(edges)))
	printSuccess("Wrote %d vertices", s.Len())
	printFile(output)
	return nil
}

// parsePair splits "a,b" and parses both halves with parse.
func parsePair[T any](s string, parse func(string, int) (T, error)) (T, T, error) {
	var zero T
	a, b, ok := strings.Cut(s, ",")
	if !ok {
		return zero, zero, errs.New(errs.ErrCodeInvalidInput, "expected two comma-separated values")
	}
	x, err := parse(strings.TrimSpace(a), 64)
	if err != nil {
		return zero, zero, errs.Wrap(errs.ErrCodeInvalidInput, err, "first value")
	}
	y, err := parse(strings.TrimSpace(b), 64)
	if err != nil {
		return zero, zero, errs.Wrap(errs.ErrCodeInvalidInput, err, "second value")
	}
	return x, y, nil
}

func parseInt(s string, bitSize int) (int, error) {
	v, err := strconv.ParseInt(s, 10, bitSize)
	return int(v), err
}
