package pipeline

import (
	"github.com/matzehuels/sptree/pkg/generate"
	"github.com/matzehuels/sptree/pkg/graph"
	sptreeio "github.com/matzehuels/sptree/pkg/io"
	"github.com/matzehuels/sptree/pkg/planar"
)

// Load reads opts.Input, choosing the codec by extension, or generates a
// graph when no input is given.
func Load(opts Options) (*planar.Graph, error) {
	if opts.Input == "" {
		return generate.Generate(opts.Generate)
	}
	if graph.FormatForPath(opts.Input) == graph.FormatJSON {
		return graph.ReadGraphFile(opts.Input)
	}
	return sptreeio.ImportFile(opts.Input)
}
