package pipeline

import (
	"context"
	"fmt"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/sptree/pkg/planar"
	"github.com/matzehuels/sptree/pkg/render/nodelink"
)

// Render draws g with the roots, format and label options in opts.
func Render(ctx context.Context, g *planar.Graph, opts Options, logger *log.Logger) ([]byte, error) {
	v, err := View(g, opts.Root, opts.Root2, logger)
	if err != nil {
		return nil, err
	}
	data, err := nodelink.Render(ctx, v, opts.Format, opts.RenderOptions())
	if err != nil {
		return nil, fmt.Errorf("render %s: %w", opts.Format, err)
	}
	return data, nil
}
