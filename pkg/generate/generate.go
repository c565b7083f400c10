// Package generate produces random planar graphs: points sampled uniformly
// in the unit disk, connected by their Delaunay triangulation and scaled onto
// an integer canvas.
//
// The generator is the default graph source when no saved graph is given:
//
//	g, err := generate.Generate(generate.Options{N: 500, Seed: 1})
//
// A triangulation that loses input points (coincident samples) violates the
// generator's invariant and is reported as TRIANGULATION_INVARIANT. There is
// no recovery path; callers abort generation.
package generate

import (
	"maps"
	"math"
	"math/rand/v2"
	"slices"

	errs "github.com/matzehuels/sptree/pkg/errors"
	"github.com/matzehuels/sptree/pkg/planar"
)

// Defaults used when Options fields are zero.
const (
	DefaultN      = 5000
	DefaultCanvas = 1024
	DefaultMargin = 25
)

// Options configures [Generate].
type Options struct {
	N      int    `json:"n" toml:"points"`
	Seed   uint64 `json:"seed" toml:"seed"`
	Canvas int    `json:"canvas" toml:"canvas"`
	Margin int    `json:"margin" toml:"margin"`
}

// SetDefaults fills zero-valued fields.
func (o *Options) SetDefaults() {
	if o.N == 0 {
		o.N = DefaultN
	}
	if o.Canvas == 0 {
		o.Canvas = DefaultCanvas
	}
	if o.Margin == 0 {
		o.Margin = DefaultMargin
	}
}

// Validate checks the options after defaults are applied.
func (o Options) Validate() error {
	if err := errs.ValidatePointCount(o.N); err != nil {
		return err
	}
	return errs.ValidateCanvas(o.Canvas, o.Margin)
}

// NewRand returns the generator's deterministic source for seed.
func NewRand(seed uint64) *rand.Rand {
	return rand.New(rand.NewPCG(seed, seed^0x5eed5eed))
}

// SamplePoint draws a point uniformly inside the open unit disk by rejection
// from the square [-1, 1]².
func SamplePoint(rng *rand.Rand) planar.Point {
	for {
		x := 2*rng.Float64() - 1
		y := 2*rng.Float64() - 1
		if x*x+y*y < 1 {
			return planar.Point{X: x, Y: y}
		}
	}
}

// SamplePoints draws n independent points with [SamplePoint].
func SamplePoints(rng *rand.Rand, n int) []planar.Point {
	out := make([]planar.Point, n)
	for i := range out {
		out[i] = SamplePoint(rng)
	}
	return out
}

// Adjacency triangulates points and returns the undirected adjacency of the
// triangulation, one ascending neighbor list per point.
//
// Returns TRIANGULATION_INVARIANT if the triangulation does not account for
// every input point.
func Adjacency(points []planar.Point) ([][]int, error) {
	tri, err := Triangulate(points)
	if err != nil {
		return nil, err
	}
	if tri.NPoints != len(points) {
		return nil, errs.New(errs.ErrCodeTriangulationInvariant,
			"triangulation covers %d of %d points", tri.NPoints, len(points))
	}

	sets := make([]map[int]struct{}, len(points))
	for i := range sets {
		sets[i] = make(map[int]struct{})
	}
	for _, t := range tri.Triangles {
		for i := 0; i < 3; i++ {
			u, v := t[i], t[(i+1)%3]
			sets[u][v] = struct{}{}
			sets[v][u] = struct{}{}
		}
	}

	adj := make([][]int, len(points))
	for i, s := range sets {
		adj[i] = slices.Sorted(maps.Keys(s))
	}
	return adj, nil
}

// ScaleToCanvas maps points onto a size×size canvas with the given margin,
// using one scale for both axes and truncating to integer coordinates.
func ScaleToCanvas(points []planar.Point, size, margin int) []planar.Point {
	if len(points) == 0 {
		return nil
	}
	a, b := math.Inf(1), math.Inf(-1)
	for _, p := range points {
		a = math.Min(a, math.Min(p.X, p.Y))
		b = math.Max(b, math.Max(p.X, p.Y))
	}
	scale := 0.0
	if b > a {
		scale = float64(size-2*margin) / (b - a)
	}

	out := make([]planar.Point, len(points))
	for i, p := range points {
		out[i] = planar.Point{
			X: float64(margin + int((p.X-a)*scale)),
			Y: float64(margin + int((p.Y-a)*scale)),
		}
	}
	return out
}

// Generate samples opts.N disk points, triangulates them and returns the
// resulting graph with positions scaled onto the canvas.
func Generate(opts Options) (*planar.Graph, error) {
	opts.SetDefaults()
	if err := opts.Validate(); err != nil {
		return nil, err
	}

	points := SamplePoints(NewRand(opts.Seed), opts.N)
	adj, err := Adjacency(points)
	if err != nil {
		return nil, err
	}
	pos := ScaleToCanvas(points, opts.Canvas, opts.Margin)

	records := make([]planar.Record, len(points))
	for i := range records {
		records[i] = planar.Record{Neighbors: adj[i], Position: pos[i]}
	}
	g := planar.New()
	if err := g.Load(records); err != nil {
		return nil, err
	}
	return g, nil
}
