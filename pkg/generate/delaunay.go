package generate

import (
	"math"

	"github.com/matzehuels/sptree/pkg/planar"
)

// Triangulation is a Delaunay triangulation of a point set.
type Triangulation struct {
	// NPoints is the number of input points that were inserted. Coincident
	// points are inserted once, so NPoints < len(points) signals duplicates.
	NPoints int
	// Triangles holds each simplex as three indices into the input slice,
	// in counter-clockwise order.
	Triangles [][3]int
}

// triangle is counter-clockwise. When c is the ghost vertex it stands for
// the outer region beyond the hull edge a→b.
type triangle struct {
	a, b, c int
	cx, cy  float64
	r2      float64
}

// Triangulate computes the Delaunay triangulation of points with the
// Bowyer-Watson algorithm. Hull edges are closed off by ghost triangles
// joined to a vertex at infinity, so the result always covers the convex
// hull. It runs in O(n²) and is intended for the point counts produced by
// the generator.
//
// Fewer than three distinct points, or points that all lie on one line,
// yield no triangles.
func Triangulate(points []planar.Point) (*Triangulation, error) {
	n := len(points)
	ghost := n

	seen := make(map[planar.Point]bool, n)
	order := make([]int, 0, n)
	for i, p := range points {
		if !seen[p] {
			seen[p] = true
			order = append(order, i)
		}
	}
	out := &Triangulation{NPoints: len(order)}

	a, b, c, ok := seedTriangle(points, order)
	if !ok {
		return out, nil
	}
	tris := []triangle{
		circumscribe(points, a, b, c),
		{a: b, b: a, c: ghost},
		{a: c, b: b, c: ghost},
		{a: a, b: c, c: ghost},
	}

	for _, i := range order {
		if i == a || i == b || i == c {
			continue
		}
		p := points[i]

		// The cavity boundary is every directed edge of a removed triangle
		// whose reverse was not removed too.
		var edges [][2]int
		removed := make(map[[2]int]bool)
		kept := tris[:0]
		for _, t := range tris {
			if !t.conflicts(points, ghost, p) {
				kept = append(kept, t)
				continue
			}
			for _, e := range [][2]int{{t.a, t.b}, {t.b, t.c}, {t.c, t.a}} {
				edges = append(edges, e)
				removed[e] = true
			}
		}
		tris = kept
		for _, e := range edges {
			u, v := e[0], e[1]
			if removed[[2]int{v, u}] {
				continue
			}
			switch {
			case v == ghost:
				tris = append(tris, triangle{a: i, b: u, c: ghost})
			case u == ghost:
				tris = append(tris, triangle{a: v, b: i, c: ghost})
			default:
				tris = append(tris, circumscribe(points, u, v, i))
			}
		}
	}

	for _, t := range tris {
		if t.c != ghost {
			out.Triangles = append(out.Triangles, [3]int{t.a, t.b, t.c})
		}
	}
	return out, nil
}

// seedTriangle picks the first two distinct points and the first point not
// on their line, ordered counter-clockwise.
func seedTriangle(points []planar.Point, order []int) (a, b, c int, ok bool) {
	if len(order) < 3 {
		return 0, 0, 0, false
	}
	a, b = order[0], order[1]
	for _, k := range order[2:] {
		o := orient(points[a], points[b], points[k])
		if o == 0 {
			continue
		}
		if o < 0 {
			a, b = b, a
		}
		return a, b, k, true
	}
	return 0, 0, 0, false
}

// conflicts reports whether p lies inside the circumcircle of t. For a ghost
// triangle that is the open half-plane beyond its hull edge plus the open
// edge itself.
func (t triangle) conflicts(points []planar.Point, ghost int, p planar.Point) bool {
	if t.c != ghost {
		dx, dy := p.X-t.cx, p.Y-t.cy
		return dx*dx+dy*dy < t.r2
	}
	a, b := points[t.a], points[t.b]
	if o := orient(a, b, p); o != 0 {
		return o > 0
	}
	return (p.X-a.X)*(p.X-b.X)+(p.Y-a.Y)*(p.Y-b.Y) < 0
}

// orient is positive when a, b, c turn counter-clockwise.
func orient(a, b, c planar.Point) float64 {
	return (b.X-a.X)*(c.Y-a.Y) - (b.Y-a.Y)*(c.X-a.X)
}

// circumscribe builds the triangle (a, b, c) with its circumcircle.
// Degenerate triangles get an unbounded circle so the next insertion
// replaces them.
func circumscribe(points []planar.Point, a, b, c int) triangle {
	ax, ay := points[a].X, points[a].Y
	bx, by := points[b].X-ax, points[b].Y-ay
	cx, cy := points[c].X-ax, points[c].Y-ay

	t := triangle{a: a, b: b, c: c}
	d := 2 * (bx*cy - by*cx)
	if d == 0 {
		t.cx, t.cy, t.r2 = ax, ay, math.Inf(1)
		return t
	}
	b2 := bx*bx + by*by
	c2 := cx*cx + cy*cy
	ux := (cy*b2 - by*c2) / d
	uy := (bx*c2 - cx*b2) / d
	t.cx, t.cy = ax+ux, ay+uy
	t.r2 = ux*ux + uy*uy
	return t
}
