package planar

import (
	"cmp"
	"math"
	"slices"
)

// Angle returns the polar angle of the direction from one point to another,
// in (-π, π].
func Angle(from, to Point) float64 {
	return math.Atan2(to.Y-from.Y, to.X-from.X)
}

// sortNeighbors orders v's neighbors by ascending angle around v.
// The sort is stable so coincident directions keep their prior order.
func (g *Graph) sortNeighbors(v int) {
	p := g.pos[v]
	slices.SortStableFunc(g.adj[v], func(a, b int) int {
		return cmp.Compare(Angle(p, g.pos[a]), Angle(p, g.pos[b]))
	})
}

// IsAngularlySorted reports whether v's neighbor list is in non-decreasing
// angle order. Unknown vertices report false.
func IsAngularlySorted(g *Graph, v int) bool {
	if !g.HasVertex(v) {
		return false
	}
	p := g.pos[v]
	return slices.IsSortedFunc(g.adj[v], func(a, b int) int {
		return cmp.Compare(Angle(p, g.pos[a]), Angle(p, g.pos[b]))
	})
}
