package forest

import "slices"

// WalkDepth counts parent-pointer steps from v until a vertex without a
// parent. It returns 0 for roots, unreached vertices and unknown ids.
//
// The walk is O(depth) per call; use [Forest.Depth] when querying many
// vertices.
func WalkDepth(f *Forest, v int) int {
	d := 0
	for p := f.Parent(v); p != NoParent; p = f.Parent(p) {
		d++
	}
	return d
}

// Depth returns the BFS depth of v, or 0 for unreached vertices and unknown ids.
func (f *Forest) Depth(v int) int {
	if v < 0 || v >= len(f.depth) {
		return 0
	}
	return f.depth[v]
}

// Depths returns a copy of the depth of every vertex.
func (f *Forest) Depths() []int { return slices.Clone(f.depth) }
