// Package io reads and writes graphs in the plain-text record format.
//
// # Format
//
// A graph file holds one line per vertex. The line index is the vertex id and
// each line lists whitespace-separated integers:
//
//	n1 n2 ... nk x y
//
// where n1..nk are the ids of the vertex's neighbors, in any order, and x y
// is its integer position. There is no header and no count field; the vertex
// count is the number of lines. A three-vertex triangle looks like:
//
//	1 2 100 100
//	0 2 200 100
//	0 1 150 180
//
// Neighbor order is not significant. [planar.Graph.Load] re-sorts every list
// angularly, so a file written by [WriteRecords] and read back by
// [ReadRecords] reproduces the same adjacency sets and positions.
//
// # Errors
//
// Lines with fewer than two tokens or with non-integer tokens are rejected
// with MALFORMED_RECORD naming the 1-based line number. Trailing blank lines
// are ignored. Structural problems (ids out of range, self-loops, one-sided
// edges) are reported by the graph store when the records are loaded.
//
// # Files
//
// [ImportFile] and [ExportFile] are convenience wrappers around the reader
// and writer for paths on disk.
package io
