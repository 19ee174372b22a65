package octree

import (
	"github.com/golang/geo/r3"
)

// Corner offsets of a unit box in octant order (x<<2 | y<<1 | z).
var boxCorners = [8]r3.Vector{
	{0, 0, 0},
	{0, 0, 1},
	{0, 1, 0},
	{0, 1, 1},
	{1, 0, 0},
	{1, 0, 1},
	{1, 1, 0},
	{1, 1, 1},
}

// The 12 edges of a box, as pairs of corner indices (corners differing in
// exactly one coordinate).
var boxEdgeIndices = [12][2]int{
	{0, 1}, {2, 3}, {4, 5}, {6, 7},
	{0, 2}, {1, 3}, {4, 6}, {5, 7},
	{0, 4}, {1, 5}, {2, 6}, {3, 7},
}

// BoundingBox is an axis-aligned bounding volume described by its minimum
// corner and per-axis size.
type BoundingBox struct {
	Min  r3.Vector
	Size r3.Vector
}

// Center returns the center of the box.
func (bb BoundingBox) Center() r3.Vector {
	return bb.Min.Add(bb.Size.Mul(0.5))
}

// Max returns the maximum corner of the box.
func (bb BoundingBox) Max() r3.Vector {
	return bb.Min.Add(bb.Size)
}

// Contains reports if the given point lies within the box, boundary included.
func (bb BoundingBox) Contains(p r3.Vector) bool {
	max := bb.Max()
	return p.X >= bb.Min.X && p.X <= max.X &&
		p.Y >= bb.Min.Y && p.Y <= max.Y &&
		p.Z >= bb.Min.Z && p.Z <= max.Z
}

// Corner returns the corner of the box at the given octant index.
func (bb BoundingBox) Corner(octant int) r3.Vector {
	c := boxCorners[octant]
	return r3.Vector{
		X: bb.Min.X + c.X*bb.Size.X,
		Y: bb.Min.Y + c.Y*bb.Size.Y,
		Z: bb.Min.Z + c.Z*bb.Size.Z,
	}
}

// Edges returns the 12 edges of the box as pairs of corner points, usable as
// a wireframe of the volume.
func (bb BoundingBox) Edges() [12][2]r3.Vector {
	var edges [12][2]r3.Vector
	for i, e := range boxEdgeIndices {
		edges[i][0] = bb.Corner(e[0])
		edges[i][1] = bb.Corner(e[1])
	}
	return edges
}

// ChildBox returns the octant of the box selected by the given index. The
// index encodes the upper halves of the x, y and z axes in bits 2, 1 and 0
// respectively.
func (bb BoundingBox) ChildBox(octant int) BoundingBox {
	half := bb.Size.Mul(0.5)
	min := bb.Min
	if octant&4 != 0 {
		min.X += half.X
	}
	if octant&2 != 0 {
		min.Y += half.Y
	}
	if octant&1 != 0 {
		min.Z += half.Z
	}
	return BoundingBox{Min: min, Size: half}
}
