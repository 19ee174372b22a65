// Package pointcloud provides primitives for paired position/color point
// datasets: validation, bounds accumulation and the chunking arithmetic used
// to split a dataset into renderable batches.
package pointcloud

import (
	"image/color"
	"math"

	"github.com/golang/geo/r3"
	"github.com/pkg/errors"
)

// NewVector convenience method for creating a vector.
func NewVector(x, y, z float64) r3.Vector {
	return r3.Vector{X: x, Y: y, Z: z}
}

// ValidatePair checks that positions and colors form a usable point dataset:
// both present and of equal length. Index i of each sequence describes the
// same point.
func ValidatePair(positions []r3.Vector, colors []color.NRGBA) error {
	if positions == nil || colors == nil {
		return errors.New("positions and colors must both be provided")
	}
	if len(positions) != len(colors) {
		return errors.Errorf("position/color length mismatch (%d vs %d)", len(positions), len(colors))
	}
	return nil
}

// MetaData is accumulated bounds information about a set of points.
type MetaData struct {
	MinX, MaxX float64
	MinY, MaxY float64
	MinZ, MaxZ float64
}

// NewMetaData returns a new MetaData ready to be merged into.
func NewMetaData() MetaData {
	return MetaData{
		MinX: math.MaxFloat64,
		MinY: math.MaxFloat64,
		MinZ: math.MaxFloat64,
		MaxX: -math.MaxFloat64,
		MaxY: -math.MaxFloat64,
		MaxZ: -math.MaxFloat64,
	}
}

// Merge folds a point into the accumulated bounds.
func (meta *MetaData) Merge(v r3.Vector) {
	if v.X > meta.MaxX {
		meta.MaxX = v.X
	}
	if v.Y > meta.MaxY {
		meta.MaxY = v.Y
	}
	if v.Z > meta.MaxZ {
		meta.MaxZ = v.Z
	}

	if v.X < meta.MinX {
		meta.MinX = v.X
	}
	if v.Y < meta.MinY {
		meta.MinY = v.Y
	}
	if v.Z < meta.MinZ {
		meta.MinZ = v.Z
	}
}

// MergeAll folds every given point into the accumulated bounds.
func (meta *MetaData) MergeAll(positions []r3.Vector) {
	for _, p := range positions {
		meta.Merge(p)
	}
}

// MinCorner returns the minimum corner of the accumulated bounds.
func (meta *MetaData) MinCorner() r3.Vector {
	return r3.Vector{X: meta.MinX, Y: meta.MinY, Z: meta.MinZ}
}

// TotalSize returns the per-axis extent of the accumulated bounds, or the
// zero vector if nothing was merged.
func (meta *MetaData) TotalSize() r3.Vector {
	if meta.MaxX < meta.MinX {
		return r3.Vector{}
	}
	return r3.Vector{X: meta.MaxX - meta.MinX, Y: meta.MaxY - meta.MinY, Z: meta.MaxZ - meta.MinZ}
}
