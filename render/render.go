// Package render provides a software implementation of the octree batch
// backend. It stands in for a GPU-bound mesh batcher: created batches hold
// their point data and can produce interleaved vertex buffers, and releasing
// a batch yields the original data back unchanged.
package render

import (
	"image/color"

	"github.com/edaniels/golog"
	"github.com/golang/geo/r3"
	"github.com/pkg/errors"

	"github.com/SatoshiRobatoFujimoto/BA-PointCloud/octree"
)

// DefaultMaxPointsPerBatch caps batches at the vertex limit of 16-bit mesh
// indices, the common ceiling in rendering systems this backend stands in
// for.
const DefaultMaxPointsPerBatch = 65535

// Floats per interleaved vertex: x, y, z, r, g, b.
const vertexStride = 6

// Backend is an in-memory octree.BatchBackend keyed by batch name.
type Backend struct {
	logger  golog.Logger
	maxSize int
	batches map[string]*VertexBatch
}

// NewBackend returns a backend accepting at most maxPointsPerBatch points
// per batch; a non-positive value selects DefaultMaxPointsPerBatch.
func NewBackend(maxPointsPerBatch int, logger golog.Logger) *Backend {
	if maxPointsPerBatch <= 0 {
		maxPointsPerBatch = DefaultMaxPointsPerBatch
	}
	return &Backend{
		logger:  logger,
		maxSize: maxPointsPerBatch,
		batches: map[string]*VertexBatch{},
	}
}

// VertexBatch is one renderable unit held by the backend.
type VertexBatch struct {
	name      string
	bounds    octree.BoundingBox
	positions []r3.Vector
	colors    []color.NRGBA
}

// Name returns the name the batch was created under.
func (vb *VertexBatch) Name() string {
	return vb.name
}

// Bounds returns the bounding volume the batch was created with.
func (vb *VertexBatch) Bounds() octree.BoundingBox {
	return vb.bounds
}

// Len returns the number of points in the batch.
func (vb *VertexBatch) Len() int {
	return len(vb.positions)
}

// Interleaved lays the batch out as an interleaved float32 vertex buffer
// (x, y, z, r, g, b per point, colors normalized to [0,1]), the form a GPU
// uploader would consume.
func (vb *VertexBatch) Interleaved() []float32 {
	verts := make([]float32, 0, len(vb.positions)*vertexStride)
	for i, p := range vb.positions {
		c := vb.colors[i]
		verts = append(verts,
			float32(p.X), float32(p.Y), float32(p.Z),
			float32(c.R)/255, float32(c.G)/255, float32(c.B)/255,
		)
	}
	return verts
}

// CreateBatch stores the given point data as a new batch. The name must not
// collide with a live batch and the sequences must pair up.
func (b *Backend) CreateBatch(
	name string,
	positions []r3.Vector,
	colors []color.NRGBA,
	bounds octree.BoundingBox,
) (octree.Batch, error) {
	if len(positions) != len(colors) {
		return nil, errors.Errorf("position/color length mismatch (%d vs %d)", len(positions), len(colors))
	}
	if len(positions) > b.maxSize {
		return nil, errors.Errorf("batch %q has %d points, cap is %d", name, len(positions), b.maxSize)
	}
	if _, ok := b.batches[name]; ok {
		return nil, errors.Errorf("batch %q already exists", name)
	}
	vb := &VertexBatch{name: name, bounds: bounds, positions: positions, colors: colors}
	b.batches[name] = vb
	b.logger.Debugf("created batch %q with %d points", name, len(positions))
	return vb, nil
}

// ReleaseBatch frees the batch and yields back the point data it was
// holding, in the order it was given.
func (b *Backend) ReleaseBatch(batch octree.Batch) ([]r3.Vector, []color.NRGBA, error) {
	vb, ok := batch.(*VertexBatch)
	if !ok {
		return nil, nil, errors.Errorf("unknown batch type %T", batch)
	}
	if _, ok := b.batches[vb.name]; !ok {
		return nil, nil, errors.Errorf("batch %q is not held by this backend", vb.name)
	}
	delete(b.batches, vb.name)
	b.logger.Debugf("released batch %q", vb.name)
	return vb.positions, vb.colors, nil
}

// MaxPointsPerBatch returns the backend's per-batch point cap.
func (b *Backend) MaxPointsPerBatch() int {
	return b.maxSize
}

// NumBatches returns the number of live batches.
func (b *Backend) NumBatches() int {
	return len(b.batches)
}

// TotalPoints returns the total point count across all live batches.
func (b *Backend) TotalPoints() int {
	total := 0
	for _, vb := range b.batches {
		total += vb.Len()
	}
	return total
}
