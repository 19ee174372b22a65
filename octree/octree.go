// Package octree implements an out-of-core octree of point cloud data for
// level-of-detail rendering. Each node owns a subset of the cloud's points
// and can materialize that subset into renderable batches through an external
// batch backend, release those batches back into raw point data, or discard
// them.
//
// One goroutine is assumed to own all tree mutation; the package performs no
// internal locking. Batch creation and removal allocate and free resources
// held by the batch backend, so they must run on whatever execution context
// owns that backend.
package octree

import (
	"image/color"

	"github.com/golang/geo/r3"
)

// A node's content moves between three states: no point data held, raw
// position/color data held, or data handed off to renderable batches. Raw
// points and live batches are never held at the same time.
const (
	ContentEmpty = ContentState(iota)
	ContentPoints
	ContentBatched
)

// ContentState represents the possible content states of an octree node.
type ContentState uint8

// Batch is an opaque handle to one renderable unit produced by a
// BatchBackend. The octree only stores handles and passes them back to the
// backend that produced them.
type Batch interface {
	// Name returns the name the batch was created under.
	Name() string
}

// BatchBackend turns point buffers into renderable batches and back. The
// data returned by ReleaseBatch must match what was passed to the
// corresponding CreateBatch in length and order.
type BatchBackend interface {
	// CreateBatch materializes the given paired point data as a renderable
	// batch under the given name.
	CreateBatch(name string, positions []r3.Vector, colors []color.NRGBA, bounds BoundingBox) (Batch, error)

	// ReleaseBatch frees the batch and yields back the point data it was
	// holding.
	ReleaseBatch(b Batch) ([]r3.Vector, []color.NRGBA, error)

	// MaxPointsPerBatch returns the largest point count the backend accepts
	// in a single batch.
	MaxPointsPerBatch() int
}
