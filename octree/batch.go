package octree

import (
	"fmt"
	"image/color"

	"github.com/golang/geo/r3"
	"github.com/pkg/errors"
	"go.uber.org/multierr"

	pc "github.com/SatoshiRobatoFujimoto/BA-PointCloud/pointcloud"
)

// batchName builds the renderable name for a node, optionally suffixed with
// a zero-based chunk index when the node's data spans several batches.
func batchName(dataset, address string, chunk, chunks int) string {
	name := fmt.Sprintf("%s/r%s", dataset, address)
	if chunks > 1 {
		name = fmt.Sprintf("%s/%d", name, chunk)
	}
	return name
}

// CreateBatches hands the node's point data to the backend as one or more
// renderable batches. Data fitting under maxPointsPerBatch becomes a single
// batch; larger datasets are split into consecutive chunks of the cap size,
// the last possibly smaller, preserving point order and pairing. On success
// the raw point data is released while the recorded point count is kept. A
// non-positive cap falls back to the backend's own limit.
//
// Fails with ErrNoPoints if the node holds no point data and with
// ErrBatchesExist if batches are already held; a backend failure rolls back
// any batches created so far and leaves the point data in place.
func (n *Node) CreateBatches(backend BatchBackend, maxPointsPerBatch int) error {
	switch n.state {
	case ContentBatched:
		return ErrBatchesExist
	case ContentEmpty:
		return ErrNoPoints
	case ContentPoints:
	}
	if maxPointsPerBatch <= 0 {
		maxPointsPerBatch = backend.MaxPointsPerBatch()
	}
	if maxPointsPerBatch <= 0 {
		return errors.Errorf("invalid max points per batch (%d)", maxPointsPerBatch)
	}

	ranges := pc.ChunkRanges(n.pointCount, maxPointsPerBatch)
	batches := make([]Batch, 0, len(ranges))
	for i, rng := range ranges {
		name := batchName(n.dataset, n.address, i, len(ranges))
		batch, err := backend.CreateBatch(name, n.positions[rng.Start:rng.End], n.colors[rng.Start:rng.End], n.bounds)
		if err != nil {
			err = errors.Wrapf(err, "creating batch %q", name)
			for _, made := range batches {
				_, _, rerr := backend.ReleaseBatch(made)
				err = multierr.Combine(err, rerr)
			}
			return err
		}
		batches = append(batches, batch)
	}

	n.batches = batches
	n.positions = nil
	n.colors = nil
	n.state = ContentBatched
	return nil
}

// CreateAllBatches creates batches for this node and then for every present
// child in ascending octant order, depth-first. Failures do not stop the
// traversal; every reachable node is visited exactly once and the errors are
// combined.
func (n *Node) CreateAllBatches(backend BatchBackend, maxPointsPerBatch int) error {
	err := n.CreateBatches(backend, maxPointsPerBatch)
	if err != nil {
		err = errors.Wrapf(err, "node r%s", n.address)
	}
	for _, child := range n.Children() {
		err = multierr.Combine(err, child.CreateAllBatches(backend, maxPointsPerBatch))
	}
	return err
}

// RemoveBatches releases every held batch through the backend. With
// restorePoints set, the data yielded back is reinstated as the node's point
// data: a single batch's data is adopted directly while multiple batches are
// concatenated in batch order into buffers sized by the recorded point
// count. Without restorePoints the yielded data is discarded. The batch
// list is cleared afterwards regardless of how many batches were held;
// removing zero batches is a no-op. A backend failure leaves the node
// unchanged.
func (n *Node) RemoveBatches(backend BatchBackend, restorePoints bool) error {
	if len(n.batches) == 0 {
		return nil
	}

	if !restorePoints {
		for _, batch := range n.batches {
			if _, _, err := backend.ReleaseBatch(batch); err != nil {
				return errors.Wrapf(err, "releasing batch %q", batch.Name())
			}
		}
		n.batches = nil
		n.state = ContentEmpty
		return nil
	}

	var positions []r3.Vector
	var colors []color.NRGBA
	if len(n.batches) == 1 {
		var err error
		positions, colors, err = backend.ReleaseBatch(n.batches[0])
		if err != nil {
			return errors.Wrapf(err, "releasing batch %q", n.batches[0].Name())
		}
	} else {
		positions = make([]r3.Vector, 0, n.pointCount)
		colors = make([]color.NRGBA, 0, n.pointCount)
		for _, batch := range n.batches {
			pos, col, err := backend.ReleaseBatch(batch)
			if err != nil {
				return errors.Wrapf(err, "releasing batch %q", batch.Name())
			}
			positions = append(positions, pos...)
			colors = append(colors, col...)
		}
		if len(positions) != n.pointCount {
			return errors.Errorf("backend yielded %d points, expected %d", len(positions), n.pointCount)
		}
	}

	n.positions = positions
	n.colors = colors
	n.batches = nil
	n.state = ContentPoints
	return nil
}
