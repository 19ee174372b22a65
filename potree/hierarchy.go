package potree

import (
	"context"
	"encoding/binary"
	"os"

	"github.com/edaniels/golog"
	"github.com/pkg/errors"

	"github.com/SatoshiRobatoFujimoto/BA-PointCloud/octree"
)

// One .hrc record: a child-occupancy bitmask byte followed by the node's
// point count as a little-endian uint32.
const hrcRecordSize = 5

// Hierarchy is a loaded octree node tree plus the per-node point counts read
// from the hierarchy index files.
type Hierarchy struct {
	Root *octree.Node
	// PointCounts maps node addresses to the point counts declared by the
	// index, available before any point data is loaded.
	PointCounts map[string]uint32
	NodeCount   int
}

// TotalPoints sums the declared point counts over the whole hierarchy.
func (h *Hierarchy) TotalPoints() uint64 {
	var total uint64
	for _, count := range h.PointCounts {
		total += uint64(count)
	}
	return total
}

// LoadHierarchy builds the octree node tree of the cloud directory by
// walking its .hrc index files, starting at r.hrc and recursing into deeper
// index files every hierarchy-step-size levels. Nodes are created with
// addresses and subdivided bounds but no point data.
func LoadHierarchy(ctx context.Context, dir string, meta *CloudMeta, logger golog.Logger) (*Hierarchy, error) {
	root := octree.NewRootNode(CloudName(dir), meta.RootBounds())
	h := &Hierarchy{Root: root, PointCounts: map[string]uint32{}}
	if err := h.loadIndex(ctx, dir, meta, root); err != nil {
		return nil, err
	}
	h.NodeCount = len(h.PointCounts)
	logger.Debugf("loaded hierarchy of %d nodes (%d points declared)", h.NodeCount, h.TotalPoints())
	return h, nil
}

// loadIndex reads the .hrc file rooted at the given node and expands the
// subtree it describes, breadth-first. Records cover nodes down to
// hierarchyStepSize levels below the file's root; nodes at that depth with
// children carry their own index files, which are loaded recursively.
func (h *Hierarchy) loadIndex(ctx context.Context, dir string, meta *CloudMeta, node *octree.Node) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	path := nodeFilePath(dir, meta, node.Address(), ".hrc")
	//nolint:gosec
	data, err := os.ReadFile(path)
	if err != nil {
		return errors.Wrap(err, "reading hierarchy index")
	}
	if len(data) == 0 || len(data)%hrcRecordSize != 0 {
		return errors.Errorf("malformed hierarchy index %q (%d bytes)", path, len(data))
	}

	queue := []*octree.Node{node}
	var deeper []*octree.Node
	for offset := 0; offset < len(data); offset += hrcRecordSize {
		if len(queue) == 0 {
			return errors.Errorf("hierarchy index %q describes more nodes than it announces", path)
		}
		current := queue[0]
		queue = queue[1:]

		mask := data[offset]
		count := binary.LittleEndian.Uint32(data[offset+1 : offset+hrcRecordSize])
		h.PointCounts[current.Address()] = count

		if mask == 0 {
			continue
		}
		if current.Depth()-node.Depth() == meta.HierarchyStepSize {
			// This node's children are described by its own index file.
			deeper = append(deeper, current)
			continue
		}
		for octant := 0; octant < 8; octant++ {
			if mask&(1<<octant) == 0 {
				continue
			}
			queue = append(queue, current.NewChild(octant))
		}
	}
	if len(queue) != 0 {
		return errors.Errorf("hierarchy index %q announces %d nodes it does not describe", path, len(queue))
	}

	for _, n := range deeper {
		if err := h.loadIndex(ctx, dir, meta, n); err != nil {
			return err
		}
	}
	return nil
}
