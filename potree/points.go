package potree

import (
	"context"
	"encoding/binary"
	"image/color"
	"os"
	"runtime"

	"github.com/edaniels/golog"
	"github.com/golang/geo/r3"
	"github.com/pkg/errors"
	"golang.org/x/sync/errgroup"

	"github.com/SatoshiRobatoFujimoto/BA-PointCloud/octree"
)

// LoadPoints reads the node's .bin point file and assigns the decoded
// position/color data to the node.
func LoadPoints(dir string, meta *CloudMeta, node *octree.Node) error {
	path := nodeFilePath(dir, meta, node.Address(), ".bin")
	//nolint:gosec
	data, err := os.ReadFile(path)
	if err != nil {
		return errors.Wrap(err, "reading point data")
	}
	positions, colors, err := decodePoints(data, meta, node.Bounds())
	if err != nil {
		return errors.Wrapf(err, "decoding point data for node r%s", node.Address())
	}
	return node.SetPoints(positions, colors)
}

// decodePoints parses a .bin point blob according to the declared attribute
// layout. Positions are stored as three little-endian uint32 offsets from
// the node's minimum corner, scaled by the cloud's scale; packed colors as
// one byte per channel. Unsupported-but-known attributes are skipped by
// size.
func decodePoints(data []byte, meta *CloudMeta, bounds octree.BoundingBox) ([]r3.Vector, []color.NRGBA, error) {
	stride, err := meta.bytesPerPoint()
	if err != nil {
		return nil, nil, err
	}
	if len(data)%stride != 0 {
		return nil, nil, errors.Errorf("point data size %d is not a multiple of the %d byte point stride", len(data), stride)
	}

	count := len(data) / stride
	positions := make([]r3.Vector, count)
	colors := make([]color.NRGBA, count)
	for i := 0; i < count; i++ {
		offset := i * stride
		for _, attr := range meta.PointAttributes {
			switch attr {
			case AttrPositionCartesian:
				x := binary.LittleEndian.Uint32(data[offset:])
				y := binary.LittleEndian.Uint32(data[offset+4:])
				z := binary.LittleEndian.Uint32(data[offset+8:])
				positions[i] = r3.Vector{
					X: bounds.Min.X + float64(x)*meta.Scale,
					Y: bounds.Min.Y + float64(y)*meta.Scale,
					Z: bounds.Min.Z + float64(z)*meta.Scale,
				}
			case AttrColorPacked:
				colors[i] = color.NRGBA{R: data[offset], G: data[offset+1], B: data[offset+2], A: 255}
			}
			offset += attrSizes[attr]
		}
	}
	return positions, colors, nil
}

// LoadAllPoints loads point data for every node reachable from root, fanning
// the file reads out over a bounded worker group. This is safe under the
// octree's single-owner model because each worker touches exactly one node's
// state and the tree structure itself is only read.
func LoadAllPoints(ctx context.Context, dir string, meta *CloudMeta, root *octree.Node, logger golog.Logger) error {
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(runtime.GOMAXPROCS(0))

	loaded := 0
	var walk func(node *octree.Node)
	walk = func(node *octree.Node) {
		loaded++
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			return LoadPoints(dir, meta, node)
		})
		for _, child := range node.Children() {
			walk(child)
		}
	}
	walk(root)

	if err := g.Wait(); err != nil {
		return err
	}
	logger.Debugf("loaded point data for %d nodes", loaded)
	return nil
}
