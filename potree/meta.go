// Package potree loads Potree-format point cloud directories: the cloud.js
// metadata file, the .hrc hierarchy index files describing the octree, and
// the per-node .bin point files.
package potree

import (
	"os"
	"path/filepath"

	"github.com/golang/geo/r3"
	"github.com/pkg/errors"
	"github.com/yosuke-furukawa/json5/encoding/json5"

	"github.com/SatoshiRobatoFujimoto/BA-PointCloud/octree"
)

// MetaFileName is the name of the cloud metadata file within a cloud
// directory.
const MetaFileName = "cloud.js"

// Per-point attributes that may appear in a .bin point file, with their
// sizes in bytes.
const (
	AttrPositionCartesian = "POSITION_CARTESIAN"
	AttrColorPacked       = "COLOR_PACKED"
	AttrIntensity         = "INTENSITY"
	AttrClassification    = "CLASSIFICATION"
)

var attrSizes = map[string]int{
	AttrPositionCartesian: 12,
	AttrColorPacked:       4,
	AttrIntensity:         2,
	AttrClassification:    1,
}

type boundsJSON struct {
	Lx float64 `json:"lx"`
	Ly float64 `json:"ly"`
	Lz float64 `json:"lz"`
	Ux float64 `json:"ux"`
	Uy float64 `json:"uy"`
	Uz float64 `json:"uz"`
}

// CloudMeta mirrors the cloud.js metadata file of a Potree cloud.
type CloudMeta struct {
	Version           string      `json:"version"`
	OctreeDir         string      `json:"octreeDir"`
	Points            int         `json:"points"`
	BoundingBox       boundsJSON  `json:"boundingBox"`
	TightBoundingBox  *boundsJSON `json:"tightBoundingBox"`
	PointAttributes   []string    `json:"pointAttributes"`
	Spacing           float64     `json:"spacing"`
	Scale             float64     `json:"scale"`
	HierarchyStepSize int         `json:"hierarchyStepSize"`
	Projection        string      `json:"projection"`
}

// LoadMeta reads and validates the cloud.js metadata of the cloud directory.
func LoadMeta(dir string) (*CloudMeta, error) {
	//nolint:gosec
	data, err := os.ReadFile(filepath.Join(dir, MetaFileName))
	if err != nil {
		return nil, errors.Wrap(err, "reading cloud metadata")
	}
	var meta CloudMeta
	if err := json5.Unmarshal(data, &meta); err != nil {
		return nil, errors.Wrap(err, "parsing cloud metadata")
	}
	if meta.OctreeDir == "" {
		meta.OctreeDir = "data"
	}
	if meta.Scale <= 0 {
		return nil, errors.Errorf("invalid scale (%f) in cloud metadata", meta.Scale)
	}
	if meta.HierarchyStepSize <= 0 {
		return nil, errors.Errorf("invalid hierarchy step size (%d) in cloud metadata", meta.HierarchyStepSize)
	}
	if _, err := meta.bytesPerPoint(); err != nil {
		return nil, err
	}
	return &meta, nil
}

// RootBounds returns the octree root bounding volume described by the
// metadata.
func (m *CloudMeta) RootBounds() octree.BoundingBox {
	bb := m.BoundingBox
	return octree.BoundingBox{
		Min:  r3.Vector{X: bb.Lx, Y: bb.Ly, Z: bb.Lz},
		Size: r3.Vector{X: bb.Ux - bb.Lx, Y: bb.Uy - bb.Ly, Z: bb.Uz - bb.Lz},
	}
}

// bytesPerPoint returns the stride of one point record in a .bin file.
func (m *CloudMeta) bytesPerPoint() (int, error) {
	if len(m.PointAttributes) == 0 {
		return 0, errors.New("cloud metadata declares no point attributes")
	}
	stride := 0
	hasPosition := false
	for _, attr := range m.PointAttributes {
		size, ok := attrSizes[attr]
		if !ok {
			return 0, errors.Errorf("unsupported point attribute %q", attr)
		}
		if attr == AttrPositionCartesian {
			hasPosition = true
		}
		stride += size
	}
	if !hasPosition {
		return 0, errors.Errorf("cloud metadata lacks the %s attribute", AttrPositionCartesian)
	}
	return stride, nil
}

// CloudName derives the dataset name from a cloud directory path.
func CloudName(dir string) string {
	return filepath.Base(filepath.Clean(dir))
}

// nodeFilePath returns the path of a node's on-disk file with the given
// extension. Files sit under octreeDir/r, in nested subdirectories named by
// full hierarchy-step-size groups of the node's address.
func nodeFilePath(dir string, meta *CloudMeta, address, ext string) string {
	parts := []string{dir, meta.OctreeDir, "r"}
	step := meta.HierarchyStepSize
	for i := 0; i+step <= len(address); i += step {
		parts = append(parts, address[i:i+step])
	}
	parts = append(parts, "r"+address+ext)
	return filepath.Join(parts...)
}
