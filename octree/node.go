package octree

import (
	"image/color"
	"iter"
	"strconv"

	"github.com/golang/geo/r3"
	"github.com/pkg/errors"

	pc "github.com/SatoshiRobatoFujimoto/BA-PointCloud/pointcloud"
)

// ErrBatchesExist is returned when point data is assigned to a node that
// still holds renderable batches, which would orphan the rendered data.
var ErrBatchesExist = errors.New("cannot assign point data while batches exist")

// ErrNoPoints is returned when batch creation is requested on a node that
// holds no point data.
var ErrNoPoints = errors.New("no point data to create batches from")

// Node is one cell of the octree. Its address, dataset name and bounding
// volume are fixed at construction; point data and batches move through the
// content state machine.
type Node struct {
	address  string
	dataset  string
	bounds   BoundingBox
	parent   *Node
	children [8]*Node

	state      ContentState
	positions  []r3.Vector
	colors     []color.NRGBA
	batches    []Batch
	pointCount int

	// status is an annotation slot for an external controller; the octree
	// never reads it.
	status byte
}

// NewNode creates a node with the given address, dataset name, bounding
// volume and parent. The address is the node's path from the root, one
// octant digit (0-7) per level; the root has the empty address.
func NewNode(address, dataset string, bounds BoundingBox, parent *Node) *Node {
	return &Node{
		address: address,
		dataset: dataset,
		bounds:  bounds,
		parent:  parent,
	}
}

// NewRootNode creates the root node of a tree covering the given volume.
func NewRootNode(dataset string, bounds BoundingBox) *Node {
	return NewNode("", dataset, bounds, nil)
}

// NewChild creates the child node for the given octant, with derived address
// and subdivided bounds, and links it into the corresponding child slot.
func (n *Node) NewChild(octant int) *Node {
	child := NewNode(n.address+strconv.Itoa(octant), n.dataset, n.bounds.ChildBox(octant), n)
	n.children[octant] = child
	return child
}

// Address returns the node's path from the root as a string of octant
// digits.
func (n *Node) Address() string {
	return n.address
}

// Dataset returns the name of the dataset the node belongs to.
func (n *Node) Dataset() string {
	return n.dataset
}

// Bounds returns the node's bounding volume.
func (n *Node) Bounds() BoundingBox {
	return n.bounds
}

// Depth returns the node's depth in the tree; the root has depth 0.
func (n *Node) Depth() int {
	return len(n.address)
}

// Parent returns the node's parent, or nil for the root.
func (n *Node) Parent() *Node {
	return n.parent
}

// SetParent reattaches the node below the given parent. The link is only
// used for upward navigation.
func (n *Node) SetParent(parent *Node) {
	n.parent = parent
}

// Child returns the child in the given octant slot, or nil if absent.
func (n *Node) Child(octant int) *Node {
	return n.children[octant]
}

// HasChild reports if the given octant slot is occupied.
func (n *Node) HasChild(octant int) bool {
	return n.children[octant] != nil
}

// SetChild stores the given node in the given octant slot. Any node already
// in the slot is overwritten without being detached; the caller is
// responsible for the previous subtree.
func (n *Node) SetChild(octant int, child *Node) {
	n.children[octant] = child
}

// Children iterates over the present children in ascending octant order,
// yielding each child's slot index and the child itself.
func (n *Node) Children() iter.Seq2[int, *Node] {
	return func(yield func(int, *Node) bool) {
		for i, child := range n.children {
			if child == nil {
				continue
			}
			if !yield(i, child) {
				return
			}
		}
	}
}

// Status returns the controller annotation byte.
func (n *Node) Status() byte {
	return n.status
}

// SetStatus stores a controller annotation byte on the node.
func (n *Node) SetStatus(status byte) {
	n.status = status
}

// State returns the node's current content state.
func (n *Node) State() ContentState {
	return n.state
}

// SetPoints assigns the given paired point data to the node, replacing any
// previously held data and recording the point count. Fails with
// ErrBatchesExist while renderable batches are held and with a validation
// error if the sequences are absent or of unequal length; either failure
// leaves the node untouched.
func (n *Node) SetPoints(positions []r3.Vector, colors []color.NRGBA) error {
	if n.state == ContentBatched {
		return ErrBatchesExist
	}
	if err := pc.ValidatePair(positions, colors); err != nil {
		return err
	}
	n.positions = positions
	n.colors = colors
	n.pointCount = len(positions)
	n.state = ContentPoints
	return nil
}

// ForgetPoints discards the raw position/color data. The recorded point
// count is kept so downstream size planning still works after the data is
// gone.
func (n *Node) ForgetPoints() {
	n.positions = nil
	n.colors = nil
	if n.state == ContentPoints {
		n.state = ContentEmpty
	}
}

// HasPointsToRender reports if the node currently holds raw point data.
func (n *Node) HasPointsToRender() bool {
	return n.positions != nil && n.colors != nil
}

// HasBatches reports if the node holds at least one renderable batch.
func (n *Node) HasBatches() bool {
	return len(n.batches) > 0
}

// PointCount returns the count recorded by the last successful SetPoints, or
// 0 if point data was never assigned. The count survives ForgetPoints and
// batch creation.
func (n *Node) PointCount() int {
	return n.pointCount
}

// Points returns the currently held position/color data, or nils if none is
// held. The returned slices are the node's own buffers.
func (n *Node) Points() ([]r3.Vector, []color.NRGBA) {
	return n.positions, n.colors
}

// Batches returns the held batch handles in creation order.
func (n *Node) Batches() []Batch {
	return n.batches
}
