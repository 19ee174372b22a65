package octree_test

import (
	"image/color"
	"strings"
	"testing"

	"github.com/edaniels/golog"
	"github.com/golang/geo/r3"
	"go.viam.com/test"

	"github.com/SatoshiRobatoFujimoto/BA-PointCloud/octree"
	"github.com/SatoshiRobatoFujimoto/BA-PointCloud/render"
)

func testBounds() octree.BoundingBox {
	return octree.BoundingBox{Min: r3.Vector{X: 0, Y: 0, Z: 0}, Size: r3.Vector{X: 8, Y: 8, Z: 8}}
}

func testPoints(n int) ([]r3.Vector, []color.NRGBA) {
	positions := make([]r3.Vector, n)
	colors := make([]color.NRGBA, n)
	for i := range positions {
		positions[i] = r3.Vector{X: float64(i), Y: float64(i % 97), Z: float64(i % 13)}
		colors[i] = color.NRGBA{R: uint8(i % 256), G: uint8((i * 3) % 256), B: uint8((i * 7) % 256), A: 255}
	}
	return positions, colors
}

func TestCreateBatchesSingle(t *testing.T) {
	logger := golog.NewTestLogger(t)
	backend := render.NewBackend(100, logger)
	node := octree.NewRootNode("cloud", testBounds())

	positions, colors := testPoints(10)
	test.That(t, node.SetPoints(positions, colors), test.ShouldBeNil)
	test.That(t, node.CreateBatches(backend, 100), test.ShouldBeNil)

	test.That(t, node.HasBatches(), test.ShouldBeTrue)
	test.That(t, node.HasPointsToRender(), test.ShouldBeFalse)
	test.That(t, node.PointCount(), test.ShouldEqual, 10)
	test.That(t, len(node.Batches()), test.ShouldEqual, 1)
	test.That(t, node.Batches()[0].Name(), test.ShouldEqual, "cloud/r")
	test.That(t, backend.NumBatches(), test.ShouldEqual, 1)
	test.That(t, backend.TotalPoints(), test.ShouldEqual, 10)
}

func TestCreateBatchesChunked(t *testing.T) {
	logger := golog.NewTestLogger(t)
	backend := render.NewBackend(4, logger)
	root := octree.NewRootNode("cloud", testBounds())
	node := root.NewChild(2).NewChild(5)

	positions, colors := testPoints(10)
	test.That(t, node.SetPoints(positions, colors), test.ShouldBeNil)
	test.That(t, node.CreateBatches(backend, 4), test.ShouldBeNil)

	batches := node.Batches()
	test.That(t, len(batches), test.ShouldEqual, 3)
	test.That(t, batches[0].Name(), test.ShouldEqual, "cloud/r25/0")
	test.That(t, batches[1].Name(), test.ShouldEqual, "cloud/r25/1")
	test.That(t, batches[2].Name(), test.ShouldEqual, "cloud/r25/2")

	sizes := make([]int, len(batches))
	for i, b := range batches {
		sizes[i] = b.(*render.VertexBatch).Len()
	}
	test.That(t, sizes, test.ShouldResemble, []int{4, 4, 2})
}

func TestBatchRoundTrip(t *testing.T) {
	logger := golog.NewTestLogger(t)

	for _, tc := range []struct {
		name       string
		points     int
		cap        int
		numBatches int
	}{
		{"single batch", 50, 100, 1},
		{"exact fit", 100, 100, 1},
		{"two batches", 101, 100, 2},
		{"large split", 250000, 100000, 3},
	} {
		t.Run(tc.name, func(t *testing.T) {
			backend := render.NewBackend(tc.cap, logger)
			node := octree.NewRootNode("cloud", testBounds())
			positions, colors := testPoints(tc.points)
			origPositions := append([]r3.Vector{}, positions...)
			origColors := append([]color.NRGBA{}, colors...)

			test.That(t, node.SetPoints(positions, colors), test.ShouldBeNil)
			test.That(t, node.CreateBatches(backend, tc.cap), test.ShouldBeNil)
			test.That(t, len(node.Batches()), test.ShouldEqual, tc.numBatches)
			test.That(t, node.HasPointsToRender(), test.ShouldBeFalse)

			test.That(t, node.RemoveBatches(backend, true), test.ShouldBeNil)
			test.That(t, node.HasBatches(), test.ShouldBeFalse)
			test.That(t, node.HasPointsToRender(), test.ShouldBeTrue)
			test.That(t, node.PointCount(), test.ShouldEqual, tc.points)
			test.That(t, backend.NumBatches(), test.ShouldEqual, 0)

			gotPositions, gotColors := node.Points()
			test.That(t, len(gotPositions), test.ShouldEqual, tc.points)
			test.That(t, gotPositions, test.ShouldResemble, origPositions)
			test.That(t, gotColors, test.ShouldResemble, origColors)
		})
	}
}

func TestRemoveBatchesDiscard(t *testing.T) {
	logger := golog.NewTestLogger(t)
	backend := render.NewBackend(4, logger)
	node := octree.NewRootNode("cloud", testBounds())

	positions, colors := testPoints(10)
	test.That(t, node.SetPoints(positions, colors), test.ShouldBeNil)
	test.That(t, node.CreateBatches(backend, 4), test.ShouldBeNil)

	test.That(t, node.RemoveBatches(backend, false), test.ShouldBeNil)
	test.That(t, node.HasBatches(), test.ShouldBeFalse)
	test.That(t, node.HasPointsToRender(), test.ShouldBeFalse)
	test.That(t, node.PointCount(), test.ShouldEqual, 10)
	test.That(t, backend.NumBatches(), test.ShouldEqual, 0)

	// Data can be assigned again once the batches are gone.
	test.That(t, node.SetPoints(positions, colors), test.ShouldBeNil)
}

func TestRemoveBatchesNoop(t *testing.T) {
	logger := golog.NewTestLogger(t)
	backend := render.NewBackend(4, logger)
	node := octree.NewRootNode("cloud", testBounds())

	test.That(t, node.RemoveBatches(backend, true), test.ShouldBeNil)
	test.That(t, node.RemoveBatches(backend, false), test.ShouldBeNil)
	test.That(t, node.HasBatches(), test.ShouldBeFalse)
}

// recordingBackend records creation order for traversal tests.
type recordingBackend struct {
	render.Backend
	order []string
}

func newRecordingBackend(t *testing.T) *recordingBackend {
	return &recordingBackend{Backend: *render.NewBackend(0, golog.NewTestLogger(t))}
}

func (b *recordingBackend) CreateBatch(
	name string, positions []r3.Vector, colors []color.NRGBA, bounds octree.BoundingBox,
) (octree.Batch, error) {
	b.order = append(b.order, name)
	return b.Backend.CreateBatch(name, positions, colors, bounds)
}

func TestCreateAllBatches(t *testing.T) {
	root := octree.NewRootNode("cloud", testBounds())
	c6 := root.NewChild(6)
	c1 := root.NewChild(1)
	c1.NewChild(4)
	c1.NewChild(0)
	c6.NewChild(7)

	var fill func(n *octree.Node)
	fill = func(n *octree.Node) {
		positions, colors := testPoints(3)
		test.That(t, n.SetPoints(positions, colors), test.ShouldBeNil)
		for _, child := range n.Children() {
			fill(child)
		}
	}
	fill(root)

	backend := newRecordingBackend(t)
	test.That(t, root.CreateAllBatches(backend, 10), test.ShouldBeNil)

	// Parent before children, children in ascending slot order.
	test.That(t, backend.order, test.ShouldResemble, []string{
		"cloud/r", "cloud/r1", "cloud/r10", "cloud/r14", "cloud/r6", "cloud/r67",
	})

	var check func(n *octree.Node)
	check = func(n *octree.Node) {
		test.That(t, n.HasBatches(), test.ShouldBeTrue)
		for _, child := range n.Children() {
			check(child)
		}
	}
	check(root)
}

func TestCreateAllBatchesPropagatesErrors(t *testing.T) {
	root := octree.NewRootNode("cloud", testBounds())
	c2 := root.NewChild(2)
	c5 := root.NewChild(5)

	positions, colors := testPoints(3)
	test.That(t, root.SetPoints(positions, colors), test.ShouldBeNil)
	test.That(t, c5.SetPoints(positions, colors), test.ShouldBeNil)
	// c2 is left without point data.

	backend := newRecordingBackend(t)
	err := root.CreateAllBatches(backend, 10)
	test.That(t, err, test.ShouldNotBeNil)
	test.That(t, err.Error(), test.ShouldContainSubstring, "node r2")
	test.That(t, strings.Contains(err.Error(), "node r5"), test.ShouldBeFalse)

	// The failure did not stop the traversal.
	test.That(t, root.HasBatches(), test.ShouldBeTrue)
	test.That(t, c5.HasBatches(), test.ShouldBeTrue)
	test.That(t, c2.HasBatches(), test.ShouldBeFalse)
}
