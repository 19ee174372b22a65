package octree

import (
	"image"
	"image/color"
	"math"

	"github.com/fogleman/gg"
	"github.com/lucasb-eyer/go-colorful"
)

// DrawTopDown renders a top-down (XY plane) wireframe of the bounding
// volumes of every node reachable from this one, colored by depth. Purely a
// debugging aid; it does not touch point or batch state.
func (n *Node) DrawTopDown(width, height int) image.Image {
	dc := gg.NewContext(width, height)
	dc.SetColor(color.Black)
	dc.Clear()

	bounds := n.bounds
	if bounds.Size.X <= 0 || bounds.Size.Y <= 0 {
		return dc.Image()
	}
	scale := math.Min(float64(width)/bounds.Size.X, float64(height)/bounds.Size.Y)

	maxDepth := n.Depth()
	var measure func(node *Node)
	measure = func(node *Node) {
		if node.Depth() > maxDepth {
			maxDepth = node.Depth()
		}
		for _, child := range node.Children() {
			measure(child)
		}
	}
	measure(n)
	depthRange := maxDepth - n.Depth() + 1

	var draw func(node *Node)
	draw = func(node *Node) {
		b := node.bounds
		hue := 360 * float64(node.Depth()-n.Depth()) / float64(depthRange)
		dc.SetColor(colorful.Hsv(hue, 1, 1))
		dc.DrawRectangle(
			(b.Min.X-bounds.Min.X)*scale,
			(b.Min.Y-bounds.Min.Y)*scale,
			b.Size.X*scale,
			b.Size.Y*scale,
		)
		dc.Stroke()
		for _, child := range node.Children() {
			draw(child)
		}
	}
	draw(n)
	return dc.Image()
}
