package pointcloud

import (
	"bytes"
	"image/color"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/golang/geo/r3"
	"go.viam.com/test"
)

func TestWritePLY(t *testing.T) {
	positions := []r3.Vector{NewVector(0, 0, 0), NewVector(1.5, 2, -3)}
	colors := []color.NRGBA{{255, 0, 0, 255}, {10, 20, 30, 255}}

	var buf bytes.Buffer
	test.That(t, WritePLY(&buf, positions, colors), test.ShouldBeNil)

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	test.That(t, lines[0], test.ShouldEqual, "ply")
	test.That(t, lines[2], test.ShouldEqual, "element vertex 2")
	test.That(t, lines[9], test.ShouldEqual, "end_header")
	test.That(t, len(lines), test.ShouldEqual, 12)
	test.That(t, lines[11], test.ShouldContainSubstring, "10 20 30")

	err := WritePLY(&buf, positions, colors[:1])
	test.That(t, err, test.ShouldNotBeNil)

	fn := filepath.Join(t.TempDir(), "out.ply")
	test.That(t, WriteToPLYFile(fn, positions, colors), test.ShouldBeNil)
	data, err := os.ReadFile(fn)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, string(data), test.ShouldEqual, buf.String())
}
