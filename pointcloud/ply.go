package pointcloud

import (
	"bufio"
	"fmt"
	"image/color"
	"io"
	"os"

	"github.com/golang/geo/r3"
	"go.uber.org/multierr"
)

// WritePLY writes the paired dataset out as an ASCII PLY document.
func WritePLY(out io.Writer, positions []r3.Vector, colors []color.NRGBA) error {
	if err := ValidatePair(positions, colors); err != nil {
		return err
	}
	w := bufio.NewWriter(out)

	var err error
	write := func(s string) {
		if err != nil {
			return
		}
		_, err = w.WriteString(s)
	}

	write("ply\n")
	write("format ascii 1.0\n")
	write(fmt.Sprintf("element vertex %d\n", len(positions)))
	write("property float x\n")
	write("property float y\n")
	write("property float z\n")
	write("property uchar red\n")
	write("property uchar green\n")
	write("property uchar blue\n")
	write("end_header\n")
	for i, p := range positions {
		c := colors[i]
		write(fmt.Sprintf("%f %f %f %d %d %d\n", p.X, p.Y, p.Z, c.R, c.G, c.B))
	}
	if err != nil {
		return err
	}
	return w.Flush()
}

// WriteToPLYFile writes the paired dataset out to a PLY file.
func WriteToPLYFile(fn string, positions []r3.Vector, colors []color.NRGBA) (err error) {
	//nolint:gosec
	f, err := os.Create(fn)
	if err != nil {
		return
	}
	defer func() {
		err = multierr.Combine(err, f.Close())
	}()
	return WritePLY(f, positions, colors)
}
