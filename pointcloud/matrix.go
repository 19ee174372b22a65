package pointcloud

import (
	"image/color"

	"github.com/golang/geo/r3"
	"gonum.org/v1/gonum/mat"
)

// CloudMatrixCol names a column in a cloud matrix.
type CloudMatrixCol string

const (
	// CloudMatrixColX x column of a cloud matrix.
	CloudMatrixColX CloudMatrixCol = "x"
	// CloudMatrixColY y column of a cloud matrix.
	CloudMatrixColY CloudMatrixCol = "y"
	// CloudMatrixColZ z column of a cloud matrix.
	CloudMatrixColZ CloudMatrixCol = "z"
	// CloudMatrixColR red column of a cloud matrix.
	CloudMatrixColR CloudMatrixCol = "r"
	// CloudMatrixColG green column of a cloud matrix.
	CloudMatrixColG CloudMatrixCol = "g"
	// CloudMatrixColB blue column of a cloud matrix.
	CloudMatrixColB CloudMatrixCol = "b"
)

// CloudMatrix converts a paired dataset into a dense matrix with one row per
// point plus a header describing the columns. Colors may be nil, in which
// case only position columns are produced. Returns nil for an empty dataset.
func CloudMatrix(positions []r3.Vector, colors []color.NRGBA) (*mat.Dense, []CloudMatrixCol) {
	if len(positions) == 0 {
		return nil, nil
	}
	header := []CloudMatrixCol{CloudMatrixColX, CloudMatrixColY, CloudMatrixColZ}
	pointSize := 3
	hasColor := colors != nil
	if hasColor {
		header = append(header, CloudMatrixColR, CloudMatrixColG, CloudMatrixColB)
		pointSize += 3
	}

	data := make([]float64, 0, len(positions)*pointSize)
	for i, p := range positions {
		data = append(data, p.X, p.Y, p.Z)
		if hasColor {
			c := colors[i]
			data = append(data, float64(c.R), float64(c.G), float64(c.B))
		}
	}
	return mat.NewDense(len(positions), pointSize, data), header
}
