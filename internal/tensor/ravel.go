// Package tensor implements the dense matrix utilities shared by models and optimizers.
//
// Matrices are gonum *mat.Dense values. Flat vectors are plain []float64 so that
// optimizers can treat any model's parameters as one addressable vector.
//
// Ravel and Unravel use column-major order: element (i, j) of an r×c matrix lives
// at index j*r + i of the flat vector.
package tensor

import (
	"fmt"

	"gonum.org/v1/gonum/mat"
)

// Ravel flattens m into a new column-major vector.
func Ravel(m mat.Matrix) []float64 {
	r, c := m.Dims()
	out := make([]float64, r*c)
	ravelInto(out, m)
	return out
}

// RavelInto writes the column-major flattening of m into dst.
//
// Panics if len(dst) differs from the element count of m.
func RavelInto(dst []float64, m mat.Matrix) {
	r, c := m.Dims()
	if len(dst) != r*c {
		panic(fmt.Sprintf("tensor.RavelInto: destination has %d elements, matrix %dx%d has %d", len(dst), r, c, r*c))
	}
	ravelInto(dst, m)
}

func ravelInto(dst []float64, m mat.Matrix) {
	r, c := m.Dims()
	if d, ok := m.(*mat.Dense); ok {
		raw := d.RawMatrix()
		for i := 0; i < r; i++ {
			row := raw.Data[i*raw.Stride : i*raw.Stride+c]
			for j, v := range row {
				dst[j*r+i] = v
			}
		}
		return
	}
	for j := 0; j < c; j++ {
		for i := 0; i < r; i++ {
			dst[j*r+i] = m.At(i, j)
		}
	}
}

// Unravel reshapes a column-major vector into a new rows×cols matrix.
//
// The result owns its storage; later writes to v do not affect it.
// Panics if len(v) != rows*cols.
func Unravel(v []float64, rows, cols int) *mat.Dense {
	if rows <= 0 || cols <= 0 {
		panic(fmt.Sprintf("tensor.Unravel: invalid shape %dx%d", rows, cols))
	}
	if len(v) != rows*cols {
		panic(fmt.Sprintf("tensor.Unravel: vector has %d elements, shape %dx%d needs %d", len(v), rows, cols, rows*cols))
	}

	data := make([]float64, rows*cols)
	for j := 0; j < cols; j++ {
		for i := 0; i < rows; i++ {
			data[i*cols+j] = v[j*rows+i]
		}
	}
	return mat.NewDense(rows, cols, data)
}
