package tensor

import (
	"fmt"
	"math/rand/v2"

	"gonum.org/v1/gonum/mat"

	"github.com/born-ml/mlt/internal/parallel"
)

// Parallel controls how element-wise maps and column reductions are chunked.
// Results do not depend on it.
var Parallel = parallel.DefaultConfig()

// Uniform returns a rows×cols matrix with entries drawn from U(-bound, bound).
func Uniform(rows, cols int, bound float64, rng *rand.Rand) *mat.Dense {
	data := make([]float64, rows*cols)
	for i := range data {
		data[i] = (rng.Float64()*2.0 - 1.0) * bound
	}
	return mat.NewDense(rows, cols, data)
}

// UniformVector is Uniform for a flat vector of length n.
func UniformVector(n int, bound float64, rng *rand.Rand) []float64 {
	v := make([]float64, n)
	for i := range v {
		v[i] = (rng.Float64()*2.0 - 1.0) * bound
	}
	return v
}

// PrependOnes returns [1 | m]: m with a leading column of ones (the intercept feature).
func PrependOnes(m mat.Matrix) *mat.Dense {
	r, c := m.Dims()
	out := mat.NewDense(r, c+1, nil)
	for i := 0; i < r; i++ {
		out.Set(i, 0, 1)
		for j := 0; j < c; j++ {
			out.Set(i, j+1, m.At(i, j))
		}
	}
	return out
}

// AddRowVector adds v to every row of m in place.
//
// Panics if len(v) differs from the column count of m.
func AddRowVector(m *mat.Dense, v []float64) {
	r, c := m.Dims()
	if len(v) != c {
		panic(fmt.Sprintf("tensor.AddRowVector: vector has %d elements, matrix has %d columns", len(v), c))
	}
	raw := m.RawMatrix()
	for i := 0; i < r; i++ {
		row := raw.Data[i*raw.Stride : i*raw.Stride+c]
		for j := range row {
			row[j] += v[j]
		}
	}
}

// ColSums returns the sum of each column of m.
func ColSums(m mat.Matrix) []float64 {
	r, c := m.Dims()
	out := make([]float64, c)
	for i := 0; i < r; i++ {
		for j := 0; j < c; j++ {
			out[j] += m.At(i, j)
		}
	}
	return out
}

// Map returns a new matrix with f applied to every element of m.
//
// Rows are processed in parallel chunks for large inputs.
func Map(m mat.Matrix, f func(float64) float64) *mat.Dense {
	r, c := m.Dims()
	out := mat.DenseCopyOf(m)
	raw := out.RawMatrix()
	parallel.Rows(r, func(lo, hi int) {
		for i := lo; i < hi; i++ {
			row := raw.Data[i*raw.Stride : i*raw.Stride+c]
			for j, v := range row {
				row[j] = f(v)
			}
		}
	}, Parallel)
	return out
}

// ArgMaxCols returns, for each column of m, the row index holding its largest value.
//
// Rows are scanned in index order and only a strictly greater value replaces the
// current best, so ties resolve to the lowest row index.
func ArgMaxCols(m mat.Matrix) []int {
	r, c := m.Dims()
	out := make([]int, c)
	parallel.For(c, func(j int) {
		best := 0
		bestVal := m.At(0, j)
		for i := 1; i < r; i++ {
			if v := m.At(i, j); v > bestVal {
				best, bestVal = i, v
			}
		}
		out[j] = best
	}, Parallel)
	return out
}

// FrobeniusSq returns the sum of squared elements of m.
func FrobeniusSq(m mat.Matrix) float64 {
	r, c := m.Dims()
	s := 0.0
	for i := 0; i < r; i++ {
		for j := 0; j < c; j++ {
			v := m.At(i, j)
			s += v * v
		}
	}
	return s
}

// SameRows panics unless a and b have the same number of rows.
//
// op names the calling operation in the panic message.
func SameRows(op string, a, b mat.Matrix) {
	ra, _ := a.Dims()
	rb, _ := b.Dims()
	if ra != rb {
		panic(fmt.Sprintf("%s: input has %d rows, target has %d", op, ra, rb))
	}
}
