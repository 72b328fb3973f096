package nn_test

import (
	"math/rand/v2"
	"testing"

	"github.com/stretchr/testify/assert"
	"gonum.org/v1/gonum/diff/fd"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"

	"github.com/born-ml/mlt/internal/nn"
)

// assertGradient compares obj.Gradient with a central finite difference of
// obj.Loss and requires a relative error below tol.
func assertGradient(t *testing.T, obj nn.Objective, params []float64, input, target mat.Matrix, tol float64) {
	t.Helper()

	analytic := obj.Gradient(params, input, target)
	numeric := fd.Gradient(nil, func(x []float64) float64 {
		return obj.Loss(x, input, target)
	}, append([]float64(nil), params...), &fd.Settings{Formula: fd.Central})

	if !assert.Len(t, analytic, len(params)) {
		return
	}
	scale := max(floats.Norm(analytic, 2)+floats.Norm(numeric, 2), 1e-12)
	rel := floats.Distance(analytic, numeric, 2) / scale
	assert.Less(t, rel, tol, "relative gradient error")
}

// recordingOptimizer returns init unchanged and remembers how it was called.
type recordingOptimizer struct {
	calls int
	init  []float64
	warm  bool
}

func (r *recordingOptimizer) Minimize(_ nn.Objective, _, _ mat.Matrix, init []float64, warmStart bool) []float64 {
	r.calls++
	r.init = append([]float64(nil), init...)
	r.warm = warmStart
	return init
}

func newTestRand(seed uint64) *rand.Rand {
	return rand.New(rand.NewPCG(seed, seed+1))
}

// randomDense returns an r×c matrix with entries in U(-scale, scale).
func randomDense(rng *rand.Rand, r, c int, scale float64) *mat.Dense {
	data := make([]float64, r*c)
	for i := range data {
		data[i] = (2*rng.Float64() - 1) * scale
	}
	return mat.NewDense(r, c, data)
}

func randomVector(rng *rand.Rand, n int, scale float64) []float64 {
	v := make([]float64, n)
	for i := range v {
		v[i] = (2*rng.Float64() - 1) * scale
	}
	return v
}

// twoClusters returns n points around (0, 0) labelled 0 and n points around
// (10, 10) labelled 1, interleaved.
func twoClusters(rng *rand.Rand, n int) (*mat.Dense, []int) {
	features := mat.NewDense(2*n, 2, nil)
	labels := make([]int, 2*n)
	for i := 0; i < 2*n; i++ {
		class := i % 2
		center := 10 * float64(class)
		features.Set(i, 0, center+rng.NormFloat64())
		features.Set(i, 1, center+rng.NormFloat64())
		labels[i] = class
	}
	return features, labels
}
