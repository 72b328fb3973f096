package nn_test

import (
	"bytes"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"

	"github.com/born-ml/mlt/internal/nn"
	"github.com/born-ml/mlt/internal/optim"
	"github.com/born-ml/mlt/internal/serialization"
)

func newAutoencoder(hidden, inputDim int, opt nn.Optimizer, seed uint64) *nn.TiedAutoencoder {
	return nn.NewTiedAutoencoder(nn.TiedAutoencoderConfig{
		HiddenUnits:              hidden,
		HiddenActivation:         nn.Sigmoid{},
		ReconstructionActivation: nn.Identity{},
		Optimizer:                opt,
		InputDim:                 inputDim,
		Rand:                     newTestRand(seed),
	})
}

// lowRankData returns n rows lying near a rank-k subspace of R^d through the origin.
func lowRankData(seed uint64, n, d, k int, noise float64) *mat.Dense {
	rng := newTestRand(seed)
	basis := randomDense(rng, k, d, 1)

	var data mat.Dense
	data.Mul(randomDense(rng, n, k, 1), basis)
	for i := 0; i < n; i++ {
		for j := 0; j < d; j++ {
			data.Set(i, j, data.At(i, j)+noise*rng.NormFloat64())
		}
	}
	return &data
}

func TestTiedAutoencoder_NumParameters(t *testing.T) {
	a := newAutoencoder(3, 5, &recordingOptimizer{}, 1)

	assert.Equal(t, 3*5+3+5, a.NumParameters())
	assert.Len(t, a.Parameters(), a.NumParameters())
	assert.Equal(t, 5, a.InputDim())
	assert.Equal(t, 3, a.HiddenUnits())

	bound := nn.AutoencoderInitBound(3, 5)
	for _, p := range a.Parameters() {
		assert.LessOrEqual(t, p, bound)
		assert.GreaterOrEqual(t, p, -bound)
	}
}

func TestTiedAutoencoder_ParameterLayout(t *testing.T) {
	a := newAutoencoder(2, 3, &recordingOptimizer{}, 2)
	params := make([]float64, a.NumParameters())
	for i := range params {
		params[i] = float64(i)
	}
	a.SetParameters(params)

	// ravel(W) column-major, then b_h, then b_r.
	w := a.Weights()
	assert.Equal(t, 0.0, w.At(0, 0))
	assert.Equal(t, 1.0, w.At(1, 0))
	assert.Equal(t, 2.0, w.At(0, 1))
	assert.Equal(t, []float64{6, 7}, a.HiddenIntercepts())
	assert.Equal(t, []float64{8, 9, 10}, a.ReconstructionIntercepts())
	assert.Equal(t, params, a.Parameters())
}

func TestTiedAutoencoder_InvalidUsePanics(t *testing.T) {
	opt := &recordingOptimizer{}
	assert.Panics(t, func() {
		nn.NewTiedAutoencoder(nn.TiedAutoencoderConfig{
			HiddenUnits: 0, HiddenActivation: nn.Identity{}, ReconstructionActivation: nn.Identity{}, Optimizer: opt,
		})
	})
	assert.Panics(t, func() {
		nn.NewTiedAutoencoder(nn.TiedAutoencoderConfig{HiddenUnits: 2, Optimizer: opt})
	})
	assert.Panics(t, func() {
		nn.NewTiedAutoencoder(nn.TiedAutoencoderConfig{
			HiddenUnits: 2, HiddenActivation: nn.Identity{}, ReconstructionActivation: nn.Identity{},
		})
	})

	unsized := nn.NewTiedAutoencoder(nn.TiedAutoencoderConfig{
		HiddenUnits: 2, HiddenActivation: nn.Identity{}, ReconstructionActivation: nn.Identity{}, Optimizer: opt,
	})
	assert.Panics(t, func() { unsized.NumParameters() })
	assert.Panics(t, func() { unsized.Parameters() })

	a := newAutoencoder(2, 3, opt, 3)
	x := mat.NewDense(2, 3, nil)
	assert.Panics(t, func() { a.Transform(x) }, "transform before fit")
	assert.Panics(t, func() { a.Reconstruct(x) }, "reconstruct before fit")
	assert.Panics(t, func() { a.SetParameters(make([]float64, 3)) })
	assert.Panics(t, func() { a.Save(&bytes.Buffer{}) })
	assert.Panics(t, func() { a.Loss(a.Parameters(), mat.NewDense(2, 4, nil), mat.NewDense(2, 4, nil)) })
}

func TestTiedAutoencoder_GradientMatchesFiniteDifference(t *testing.T) {
	tests := []struct {
		name           string
		hidden, recon  nn.Activation
		regularization float64
	}{
		{"sigmoid_identity", nn.Sigmoid{}, nn.Identity{}, 0},
		{"tanh_sigmoid", nn.Tanh{}, nn.Sigmoid{}, 0.01},
		{"identity_identity", nn.Identity{}, nn.Identity{}, 0.1},
		{"softplus_tanh", nn.Softplus{}, nn.Tanh{}, 0.001},
	}

	rng := newTestRand(4)
	input := randomDense(rng, 7, 4, 1)

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a := nn.NewTiedAutoencoder(nn.TiedAutoencoderConfig{
				HiddenUnits:              3,
				HiddenActivation:         tt.hidden,
				ReconstructionActivation: tt.recon,
				Optimizer:                &recordingOptimizer{},
				Regularization:           tt.regularization,
				InputDim:                 4,
			})
			params := randomVector(rng, a.NumParameters(), 0.5)
			assertGradient(t, a, params, input, input, 1e-6)
		})
	}
}

func TestTiedAutoencoder_GradientWithDistinctTarget(t *testing.T) {
	rng := newTestRand(5)
	input := randomDense(rng, 6, 3, 1)
	target := randomDense(rng, 6, 3, 1)

	a := newAutoencoder(2, 3, &recordingOptimizer{}, 6)
	params := randomVector(rng, a.NumParameters(), 0.5)
	assertGradient(t, a, params, input, target, 1e-6)

	value, grad := a.LossAndGradient(params, input, target)
	assert.InDelta(t, a.Loss(params, input, target), value, 1e-12)
	assert.InDeltaSlice(t, a.Gradient(params, input, target), grad, 1e-12)
}

func TestTiedAutoencoder_FitStart(t *testing.T) {
	rec := &recordingOptimizer{}
	a := nn.NewTiedAutoencoder(nn.TiedAutoencoderConfig{
		HiddenUnits:              2,
		HiddenActivation:         nn.Identity{},
		ReconstructionActivation: nn.Identity{},
		Optimizer:                rec,
		Rand:                     newTestRand(7),
	})
	x := randomDense(newTestRand(8), 4, 3, 1)

	// Warm start on an unfitted model falls back to a cold start.
	a.Fit(x, false)
	assert.False(t, rec.warm)
	assert.Equal(t, 3, a.InputDim())
	assert.True(t, a.IsFitted())

	current := a.Parameters()
	a.Fit(x, false)
	assert.True(t, rec.warm)
	assert.Equal(t, current, rec.init)

	assert.Panics(t, func() { a.Fit(mat.NewDense(4, 5, nil), false) }, "warm start with new dimensionality")

	a.Fit(mat.NewDense(4, 5, nil), true)
	assert.Equal(t, 5, a.InputDim())
	assert.Equal(t, 2*5+2+5, a.NumParameters())
}

func TestTiedAutoencoder_LearnsLowRankSubspace(t *testing.T) {
	const d, h, k = 6, 3, 2
	train := lowRankData(9, 200, d, k, 0.01)

	a := nn.NewTiedAutoencoder(nn.TiedAutoencoderConfig{
		HiddenUnits:              h,
		HiddenActivation:         nn.Identity{},
		ReconstructionActivation: nn.Identity{},
		Regularization:           1e-6,
		Optimizer: optim.NewLBFGS(optim.LBFGSConfig{
			Stop: optim.ObjectiveDelta{Delta: 1e-12, MaxIterations: 2000},
		}),
		Rand: newTestRand(10),
	})

	a.Fit(train, true)

	assert.Less(t, a.Loss(a.Parameters(), train, train), 1e-2)

	codes := a.Transform(train)
	r, c := codes.Dims()
	assert.Equal(t, 200, r)
	assert.Equal(t, h, c)

	// Rows from the same subspace, drawn independently.
	heldOut := lowRankData(9, 400, d, k, 0.01).Slice(200, 400, 0, d)
	assert.Less(t, a.ReconstructionError(heldOut), 2e-2)
}

func TestTiedAutoencoder_SaveLoad(t *testing.T) {
	a := newAutoencoder(2, 4, &recordingOptimizer{}, 11)
	x := randomDense(newTestRand(12), 5, 4, 1)
	a.Fit(x, false)

	var buf bytes.Buffer
	require.NoError(t, a.Save(&buf))

	loaded := nn.NewTiedAutoencoder(nn.TiedAutoencoderConfig{
		HiddenUnits:              2,
		HiddenActivation:         nn.Sigmoid{},
		ReconstructionActivation: nn.Identity{},
		Optimizer:                &recordingOptimizer{},
	})
	require.NoError(t, loaded.Load(bytes.NewReader(buf.Bytes())))

	assert.Equal(t, a.Parameters(), loaded.Parameters())
	assert.True(t, mat.Equal(a.Transform(x), loaded.Transform(x)))

	wrongHidden := newAutoencoder(3, 4, &recordingOptimizer{}, 13)
	err := wrongHidden.Load(bytes.NewReader(buf.Bytes()))
	var shapeErr *serialization.ShapeError
	require.True(t, errors.As(err, &shapeErr))
	assert.Equal(t, "weights", shapeErr.Block)
	assert.False(t, wrongHidden.IsFitted())

	err = loaded.Load(bytes.NewReader(buf.Bytes()[:buf.Len()-1]))
	assert.ErrorIs(t, err, serialization.ErrShortRead)
}
