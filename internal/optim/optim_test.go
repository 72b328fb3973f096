package optim_test

import (
	"bytes"
	"log/slog"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"

	"github.com/born-ml/mlt/internal/optim"
)

// quadratic is f(x) = ½·Σ scale_i·(x_i − center_i)², independent of the data.
type quadratic struct {
	center []float64
	scale  []float64
}

func (q quadratic) Loss(params []float64, _, _ mat.Matrix) float64 {
	var sum float64
	for i, p := range params {
		d := p - q.center[i]
		sum += 0.5 * q.scale[i] * d * d
	}
	return sum
}

func (q quadratic) Gradient(params []float64, _, _ mat.Matrix) []float64 {
	grad := make([]float64, len(params))
	for i, p := range params {
		grad[i] = q.scale[i] * (p - q.center[i])
	}
	return grad
}

func (q quadratic) LossAndGradient(params []float64, input, target mat.Matrix) (float64, []float64) {
	return q.Loss(params, input, target), q.Gradient(params, input, target)
}

// rosenbrock is the 2-D Rosenbrock function with its minimum at (1, 1).
type rosenbrock struct{}

func (rosenbrock) Loss(p []float64, _, _ mat.Matrix) float64 {
	a, b := 1-p[0], p[1]-p[0]*p[0]
	return a*a + 100*b*b
}

func (rosenbrock) Gradient(p []float64, _, _ mat.Matrix) []float64 {
	b := p[1] - p[0]*p[0]
	return []float64{
		-2*(1-p[0]) - 400*p[0]*b,
		200 * b,
	}
}

func (r rosenbrock) LossAndGradient(p []float64, input, target mat.Matrix) (float64, []float64) {
	return r.Loss(p, input, target), r.Gradient(p, input, target)
}

// batchRecorder records the first column of every batch it is asked for.
type batchRecorder struct {
	batches [][]float64
}

func (b *batchRecorder) Loss([]float64, mat.Matrix, mat.Matrix) float64 { return 0 }

func (b *batchRecorder) Gradient(params []float64, input, _ mat.Matrix) []float64 {
	b.batches = append(b.batches, mat.Col(nil, 0, input))
	return make([]float64, len(params))
}

func (b *batchRecorder) LossAndGradient(params []float64, input, target mat.Matrix) (float64, []float64) {
	return 0, b.Gradient(params, input, target)
}

// dummyData returns n rows whose single column holds the row index.
func dummyData(n int) (*mat.Dense, *mat.Dense) {
	input := mat.NewDense(n, 1, nil)
	for i := 0; i < n; i++ {
		input.Set(i, 0, float64(i))
	}
	return input, mat.NewDense(n, 1, nil)
}

func newQuadratic() quadratic {
	return quadratic{center: []float64{1, -2}, scale: []float64{1, 2}}
}

func TestGradientDescent_Defaults(t *testing.T) {
	gd := optim.NewGradientDescent(optim.GradientDescentConfig{})
	assert.Equal(t, 100, gd.Epochs())
	assert.Equal(t, 0.01, gd.LearningRate())
}

func TestGradientDescent_InvalidConfigPanics(t *testing.T) {
	assert.Panics(t, func() { optim.NewGradientDescent(optim.GradientDescentConfig{Epochs: -1}) })
	assert.Panics(t, func() { optim.NewGradientDescent(optim.GradientDescentConfig{BatchSize: -1}) })
	assert.Panics(t, func() { optim.NewGradientDescent(optim.GradientDescentConfig{LearningRate: -1}) })
	assert.Panics(t, func() { optim.NewGradientDescent(optim.GradientDescentConfig{Update: optim.UpdateRule(42)}) })
}

func TestGradientDescent_Converges(t *testing.T) {
	input, target := dummyData(4)
	q := newQuadratic()

	for _, rule := range []optim.UpdateRule{optim.UpdateGradientDescent, optim.UpdateMomentum, optim.UpdateNesterov} {
		t.Run(rule.String(), func(t *testing.T) {
			gd := optim.NewGradientDescent(optim.GradientDescentConfig{
				Epochs:       500,
				LearningRate: 0.1,
				Update:       rule,
			})
			x := gd.Minimize(q, input, target, []float64{3, 3}, false)
			assert.InDelta(t, 1.0, x[0], 1e-3)
			assert.InDelta(t, -2.0, x[1], 1e-3)
		})
	}
}

func TestGradientDescent_AdaptiveRulesMakeProgress(t *testing.T) {
	input, target := dummyData(4)
	q := newQuadratic()
	init := []float64{3, 3}
	start := q.Loss(init, nil, nil)

	for _, rule := range []optim.UpdateRule{optim.UpdateAdagrad, optim.UpdateRMSProp, optim.UpdateAdam} {
		t.Run(rule.String(), func(t *testing.T) {
			gd := optim.NewGradientDescent(optim.GradientDescentConfig{
				Epochs:            500,
				LearningRate:      0.5,
				LearningRateDecay: 0.99,
				Update:            rule,
			})
			x := gd.Minimize(q, input, target, init, false)
			assert.Less(t, q.Loss(x, nil, nil), start/10)
		})
	}
}

func TestGradientDescent_DoesNotModifyInit(t *testing.T) {
	input, target := dummyData(2)
	init := []float64{3, 3}
	gd := optim.NewGradientDescent(optim.GradientDescentConfig{Epochs: 10, LearningRate: 0.1})

	x := gd.Minimize(newQuadratic(), input, target, init, false)
	assert.Equal(t, []float64{3, 3}, init)
	assert.NotEqual(t, init, x)
}

func TestGradientDescent_MiniBatches(t *testing.T) {
	input, target := dummyData(10)
	rec := &batchRecorder{}
	gd := optim.NewGradientDescent(optim.GradientDescentConfig{Epochs: 2, BatchSize: 3})

	gd.Minimize(rec, input, target, []float64{0}, false)

	require.Len(t, rec.batches, 8)
	assert.Equal(t, []float64{0, 1, 2}, rec.batches[0])
	assert.Equal(t, []float64{9}, rec.batches[3])
	assert.Equal(t, []float64{0, 1, 2}, rec.batches[4])
}

func TestGradientDescent_FullBatchWhenLarger(t *testing.T) {
	input, target := dummyData(5)
	rec := &batchRecorder{}
	gd := optim.NewGradientDescent(optim.GradientDescentConfig{Epochs: 3, BatchSize: 50})

	gd.Minimize(rec, input, target, []float64{0}, false)

	require.Len(t, rec.batches, 3)
	for _, b := range rec.batches {
		assert.Len(t, b, 5)
	}
}

func TestGradientDescent_ShuffleCoversEveryRow(t *testing.T) {
	input, target := dummyData(10)
	run := func(seed uint64) [][]float64 {
		rec := &batchRecorder{}
		gd := optim.NewGradientDescent(optim.GradientDescentConfig{
			Epochs:    3,
			BatchSize: 4,
			Shuffle:   true,
			Seed:      seed,
		})
		gd.Minimize(rec, input, target, []float64{0}, false)
		return rec.batches
	}

	batches := run(7)
	require.Len(t, batches, 9)
	for epoch := 0; epoch < 3; epoch++ {
		seen := make(map[float64]int)
		for _, b := range batches[epoch*3 : epoch*3+3] {
			for _, v := range b {
				seen[v]++
			}
		}
		assert.Len(t, seen, 10, "epoch %d", epoch)
	}

	assert.Equal(t, batches, run(7), "same seed, same order")
}

func TestGradientDescent_Observer(t *testing.T) {
	input, target := dummyData(3)
	var iterations []int
	var values []float64
	gd := optim.NewGradientDescent(optim.GradientDescentConfig{
		Epochs:       20,
		LearningRate: 0.1,
		Observer: func(iteration int, x []float64, value float64, gradient []float64) {
			assert.Len(t, x, 2)
			assert.Len(t, gradient, 2)
			iterations = append(iterations, iteration)
			values = append(values, value)
		},
	})

	gd.Minimize(newQuadratic(), input, target, []float64{3, 3}, false)

	require.Len(t, iterations, 20)
	for i, it := range iterations {
		assert.Equal(t, i, it)
	}
	for i := 1; i < len(values); i++ {
		assert.LessOrEqual(t, values[i], values[i-1])
	}
}

func TestLBFGS_Defaults(t *testing.T) {
	l := optim.NewLBFGS(optim.LBFGSConfig{})
	assert.Equal(t, optim.ObjectiveDelta{Delta: 1e-7, MaxIterations: 250}, l.Stop())
}

func TestLBFGS_InvalidConfigPanics(t *testing.T) {
	assert.Panics(t, func() { optim.NewLBFGS(optim.LBFGSConfig{History: -1}) })
	assert.Panics(t, func() { optim.NewLBFGS(optim.LBFGSConfig{Stop: optim.ObjectiveDelta{Delta: -1}}) })
}

func TestLBFGS_Quadratic(t *testing.T) {
	input, target := dummyData(1)
	l := optim.NewLBFGS(optim.LBFGSConfig{Stop: optim.ObjectiveDelta{Delta: 1e-14}})

	x := l.Minimize(newQuadratic(), input, target, []float64{3, 3}, false)
	assert.InDelta(t, 1.0, x[0], 1e-5)
	assert.InDelta(t, -2.0, x[1], 1e-5)
}

func TestLBFGS_Rosenbrock(t *testing.T) {
	input, target := dummyData(1)
	l := optim.NewLBFGS(optim.LBFGSConfig{
		Stop: optim.ObjectiveDelta{Delta: 1e-14, MaxIterations: 1000},
	})

	init := []float64{-1.2, 1}
	x := l.Minimize(rosenbrock{}, input, target, init, false)
	assert.InDelta(t, 1.0, x[0], 1e-4)
	assert.InDelta(t, 1.0, x[1], 1e-4)
	assert.Equal(t, []float64{-1.2, 1}, init)
}

func TestLBFGS_IterationCapReturnsBest(t *testing.T) {
	input, target := dummyData(1)
	calls := 0
	l := optim.NewLBFGS(optim.LBFGSConfig{
		Stop:     optim.ObjectiveDelta{MaxIterations: 3},
		Observer: func(int, []float64, float64, []float64) { calls++ },
	})

	init := []float64{-1.2, 1}
	x := l.Minimize(rosenbrock{}, input, target, init, false)

	assert.LessOrEqual(t, calls, 3)
	assert.Less(t, rosenbrock{}.Loss(x, nil, nil), rosenbrock{}.Loss(init, nil, nil))
}

func TestLBFGS_Observer(t *testing.T) {
	input, target := dummyData(1)
	var iterations []int
	var values []float64
	l := optim.NewLBFGS(optim.LBFGSConfig{
		Observer: func(iteration int, x []float64, value float64, gradient []float64) {
			assert.Len(t, x, 2)
			assert.Len(t, gradient, 2)
			iterations = append(iterations, iteration)
			values = append(values, value)
		},
	})

	l.Minimize(rosenbrock{}, input, target, []float64{-1.2, 1}, false)

	require.NotEmpty(t, iterations)
	for i, it := range iterations {
		assert.Equal(t, iterations[0]+i, it)
	}
	for i := 1; i < len(values); i++ {
		assert.LessOrEqual(t, values[i], values[i-1]+1e-12)
	}
}

func TestLBFGS_AlreadyOptimal(t *testing.T) {
	input, target := dummyData(1)
	l := optim.NewLBFGS(optim.LBFGSConfig{})

	x := l.Minimize(newQuadratic(), input, target, []float64{1, -2}, true)
	assert.Equal(t, []float64{1, -2}, x)
}

func TestLogObserver(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, nil))
	obs := optim.LogObserver(logger, 2)

	obs(0, []float64{1}, 0.5, []float64{3, 4})
	obs(1, []float64{1}, 0.25, []float64{0, 0})
	obs(2, []float64{1}, math.Pi, []float64{0, 1})

	out := buf.String()
	assert.Contains(t, out, "iteration=0")
	assert.Contains(t, out, "objective=0.5")
	assert.Contains(t, out, "gradient_norm=5")
	assert.NotContains(t, out, "iteration=1")
	assert.Contains(t, out, "iteration=2")
}
