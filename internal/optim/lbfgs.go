package optim

import (
	"fmt"
	"slices"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/optimize"

	"github.com/born-ml/mlt/internal/nn"
)

// ObjectiveDelta stops a run once an iteration improves the objective by less
// than Delta, or after MaxIterations major iterations.
type ObjectiveDelta struct {
	Delta         float64 // Absolute improvement threshold (default: 1e-7)
	MaxIterations int     // Iteration cap (default: 250)
}

// LBFGS minimizes an objective with the limited-memory BFGS quasi-Newton method.
//
// Every function evaluation runs over the full input. Hitting MaxIterations or
// a failed line search returns the best vector found, never an error.
type LBFGS struct {
	history           int
	stop              ObjectiveDelta
	gradientThreshold float64
	observer          Observer
}

// LBFGSConfig holds configuration for LBFGS.
type LBFGSConfig struct {
	History           int            // Number of stored correction pairs (default: 15)
	Stop              ObjectiveDelta // Stopping policy
	GradientThreshold float64        // Stop when ‖∇‖∞ falls below this (default: 1e-10)
	Observer          Observer       // Per-iteration callback (optional)
}

// NewLBFGS creates an L-BFGS optimizer.
func NewLBFGS(config LBFGSConfig) *LBFGS {
	if config.History < 0 || config.Stop.MaxIterations < 0 {
		panic(fmt.Sprintf("NewLBFGS: history and max iterations must be non-negative, got %d and %d",
			config.History, config.Stop.MaxIterations))
	}
	if config.Stop.Delta < 0 || config.GradientThreshold < 0 {
		panic("NewLBFGS: delta and gradient threshold must be non-negative")
	}

	if config.History == 0 {
		config.History = 15
	}
	if config.Stop.Delta == 0 {
		config.Stop.Delta = 1e-7
	}
	if config.Stop.MaxIterations == 0 {
		config.Stop.MaxIterations = 250
	}
	if config.GradientThreshold == 0 {
		config.GradientThreshold = 1e-10
	}

	return &LBFGS{
		history:           config.History,
		stop:              config.Stop,
		gradientThreshold: config.GradientThreshold,
		observer:          config.Observer,
	}
}

// Stop returns the stopping policy in effect.
func (l *LBFGS) Stop() ObjectiveDelta {
	return l.stop
}

// Minimize runs L-BFGS from init over the full batch and returns the best
// vector found. init is not modified.
//
// The method keeps no curvature history between calls, so the warm-start flag
// has no effect beyond the choice of init.
func (l *LBFGS) Minimize(obj nn.Objective, input, target mat.Matrix, init []float64, _ bool) []float64 {
	if len(init) == 0 {
		return nil
	}

	eval := &evaluator{obj: obj, input: input, target: target}
	problem := optimize.Problem{
		Func: eval.value,
		Grad: eval.gradient,
	}

	settings := &optimize.Settings{
		GradientThreshold: l.gradientThreshold,
		MajorIterations:   l.stop.MaxIterations,
		Converger: &optimize.FunctionConverge{
			Absolute:   l.stop.Delta,
			Iterations: 1,
		},
	}
	if l.observer != nil {
		settings.Recorder = observerRecorder{fn: l.observer}
	}

	// A failed line search still reports the best location in result.
	result, err := optimize.Minimize(problem, init, settings, &optimize.LBFGS{Store: l.history})
	if err != nil && (result == nil || len(result.X) != len(init)) {
		return slices.Clone(init)
	}
	return slices.Clone(result.X)
}

// evaluator caches the last LossAndGradient so a function evaluation followed by
// a gradient evaluation at the same point costs one pass.
type evaluator struct {
	obj    nn.Objective
	input  mat.Matrix
	target mat.Matrix

	lastX     []float64
	lastValue float64
	lastGrad  []float64
}

func (e *evaluator) evaluate(x []float64) {
	if e.lastX != nil && slices.Equal(e.lastX, x) {
		return
	}
	e.lastValue, e.lastGrad = e.obj.LossAndGradient(x, e.input, e.target)
	e.lastX = append(e.lastX[:0], x...)
}

func (e *evaluator) value(x []float64) float64 {
	e.evaluate(x)
	return e.lastValue
}

func (e *evaluator) gradient(grad, x []float64) {
	e.evaluate(x)
	copy(grad, e.lastGrad)
}

// observerRecorder forwards major iterations to an Observer.
type observerRecorder struct {
	fn Observer
}

func (observerRecorder) Init() error { return nil }

func (r observerRecorder) Record(loc *optimize.Location, op optimize.Operation, stats *optimize.Stats) error {
	if op != optimize.MajorIteration {
		return nil
	}
	r.fn(stats.MajorIterations, loc.X, loc.F, loc.Gradient)
	return nil
}
