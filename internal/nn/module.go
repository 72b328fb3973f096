// Package nn implements the parameterized model contract and concrete models.
//
// This package provides:
//   - Objective / Parameterized: flat-vector view of a model for generic optimizers
//   - Optimizer: the call contract every optimizer strategy satisfies
//   - Classifier / Transformer: inference capabilities, implemented independently
//   - LinearClassifier: multi-class linear scoring with arg-max decisions
//   - TiedAutoencoder: encoder/decoder sharing one transposed weight matrix
//   - LinearRegressor: least-squares linear regression
//   - Activations: Identity, Sigmoid, Tanh, ReLU, Softplus
//
// Every model owns its structured parameters (matrices and intercept vectors).
// The flat parameter vector is a transient copy produced for, and consumed from,
// the optimizer; see tensor.Layout for the block order.
package nn

import (
	"gonum.org/v1/gonum/mat"
)

// Objective is a differentiable function of a flat parameter vector over a data batch.
//
// All methods are pure: they read params, input and target and never mutate the
// model. Rows of input and target are examples and their counts must match.
type Objective interface {
	// Loss returns the scalar objective at params.
	Loss(params []float64, input, target mat.Matrix) float64

	// Gradient returns the analytic gradient at params, with len(params) elements.
	Gradient(params []float64, input, target mat.Matrix) []float64

	// LossAndGradient computes both in a single pass.
	//
	// Optimizers that need both every iteration should prefer this method.
	LossAndGradient(params []float64, input, target mat.Matrix) (float64, []float64)
}

// Parameterized is a model whose trainable scalars can be exchanged as one flat vector.
type Parameterized interface {
	Objective

	// NumParameters returns the fixed length of the flat parameter vector.
	NumParameters() int

	// Parameters returns a copy of the current parameters in the model's block order.
	Parameters() []float64

	// SetParameters replaces the structured parameters from a flat vector.
	//
	// Panics if len(params) != NumParameters().
	SetParameters(params []float64)
}

// Optimizer minimizes an Objective starting from init and returns the best vector found.
//
// warmStart reports whether init comes from a previous fit rather than a fresh
// random initialization. Running out of iterations is not an error.
type Optimizer interface {
	Minimize(obj Objective, input, target mat.Matrix, init []float64, warmStart bool) []float64
}

// Classifier assigns a class index to every example row.
type Classifier interface {
	// Classify returns the predicted class index per example.
	Classify(features mat.Matrix) []int

	// ClassifyWithConfidence also returns the per-class score matrix
	// (classes × examples) the decision was made from.
	ClassifyWithConfidence(features mat.Matrix) ([]int, *mat.Dense)
}

// Transformer maps example rows to a new representation.
type Transformer interface {
	Transform(input mat.Matrix) *mat.Dense
}

// Estimator tracks whether a model holds parameters from a completed fit.
//
// Embed it in models; the zero value is "not fitted".
type Estimator struct {
	fitted bool
}

// IsFitted reports whether the model completed at least one fit (or load).
func (e *Estimator) IsFitted() bool {
	return e.fitted
}

func (e *Estimator) setFitted() {
	e.fitted = true
}
