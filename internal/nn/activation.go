package nn

import (
	"math"

	"gonum.org/v1/gonum/mat"

	"github.com/born-ml/mlt/internal/tensor"
)

// Activation is an element-wise nonlinearity.
//
// Both methods take the pre-activation z and return a new matrix of the same shape.
type Activation interface {
	// Compute returns f(z).
	Compute(z mat.Matrix) *mat.Dense

	// Derivative returns f'(z).
	Derivative(z mat.Matrix) *mat.Dense
}

// ActivationFunc adapts a scalar function and its derivative to Activation.
//
// Example:
//
//	leaky := nn.ActivationFunc{
//	    F:  func(x float64) float64 { return max(x, 0.01*x) },
//	    DF: func(x float64) float64 { if x > 0 { return 1 }; return 0.01 },
//	}
type ActivationFunc struct {
	F  func(float64) float64
	DF func(float64) float64
}

// Compute applies F element-wise.
func (a ActivationFunc) Compute(z mat.Matrix) *mat.Dense {
	return tensor.Map(z, a.F)
}

// Derivative applies DF element-wise.
func (a ActivationFunc) Derivative(z mat.Matrix) *mat.Dense {
	return tensor.Map(z, a.DF)
}

// Identity is the linear activation: f(z) = z.
type Identity struct{}

// Compute returns a copy of z.
func (Identity) Compute(z mat.Matrix) *mat.Dense {
	return mat.DenseCopyOf(z)
}

// Derivative returns a matrix of ones.
func (Identity) Derivative(z mat.Matrix) *mat.Dense {
	return tensor.Map(z, func(float64) float64 { return 1 })
}

// Sigmoid is the logistic activation: σ(z) = 1 / (1 + exp(-z)).
type Sigmoid struct{}

// Compute applies σ element-wise.
func (Sigmoid) Compute(z mat.Matrix) *mat.Dense {
	return tensor.Map(z, sigmoid)
}

// Derivative returns σ(z)·(1 − σ(z)).
func (Sigmoid) Derivative(z mat.Matrix) *mat.Dense {
	return tensor.Map(z, func(x float64) float64 {
		s := sigmoid(x)
		return s * (1 - s)
	})
}

// Tanh is the hyperbolic tangent activation.
type Tanh struct{}

// Compute applies tanh element-wise.
func (Tanh) Compute(z mat.Matrix) *mat.Dense {
	return tensor.Map(z, math.Tanh)
}

// Derivative returns 1 − tanh²(z).
func (Tanh) Derivative(z mat.Matrix) *mat.Dense {
	return tensor.Map(z, func(x float64) float64 {
		t := math.Tanh(x)
		return 1 - t*t
	})
}

// ReLU is the rectified linear activation: f(z) = max(0, z).
//
// The derivative at exactly 0 is taken to be 0.
type ReLU struct{}

// Compute applies max(0, z) element-wise.
func (ReLU) Compute(z mat.Matrix) *mat.Dense {
	return tensor.Map(z, func(x float64) float64 { return max(0, x) })
}

// Derivative returns 1 where z > 0 and 0 elsewhere.
func (ReLU) Derivative(z mat.Matrix) *mat.Dense {
	return tensor.Map(z, func(x float64) float64 {
		if x > 0 {
			return 1
		}
		return 0
	})
}

// Softplus is the smooth rectifier: f(z) = log(1 + exp(z)).
type Softplus struct{}

// Compute applies log(1 + exp(z)) element-wise without overflow for large z.
func (Softplus) Compute(z mat.Matrix) *mat.Dense {
	return tensor.Map(z, func(x float64) float64 {
		if x > 30 {
			return x
		}
		return math.Log1p(math.Exp(x))
	})
}

// Derivative returns σ(z).
func (Softplus) Derivative(z mat.Matrix) *mat.Dense {
	return tensor.Map(z, sigmoid)
}

// sigmoid is the numerically stable logistic function.
func sigmoid(x float64) float64 {
	if x >= 0 {
		return 1 / (1 + math.Exp(-x))
	}
	e := math.Exp(x)
	return e / (1 + e)
}
