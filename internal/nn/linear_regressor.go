package nn

import (
	"fmt"
	"io"
	"math/rand/v2"

	"gonum.org/v1/gonum/mat"

	"github.com/born-ml/mlt/internal/serialization"
	"github.com/born-ml/mlt/internal/tensor"
)

// LinearRegressor implements least-squares linear regression.
//
// theta has shape [output, input+1] with the intercept in column 0:
//
//	prediction = [1 | X] · thetaᵀ                                   // [n, output]
//	Loss       = 1/(2n)·‖prediction − Y‖² + λ/2·‖theta[:, 1:]‖²
//
// It can be trained iteratively through Fit or in closed form through FitNormal.
type LinearRegressor struct {
	Estimator

	input          int
	output         int
	epsilon        float64
	regularization float64
	optimizer      Optimizer
	rng            *rand.Rand

	theta *mat.Dense // [output, input+1]
}

// LinearRegressorConfig holds configuration for LinearRegressor.
type LinearRegressorConfig struct {
	Input          int        // Number of features (> 0)
	Output         int        // Number of regression targets (> 0)
	Epsilon        float64    // Half-width of the uniform weight init (default: DefaultEpsilon)
	Regularization float64    // L2 strength on non-intercept weights (>= 0)
	Optimizer      Optimizer  // Used by Fit; may be nil when only FitNormal is used
	Rand           *rand.Rand // Source for weight init (default: randomly seeded)
}

// NewLinearRegressor creates a regressor with small random weights.
func NewLinearRegressor(config LinearRegressorConfig) *LinearRegressor {
	if config.Input <= 0 || config.Output <= 0 {
		panic(fmt.Sprintf("NewLinearRegressor: input and output must be positive, got %d and %d", config.Input, config.Output))
	}
	if config.Regularization < 0 {
		panic(fmt.Sprintf("NewLinearRegressor: regularization must be non-negative, got %v", config.Regularization))
	}
	if config.Epsilon == 0 {
		config.Epsilon = DefaultEpsilon
	}

	r := &LinearRegressor{
		input:          config.Input,
		output:         config.Output,
		epsilon:        config.Epsilon,
		regularization: config.Regularization,
		optimizer:      config.Optimizer,
		rng:            newRand(config.Rand),
	}
	r.theta = tensor.Uniform(r.output, r.input+1, r.epsilon, r.rng)
	return r
}

// Regress predicts targets [n, output] for features [n, input].
func (r *LinearRegressor) Regress(features mat.Matrix) *mat.Dense {
	r.checkFeatures("LinearRegressor.Regress", features)

	var out mat.Dense
	out.Mul(tensor.PrependOnes(features), r.theta.T())
	return &out
}

// NumParameters returns output*(input+1).
func (r *LinearRegressor) NumParameters() int {
	return r.output * (r.input + 1)
}

// Parameters returns ravel(theta).
func (r *LinearRegressor) Parameters() []float64 {
	return tensor.Ravel(r.theta)
}

// SetParameters replaces theta from its column-major flattening.
func (r *LinearRegressor) SetParameters(params []float64) {
	r.checkParams("LinearRegressor.SetParameters", params)
	r.theta = tensor.Unravel(params, r.output, r.input+1)
}

// Theta returns a copy of the weight matrix [output, input+1].
func (r *LinearRegressor) Theta() *mat.Dense {
	return mat.DenseCopyOf(r.theta)
}

// Loss returns the regularized mean squared error of params.
func (r *LinearRegressor) Loss(params []float64, features, targets mat.Matrix) float64 {
	loss, _ := r.lossAndGradient("LinearRegressor.Loss", params, features, targets, false)
	return loss
}

// Gradient returns the gradient of Loss w.r.t. params.
func (r *LinearRegressor) Gradient(params []float64, features, targets mat.Matrix) []float64 {
	_, grad := r.lossAndGradient("LinearRegressor.Gradient", params, features, targets, true)
	return grad
}

// LossAndGradient returns Loss and Gradient from one pass.
func (r *LinearRegressor) LossAndGradient(params []float64, features, targets mat.Matrix) (float64, []float64) {
	return r.lossAndGradient("LinearRegressor.LossAndGradient", params, features, targets, true)
}

func (r *LinearRegressor) lossAndGradient(op string, params []float64, features, targets mat.Matrix, withGrad bool) (float64, []float64) {
	r.checkParams(op, params)
	r.checkFeatures(op, features)
	tensor.SameRows(op, features, targets)
	if _, c := targets.Dims(); c != r.output {
		panic(fmt.Sprintf("%s: expected %d target columns, got %d", op, r.output, c))
	}

	n, _ := features.Dims()
	theta := tensor.Unravel(params, r.output, r.input+1)
	x := tensor.PrependOnes(features)

	var residual mat.Dense
	residual.Mul(x, theta.T())
	residual.Sub(&residual, targets)

	loss := tensor.FrobeniusSq(&residual)/(2*float64(n)) +
		r.regularization/2*tensor.FrobeniusSq(theta.Slice(0, r.output, 1, r.input+1))
	if !withGrad {
		return loss, nil
	}

	var grad mat.Dense
	grad.Mul(residual.T(), x)
	grad.Scale(1/float64(n), &grad)
	for i := 0; i < r.output; i++ {
		for j := 1; j <= r.input; j++ {
			grad.Set(i, j, grad.At(i, j)+r.regularization*theta.At(i, j))
		}
	}
	return loss, tensor.Ravel(&grad)
}

// Fit trains theta with the configured optimizer and returns the regressor.
func (r *LinearRegressor) Fit(features, targets mat.Matrix, coldStart bool) *LinearRegressor {
	if r.optimizer == nil {
		panic("LinearRegressor.Fit: no optimizer configured")
	}

	init := r.Parameters()
	if coldStart {
		init = tensor.UniformVector(r.NumParameters(), r.epsilon, r.rng)
	}

	r.SetParameters(r.optimizer.Minimize(r, features, targets, init, !coldStart))
	r.setFitted()
	return r
}

// FitNormal solves the regularized normal equations
//
//	(XbᵀXb + n·λ·D)·thetaᵀ = XbᵀY,   D = diag(0, 1, ..., 1)
//
// for the exact minimizer of Loss. Returns an error if the system is singular.
func (r *LinearRegressor) FitNormal(features, targets mat.Matrix) error {
	r.checkFeatures("LinearRegressor.FitNormal", features)
	tensor.SameRows("LinearRegressor.FitNormal", features, targets)
	if _, c := targets.Dims(); c != r.output {
		panic(fmt.Sprintf("LinearRegressor.FitNormal: expected %d target columns, got %d", r.output, c))
	}

	n, _ := features.Dims()
	x := tensor.PrependOnes(features)

	var gram mat.Dense
	gram.Mul(x.T(), x)
	for j := 1; j <= r.input; j++ {
		gram.Set(j, j, gram.At(j, j)+float64(n)*r.regularization)
	}

	var rhs mat.Dense
	rhs.Mul(x.T(), targets)

	var thetaT mat.Dense
	if err := thetaT.Solve(&gram, &rhs); err != nil {
		return fmt.Errorf("failed to solve normal equations: %w", err)
	}

	r.theta = mat.DenseCopyOf(thetaT.T())
	r.setFitted()
	return nil
}

// Save writes theta as a single serialization block.
func (r *LinearRegressor) Save(w io.Writer) error {
	return serialization.WriteBlocks(w, r.theta)
}

// Load reads theta written by Save and marks the regressor fitted.
func (r *LinearRegressor) Load(rd io.Reader) error {
	blocks, err := serialization.ReadLayout(rd, tensor.Layout{{Name: "theta", Rows: r.output, Cols: r.input + 1}})
	if err != nil {
		return fmt.Errorf("failed to load linear regressor: %w", err)
	}
	r.theta = blocks[0]
	r.setFitted()
	return nil
}

func (r *LinearRegressor) checkFeatures(op string, features mat.Matrix) {
	if _, cols := features.Dims(); cols != r.input {
		panic(fmt.Sprintf("%s: expected %d features, got %d", op, r.input, cols))
	}
}

func (r *LinearRegressor) checkParams(op string, params []float64) {
	if len(params) != r.NumParameters() {
		panic(fmt.Sprintf("%s: expected %d parameters, got %d", op, r.NumParameters(), len(params)))
	}
}
