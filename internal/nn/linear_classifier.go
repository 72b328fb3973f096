package nn

import (
	"fmt"
	"io"
	"math/rand/v2"

	"gonum.org/v1/gonum/mat"

	"github.com/born-ml/mlt/internal/serialization"
	"github.com/born-ml/mlt/internal/tensor"
)

// LinearClassifier implements multi-class linear scoring with an arg-max decision.
//
// The model holds one weight matrix theta with shape [output, input+1]. Column 0
// is the intercept: every example is prefixed with a constant 1 feature before
// scoring, so
//
//	scores = theta · [1 | X]ᵀ      // [output, n]
//	class  = argmax over rows of each column
//
// The flat parameter vector is ravel(theta) (column-major), of length
// output*(input+1).
//
// Example:
//
//	clf := nn.NewLinearClassifier(nn.LinearClassifierConfig{
//	    Input:     2,
//	    Output:    2,
//	    Optimizer: optim.NewGradientDescent(optim.GradientDescentConfig{Epochs: 200}),
//	})
//	clf.Fit(features, labels, true)
//	predictions := clf.Classify(features)
type LinearClassifier struct {
	Estimator

	input          int
	output         int
	epsilon        float64
	loss           ScoreLoss
	regularization float64
	optimizer      Optimizer
	rng            *rand.Rand

	theta *mat.Dense // [output, input+1]
}

// LinearClassifierConfig holds configuration for LinearClassifier.
type LinearClassifierConfig struct {
	Input          int        // Number of features (> 0)
	Output         int        // Number of classes (> 1)
	Epsilon        float64    // Half-width of the uniform weight init (default: DefaultEpsilon)
	Loss           ScoreLoss  // Training loss (default: SoftmaxCrossEntropy)
	Regularization float64    // L2 strength on non-intercept weights (>= 0)
	Optimizer      Optimizer  // Used by Fit; may be nil for inference-only models
	Rand           *rand.Rand // Source for weight init (default: randomly seeded)
}

// NewLinearClassifier creates a classifier with small random weights.
//
// Panics if Input <= 0, Output < 2 or Regularization < 0.
func NewLinearClassifier(config LinearClassifierConfig) *LinearClassifier {
	if config.Input <= 0 {
		panic(fmt.Sprintf("NewLinearClassifier: input must be positive, got %d", config.Input))
	}
	if config.Output <= 1 {
		panic(fmt.Sprintf("NewLinearClassifier: output must be at least 2 classes, got %d", config.Output))
	}
	if config.Regularization < 0 {
		panic(fmt.Sprintf("NewLinearClassifier: regularization must be non-negative, got %v", config.Regularization))
	}
	if config.Epsilon == 0 {
		config.Epsilon = DefaultEpsilon
	}
	if config.Loss == nil {
		config.Loss = SoftmaxCrossEntropy{}
	}

	c := &LinearClassifier{
		input:          config.Input,
		output:         config.Output,
		epsilon:        config.Epsilon,
		loss:           config.Loss,
		regularization: config.Regularization,
		optimizer:      config.Optimizer,
		rng:            newRand(config.Rand),
	}
	c.theta = tensor.Uniform(c.output, c.input+1, c.epsilon, c.rng)
	return c
}

// Input returns the number of features.
func (c *LinearClassifier) Input() int { return c.input }

// Output returns the number of classes.
func (c *LinearClassifier) Output() int { return c.output }

// ClassifyWithConfidence returns the predicted class per example and the raw
// score matrix [output, n] the decision was taken from.
//
// The scores are not normalized; apply Softmax to obtain probabilities.
// Ties resolve to the lowest class index.
func (c *LinearClassifier) ClassifyWithConfidence(features mat.Matrix) ([]int, *mat.Dense) {
	c.checkFeatures("LinearClassifier.Classify", features)

	scores := c.score(c.theta, tensor.PrependOnes(features))
	return tensor.ArgMaxCols(scores), scores
}

// Classify returns the predicted class per example.
func (c *LinearClassifier) Classify(features mat.Matrix) []int {
	classes, _ := c.ClassifyWithConfidence(features)
	return classes
}

// NumParameters returns output*(input+1).
func (c *LinearClassifier) NumParameters() int {
	return c.output * (c.input + 1)
}

// Parameters returns ravel(theta).
func (c *LinearClassifier) Parameters() []float64 {
	return tensor.Ravel(c.theta)
}

// SetParameters replaces theta from its column-major flattening.
func (c *LinearClassifier) SetParameters(params []float64) {
	c.checkParams("LinearClassifier.SetParameters", params)
	c.theta = tensor.Unravel(params, c.output, c.input+1)
}

// Theta returns a copy of the weight matrix [output, input+1].
func (c *LinearClassifier) Theta() *mat.Dense {
	return mat.DenseCopyOf(c.theta)
}

// SetTheta replaces the weight matrix.
//
// Panics unless theta has shape [output, input+1].
func (c *LinearClassifier) SetTheta(theta mat.Matrix) {
	r, col := theta.Dims()
	if r != c.output || col != c.input+1 {
		panic(fmt.Sprintf("LinearClassifier.SetTheta: got %dx%d, want %dx%d", r, col, c.output, c.input+1))
	}
	c.theta = mat.DenseCopyOf(theta)
}

// Loss returns the training loss of params on (features, labels).
//
// labels is an [n, 1] matrix of class indices (see Labels).
func (c *LinearClassifier) Loss(params []float64, features, labels mat.Matrix) float64 {
	loss, _ := c.lossAndGradient("LinearClassifier.Loss", params, features, labels, false)
	return loss
}

// Gradient returns the gradient of Loss w.r.t. params.
func (c *LinearClassifier) Gradient(params []float64, features, labels mat.Matrix) []float64 {
	_, grad := c.lossAndGradient("LinearClassifier.Gradient", params, features, labels, true)
	return grad
}

// LossAndGradient returns Loss and Gradient from one forward pass.
func (c *LinearClassifier) LossAndGradient(params []float64, features, labels mat.Matrix) (float64, []float64) {
	return c.lossAndGradient("LinearClassifier.LossAndGradient", params, features, labels, true)
}

func (c *LinearClassifier) lossAndGradient(op string, params []float64, features, labels mat.Matrix, withGrad bool) (float64, []float64) {
	c.checkParams(op, params)
	c.checkFeatures(op, features)
	tensor.SameRows(op, features, labels)

	theta := tensor.Unravel(params, c.output, c.input+1)
	x := tensor.PrependOnes(features)

	loss, dScores := c.loss.LossAndGradient(c.score(theta, x), labelsOf(op, labels))

	// Intercepts are not regularized.
	weights := theta.Slice(0, c.output, 1, c.input+1)
	loss += c.regularization / 2 * tensor.FrobeniusSq(weights)

	if !withGrad {
		return loss, nil
	}

	// ∂L/∂theta = ∂L/∂scores · [1 | X]
	var grad mat.Dense
	grad.Mul(dScores, x)
	for i := 0; i < c.output; i++ {
		for j := 1; j <= c.input; j++ {
			grad.Set(i, j, grad.At(i, j)+c.regularization*theta.At(i, j))
		}
	}
	return loss, tensor.Ravel(&grad)
}

// Fit trains theta on features and labels with the configured optimizer.
//
// A cold start re-draws theta uniformly in ±Epsilon; otherwise training resumes
// from the current theta. Returns the classifier for chaining.
func (c *LinearClassifier) Fit(features mat.Matrix, labels []int, coldStart bool) *LinearClassifier {
	if c.optimizer == nil {
		panic("LinearClassifier.Fit: no optimizer configured")
	}

	init := c.Parameters()
	if coldStart {
		init = tensor.UniformVector(c.NumParameters(), c.epsilon, c.rng)
	}

	params := c.optimizer.Minimize(c, features, Labels(labels), init, !coldStart)
	c.SetParameters(params)
	c.setFitted()
	return c
}

// Save writes theta as a single serialization block.
func (c *LinearClassifier) Save(w io.Writer) error {
	return serialization.WriteBlocks(w, c.theta)
}

// Load reads theta written by Save and marks the classifier fitted.
//
// On error the classifier is left unchanged.
func (c *LinearClassifier) Load(r io.Reader) error {
	blocks, err := serialization.ReadLayout(r, c.layout())
	if err != nil {
		return fmt.Errorf("failed to load linear classifier: %w", err)
	}
	c.theta = blocks[0]
	c.setFitted()
	return nil
}

func (c *LinearClassifier) layout() tensor.Layout {
	return tensor.Layout{{Name: "theta", Rows: c.output, Cols: c.input + 1}}
}

// score returns theta · xᵀ, one row per class and one column per example.
func (c *LinearClassifier) score(theta, x *mat.Dense) *mat.Dense {
	var scores mat.Dense
	scores.Mul(theta, x.T())
	return &scores
}

func (c *LinearClassifier) checkFeatures(op string, features mat.Matrix) {
	if _, cols := features.Dims(); cols != c.input {
		panic(fmt.Sprintf("%s: expected %d features, got %d", op, c.input, cols))
	}
}

func (c *LinearClassifier) checkParams(op string, params []float64) {
	if len(params) != c.NumParameters() {
		panic(fmt.Sprintf("%s: expected %d parameters, got %d", op, c.NumParameters(), len(params)))
	}
}
