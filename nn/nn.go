// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

package nn

import (
	"gonum.org/v1/gonum/mat"

	"github.com/born-ml/mlt/internal/nn"
)

// Contracts

// Objective is a differentiable function of a flat parameter vector over a data batch.
type Objective = nn.Objective

// Parameterized is a model whose trainable scalars can be exchanged as one flat vector.
type Parameterized = nn.Parameterized

// Optimizer minimizes an Objective from an initial vector.
type Optimizer = nn.Optimizer

// Classifier assigns a class index to every example row.
type Classifier = nn.Classifier

// Transformer maps example rows to a new representation.
type Transformer = nn.Transformer

// Activations

// Activation is an element-wise nonlinearity with its derivative.
type Activation = nn.Activation

// ActivationFunc adapts a scalar function and its derivative to Activation.
type ActivationFunc = nn.ActivationFunc

// Built-in activations.
type (
	Identity = nn.Identity
	Sigmoid  = nn.Sigmoid
	Tanh     = nn.Tanh
	ReLU     = nn.ReLU
	Softplus = nn.Softplus
)

// Linear classifier

// LinearClassifier implements multi-class linear scoring with an arg-max decision.
type LinearClassifier = nn.LinearClassifier

// LinearClassifierConfig holds configuration for LinearClassifier.
type LinearClassifierConfig = nn.LinearClassifierConfig

// ScoreLoss turns raw class scores into a training loss.
type ScoreLoss = nn.ScoreLoss

// SoftmaxCrossEntropy is the multinomial logistic loss (the default).
type SoftmaxCrossEntropy = nn.SoftmaxCrossEntropy

// OneVsAllLogistic trains one independent logistic model per class.
type OneVsAllLogistic = nn.OneVsAllLogistic

// DefaultEpsilon is the default half-width of the uniform weight initialization.
const DefaultEpsilon = nn.DefaultEpsilon

// NewLinearClassifier creates a classifier with small random weights.
//
// Example:
//
//	clf := nn.NewLinearClassifier(nn.LinearClassifierConfig{Input: 4, Output: 3})
func NewLinearClassifier(config LinearClassifierConfig) *LinearClassifier {
	return nn.NewLinearClassifier(config)
}

// Softmax normalizes each column of a classes × examples score matrix.
func Softmax(scores mat.Matrix) *mat.Dense {
	return nn.Softmax(scores)
}

// Labels packs class indices into the n×1 target matrix used by LinearClassifier objectives.
func Labels(labels []int) *mat.Dense {
	return nn.Labels(labels)
}

// Accuracy returns the fraction of predictions equal to labels.
func Accuracy(predictions, labels []int) float64 {
	return nn.Accuracy(predictions, labels)
}

// Tied autoencoder

// TiedAutoencoder is an autoencoder whose decoder reuses the transposed encoder weights.
type TiedAutoencoder = nn.TiedAutoencoder

// TiedAutoencoderConfig holds configuration for TiedAutoencoder.
type TiedAutoencoderConfig = nn.TiedAutoencoderConfig

// NewTiedAutoencoder creates an unfitted tied autoencoder.
func NewTiedAutoencoder(config TiedAutoencoderConfig) *TiedAutoencoder {
	return nn.NewTiedAutoencoder(config)
}

// AutoencoderInitBound returns the half-width of the tied autoencoder's cold-start init.
func AutoencoderInitBound(hiddenUnits, inputDim int) float64 {
	return nn.AutoencoderInitBound(hiddenUnits, inputDim)
}

// Linear regressor

// LinearRegressor implements least-squares linear regression.
type LinearRegressor = nn.LinearRegressor

// LinearRegressorConfig holds configuration for LinearRegressor.
type LinearRegressorConfig = nn.LinearRegressorConfig

// NewLinearRegressor creates a regressor with small random weights.
func NewLinearRegressor(config LinearRegressorConfig) *LinearRegressor {
	return nn.NewLinearRegressor(config)
}
