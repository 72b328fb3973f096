// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package nn provides parameterized linear models trained through a flat
// parameter vector.
//
// # Overview
//
// This package contains:
//   - Models: LinearClassifier, TiedAutoencoder, LinearRegressor
//   - Activations: Identity, Sigmoid, Tanh, ReLU, Softplus
//   - Classifier losses: SoftmaxCrossEntropy, OneVsAllLogistic
//   - Contracts: Objective, Parameterized, Optimizer, Classifier, Transformer
//
// # Basic Usage
//
//	import (
//	    "github.com/born-ml/mlt/nn"
//	    "github.com/born-ml/mlt/optim"
//	)
//
//	func main() {
//	    clf := nn.NewLinearClassifier(nn.LinearClassifierConfig{
//	        Input:     2,
//	        Output:    2,
//	        Optimizer: optim.NewGradientDescent(optim.GradientDescentConfig{Epochs: 500}),
//	    })
//	    clf.Fit(features, labels, true)
//	    predictions := clf.Classify(features)
//	}
//
// # Flat Parameters
//
// Every model exposes its weights as one vector: NumParameters, Parameters and
// SetParameters. Matrices are flattened column-major and blocks are
// concatenated in a fixed order, so any Optimizer can train any model:
//
//	LinearClassifier: ravel(theta)                 theta is [output, input+1]
//	TiedAutoencoder:  ravel(W), b_hidden, b_recon  W is [hidden, input]
//
// # Tied Autoencoder
//
// The decoder reuses the transposed encoder weights. Both uses contribute to the
// gradient of the single shared block:
//
//	ae := nn.NewTiedAutoencoder(nn.TiedAutoencoderConfig{
//	    HiddenUnits:              3,
//	    HiddenActivation:         nn.Sigmoid{},
//	    ReconstructionActivation: nn.Identity{},
//	    Optimizer:                optim.NewLBFGS(optim.LBFGSConfig{}),
//	})
//	codes := ae.Fit(data, true).Transform(data)
//
// # Persistence
//
// Save and Load write and read the structured parameters as little-endian
// float64 blocks, each preceded by its shape. Loading into a model of a
// different shape fails with a *serialization.ShapeError.
package nn
