// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

package optim

import (
	"log/slog"

	"github.com/born-ml/mlt/internal/optim"
)

// Observer receives the state after every iteration.
type Observer = optim.Observer

// LogObserver returns an Observer that logs every n-th iteration at info level.
func LogObserver(logger *slog.Logger, n int) Observer {
	return optim.LogObserver(logger, n)
}

// Gradient descent

// GradientDescent minimizes an objective by repeated first-order steps.
type GradientDescent = optim.GradientDescent

// GradientDescentConfig contains configuration for GradientDescent.
type GradientDescentConfig = optim.GradientDescentConfig

// UpdateRule selects how a gradient becomes a parameter step.
type UpdateRule = optim.UpdateRule

// Update rules.
const (
	UpdateGradientDescent = optim.UpdateGradientDescent
	UpdateMomentum        = optim.UpdateMomentum
	UpdateNesterov        = optim.UpdateNesterov
	UpdateAdagrad         = optim.UpdateAdagrad
	UpdateRMSProp         = optim.UpdateRMSProp
	UpdateAdam            = optim.UpdateAdam
)

// NewGradientDescent creates a gradient descent optimizer.
//
// Example:
//
//	gd := optim.NewGradientDescent(optim.GradientDescentConfig{
//	    Epochs:       400,
//	    LearningRate: 0.01,
//	    Update:       optim.UpdateMomentum,
//	})
func NewGradientDescent(config GradientDescentConfig) *GradientDescent {
	return optim.NewGradientDescent(config)
}

// L-BFGS

// LBFGS minimizes an objective with the limited-memory BFGS method.
type LBFGS = optim.LBFGS

// LBFGSConfig contains configuration for LBFGS.
type LBFGSConfig = optim.LBFGSConfig

// ObjectiveDelta is the L-BFGS stopping policy.
type ObjectiveDelta = optim.ObjectiveDelta

// NewLBFGS creates an L-BFGS optimizer.
func NewLBFGS(config LBFGSConfig) *LBFGS {
	return optim.NewLBFGS(config)
}
