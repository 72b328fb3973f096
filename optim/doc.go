// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package optim provides optimizers for models that expose a flat parameter vector.
//
// # Overview
//
// This package contains:
//   - GradientDescent: full-batch or mini-batch first-order descent with
//     plain, momentum, Nesterov, Adagrad, RMSProp and Adam update rules
//   - LBFGS: limited-memory quasi-Newton method stopping on a small objective change
//   - Observer and LogObserver: per-iteration progress reporting
//
// # Basic Usage
//
//	gd := optim.NewGradientDescent(optim.GradientDescentConfig{
//	    Epochs:       200,
//	    BatchSize:    32,
//	    LearningRate: 0.05,
//	    Update:       optim.UpdateAdam,
//	    Shuffle:      true,
//	})
//
//	lbfgs := optim.NewLBFGS(optim.LBFGSConfig{
//	    Stop:     optim.ObjectiveDelta{Delta: 1e-9, MaxIterations: 500},
//	    Observer: optim.LogObserver(slog.Default(), 10),
//	})
//
// Optimizers hold configuration only. The same instance can train any number of
// models, one after another or concurrently.
package optim
