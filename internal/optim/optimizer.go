// Package optim implements iterative optimizers over flat parameter vectors.
//
// This package provides:
//   - GradientDescent: batch / mini-batch gradient descent with pluggable update
//     rules (plain, momentum, Nesterov, Adagrad, RMSProp, Adam)
//   - LBFGS: limited-memory quasi-Newton line search with an objective-delta
//     stopping policy
//   - Observer: per-iteration progress callback (never used for control flow)
//
// Every optimizer satisfies nn.Optimizer and works with any nn.Objective, so a
// model with several differently shaped weight blocks is optimized exactly like
// a single vector. Optimizers carry no state between calls and can be shared by
// independent models.
//
// Example usage:
//
//	gd := optim.NewGradientDescent(optim.GradientDescentConfig{
//	    Epochs:       400,
//	    LearningRate: 0.01,
//	    Update:       optim.UpdateMomentum,
//	})
//	params := gd.Minimize(model, input, target, model.Parameters(), false)
//	model.SetParameters(params)
package optim

import (
	"log/slog"

	"gonum.org/v1/gonum/floats"

	"github.com/born-ml/mlt/internal/nn"
)

// Observer receives the state after every iteration (epoch for GradientDescent).
//
// x and gradient must be treated as read-only and must not be retained.
type Observer func(iteration int, x []float64, value float64, gradient []float64)

// LogObserver returns an Observer that logs every n-th iteration at info level.
//
// n <= 1 logs every iteration.
func LogObserver(logger *slog.Logger, n int) Observer {
	n = max(n, 1)
	return func(iteration int, _ []float64, value float64, gradient []float64) {
		if iteration%n != 0 {
			return
		}
		logger.Info("iteration",
			slog.Int("iteration", iteration),
			slog.Float64("objective", value),
			slog.Float64("gradient_norm", floats.Norm(gradient, 2)),
		)
	}
}

var (
	_ nn.Optimizer = (*GradientDescent)(nil)
	_ nn.Optimizer = (*LBFGS)(nil)
)
