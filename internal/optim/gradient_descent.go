package optim

import (
	"fmt"
	"math/rand/v2"

	"gonum.org/v1/gonum/mat"

	"github.com/born-ml/mlt/internal/nn"
)

// GradientDescent minimizes an objective by repeated first-order steps over
// full batches or mini-batches of the training rows.
//
// One epoch visits every row once. After each epoch the learning rate is
// multiplied by LearningRateDecay and, if configured, the Observer receives the
// full-batch objective value and gradient.
type GradientDescent struct {
	epochs       int
	batchSize    int
	learningRate float64
	decay        float64
	update       UpdateRule
	updateParam  float64
	shuffle      bool
	seed         uint64
	observer     Observer
}

// GradientDescentConfig holds configuration for GradientDescent.
type GradientDescentConfig struct {
	Epochs            int        // Number of passes over the data (default: 100)
	BatchSize         int        // Rows per step; 0 or >= n means full batch
	LearningRate      float64    // Initial step size (default: 0.01)
	LearningRateDecay float64    // Per-epoch multiplier (default: 1, no decay)
	Update            UpdateRule // Step rule (default: UpdateGradientDescent)
	UpdateParam       float64    // Momentum / decay rate / β1 (default: 0.9 where used)
	Shuffle           bool       // Permute rows every epoch
	Seed              uint64     // Seed for the permutation
	Observer          Observer   // Per-epoch callback (optional)
}

// NewGradientDescent creates a gradient descent optimizer.
func NewGradientDescent(config GradientDescentConfig) *GradientDescent {
	if config.Epochs < 0 {
		panic(fmt.Sprintf("NewGradientDescent: epochs must be non-negative, got %d", config.Epochs))
	}
	if config.BatchSize < 0 {
		panic(fmt.Sprintf("NewGradientDescent: batch size must be non-negative, got %d", config.BatchSize))
	}
	if config.LearningRate < 0 || config.LearningRateDecay < 0 {
		panic("NewGradientDescent: learning rate and decay must be non-negative")
	}

	if config.Epochs == 0 {
		config.Epochs = 100
	}
	if config.LearningRate == 0 {
		config.LearningRate = 0.01
	}
	if config.LearningRateDecay == 0 {
		config.LearningRateDecay = 1
	}
	if config.UpdateParam == 0 {
		config.UpdateParam = config.Update.defaultUpdateParam()
	}

	// Validates the rule eagerly rather than on the first Minimize.
	newUpdater(config.Update, config.UpdateParam, 0)

	return &GradientDescent{
		epochs:       config.Epochs,
		batchSize:    config.BatchSize,
		learningRate: config.LearningRate,
		decay:        config.LearningRateDecay,
		update:       config.Update,
		updateParam:  config.UpdateParam,
		shuffle:      config.Shuffle,
		seed:         config.Seed,
		observer:     config.Observer,
	}
}

// Epochs returns the configured number of epochs.
func (gd *GradientDescent) Epochs() int {
	return gd.epochs
}

// LearningRate returns the initial learning rate.
func (gd *GradientDescent) LearningRate() float64 {
	return gd.learningRate
}

// Minimize runs the configured number of epochs starting from init and returns
// the final parameter vector. init is not modified.
//
// Update-rule accumulators start at zero on every call, so the warm-start flag
// has no effect beyond the choice of init.
func (gd *GradientDescent) Minimize(obj nn.Objective, input, target mat.Matrix, init []float64, _ bool) []float64 {
	n, _ := input.Dims()
	if tn, _ := target.Dims(); tn != n {
		panic(fmt.Sprintf("GradientDescent.Minimize: input has %d rows, target has %d", n, tn))
	}

	x := append([]float64(nil), init...)
	rule := newUpdater(gd.update, gd.updateParam, len(x))

	batch := gd.batchSize
	if batch == 0 || batch > n {
		batch = n
	}

	order := make([]int, n)
	for i := range order {
		order[i] = i
	}
	var rng *rand.Rand
	if gd.shuffle {
		rng = rand.New(rand.NewPCG(gd.seed, gd.seed^0x9e3779b97f4a7c15))
	}

	lr := gd.learningRate
	for epoch := 0; epoch < gd.epochs; epoch++ {
		if rng != nil {
			rng.Shuffle(n, func(i, j int) { order[i], order[j] = order[j], order[i] })
		}

		for start := 0; start < n; start += batch {
			end := min(start+batch, n)
			bx, bt := input, target
			if end-start < n || rng != nil {
				bx, bt = selectRows(input, order[start:end]), selectRows(target, order[start:end])
			}
			rule.step(x, obj.Gradient(x, bx, bt), lr)
		}

		lr *= gd.decay

		if gd.observer != nil {
			value, grad := obj.LossAndGradient(x, input, target)
			gd.observer(epoch, x, value, grad)
		}
	}

	return x
}

// selectRows gathers the given rows of m into a new matrix.
func selectRows(m mat.Matrix, rows []int) *mat.Dense {
	_, c := m.Dims()
	out := mat.NewDense(len(rows), c, nil)
	for i, r := range rows {
		for j := 0; j < c; j++ {
			out.Set(i, j, m.At(r, j))
		}
	}
	return out
}
