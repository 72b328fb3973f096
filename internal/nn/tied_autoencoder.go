package nn

import (
	"fmt"
	"io"
	"math/rand/v2"

	"gonum.org/v1/gonum/mat"

	"github.com/born-ml/mlt/internal/serialization"
	"github.com/born-ml/mlt/internal/tensor"
)

// TiedAutoencoder is an autoencoder whose decoder reuses the transposed encoder weights.
//
// With one weight matrix W [hidden, input]:
//
//	hidden         = act_h(X·Wᵀ + b_h)        // encode
//	reconstruction = act_r(hidden·W + b_r)    // decode with Wᵀ
//
// The flat parameter vector is [ravel(W), b_h, b_r]. During training both uses
// of W contribute a gradient; they are summed into the single W block.
//
// Example:
//
//	ae := nn.NewTiedAutoencoder(nn.TiedAutoencoderConfig{
//	    HiddenUnits:              3,
//	    HiddenActivation:         nn.Identity{},
//	    ReconstructionActivation: nn.Identity{},
//	    Optimizer:                optim.NewLBFGS(optim.LBFGSConfig{}),
//	})
//	codes := ae.Fit(data, true).Transform(data)
type TiedAutoencoder struct {
	Estimator

	hiddenUnits              int
	hiddenActivation         Activation
	reconstructionActivation Activation
	optimizer                Optimizer
	regularization           float64
	rng                      *rand.Rand

	inputDim                 int        // 0 until initialized
	weights                  *mat.Dense // [hidden, input]
	hiddenIntercepts         []float64  // [hidden]
	reconstructionIntercepts []float64  // [input]
}

// TiedAutoencoderConfig holds configuration for TiedAutoencoder.
type TiedAutoencoderConfig struct {
	HiddenUnits              int        // Size of the hidden representation (> 0)
	HiddenActivation         Activation // Encoder nonlinearity (required)
	ReconstructionActivation Activation // Decoder nonlinearity (required)
	Optimizer                Optimizer  // Used by Fit (required)
	Regularization           float64    // L2 strength (>= 0)
	Rand                     *rand.Rand // Source for cold-start init (default: randomly seeded)

	// InputDim, if positive, initializes random parameters at construction so the
	// model can be evaluated before its first fit. Otherwise Fit sets it.
	InputDim int
}

// NewTiedAutoencoder creates an unfitted tied autoencoder.
//
// Panics if HiddenUnits <= 0, Regularization < 0, or an activation or the
// optimizer is missing.
func NewTiedAutoencoder(config TiedAutoencoderConfig) *TiedAutoencoder {
	if config.HiddenUnits <= 0 {
		panic(fmt.Sprintf("NewTiedAutoencoder: hidden units must be positive, got %d", config.HiddenUnits))
	}
	if config.Regularization < 0 {
		panic(fmt.Sprintf("NewTiedAutoencoder: regularization must be non-negative, got %v", config.Regularization))
	}
	if config.HiddenActivation == nil || config.ReconstructionActivation == nil {
		panic("NewTiedAutoencoder: hidden and reconstruction activations are required")
	}
	if config.Optimizer == nil {
		panic("NewTiedAutoencoder: optimizer is required")
	}

	a := &TiedAutoencoder{
		hiddenUnits:              config.HiddenUnits,
		hiddenActivation:         config.HiddenActivation,
		reconstructionActivation: config.ReconstructionActivation,
		optimizer:                config.Optimizer,
		regularization:           config.Regularization,
		rng:                      newRand(config.Rand),
	}
	if config.InputDim > 0 {
		a.inputDim = config.InputDim
		a.unpack(a.coldStart())
	}
	return a
}

// HiddenUnits returns the size of the hidden representation.
func (a *TiedAutoencoder) HiddenUnits() int { return a.hiddenUnits }

// InputDim returns the input dimensionality, or 0 before initialization.
func (a *TiedAutoencoder) InputDim() int { return a.inputDim }

// Transform encodes input rows into the hidden representation [n, hidden].
//
// Panics if the model has not been fitted.
func (a *TiedAutoencoder) Transform(input mat.Matrix) *mat.Dense {
	a.checkFitted("TiedAutoencoder.Transform")
	a.checkInput("TiedAutoencoder.Transform", input)

	_, hidden := encode(a.hiddenActivation, a.weights, a.hiddenIntercepts, input)
	return hidden
}

// Reconstruct encodes and decodes input rows [n, input].
//
// Panics if the model has not been fitted.
func (a *TiedAutoencoder) Reconstruct(input mat.Matrix) *mat.Dense {
	a.checkFitted("TiedAutoencoder.Reconstruct")
	a.checkInput("TiedAutoencoder.Reconstruct", input)

	return autoencoderForward(a.hiddenActivation, a.reconstructionActivation, a.structured(), input).recon
}

// ReconstructionError returns the mean over examples of ‖reconstruction − input‖².
func (a *TiedAutoencoder) ReconstructionError(input mat.Matrix) float64 {
	var residual mat.Dense
	residual.Sub(a.Reconstruct(input), input)
	n, _ := input.Dims()
	return tensor.FrobeniusSq(&residual) / float64(n)
}

// Fit trains the autoencoder to reconstruct input and returns it for chaining.
//
// A cold start draws the flat vector uniformly in ±AutoencoderInitBound. A warm
// start continues from the current parameters of a fitted model; warm-starting
// with a different input dimensionality panics.
func (a *TiedAutoencoder) Fit(input mat.Matrix, coldStart bool) *TiedAutoencoder {
	_, dim := input.Dims()

	warm := !coldStart && a.IsFitted()
	if warm && dim != a.inputDim {
		panic(fmt.Sprintf("TiedAutoencoder.Fit: warm start with %d features, model has %d", dim, a.inputDim))
	}

	var init []float64
	if warm {
		init = a.Parameters()
	} else {
		a.inputDim = dim
		init = a.coldStart()
	}

	params := a.optimizer.Minimize(a, input, input, init, warm)
	a.unpack(params)
	a.setFitted()
	return a
}

// NumParameters returns hidden*input + hidden + input.
//
// Panics if the input dimensionality is not known yet.
func (a *TiedAutoencoder) NumParameters() int {
	return a.layout("TiedAutoencoder.NumParameters").Size()
}

// Parameters returns [ravel(W), b_h, b_r].
func (a *TiedAutoencoder) Parameters() []float64 {
	l := a.layout("TiedAutoencoder.Parameters")
	return l.Join(a.weights, mat.NewVecDense(len(a.hiddenIntercepts), a.hiddenIntercepts),
		mat.NewVecDense(len(a.reconstructionIntercepts), a.reconstructionIntercepts))
}

// SetParameters replaces W, b_h and b_r from a flat vector.
func (a *TiedAutoencoder) SetParameters(params []float64) {
	l := a.layout("TiedAutoencoder.SetParameters")
	if len(params) != l.Size() {
		panic(fmt.Sprintf("TiedAutoencoder.SetParameters: expected %d parameters, got %d", l.Size(), len(params)))
	}
	a.unpack(params)
}

// Weights returns a copy of the shared weight matrix [hidden, input].
func (a *TiedAutoencoder) Weights() *mat.Dense {
	a.layout("TiedAutoencoder.Weights")
	return mat.DenseCopyOf(a.weights)
}

// HiddenIntercepts returns a copy of b_h.
func (a *TiedAutoencoder) HiddenIntercepts() []float64 {
	return append([]float64(nil), a.hiddenIntercepts...)
}

// ReconstructionIntercepts returns a copy of b_r.
func (a *TiedAutoencoder) ReconstructionIntercepts() []float64 {
	return append([]float64(nil), a.reconstructionIntercepts...)
}

// Loss returns the reconstruction loss of params on (input, target).
func (a *TiedAutoencoder) Loss(params []float64, input, target mat.Matrix) float64 {
	p := a.split("TiedAutoencoder.Loss", params, input)
	return autoencoderLoss(a.hiddenActivation, a.reconstructionActivation, p, a.regularization, input, target)
}

// Gradient returns the gradient of Loss w.r.t. params.
func (a *TiedAutoencoder) Gradient(params []float64, input, target mat.Matrix) []float64 {
	_, grad := a.lossAndGradient("TiedAutoencoder.Gradient", params, input, target)
	return grad
}

// LossAndGradient returns Loss and Gradient from one forward/backward pass.
func (a *TiedAutoencoder) LossAndGradient(params []float64, input, target mat.Matrix) (float64, []float64) {
	return a.lossAndGradient("TiedAutoencoder.LossAndGradient", params, input, target)
}

func (a *TiedAutoencoder) lossAndGradient(op string, params []float64, input, target mat.Matrix) (float64, []float64) {
	p := a.split(op, params, input)
	loss, g := autoencoderLossAndGradient(a.hiddenActivation, a.reconstructionActivation, p,
		a.regularization, input, target, true)

	// W is used twice: as W1 directly and as W2 = Wᵀ.
	var weightsGrad mat.Dense
	weightsGrad.Add(g.encodeWeights, g.decodeWeights.T())

	_, dim := input.Dims()
	return loss, a.layoutFor(dim).Join(
		&weightsGrad,
		mat.NewVecDense(len(g.hiddenIntercepts), g.hiddenIntercepts),
		mat.NewVecDense(len(g.reconstructionIntercepts), g.reconstructionIntercepts),
	)
}

// split unravels a candidate flat vector into untied parameters with W2 = Wᵀ.
func (a *TiedAutoencoder) split(op string, params []float64, input mat.Matrix) autoencoderParams {
	_, dim := input.Dims()
	l := a.layoutFor(dim)
	if len(params) != l.Size() {
		panic(fmt.Sprintf("%s: expected %d parameters for %d features, got %d", op, l.Size(), dim, len(params)))
	}

	blocks := l.Split(params)
	return autoencoderParams{
		encodeWeights:            blocks[0],
		hiddenIntercepts:         blocks[1].RawMatrix().Data,
		decodeWeights:            blocks[0].T(),
		reconstructionIntercepts: blocks[2].RawMatrix().Data,
	}
}

func (a *TiedAutoencoder) structured() autoencoderParams {
	return autoencoderParams{
		encodeWeights:            a.weights,
		hiddenIntercepts:         a.hiddenIntercepts,
		decodeWeights:            a.weights.T(),
		reconstructionIntercepts: a.reconstructionIntercepts,
	}
}

func (a *TiedAutoencoder) unpack(params []float64) {
	blocks := a.layoutFor(a.inputDim).Split(params)
	a.weights = blocks[0]
	a.hiddenIntercepts = blocks[1].RawMatrix().Data
	a.reconstructionIntercepts = blocks[2].RawMatrix().Data
}

func (a *TiedAutoencoder) coldStart() []float64 {
	bound := AutoencoderInitBound(a.hiddenUnits, a.inputDim)
	return tensor.UniformVector(a.layoutFor(a.inputDim).Size(), bound, a.rng)
}

// Save writes W, b_h and b_r as three serialization blocks.
func (a *TiedAutoencoder) Save(w io.Writer) error {
	a.checkFitted("TiedAutoencoder.Save")
	return serialization.WriteBlocks(w, a.weights,
		mat.NewVecDense(len(a.hiddenIntercepts), a.hiddenIntercepts),
		mat.NewVecDense(len(a.reconstructionIntercepts), a.reconstructionIntercepts))
}

// Load reads parameters written by Save and marks the model fitted.
//
// The input dimensionality is taken from the stream. On error the model is
// left unchanged.
func (a *TiedAutoencoder) Load(r io.Reader) error {
	blocks, err := serialization.ReadBlocks(r, 3)
	if err != nil {
		return fmt.Errorf("failed to load tied autoencoder: %w", err)
	}

	_, dim := blocks[0].Dims()
	for i, want := range a.layoutFor(dim) {
		rows, cols := blocks[i].Dims()
		if rows != want.Rows || cols != want.Cols {
			return fmt.Errorf("failed to load tied autoencoder: %w", &serialization.ShapeError{
				Block: want.Name, Index: i,
				WantRows: want.Rows, WantCols: want.Cols,
				GotRows: rows, GotCols: cols,
			})
		}
	}

	a.inputDim = dim
	a.weights = blocks[0]
	a.hiddenIntercepts = blocks[1].RawMatrix().Data
	a.reconstructionIntercepts = blocks[2].RawMatrix().Data
	a.setFitted()
	return nil
}

// layout returns the current flat layout, panicking if the input size is unknown.
func (a *TiedAutoencoder) layout(op string) tensor.Layout {
	if a.inputDim == 0 {
		panic(op + ": input dimensionality unknown before Fit (set InputDim to initialize early)")
	}
	return a.layoutFor(a.inputDim)
}

func (a *TiedAutoencoder) layoutFor(inputDim int) tensor.Layout {
	return tensor.Layout{
		{Name: "weights", Rows: a.hiddenUnits, Cols: inputDim},
		{Name: "hidden_intercepts", Rows: a.hiddenUnits, Cols: 1},
		{Name: "reconstruction_intercepts", Rows: inputDim, Cols: 1},
	}
}

func (a *TiedAutoencoder) checkFitted(op string) {
	if !a.IsFitted() {
		panic(op + ": model is not fitted")
	}
}

func (a *TiedAutoencoder) checkInput(op string, input mat.Matrix) {
	if _, cols := input.Dims(); cols != a.inputDim {
		panic(fmt.Sprintf("%s: expected %d features, got %d", op, a.inputDim, cols))
	}
}
