package nn

import (
	"fmt"

	"gonum.org/v1/gonum/mat"

	"github.com/born-ml/mlt/internal/tensor"
)

// autoencoderParams are the structured parameters of an untied autoencoder.
//
// Rows of the data are examples:
//
//	hidden         = f(X·W1ᵀ + b1)        // [n, hidden]
//	reconstruction = g(hidden·W2ᵀ + b2)   // [n, input]
type autoencoderParams struct {
	encodeWeights            mat.Matrix // W1 [hidden, input]
	hiddenIntercepts         []float64  // b1 [hidden]
	decodeWeights            mat.Matrix // W2 [input, hidden]
	reconstructionIntercepts []float64  // b2 [input]
}

// autoencoderGrads holds one gradient per autoencoderParams field.
//
// encodeWeights and decodeWeights are independent: a tied model has to combine
// them itself.
type autoencoderGrads struct {
	encodeWeights            *mat.Dense
	hiddenIntercepts         []float64
	decodeWeights            *mat.Dense
	reconstructionIntercepts []float64
}

// autoencoderPass keeps the intermediate values of one forward pass.
type autoencoderPass struct {
	hiddenPre *mat.Dense // X·W1ᵀ + b1
	hidden    *mat.Dense
	reconPre  *mat.Dense // hidden·W2ᵀ + b2
	recon     *mat.Dense
}

// encode computes the pre-activation and activation of the hidden layer.
func encode(act Activation, weights mat.Matrix, intercepts []float64, input mat.Matrix) (*mat.Dense, *mat.Dense) {
	var pre mat.Dense
	pre.Mul(input, weights.T())
	tensor.AddRowVector(&pre, intercepts)
	return &pre, act.Compute(&pre)
}

func autoencoderForward(hiddenAct, reconAct Activation, p autoencoderParams, input mat.Matrix) autoencoderPass {
	hiddenPre, hidden := encode(hiddenAct, p.encodeWeights, p.hiddenIntercepts, input)
	reconPre, recon := encode(reconAct, p.decodeWeights, p.reconstructionIntercepts, hidden)
	return autoencoderPass{hiddenPre: hiddenPre, hidden: hidden, reconPre: reconPre, recon: recon}
}

// autoencoderLoss returns
//
//	L = 1/(2n)·Σ‖reconstruction − target‖² + λ/2·(‖W1‖² + ‖W2‖²)
func autoencoderLoss(hiddenAct, reconAct Activation, p autoencoderParams, regularization float64, input, target mat.Matrix) float64 {
	loss, _ := autoencoderLossAndGradient(hiddenAct, reconAct, p, regularization, input, target, false)
	return loss
}

// autoencoderLossAndGradient returns the loss and, if withGrad, its gradient
// w.r.t. every field of p treating W1 and W2 as independent.
//
// Backward pass:
//
//	δ2  = (reconstruction − target) ⊙ g'(reconPre) / n
//	∂W2 = δ2ᵀ·hidden + λ·W2,  ∂b2 = colsum(δ2)
//	δ1  = (δ2·W2) ⊙ f'(hiddenPre)
//	∂W1 = δ1ᵀ·X + λ·W1,       ∂b1 = colsum(δ1)
func autoencoderLossAndGradient(
	hiddenAct, reconAct Activation,
	p autoencoderParams,
	regularization float64,
	input, target mat.Matrix,
	withGrad bool,
) (float64, *autoencoderGrads) {
	n, _ := input.Dims()
	tensor.SameRows("autoencoder", input, target)
	_, targetCols := target.Dims()
	if reconCols, _ := p.decodeWeights.Dims(); targetCols != reconCols {
		panic(fmt.Sprintf("autoencoder: target has %d columns, reconstruction has %d", targetCols, reconCols))
	}

	pass := autoencoderForward(hiddenAct, reconAct, p, input)

	var residual mat.Dense
	residual.Sub(pass.recon, target)

	loss := tensor.FrobeniusSq(&residual)/(2*float64(n)) +
		regularization/2*(tensor.FrobeniusSq(p.encodeWeights)+tensor.FrobeniusSq(p.decodeWeights))

	if !withGrad {
		return loss, nil
	}

	var deltaRecon mat.Dense
	deltaRecon.MulElem(&residual, reconAct.Derivative(pass.reconPre))
	deltaRecon.Scale(1/float64(n), &deltaRecon)

	var decodeGrad mat.Dense
	decodeGrad.Mul(deltaRecon.T(), pass.hidden)
	decodeGrad.Add(&decodeGrad, scaled(regularization, p.decodeWeights))

	var deltaHidden mat.Dense
	deltaHidden.Mul(&deltaRecon, p.decodeWeights)
	deltaHidden.MulElem(&deltaHidden, hiddenAct.Derivative(pass.hiddenPre))

	var encodeGrad mat.Dense
	encodeGrad.Mul(deltaHidden.T(), input)
	encodeGrad.Add(&encodeGrad, scaled(regularization, p.encodeWeights))

	return loss, &autoencoderGrads{
		encodeWeights:            &encodeGrad,
		hiddenIntercepts:         tensor.ColSums(&deltaHidden),
		decodeWeights:            &decodeGrad,
		reconstructionIntercepts: tensor.ColSums(&deltaRecon),
	}
}

func scaled(f float64, m mat.Matrix) *mat.Dense {
	var out mat.Dense
	out.Scale(f, m)
	return &out
}
