package nn

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"
)

// SoftmaxCrossEntropy is the multinomial logistic loss over raw class scores.
//
// Mathematical Formulation (per example, averaged over the batch):
//
//	Loss = -log_probs[label]
//	where log_probs = LogSoftmax(scores)
//
// Gradient:
//
//	∂L/∂scores = (Softmax(scores) - y_one_hot) / n
//
// The log-sum-exp trick keeps the computation finite for large scores.
type SoftmaxCrossEntropy struct{}

// LossAndGradient implements ScoreLoss.
func (SoftmaxCrossEntropy) LossAndGradient(scores mat.Matrix, labels []int) (float64, *mat.Dense) {
	classes, n := checkScores("SoftmaxCrossEntropy", scores, labels)

	grad := mat.NewDense(classes, n, nil)
	z := make([]float64, classes)
	total := 0.0

	for j := 0; j < n; j++ {
		for k := range z {
			z[k] = scores.At(k, j)
		}
		logProbs := logSoftmax(z)
		total -= logProbs[labels[j]]

		for k, lp := range logProbs {
			g := math.Exp(lp)
			if k == labels[j] {
				g--
			}
			grad.Set(k, j, g/float64(n))
		}
	}

	return total / float64(n), grad
}

// logSoftmax computes log(softmax(z)) in numerically stable way.
//
// Formula:
//
//	LogSoftmax(z)[i] = z[i] - (max(z) + log(Σ exp(z - max(z))))
func logSoftmax(z []float64) []float64 {
	maxZ := z[0]
	for _, v := range z[1:] {
		maxZ = max(maxZ, v)
	}

	sumExp := 0.0
	for _, v := range z {
		sumExp += math.Exp(v - maxZ)
	}
	logSumExp := maxZ + math.Log(sumExp)

	out := make([]float64, len(z))
	for i, v := range z {
		out[i] = v - logSumExp
	}
	return out
}

// Softmax normalizes each column of a classes × examples score matrix into probabilities.
//
// LinearClassifier never applies it on its own; callers that need probabilities
// convert the returned confidences explicitly.
func Softmax(scores mat.Matrix) *mat.Dense {
	classes, n := scores.Dims()
	out := mat.NewDense(classes, n, nil)
	z := make([]float64, classes)
	for j := 0; j < n; j++ {
		for k := range z {
			z[k] = scores.At(k, j)
		}
		for k, lp := range logSoftmax(z) {
			out.Set(k, j, math.Exp(lp))
		}
	}
	return out
}

// checkScores validates a score matrix against its labels and returns its shape.
func checkScores(op string, scores mat.Matrix, labels []int) (int, int) {
	classes, n := scores.Dims()
	if len(labels) != n {
		panic(fmt.Sprintf("%s: %d labels for %d examples", op, len(labels), n))
	}
	for j, l := range labels {
		if l < 0 || l >= classes {
			panic(fmt.Sprintf("%s: label %d of example %d out of range [0, %d)", op, l, j, classes))
		}
	}
	return classes, n
}
