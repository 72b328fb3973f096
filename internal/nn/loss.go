package nn

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"
)

// ScoreLoss turns raw class scores into a scalar loss for LinearClassifier.
//
// scores is classes × examples; labels holds one class index per example.
// The loss is averaged over examples and the gradient is taken w.r.t. scores.
type ScoreLoss interface {
	LossAndGradient(scores mat.Matrix, labels []int) (float64, *mat.Dense)
}

// OneVsAllLogistic trains one independent logistic model per class.
//
// Loss (per example, averaged over the batch):
//
//	Loss = Σ_k  -y_k·log σ(s_k) - (1-y_k)·log(1-σ(s_k))
//
// where y_k is 1 for the labelled class and 0 otherwise.
type OneVsAllLogistic struct{}

// LossAndGradient implements ScoreLoss.
func (OneVsAllLogistic) LossAndGradient(scores mat.Matrix, labels []int) (float64, *mat.Dense) {
	classes, n := checkScores("OneVsAllLogistic", scores, labels)

	grad := mat.NewDense(classes, n, nil)
	total := 0.0
	for j := 0; j < n; j++ {
		for k := 0; k < classes; k++ {
			s := scores.At(k, j)
			y := 0.0
			if k == labels[j] {
				y = 1
			}
			// -y·log σ(s) - (1-y)·log(1-σ(s)) == softplus(s) - y·s
			total += softplus(s) - y*s
			grad.Set(k, j, (sigmoid(s)-y)/float64(n))
		}
	}
	return total / float64(n), grad
}

// softplus is log(1 + exp(x)) without overflow.
func softplus(x float64) float64 {
	if x > 0 {
		return x + math.Log1p(math.Exp(-x))
	}
	return math.Log1p(math.Exp(x))
}

// labelsOf converts an n×1 target matrix of class indices into ints.
//
// Panics unless target is a single column of non-negative integral values.
func labelsOf(op string, target mat.Matrix) []int {
	n, c := target.Dims()
	if c != 1 {
		panic(fmt.Sprintf("%s: labels must be a single column, got %d columns", op, c))
	}
	out := make([]int, n)
	for i := range out {
		v := target.At(i, 0)
		if v < 0 || v != math.Trunc(v) {
			panic(fmt.Sprintf("%s: label %v of example %d is not a class index", op, v, i))
		}
		out[i] = int(v)
	}
	return out
}

// Labels packs class indices into the n×1 target matrix expected by LinearClassifier.
func Labels(labels []int) *mat.Dense {
	data := make([]float64, len(labels))
	for i, l := range labels {
		data[i] = float64(l)
	}
	return mat.NewDense(len(labels), 1, data)
}

// Accuracy returns the fraction of predictions equal to labels.
func Accuracy(predictions, labels []int) float64 {
	if len(predictions) != len(labels) {
		panic(fmt.Sprintf("Accuracy: %d predictions for %d labels", len(predictions), len(labels)))
	}
	if len(labels) == 0 {
		return 0
	}
	hit := 0
	for i, p := range predictions {
		if p == labels[i] {
			hit++
		}
	}
	return float64(hit) / float64(len(labels))
}
