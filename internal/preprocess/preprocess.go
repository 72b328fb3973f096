// Package preprocess implements feature transforms fitted on training data.
//
// This package provides:
//   - Projector: the shared Project capability
//   - Standardizer: per-feature centring and scaling to unit variance
//   - PCA: projection onto the leading principal components
//
// Transforms are fitted once and then applied to any number of matrices with
// the same columns. Rows are examples.
package preprocess

import (
	"fmt"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"

	"github.com/born-ml/mlt/internal/tensor"
)

// Projector maps example rows to a new feature space.
type Projector interface {
	Project(data mat.Matrix) *mat.Dense
}

var (
	_ Projector = (*Standardizer)(nil)
	_ Projector = (*PCA)(nil)
)

// Standardizer rescales every feature to zero mean and unit standard deviation.
//
// Constant features are only centred.
type Standardizer struct {
	mean []float64
	std  []float64
}

// FitStandardizer computes per-column means and (unbiased) standard deviations.
//
// Panics if data has fewer than two rows.
func FitStandardizer(data mat.Matrix) *Standardizer {
	n, d := data.Dims()
	if n < 2 {
		panic(fmt.Sprintf("preprocess.FitStandardizer: need at least 2 rows, got %d", n))
	}

	s := &Standardizer{mean: make([]float64, d), std: make([]float64, d)}
	col := make([]float64, n)
	for j := 0; j < d; j++ {
		mat.Col(col, j, data)
		s.mean[j], s.std[j] = stat.MeanStdDev(col, nil)
		if s.std[j] == 0 {
			s.std[j] = 1
		}
	}
	return s
}

// Mean returns a copy of the fitted column means.
func (s *Standardizer) Mean() []float64 { return append([]float64(nil), s.mean...) }

// StdDev returns a copy of the fitted scale per column (1 for constant columns).
func (s *Standardizer) StdDev() []float64 { return append([]float64(nil), s.std...) }

// Project returns (x − mean) / std for every row.
func (s *Standardizer) Project(data mat.Matrix) *mat.Dense {
	n, d := data.Dims()
	if d != len(s.mean) {
		panic(fmt.Sprintf("Standardizer.Project: expected %d columns, got %d", len(s.mean), d))
	}
	out := mat.NewDense(n, d, nil)
	for i := 0; i < n; i++ {
		for j := 0; j < d; j++ {
			out.Set(i, j, (data.At(i, j)-s.mean[j])/s.std[j])
		}
	}
	return out
}

// DefaultVarianceRetained is the fraction of variance FitPCA keeps when no
// component count is given.
const DefaultVarianceRetained = 0.99

// PCA projects centred rows onto the leading principal directions.
type PCA struct {
	mean     []float64
	vectors  *mat.Dense // [d, components]
	variance []float64  // Variance along every direction, descending
}

// FitPCA computes principal components of data.
//
// components == 0 keeps the smallest number of components explaining
// DefaultVarianceRetained of the total variance. Panics if components exceeds
// min(n, d) or the decomposition fails.
func FitPCA(data mat.Matrix, components int) *PCA {
	n, d := data.Dims()
	if n < 2 {
		panic(fmt.Sprintf("preprocess.FitPCA: need at least 2 rows, got %d", n))
	}
	if components < 0 || components > min(n, d) {
		panic(fmt.Sprintf("preprocess.FitPCA: components must be in [0, %d], got %d", min(n, d), components))
	}

	var pc stat.PC
	if ok := pc.PrincipalComponents(data, nil); !ok {
		panic("preprocess.FitPCA: singular value decomposition failed")
	}

	var vectors mat.Dense
	pc.VectorsTo(&vectors)
	variance := pc.VarsTo(nil)

	if components == 0 {
		components = componentsFor(variance, DefaultVarianceRetained)
	}

	mean := make([]float64, d)
	col := make([]float64, n)
	for j := range mean {
		mat.Col(col, j, data)
		mean[j] = stat.Mean(col, nil)
	}

	return &PCA{
		mean:     mean,
		vectors:  mat.DenseCopyOf(vectors.Slice(0, d, 0, components)),
		variance: variance,
	}
}

// componentsFor returns how many leading variances reach fraction of the total.
func componentsFor(variance []float64, fraction float64) int {
	total := 0.0
	for _, v := range variance {
		total += v
	}
	if total == 0 {
		return 1
	}
	acc := 0.0
	for i, v := range variance {
		acc += v
		if acc >= fraction*total {
			return i + 1
		}
	}
	return len(variance)
}

// Components returns the number of retained components.
func (p *PCA) Components() int {
	_, c := p.vectors.Dims()
	return c
}

// Vectors returns a copy of the retained directions as columns [d, components].
func (p *PCA) Vectors() *mat.Dense {
	return mat.DenseCopyOf(p.vectors)
}

// ExplainedVariance returns the fraction of total variance the retained
// components account for.
func (p *PCA) ExplainedVariance() float64 {
	total, kept := 0.0, 0.0
	for i, v := range p.variance {
		total += v
		if i < p.Components() {
			kept += v
		}
	}
	if total == 0 {
		return 1
	}
	return kept / total
}

// Project returns (x − mean) · V for every row, shape [n, components].
func (p *PCA) Project(data mat.Matrix) *mat.Dense {
	var out mat.Dense
	out.Mul(p.center(data), p.vectors)
	return &out
}

// Reconstruct maps projected rows back to the input space: codes · Vᵀ + mean.
func (p *PCA) Reconstruct(codes mat.Matrix) *mat.Dense {
	if _, c := codes.Dims(); c != p.Components() {
		panic(fmt.Sprintf("PCA.Reconstruct: expected %d columns, got %d", p.Components(), c))
	}
	var out mat.Dense
	out.Mul(codes, p.vectors.T())
	n, d := out.Dims()
	for i := 0; i < n; i++ {
		for j := 0; j < d; j++ {
			out.Set(i, j, out.At(i, j)+p.mean[j])
		}
	}
	return &out
}

// ReconstructionError returns the mean over rows of ‖Reconstruct(Project(x)) − x‖².
func (p *PCA) ReconstructionError(data mat.Matrix) float64 {
	var residual mat.Dense
	residual.Sub(p.Reconstruct(p.Project(data)), data)
	n, _ := data.Dims()
	return tensor.FrobeniusSq(&residual) / float64(n)
}

func (p *PCA) center(data mat.Matrix) *mat.Dense {
	n, d := data.Dims()
	if d != len(p.mean) {
		panic(fmt.Sprintf("PCA.Project: expected %d columns, got %d", len(p.mean), d))
	}
	out := mat.NewDense(n, d, nil)
	for i := 0; i < n; i++ {
		for j := 0; j < d; j++ {
			out.Set(i, j, data.At(i, j)-p.mean[j])
		}
	}
	return out
}
