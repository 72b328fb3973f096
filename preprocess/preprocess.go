// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package preprocess provides feature transforms fitted on training data:
// standardization and principal component analysis.
package preprocess

import (
	"gonum.org/v1/gonum/mat"

	"github.com/born-ml/mlt/internal/preprocess"
)

// Projector maps example rows to a new feature space.
type Projector = preprocess.Projector

// Standardizer rescales features to zero mean and unit standard deviation.
type Standardizer = preprocess.Standardizer

// PCA projects centred rows onto the leading principal directions.
type PCA = preprocess.PCA

// DefaultVarianceRetained is the variance fraction FitPCA keeps for components == 0.
const DefaultVarianceRetained = preprocess.DefaultVarianceRetained

// FitStandardizer computes per-column means and standard deviations of data.
func FitStandardizer(data mat.Matrix) *Standardizer {
	return preprocess.FitStandardizer(data)
}

// FitPCA computes principal components of data.
//
// Example:
//
//	pca := preprocess.FitPCA(train, 0) // keep 99% of the variance
//	codes := pca.Project(test)
func FitPCA(data mat.Matrix, components int) *PCA {
	return preprocess.FitPCA(data, components)
}
