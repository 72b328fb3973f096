// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package tensor provides the flat-vector view of structured model parameters.
//
// Matrices are flattened column-major (ravel) and rebuilt with Unravel. A Layout
// names an ordered list of blocks and converts between one flat vector and the
// matrices it holds:
//
//	layout := tensor.Layout{
//	    {Name: "weights", Rows: 3, Cols: 6},
//	    {Name: "hidden_intercepts", Rows: 3, Cols: 1},
//	}
//	flat := layout.Join(w, b)
//	blocks := layout.Split(flat)
//
// Every conversion copies; no returned value aliases its input.
package tensor

import (
	"gonum.org/v1/gonum/mat"

	"github.com/born-ml/mlt/internal/tensor"
)

// Block describes one named matrix inside a flat parameter vector.
type Block = tensor.Block

// Layout is the ordered list of blocks making up a flat parameter vector.
type Layout = tensor.Layout

// Ravel flattens m column-major into a new slice.
func Ravel(m mat.Matrix) []float64 {
	return tensor.Ravel(m)
}

// Unravel rebuilds a rows×cols matrix from its column-major flattening.
func Unravel(v []float64, rows, cols int) *mat.Dense {
	return tensor.Unravel(v, rows, cols)
}
