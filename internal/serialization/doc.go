// Package serialization stores structured model parameters as a raw binary block stream.
//
// The stream is a sequence of blocks, read back in exactly the order written:
//
//	Block Structure:
//	  [8 bytes: rows (int64 LE)]
//	  [8 bytes: cols (int64 LE)]
//	  [rows*cols * 8 bytes: float64 LE payload, column-major]
//
// There is no file header. Each model decides which blocks it writes and in
// which order (for example weights, then hidden intercepts, then reconstruction
// intercepts).
//
// Readers never return partially populated parameters. A truncated stream
// yields ErrShortRead and a declared shape that does not match the expected
// layout yields a *ShapeError:
//
//	blocks, err := serialization.ReadLayout(r, layout)
//	var shapeErr *serialization.ShapeError
//	switch {
//	case errors.Is(err, serialization.ErrShortRead):
//	    // file truncated
//	case errors.As(err, &shapeErr):
//	    // file written for a different model configuration
//	}
package serialization
