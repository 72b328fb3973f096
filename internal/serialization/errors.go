package serialization

import (
	"errors"
	"fmt"
)

// Common errors.
var (
	ErrShortRead    = errors.New("short read: parameter stream is truncated")
	ErrInvalidShape = errors.New("invalid block shape")

	ErrChecksumMismatch = errors.New("checksum mismatch")
)

// ShapeError reports a block whose declared shape differs from the expected one.
type ShapeError struct {
	Block    string // Name of the expected block
	Index    int    // Position of the block in the stream
	WantRows int
	WantCols int
	GotRows  int
	GotCols  int
}

// Error implements the error interface.
func (e *ShapeError) Error() string {
	name := e.Block
	if name == "" {
		name = fmt.Sprintf("#%d", e.Index)
	}
	return fmt.Sprintf("shape mismatch: block %s: declared %dx%d, want %dx%d",
		name, e.GotRows, e.GotCols, e.WantRows, e.WantCols)
}
