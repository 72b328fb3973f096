package serialization

import (
	"bufio"
	"fmt"
	"io"
	"math"
	"os"

	"gonum.org/v1/gonum/mat"

	"github.com/born-ml/mlt/internal/tensor"
)

// WriteBlocks writes each block as (rows, cols, column-major payload) in order.
func WriteBlocks(w io.Writer, blocks ...mat.Matrix) error {
	bw := bufio.NewWriter(w)
	for i, b := range blocks {
		if err := writeBlock(bw, b); err != nil {
			return fmt.Errorf("failed to write block %d: %w", i, err)
		}
	}
	if err := bw.Flush(); err != nil {
		return fmt.Errorf("failed to flush: %w", err)
	}
	return nil
}

func writeBlock(w io.Writer, m mat.Matrix) error {
	r, c := m.Dims()

	var header [BlockHeaderSize]byte
	byteOrder.PutUint64(header[0:8], uint64(r))  //nolint:gosec // G115: dims are non-negative
	byteOrder.PutUint64(header[8:16], uint64(c)) //nolint:gosec // G115: dims are non-negative
	if _, err := w.Write(header[:]); err != nil {
		return fmt.Errorf("failed to write shape: %w", err)
	}

	payload := make([]byte, r*c*ScalarSize)
	for k, v := range tensor.Ravel(m) {
		byteOrder.PutUint64(payload[k*ScalarSize:], math.Float64bits(v))
	}
	if _, err := w.Write(payload); err != nil {
		return fmt.Errorf("failed to write payload: %w", err)
	}
	return nil
}

// SaveFile creates (or truncates) path and writes blocks to it.
func SaveFile(path string, blocks ...mat.Matrix) error {
	//nolint:gosec // G304: File path comes from the caller, which is expected for model saving
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create file: %w", err)
	}
	if err := WriteBlocks(f, blocks...); err != nil {
		_ = f.Close() // Best effort close on error
		return err
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("failed to close file: %w", err)
	}
	return nil
}
