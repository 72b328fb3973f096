package serialization

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"io"
	"math"
	"os"

	"gonum.org/v1/gonum/mat"

	"github.com/born-ml/mlt/internal/tensor"
)

// ReadBlock reads one (rows, cols, payload) triple.
//
// A stream that ends before the header or payload is complete yields ErrShortRead.
func ReadBlock(r io.Reader) (*mat.Dense, error) {
	var header [BlockHeaderSize]byte
	if _, err := io.ReadFull(r, header[:]); err != nil {
		return nil, readErr("shape", err)
	}

	rows, cols, err := checkShape(int64(byteOrder.Uint64(header[0:8])), int64(byteOrder.Uint64(header[8:16]))) //nolint:gosec // G115: validated below
	if err != nil {
		return nil, err
	}

	n := rows * cols
	data := make([]float64, 0, min(n, chunkElements))
	buf := make([]byte, min(n, chunkElements)*ScalarSize)
	for remaining := n; remaining > 0; {
		k := min(remaining, chunkElements)
		if _, err := io.ReadFull(r, buf[:k*ScalarSize]); err != nil {
			return nil, readErr("payload", err)
		}
		for i := 0; i < k; i++ {
			data = append(data, math.Float64frombits(byteOrder.Uint64(buf[i*ScalarSize:])))
		}
		remaining -= k
	}

	return tensor.Unravel(data, rows, cols), nil
}

// ReadBlocks reads exactly n blocks of any shape.
//
// On error no blocks are returned.
func ReadBlocks(r io.Reader, n int) ([]*mat.Dense, error) {
	if n < 0 || n > MaxBlocks {
		return nil, fmt.Errorf("invalid block count %d", n)
	}

	br := bufio.NewReader(r)
	out := make([]*mat.Dense, n)
	for i := range out {
		b, err := ReadBlock(br)
		if err != nil {
			return nil, fmt.Errorf("block %d: %w", i, err)
		}
		out[i] = b
	}
	return out, nil
}

// ReadLayout reads one block per layout entry and checks each declared shape.
//
// A declared shape that differs from the layout yields a *ShapeError before its
// payload is read. On error no blocks are returned.
func ReadLayout(r io.Reader, layout tensor.Layout) ([]*mat.Dense, error) {
	br := bufio.NewReader(r)
	out := make([]*mat.Dense, len(layout))
	for i, want := range layout {
		var header [BlockHeaderSize]byte
		if _, err := io.ReadFull(br, header[:]); err != nil {
			return nil, fmt.Errorf("block %q: %w", want.Name, readErr("shape", err))
		}
		gotRows := int(byteOrder.Uint64(header[0:8]))  //nolint:gosec // G115: compared against layout
		gotCols := int(byteOrder.Uint64(header[8:16])) //nolint:gosec // G115: compared against layout
		if gotRows != want.Rows || gotCols != want.Cols {
			return nil, &ShapeError{
				Block:    want.Name,
				Index:    i,
				WantRows: want.Rows,
				WantCols: want.Cols,
				GotRows:  gotRows,
				GotCols:  gotCols,
			}
		}

		b, err := ReadBlock(io.MultiReader(bytes.NewReader(header[:]), br))
		if err != nil {
			return nil, fmt.Errorf("block %q: %w", want.Name, err)
		}
		out[i] = b
	}
	return out, nil
}

// LoadFile opens path and reads n blocks from it.
func LoadFile(path string, n int) ([]*mat.Dense, error) {
	//nolint:gosec // G304: File path comes from the caller, which is expected for model loading
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open file: %w", err)
	}
	defer f.Close()

	return ReadBlocks(f, n)
}

func checkShape(rows, cols int64) (int, int, error) {
	if rows <= 0 || cols <= 0 {
		return 0, 0, fmt.Errorf("%w: %dx%d", ErrInvalidShape, rows, cols)
	}
	if rows > MaxBlockElements/cols {
		return 0, 0, fmt.Errorf("%w: %dx%d exceeds %d elements", ErrInvalidShape, rows, cols, MaxBlockElements)
	}
	return int(rows), int(cols), nil
}

// readErr maps end-of-stream conditions to ErrShortRead.
func readErr(part string, err error) error {
	if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
		return fmt.Errorf("%w: reading %s", ErrShortRead, part)
	}
	return fmt.Errorf("failed to read %s: %w", part, err)
}
