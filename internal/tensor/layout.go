package tensor

import (
	"fmt"

	"gonum.org/v1/gonum/mat"
)

// Block is one named, fixed-shape segment of a flat parameter vector.
//
// Vectors (intercepts) are Cols == 1 blocks.
type Block struct {
	Name string
	Rows int
	Cols int
}

// Size returns the number of scalars in the block.
func (b Block) Size() int {
	return b.Rows * b.Cols
}

// Layout describes how a flat parameter vector decomposes into blocks.
//
// Blocks are stored back to back in order, each ravelled column-major.
// Split and Join always copy: no block aliases the flat vector.
type Layout []Block

// Size returns the total parameter count of the layout.
func (l Layout) Size() int {
	n := 0
	for _, b := range l {
		n += b.Size()
	}
	return n
}

// Offset returns the index of the first scalar of block i.
func (l Layout) Offset(i int) int {
	off := 0
	for _, b := range l[:i] {
		off += b.Size()
	}
	return off
}

// Index returns the position of the block with the given name, or -1.
func (l Layout) Index(name string) int {
	for i, b := range l {
		if b.Name == name {
			return i
		}
	}
	return -1
}

// Split unravels v into one matrix per block.
//
// Panics if len(v) != l.Size().
func (l Layout) Split(v []float64) []*mat.Dense {
	if len(v) != l.Size() {
		panic(fmt.Sprintf("tensor.Layout.Split: vector has %d elements, layout needs %d", len(v), l.Size()))
	}

	out := make([]*mat.Dense, len(l))
	off := 0
	for i, b := range l {
		out[i] = Unravel(v[off:off+b.Size()], b.Rows, b.Cols)
		off += b.Size()
	}
	return out
}

// Join ravels blocks, in layout order, into a new flat vector.
//
// Panics if the number of blocks or any block shape differs from the layout.
func (l Layout) Join(blocks ...mat.Matrix) []float64 {
	if len(blocks) != len(l) {
		panic(fmt.Sprintf("tensor.Layout.Join: got %d blocks, layout has %d", len(blocks), len(l)))
	}

	out := make([]float64, l.Size())
	off := 0
	for i, b := range l {
		r, c := blocks[i].Dims()
		if r != b.Rows || c != b.Cols {
			panic(fmt.Sprintf("tensor.Layout.Join: block %q is %dx%d, want %dx%d", b.Name, r, c, b.Rows, b.Cols))
		}
		RavelInto(out[off:off+b.Size()], blocks[i])
		off += b.Size()
	}
	return out
}

// String renders the layout as "name[RxC] ...".
func (l Layout) String() string {
	s := ""
	for i, b := range l {
		if i > 0 {
			s += " "
		}
		s += fmt.Sprintf("%s[%dx%d]", b.Name, b.Rows, b.Cols)
	}
	return s
}
