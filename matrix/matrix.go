// Package matrix provides small dense-matrix helpers shared across the
// filter packages.
package matrix

import (
	"gonum.org/v1/gonum/mat"
)

// Block is one diagonal block for BlockDiag, placed at Offset.
type Block struct {
	Offset int
	Cov    mat.Symmetric
}

// Symmetrize writes (m + mᵀ)/2 into dst. It keeps covariance products
// symmetric in the presence of floating-point drift.
// It panics if m is not square or dst does not match its size.
func Symmetrize(dst *mat.SymDense, m mat.Matrix) {
	r, c := m.Dims()
	if r != c {
		panic("matrix: non-square input")
	}
	if dst.SymmetricDim() != r {
		panic("matrix: dimension mismatch")
	}

	for i := 0; i < r; i++ {
		for j := i; j < r; j++ {
			dst.SetSym(i, j, 0.5*(m.At(i, j)+m.At(j, i)))
		}
	}
}

// InsertBlock copies src into dst with its top-left corner at (i, j).
// It panics if the block does not fit.
func InsertBlock(dst *mat.Dense, i, j int, src mat.Matrix) {
	r, c := src.Dims()
	dr, dc := dst.Dims()
	if i+r > dr || j+c > dc {
		panic("matrix: block out of range")
	}

	for k := 0; k < r; k++ {
		for l := 0; l < c; l++ {
			dst.Set(i+k, j+l, src.At(k, l))
		}
	}
}

// BlockDiag assembles the size x size block-diagonal symmetric matrix of
// the given blocks. A block with nil covariance contributes nothing.
// It panics if a block does not fit.
func BlockDiag(size int, blocks ...Block) *mat.SymDense {
	out := mat.NewSymDense(size, nil)
	for _, b := range blocks {
		if b.Cov == nil {
			continue
		}
		n := b.Cov.SymmetricDim()
		if b.Offset+n > size {
			panic("matrix: block out of range")
		}
		for i := 0; i < n; i++ {
			for j := i; j < n; j++ {
				out.SetSym(b.Offset+i, b.Offset+j, b.Cov.At(i, j))
			}
		}
	}

	return out
}
