package matrix

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"gonum.org/v1/gonum/mat"
)

func TestSymmetrize(t *testing.T) {
	assert := assert.New(t)

	m := mat.NewDense(2, 2, []float64{1, 2, 4, 3})
	dst := mat.NewSymDense(2, nil)
	Symmetrize(dst, m)

	assert.Equal(1.0, dst.At(0, 0))
	assert.Equal(3.0, dst.At(1, 1))
	assert.Equal(3.0, dst.At(0, 1))
	assert.Equal(3.0, dst.At(1, 0))

	assert.Panics(func() { Symmetrize(dst, mat.NewDense(2, 3, nil)) })
	assert.Panics(func() { Symmetrize(mat.NewSymDense(3, nil), m) })
}

func TestInsertBlock(t *testing.T) {
	assert := assert.New(t)

	dst := mat.NewDense(4, 4, nil)
	src := mat.NewDense(2, 2, []float64{1, 2, 3, 4})
	InsertBlock(dst, 1, 2, src)

	assert.Equal(1.0, dst.At(1, 2))
	assert.Equal(2.0, dst.At(1, 3))
	assert.Equal(3.0, dst.At(2, 2))
	assert.Equal(4.0, dst.At(2, 3))
	assert.Equal(0.0, dst.At(0, 0))

	assert.Panics(func() { InsertBlock(dst, 3, 3, src) })
}

func TestBlockDiag(t *testing.T) {
	assert := assert.New(t)

	a := mat.NewSymDense(2, []float64{1, 0.5, 0.5, 2})
	b := mat.NewSymDense(1, []float64{3})

	out := BlockDiag(4, Block{Offset: 0, Cov: a}, Block{Offset: 3, Cov: b})
	assert.Equal(4, out.SymmetricDim())
	assert.Equal(1.0, out.At(0, 0))
	assert.Equal(0.5, out.At(0, 1))
	assert.Equal(2.0, out.At(1, 1))
	assert.Equal(3.0, out.At(3, 3))
	assert.Equal(0.0, out.At(2, 2))
	assert.Equal(0.0, out.At(0, 3))

	// nil covariance contributes nothing
	out = BlockDiag(2, Block{Offset: 0, Cov: nil})
	assert.Equal(0.0, out.At(0, 0))

	assert.Panics(func() { BlockDiag(2, Block{Offset: 1, Cov: a}) })
}
