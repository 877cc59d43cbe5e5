package reject

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"gonum.org/v1/gonum/mat"
)

func TestMahalanobis(t *testing.T) {
	assert := assert.New(t)

	// χ²(0.95, 1) = 3.8415
	m := NewMahalanobis(0.95)
	s := mat.NewSymDense(1, []float64{1})

	assert.True(m.Accept(mat.NewVecDense(1, []float64{1.9}), s))
	assert.False(m.Accept(mat.NewVecDense(1, []float64{2.0}), s))

	// scaling the covariance scales the gate
	s = mat.NewSymDense(1, []float64{4})
	assert.True(m.Accept(mat.NewVecDense(1, []float64{3.9}), s))
}

func TestMahalanobisDims(t *testing.T) {
	assert := assert.New(t)

	// χ²(0.99, 3) = 11.345
	m := NewMahalanobis(0.99)
	s := mat.NewSymDense(3, nil)
	for i := 0; i < 3; i++ {
		s.SetSym(i, i, 1)
	}

	y := mat.NewVecDense(3, []float64{1.9, 1.9, 1.9}) // d² = 10.83
	assert.True(m.Accept(y, s))

	y = mat.NewVecDense(3, []float64{2, 2, 2}) // d² = 12
	assert.False(m.Accept(y, s))
}

func TestMahalanobisSingular(t *testing.T) {
	assert := assert.New(t)

	// a covariance that cannot be factorized rejects
	m := NewMahalanobis(0.95)
	s := mat.NewSymDense(2, nil)
	assert.False(m.Accept(mat.NewVecDense(2, nil), s))
}

func TestGuard(t *testing.T) {
	assert := assert.New(t)

	g := NewGuard(3, NewMahalanobis(0.95))
	s := mat.NewSymDense(1, []float64{1})
	out := mat.NewVecDense(1, []float64{10})
	in := mat.NewVecDense(1, []float64{0.5})

	for i := 0; i < 2; i++ {
		assert.False(g.Accept(out, s))
		assert.False(g.ReinitRecommended())
	}
	assert.False(g.Accept(out, s))
	assert.True(g.ReinitRecommended())

	// an accepted measurement clears the count
	assert.True(g.Accept(in, s))
	assert.False(g.ReinitRecommended())

	// so does an explicit Clear
	for i := 0; i < 3; i++ {
		g.Accept(out, s)
	}
	assert.True(g.ReinitRecommended())
	g.Clear()
	assert.False(g.ReinitRecommended())
}

func TestAcceptAll(t *testing.T) {
	assert := assert.New(t)

	a := NewAcceptAll()
	assert.True(a.Accept(mat.NewVecDense(1, []float64{1e9}), mat.NewSymDense(1, []float64{1e-9})))
}
