package jacobian

import (
	"gonum.org/v1/gonum/diff/fd"
	"gonum.org/v1/gonum/mat"

	msf "github.com/korken89/msf"
	"github.com/korken89/msf/layout"
)

// Numeric computes the measurement Jacobian by central finite differences
// over the error state: each error direction is injected into the nominal
// state and the measurement model re-evaluated. It works for any sensor
// and serves as the universal fallback and cross-validation reference.
type Numeric struct{}

// NewNumeric creates a Numeric provider and returns it.
func NewNumeric() *Numeric {
	return &Numeric{}
}

// Jacobian writes the finite-difference Jacobian of s at x into dst.
func (n *Numeric) Jacobian(dst *mat.Dense, s msf.Sensor, lay *layout.Layout, blk layout.Block, x mat.Vector) error {
	if err := checkDims(dst, blk, lay); err != nil {
		return err
	}

	h := func(y, dx []float64) {
		xp := mat.NewVecDense(lay.NominalDim(), nil)
		if err := lay.InjectTo(xp, x, mat.NewVecDense(len(dx), dx)); err != nil {
			panic(err)
		}

		z, err := s.Observe(xp, blk)
		if err != nil {
			panic(err)
		}

		for i := 0; i < len(y); i++ {
			y[i] = z.AtVec(i)
		}
	}

	fd.Jacobian(dst, h, make([]float64, lay.ErrorDim()), &fd.JacobianSettings{
		Formula:    fd.Central,
		Concurrent: true,
	})

	return nil
}
