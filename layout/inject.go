package layout

import (
	"fmt"

	"gonum.org/v1/gonum/mat"

	"github.com/korken89/msf/quat"
)

// InjectTo composes the error-state vector dx into the nominal state x and
// writes the result to dst. Linear sub-blocks are additive; every quaternion
// sub-block q is composed right-multiplicatively, q ⊗ Exp(dθ), with its
// 3-component slice of dx, and renormalized. dst and x may be the same
// vector.
func (l *Layout) InjectTo(dst *mat.VecDense, x mat.Vector, dx mat.Vector) error {
	if x.Len() != l.n {
		return fmt.Errorf("layout: invalid nominal state length: %d", x.Len())
	}
	if dx.Len() != l.e {
		return fmt.Errorf("layout: invalid error state length: %d", dx.Len())
	}
	if dst.Len() != l.n {
		return fmt.Errorf("layout: invalid destination length: %d", dst.Len())
	}

	out := make([]float64, l.n)
	for i := 0; i < l.n; i++ {
		out[i] = x.AtVec(i)
	}

	// core linear states
	for i := 0; i < 6; i++ {
		out[NominalPosition+i] += dx.AtVec(ErrorPosition + i)
	}
	for i := 0; i < 6; i++ {
		out[NominalBiasAcc+i] += dx.AtVec(ErrorBiasAcc + i)
	}

	// core attitude
	injectQuat(out, NominalAttitude, dx, ErrorAttitude)

	for _, blk := range l.blocks {
		for i := 0; i < blk.Desc.LinearStates; i++ {
			out[blk.Nominal+i] += dx.AtVec(blk.Error + i)
		}
		for r := 0; r < blk.Desc.RotationStates; r++ {
			injectQuat(out, blk.Nominal+blk.Desc.LinearStates+4*r, dx, blk.Error+blk.Desc.LinearStates+3*r)
		}
	}

	for i := 0; i < l.n; i++ {
		dst.SetVec(i, out[i])
	}

	return nil
}

// Inject composes dx into x in place.
func (l *Layout) Inject(x *mat.VecDense, dx mat.Vector) error {
	return l.InjectTo(x, x, dx)
}

func injectQuat(out []float64, qoff int, dx mat.Vector, doff int) {
	q := quat.Mul(
		out[qoff:qoff+4],
		quat.Exp([]float64{dx.AtVec(doff), dx.AtVec(doff + 1), dx.AtVec(doff + 2)}),
	)
	quat.Normalize(q)
	copy(out[qoff:qoff+4], q)
}
