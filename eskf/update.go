package eskf

import (
	"fmt"

	gmatrix "github.com/milosgajdos/matrix"
	"gonum.org/v1/gonum/mat"

	msf "github.com/korken89/msf"
	"github.com/korken89/msf/layout"
	"github.com/korken89/msf/matrix"
)

// Update corrects the filter with one measurement from the sensor
// identified by key and reports the outcome. Rejected and NumericalFailure
// outcomes are non-fatal: the state and covariance are left untouched and
// the caller decides policy. An unknown sensor key is a programmer error
// and is returned as layout.ErrInvalidSensorKey.
//
// Accepted measurements are absorbed with the Joseph-form covariance
// update and the correction is injected into the nominal state: additive
// for linear sub-blocks, right-multiplicative for quaternion sub-blocks.
// The error state is reset to zero by the injection; the filter always
// operates relative to the current nominal state.
func (f *ESKF) Update(key string, z mat.Vector) (msf.Outcome, error) {
	b, ok := f.sensors[key]
	if !ok {
		return msf.None, fmt.Errorf("%w: %q", layout.ErrInvalidSensorKey, key)
	}

	m := b.blk.Desc.MeasurementDim
	if z == nil || z.Len() != m {
		return msf.None, fmt.Errorf("invalid measurement supplied: %v", z)
	}

	// predicted measurement
	hx, err := b.sensor.Observe(f.x, b.blk)
	if err != nil {
		return msf.None, fmt.Errorf("failed to observe sensor %q: %w", key, err)
	}
	if hx.Len() != m {
		return msf.None, fmt.Errorf("invalid predicted measurement dimension: %d", hx.Len())
	}

	e := f.lay.ErrorDim()
	hmat := mat.NewDense(m, e, nil)
	if err := b.jac.Jacobian(hmat, b.sensor, f.lay, b.blk, f.x); err != nil {
		return msf.None, fmt.Errorf("failed to compute jacobian of %q: %w", key, err)
	}

	// innovation
	y := mat.NewVecDense(m, nil)
	y.SubVec(z, hx)

	r := b.sensor.Cov()
	if r.SymmetricDim() != m {
		return msf.None, fmt.Errorf("invalid measurement noise dimension: %d", r.SymmetricDim())
	}

	// S = H*P*H' + R
	pht := &mat.Dense{}
	pht.Mul(f.p, hmat.T())
	sDense := &mat.Dense{}
	sDense.Mul(hmat, pht)
	sDense.Add(sDense, r)
	s := mat.NewSymDense(m, nil)
	matrix.Symmetrize(s, sDense)

	if !b.rej.Accept(y, s) {
		return msf.Rejected, nil
	}

	// conditioning check before inversion
	var chol mat.Cholesky
	if ok := chol.Factorize(s); !ok {
		return msf.NumericalFailure, nil
	}
	if chol.Cond() > f.maxCond {
		return msf.NumericalFailure, nil
	}

	// K = P*H'*S^-1, computed as K' = S^-1*(P*H')'
	kt := mat.NewDense(m, e, nil)
	if err := chol.SolveTo(kt, pht.T()); err != nil {
		return msf.NumericalFailure, nil
	}
	gain := kt.T()

	// correction
	dx := mat.NewVecDense(e, nil)
	dx.MulVec(gain, y)

	// Joseph form: P <- (I-KH)*P*(I-KH)' + K*R*K'
	a := &mat.Dense{}
	a.Mul(gain, hmat)
	eye, err := gmatrix.NewDenseValIdentity(e, 1.0)
	if err != nil {
		return msf.None, err
	}
	a.Sub(eye, a)

	ap := &mat.Dense{}
	ap.Mul(a, f.p)
	apa := &mat.Dense{}
	apa.Mul(ap, a.T())

	kr := &mat.Dense{}
	kr.Mul(gain, r)
	krk := &mat.Dense{}
	krk.Mul(kr, gain.T())

	apa.Add(apa, krk)
	matrix.Symmetrize(f.p, apa)

	// inject the correction into the nominal state; the error state is
	// zero again afterwards
	if err := f.lay.Inject(f.x, dx); err != nil {
		return msf.None, err
	}

	f.inn = mat.VecDenseCopyOf(y)
	g := &mat.Dense{}
	g.CloneFrom(gain)
	f.gain = g

	return msf.Applied, nil
}
