package eskf

import (
	"fmt"

	"gonum.org/v1/gonum/mat"

	msf "github.com/korken89/msf"
	"github.com/korken89/msf/layout"
	"github.com/korken89/msf/matrix"
	"github.com/korken89/msf/quat"
)

// Predict propagates the filter over dt seconds. u is the IMU input: a
// 6-vector holding the body-frame specific force followed by the
// body-frame angular rate; nil means zero input. qn overrides the
// configured process noise PSD for this call; nil uses the configured one.
//
// The core motion block follows first-order strapdown kinematics with
// random-walk biases; sensor sub-states keep their own prediction model
// (identity unless the sensor implements msf.StatePropagator). The error
// covariance propagates as P ← F·P·Fᵀ + Q·dt.
func (f *ESKF) Predict(dt float64, u mat.Vector, qn msf.Noise) error {
	if dt < 0 {
		return fmt.Errorf("invalid time step: %v", dt)
	}
	if u == nil {
		u = mat.NewVecDense(6, nil)
	}
	if u.Len() != 6 {
		return fmt.Errorf("invalid input vector length: %d", u.Len())
	}
	if qn == nil {
		qn = f.q
	}
	qCov := qn.Cov()
	if n := qCov.SymmetricDim(); n != 0 && n != f.lay.ErrorDim() {
		return fmt.Errorf("invalid process noise dimension: %d", n)
	}

	raw := f.x.RawVector().Data
	q := raw[layout.NominalAttitude : layout.NominalAttitude+4]

	// bias-corrected specific force and angular rate
	fb := make([]float64, 3)
	wb := make([]float64, 3)
	for i := 0; i < 3; i++ {
		fb[i] = u.AtVec(i) - raw[layout.NominalBiasAcc+i]
		wb[i] = u.AtVec(3+i) - raw[layout.NominalBiasGyro+i]
	}

	rot := quat.RotMat(q)

	fmat := f.transition(rot, fb, wb, dt)

	// nominal propagation: position with the pre-update velocity
	var acc [3]float64
	for i := 0; i < 3; i++ {
		acc[i] = rot.At(i, 0)*fb[0] + rot.At(i, 1)*fb[1] + rot.At(i, 2)*fb[2] + f.g[i]
	}
	for i := 0; i < 3; i++ {
		raw[layout.NominalPosition+i] += raw[layout.NominalVelocity+i] * dt
		raw[layout.NominalVelocity+i] += acc[i] * dt
	}

	dq := quat.Exp([]float64{wb[0] * dt, wb[1] * dt, wb[2] * dt})
	copy(q, quat.Mul(q, dq))
	quat.Normalize(q)

	// sensor sub-states: identity unless the sensor propagates itself
	for _, b := range f.sensors {
		sp, ok := b.sensor.(msf.StatePropagator)
		if !ok {
			continue
		}
		n := b.blk.Desc.NominalDim()
		sub := f.x.SliceVec(b.blk.Nominal, b.blk.Nominal+n).(*mat.VecDense)
		if err := sp.PropagateState(sub, dt); err != nil {
			return fmt.Errorf("sensor %q state propagation failed: %w", b.blk.Key, err)
		}
		for r := 0; r < b.blk.Desc.RotationStates; r++ {
			off := b.blk.Nominal + b.blk.Desc.LinearStates + 4*r
			quat.Normalize(raw[off : off+4])
		}
	}

	// P <- F*P*F' + Q*dt
	cov := &mat.Dense{}
	cov.Mul(fmat, f.p)
	cov.Mul(cov, fmat.T())

	e := f.lay.ErrorDim()
	pNext := mat.NewSymDense(e, nil)
	matrix.Symmetrize(pNext, cov)
	if qCov.SymmetricDim() == e && dt > 0 {
		for i := 0; i < e; i++ {
			for j := i; j < e; j++ {
				pNext.SetSym(i, j, pNext.At(i, j)+qCov.At(i, j)*dt)
			}
		}
	}
	f.p.CopySym(pNext)

	return nil
}

// transition builds the linearized error-state transition Jacobian F for
// the core motion block; sensor error blocks propagate as identity.
func (f *ESKF) transition(rot *mat.Dense, fb, wb []float64, dt float64) *mat.Dense {
	e := f.lay.ErrorDim()
	fmat := mat.NewDense(e, e, nil)
	for i := 0; i < e; i++ {
		fmat.Set(i, i, 1)
	}

	var tmp mat.Dense

	// dp/dv
	for i := 0; i < 3; i++ {
		fmat.Set(layout.ErrorPosition+i, layout.ErrorVelocity+i, dt)
	}

	// dv/dθ = -R·[fb]x·dt
	tmp.Mul(rot, quat.Skew(fb))
	tmp.Scale(-dt, &tmp)
	matrix.InsertBlock(fmat, layout.ErrorVelocity, layout.ErrorAttitude, &tmp)

	// dv/d(bias_acc) = -R·dt
	var rba mat.Dense
	rba.Scale(-dt, rot)
	matrix.InsertBlock(fmat, layout.ErrorVelocity, layout.ErrorBiasAcc, &rba)

	// dθ/dθ = R(wb·dt)ᵀ
	rw := quat.RotMat(quat.Exp([]float64{wb[0] * dt, wb[1] * dt, wb[2] * dt}))
	var rwt mat.Dense
	rwt.CloneFrom(rw.T())
	matrix.InsertBlock(fmat, layout.ErrorAttitude, layout.ErrorAttitude, &rwt)

	// dθ/d(bias_gyro) = -I·dt
	for i := 0; i < 3; i++ {
		fmat.Set(layout.ErrorAttitude+i, layout.ErrorBiasGyro+i, -dt)
	}

	return fmat
}
