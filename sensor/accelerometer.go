package sensor

import (
	"fmt"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/num/dual"

	"github.com/korken89/msf/layout"
	"github.com/korken89/msf/quat"
)

// Accelerometer is a measurement-only sensor: it contributes no extra
// states and consumes only the core attitude and accelerometer bias. Under
// the quasi-static assumption the measured specific force is the gravity
// reaction rotated into the body frame, plus the bias.
type Accelerometer struct {
	// g is the gravity vector in the reference frame
	g []float64
	// r is the measurement noise covariance
	r *mat.SymDense
}

// NewAccelerometer creates an Accelerometer with gravity vector g and
// measurement noise r. A nil g defaults to [0, 0, -9.80665].
func NewAccelerometer(g []float64, r mat.Symmetric) (*Accelerometer, error) {
	if r == nil || r.SymmetricDim() != 3 {
		return nil, fmt.Errorf("invalid measurement noise covariance: %v", r)
	}
	if g == nil {
		g = []float64{0, 0, -9.80665}
	}
	if len(g) != 3 {
		return nil, fmt.Errorf("invalid gravity vector: %v", g)
	}

	c := mat.NewSymDense(3, nil)
	c.CopySym(r)

	gc := make([]float64, 3)
	copy(gc, g)

	return &Accelerometer{g: gc, r: c}, nil
}

// Descriptor returns the sensor shape: 3 measurements, no extra states.
func (s *Accelerometer) Descriptor() layout.Descriptor {
	return layout.Descriptor{MeasurementDim: 3}
}

// Observe predicts the quasi-static specific force: h = Rᵀ(q)·(-g) + b_a.
func (s *Accelerometer) Observe(x mat.Vector, _ layout.Block) (mat.Vector, error) {
	q := coreQuat(x)
	v := quat.Rotate(quat.Conj(q), []float64{-s.g[0], -s.g[1], -s.g[2]})

	h := mat.NewVecDense(3, nil)
	for i := 0; i < 3; i++ {
		h.SetVec(i, v[i]+x.AtVec(layout.NominalBiasAcc+i))
	}

	return h, nil
}

// ObservationJacobian writes the closed-form measurement Jacobian. For a
// right-multiplicative attitude perturbation the attitude columns are the
// cross-product matrix of the body-frame gravity reaction; the bias
// columns are identity.
func (s *Accelerometer) ObservationJacobian(dst *mat.Dense, x mat.Vector, _ layout.Block) error {
	q := coreQuat(x)
	v := quat.Rotate(quat.Conj(q), []float64{-s.g[0], -s.g[1], -s.g[2]})

	sk := quat.Skew(v)
	for i := 0; i < 3; i++ {
		for j := 0; j < 3; j++ {
			dst.Set(i, layout.ErrorAttitude+j, sk.At(i, j))
		}
		dst.Set(i, layout.ErrorBiasAcc+i, 1)
	}

	return nil
}

// ObserveDual evaluates the measurement model over dual numbers.
func (s *Accelerometer) ObserveDual(x []dual.Number, _ layout.Block) ([]dual.Number, error) {
	q := x[layout.NominalAttitude : layout.NominalAttitude+4]
	ng := []dual.Number{{Real: -s.g[0]}, {Real: -s.g[1]}, {Real: -s.g[2]}}

	v := quat.RotateDual(quat.ConjDual(q), ng)
	for i := 0; i < 3; i++ {
		v[i] = dual.Add(v[i], x[layout.NominalBiasAcc+i])
	}

	return v, nil
}

// Cov returns the measurement noise covariance.
func (s *Accelerometer) Cov() mat.Symmetric {
	return s.r
}

func coreQuat(x mat.Vector) []float64 {
	return []float64{
		x.AtVec(layout.NominalAttitude),
		x.AtVec(layout.NominalAttitude + 1),
		x.AtVec(layout.NominalAttitude + 2),
		x.AtVec(layout.NominalAttitude + 3),
	}
}
