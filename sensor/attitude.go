package sensor

import (
	"fmt"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/num/dual"

	"github.com/korken89/msf/layout"
	"github.com/korken89/msf/quat"
)

// Attitude is an auxiliary attitude reference, e.g. an external AHRS or a
// camera-based tracker mounted on the vehicle. It contributes one rotation
// state: the extrinsic mounting quaternion between the body frame and the
// reference's own frame, estimated online. The measurement is the
// rotation-vector form of the composed attitude q ⊗ q_ext.
//
// The model carries no closed-form Jacobian; the filter differentiates it
// algorithmically through the dual-number path.
type Attitude struct {
	// r is the measurement noise covariance
	r *mat.SymDense
}

// NewAttitude creates an Attitude sensor with measurement noise r.
func NewAttitude(r mat.Symmetric) (*Attitude, error) {
	if r == nil || r.SymmetricDim() != 3 {
		return nil, fmt.Errorf("invalid measurement noise covariance: %v", r)
	}

	c := mat.NewSymDense(3, nil)
	c.CopySym(r)

	return &Attitude{r: c}, nil
}

// Descriptor returns the sensor shape: 3 measurements, one extra rotation
// state.
func (s *Attitude) Descriptor() layout.Descriptor {
	return layout.Descriptor{MeasurementDim: 3, RotationStates: 1}
}

// Observe predicts the measurement: h = Log(q ⊗ q_ext).
func (s *Attitude) Observe(x mat.Vector, blk layout.Block) (mat.Vector, error) {
	q := coreQuat(x)
	ext := []float64{
		x.AtVec(blk.Nominal),
		x.AtVec(blk.Nominal + 1),
		x.AtVec(blk.Nominal + 2),
		x.AtVec(blk.Nominal + 3),
	}

	return mat.NewVecDense(3, quat.Log(quat.Mul(q, ext))), nil
}

// ObserveDual evaluates the measurement model over dual numbers.
func (s *Attitude) ObserveDual(x []dual.Number, blk layout.Block) ([]dual.Number, error) {
	q := x[layout.NominalAttitude : layout.NominalAttitude+4]
	ext := x[blk.Nominal : blk.Nominal+4]

	return quat.LogDual(quat.MulDual(q, ext)), nil
}

// Cov returns the measurement noise covariance.
func (s *Attitude) Cov() mat.Symmetric {
	return s.r
}
