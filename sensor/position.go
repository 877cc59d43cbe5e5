// Package sensor provides reusable measurement models for the fusion
// filter. Each model is a pure function of the filter state plus the
// model's own calibration parameters; none of them performs I/O. Device
// drivers are expected to wrap these models and feed timestamped
// measurement vectors of the declared dimension to the filter.
package sensor

import (
	"fmt"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/num/dual"

	"github.com/korken89/msf/layout"
)

// Position is a GPS-style position sensor. It measures the core position
// offset by its own estimated 3-dimensional linear bias, e.g. a lever arm
// or a local datum offset.
type Position struct {
	// r is the measurement noise covariance
	r *mat.SymDense
}

// NewPosition creates a Position sensor with measurement noise r.
func NewPosition(r mat.Symmetric) (*Position, error) {
	if r == nil || r.SymmetricDim() != 3 {
		return nil, fmt.Errorf("invalid measurement noise covariance: %v", r)
	}

	c := mat.NewSymDense(3, nil)
	c.CopySym(r)

	return &Position{r: c}, nil
}

// Descriptor returns the sensor shape: 3 measurements, 3 linear states.
func (s *Position) Descriptor() layout.Descriptor {
	return layout.Descriptor{MeasurementDim: 3, LinearStates: 3, RotationStates: 0}
}

// Observe predicts the measurement: core position plus the sensor's
// estimated offset.
func (s *Position) Observe(x mat.Vector, blk layout.Block) (mat.Vector, error) {
	h := mat.NewVecDense(3, nil)
	for i := 0; i < 3; i++ {
		h.SetVec(i, x.AtVec(layout.NominalPosition+i)+x.AtVec(blk.Nominal+i))
	}

	return h, nil
}

// ObservationJacobian writes the closed-form measurement Jacobian:
// identity with respect to both the position error and the offset error.
func (s *Position) ObservationJacobian(dst *mat.Dense, _ mat.Vector, blk layout.Block) error {
	for i := 0; i < 3; i++ {
		dst.Set(i, layout.ErrorPosition+i, 1)
		dst.Set(i, blk.Error+i, 1)
	}

	return nil
}

// ObserveDual evaluates the measurement model over dual numbers.
func (s *Position) ObserveDual(x []dual.Number, blk layout.Block) ([]dual.Number, error) {
	h := make([]dual.Number, 3)
	for i := 0; i < 3; i++ {
		h[i] = dual.Add(x[layout.NominalPosition+i], x[blk.Nominal+i])
	}

	return h, nil
}

// Cov returns the measurement noise covariance.
func (s *Position) Cov() mat.Symmetric {
	return s.r
}
