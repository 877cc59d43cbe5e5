// Package estimate holds point-in-time filter estimates: a nominal state
// value together with its error-state covariance.
package estimate

import (
	"fmt"

	"gonum.org/v1/gonum/mat"
)

// Base is a nominal state snapshot with its error covariance. The two need
// not have the same dimension: an error-state filter carries quaternion
// attitudes in the state vector and minimal 3-parameter perturbations in
// the covariance.
type Base struct {
	// val is the estimated nominal state
	val *mat.VecDense
	// cov is the error-state covariance
	cov *mat.SymDense
}

// New returns an estimate snapshot of val and cov.
// It returns error if either is nil or empty.
func New(val mat.Vector, cov mat.Symmetric) (*Base, error) {
	if val == nil || val.Len() == 0 {
		return nil, fmt.Errorf("invalid state value: %v", val)
	}
	if cov == nil || cov.SymmetricDim() == 0 {
		return nil, fmt.Errorf("invalid state covariance: %v", cov)
	}

	v := &mat.VecDense{}
	v.CloneFromVec(val)

	c := mat.NewSymDense(cov.SymmetricDim(), nil)
	c.CopySym(cov)

	return &Base{
		val: v,
		cov: c,
	}, nil
}

// Val returns the estimated nominal state
func (b *Base) Val() mat.Vector {
	v := &mat.VecDense{}
	v.CloneFromVec(b.val)

	return v
}

// Cov returns the error-state covariance
func (b *Base) Cov() mat.Symmetric {
	cov := mat.NewSymDense(b.cov.SymmetricDim(), nil)
	cov.CopySym(b.cov)

	return cov
}
