package reject

import (
	"gonum.org/v1/gonum/mat"
)

// AcceptAll accepts every measurement. It disables outlier rejection for
// a sensor.
type AcceptAll struct{}

// NewAcceptAll creates an AcceptAll rejector and returns it.
func NewAcceptAll() *AcceptAll {
	return &AcceptAll{}
}

// Accept always reports true.
func (a *AcceptAll) Accept(_ mat.Vector, _ mat.Symmetric) bool {
	return true
}
