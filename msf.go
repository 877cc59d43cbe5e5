package msf

import (
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/num/dual"

	"github.com/korken89/msf/layout"
)

// Sensor is the contract every sensor type bound to the filter must satisfy.
// A sensor owns its measurement-model parameters (e.g. extrinsic calibration)
// and describes how many extra nominal states it contributes to the filter.
type Sensor interface {
	// Descriptor returns the static shape of the sensor: measurement
	// dimension and the number of extra linear and rotation states
	Descriptor() layout.Descriptor
	// Observe computes the predicted measurement h(x) given the full
	// nominal state x; blk locates the sensor's own sub-state within x
	Observe(x mat.Vector, blk layout.Block) (mat.Vector, error)
	// Cov returns the measurement noise covariance R
	Cov() mat.Symmetric
}

// AnalyticSensor is a sensor which supplies a closed-form measurement
// Jacobian with respect to the error state.
type AnalyticSensor interface {
	Sensor
	// ObservationJacobian writes dh/d(error state) into dst.
	// dst has measurement_dim rows and error-state dimension columns.
	ObservationJacobian(dst *mat.Dense, x mat.Vector, blk layout.Block) error
}

// DualSensor is a sensor whose measurement model can be evaluated over
// forward-mode dual numbers, enabling algorithmic differentiation.
type DualSensor interface {
	Sensor
	// ObserveDual evaluates h(x) with dual-number arithmetic
	ObserveDual(x []dual.Number, blk layout.Block) ([]dual.Number, error)
}

// StatePropagator is a sensor whose own nominal sub-state follows a
// non-identity prediction model. Sensors which do not implement it keep
// static, bias-like sub-states during Predict.
type StatePropagator interface {
	Sensor
	// PropagateState advances the sensor's nominal sub-state in place
	PropagateState(sub *mat.VecDense, dt float64) error
}

// OutlierRejector decides whether a measurement update is statistically
// admissible given innovation y and innovation covariance S.
type OutlierRejector interface {
	// Accept reports whether the update should be applied
	Accept(y mat.Vector, s mat.Symmetric) bool
}

// JacobianProvider produces the measurement Jacobian H = dh/d(error state)
// for a sensor, either from a closed form or algorithmically.
type JacobianProvider interface {
	// Jacobian writes the measurement_dim x errorDim Jacobian of s,
	// evaluated at nominal state x, into dst
	Jacobian(dst *mat.Dense, s Sensor, lay *layout.Layout, blk layout.Block, x mat.Vector) error
}

// Noise is additive system noise
type Noise interface {
	// Mean returns noise mean
	Mean() []float64
	// Cov returns covariance matrix of the noise
	Cov() mat.Symmetric
	// Sample returns a sample of the noise
	Sample() mat.Vector
	// Reset resets the noise
	Reset()
}

// Outcome is the result of a measurement update.
type Outcome int

const (
	// None means the update did not run (e.g. invalid input)
	None Outcome = iota
	// Applied means the measurement was accepted and absorbed
	Applied
	// Rejected means the outlier rejector discarded the measurement;
	// state and covariance are unchanged
	Rejected
	// NumericalFailure means the innovation covariance failed its
	// conditioning check; the update was skipped
	NumericalFailure
)

// String implements the Stringer interface.
func (o Outcome) String() string {
	switch o {
	case Applied:
		return "Applied"
	case Rejected:
		return "Rejected"
	case NumericalFailure:
		return "NumericalFailure"
	}
	return "None"
}
