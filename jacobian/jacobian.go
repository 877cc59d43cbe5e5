// Package jacobian implements the measurement Jacobian strategies of the
// fusion filter. A provider computes H = ∂h/∂(error state), the
// linearization of a sensor's measurement model about the current nominal
// state, evaluated at zero error. Analytic delegates to the sensor's
// closed form, AutoDiff propagates forward-mode dual numbers through the
// model, and Numeric falls back to central finite differences.
package jacobian

import (
	"fmt"

	"gonum.org/v1/gonum/mat"

	msf "github.com/korken89/msf"
	"github.com/korken89/msf/layout"
)

// Analytic delegates to the sensor's closed-form observation Jacobian.
type Analytic struct{}

// NewAnalytic creates an Analytic provider and returns it.
func NewAnalytic() *Analytic {
	return &Analytic{}
}

// Jacobian writes the sensor's closed-form Jacobian into dst.
// It returns error if the sensor does not supply one.
func (a *Analytic) Jacobian(dst *mat.Dense, s msf.Sensor, lay *layout.Layout, blk layout.Block, x mat.Vector) error {
	as, ok := s.(msf.AnalyticSensor)
	if !ok {
		return fmt.Errorf("jacobian: sensor %q has no analytic jacobian", blk.Key)
	}

	if err := checkDims(dst, blk, lay); err != nil {
		return err
	}
	dst.Zero()

	return as.ObservationJacobian(dst, x, blk)
}

// For picks the preferred provider for a sensor: Analytic when the sensor
// supplies a closed form, AutoDiff when its model is dual-capable, and
// Numeric otherwise.
func For(s msf.Sensor) msf.JacobianProvider {
	if _, ok := s.(msf.AnalyticSensor); ok {
		return NewAnalytic()
	}
	if _, ok := s.(msf.DualSensor); ok {
		return NewAutoDiff()
	}
	return NewNumeric()
}

func checkDims(dst *mat.Dense, blk layout.Block, lay *layout.Layout) error {
	r, c := dst.Dims()
	if r != blk.Desc.MeasurementDim || c != lay.ErrorDim() {
		return fmt.Errorf("jacobian: invalid destination dims [%d x %d], want [%d x %d]",
			r, c, blk.Desc.MeasurementDim, lay.ErrorDim())
	}
	return nil
}
