package jacobian

import (
	"fmt"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/num/dual"

	msf "github.com/korken89/msf"
	"github.com/korken89/msf/layout"
	"github.com/korken89/msf/quat"
)

// AutoDiff computes the measurement Jacobian by forward-mode dual-number
// propagation: the error perturbation is injected into the nominal state
// with dual arithmetic and the sensor's dual measurement model is
// evaluated once per error direction. The result is exact to machine
// precision and has the same shape as the analytic path.
type AutoDiff struct{}

// NewAutoDiff creates an AutoDiff provider and returns it.
func NewAutoDiff() *AutoDiff {
	return &AutoDiff{}
}

// Jacobian writes the algorithmically differentiated Jacobian of s at x
// into dst. It returns error if the sensor's model is not dual-capable.
func (a *AutoDiff) Jacobian(dst *mat.Dense, s msf.Sensor, lay *layout.Layout, blk layout.Block, x mat.Vector) error {
	ds, ok := s.(msf.DualSensor)
	if !ok {
		return fmt.Errorf("jacobian: sensor %q has no dual measurement model", blk.Key)
	}

	if err := checkDims(dst, blk, lay); err != nil {
		return err
	}

	e := lay.ErrorDim()
	dx := make([]dual.Number, e)

	for j := 0; j < e; j++ {
		dx[j].Emag = 1

		xp := dualInject(lay, x, dx)
		z, err := ds.ObserveDual(xp, blk)
		if err != nil {
			return fmt.Errorf("jacobian: dual observation of %q failed: %w", blk.Key, err)
		}
		if len(z) != blk.Desc.MeasurementDim {
			return fmt.Errorf("jacobian: invalid dual measurement dimension: %d", len(z))
		}

		for i := 0; i < len(z); i++ {
			dst.Set(i, j, z[i].Emag)
		}

		dx[j].Emag = 0
	}

	return nil
}

// dualInject mirrors layout.InjectTo over dual numbers: additive for
// linear sub-blocks, right-multiplicative quaternion composition for
// rotation sub-blocks.
func dualInject(lay *layout.Layout, x mat.Vector, dx []dual.Number) []dual.Number {
	out := make([]dual.Number, lay.NominalDim())
	for i := range out {
		out[i] = dual.Number{Real: x.AtVec(i)}
	}

	for i := 0; i < 6; i++ {
		out[layout.NominalPosition+i] = dual.Add(out[layout.NominalPosition+i], dx[layout.ErrorPosition+i])
	}
	for i := 0; i < 6; i++ {
		out[layout.NominalBiasAcc+i] = dual.Add(out[layout.NominalBiasAcc+i], dx[layout.ErrorBiasAcc+i])
	}
	injectQuatDual(out, layout.NominalAttitude, dx[layout.ErrorAttitude:layout.ErrorAttitude+3])

	for _, blk := range lay.Blocks() {
		for i := 0; i < blk.Desc.LinearStates; i++ {
			out[blk.Nominal+i] = dual.Add(out[blk.Nominal+i], dx[blk.Error+i])
		}
		for r := 0; r < blk.Desc.RotationStates; r++ {
			off := blk.Error + blk.Desc.LinearStates + 3*r
			injectQuatDual(out, blk.Nominal+blk.Desc.LinearStates+4*r, dx[off:off+3])
		}
	}

	return out
}

func injectQuatDual(out []dual.Number, qoff int, dtheta []dual.Number) {
	q := quat.MulDual(out[qoff:qoff+4], quat.ExpDual(dtheta))
	copy(out[qoff:qoff+4], q)
}
