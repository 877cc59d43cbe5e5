package noise

import (
	"fmt"

	"gonum.org/v1/gonum/mat"

	"github.com/korken89/msf/layout"
	"github.com/korken89/msf/matrix"
)

// NewProcess assembles block-diagonal process noise for the given layout.
// core is the 15x15 covariance of the core motion block; sensors maps
// sensor keys to the covariance of their error sub-block. Sensors absent
// from the map contribute zero process noise (static, bias-like states).
// It returns error if core has the wrong size, if a map key is not part of
// the layout, or if a sensor covariance does not match its error width.
func NewProcess(lay *layout.Layout, core mat.Symmetric, sensors map[string]mat.Symmetric) (*Static, error) {
	if core != nil && core.SymmetricDim() != layout.CoreErrorDim {
		return nil, fmt.Errorf("invalid core process noise dimension: %d", core.SymmetricDim())
	}

	blocks := []matrix.Block{{Offset: 0, Cov: core}}

	for _, blk := range lay.Blocks() {
		cov, ok := sensors[blk.Key]
		if !ok {
			continue
		}
		if cov.SymmetricDim() != blk.Desc.ErrorDim() {
			return nil, fmt.Errorf("invalid process noise dimension for sensor %q: %d", blk.Key, cov.SymmetricDim())
		}
		blocks = append(blocks, matrix.Block{Offset: blk.Error, Cov: cov})
	}

	for key := range sensors {
		if _, err := lay.Block(key); err != nil {
			return nil, err
		}
	}

	return NewStatic(matrix.BlockDiag(lay.ErrorDim(), blocks...))
}
