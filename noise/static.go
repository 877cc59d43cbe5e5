package noise

import (
	"fmt"

	"gonum.org/v1/gonum/mat"
)

// Static is noise with zero mean and a fixed covariance matrix. It never
// samples a non-zero value; it carries covariance specification only, which
// is how process and measurement noise enter the filter.
type Static struct {
	// mean stores zero mean values
	mean []float64
	// cov is the fixed covariance matrix
	cov *mat.SymDense
}

// NewStatic creates new Static noise with the given covariance.
func NewStatic(cov mat.Symmetric) (*Static, error) {
	if cov == nil {
		return nil, fmt.Errorf("invalid covariance matrix: %v", cov)
	}

	c := mat.NewSymDense(cov.SymmetricDim(), nil)
	c.CopySym(cov)

	return &Static{
		mean: make([]float64, cov.SymmetricDim()),
		cov:  c,
	}, nil
}

// NewZero creates new Static noise with zero covariance of the given size.
// It returns error if size is negative.
func NewZero(size int) (*Static, error) {
	if size < 0 {
		return nil, fmt.Errorf("invalid noise dimension: %d", size)
	}

	return &Static{
		mean: make([]float64, size),
		cov:  mat.NewSymDense(size, nil),
	}, nil
}

// Sample returns a zero vector.
func (s *Static) Sample() mat.Vector {
	return mat.NewVecDense(len(s.mean), nil)
}

// Cov returns the fixed covariance matrix.
func (s *Static) Cov() mat.Symmetric {
	cov := mat.NewSymDense(s.cov.SymmetricDim(), nil)
	cov.CopySym(s.cov)

	return cov
}

// Mean returns the zero mean.
func (s *Static) Mean() []float64 {
	mean := make([]float64, len(s.mean))
	copy(mean, s.mean)

	return mean
}

// Reset does nothing: it's here to implement the Noise interface.
func (s *Static) Reset() {}

// String implements the Stringer interface.
func (s *Static) String() string {
	return fmt.Sprintf("Static{\nCov=%v\n}", mat.Formatted(s.Cov(), mat.Prefix("    "), mat.Squeeze()))
}

// None is noise with empty mean and zero-size covariance matrix.
type None struct{}

// NewNone creates new None noise and returns it
func NewNone() (*None, error) {
	return &None{}, nil
}

// Sample returns a zero-size vector.
func (e *None) Sample() mat.Vector {
	return &mat.VecDense{}
}

// Cov returns a zero-size covariance matrix.
func (e *None) Cov() mat.Symmetric {
	return &mat.SymDense{}
}

// Mean returns None mean.
func (e *None) Mean() []float64 {
	return nil
}

// Reset does nothing: it's here to implement the Noise interface
func (e *None) Reset() {}
