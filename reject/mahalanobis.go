// Package reject implements outlier rejection strategies for measurement
// updates. A rejector is selected per sensor at configuration time and
// consulted with the innovation and its covariance before a measurement is
// absorbed.
package reject

import (
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat/distuv"
)

// Mahalanobis gates measurements on their Mahalanobis distance: a
// measurement is accepted iff yᵀS⁻¹y is at or below the chi-squared
// quantile for the configured confidence and the measurement dimension.
type Mahalanobis struct {
	// confidence is the chi-squared confidence level, e.g. 0.95
	confidence float64
	// threshold caches the quantile for the last seen dimension
	threshold float64
	dim       int
}

// NewMahalanobis creates a Mahalanobis gate with the given confidence
// level in (0, 1).
func NewMahalanobis(confidence float64) *Mahalanobis {
	return &Mahalanobis{confidence: confidence}
}

// Accept reports whether the innovation y with covariance s passes the
// gate. A covariance that cannot be factorized is treated as a rejection.
func (m *Mahalanobis) Accept(y mat.Vector, s mat.Symmetric) bool {
	if y.Len() != m.dim {
		m.dim = y.Len()
		m.threshold = distuv.ChiSquared{K: float64(m.dim)}.Quantile(m.confidence)
	}

	var chol mat.Cholesky
	if ok := chol.Factorize(s); !ok {
		return false
	}

	siy := mat.NewVecDense(y.Len(), nil)
	if err := chol.SolveVecTo(siy, y); err != nil {
		return false
	}

	return mat.Dot(y, siy) <= m.threshold
}
