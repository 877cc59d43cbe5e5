// Package quat implements Hamilton quaternion operations used by the
// error-state filter. Quaternions are stored w-first as [w, x, y, z] and
// rotation vectors follow the right-multiplicative convention: composing an
// attitude q with a small rotation d gives q ⊗ Exp(d).
package quat

import (
	"math"

	"gonum.org/v1/gonum/mat"
)

// small-angle threshold below which series expansions replace the exact
// trigonometric forms
const epsAngle = 1e-12

// Identity returns the identity quaternion.
func Identity() []float64 {
	return []float64{1, 0, 0, 0}
}

// Mul returns the Hamilton product p ⊗ q.
func Mul(p, q []float64) []float64 {
	return []float64{
		p[0]*q[0] - p[1]*q[1] - p[2]*q[2] - p[3]*q[3],
		p[0]*q[1] + p[1]*q[0] + p[2]*q[3] - p[3]*q[2],
		p[0]*q[2] - p[1]*q[3] + p[2]*q[0] + p[3]*q[1],
		p[0]*q[3] + p[1]*q[2] - p[2]*q[1] + p[3]*q[0],
	}
}

// Conj returns the conjugate of q.
func Conj(q []float64) []float64 {
	return []float64{q[0], -q[1], -q[2], -q[3]}
}

// Norm returns the Euclidean norm of q.
func Norm(q []float64) float64 {
	return math.Sqrt(q[0]*q[0] + q[1]*q[1] + q[2]*q[2] + q[3]*q[3])
}

// Normalize scales q in place to unit norm.
func Normalize(q []float64) {
	n := Norm(q)
	if n == 0 {
		q[0], q[1], q[2], q[3] = 1, 0, 0, 0
		return
	}
	for i := range q {
		q[i] /= n
	}
}

// Exp maps a rotation vector v to its unit quaternion
// [cos(|v|/2), sin(|v|/2)·v/|v|]. Small angles use the series expansion of
// sin(x)/x so the map is smooth through v = 0.
func Exp(v []float64) []float64 {
	t2 := v[0]*v[0] + v[1]*v[1] + v[2]*v[2]
	var w, k float64
	if t2 < epsAngle {
		w = 1 - t2/8
		k = 0.5 - t2/48
	} else {
		t := math.Sqrt(t2)
		w = math.Cos(t / 2)
		k = math.Sin(t/2) / t
	}
	return []float64{w, k * v[0], k * v[1], k * v[2]}
}

// Log maps a unit quaternion to its rotation vector, the inverse of Exp.
// The sign of q is normalized first so the result is the minimal rotation.
func Log(q []float64) []float64 {
	w, x, y, z := q[0], q[1], q[2], q[3]
	if w < 0 {
		w, x, y, z = -w, -x, -y, -z
	}
	n2 := x*x + y*y + z*z
	var k float64
	if n2 < epsAngle {
		// 2·atan2(n, w)/n for n -> 0
		k = 2/w - 2*n2/(3*w*w*w)
	} else {
		n := math.Sqrt(n2)
		k = 2 * math.Atan2(n, w) / n
	}
	return []float64{k * x, k * y, k * z}
}

// RotMat returns the 3x3 rotation matrix R(q) transforming body-frame
// vectors into the reference frame.
func RotMat(q []float64) *mat.Dense {
	w, x, y, z := q[0], q[1], q[2], q[3]
	return mat.NewDense(3, 3, []float64{
		1 - 2*(y*y+z*z), 2 * (x*y - w*z), 2 * (x*z + w*y),
		2 * (x*y + w*z), 1 - 2*(x*x+z*z), 2 * (y*z - w*x),
		2 * (x*z - w*y), 2 * (y*z + w*x), 1 - 2*(x*x+y*y),
	})
}

// Rotate returns R(q)·v.
func Rotate(q, v []float64) []float64 {
	p := Mul(Mul(q, []float64{0, v[0], v[1], v[2]}), Conj(q))
	return []float64{p[1], p[2], p[3]}
}

// Skew returns the skew-symmetric cross-product matrix [v]x.
func Skew(v []float64) *mat.Dense {
	return mat.NewDense(3, 3, []float64{
		0, -v[2], v[1],
		v[2], 0, -v[0],
		-v[1], v[0], 0,
	})
}
