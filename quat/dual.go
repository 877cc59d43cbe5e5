package quat

import "gonum.org/v1/gonum/num/dual"

// Dual-number mirrors of the quaternion operations, used for forward-mode
// algorithmic differentiation of measurement models. The conventions are
// identical to the float64 versions.

// MulDual returns the Hamilton product p ⊗ q over dual numbers.
func MulDual(p, q []dual.Number) []dual.Number {
	return []dual.Number{
		dual.Sub(dual.Sub(dual.Sub(dual.Mul(p[0], q[0]), dual.Mul(p[1], q[1])), dual.Mul(p[2], q[2])), dual.Mul(p[3], q[3])),
		dual.Sub(dual.Add(dual.Add(dual.Mul(p[0], q[1]), dual.Mul(p[1], q[0])), dual.Mul(p[2], q[3])), dual.Mul(p[3], q[2])),
		dual.Add(dual.Add(dual.Sub(dual.Mul(p[0], q[2]), dual.Mul(p[1], q[3])), dual.Mul(p[2], q[0])), dual.Mul(p[3], q[1])),
		dual.Add(dual.Sub(dual.Add(dual.Mul(p[0], q[3]), dual.Mul(p[1], q[2])), dual.Mul(p[2], q[1])), dual.Mul(p[3], q[0])),
	}
}

// ConjDual returns the conjugate of q.
func ConjDual(q []dual.Number) []dual.Number {
	neg := dual.Number{Real: -1}
	return []dual.Number{q[0], dual.Mul(neg, q[1]), dual.Mul(neg, q[2]), dual.Mul(neg, q[3])}
}

// ExpDual maps a rotation vector to a unit quaternion over dual numbers.
// The series branch keeps the map differentiable at zero rotation, where
// the exact form would differentiate sqrt at the origin.
func ExpDual(v []dual.Number) []dual.Number {
	t2 := dual.Add(dual.Add(dual.Mul(v[0], v[0]), dual.Mul(v[1], v[1])), dual.Mul(v[2], v[2]))

	var w, k dual.Number
	if t2.Real < epsAngle {
		w = dual.Sub(dual.Number{Real: 1}, dual.Mul(dual.Number{Real: 1.0 / 8}, t2))
		k = dual.Sub(dual.Number{Real: 0.5}, dual.Mul(dual.Number{Real: 1.0 / 48}, t2))
	} else {
		t := dual.Sqrt(t2)
		half := dual.Mul(dual.Number{Real: 0.5}, t)
		w = dual.Cos(half)
		k = dual.Mul(dual.Sin(half), dual.Inv(t))
	}
	return []dual.Number{w, dual.Mul(k, v[0]), dual.Mul(k, v[1]), dual.Mul(k, v[2])}
}

// LogDual maps a unit quaternion to its rotation vector over dual numbers.
func LogDual(q []dual.Number) []dual.Number {
	w, x, y, z := q[0], q[1], q[2], q[3]
	if w.Real < 0 {
		neg := dual.Number{Real: -1}
		w, x, y, z = dual.Mul(neg, w), dual.Mul(neg, x), dual.Mul(neg, y), dual.Mul(neg, z)
	}
	n2 := dual.Add(dual.Add(dual.Mul(x, x), dual.Mul(y, y)), dual.Mul(z, z))

	var k dual.Number
	if n2.Real < epsAngle {
		// 2/w - 2n²/(3w³) for n -> 0
		winv := dual.Inv(w)
		k = dual.Sub(
			dual.Mul(dual.Number{Real: 2}, winv),
			dual.Mul(dual.Mul(dual.Number{Real: 2.0 / 3}, n2), dual.Mul(winv, dual.Mul(winv, winv))),
		)
	} else {
		n := dual.Sqrt(n2)
		// w > 0 after the sign flip, so atan2(n, w) == atan(n/w)
		ang := dual.Atan(dual.Mul(n, dual.Inv(w)))
		k = dual.Mul(dual.Number{Real: 2}, dual.Mul(ang, dual.Inv(n)))
	}
	return []dual.Number{dual.Mul(k, x), dual.Mul(k, y), dual.Mul(k, z)}
}

// RotateDual returns R(q)·v over dual numbers.
func RotateDual(q, v []dual.Number) []dual.Number {
	p := MulDual(MulDual(q, []dual.Number{{}, v[0], v[1], v[2]}), ConjDual(q))
	return []dual.Number{p[1], p[2], p[3]}
}
