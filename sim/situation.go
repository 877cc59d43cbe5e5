// Package sim generates ground-truth trajectories and synthetic sensor
// data for exercising the fusion filter, and plots tracking results.
package sim

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"

	"github.com/korken89/msf/quat"
)

// State is the ground-truth kinematic state at one instant.
type State struct {
	// Pos is the position in the reference frame
	Pos []float64
	// Vel is the velocity in the reference frame
	Vel []float64
	// Quat is the body attitude quaternion
	Quat []float64
}

// Loiter is a level circular trajectory: constant radius, constant angular
// rate, nose along the velocity vector. It is a convenient closed form
// whose exact IMU signals are known at every instant.
type Loiter struct {
	// Radius is the circle radius in meters
	Radius float64
	// Omega is the angular rate around the circle in rad/s
	Omega float64
	// Alt is the constant altitude
	Alt float64
	// Gravity is the gravity vector; nil means [0, 0, -9.80665]
	Gravity []float64
}

// NewLoiter creates a Loiter trajectory.
// It returns error if radius or omega is not positive.
func NewLoiter(radius, omega, alt float64) (*Loiter, error) {
	if radius <= 0 || omega <= 0 {
		return nil, fmt.Errorf("invalid trajectory parameters: radius %v, omega %v", radius, omega)
	}

	return &Loiter{
		Radius:  radius,
		Omega:   omega,
		Alt:     alt,
		Gravity: []float64{0, 0, -9.80665},
	}, nil
}

// At returns the ground-truth state at time t.
func (l *Loiter) At(t float64) *State {
	a := l.Omega * t
	yaw := a + math.Pi/2 // nose along the velocity

	return &State{
		Pos: []float64{
			l.Radius * math.Cos(a),
			l.Radius * math.Sin(a),
			l.Alt,
		},
		Vel: []float64{
			-l.Radius * l.Omega * math.Sin(a),
			l.Radius * l.Omega * math.Cos(a),
			0,
		},
		Quat: quat.Exp([]float64{0, 0, yaw}),
	}
}

// IMU returns the exact IMU input at time t: body-frame specific force
// followed by body-frame angular rate, the 6-vector consumed by
// eskf.Predict.
func (l *Loiter) IMU(t float64) *mat.VecDense {
	a := l.Omega * t
	s := l.At(t)

	// centripetal acceleration in the reference frame
	acc := []float64{
		-l.Radius * l.Omega * l.Omega * math.Cos(a),
		-l.Radius * l.Omega * l.Omega * math.Sin(a),
		0,
	}

	// specific force: f_b = Rᵀ(q)·(a - g)
	fn := []float64{
		acc[0] - l.Gravity[0],
		acc[1] - l.Gravity[1],
		acc[2] - l.Gravity[2],
	}
	fb := quat.Rotate(quat.Conj(s.Quat), fn)

	return mat.NewVecDense(6, []float64{fb[0], fb[1], fb[2], 0, 0, l.Omega})
}
