package sim

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"gonum.org/v1/gonum/mat"

	"github.com/korken89/msf/quat"
)

func TestNewLoiter(t *testing.T) {
	assert := assert.New(t)

	l, err := NewLoiter(50, 0.1, 100)
	assert.NotNil(l)
	assert.NoError(err)

	l, err = NewLoiter(-1, 0.1, 100)
	assert.Nil(l)
	assert.Error(err)

	l, err = NewLoiter(50, 0, 100)
	assert.Nil(l)
	assert.Error(err)
}

func TestLoiterAt(t *testing.T) {
	assert := assert.New(t)

	l, err := NewLoiter(50, 0.1, 100)
	assert.NoError(err)

	for _, tt := range []float64{0, 1.7, 13.5, 62.8} {
		s := l.At(tt)

		// on the circle at constant altitude
		horiz := math.Hypot(s.Pos[0], s.Pos[1])
		assert.InDelta(50.0, horiz, 1e-9)
		assert.Equal(100.0, s.Pos[2])

		// velocity tangential with speed R·ω
		dot := s.Pos[0]*s.Vel[0] + s.Pos[1]*s.Vel[1]
		assert.InDelta(0.0, dot, 1e-9)
		speed := math.Hypot(s.Vel[0], s.Vel[1])
		assert.InDelta(5.0, speed, 1e-9)

		assert.InDelta(1.0, quat.Norm(s.Quat), 1e-12)
	}
}

func TestLoiterNoseAlongVelocity(t *testing.T) {
	assert := assert.New(t)

	l, err := NewLoiter(50, 0.1, 100)
	assert.NoError(err)

	s := l.At(7.3)

	// the body x axis points along the velocity
	nose := quat.Rotate(s.Quat, []float64{1, 0, 0})
	speed := math.Hypot(s.Vel[0], s.Vel[1])
	for i := 0; i < 3; i++ {
		assert.InDelta(s.Vel[i]/speed, nose[i], 1e-9)
	}
}

func TestLoiterIMU(t *testing.T) {
	assert := assert.New(t)

	l, err := NewLoiter(50, 0.1, 100)
	assert.NoError(err)

	for _, tt := range []float64{0, 4.2, 31.4} {
		s := l.At(tt)
		u := l.IMU(tt)
		assert.Equal(6, u.Len())

		// rotating the specific force back to the reference frame and
		// adding gravity recovers the centripetal acceleration
		fb := []float64{u.AtVec(0), u.AtVec(1), u.AtVec(2)}
		fn := quat.Rotate(s.Quat, fb)

		a := l.Omega * tt
		want := []float64{
			-l.Radius * l.Omega * l.Omega * math.Cos(a),
			-l.Radius * l.Omega * l.Omega * math.Sin(a),
			0,
		}
		for i := 0; i < 3; i++ {
			assert.InDelta(want[i], fn[i]+l.Gravity[i], 1e-9)
		}

		// level turn: the gyro only sees the yaw rate
		assert.Equal(0.0, u.AtVec(3))
		assert.Equal(0.0, u.AtVec(4))
		assert.Equal(0.1, u.AtVec(5))
	}
}

func TestNewTrackPlot(t *testing.T) {
	assert := assert.New(t)

	data := mat.NewDense(10, 2, nil)

	p, err := NewTrackPlot(data, data, data)
	assert.NotNil(p)
	assert.NoError(err)

	p, err = NewTrackPlot(nil, data, data)
	assert.Nil(p)
	assert.Error(err)

	narrow := mat.NewDense(10, 1, nil)
	p, err = NewTrackPlot(data, narrow, data)
	assert.Nil(p)
	assert.Error(err)
}
