package sensor

import (
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"gonum.org/v1/gonum/mat"

	"github.com/korken89/msf/layout"
	"github.com/korken89/msf/quat"
)

var (
	lay *layout.Layout
	r3  *mat.SymDense
)

func setup() {
	r3 = mat.NewSymDense(3, nil)
	for i := 0; i < 3; i++ {
		r3.SetSym(i, i, 0.01)
	}

	lay, _ = layout.Build([]layout.Entry{
		{Key: "gps", Desc: layout.Descriptor{MeasurementDim: 3, LinearStates: 3}},
		{Key: "attitude", Desc: layout.Descriptor{MeasurementDim: 3, RotationStates: 1}},
	})
}

func TestMain(m *testing.M) {
	setup()
	os.Exit(m.Run())
}

func newState() *mat.VecDense {
	x := mat.NewVecDense(lay.NominalDim(), nil)
	x.SetVec(layout.NominalAttitude, 1)
	x.SetVec(19, 1)
	return x
}

func TestPosition(t *testing.T) {
	assert := assert.New(t)

	s, err := NewPosition(r3)
	assert.NotNil(s)
	assert.NoError(err)
	assert.Equal(layout.Descriptor{MeasurementDim: 3, LinearStates: 3}, s.Descriptor())
	assert.Equal(3, s.Cov().SymmetricDim())

	blk, err := lay.Block("gps")
	assert.NoError(err)

	x := newState()
	x.SetVec(layout.NominalPosition, 10)
	x.SetVec(layout.NominalPosition+2, -3)
	x.SetVec(blk.Nominal, 0.5) // offset x

	h, err := s.Observe(x, blk)
	assert.NoError(err)
	assert.InDelta(10.5, h.AtVec(0), 1e-12)
	assert.InDelta(0.0, h.AtVec(1), 1e-12)
	assert.InDelta(-3.0, h.AtVec(2), 1e-12)

	s, err = NewPosition(nil)
	assert.Nil(s)
	assert.Error(err)
}

func TestAccelerometer(t *testing.T) {
	assert := assert.New(t)

	s, err := NewAccelerometer(nil, r3)
	assert.NotNil(s)
	assert.NoError(err)
	assert.Equal(layout.Descriptor{MeasurementDim: 3}, s.Descriptor())

	blk := layout.Block{}

	// level attitude: the sensor reads the gravity reaction straight up
	x := newState()
	h, err := s.Observe(x, blk)
	assert.NoError(err)
	assert.InDelta(0.0, h.AtVec(0), 1e-12)
	assert.InDelta(0.0, h.AtVec(1), 1e-12)
	assert.InDelta(9.80665, h.AtVec(2), 1e-12)

	// 90 degree roll moves the reaction onto the body y axis
	q := quat.Exp([]float64{3.14159265358979 / 2, 0, 0})
	for i := 0; i < 4; i++ {
		x.SetVec(layout.NominalAttitude+i, q[i])
	}
	h, err = s.Observe(x, blk)
	assert.NoError(err)
	assert.InDelta(0.0, h.AtVec(0), 1e-9)
	assert.InDelta(-9.80665, h.AtVec(1), 1e-9)
	assert.InDelta(0.0, h.AtVec(2), 1e-9)

	// bias is additive
	x.SetVec(layout.NominalBiasAcc, 0.25)
	h, err = s.Observe(x, blk)
	assert.NoError(err)
	assert.InDelta(0.25, h.AtVec(0), 1e-9)

	s, err = NewAccelerometer([]float64{0, 0}, r3)
	assert.Nil(s)
	assert.Error(err)
}

func TestAttitude(t *testing.T) {
	assert := assert.New(t)

	s, err := NewAttitude(r3)
	assert.NotNil(s)
	assert.NoError(err)
	assert.Equal(layout.Descriptor{MeasurementDim: 3, RotationStates: 1}, s.Descriptor())

	blk, err := lay.Block("attitude")
	assert.NoError(err)

	// identity extrinsic: the measurement is the body rotation vector
	x := newState()
	rv := []float64{0.2, -0.1, 0.4}
	q := quat.Exp(rv)
	for i := 0; i < 4; i++ {
		x.SetVec(layout.NominalAttitude+i, q[i])
	}

	h, err := s.Observe(x, blk)
	assert.NoError(err)
	for i := 0; i < 3; i++ {
		assert.InDelta(rv[i], h.AtVec(i), 1e-9)
	}

	// a non-identity extrinsic rotates the prediction
	ext := quat.Exp([]float64{0, 0, 0.3})
	for i := 0; i < 4; i++ {
		x.SetVec(blk.Nominal+i, ext[i])
	}
	h, err = s.Observe(x, blk)
	assert.NoError(err)

	want := quat.Log(quat.Mul(q, ext))
	for i := 0; i < 3; i++ {
		assert.InDelta(want[i], h.AtVec(i), 1e-12)
	}
}
