package layout

import (
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"gonum.org/v1/gonum/mat"

	"github.com/korken89/msf/quat"
)

var entries = []Entry{
	{Key: "accel", Desc: Descriptor{MeasurementDim: 3}},
	{Key: "gps", Desc: Descriptor{MeasurementDim: 3, LinearStates: 3}},
	{Key: "attitude", Desc: Descriptor{MeasurementDim: 3, RotationStates: 1}},
}

func TestBuild(t *testing.T) {
	assert := assert.New(t)

	l, err := Build(entries)
	assert.NotNil(l)
	assert.NoError(err)

	// N = 16 + Σlinear + 4·Σrotation, E = 15 + Σlinear + 3·Σrotation
	assert.Equal(23, l.NominalDim())
	assert.Equal(21, l.ErrorDim())

	// sensors follow the core block in declaration order
	blk, err := l.Block("accel")
	assert.NoError(err)
	assert.Equal(CoreNominalDim, blk.Nominal)
	assert.Equal(CoreErrorDim, blk.Error)

	blk, err = l.Block("gps")
	assert.NoError(err)
	assert.Equal(16, blk.Nominal)
	assert.Equal(15, blk.Error)

	blk, err = l.Block("attitude")
	assert.NoError(err)
	assert.Equal(19, blk.Nominal)
	assert.Equal(18, blk.Error)
	assert.Equal(4, blk.Desc.NominalDim())
	assert.Equal(3, blk.Desc.ErrorDim())
}

func TestBuildOrderIndependentDims(t *testing.T) {
	assert := assert.New(t)

	reversed := []Entry{entries[2], entries[1], entries[0]}

	a, err := Build(entries)
	assert.NoError(err)
	b, err := Build(reversed)
	assert.NoError(err)

	assert.Equal(a.NominalDim(), b.NominalDim())
	assert.Equal(a.ErrorDim(), b.ErrorDim())
}

func TestBuildEmpty(t *testing.T) {
	assert := assert.New(t)

	l, err := Build(nil)
	assert.Nil(l)
	assert.True(errors.Is(err, ErrEmptySensorSet))
}

func TestBuildDuplicate(t *testing.T) {
	assert := assert.New(t)

	// the duplicate is rejected regardless of where it appears
	for _, dup := range [][]Entry{
		{entries[0], entries[0], entries[1]},
		{entries[0], entries[1], entries[0]},
		{entries[1], entries[0], entries[0]},
	} {
		l, err := Build(dup)
		assert.Nil(l)
		assert.True(errors.Is(err, ErrDuplicateSensor))
	}
}

func TestBuildInvalidDescriptor(t *testing.T) {
	assert := assert.New(t)

	l, err := Build([]Entry{{Key: "bad", Desc: Descriptor{MeasurementDim: 0}}})
	assert.Nil(l)
	assert.Error(err)

	l, err = Build([]Entry{{Key: "bad", Desc: Descriptor{MeasurementDim: 1, LinearStates: -1}}})
	assert.Nil(l)
	assert.Error(err)
}

func TestBlockInvalidKey(t *testing.T) {
	assert := assert.New(t)

	l, err := Build(entries)
	assert.NoError(err)

	_, err = l.Block("baro")
	assert.True(errors.Is(err, ErrInvalidSensorKey))
}

func TestInject(t *testing.T) {
	assert := assert.New(t)

	l, err := Build(entries)
	assert.NoError(err)

	x := mat.NewVecDense(l.NominalDim(), nil)
	x.SetVec(NominalAttitude, 1) // identity core attitude
	x.SetVec(19, 1)              // identity extrinsic attitude

	dx := mat.NewVecDense(l.ErrorDim(), nil)
	dx.SetVec(ErrorPosition, 1)
	dx.SetVec(ErrorBiasGyro+2, -0.5)
	dx.SetVec(ErrorAttitude, 0.2) // roll perturbation
	dx.SetVec(15, 3.0)            // gps offset x
	dx.SetVec(18+1, 0.1)          // extrinsic pitch perturbation

	assert.NoError(l.Inject(x, dx))

	assert.Equal(1.0, x.AtVec(NominalPosition))
	assert.Equal(-0.5, x.AtVec(NominalBiasGyro+2))
	assert.Equal(3.0, x.AtVec(16))

	// core attitude composed with Exp([0.2 0 0])
	want := quat.Exp([]float64{0.2, 0, 0})
	for i := 0; i < 4; i++ {
		assert.InDelta(want[i], x.AtVec(NominalAttitude+i), 1e-12)
	}

	// every quaternion stays unit norm
	q := []float64{x.AtVec(19), x.AtVec(20), x.AtVec(21), x.AtVec(22)}
	assert.InDelta(1.0, quat.Norm(q), 1e-12)
	assert.True(math.Abs(q[2]) > 0) // pitch perturbation took effect
}

func TestInjectDims(t *testing.T) {
	assert := assert.New(t)

	l, err := Build(entries)
	assert.NoError(err)

	x := mat.NewVecDense(l.NominalDim(), nil)
	assert.Error(l.Inject(x, mat.NewVecDense(3, nil)))

	dx := mat.NewVecDense(l.ErrorDim(), nil)
	assert.Error(l.Inject(mat.NewVecDense(4, nil), dx))
}
