// Package eskf implements a modular error-state Extended Kalman Filter.
// The filter owns a nominal state vector assembled from a fixed core
// motion block (position, velocity, attitude quaternion, accelerometer and
// gyroscope biases) plus the states contributed by the configured sensors,
// and an error-state covariance over the corresponding minimal
// parameterization. The sensor set is fixed for the lifetime of a filter
// instance.
//
// The filter is not safe for concurrent use: Predict and Update are plain
// synchronous computations and the caller must serialize all calls into a
// single timeline. Measurements are consumed one at a time in call order;
// the filter does not buffer, reorder or delay out-of-order measurements.
package eskf

import (
	"fmt"

	"gonum.org/v1/gonum/mat"

	msf "github.com/korken89/msf"
	"github.com/korken89/msf/estimate"
	"github.com/korken89/msf/jacobian"
	"github.com/korken89/msf/layout"
	"github.com/korken89/msf/noise"
	"github.com/korken89/msf/quat"
	"github.com/korken89/msf/reject"
)

// DefaultGravity is the default gravity magnitude in m/s².
const DefaultGravity = 9.80665

// defaultMaxCond is the conditioning limit on the innovation covariance
// above which an update reports NumericalFailure.
const defaultMaxCond = 1e12

// SensorConfig binds one sensor to the filter.
type SensorConfig struct {
	// Key identifies the sensor; must be unique within a configuration
	Key string
	// Sensor is the sensor's measurement model and shape
	Sensor msf.Sensor
	// Rejector gates this sensor's measurements; nil accepts everything
	Rejector msf.OutlierRejector
	// Jacobian computes this sensor's measurement Jacobian; nil picks
	// analytic, autodiff or numeric in order of capability
	Jacobian msf.JacobianProvider
}

// Config is the construction-time filter configuration.
type Config struct {
	// Sensors is the ordered sensor set; its order fixes the state layout
	Sensors []SensorConfig
	// InitState is the initial nominal state; nil means zeros with
	// identity quaternions
	InitState mat.Vector
	// InitCov is the initial error covariance; nil means identity
	InitCov mat.Symmetric
	// ProcessNoise is the default process noise PSD used by Predict when
	// no per-call noise is supplied; nil means zero
	ProcessNoise msf.Noise
	// Gravity is the gravity vector in the reference frame; nil means
	// [0, 0, -DefaultGravity]
	Gravity []float64
	// MaxCond is the conditioning limit for innovation covariances;
	// zero means 1e12
	MaxCond float64
}

type binding struct {
	sensor msf.Sensor
	rej    msf.OutlierRejector
	jac    msf.JacobianProvider
	blk    layout.Block
}

// ESKF is a modular error-state Extended Kalman Filter.
type ESKF struct {
	// lay is the immutable state layout
	lay *layout.Layout
	// x is the nominal state vector
	x *mat.VecDense
	// p is the error-state covariance matrix
	p *mat.SymDense
	// sensors maps sensor keys to their bindings
	sensors map[string]*binding
	// g is the gravity vector
	g []float64
	// q is the default process noise
	q msf.Noise
	// maxCond is the innovation conditioning limit
	maxCond float64
	// inn is the innovation of the last applied update
	inn *mat.VecDense
	// gain is the Kalman gain of the last applied update
	gain *mat.Dense
}

// New creates a filter from cfg and returns it.
// It returns error if the sensor set is empty or contains duplicate keys,
// if a sensor is nil or has an invalid descriptor, or if the initial state
// or covariance does not match the computed layout.
func New(cfg *Config) (*ESKF, error) {
	if cfg == nil {
		return nil, fmt.Errorf("invalid config: %v", cfg)
	}

	entries := make([]layout.Entry, 0, len(cfg.Sensors))
	for _, sc := range cfg.Sensors {
		if sc.Sensor == nil {
			return nil, fmt.Errorf("invalid sensor %q: %v", sc.Key, sc.Sensor)
		}
		entries = append(entries, layout.Entry{Key: sc.Key, Desc: sc.Sensor.Descriptor()})
	}

	lay, err := layout.Build(entries)
	if err != nil {
		return nil, err
	}

	f := &ESKF{
		lay:     lay,
		x:       mat.NewVecDense(lay.NominalDim(), nil),
		p:       mat.NewSymDense(lay.ErrorDim(), nil),
		sensors: make(map[string]*binding, len(cfg.Sensors)),
		g:       []float64{0, 0, -DefaultGravity},
		maxCond: defaultMaxCond,
		inn:     &mat.VecDense{},
		gain:    &mat.Dense{},
	}

	for _, sc := range cfg.Sensors {
		blk, err := lay.Block(sc.Key)
		if err != nil {
			return nil, err
		}
		b := &binding{
			sensor: sc.Sensor,
			rej:    sc.Rejector,
			jac:    sc.Jacobian,
			blk:    blk,
		}
		if b.rej == nil {
			b.rej = reject.NewAcceptAll()
		}
		if b.jac == nil {
			b.jac = jacobian.For(sc.Sensor)
		}
		f.sensors[sc.Key] = b
	}

	if cfg.InitState != nil {
		if cfg.InitState.Len() != lay.NominalDim() {
			return nil, fmt.Errorf("invalid initial state length: %d", cfg.InitState.Len())
		}
		f.x.CopyVec(cfg.InitState)
	}
	// every quaternion sub-block must be a valid rotation
	f.normalizeQuats()

	if cfg.InitCov != nil {
		if cfg.InitCov.SymmetricDim() != lay.ErrorDim() {
			return nil, fmt.Errorf("invalid initial covariance dimension: %d", cfg.InitCov.SymmetricDim())
		}
		f.p.CopySym(cfg.InitCov)
	} else {
		for i := 0; i < lay.ErrorDim(); i++ {
			f.p.SetSym(i, i, 1)
		}
	}

	if cfg.Gravity != nil {
		if len(cfg.Gravity) != 3 {
			return nil, fmt.Errorf("invalid gravity vector: %v", cfg.Gravity)
		}
		copy(f.g, cfg.Gravity)
	}

	f.q = cfg.ProcessNoise
	if f.q == nil {
		f.q, _ = noise.NewZero(lay.ErrorDim())
	} else if c := f.q.Cov(); c.SymmetricDim() != lay.ErrorDim() {
		return nil, fmt.Errorf("invalid process noise dimension: %d", c.SymmetricDim())
	}

	if cfg.MaxCond > 0 {
		f.maxCond = cfg.MaxCond
	}

	return f, nil
}

// normalizeQuats renormalizes every quaternion sub-block of the nominal
// state: the core attitude and each sensor rotation state. A zero block
// becomes the identity quaternion.
func (f *ESKF) normalizeQuats() {
	raw := f.x.RawVector().Data
	quat.Normalize(raw[layout.NominalAttitude : layout.NominalAttitude+4])

	for _, blk := range f.lay.Blocks() {
		for r := 0; r < blk.Desc.RotationStates; r++ {
			off := blk.Nominal + blk.Desc.LinearStates + 4*r
			quat.Normalize(raw[off : off+4])
		}
	}
}

// Layout returns the filter's state layout.
func (f *ESKF) Layout() *layout.Layout {
	return f.lay
}

// State returns a copy of the nominal state vector.
func (f *ESKF) State() mat.Vector {
	x := mat.NewVecDense(f.x.Len(), nil)
	x.CopyVec(f.x)

	return x
}

// Cov returns a copy of the error-state covariance.
func (f *ESKF) Cov() mat.Symmetric {
	cov := mat.NewSymDense(f.p.SymmetricDim(), nil)
	cov.CopySym(f.p)

	return cov
}

// SetCov sets the error-state covariance to cov.
// It returns error if cov is nil or of mismatched dimension.
func (f *ESKF) SetCov(cov mat.Symmetric) error {
	if cov == nil {
		return fmt.Errorf("invalid covariance matrix: %v", cov)
	}
	if cov.SymmetricDim() != f.p.SymmetricDim() {
		return fmt.Errorf("invalid covariance matrix dims: [%d x %d]", cov.SymmetricDim(), cov.SymmetricDim())
	}

	f.p.CopySym(cov)

	return nil
}

// Estimate returns a snapshot of the nominal state and error covariance.
func (f *ESKF) Estimate() (*estimate.Base, error) {
	return estimate.New(f.x, f.p)
}

// SensorState returns a copy of the sensor's nominal sub-state.
// It returns layout.ErrInvalidSensorKey for an unknown key.
func (f *ESKF) SensorState(key string) (mat.Vector, error) {
	blk, err := f.lay.Block(key)
	if err != nil {
		return nil, err
	}

	n := blk.Desc.NominalDim()
	sub := mat.NewVecDense(n, nil)
	for i := 0; i < n; i++ {
		sub.SetVec(i, f.x.AtVec(blk.Nominal+i))
	}

	return sub, nil
}

// SetSensorState overwrites the sensor's nominal sub-state, renormalizing
// any rotation quaternions it contains. Used to (re-)initialize a sensor's
// sub-state, e.g. after a reinitialization recommendation from a
// consecutive-reject guard.
// It returns layout.ErrInvalidSensorKey for an unknown key.
func (f *ESKF) SetSensorState(key string, sub mat.Vector) error {
	blk, err := f.lay.Block(key)
	if err != nil {
		return err
	}

	n := blk.Desc.NominalDim()
	if sub.Len() != n {
		return fmt.Errorf("invalid sensor state length: %d, want %d", sub.Len(), n)
	}

	for i := 0; i < n; i++ {
		f.x.SetVec(blk.Nominal+i, sub.AtVec(i))
	}

	raw := f.x.RawVector().Data
	for r := 0; r < blk.Desc.RotationStates; r++ {
		off := blk.Nominal + blk.Desc.LinearStates + 4*r
		quat.Normalize(raw[off : off+4])
	}

	return nil
}

// Gain returns the Kalman gain of the last applied update.
func (f *ESKF) Gain() mat.Matrix {
	gain := &mat.Dense{}
	if !f.gain.IsEmpty() {
		gain.CloneFrom(f.gain)
	}

	return gain
}

// Innovation returns the innovation of the last applied update.
func (f *ESKF) Innovation() mat.Vector {
	inn := &mat.VecDense{}
	if f.inn.Len() > 0 {
		inn.CloneFromVec(f.inn)
	}

	return inn
}
