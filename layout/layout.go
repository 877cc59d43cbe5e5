// Package layout computes the global state vector layout of a modular
// sensor fusion filter. The nominal state holds the core motion block
// (position, velocity, attitude quaternion, accelerometer bias, gyroscope
// bias) followed by each sensor's extra states in declaration order; the
// error state mirrors it with every quaternion replaced by a 3-parameter
// local perturbation. A Layout is built once per configuration and is
// immutable afterwards.
package layout

import (
	"errors"
	"fmt"
	"sort"
)

// Core block dimensions and offsets. The nominal core holds
// position(3), velocity(3), attitude quaternion(4), accel bias(3) and
// gyro bias(3); the error core replaces the quaternion by a 3-parameter
// attitude perturbation.
const (
	CoreNominalDim = 16
	CoreErrorDim   = 15

	NominalPosition = 0
	NominalVelocity = 3
	NominalAttitude = 6
	NominalBiasAcc  = 10
	NominalBiasGyro = 13

	ErrorPosition = 0
	ErrorVelocity = 3
	ErrorAttitude = 6
	ErrorBiasAcc  = 9
	ErrorBiasGyro = 12
)

var (
	// ErrEmptySensorSet is returned when a layout is built from no sensors
	ErrEmptySensorSet = errors.New("layout: empty sensor set")
	// ErrDuplicateSensor is returned when a sensor key repeats
	ErrDuplicateSensor = errors.New("layout: duplicate sensor")
	// ErrInvalidSensorKey is returned when addressing a sensor outside
	// the configured set
	ErrInvalidSensorKey = errors.New("layout: invalid sensor key")
)

// Descriptor is the static shape of a sensor type.
type Descriptor struct {
	// MeasurementDim is the dimension of the sensor's measurement vector
	MeasurementDim int
	// LinearStates is the number of extra linear states the sensor
	// contributes to the filter state
	LinearStates int
	// RotationStates is the number of extra unit-quaternion blocks the
	// sensor contributes
	RotationStates int
}

// Validate checks the descriptor dimensions.
func (d Descriptor) Validate() error {
	if d.MeasurementDim <= 0 {
		return fmt.Errorf("invalid measurement dimension: %d", d.MeasurementDim)
	}
	if d.LinearStates < 0 || d.RotationStates < 0 {
		return fmt.Errorf("invalid state counts: linear %d, rotation %d", d.LinearStates, d.RotationStates)
	}
	return nil
}

// NominalDim returns the width of the sensor's nominal sub-block.
func (d Descriptor) NominalDim() int {
	return d.LinearStates + 4*d.RotationStates
}

// ErrorDim returns the width of the sensor's error sub-block.
func (d Descriptor) ErrorDim() int {
	return d.LinearStates + 3*d.RotationStates
}

// Entry is one (key, descriptor) pair of a filter configuration.
type Entry struct {
	Key  string
	Desc Descriptor
}

// Block locates a sensor's sub-state within the global vectors. Within a
// block linear states come first, followed by the rotation quaternions
// (3-parameter perturbations in the error state).
type Block struct {
	// Key is the sensor key
	Key string
	// Desc is the sensor descriptor
	Desc Descriptor
	// Nominal is the offset of the block in the nominal state vector
	Nominal int
	// Error is the offset of the block in the error state vector
	Error int
}

// Layout is the immutable global state layout of one filter configuration.
type Layout struct {
	n      int
	e      int
	blocks []Block
	index  map[string]int
}

// Build validates the ordered sensor set and computes the global layout.
// It returns ErrEmptySensorSet for an empty set and ErrDuplicateSensor if
// any key repeats, regardless of where the duplicate appears.
func Build(entries []Entry) (*Layout, error) {
	if len(entries) == 0 {
		return nil, ErrEmptySensorSet
	}

	// duplicate detection: sort a copy of the keys, scan adjacent pairs
	keys := make([]string, len(entries))
	for i, en := range entries {
		keys[i] = en.Key
	}
	sort.Strings(keys)
	for i := 1; i < len(keys); i++ {
		if keys[i] == keys[i-1] {
			return nil, fmt.Errorf("%w: %q", ErrDuplicateSensor, keys[i])
		}
	}

	l := &Layout{
		n:      CoreNominalDim,
		e:      CoreErrorDim,
		blocks: make([]Block, 0, len(entries)),
		index:  make(map[string]int, len(entries)),
	}

	for _, en := range entries {
		if err := en.Desc.Validate(); err != nil {
			return nil, fmt.Errorf("layout: sensor %q: %w", en.Key, err)
		}
		l.index[en.Key] = len(l.blocks)
		l.blocks = append(l.blocks, Block{
			Key:     en.Key,
			Desc:    en.Desc,
			Nominal: l.n,
			Error:   l.e,
		})
		l.n += en.Desc.NominalDim()
		l.e += en.Desc.ErrorDim()
	}

	return l, nil
}

// NominalDim returns the total nominal state dimension N.
func (l *Layout) NominalDim() int { return l.n }

// ErrorDim returns the total error state dimension E.
func (l *Layout) ErrorDim() int { return l.e }

// Block returns the block of the sensor identified by key.
// It returns ErrInvalidSensorKey for a key outside the configured set.
func (l *Layout) Block(key string) (Block, error) {
	i, ok := l.index[key]
	if !ok {
		return Block{}, fmt.Errorf("%w: %q", ErrInvalidSensorKey, key)
	}
	return l.blocks[i], nil
}

// Blocks returns the sensor blocks in declaration order.
func (l *Layout) Blocks() []Block {
	blocks := make([]Block, len(l.blocks))
	copy(blocks, l.blocks)

	return blocks
}
