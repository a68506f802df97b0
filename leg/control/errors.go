package control

import (
	"errors"
	"strconv"
)

var (
	ErrPulseOutOfRange = errors.New("control: pulse outside joint window")
	ErrMissing         = errors.New("control: not provided")
)

// Joint identifies one actuated joint of the leg
type Joint uint8

const (
	Hip Joint = iota
	Knee
)

func (j Joint) String() string {
	switch j {
	case Hip:
		return "hip"
	case Knee:
		return "knee"
	default:
		return "joint" + strconv.Itoa(int(j))
	}
}

// ActuationError reports a rejected write on one channel. The loop logs it
// and carries on with the next channel and the next tick.
type ActuationError struct {
	Joint Joint
	Pulse float32 // Requested pulse width in microseconds
	Err   error
}

func (e *ActuationError) Error() string {
	return e.Joint.String() + " pulse " + strconv.FormatFloat(float64(e.Pulse), 'f', 1, 32) + "us: " + e.Err.Error()
}

func (e *ActuationError) Unwrap() error {
	return e.Err
}

// InfrastructureError reports a capability the loop cannot run without.
// It is only returned from New; the firmware treats it as fatal.
type InfrastructureError struct {
	Component string
	Err       error
}

func (e *InfrastructureError) Error() string {
	return "control: " + e.Component + ": " + e.Err.Error()
}

func (e *InfrastructureError) Unwrap() error {
	return e.Err
}
