package control

import (
	"strider/core"
	"strider/leg/config"
)

// Calibration maps a joint angle onto a servo pulse
type Calibration struct {
	CenterUS float32 // Pulse at the joint zero
	UsPerRad float32
	Reversed bool
	MinUS    float32
	MaxUS    float32
}

// CalibrationFrom converts a joint configuration
func CalibrationFrom(j config.JointConfig) Calibration {
	return Calibration{
		CenterUS: j.CenterUS,
		UsPerRad: j.UsPerRad,
		Reversed: j.Reversed,
		MinUS:    j.MinUS,
		MaxUS:    j.MaxUS,
	}
}

// Pulse returns the pulse width in microseconds for angle
func (c Calibration) Pulse(angle float32) float32 {
	offset := c.UsPerRad * angle
	if c.Reversed {
		return c.CenterUS - offset
	}
	return c.CenterUS + offset
}

// Angle inverts Pulse
func (c Calibration) Angle(pulse float32) float32 {
	if c.UsPerRad == 0 {
		return 0
	}
	offset := pulse - c.CenterUS
	if c.Reversed {
		offset = -offset
	}
	return offset / c.UsPerRad
}

// Command returns the duty value for angle on a channel whose full scale
// maxValue spans periodUS. The pulse is returned even when it is rejected.
func (c Calibration) Command(angle float32, maxValue, periodUS uint32) (core.PWMValue, float32, error) {
	pulse := c.Pulse(angle)
	// Written so that NaN is rejected too
	if !(pulse >= c.MinUS && pulse <= c.MaxUS) {
		return 0, pulse, ErrPulseOutOfRange
	}
	if periodUS == 0 {
		return 0, pulse, core.ErrPWMNotConfigured
	}
	duty := pulse/float32(periodUS)*float32(maxValue) + 0.5
	return core.PWMValue(duty), pulse, nil
}
