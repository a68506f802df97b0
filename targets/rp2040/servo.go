//go:build rp2040

package main

import (
	"errors"
	"machine"

	"strider/core"

	"tinygo.org/x/drivers/servo"
)

// servo.New always configures a 20ms period
const servoPeriodUS = 20000

var errServoPeriod = errors.New("servo: backend requires a 20ms period")

// ServoDriver implements core.PWMDriver with tinygo's servo driver.
// Duty values are pulse widths in microseconds.
type ServoDriver struct {
	servos map[core.PWMPin]servo.Servo
}

// NewServoDriver creates a new servo backend
func NewServoDriver() *ServoDriver {
	return &ServoDriver{servos: make(map[core.PWMPin]servo.Servo)}
}

func (d *ServoDriver) ConfigureHardwarePWM(pin core.PWMPin, cycleTicks uint32) (uint32, error) {
	if core.TimerToUS(cycleTicks) != servoPeriodUS {
		return 0, errServoPeriod
	}
	s, err := servo.New(pwmSlice(sliceOf(uint32(pin))), machine.Pin(pin))
	if err != nil {
		return 0, err
	}
	d.servos[pin] = s
	return cycleTicks, nil
}

func (d *ServoDriver) SetDutyCycle(pin core.PWMPin, value core.PWMValue) error {
	s, exists := d.servos[pin]
	if !exists {
		return core.ErrPWMNotConfigured
	}
	if value > servoPeriodUS {
		return core.ErrDutyOutOfRange
	}
	s.SetMicroseconds(int16(value))
	return nil
}

func (d *ServoDriver) GetMaxValue() uint32 {
	return servoPeriodUS
}

func (d *ServoDriver) DisablePWM(pin core.PWMPin) error {
	if s, exists := d.servos[pin]; exists {
		s.SetMicroseconds(0)
		delete(d.servos, pin)
	}
	return nil
}
