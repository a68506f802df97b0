//go:build rp2040

package main

import (
	"machine"

	"strider/core"
)

// pwmPeripheral abstracts over TinyGo's unexported *pwmGroup type.
// It has the same method set as drivers/servo.PWM.
type pwmPeripheral interface {
	Configure(config machine.PWMConfig) error
	Channel(pin machine.Pin) (uint8, error)
	Top() uint32
	Set(channel uint8, value uint32)
}

// RP2040PWMDriver implements core.PWMDriver on the 8 hardware PWM slices.
// Duty values are raw counter compare values in [0, Top].
type RP2040PWMDriver struct {
	// Key: pin number, Value: PWM channel within its slice
	channels map[uint32]uint8

	// Key: slice number (0-7)
	peripherals map[uint8]pwmPeripheral
	periods     map[uint8]uint64 // Configured period in nanoseconds

	top uint32
}

// NewRP2040PWMDriver creates a new RP2040 PWM driver
func NewRP2040PWMDriver() *RP2040PWMDriver {
	return &RP2040PWMDriver{
		channels:    make(map[uint32]uint8),
		peripherals: make(map[uint8]pwmPeripheral),
		periods:     make(map[uint8]uint64),
	}
}

// GetMaxValue returns the counter top shared by all configured slices
func (d *RP2040PWMDriver) GetMaxValue() uint32 {
	return d.top
}

// sliceOf maps GPIO N to slice (N >> 1) & 7, channel A for even pins
func sliceOf(pin uint32) uint8 {
	return uint8((pin >> 1) & 0x7)
}

// ConfigureHardwarePWM configures a pin for hardware PWM output
func (d *RP2040PWMDriver) ConfigureHardwarePWM(pin core.PWMPin, cycleTicks uint32) (uint32, error) {
	pinNum := uint32(pin)
	sliceNum := sliceOf(pinNum)

	pwm, exists := d.peripherals[sliceNum]
	if !exists {
		pwm = pwmSlice(sliceNum)
		d.peripherals[sliceNum] = pwm
	}

	// Timer ticks are microseconds
	period := uint64(core.TimerToUS(cycleTicks)) * 1000

	// Both channels of a slice share one period, and all slices must
	// share one full-scale value
	if existing, exists := d.periods[sliceNum]; exists && existing != period {
		return 0, core.ErrPWMNotConfigured
	}

	err := pwm.Configure(machine.PWMConfig{
		Period: period,
	})
	if err != nil {
		return 0, err
	}

	channel, err := pwm.Channel(machine.Pin(pinNum))
	if err != nil {
		return 0, err
	}

	if d.top != 0 && pwm.Top() != d.top {
		return 0, core.ErrPWMNotConfigured
	}
	d.top = pwm.Top()
	d.periods[sliceNum] = period
	d.channels[pinNum] = channel

	return cycleTicks, nil
}

// SetDutyCycle sets the compare value for a pin
func (d *RP2040PWMDriver) SetDutyCycle(pin core.PWMPin, value core.PWMValue) error {
	pinNum := uint32(pin)

	channel, exists := d.channels[pinNum]
	if !exists {
		return core.ErrPWMNotConfigured
	}
	if uint32(value) > d.top {
		return core.ErrDutyOutOfRange
	}

	d.peripherals[sliceOf(pinNum)].Set(channel, uint32(value))
	return nil
}

// DisablePWM drives the pin low and forgets it.
// TinyGo has no call to return a pin from PWM to GPIO mode.
func (d *RP2040PWMDriver) DisablePWM(pin core.PWMPin) error {
	pinNum := uint32(pin)
	channel, exists := d.channels[pinNum]
	if !exists {
		return nil
	}
	d.peripherals[sliceOf(pinNum)].Set(channel, 0)
	delete(d.channels, pinNum)
	return nil
}

// pwmSlice returns the PWM peripheral for a slice number
func pwmSlice(sliceNum uint8) pwmPeripheral {
	switch sliceNum {
	case 0:
		return machine.PWM0
	case 1:
		return machine.PWM1
	case 2:
		return machine.PWM2
	case 3:
		return machine.PWM3
	case 4:
		return machine.PWM4
	case 5:
		return machine.PWM5
	case 6:
		return machine.PWM6
	default:
		return machine.PWM7
	}
}
