// Package rpiopwm drives the leg's servos from the Raspberry Pi's hardware
// PWM block through go-rpio.
package rpiopwm

import (
	"errors"
	"fmt"

	"github.com/stianeikeland/go-rpio/v4"

	"strider/core"
)

// pwmClockHz gives one count per microsecond whatever the period
const pwmClockHz = 1000000

var ErrChannelInUse = errors.New("rpio: pwm channel already driven by another pin")

// channelOf maps the BCM pins with a hardware PWM function to their channel.
// 12/18 share channel 0 and 13/19 share channel 1.
var channelOf = map[core.PWMPin]int{
	12: 0,
	18: 0,
	13: 1,
	19: 1,
}

// Pin is the subset of rpio.Pin the driver uses
type Pin interface {
	Mode(mode rpio.Mode)
	Freq(freq int)
	DutyCycle(dutyLen, cycleLen uint32)
}

// Driver implements core.PWMDriver. The PWM clock runs at one count per
// microsecond, so values are pulse widths in microseconds and full scale is
// the period.
type Driver struct {
	pin      func(core.PWMPin) Pin
	periodUS uint32
	pins     map[core.PWMPin]Pin
	channels [2]core.PWMPin
}

// Open maps the GPIO registers and returns a driver on the real pins.
// Call Close when done.
func Open() (*Driver, error) {
	if err := rpio.Open(); err != nil {
		return nil, fmt.Errorf("rpio open: %w", err)
	}
	return New(func(p core.PWMPin) Pin { return rpio.Pin(p) }), nil
}

// New creates a driver that builds pins with newPin
func New(newPin func(core.PWMPin) Pin) *Driver {
	return &Driver{
		pin:  newPin,
		pins: make(map[core.PWMPin]Pin),
	}
}

// ConfigureHardwarePWM switches pin to its PWM function. The two channels
// share one clock, so all pins share one period.
func (d *Driver) ConfigureHardwarePWM(pin core.PWMPin, cycleTicks uint32) (uint32, error) {
	ch, ok := channelOf[pin]
	if !ok {
		return 0, fmt.Errorf("gpio%d has no hardware pwm: %w", pin, core.ErrPWMNotConfigured)
	}
	if owner := d.channels[ch]; owner != 0 && owner != pin {
		return 0, ErrChannelInUse
	}
	periodUS := core.TimerToUS(cycleTicks)
	if periodUS == 0 || (d.periodUS != 0 && d.periodUS != periodUS) {
		return 0, core.ErrPWMNotConfigured
	}

	p := d.pin(pin)
	p.Mode(rpio.Pwm)
	p.Freq(pwmClockHz)
	p.DutyCycle(0, periodUS)

	d.periodUS = periodUS
	d.pins[pin] = p
	d.channels[ch] = pin
	return cycleTicks, nil
}

// SetDutyCycle sets the pulse width in microseconds
func (d *Driver) SetDutyCycle(pin core.PWMPin, value core.PWMValue) error {
	p, ok := d.pins[pin]
	if !ok {
		return core.ErrPWMNotConfigured
	}
	if uint32(value) > d.periodUS {
		return core.ErrDutyOutOfRange
	}
	p.DutyCycle(uint32(value), d.periodUS)
	return nil
}

// GetMaxValue returns the period in microseconds
func (d *Driver) GetMaxValue() uint32 {
	return d.periodUS
}

// DisablePWM stops the pulse and returns the pin to a low output
func (d *Driver) DisablePWM(pin core.PWMPin) error {
	p, ok := d.pins[pin]
	if !ok {
		return nil
	}
	p.DutyCycle(0, d.periodUS)
	p.Mode(rpio.Output)
	delete(d.pins, pin)
	d.channels[channelOf[pin]] = 0
	return nil
}

// Close unmaps the GPIO registers
func (d *Driver) Close() error {
	return rpio.Close()
}
