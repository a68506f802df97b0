// Package periphpwm drives the leg's servos from a Linux single-board
// computer through periph.io GPIO pins.
package periphpwm

import (
	"fmt"
	"strconv"

	"periph.io/x/periph/conn/gpio"
	"periph.io/x/periph/conn/gpio/gpioreg"
	"periph.io/x/periph/conn/physic"
	"periph.io/x/periph/host"

	"strider/core"
)

// Lookup resolves a pin name such as "GPIO18"
type Lookup func(name string) gpio.PinIO

// Driver implements core.PWMDriver on periph pins. Values are pulse widths
// in microseconds and full scale is the period.
type Driver struct {
	lookup   Lookup
	periodUS uint32
	freq     physic.Frequency
	pins     map[core.PWMPin]gpio.PinIO
}

// Open initializes the host drivers and returns a driver using the global
// pin registry
func Open() (*Driver, error) {
	if _, err := host.Init(); err != nil {
		return nil, fmt.Errorf("periph host init: %w", err)
	}
	return New(gpioreg.ByName), nil
}

// New creates a driver resolving pins with lookup
func New(lookup Lookup) *Driver {
	return &Driver{
		lookup: lookup,
		pins:   make(map[core.PWMPin]gpio.PinIO),
	}
}

// PinName returns the registry name of a BCM pin number
func PinName(pin core.PWMPin) string {
	return "GPIO" + strconv.FormatUint(uint64(pin), 10)
}

// ConfigureHardwarePWM resolves pin and drives it low. All pins share one
// period.
func (d *Driver) ConfigureHardwarePWM(pin core.PWMPin, cycleTicks uint32) (uint32, error) {
	periodUS := core.TimerToUS(cycleTicks)
	if periodUS == 0 || (d.periodUS != 0 && d.periodUS != periodUS) {
		return 0, core.ErrPWMNotConfigured
	}

	p := d.lookup(PinName(pin))
	if p == nil {
		return 0, fmt.Errorf("%s: %w", PinName(pin), core.ErrPWMNotConfigured)
	}
	if err := p.Out(gpio.Low); err != nil {
		return 0, fmt.Errorf("%s: %w", PinName(pin), err)
	}

	d.periodUS = periodUS
	d.freq = physic.Hertz * 1000000 / physic.Frequency(periodUS)
	d.pins[pin] = p
	return cycleTicks, nil
}

// SetDutyCycle outputs a pulse of value microseconds every period. Zero
// holds the pin low.
func (d *Driver) SetDutyCycle(pin core.PWMPin, value core.PWMValue) error {
	p, ok := d.pins[pin]
	if !ok {
		return core.ErrPWMNotConfigured
	}
	if uint32(value) > d.periodUS {
		return core.ErrDutyOutOfRange
	}
	if value == 0 {
		return p.Out(gpio.Low)
	}
	duty := gpio.Duty(uint64(value) * uint64(gpio.DutyMax) / uint64(d.periodUS))
	return p.PWM(duty, d.freq)
}

// GetMaxValue returns the period in microseconds
func (d *Driver) GetMaxValue() uint32 {
	return d.periodUS
}

// DisablePWM drives the pin low and forgets it
func (d *Driver) DisablePWM(pin core.PWMPin) error {
	p, ok := d.pins[pin]
	if !ok {
		return nil
	}
	delete(d.pins, pin)
	return p.Out(gpio.Low)
}

// Close drives every configured pin low and halts it. The first error is
// returned after all pins have been released.
func (d *Driver) Close() error {
	var first error
	for pin, p := range d.pins {
		err := p.Out(gpio.Low)
		if herr := p.Halt(); err == nil {
			err = herr
		}
		if err != nil && first == nil {
			first = fmt.Errorf("%s: %w", PinName(pin), err)
		}
		delete(d.pins, pin)
	}
	return first
}
