// Package sim runs the leg loop on the host against a recording PWM driver,
// then reconstructs where the foot actually went from the recorded pulses.
package sim

import (
	"sync"

	"strider/core"
	"strider/leg/control"
)

// Sample is one accepted write. Tick is -1 for writes made before the first
// tick, such as the channel defaults set at startup.
type Sample struct {
	Tick  int
	Pin   core.PWMPin
	Value core.PWMValue
}

// Pair is the hip and knee pulse accepted during one tick
type Pair struct {
	Tick uint32
	Hip  core.PWMValue
	Knee core.PWMValue
}

// Driver implements core.PWMDriver in memory. Like the servo targets, values
// are pulse widths in microseconds and full scale is the period.
type Driver struct {
	mu       sync.Mutex
	periodUS uint32
	pins     map[core.PWMPin]core.PWMValue
	fail     map[core.PWMPin]error
	samples  []Sample
	rejected int
	tick     int
}

// NewDriver creates a driver with no pins configured
func NewDriver() *Driver {
	return &Driver{
		pins: make(map[core.PWMPin]core.PWMValue),
		fail: make(map[core.PWMPin]error),
		tick: -1,
	}
}

// Frame wraps next so every Wait starts a new tick in the recording. A nil
// next never waits.
func (d *Driver) Frame(next control.Ticker) control.Ticker {
	return &frameTicker{next: next, driver: d}
}

type frameTicker struct {
	next   control.Ticker
	driver *Driver
}

func (f *frameTicker) Wait() {
	if f.next != nil {
		f.next.Wait()
	}
	f.driver.mu.Lock()
	f.driver.tick++
	f.driver.mu.Unlock()
}

// ConfigureHardwarePWM configures pin. All pins share one period.
func (d *Driver) ConfigureHardwarePWM(pin core.PWMPin, cycleTicks uint32) (uint32, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	periodUS := core.TimerToUS(cycleTicks)
	if periodUS == 0 || (d.periodUS != 0 && d.periodUS != periodUS) {
		return 0, core.ErrPWMNotConfigured
	}
	d.periodUS = periodUS
	d.pins[pin] = 0
	return cycleTicks, nil
}

// SetDutyCycle records value for pin
func (d *Driver) SetDutyCycle(pin core.PWMPin, value core.PWMValue) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if _, ok := d.pins[pin]; !ok {
		d.rejected++
		return core.ErrPWMNotConfigured
	}
	if err := d.fail[pin]; err != nil {
		d.rejected++
		return err
	}
	if uint32(value) > d.periodUS {
		d.rejected++
		return core.ErrDutyOutOfRange
	}
	d.pins[pin] = value
	d.samples = append(d.samples, Sample{Tick: d.tick, Pin: pin, Value: value})
	return nil
}

// GetMaxValue returns the period in microseconds
func (d *Driver) GetMaxValue() uint32 {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.periodUS
}

// DisablePWM forgets pin
func (d *Driver) DisablePWM(pin core.PWMPin) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	delete(d.pins, pin)
	return nil
}

// Fail makes every later write to pin return err. A nil err clears it.
func (d *Driver) Fail(pin core.PWMPin, err error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if err == nil {
		delete(d.fail, pin)
		return
	}
	d.fail[pin] = err
}

// Value returns the last accepted value for pin
func (d *Driver) Value(pin core.PWMPin) (core.PWMValue, bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	v, ok := d.pins[pin]
	return v, ok
}

// Samples returns the accepted writes for pin made during ticks, in order
func (d *Driver) Samples(pin core.PWMPin) []core.PWMValue {
	d.mu.Lock()
	defer d.mu.Unlock()
	var out []core.PWMValue
	for _, s := range d.samples {
		if s.Pin == pin && s.Tick >= 0 {
			out = append(out, s.Value)
		}
	}
	return out
}

// Pairs returns one pair per tick in which both hip and knee had a write
// accepted. Ticks where either channel was rejected are left out.
func (d *Driver) Pairs(hip, knee core.PWMPin) []Pair {
	d.mu.Lock()
	defer d.mu.Unlock()

	var out []Pair
	var cur Pair
	tick := -1
	hipOK, kneeOK := false, false
	flush := func() {
		if tick >= 0 && hipOK && kneeOK {
			out = append(out, cur)
		}
	}
	for _, s := range d.samples {
		if s.Tick < 0 || (s.Pin != hip && s.Pin != knee) {
			continue
		}
		if s.Tick != tick {
			flush()
			tick = s.Tick
			cur = Pair{Tick: uint32(tick)}
			hipOK, kneeOK = false, false
		}
		if s.Pin == hip {
			cur.Hip = s.Value
			hipOK = true
		} else {
			cur.Knee = s.Value
			kneeOK = true
		}
	}
	flush()
	return out
}

// Rejected returns how many writes were refused
func (d *Driver) Rejected() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.rejected
}
