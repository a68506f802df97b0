// Status LED
// The LED shows a slow heartbeat while the firmware runs and repeats a blink
// code once a fault has been latched. It is driven from the timer schedule,
// so it keeps blinking while the main goroutine is stuck in a halt loop.
package core

import "sync/atomic"

// LED timing
var (
	HeartbeatTicks = TimerFromMS(500)
	BlinkTicks     = TimerFromMS(150)
	BlinkGapTicks  = TimerFromMS(1000)
)

// StatusLED drives one GPIO output
type StatusLED struct {
	driver GPIODriver
	pin    GPIOPin
	timer  Timer

	code uint32 // atomic, 0 = heartbeat
	step uint32
	on   bool
}

// NewStatusLED configures pin and starts the heartbeat
func NewStatusLED(driver GPIODriver, pin GPIOPin) (*StatusLED, error) {
	if err := driver.ConfigureOutput(pin); err != nil {
		return nil, err
	}
	s := &StatusLED{driver: driver, pin: pin}
	s.timer.WakeTime = GetTime() + HeartbeatTicks
	s.timer.Handler = s.fire
	ScheduleTimer(&s.timer)
	return s, nil
}

// SetCode switches to repeating code short blinks. Zero returns to the
// heartbeat.
func (s *StatusLED) SetCode(code uint8) {
	atomic.StoreUint32(&s.code, uint32(code))
}

// Code returns the current blink code
func (s *StatusLED) Code() uint8 {
	return uint8(atomic.LoadUint32(&s.code))
}

func (s *StatusLED) fire(t *Timer) uint8 {
	code := atomic.LoadUint32(&s.code)
	if code == 0 {
		s.step = 0
		s.set(!s.on)
		t.WakeTime = currentTime + HeartbeatTicks
		return SF_RESCHEDULE
	}

	if s.step < 2*code {
		s.set(s.step%2 == 0)
		s.step++
		t.WakeTime = currentTime + BlinkTicks
		return SF_RESCHEDULE
	}

	s.set(false)
	s.step = 0
	t.WakeTime = currentTime + BlinkGapTicks
	return SF_RESCHEDULE
}

func (s *StatusLED) set(on bool) {
	s.on = on
	_ = s.driver.SetPin(s.pin, on)
}
