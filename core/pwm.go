// PWM output channels
// A PWMChannel binds one pin of a PWMDriver and remembers the last value
// the hardware accepted, so shutdown can return it to a safe default.
package core

// PWMChannel represents a configured hardware PWM output
type PWMChannel struct {
	Name string // Human-readable name used in diagnostics
	Pin  PWMPin // Hardware pin

	driver PWMDriver

	CycleTicks   uint32   // PWM cycle time in ticks, as accepted by the driver
	Value        PWMValue // Last value accepted by the hardware
	DefaultValue PWMValue // Value applied at startup and shutdown
	Writes       uint32   // Accepted writes
	Failures     uint32   // Rejected writes
}

// Registry of configured channels, used by ShutdownAllPWM
var pwmChannels []*PWMChannel

// NewPWMChannel configures pin on driver and applies the default value.
func NewPWMChannel(driver PWMDriver, name string, pin PWMPin, cycleTicks uint32, defaultValue PWMValue) (*PWMChannel, error) {
	if driver == nil {
		return nil, ErrNoPWMDriver
	}

	actualCycleTicks, err := driver.ConfigureHardwarePWM(pin, cycleTicks)
	if err != nil {
		return nil, err
	}

	ch := &PWMChannel{
		Name:         name,
		Pin:          pin,
		driver:       driver,
		CycleTicks:   actualCycleTicks,
		DefaultValue: defaultValue,
	}

	if err := ch.Set(defaultValue); err != nil {
		return nil, err
	}

	pwmChannels = append(pwmChannels, ch)
	return ch, nil
}

// MaxValue returns the driver's full-scale duty value
func (ch *PWMChannel) MaxValue() uint32 {
	return ch.driver.GetMaxValue()
}

// Set writes a duty cycle value. The previous value stays in effect when the
// write is rejected.
func (ch *PWMChannel) Set(value PWMValue) error {
	if uint32(value) > ch.driver.GetMaxValue() {
		ch.Failures++
		return ErrDutyOutOfRange
	}
	if err := ch.driver.SetDutyCycle(ch.Pin, value); err != nil {
		ch.Failures++
		return err
	}
	ch.Value = value
	ch.Writes++
	return nil
}

// Shutdown returns the channel to its default value (called during shutdown)
func (ch *PWMChannel) Shutdown() {
	_ = ch.driver.SetDutyCycle(ch.Pin, ch.DefaultValue)
	ch.Value = ch.DefaultValue
}

// ShutdownAllPWM returns all PWM channels to their default values
func ShutdownAllPWM() {
	for _, ch := range pwmChannels {
		if ch != nil {
			ch.Shutdown()
		}
	}
}

// resetPWMChannels forgets all registered channels (for testing)
func resetPWMChannels() {
	pwmChannels = nil
}
