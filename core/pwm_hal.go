package core

import "errors"

// PWMPin identifies a hardware pin capable of PWM output
type PWMPin uint32

// PWMValue is the duty cycle value (0 to GetMaxValue())
type PWMValue uint32

var (
	ErrDutyOutOfRange   = errors.New("pwm: duty cycle out of range")
	ErrPWMNotConfigured = errors.New("pwm: pin not configured")
	ErrNoPWMDriver      = errors.New("pwm: driver not configured")
)

// PWMDriver is the abstract PWM interface that core code uses.
// Platform-specific implementations handle actual hardware control.
type PWMDriver interface {
	// ConfigureHardwarePWM configures a pin for hardware PWM output
	// cycleTicks: PWM period in timer ticks
	// Returns the actual cycle ticks used (may be adjusted for hardware constraints)
	ConfigureHardwarePWM(pin PWMPin, cycleTicks uint32) (uint32, error)

	// SetDutyCycle sets the PWM duty cycle for a pin
	// value: 0 (fully off) to GetMaxValue() (fully on)
	// Values above GetMaxValue() are rejected with ErrDutyOutOfRange.
	SetDutyCycle(pin PWMPin, value PWMValue) error

	// GetMaxValue returns the value corresponding to a 100% duty cycle
	GetMaxValue() uint32

	// DisablePWM disables PWM on a pin and returns it to GPIO mode
	DisablePWM(pin PWMPin) error
}

// Global singleton used by target code.
var pwmDriver PWMDriver

// SetPWMDriver is called by target-specific code to register its driver.
func SetPWMDriver(d PWMDriver) {
	pwmDriver = d
}

// GetPWMDriver returns the registered driver, or nil.
func GetPWMDriver() PWMDriver {
	return pwmDriver
}

// MustPWM returns the configured driver or panics if missing.
func MustPWM() PWMDriver {
	if pwmDriver == nil {
		panic("PWM driver not configured")
	}
	return pwmDriver
}
