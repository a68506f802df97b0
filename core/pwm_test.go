package core

import (
	"errors"
	"testing"
)

// MockPWMDriver is a test implementation of PWMDriver
type MockPWMDriver struct {
	maxValue  uint32
	values    map[PWMPin]PWMValue
	failPin   PWMPin
	failWith  error
	configErr error
}

func NewMockPWMDriver(maxValue uint32) *MockPWMDriver {
	return &MockPWMDriver{
		maxValue: maxValue,
		values:   make(map[PWMPin]PWMValue),
		failPin:  PWMPin(^uint32(0)),
	}
}

func (m *MockPWMDriver) ConfigureHardwarePWM(pin PWMPin, cycleTicks uint32) (uint32, error) {
	if m.configErr != nil {
		return 0, m.configErr
	}
	return cycleTicks, nil
}

func (m *MockPWMDriver) SetDutyCycle(pin PWMPin, value PWMValue) error {
	if pin == m.failPin {
		return m.failWith
	}
	if uint32(value) > m.maxValue {
		return ErrDutyOutOfRange
	}
	m.values[pin] = value
	return nil
}

func (m *MockPWMDriver) GetMaxValue() uint32 {
	return m.maxValue
}

func (m *MockPWMDriver) DisablePWM(pin PWMPin) error {
	delete(m.values, pin)
	return nil
}

func TestPWMChannelConfigure(t *testing.T) {
	defer resetPWMChannels()

	driver := NewMockPWMDriver(20000)
	ch, err := NewPWMChannel(driver, "hip", 0, TimerFromMS(20), 1500)
	if err != nil {
		t.Fatalf("NewPWMChannel failed: %v", err)
	}

	if ch.CycleTicks != 20000 {
		t.Errorf("Expected cycle of 20000 ticks, got %d", ch.CycleTicks)
	}
	if driver.values[0] != 1500 || ch.Value != 1500 {
		t.Errorf("Default value not applied: driver %d channel %d", driver.values[0], ch.Value)
	}
	if ch.MaxValue() != 20000 {
		t.Errorf("Expected max value 20000, got %d", ch.MaxValue())
	}
}

func TestPWMChannelConfigureErrors(t *testing.T) {
	defer resetPWMChannels()

	if _, err := NewPWMChannel(nil, "hip", 0, 20000, 0); !errors.Is(err, ErrNoPWMDriver) {
		t.Errorf("Expected ErrNoPWMDriver, got %v", err)
	}

	driver := NewMockPWMDriver(20000)
	driver.configErr = ErrPWMNotConfigured
	if _, err := NewPWMChannel(driver, "hip", 0, 20000, 0); !errors.Is(err, ErrPWMNotConfigured) {
		t.Errorf("Expected ErrPWMNotConfigured, got %v", err)
	}

	driver = NewMockPWMDriver(1000)
	if _, err := NewPWMChannel(driver, "hip", 0, 20000, 1500); !errors.Is(err, ErrDutyOutOfRange) {
		t.Errorf("Expected ErrDutyOutOfRange for default above max, got %v", err)
	}
	if len(pwmChannels) != 0 {
		t.Errorf("Failed channels must not be registered, have %d", len(pwmChannels))
	}
}

func TestPWMChannelSet(t *testing.T) {
	defer resetPWMChannels()

	driver := NewMockPWMDriver(20000)
	ch, _ := NewPWMChannel(driver, "knee", 1, 20000, 1500)

	if err := ch.Set(20000); err != nil {
		t.Errorf("Full scale write failed: %v", err)
	}
	if err := ch.Set(20001); !errors.Is(err, ErrDutyOutOfRange) {
		t.Errorf("Expected ErrDutyOutOfRange, got %v", err)
	}
	if ch.Value != 20000 {
		t.Errorf("Rejected write changed value to %d", ch.Value)
	}

	boom := errors.New("bus fault")
	driver.failPin = 1
	driver.failWith = boom
	if err := ch.Set(100); !errors.Is(err, boom) {
		t.Errorf("Expected driver error, got %v", err)
	}

	// Default write plus one accepted write
	if ch.Writes != 2 || ch.Failures != 2 {
		t.Errorf("Expected 2 writes and 2 failures, got %d and %d", ch.Writes, ch.Failures)
	}
}

func TestShutdownAllPWM(t *testing.T) {
	defer resetPWMChannels()
	defer resetShutdown()

	driver := NewMockPWMDriver(20000)
	hip, _ := NewPWMChannel(driver, "hip", 0, 20000, 1500)
	knee, _ := NewPWMChannel(driver, "knee", 1, 20000, 1400)
	hip.Set(1800)
	knee.Set(1100)

	TryShutdown("test")
	TryShutdown("second")

	if !IsShutdown() || ShutdownReason() != "test" {
		t.Errorf("Expected latched shutdown with first reason, got %v %q", IsShutdown(), ShutdownReason())
	}
	if driver.values[0] != 1500 || driver.values[1] != 1400 {
		t.Errorf("Channels not returned to default: %v", driver.values)
	}
}

func TestPWMDriverRegistry(t *testing.T) {
	defer SetPWMDriver(nil)

	SetPWMDriver(nil)
	defer func() {
		if recover() == nil {
			t.Error("MustPWM should panic without a driver")
		}
	}()

	driver := NewMockPWMDriver(100)
	SetPWMDriver(driver)
	if GetPWMDriver() != driver || MustPWM() != driver {
		t.Error("Registered driver not returned")
	}

	SetPWMDriver(nil)
	MustPWM()
}
