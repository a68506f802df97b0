//go:build rp2040

package pio

import (
	"machine"

	"strider/core"

	rp2pio "github.com/tinygo-org/pio/rp2-pio"
)

// buildPulseProgram creates the servo pulse program using AssemblerV0.
// Command word: bits 0-15 high count, bits 16-31 low count.
func buildPulseProgram() []uint16 {
	asm := rp2pio.AssemblerV0{SidesetBits: 0}
	return []uint16{
		// .wrap_target
		asm.Pull(false, false).Encode(),                     // 0: pull noblock (OSR = X when FIFO empty)
		asm.Mov(rp2pio.MovDestX, rp2pio.MovSrcOSR).Encode(), // 1: mov x, osr (repeat next period)
		asm.Out(rp2pio.OutDestY, 16).Encode(),               // 2: out y, 16 (high count)
		asm.Set(rp2pio.SetDestPins, 1).Encode(),             // 3: set pins, 1
		// high_loop:
		asm.Jmp(4, rp2pio.JmpYNZeroDec).Encode(), // 4: jmp y--, 4
		asm.Set(rp2pio.SetDestPins, 0).Encode(),  // 5: set pins, 0
		asm.Out(rp2pio.OutDestY, 16).Encode(),    // 6: out y, 16 (low count)
		// low_loop:
		asm.Jmp(7, rp2pio.JmpYNZeroDec).Encode(), // 7: jmp y--, 7
		// .wrap
	}
}

const pulseProgramOrigin = 0 // Load at offset 0 for correct jump addresses

// pioChannel is one servo output on a claimed state machine
type pioChannel struct {
	sm      rp2pio.StateMachine
	pin     machine.Pin
	pioNum  uint8
	smNum   uint8
	enabled bool
}

// PIOServoDriver implements core.PWMDriver with one state machine per pin.
// Duty values are pulse widths in microseconds.
type PIOServoDriver struct {
	periodUS uint32
	offsets  [2]int16 // Program offset per PIO block, -1 until loaded
	channels map[core.PWMPin]*pioChannel
}

// NewPIOServoDriver creates a driver. State machines are claimed when pins
// are configured.
func NewPIOServoDriver() *PIOServoDriver {
	return &PIOServoDriver{
		offsets:  [2]int16{-1, -1},
		channels: make(map[core.PWMPin]*pioChannel),
	}
}

func pioBlock(pioNum uint8) *rp2pio.PIO {
	if pioNum == 0 {
		return rp2pio.PIO0
	}
	return rp2pio.PIO1
}

// ConfigureHardwarePWM claims a state machine and starts it with no pulse
func (d *PIOServoDriver) ConfigureHardwarePWM(pin core.PWMPin, cycleTicks uint32) (uint32, error) {
	periodUS := core.TimerToUS(cycleTicks)
	if _, err := pulseWord(0, periodUS); err != nil {
		return 0, err
	}
	if d.periodUS != 0 && d.periodUS != periodUS {
		return 0, core.ErrPWMNotConfigured
	}
	d.periodUS = periodUS

	if ch, exists := d.channels[pin]; exists {
		ch.sm.SetEnabled(false)
		releasePIO(ch.pioNum, ch.smNum)
		delete(d.channels, pin)
	}

	pioNum, smNum, ok := allocatePIO()
	if !ok {
		return 0, ErrNoStateMachine
	}
	block := pioBlock(pioNum)
	sm := block.StateMachine(smNum)

	// CRITICAL: Claim the state machine first!
	sm.TryClaim()

	// One program per block, shared by its state machines
	if d.offsets[pioNum] < 0 {
		offset, err := block.AddProgram(buildPulseProgram(), pulseProgramOrigin)
		if err != nil {
			releasePIO(pioNum, smNum)
			return 0, err
		}
		d.offsets[pioNum] = int16(offset)
	}
	offset := uint8(d.offsets[pioNum])

	p := machine.Pin(pin)
	p.Configure(machine.PinConfig{Mode: block.PinMode()})

	cfg := rp2pio.DefaultStateMachineConfig()
	cfg.SetSetPins(p, 1)
	// Shift right, no autopull: the program pulls once per period
	cfg.SetOutShift(true, false, 32)
	cfg.SetWrap(offset+uint8(len(buildPulseProgram()))-1, offset)
	// 125MHz / 125 = one cycle per microsecond
	cfg.SetClkDivIntFrac(125, 0)

	// Initialize state machine FIRST
	sm.Init(offset, cfg)

	// THEN set pin directions (must be after Init!)
	sm.SetPindirsConsecutive(p, 1, true)
	sm.SetPinsConsecutive(p, 1, false)

	d.channels[pin] = &pioChannel{sm: sm, pin: p, pioNum: pioNum, smNum: smNum}
	return cycleTicks, nil
}

// SetDutyCycle queues a pulse of value microseconds. Zero stops the pulse
// train and holds the pin low.
func (d *PIOServoDriver) SetDutyCycle(pin core.PWMPin, value core.PWMValue) error {
	ch, exists := d.channels[pin]
	if !exists {
		return core.ErrPWMNotConfigured
	}

	if value == 0 {
		if ch.enabled {
			ch.sm.SetEnabled(false)
			ch.sm.ClearFIFOs()
			ch.sm.Restart()
			ch.sm.SetPinsConsecutive(ch.pin, 1, false)
			ch.enabled = false
		}
		return nil
	}

	word, err := pulseWord(uint32(value), d.periodUS)
	if err != nil {
		return core.ErrDutyOutOfRange
	}
	if ch.sm.IsTxFIFOFull() {
		// One word per period; a full FIFO means the machine has stalled
		return ErrFIFOFull
	}
	ch.sm.TxPut(word)

	if !ch.enabled {
		ch.sm.SetEnabled(true)
		ch.enabled = true
	}
	return nil
}

// GetMaxValue returns the period in microseconds
func (d *PIOServoDriver) GetMaxValue() uint32 {
	return d.periodUS
}

// DisablePWM stops the state machine and releases it
func (d *PIOServoDriver) DisablePWM(pin core.PWMPin) error {
	ch, exists := d.channels[pin]
	if !exists {
		return nil
	}
	ch.sm.SetEnabled(false)
	ch.sm.SetPinsConsecutive(ch.pin, 1, false)
	releasePIO(ch.pioNum, ch.smNum)
	delete(d.channels, pin)
	return nil
}
