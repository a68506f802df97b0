// Package pio generates servo pulses with RP2040 PIO state machines.
//
// Each state machine runs a fixed program that holds the pin high for a
// programmable number of cycles and then low for the rest of the period. The
// CPU pushes one command word per period; when no new word arrives the last
// one repeats, so the pulse train never stops on a late tick.
package pio

import "errors"

var ErrPulseTooLong = errors.New("pio: pulse longer than period")

// Cycle overheads of the pulse program, at one cycle per microsecond
const (
	highOverhead   = 2 // set + final loop iteration
	periodOverhead = 8 // instructions outside both delay loops
	maxCount       = 0xFFFF
)

// pulseWord encodes a pulse of pulseUS within periodUS. The high count sits
// in the low half because the OSR shifts right.
func pulseWord(pulseUS, periodUS uint32) (uint32, error) {
	if periodUS < periodOverhead+highOverhead || periodUS-periodOverhead > 2*maxCount {
		return 0, ErrPulseTooLong
	}
	if pulseUS > periodUS-(periodOverhead-highOverhead) {
		return 0, ErrPulseTooLong
	}

	high := uint32(0)
	if pulseUS > highOverhead {
		high = pulseUS - highOverhead
	}
	low := periodUS - periodOverhead - high
	if high > maxCount || low > maxCount {
		return 0, ErrPulseTooLong
	}
	return low<<16 | high, nil
}

// wordCycles returns the pulse and period lengths a word produces
func wordCycles(word uint32) (pulse, period uint32) {
	high := word & maxCount
	low := word >> 16
	return high + highOverhead, high + low + periodOverhead
}
