//go:build rp2040

package main

import (
	"runtime/volatile"
	"time"
	"unsafe"

	"strider/core"
)

// RP2040 Timer peripheral memory map
const (
	timerBase     = 0x40054000
	timerTIMERAWL = timerBase + 0x0C // Raw timer low word
)

var timerRAWL = (*volatile.Register32)(unsafe.Pointer(uintptr(timerTIMERAWL)))

// UpdateSystemTime copies the low timer word into the core clock
func UpdateSystemTime() {
	core.SetTime(timerRAWL.Get())
}

// timerLoop drives the timer list. The control ticker fires from here.
func timerLoop() {
	for {
		UpdateSystemTime()
		core.ProcessTimers()
		time.Sleep(10 * time.Microsecond)
	}
}
