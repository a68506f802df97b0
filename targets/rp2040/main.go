//go:build rp2040

package main

import (
	"machine"
	"strconv"
	"sync/atomic"
	"time"

	"strider/core"
	"strider/leg/config"
	"strider/leg/control"
	"strider/protocol"
	"strider/targets/pio"
)

// USB back-off: after linkThreshold failed writes only every linkRetry-th
// frame is attempted
const (
	linkThreshold = 8
	linkRetry     = 32
)

// Link state, read by halt
var (
	link         *core.LinkSender
	sendFailures *uint32
)

// Blink codes for halt()
const (
	blinkUSB      = 2
	blinkStartup  = 3
	blinkShutdown = 4
)

func main() {
	// CRITICAL: Disable watchdog on boot to clear any previous state
	err := machine.Watchdog.Configure(machine.WatchdogConfig{TimeoutMillis: 0})
	if err != nil {
		return
	}

	UpdateSystemTime()
	led, err := core.NewStatusLED(NewRPGPIODriver(), core.GPIOPin(machine.LED))
	if err != nil {
		return
	}
	go timerLoop()

	if err := InitUSB(); err != nil {
		halt(led, blinkUSB, "usb: "+err.Error(), nil)
	}

	cfg := config.DefaultConfig()

	link = core.NewLinkSender(usbSend, linkThreshold, linkRetry)
	var writer core.DiagWriter
	writer, sendFailures = core.FrameWriter(link.Send)
	diag := core.NewDiagQueue(cfg.DiagQueue, writer)
	diag.Start()

	driver := newBackend(cfg.Backend)
	core.SetPWMDriver(driver)

	ticker := core.NewTimerTicker(core.TimerFromMS(cfg.TickPeriodMS))

	loop, err := control.New(cfg, driver, ticker, diag)
	if err != nil {
		halt(led, blinkStartup, err.Error(), diag)
	}

	diag.Emit(protocol.LevelInfo, 0, "strider "+protocol.Version+" backend="+cfg.Backend+" ready")

	func() {
		defer func() {
			if r := recover(); r != nil {
				core.TryShutdown("panic in control loop")
			}
		}()
		loop.Run()
	}()

	s := loop.Stats()
	halt(led, blinkShutdown, "shutdown: "+core.ShutdownReason()+
		" after "+strconv.FormatUint(uint64(s.Ticks), 10)+" ticks, "+strconv.FormatUint(uint64(s.Failures), 10)+" failed writes", diag)
}

// newBackend selects the PWM driver for the configured backend
func newBackend(backend string) core.PWMDriver {
	switch backend {
	case config.BackendServo:
		return NewServoDriver()
	case config.BackendPIO:
		return pio.NewPIOServoDriver()
	default:
		return NewRP2040PWMDriver()
	}
}

// halt stops all outputs and never returns. The LED blinks the code and
// the reason is repeated every few seconds so a late host still sees it.
func halt(led *core.StatusLED, code uint8, reason string, diag *core.DiagQueue) {
	core.TryShutdown(reason)
	led.SetCode(code)

	for {
		if diag != nil {
			diag.Emit(protocol.LevelError, core.GetTime(), "halted: "+reason+linkSummary(diag))
		}
		time.Sleep(3 * time.Second)
	}
}

// linkSummary reports how many records never reached the host
func linkSummary(diag *core.DiagQueue) string {
	s := " (dropped=" + strconv.FormatUint(uint64(diag.Dropped()), 10)
	if sendFailures != nil {
		s += " send_failures=" + strconv.FormatUint(uint64(atomic.LoadUint32(sendFailures)), 10)
	}
	if link != nil {
		s += " skipped=" + strconv.FormatUint(uint64(link.Skipped()), 10)
	}
	return s + ")"
}
