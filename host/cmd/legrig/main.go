// legrig drives a real leg from a Raspberry Pi, using the same loop as the
// firmware
package main

import (
	"context"
	"flag"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"strider/core"
	"strider/host/cli"
	"strider/host/monitor"
	"strider/host/periphpwm"
	"strider/host/rpiopwm"
	"strider/leg/control"
	"strider/protocol"
)

// backend is a PWM driver that owns hardware until closed
type backend interface {
	core.PWMDriver
	io.Closer
}

func main() {
	os.Exit(run())
}

// run returns the exit code so deferred cleanup happens on every path
func run() int {
	configFile := flag.String("config", "", "Leg config file (.yaml or .json)")
	backendName := flag.String("backend", "rpio", "PWM backend: rpio or periph")
	verbose := flag.Bool("v", false, "Verbose output")
	flag.Parse()

	log, err := cli.NewLogger(*verbose)
	if err != nil {
		os.Stderr.WriteString("logger: " + err.Error() + "\n")
		return 1
	}
	defer log.Sync()

	cfg, err := cli.LoadConfig(*configFile)
	if err != nil {
		log.Error("invalid configuration", zap.Error(err))
		return 1
	}

	driver, err := openBackend(*backendName)
	if err != nil {
		log.Error("failed to open gpio", zap.String("backend", *backendName), zap.Error(err))
		return 1
	}
	defer func() {
		if err := driver.Close(); err != nil {
			log.Warn("failed to release gpio", zap.Error(err))
		}
	}()
	core.SetPWMDriver(driver)

	diag := newSink(log.Named("leg"), cfg.DiagQueue)
	defer func() {
		diag.Close()
		if n := diag.Dropped(); n > 0 {
			log.Warn("diagnostic records dropped", zap.Uint32("dropped", n))
		}
	}()

	ticker := core.NewTimeTicker(time.Duration(cfg.TickPeriodMS) * time.Millisecond)
	defer ticker.Stop()

	loop, err := control.New(cfg, core.MustPWM(), ticker, diag)
	if err != nil {
		log.Error("failed to start loop", zap.Error(err))
		return 1
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	log.Info("running",
		zap.String("backend", *backendName),
		zap.String("path", cfg.Path.Kind),
		zap.Uint32("hip_pin", cfg.Hip.Pin),
		zap.Uint32("knee_pin", cfg.Knee.Pin))
	// Shutdown runs on this goroutine so it cannot race a tick's writes
	for ctx.Err() == nil && !core.IsShutdown() {
		loop.RunTicks(1)
	}
	core.TryShutdown("interrupted")

	stats := loop.Stats()
	log.Info("stopped",
		zap.String("reason", core.ShutdownReason()),
		zap.Uint32("ticks", stats.Ticks),
		zap.Uint32("written", stats.Written),
		zap.Uint32("unreachable", stats.Unreachable),
		zap.Uint32("failures", stats.Failures))
	return 0
}

func openBackend(name string) (backend, error) {
	switch name {
	case "rpio":
		return rpiopwm.Open()
	case "periph":
		return periphpwm.Open()
	default:
		return nil, errUnknownBackend(name)
	}
}

type errUnknownBackend string

func (e errUnknownBackend) Error() string {
	return "unknown backend " + string(e)
}

// newSink starts a queue that logs records off the loop goroutine, so a
// slow log sink costs dropped records instead of late ticks
func newSink(log *zap.Logger, capacity int) *core.DiagQueue {
	q := core.NewDiagQueue(capacity, func(r protocol.Record) {
		monitor.LogRecord(log, r)
	})
	q.Start()
	return q
}
