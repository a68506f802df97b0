// legsim runs the leg loop on the host against a simulated PWM driver
package main

import (
	"flag"
	"os"
	"time"

	"go.uber.org/zap"

	"strider/core"
	"strider/host/cli"
	"strider/host/monitor"
	"strider/host/sim"
	"strider/leg/control"
)

func main() {
	configFile := flag.String("config", "", "Leg config file (.yaml or .json)")
	ticks := flag.Uint("ticks", 0, "Ticks to run (0 = one wave period)")
	realtime := flag.Bool("realtime", false, "Wait for each tick period instead of running flat out")
	wire := flag.Bool("wire", false, "Send records through the framed diagnostic link")
	trace := flag.Bool("trace", false, "Emit a record for every tick")
	plotFile := flag.String("plot", "", "Save the target and reconstructed foot path to this image")
	verbose := flag.Bool("v", false, "Verbose output")
	flag.Parse()

	log, err := cli.NewLogger(*verbose)
	if err != nil {
		os.Stderr.WriteString("logger: " + err.Error() + "\n")
		os.Exit(1)
	}
	defer log.Sync()

	cfg, err := cli.LoadConfig(*configFile)
	if err != nil {
		log.Fatal("invalid configuration", zap.Error(err))
	}
	if *trace {
		cfg.Trace = true
	}

	driver := sim.NewDriver()

	var next control.Ticker = &sim.InstantTicker{}
	if *realtime {
		tt := core.NewTimeTicker(time.Duration(cfg.TickPeriodMS) * time.Millisecond)
		defer tt.Stop()
		next = tt
	}
	ticker := driver.Frame(next)

	// The wire path runs records through the same queue, framing and
	// scanner as the firmware and the monitor
	var diag control.Diagnostics = sim.NewDiagnostics(log)
	var queue *core.DiagQueue
	if *wire {
		mon := monitor.New(nil, log, monitor.LogHandler(log))
		writer, failures := core.FrameWriter(func(b []byte) error {
			mon.Feed(b)
			return nil
		})
		queue = core.NewDiagQueue(cfg.DiagQueue, writer)
		queue.Start()
		diag = queue
		defer func() {
			queue.Close()
			s := mon.Stats()
			log.Info("link",
				zap.Uint32("frames", s.Frames),
				zap.Uint32("bad_frames", s.BadFrames),
				zap.Uint32("seq_gaps", s.SeqGaps),
				zap.Uint32("dropped", queue.Dropped()),
				zap.Uint32("send_failures", *failures))
		}()
	}

	loop, err := control.New(cfg, driver, ticker, diag)
	if err != nil {
		log.Fatal("failed to start loop", zap.Error(err))
	}

	n := uint32(*ticks)
	if n == 0 {
		n = loop.Path().Period()
	}
	log.Info("running",
		zap.String("path", cfg.Path.Kind),
		zap.Uint32("ticks", n),
		zap.Uint32("tick_ms", cfg.TickPeriodMS),
		zap.Bool("realtime", *realtime))

	start := time.Now()
	loop.RunTicks(n)

	stats := loop.Stats()
	log.Info("done",
		zap.Duration("elapsed", time.Since(start)),
		zap.Uint32("ticks", stats.Ticks),
		zap.Uint32("written", stats.Written),
		zap.Uint32("unreachable", stats.Unreachable),
		zap.Uint32("failures", stats.Failures),
		zap.Uint32("dumps", stats.Dumps))

	if *plotFile != "" {
		pairs := driver.Pairs(core.PWMPin(cfg.Hip.Pin), core.PWMPin(cfg.Knee.Pin))
		actual := sim.Reconstruct(loop.Leg(),
			control.CalibrationFrom(cfg.Hip), control.CalibrationFrom(cfg.Knee), pairs)
		if err := sim.Plot(loop.Path(), actual, *plotFile); err != nil {
			log.Error("failed to save plot", zap.Error(err))
			return
		}
		log.Info("saved plot", zap.String("file", *plotFile), zap.Int("points", len(actual)))
	}
}
