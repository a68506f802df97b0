// legmon decodes the firmware's diagnostic records from its USB port
package main

import (
	"context"
	"encoding/hex"
	"errors"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"strider/host/cli"
	"strider/host/monitor"
	"strider/host/serial"
)

func main() {
	device := flag.String("device", "/dev/ttyACM0", "Serial device path")
	baud := flag.Int("baud", 115200, "Baud rate (ignored by USB CDC)")
	raw := flag.Bool("raw", false, "Hex dump every chunk read")
	listen := flag.String("listen", "", "Serve /ws/records and /api/stats on this address")
	verbose := flag.Bool("v", false, "Verbose output")
	flag.Parse()

	log, err := cli.NewLogger(*verbose || *raw)
	if err != nil {
		os.Stderr.WriteString("logger: " + err.Error() + "\n")
		os.Exit(1)
	}
	defer log.Sync()

	hub := monitor.NewHub(log)
	defer hub.Close()

	cfg := serial.DefaultConfig(*device)
	cfg.Baud = *baud
	mon, err := monitor.Connect(cfg, log, monitor.LogHandler(log.Named("mcu")), hub.Publish)
	if err != nil {
		log.Fatal("failed to connect", zap.String("device", *device), zap.Error(err))
	}
	defer mon.Close()

	if *raw {
		mon.OnRaw(func(b []byte) {
			log.Debug("rx", zap.Int("len", len(b)), zap.String("hex", hex.EncodeToString(b)))
		})
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if *listen != "" {
		srv := &http.Server{Addr: *listen, Handler: monitor.NewRouter(mon, hub)}
		go func() {
			log.Info("listening", zap.String("addr", *listen))
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				log.Error("http server failed", zap.Error(err))
				stop()
			}
		}()
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
			defer cancel()
			srv.Shutdown(shutdownCtx)
		}()
	}

	log.Info("monitoring", zap.String("device", *device))
	if err := mon.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		log.Error("monitor stopped", zap.Error(err))
	}

	s := mon.Stats()
	log.Info("summary",
		zap.Uint64("bytes", s.Bytes),
		zap.Uint32("frames", s.Frames),
		zap.Uint32("bad_frames", s.BadFrames),
		zap.Uint32("seq_gaps", s.SeqGaps),
		zap.Uint32("errors", s.Errors),
		zap.Uint32("warnings", s.Warnings))
}
