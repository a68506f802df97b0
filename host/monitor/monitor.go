// Package monitor decodes the firmware's diagnostic stream on the host.
//
// A Monitor reads the USB port, reassembles frames with a protocol.Scanner
// and hands every record to its handlers. The Hub republishes records to
// websocket clients.
package monitor

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync"

	"go.uber.org/zap"

	"strider/host/serial"
	"strider/protocol"
)

// Handler receives one decoded record
type Handler func(seq uint8, r protocol.Record)

// Stats summarizes the stream so far
type Stats struct {
	Bytes     uint64 `json:"bytes"`
	Frames    uint32 `json:"frames"`
	BadFrames uint32 `json:"bad_frames"`
	SeqGaps   uint32 `json:"seq_gaps"`
	Errors    uint32 `json:"errors"`
	Warnings  uint32 `json:"warnings"`
}

// Monitor reads records from a serial port
type Monitor struct {
	port serial.Port
	log  *zap.Logger

	mu       sync.Mutex
	scanner  *protocol.Scanner
	handlers []Handler
	raw      func([]byte)
	stats    Stats
}

// New creates a monitor on an open port. A nil logger disables logging.
func New(port serial.Port, log *zap.Logger, handlers ...Handler) *Monitor {
	if log == nil {
		log = zap.NewNop()
	}
	m := &Monitor{
		port:     port,
		log:      log,
		handlers: handlers,
	}
	m.scanner = protocol.NewScanner(m.dispatch)
	return m
}

// Connect opens the port described by cfg and creates a monitor on it
func Connect(cfg *serial.Config, log *zap.Logger, handlers ...Handler) (*Monitor, error) {
	port, err := serial.Open(cfg)
	if err != nil {
		return nil, err
	}
	if err := port.Flush(); err != nil {
		port.Close()
		return nil, fmt.Errorf("failed to flush %s: %w", cfg.Device, err)
	}
	return New(port, log, handlers...), nil
}

// OnRaw installs a callback that sees every chunk read from the port
func (m *Monitor) OnRaw(fn func([]byte)) {
	m.mu.Lock()
	m.raw = fn
	m.mu.Unlock()
}

// Run reads until ctx is done or the port fails. An empty read is a
// timeout, not an error.
func (m *Monitor) Run(ctx context.Context) error {
	buf := make([]byte, 4096)
	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		n, err := m.port.Read(buf)
		if n > 0 {
			m.Feed(buf[:n])
		}
		if err != nil && !errors.Is(err, io.EOF) {
			return fmt.Errorf("monitor read: %w", err)
		}
	}
}

// Feed processes received bytes as if they had been read from the port
func (m *Monitor) Feed(data []byte) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.raw != nil {
		m.raw(data)
	}
	m.stats.Bytes += uint64(len(data))

	badBefore := m.scanner.BadFrames
	gapsBefore := m.scanner.SeqGaps
	m.scanner.Feed(data)

	if bad := m.scanner.BadFrames - badBefore; bad > 0 {
		m.log.Warn("discarded damaged frames", zap.Uint32("count", bad))
	}
	if gaps := m.scanner.SeqGaps - gapsBefore; gaps > 0 {
		m.log.Warn("sequence gap, records lost", zap.Uint32("gaps", gaps))
	}
	m.stats.Frames = m.scanner.Frames
	m.stats.BadFrames = m.scanner.BadFrames
	m.stats.SeqGaps = m.scanner.SeqGaps
}

// dispatch runs under m.mu from inside Scanner.Feed
func (m *Monitor) dispatch(seq uint8, r protocol.Record) {
	switch r.Level {
	case protocol.LevelError:
		m.stats.Errors++
	case protocol.LevelWarn:
		m.stats.Warnings++
	}
	for _, h := range m.handlers {
		h(seq, r)
	}
}

// Stats returns a snapshot of the stream counters
func (m *Monitor) Stats() Stats {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.stats
}

// Close closes the port
func (m *Monitor) Close() error {
	return m.port.Close()
}

// LogHandler returns a handler that writes each record to log at a zap
// level matching the record level
func LogHandler(log *zap.Logger) Handler {
	return func(seq uint8, r protocol.Record) {
		LogRecord(log, r, zap.Uint8("seq", seq))
	}
}

// LogRecord writes r to log at the matching level with its tick
func LogRecord(log *zap.Logger, r protocol.Record, fields ...zap.Field) {
	fields = append(fields, zap.Uint32("tick", r.Tick))
	switch r.Level {
	case protocol.LevelDebug:
		log.Debug(r.Text, fields...)
	case protocol.LevelWarn:
		log.Warn(r.Text, fields...)
	case protocol.LevelError:
		log.Error(r.Text, fields...)
	default:
		log.Info(r.Text, fields...)
	}
}
