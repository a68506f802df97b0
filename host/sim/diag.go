package sim

import (
	"sync"

	"go.uber.org/zap"

	"strider/protocol"
)

// Diagnostics collects records and optionally mirrors them to a logger
type Diagnostics struct {
	mu      sync.Mutex
	log     *zap.Logger
	records []protocol.Record
}

// NewDiagnostics creates a collector. A nil logger only collects.
func NewDiagnostics(log *zap.Logger) *Diagnostics {
	return &Diagnostics{log: log}
}

// Emit stores one record
func (d *Diagnostics) Emit(level protocol.Level, tick uint32, text string) {
	d.mu.Lock()
	d.records = append(d.records, protocol.Record{Level: level, Tick: tick, Text: text})
	d.mu.Unlock()

	if d.log == nil {
		return
	}
	switch level {
	case protocol.LevelError:
		d.log.Error(text, zap.Uint32("tick", tick))
	case protocol.LevelWarn:
		d.log.Warn(text, zap.Uint32("tick", tick))
	case protocol.LevelDebug:
		d.log.Debug(text, zap.Uint32("tick", tick))
	default:
		d.log.Info(text, zap.Uint32("tick", tick))
	}
}

// Records returns the collected records
func (d *Diagnostics) Records() []protocol.Record {
	d.mu.Lock()
	defer d.mu.Unlock()
	return append([]protocol.Record(nil), d.records...)
}

// Count returns how many records were emitted at level
func (d *Diagnostics) Count(level protocol.Level) int {
	d.mu.Lock()
	defer d.mu.Unlock()
	n := 0
	for _, r := range d.records {
		if r.Level == level {
			n++
		}
	}
	return n
}
