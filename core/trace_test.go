package core

import (
	"strings"
	"testing"
)

func TestTraceRingOrder(t *testing.T) {
	var ring TraceRing
	for i := uint32(0); i < TraceRingSize+5; i++ {
		ring.Record(EvtWritten, i, 1500, 1400)
	}

	events := ring.Events()
	if len(events) != TraceRingSize {
		t.Fatalf("Expected %d events, got %d", TraceRingSize, len(events))
	}
	if events[0].Tick != 5 || events[TraceRingSize-1].Tick != TraceRingSize+4 {
		t.Errorf("Expected oldest tick 5 and newest %d, got %d and %d",
			TraceRingSize+4, events[0].Tick, events[TraceRingSize-1].Tick)
	}
}

func TestTraceRingDump(t *testing.T) {
	var ring TraceRing
	ring.Record(EvtHipFail, 7, 2100, 1500)
	ring.Record(EvtUnreachable, 8, 0, 0)

	var lines []string
	ring.Dump(func(s string) { lines = append(lines, s) })

	if len(lines) != 4 {
		t.Fatalf("Expected header, 2 events and footer, got %v", lines)
	}
	if lines[1] != "[TRACE] HIP_FAIL tick=7 v1=2100 v2=1500" {
		t.Errorf("Unexpected event line %q", lines[1])
	}
	if !strings.Contains(lines[2], "UNREACHABLE") {
		t.Errorf("Unexpected event line %q", lines[2])
	}

	ring.Clear()
	if len(ring.Events()) != 0 {
		t.Error("Clear should empty the ring")
	}
}
