package core

import "strconv"

// TraceEvent captures one control tick for post-mortem analysis
type TraceEvent struct {
	EventType uint8  // Event type code
	Tick      uint32 // Control tick counter
	Value1    uint32 // Hip value or distance in micro-units
	Value2    uint32 // Knee value
}

// Event type codes
const (
	EvtWritten     = 1 // Both channels accepted
	EvtUnreachable = 2 // Target outside the envelope, nothing written
	EvtHipFail     = 3 // Hip channel rejected the write
	EvtKneeFail    = 4 // Knee channel rejected the write
	EvtBothFail    = 5 // Both channels rejected the write
)

const (
	TraceRingSize = 32 // Keep last 32 ticks for post-mortem
)

// TraceRing is a fixed-size ring of recent ticks. Recording never allocates.
type TraceRing struct {
	events [TraceRingSize]TraceEvent
	head   uint8
}

// Record captures an event, overwriting the oldest one when full
func (r *TraceRing) Record(eventType uint8, tick, value1, value2 uint32) {
	idx := r.head
	r.events[idx] = TraceEvent{
		EventType: eventType,
		Tick:      tick,
		Value1:    value1,
		Value2:    value2,
	}
	r.head = (idx + 1) % TraceRingSize
}

// Events returns the recorded events from oldest to newest
func (r *TraceRing) Events() []TraceEvent {
	events := make([]TraceEvent, 0, TraceRingSize)
	start := r.head
	for i := uint8(0); i < TraceRingSize; i++ {
		evt := r.events[(start+i)%TraceRingSize]
		if evt.EventType == 0 {
			continue // Empty slot
		}
		events = append(events, evt)
	}
	return events
}

// Dump writes the ring from oldest to newest, one line per event
func (r *TraceRing) Dump(write func(string)) {
	if write == nil {
		return
	}

	write("[TRACE] === Trace Ring Dump ===")
	for _, evt := range r.Events() {
		write("[TRACE] " + EventName(evt.EventType) +
			" tick=" + strconv.FormatUint(uint64(evt.Tick), 10) +
			" v1=" + strconv.FormatUint(uint64(evt.Value1), 10) +
			" v2=" + strconv.FormatUint(uint64(evt.Value2), 10))
	}
	write("[TRACE] === End Dump ===")
}

// Clear empties the ring
func (r *TraceRing) Clear() {
	for i := range r.events {
		r.events[i] = TraceEvent{}
	}
	r.head = 0
}

// EventName returns the dump label for an event type
func EventName(eventType uint8) string {
	switch eventType {
	case EvtWritten:
		return "WRITTEN"
	case EvtUnreachable:
		return "UNREACHABLE"
	case EvtHipFail:
		return "HIP_FAIL"
	case EvtKneeFail:
		return "KNEE_FAIL"
	case EvtBothFail:
		return "BOTH_FAIL"
	default:
		return "UNKNOWN"
	}
}
