package core

import (
	"sync/atomic"

	"strider/protocol"
)

// DiagWriter delivers one record to the host link
type DiagWriter func(protocol.Record)

// DiagQueue decouples record producers from a slow link. Emit never blocks:
// when the queue is full the newest record is dropped and counted.
type DiagQueue struct {
	records chan protocol.Record
	write   DiagWriter
	done    chan struct{}

	dropped uint32 // atomic
	closed  uint32 // atomic bool
	started uint32 // atomic bool
}

// NewDiagQueue creates a queue holding up to capacity pending records
func NewDiagQueue(capacity int, write DiagWriter) *DiagQueue {
	if capacity < 1 {
		capacity = 1
	}
	return &DiagQueue{
		records: make(chan protocol.Record, capacity),
		write:   write,
		done:    make(chan struct{}),
	}
}

// Start runs the output worker. Call once, after the link is up.
// Later calls do nothing.
func (q *DiagQueue) Start() {
	if !atomic.CompareAndSwapUint32(&q.started, 0, 1) {
		return
	}
	go q.worker()
}

func (q *DiagQueue) worker() {
	defer close(q.done)
	for r := range q.records {
		if q.write != nil {
			q.write(r)
		}
	}
}

// Emit queues a record without blocking
func (q *DiagQueue) Emit(level protocol.Level, tick uint32, text string) {
	if atomic.LoadUint32(&q.closed) != 0 {
		atomic.AddUint32(&q.dropped, 1)
		return
	}
	select {
	case q.records <- protocol.Record{Level: level, Tick: tick, Text: text}:
	default:
		atomic.AddUint32(&q.dropped, 1)
	}
}

// Dropped returns the number of records lost to a full queue
func (q *DiagQueue) Dropped() uint32 {
	return atomic.LoadUint32(&q.dropped)
}

// Close stops accepting records and waits for pending ones to be written.
// Without a worker, pending records are discarded and counted as dropped.
// No Emit or Start may run concurrently with Close.
func (q *DiagQueue) Close() {
	if !atomic.CompareAndSwapUint32(&q.closed, 0, 1) {
		return
	}
	close(q.records)
	if atomic.LoadUint32(&q.started) == 0 {
		atomic.AddUint32(&q.dropped, uint32(len(q.records)))
		close(q.done)
		return
	}
	<-q.done
}

// FrameWriter returns a DiagWriter that frames each record and passes the
// bytes to send. Send errors are counted in the returned counter.
func FrameWriter(send func([]byte) error) (DiagWriter, *uint32) {
	var seq uint8
	var failures uint32
	output := protocol.NewScratchOutput()

	return func(r protocol.Record) {
		output.Reset()
		protocol.EncodeRecord(output, seq, r)
		seq = (seq + 1) & protocol.MessageSeqMask
		if err := send(output.Result()); err != nil {
			atomic.AddUint32(&failures, 1)
		}
	}, &failures
}
