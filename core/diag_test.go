package core

import (
	"errors"
	"sync"
	"testing"
	"time"

	"strider/protocol"
)

func TestDiagQueueDelivers(t *testing.T) {
	var mu sync.Mutex
	var got []protocol.Record

	q := NewDiagQueue(8, func(r protocol.Record) {
		mu.Lock()
		got = append(got, r)
		mu.Unlock()
	})
	q.Start()

	q.Emit(protocol.LevelInfo, 1, "first")
	q.Emit(protocol.LevelError, 2, "second")
	q.Close()

	if len(got) != 2 || got[0].Text != "first" || got[1].Tick != 2 {
		t.Errorf("Unexpected records %+v", got)
	}
	if q.Dropped() != 0 {
		t.Errorf("Expected no drops, got %d", q.Dropped())
	}
}

func TestDiagQueueDropsWhenFull(t *testing.T) {
	release := make(chan struct{})
	var written int

	q := NewDiagQueue(2, func(r protocol.Record) {
		<-release
		written++
	})

	// Worker not started yet, so the queue fills up
	for i := uint32(0); i < 5; i++ {
		q.Emit(protocol.LevelDebug, i, "x")
	}
	if q.Dropped() != 3 {
		t.Errorf("Expected 3 drops, got %d", q.Dropped())
	}

	q.Start()
	close(release)
	q.Close()

	if written != 2 {
		t.Errorf("Expected 2 records written, got %d", written)
	}

	q.Emit(protocol.LevelDebug, 9, "after close")
	if q.Dropped() != 4 {
		t.Errorf("Emit after Close should count as a drop, got %d", q.Dropped())
	}
}

func TestFrameWriter(t *testing.T) {
	var frames [][]byte
	write, failures := FrameWriter(func(b []byte) error {
		frames = append(frames, append([]byte(nil), b...))
		if len(frames) == 2 {
			return errors.New("usb busy")
		}
		return nil
	})

	write(protocol.Record{Level: protocol.LevelInfo, Tick: 0, Text: "tick 0"})
	write(protocol.Record{Level: protocol.LevelWarn, Tick: 1, Text: "b"})

	if *failures != 1 {
		t.Errorf("Expected 1 send failure, got %d", *failures)
	}

	var seqs []uint8
	s := protocol.NewScanner(func(seq uint8, r protocol.Record) { seqs = append(seqs, seq) })
	for _, f := range frames {
		s.Feed(f)
	}
	if len(seqs) != 2 || seqs[0] != 0 || seqs[1] != 1 {
		t.Errorf("Expected sequences [0 1], got %v", seqs)
	}
}

func TestDiagQueueCloseWithoutStart(t *testing.T) {
	q := NewDiagQueue(4, func(protocol.Record) {
		t.Error("Nothing should be written without a worker")
	})
	q.Emit(protocol.LevelInfo, 0, "pending")

	done := make(chan struct{})
	go func() {
		q.Close()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Close blocked on a queue that was never started")
	}
	if q.Dropped() != 1 {
		t.Errorf("Expected the pending record counted as dropped, got %d", q.Dropped())
	}

	// A second Close is a no-op
	q.Close()
}
