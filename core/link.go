package core

import (
	"errors"
	"sync/atomic"
)

var ErrLinkDown = errors.New("link: down, frame skipped")

// LinkSender wraps a frame writer so a dead host link stops costing a
// blocking write per record. After threshold consecutive failures only every
// retryEvery-th frame is attempted; the rest are skipped. Any success resets
// the count. Send must be called from one goroutine; the counters may be read
// from any.
type LinkSender struct {
	send       func([]byte) error
	threshold  uint32
	retryEvery uint32
	sinceRetry uint32

	failures uint32 // atomic, consecutive
	skipped  uint32 // atomic
}

// NewLinkSender creates a sender. A retryEvery of 0 is treated as 1.
func NewLinkSender(send func([]byte) error, threshold, retryEvery uint32) *LinkSender {
	if retryEvery == 0 {
		retryEvery = 1
	}
	return &LinkSender{send: send, threshold: threshold, retryEvery: retryEvery}
}

// Send writes frame, or skips it while the link is considered down
func (l *LinkSender) Send(frame []byte) error {
	if atomic.LoadUint32(&l.failures) >= l.threshold {
		l.sinceRetry++
		if l.sinceRetry < l.retryEvery {
			atomic.AddUint32(&l.skipped, 1)
			return ErrLinkDown
		}
		l.sinceRetry = 0
	}

	if err := l.send(frame); err != nil {
		atomic.AddUint32(&l.failures, 1)
		return err
	}
	atomic.StoreUint32(&l.failures, 0)
	l.sinceRetry = 0
	return nil
}

// Down reports whether frames are currently being skipped
func (l *LinkSender) Down() bool {
	return atomic.LoadUint32(&l.failures) >= l.threshold
}

// Failures returns the number of consecutive failed writes
func (l *LinkSender) Failures() uint32 {
	return atomic.LoadUint32(&l.failures)
}

// Skipped returns the number of frames never attempted
func (l *LinkSender) Skipped() uint32 {
	return atomic.LoadUint32(&l.skipped)
}
