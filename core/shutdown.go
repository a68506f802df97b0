package core

import (
	"sync"
	"sync/atomic"
)

var (
	isShutdown     uint32 // atomic bool
	shutdownMu     sync.Mutex
	shutdownReason string
)

// TryShutdown stops all outputs and latches the shutdown state.
// Only the first reason is kept.
func TryShutdown(reason string) {
	if !atomic.CompareAndSwapUint32(&isShutdown, 0, 1) {
		return
	}

	shutdownMu.Lock()
	shutdownReason = reason
	shutdownMu.Unlock()

	ShutdownAllPWM()
}

// IsShutdown returns true if the firmware is in shutdown state
func IsShutdown() bool {
	return atomic.LoadUint32(&isShutdown) != 0
}

// ShutdownReason returns the reason given to the first TryShutdown call
func ShutdownReason() string {
	shutdownMu.Lock()
	defer shutdownMu.Unlock()
	return shutdownReason
}

// resetShutdown clears the shutdown latch (for testing)
func resetShutdown() {
	atomic.StoreUint32(&isShutdown, 0)
	shutdownMu.Lock()
	shutdownReason = ""
	shutdownMu.Unlock()
}
