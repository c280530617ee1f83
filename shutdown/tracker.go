// Package shutdown coordinates graceful shutdown of the extraction service:
// signal handling, draining of in-flight document parses and ordered release
// of the HTTP server, history writer, database and logger.
package shutdown

import (
	"errors"
	"sync"
	"sync/atomic"
	"time"
)

// ErrShuttingDown is returned when work is refused because shutdown started.
var ErrShuttingDown = errors.New("service is shutting down")

// ErrDrainTimeout is returned when in-flight work outlives the drain timeout.
var ErrDrainTimeout = errors.New("timed out waiting for in-flight work")

// Tracker counts in-flight operations and refuses new ones once closed.
//
//	if !tracker.Begin() {
//	    return ErrShuttingDown
//	}
//	defer tracker.End()
type Tracker struct {
	mu     sync.RWMutex
	wg     sync.WaitGroup
	active atomic.Int64
	closed bool
}

// NewTracker returns an open Tracker.
func NewTracker() *Tracker {
	return &Tracker{}
}

// Begin registers one operation. It returns false after Close, in which
// case End must not be called.
func (t *Tracker) Begin() bool {
	t.mu.RLock()
	defer t.mu.RUnlock()

	if t.closed {
		return false
	}
	t.wg.Add(1)
	t.active.Add(1)
	return true
}

// End marks an operation started by Begin as finished.
func (t *Tracker) End() {
	t.active.Add(-1)
	t.wg.Done()
}

// Close refuses further operations. Running ones are unaffected.
func (t *Tracker) Close() {
	t.mu.Lock()
	t.closed = true
	t.mu.Unlock()
}

// Closed reports whether Close has been called.
func (t *Tracker) Closed() bool {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.closed
}

// Active returns the number of running operations.
func (t *Tracker) Active() int64 {
	return t.active.Load()
}

// Wait blocks until every running operation ends or timeout elapses.
func (t *Tracker) Wait(timeout time.Duration) error {
	done := make(chan struct{})
	go func() {
		t.wg.Wait()
		close(done)
	}()

	timer := time.NewTimer(timeout)
	defer timer.Stop()

	select {
	case <-done:
		return nil
	case <-timer.C:
		return ErrDrainTimeout
	}
}
