package db

import (
	"context"
	"errors"
	"sync"
	"time"
)

// DefaultQueueCapacity is the number of runs that can wait to be written.
const DefaultQueueCapacity = 100

// DefaultDrainTimeout bounds how long Stop waits for queued runs.
const DefaultDrainTimeout = 10 * time.Second

// RunInserter is the write side of Repository.
type RunInserter interface {
	InsertRun(ctx context.Context, run ExtractionRun) error
}

// AsyncRunWriter records runs on a background goroutine so that a slow disk
// never delays an upload response. Runs that do not fit in the queue are
// dropped and reported through OnError.
type AsyncRunWriter struct {
	queue   chan ExtractionRun
	target  RunInserter
	onError func(run ExtractionRun, err error)
	timeout time.Duration

	mu      sync.Mutex
	started bool
	stopped bool
	wg      sync.WaitGroup
}

// ErrQueueFull is passed to OnError when a run is dropped.
var ErrQueueFull = errors.New("history queue full")

// AsyncRunWriterConfig holds configuration for the writer.
type AsyncRunWriterConfig struct {
	// QueueCapacity is the buffer size for pending runs
	QueueCapacity int
	// WriteTimeout bounds each insert
	WriteTimeout time.Duration
	// OnError is called for failed or dropped writes (may be nil)
	OnError func(run ExtractionRun, err error)
}

// NewAsyncRunWriter creates a writer over target. Call Start before use.
func NewAsyncRunWriter(target RunInserter, config AsyncRunWriterConfig) *AsyncRunWriter {
	if config.QueueCapacity <= 0 {
		config.QueueCapacity = DefaultQueueCapacity
	}
	if config.WriteTimeout <= 0 {
		config.WriteTimeout = 5 * time.Second
	}
	if config.OnError == nil {
		config.OnError = func(ExtractionRun, error) {}
	}
	return &AsyncRunWriter{
		queue:   make(chan ExtractionRun, config.QueueCapacity),
		target:  target,
		onError: config.OnError,
		timeout: config.WriteTimeout,
	}
}

// Start launches the background goroutine. Calling it again is a no-op.
func (w *AsyncRunWriter) Start() {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.started || w.stopped {
		return
	}
	w.started = true
	w.wg.Add(1)
	go w.process()
}

func (w *AsyncRunWriter) process() {
	defer w.wg.Done()
	for run := range w.queue {
		ctx, cancel := context.WithTimeout(context.Background(), w.timeout)
		if err := w.target.InsertRun(ctx, run); err != nil {
			w.onError(run, err)
		}
		cancel()
	}
}

// InsertRun queues run without blocking. It satisfies RunInserter so the
// writer can stand in for a Repository. The returned error is always nil;
// dropped runs go to OnError.
func (w *AsyncRunWriter) InsertRun(_ context.Context, run ExtractionRun) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.stopped {
		w.onError(run, ErrQueueFull)
		return nil
	}
	select {
	case w.queue <- run:
	default:
		w.onError(run, ErrQueueFull)
	}
	return nil
}

// Pending returns the number of queued runs.
func (w *AsyncRunWriter) Pending() int {
	return len(w.queue)
}

// Stop closes the queue and waits up to timeout for queued runs to be
// written. It reports whether the drain finished in time.
func (w *AsyncRunWriter) Stop(timeout time.Duration) bool {
	w.mu.Lock()
	if w.stopped {
		w.mu.Unlock()
		return true
	}
	w.stopped = true
	close(w.queue)
	started := w.started
	w.mu.Unlock()

	if !started {
		return true
	}
	if timeout <= 0 {
		timeout = DefaultDrainTimeout
	}

	done := make(chan struct{})
	go func() {
		w.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		return true
	case <-time.After(timeout):
		return false
	}
}
