package db

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"
)

type recordingInserter struct {
	mu    sync.Mutex
	runs  []ExtractionRun
	block chan struct{}
	err   error
}

func (r *recordingInserter) InsertRun(_ context.Context, run ExtractionRun) error {
	if r.block != nil {
		<-r.block
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.runs = append(r.runs, run)
	return r.err
}

func (r *recordingInserter) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.runs)
}

func TestAsyncRunWriter_DrainsOnStop(t *testing.T) {
	target := &recordingInserter{}
	w := NewAsyncRunWriter(target, AsyncRunWriterConfig{QueueCapacity: 10})
	w.Start()

	for _, id := range []string{"a", "b", "c"} {
		w.InsertRun(context.Background(), ExtractionRun{ID: id, Status: StatusSuccess})
	}

	if !w.Stop(time.Second) {
		t.Fatal("Stop timed out")
	}
	if got := target.count(); got != 3 {
		t.Errorf("written %d runs, want 3", got)
	}
}

func TestAsyncRunWriter_DropsWhenFull(t *testing.T) {
	target := &recordingInserter{block: make(chan struct{})}

	var mu sync.Mutex
	var dropped []error
	w := NewAsyncRunWriter(target, AsyncRunWriterConfig{
		QueueCapacity: 1,
		OnError: func(_ ExtractionRun, err error) {
			mu.Lock()
			dropped = append(dropped, err)
			mu.Unlock()
		},
	})

	// Not started: the first run fills the queue, the second is dropped.
	w.InsertRun(context.Background(), ExtractionRun{ID: "a", Status: StatusSuccess})
	w.InsertRun(context.Background(), ExtractionRun{ID: "b", Status: StatusSuccess})

	mu.Lock()
	if len(dropped) != 1 || !errors.Is(dropped[0], ErrQueueFull) {
		t.Errorf("dropped = %v, want one ErrQueueFull", dropped)
	}
	mu.Unlock()

	w.Start()
	close(target.block)
	w.Stop(time.Second)

	if got := target.count(); got != 1 {
		t.Errorf("written %d runs, want 1", got)
	}
}

func TestAsyncRunWriter_ReportsInsertErrors(t *testing.T) {
	target := &recordingInserter{err: errors.New("disk full")}

	errs := make(chan error, 1)
	w := NewAsyncRunWriter(target, AsyncRunWriterConfig{
		OnError: func(_ ExtractionRun, err error) { errs <- err },
	})
	w.Start()
	w.InsertRun(context.Background(), ExtractionRun{ID: "a", Status: StatusSuccess})
	w.Stop(time.Second)

	select {
	case err := <-errs:
		if err.Error() != "disk full" {
			t.Errorf("OnError got %v, want disk full", err)
		}
	default:
		t.Error("OnError not called")
	}
}

func TestAsyncRunWriter_InsertAfterStop(t *testing.T) {
	var dropped int
	w := NewAsyncRunWriter(&recordingInserter{}, AsyncRunWriterConfig{
		OnError: func(ExtractionRun, error) { dropped++ },
	})
	w.Start()
	w.Stop(time.Second)

	w.InsertRun(context.Background(), ExtractionRun{ID: "late", Status: StatusSuccess})
	if dropped != 1 {
		t.Errorf("dropped = %d, want 1", dropped)
	}
	if !w.Stop(time.Second) {
		t.Error("second Stop reported a timeout")
	}
}
