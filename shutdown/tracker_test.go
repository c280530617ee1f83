package shutdown

import (
	"errors"
	"sync"
	"testing"
	"time"
)

func TestTracker_BeginEnd(t *testing.T) {
	tr := NewTracker()

	if !tr.Begin() || !tr.Begin() {
		t.Fatal("Begin() refused on an open tracker")
	}
	if got := tr.Active(); got != 2 {
		t.Errorf("Active() = %d, want 2", got)
	}
	tr.End()
	tr.End()
	if got := tr.Active(); got != 0 {
		t.Errorf("Active() = %d, want 0", got)
	}
}

func TestTracker_CloseRefusesNewWork(t *testing.T) {
	tr := NewTracker()
	if !tr.Begin() {
		t.Fatal("Begin() refused")
	}
	tr.Close()

	if tr.Begin() {
		t.Error("Begin() accepted after Close")
	}
	if !tr.Closed() {
		t.Error("Closed() = false")
	}

	go func() {
		time.Sleep(10 * time.Millisecond)
		tr.End()
	}()
	if err := tr.Wait(time.Second); err != nil {
		t.Errorf("Wait() = %v, want nil once running work ends", err)
	}
}

func TestTracker_WaitTimeout(t *testing.T) {
	tr := NewTracker()
	tr.Begin()
	defer tr.End()

	if err := tr.Wait(10 * time.Millisecond); !errors.Is(err, ErrDrainTimeout) {
		t.Errorf("Wait() = %v, want ErrDrainTimeout", err)
	}
}

func TestTracker_WaitIdle(t *testing.T) {
	if err := NewTracker().Wait(time.Millisecond); err != nil {
		t.Errorf("Wait() on idle tracker = %v", err)
	}
}

func TestTracker_ConcurrentBeginWithClose(t *testing.T) {
	tr := NewTracker()
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if tr.Begin() {
				time.Sleep(time.Millisecond)
				tr.End()
			}
		}()
	}
	tr.Close()
	if err := tr.Wait(time.Second); err != nil {
		t.Errorf("Wait() = %v", err)
	}
	wg.Wait()
	if got := tr.Active(); got != 0 {
		t.Errorf("Active() = %d, want 0", got)
	}
}
