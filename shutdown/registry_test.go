package shutdown

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
)

func TestRegistry_Order(t *testing.T) {
	r := NewRegistry()
	var calls []string
	record := func(name string) Func {
		return func(context.Context) error {
			calls = append(calls, name)
			return nil
		}
	}

	r.Register("logger", PriorityLogs, record("logger"))
	r.Register("http", PriorityHTTP, record("http"))
	r.Register("database", PriorityStorage, record("database"))
	r.Register("history-writer", PriorityWorkers, record("history-writer"))
	r.Register("metrics", PriorityWorkers, record("metrics"))

	want := []string{"http", "history-writer", "metrics", "database", "logger"}
	if diff := cmp.Diff(want, r.Names()); diff != "" {
		t.Errorf("Names() mismatch (-want +got):\n%s", diff)
	}
	if errs := r.Run(context.Background()); len(errs) != 0 {
		t.Fatalf("Run() errors = %v", errs)
	}
	if diff := cmp.Diff(want, calls); diff != "" {
		t.Errorf("call order mismatch (-want +got):\n%s", diff)
	}
}

func TestRegistry_CollectsErrorsAndContinues(t *testing.T) {
	r := NewRegistry()
	errClose := errors.New("close failed")
	ran := 0

	r.Register("first", 1, func(context.Context) error { ran++; return errClose })
	r.Register("second", 2, func(context.Context) error { ran++; return nil })
	r.Register("third", 3, func(context.Context) error { ran++; return errors.New("boom") })

	errs := r.Run(context.Background())
	if ran != 3 {
		t.Errorf("ran %d steps, want 3", ran)
	}
	if len(errs) != 2 {
		t.Fatalf("got %d errors, want 2", len(errs))
	}
	if !errors.Is(errs[0], errClose) {
		t.Errorf("errs[0] = %v, want wrapped %v", errs[0], errClose)
	}
	if errs[0].Error() != "first: close failed" {
		t.Errorf("errs[0] = %q, want step name prefix", errs[0])
	}
}

func TestRegistry_RunsOnce(t *testing.T) {
	r := NewRegistry()
	count := 0
	r.Register("step", 1, func(context.Context) error { count++; return nil })

	r.Run(context.Background())
	r.Run(context.Background())

	if count != 1 {
		t.Errorf("step ran %d times, want 1", count)
	}
	if !r.Closed() {
		t.Error("Closed() = false after Run")
	}

	r.Register("late", 1, func(context.Context) error { return nil })
	r.Register("nil", 1, nil)
	if r.Len() != 1 {
		t.Errorf("Len() = %d, want 1 after late registration", r.Len())
	}
}

func TestRegistry_PassesContext(t *testing.T) {
	r := NewRegistry()
	r.Register("slow", 1, func(ctx context.Context) error {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(time.Second):
			return nil
		}
	})

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()

	errs := r.Run(ctx)
	if len(errs) != 1 || !errors.Is(errs[0], context.DeadlineExceeded) {
		t.Errorf("Run() = %v, want deadline exceeded", errs)
	}
}
