package shutdown

import (
	"context"
	"fmt"
	"sort"
	"sync"
)

// Func releases one resource during shutdown. It should return promptly
// once ctx is done.
type Func func(ctx context.Context) error

// Priorities for the service's cleanup steps. Lower runs first.
const (
	PriorityHTTP    = 10 // stop accepting requests and drain handlers
	PriorityWorkers = 20 // flush background writers
	PriorityStorage = 30 // close the history database
	PriorityLogs    = 90 // flush the logger last
)

type entry struct {
	name     string
	priority int
	seq      int
	fn       Func
}

// Registry keeps cleanup functions ordered by priority. Functions with the
// same priority run in registration order.
type Registry struct {
	mu      sync.Mutex
	entries []entry
	closed  bool
}

// NewRegistry returns an empty Registry.
func NewRegistry() *Registry {
	return &Registry{}
}

// Register adds fn under name. It is a no-op once Run has been called.
func (r *Registry) Register(name string, priority int, fn Func) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.closed || fn == nil {
		return
	}
	r.entries = append(r.entries, entry{name: name, priority: priority, seq: len(r.entries), fn: fn})
}

// Run calls every registered function in priority order and collects the
// failures. Every function runs even when an earlier one fails. Run only
// executes once; later calls return nil.
func (r *Registry) Run(ctx context.Context) []error {
	r.mu.Lock()
	if r.closed {
		r.mu.Unlock()
		return nil
	}
	r.closed = true
	ordered := r.sortedLocked()
	r.mu.Unlock()

	var errs []error
	for _, e := range ordered {
		if err := e.fn(ctx); err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", e.name, err))
		}
	}
	return errs
}

// Names lists the registered functions in the order Run calls them.
func (r *Registry) Names() []string {
	r.mu.Lock()
	defer r.mu.Unlock()

	ordered := r.sortedLocked()
	names := make([]string, len(ordered))
	for i, e := range ordered {
		names[i] = e.name
	}
	return names
}

// Len returns the number of registered functions.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.entries)
}

// Closed reports whether Run has been called.
func (r *Registry) Closed() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.closed
}

func (r *Registry) sortedLocked() []entry {
	ordered := make([]entry, len(r.entries))
	copy(ordered, r.entries)
	sort.Slice(ordered, func(i, j int) bool {
		if ordered[i].priority != ordered[j].priority {
			return ordered[i].priority < ordered[j].priority
		}
		return ordered[i].seq < ordered[j].seq
	})
	return ordered
}
