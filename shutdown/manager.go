package shutdown

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"aura_backend/logging"

	"go.uber.org/zap"
)

// DefaultTimeout bounds the whole shutdown sequence.
const DefaultTimeout = 30 * time.Second

// Manager ties signal handling to the Tracker and the Registry.
//
// The first SIGINT or SIGTERM cancels Context. A second one calls the force
// exit function, os.Exit(1) by default.
//
//	m := shutdown.NewManager(logger, shutdown.WithTimeout(cfg.ShutdownTimeout))
//	m.Register("http", shutdown.PriorityHTTP, server.Shutdown)
//	m.Register("database", shutdown.PriorityStorage, func(context.Context) error {
//	    return database.Close()
//	})
//	m.Start()
//	<-m.Context().Done()
//	err := m.Shutdown()
type Manager struct {
	logger  *logging.Logger
	timeout time.Duration
	force   func()

	ctx    context.Context
	cancel context.CancelFunc

	tracker  *Tracker
	registry *Registry

	mu        sync.Mutex
	started   bool
	shutdown  bool
	signals   int
	sigChan   chan os.Signal
	stopWatch chan struct{}
}

// Option configures a Manager.
type Option func(*Manager)

// WithTimeout sets the total shutdown budget.
func WithTimeout(timeout time.Duration) Option {
	return func(m *Manager) {
		if timeout > 0 {
			m.timeout = timeout
		}
	}
}

// WithForceExit replaces the function called on a second signal.
func WithForceExit(force func()) Option {
	return func(m *Manager) {
		m.force = force
	}
}

// NewManager returns a Manager whose context is live until the first
// signal or an explicit Cancel.
func NewManager(logger *logging.Logger, opts ...Option) *Manager {
	if logger == nil {
		logger = logging.NewNop()
	}
	ctx, cancel := context.WithCancel(context.Background())

	m := &Manager{
		logger:    logger.Named("shutdown"),
		timeout:   DefaultTimeout,
		force:     func() { os.Exit(1) },
		ctx:       ctx,
		cancel:    cancel,
		tracker:   NewTracker(),
		registry:  NewRegistry(),
		sigChan:   make(chan os.Signal, 2),
		stopWatch: make(chan struct{}),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Context is cancelled when shutdown begins.
func (m *Manager) Context() context.Context {
	return m.ctx
}

// Cancel begins shutdown without a signal, as a service manager's Stop does.
func (m *Manager) Cancel() {
	m.cancel()
}

// Register adds a cleanup function. See the Priority constants.
func (m *Manager) Register(name string, priority int, fn Func) {
	m.registry.Register(name, priority, fn)
	m.logger.Debug("registered shutdown step", zap.String("step", name), zap.Int("priority", priority))
}

// Start listens for SIGINT and SIGTERM. Repeated calls are no-ops.
func (m *Manager) Start() {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.started {
		return
	}
	m.started = true

	signal.Notify(m.sigChan, os.Interrupt, syscall.SIGTERM)
	go m.watch()
}

func (m *Manager) watch() {
	for {
		select {
		case sig := <-m.sigChan:
			m.handleSignal(sig)
		case <-m.stopWatch:
			return
		}
	}
}

func (m *Manager) handleSignal(sig os.Signal) {
	m.mu.Lock()
	m.signals++
	count := m.signals
	m.mu.Unlock()

	if count == 1 {
		m.logger.Info("shutdown signal received", zap.String("signal", sig.String()))
		m.cancel()
		return
	}
	m.logger.Warn("second signal received, exiting immediately", zap.String("signal", sig.String()))
	m.force()
}

// Track runs fn as an in-flight operation. Shutdown waits for tracked
// operations before releasing resources. It returns ErrShuttingDown without
// calling fn once shutdown has begun.
func (m *Manager) Track(ctx context.Context, name string, fn func(context.Context) error) error {
	if !m.tracker.Begin() {
		m.logger.Debug("operation refused", zap.String("operation", name))
		return ErrShuttingDown
	}
	defer m.tracker.End()

	if err := ctx.Err(); err != nil {
		return err
	}
	return fn(ctx)
}

// Shutdown refuses new operations, drains running ones and then runs the
// registered cleanup steps with whatever remains of the timeout. Only the
// first call does anything.
func (m *Manager) Shutdown() error {
	m.mu.Lock()
	if m.shutdown {
		m.mu.Unlock()
		return nil
	}
	m.shutdown = true
	started := m.started
	m.mu.Unlock()

	begin := time.Now()
	m.cancel()
	m.tracker.Close()

	if active := m.tracker.Active(); active > 0 {
		m.logger.Info("draining in-flight operations", zap.Int64("active", active))
	}
	if err := m.tracker.Wait(m.timeout); err != nil {
		m.logger.Warn("in-flight operations did not finish",
			zap.Int64("remaining", m.tracker.Active()),
			zap.Duration("waited", time.Since(begin)))
	}

	remaining := m.timeout - time.Since(begin)
	if remaining < time.Second {
		remaining = time.Second
	}
	ctx, cancel := context.WithTimeout(context.Background(), remaining)
	defer cancel()

	m.logger.Info("running shutdown steps", zap.Strings("steps", m.registry.Names()))
	errs := m.registry.Run(ctx)
	for _, err := range errs {
		m.logger.Error("shutdown step failed", zap.Error(err))
	}

	if started {
		signal.Stop(m.sigChan)
		close(m.stopWatch)
	}

	if len(errs) > 0 {
		return fmt.Errorf("shutdown finished with %d errors: %w", len(errs), errs[0])
	}
	m.logger.Info("shutdown complete", zap.Duration("duration", time.Since(begin)))
	return nil
}

// ActiveOperations returns the number of running tracked operations.
func (m *Manager) ActiveOperations() int64 {
	return m.tracker.Active()
}

// IsShuttingDown reports whether Shutdown has been called.
func (m *Manager) IsShuttingDown() bool {
	return m.tracker.Closed()
}

// Steps lists the registered cleanup steps in execution order.
func (m *Manager) Steps() []string {
	return m.registry.Names()
}
