// pkg/resource/manager.go
package resource

import (
	"context"
	"errors"
	"fmt"
	"runtime"
	"sync"
	"sync/atomic"
	"time"

	"github.com/opd-ai/go-asteroids/pkg/config"
	"github.com/opd-ai/go-asteroids/pkg/logging"
)

var (
	// ErrHandlerLimit is returned by Go when the handler budget is spent.
	ErrHandlerLimit = errors.New("handler limit reached")
	// ErrShuttingDown is returned by Go once Shutdown has begun.
	ErrShuttingDown = errors.New("resource manager shutting down")
)

// Manager accounts for the goroutines serving connections and samples heap
// usage, so the server can refuse work it cannot afford.
type Manager struct {
	maxMemoryMB     int64
	maxHandlers     int64
	shutdownTimeout time.Duration
	checkInterval   time.Duration
	log             *logging.Logger

	handlers atomic.Int64
	memoryMB atomic.Int64
	wg       sync.WaitGroup

	mu        sync.Mutex
	running   bool
	closing   bool
	lastCheck time.Time
	cancel    context.CancelFunc
	done      chan struct{}
}

// NewManager creates a manager from the environment limits.
func NewManager(cfg *config.EnvironmentConfig, log *logging.Logger) *Manager {
	if log == nil {
		log = logging.Discard()
	}
	return &Manager{
		maxMemoryMB:     int64(cfg.MaxMemoryMB),
		maxHandlers:     int64(cfg.MaxGoroutines),
		shutdownTimeout: cfg.ShutdownTimeout,
		checkInterval:   cfg.ResourceCheckInterval,
		log:             log,
	}
}

// Start launches the periodic memory check.
func (m *Manager) Start() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.running {
		return fmt.Errorf("resource manager already running")
	}
	ctx, cancel := context.WithCancel(context.Background())
	m.running = true
	m.cancel = cancel
	m.done = make(chan struct{})
	go m.monitor(ctx, m.done)

	m.log.Info(ctx, "resource manager started",
		"max_memory_mb", m.maxMemoryMB,
		"max_handlers", m.maxHandlers,
		"check_interval", m.checkInterval,
	)
	return nil
}

// Go runs fn on a tracked goroutine. A panic in fn is logged and contained.
func (m *Manager) Go(ctx context.Context, name string, fn func(context.Context)) error {
	m.mu.Lock()
	if m.closing {
		m.mu.Unlock()
		return ErrShuttingDown
	}
	if n := m.handlers.Load(); n >= m.maxHandlers {
		m.mu.Unlock()
		m.log.Warn(ctx, "handler limit reached", "current", n, "limit", m.maxHandlers, "name", name)
		return fmt.Errorf("%w: %d/%d", ErrHandlerLimit, n, m.maxHandlers)
	}
	m.handlers.Add(1)
	m.wg.Add(1)
	m.mu.Unlock()

	go func() {
		defer m.wg.Done()
		defer m.handlers.Add(-1)
		defer func() {
			if r := recover(); r != nil {
				m.log.Error(ctx, "handler panic", fmt.Errorf("panic: %v", r), "name", name)
			}
		}()
		fn(ctx)
	}()
	return nil
}

// Handlers returns the number of running tracked goroutines.
func (m *Manager) Handlers() int64 { return m.handlers.Load() }

// MemoryMB returns the heap size seen by the last check.
func (m *Manager) MemoryMB() int64 { return m.memoryMB.Load() }

// CheckMemory samples the heap and reports whether it is over the limit.
func (m *Manager) CheckMemory() error {
	var ms runtime.MemStats
	runtime.ReadMemStats(&ms)

	current := int64(ms.Alloc / 1024 / 1024)
	m.memoryMB.Store(current)
	m.mu.Lock()
	m.lastCheck = time.Now()
	m.mu.Unlock()

	if current > m.maxMemoryMB {
		return fmt.Errorf("memory usage %dMB exceeds limit %dMB", current, m.maxMemoryMB)
	}
	return nil
}

// Stats is a point-in-time view of resource usage.
type Stats struct {
	Handlers    int64     `json:"handlers"`
	MaxHandlers int64     `json:"max_handlers"`
	MemoryMB    int64     `json:"memory_mb"`
	MaxMemoryMB int64     `json:"max_memory_mb"`
	LastCheck   time.Time `json:"last_check"`
}

// Stats returns current usage.
func (m *Manager) Stats() Stats {
	m.mu.Lock()
	last := m.lastCheck
	m.mu.Unlock()

	return Stats{
		Handlers:    m.Handlers(),
		MaxHandlers: m.maxHandlers,
		MemoryMB:    m.MemoryMB(),
		MaxMemoryMB: m.maxMemoryMB,
		LastCheck:   last,
	}
}

// Shutdown refuses new work, stops monitoring and waits for tracked
// goroutines until the shutdown timeout or ctx expires.
func (m *Manager) Shutdown(ctx context.Context) error {
	m.mu.Lock()
	if m.closing {
		m.mu.Unlock()
		return nil
	}
	m.closing = true
	cancel, done := m.cancel, m.done
	m.running = false
	m.mu.Unlock()

	if cancel != nil {
		cancel()
		<-done
	}

	ctx, stop := context.WithTimeout(ctx, m.shutdownTimeout)
	defer stop()

	finished := make(chan struct{})
	go func() {
		m.wg.Wait()
		close(finished)
	}()

	select {
	case <-finished:
		m.log.Info(ctx, "all handlers finished")
		return nil
	case <-ctx.Done():
		remaining := m.Handlers()
		m.log.Warn(ctx, "shutdown timeout with handlers still running", "remaining", remaining)
		return fmt.Errorf("shutdown timeout: %d handlers still running", remaining)
	}
}

func (m *Manager) monitor(ctx context.Context, done chan struct{}) {
	defer close(done)

	ticker := time.NewTicker(m.checkInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			if err := m.CheckMemory(); err != nil {
				m.log.Error(ctx, "memory limit exceeded", err, "limit_mb", m.maxMemoryMB)
			}
			m.log.Debug(ctx, "resource usage", "handlers", m.Handlers(), "memory_mb", m.MemoryMB())
		case <-ctx.Done():
			return
		}
	}
}
