// pkg/resource/health.go
package resource

import (
	"context"
	"fmt"
)

// HealthCheck reports the manager as unhealthy when memory is over its
// limit or handlers pass 80% of their budget.
type HealthCheck struct {
	manager *Manager
}

// NewHealthCheck wraps m for the health checker.
func NewHealthCheck(m *Manager) *HealthCheck {
	return &HealthCheck{manager: m}
}

// Name returns the name of this health check.
func (h *HealthCheck) Name() string { return "resources" }

// Check verifies that resource usage is within acceptable limits.
func (h *HealthCheck) Check(ctx context.Context) error {
	stats := h.manager.Stats()

	if stats.MemoryUsageOver() {
		return fmt.Errorf("memory usage %dMB exceeds limit %dMB", stats.MemoryMB, stats.MaxMemoryMB)
	}

	threshold := stats.MaxHandlers * 8 / 10
	if stats.Handlers > threshold {
		return fmt.Errorf("handler count %d exceeds 80%% threshold (%d/%d)",
			stats.Handlers, threshold, stats.MaxHandlers)
	}
	return nil
}

// MemoryUsageOver reports whether the sampled heap is past the limit.
func (s Stats) MemoryUsageOver() bool { return s.MemoryMB > s.MaxMemoryMB }
