package recovery

import (
	"context"
	"strconv"

	"github.com/kbukum/recoverykit/observability"
)

// CheckHealth reports the manager as degraded while every recovery slot is
// taken, since new failures are then rejected without an attempt.
func (m *Manager) CheckHealth(_ context.Context) observability.Health {
	stats := m.Statistics()
	inUse := m.bulkhead.InUse()

	h := observability.Up("recovery")
	if m.bulkhead.Available() == 0 {
		h.Status = observability.HealthStatusDegraded
		h.Message = "all recovery slots in use"
	}
	h.Details = map[string]string{
		"in_flight":      strconv.Itoa(inUse),
		"max_concurrent": strconv.Itoa(m.bulkhead.MaxConcurrent()),
		"attempts":       strconv.Itoa(stats.TotalAttempts),
		"success_rate":   strconv.FormatFloat(stats.SuccessRate(), 'f', 2, 64),
	}
	return h
}
