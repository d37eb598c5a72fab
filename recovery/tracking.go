package recovery

import (
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/kbukum/recoverykit/errors"
)

// AttemptRecord describes a recovery in flight. It lives from entry to exit
// of one Recover call.
type AttemptRecord struct {
	ID        string         `json:"id"`
	ErrorID   string         `json:"errorId"`
	Kind      errors.Kind    `json:"kind"`
	Operation string         `json:"operation,omitempty"`
	StartedAt time.Time      `json:"startedAt"`
	Input     map[string]any `json:"-"`
}

func (m *Manager) track(te *errors.TypedError, input map[string]any) AttemptRecord {
	op, _ := input[errors.DetailOperation].(string)
	if op == "" {
		op, _ = te.Details[errors.DetailOperation].(string)
	}
	rec := AttemptRecord{
		ID:        uuid.NewString(),
		ErrorID:   te.ID,
		Kind:      te.Kind,
		Operation: op,
		StartedAt: time.Now(),
		Input:     input,
	}

	m.mu.Lock()
	m.active[rec.ID] = rec
	m.mu.Unlock()
	return rec
}

func (m *Manager) untrack(id string) {
	m.mu.Lock()
	delete(m.active, id)
	m.mu.Unlock()
}

// ActiveRecoveries returns the recoveries in flight, oldest first.
func (m *Manager) ActiveRecoveries() []AttemptRecord {
	m.mu.Lock()
	out := make([]AttemptRecord, 0, len(m.active))
	for _, rec := range m.active {
		out = append(out, rec)
	}
	m.mu.Unlock()

	sort.Slice(out, func(i, j int) bool { return out[i].StartedAt.Before(out[j].StartedAt) })
	return out
}
