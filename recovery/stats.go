package recovery

import "github.com/kbukum/recoverykit/errors"

// Tally counts outcomes for one strategy or kind.
type Tally struct {
	Attempts  int `json:"attempts"`
	Successes int `json:"successes"`
	Failures  int `json:"failures"`
}

// Statistics aggregates Recover outcomes for one Manager. Every call counts
// once, whatever the number of operation invocations. Rejected calls are
// counted as failures and additionally in Rejected.
type Statistics struct {
	TotalAttempts int                       `json:"totalAttempts"`
	Successful    int                       `json:"successfulRecoveries"`
	Failed        int                       `json:"failedRecoveries"`
	Rejected      int                       `json:"rejectedRecoveries"`
	ByStrategy    map[errors.Strategy]Tally `json:"byStrategy"`
	ByKind        map[errors.Kind]Tally     `json:"byKind"`
}

func newStatistics() Statistics {
	return Statistics{
		ByStrategy: make(map[errors.Strategy]Tally),
		ByKind:     make(map[errors.Kind]Tally),
	}
}

func (s *Statistics) record(kind errors.Kind, strategy errors.Strategy, success, rejected bool) {
	s.TotalAttempts++
	if success {
		s.Successful++
	} else {
		s.Failed++
	}
	if rejected {
		s.Rejected++
	}
	s.ByStrategy[strategy] = s.ByStrategy[strategy].add(success)
	s.ByKind[kind] = s.ByKind[kind].add(success)
}

func (t Tally) add(success bool) Tally {
	t.Attempts++
	if success {
		t.Successes++
	} else {
		t.Failures++
	}
	return t
}

func (s Statistics) clone() Statistics {
	out := s
	out.ByStrategy = make(map[errors.Strategy]Tally, len(s.ByStrategy))
	for k, v := range s.ByStrategy {
		out.ByStrategy[k] = v
	}
	out.ByKind = make(map[errors.Kind]Tally, len(s.ByKind))
	for k, v := range s.ByKind {
		out.ByKind[k] = v
	}
	return out
}

// SuccessRate returns Successful/TotalAttempts, or 0 before any attempt.
func (s Statistics) SuccessRate() float64 {
	if s.TotalAttempts == 0 {
		return 0
	}
	return float64(s.Successful) / float64(s.TotalAttempts)
}
