package recovery

import (
	"time"

	"github.com/kbukum/recoverykit/errors"
)

// Profile names.
const (
	ProfileDefault  = "default"
	ProfileNetwork  = "network"
	ProfileCache    = "cache"
	ProfileDatabase = "database"
)

// JitterFraction is the uniform perturbation applied to a delay when a
// profile enables jitter.
const JitterFraction = 0.25

// Profile is a named retry tuning.
type Profile struct {
	MaxRetries        int
	BaseDelay         time.Duration
	MaxDelay          time.Duration
	BackoffMultiplier float64
	Jitter            bool
}

// ProfileOverride changes selected fields of a profile. Zero values and a nil
// Jitter leave the base value in place.
type ProfileOverride struct {
	MaxRetries        int           `yaml:"max_retries" mapstructure:"max_retries"`
	BaseDelay         time.Duration `yaml:"base_delay" mapstructure:"base_delay"`
	MaxDelay          time.Duration `yaml:"max_delay" mapstructure:"max_delay"`
	BackoffMultiplier float64       `yaml:"backoff_multiplier" mapstructure:"backoff_multiplier"`
	Jitter            *bool         `yaml:"jitter" mapstructure:"jitter"`
}

// Profiles maps profile names to tunings.
type Profiles map[string]Profile

// DefaultProfiles returns the built-in profiles. The network profile tolerates
// more attempts with longer backoff; the cache profile gives up quickly.
func DefaultProfiles() Profiles {
	return Profiles{
		ProfileDefault:  {MaxRetries: 3, BaseDelay: time.Second, MaxDelay: 10 * time.Second, BackoffMultiplier: 2, Jitter: true},
		ProfileNetwork:  {MaxRetries: 5, BaseDelay: 2 * time.Second, MaxDelay: 30 * time.Second, BackoffMultiplier: 2, Jitter: true},
		ProfileCache:    {MaxRetries: 2, BaseDelay: 500 * time.Millisecond, MaxDelay: 2 * time.Second, BackoffMultiplier: 1.5, Jitter: false},
		ProfileDatabase: {MaxRetries: 3, BaseDelay: time.Second, MaxDelay: 8 * time.Second, BackoffMultiplier: 2, Jitter: true},
	}
}

// Merge returns a copy of p with each override applied.
func (p Profiles) Merge(overrides map[string]ProfileOverride) Profiles {
	out := make(Profiles, len(p))
	for name, prof := range p {
		out[name] = prof
	}
	for name, o := range overrides {
		base := out[name]
		if o.MaxRetries > 0 {
			base.MaxRetries = o.MaxRetries
		}
		if o.BaseDelay > 0 {
			base.BaseDelay = o.BaseDelay
		}
		if o.MaxDelay > 0 {
			base.MaxDelay = o.MaxDelay
		}
		if o.BackoffMultiplier > 0 {
			base.BackoffMultiplier = o.BackoffMultiplier
		}
		if o.Jitter != nil {
			base.Jitter = *o.Jitter
		}
		out[name] = base
	}
	return out
}

// ProfileFor returns the profile name used for kind.
func ProfileFor(kind errors.Kind) string {
	switch kind.Family() {
	case errors.FamilyNetwork:
		return ProfileNetwork
	case errors.FamilyCache:
		return ProfileCache
	case errors.FamilyDatabase, errors.FamilyConstraint, errors.FamilyExercise:
		return ProfileDatabase
	default:
		return ProfileDefault
	}
}

// Plan is the recovery policy for one kind.
type Plan struct {
	Strategy          errors.Strategy
	Profile           string
	MaxRetries        int
	BaseDelay         time.Duration
	MaxDelay          time.Duration
	BackoffMultiplier float64
	Jitter            bool
}

// PlanFor resolves the plan for kind against p. Kinds outside the taxonomy and
// UNKNOWN_ERROR resolve to USER_INTERVENTION with no retries.
func (p Profiles) PlanFor(kind errors.Kind) Plan {
	if !kind.Valid() || kind == errors.KindUnknown {
		return Plan{Strategy: errors.StrategyUserIntervention, Profile: ProfileDefault}
	}

	name := ProfileFor(kind)
	prof, ok := p[name]
	if !ok {
		prof = DefaultProfiles()[name]
	}
	return Plan{
		Strategy:          errors.StrategyOf(kind),
		Profile:           name,
		MaxRetries:        prof.MaxRetries,
		BaseDelay:         prof.BaseDelay,
		MaxDelay:          prof.MaxDelay,
		BackoffMultiplier: prof.BackoffMultiplier,
		Jitter:            prof.Jitter,
	}
}

// StrategyFor resolves the plan for kind against the built-in profiles.
func StrategyFor(kind errors.Kind) Plan {
	return DefaultProfiles().PlanFor(kind)
}
