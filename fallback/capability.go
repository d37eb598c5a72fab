package fallback

import "context"

// Input keys holding caller capabilities.
const (
	KeyFindExisting   = "findExisting"
	KeyUpdateExisting = "updateExisting"
)

// NaturalKey is the caller-domain uniqueness key of a workout log.
type NaturalKey struct {
	UserID    string `json:"userId" validate:"required"`
	ProgramID string `json:"programId" validate:"required"`
	WeekIndex int    `json:"weekIndex" validate:"gte=0"`
	DayIndex  int    `json:"dayIndex" validate:"gte=0"`
}

// Fields returns the key as detail fields.
func (k NaturalKey) Fields() map[string]any {
	return map[string]any{
		"userId":    k.UserID,
		"programId": k.ProgramID,
		"weekIndex": k.WeekIndex,
		"dayIndex":  k.DayIndex,
	}
}

// ExistingFinder locates the record that already satisfies a natural key.
type ExistingFinder interface {
	FindExisting(ctx context.Context, key NaturalKey) (id string, found bool, err error)
}

// ExistingUpdater applies payload to the record identified by id.
type ExistingUpdater interface {
	UpdateExisting(ctx context.Context, id string, payload map[string]any) (any, error)
}

// FinderFunc adapts a function to ExistingFinder.
type FinderFunc func(ctx context.Context, key NaturalKey) (string, bool, error)

// FindExisting calls f.
func (f FinderFunc) FindExisting(ctx context.Context, key NaturalKey) (string, bool, error) {
	return f(ctx, key)
}

// UpdaterFunc adapts a function to ExistingUpdater.
type UpdaterFunc func(ctx context.Context, id string, payload map[string]any) (any, error)

// UpdateExisting calls f.
func (f UpdaterFunc) UpdateExisting(ctx context.Context, id string, payload map[string]any) (any, error) {
	return f(ctx, id, payload)
}

// capabilities pulls the finder and updater out of input. Each may be given
// as an implementation of the interface or as a plain function with the
// matching signature. A finder that also implements ExistingUpdater serves as
// the updater when none is given.
func capabilities(input map[string]any) (ExistingFinder, ExistingUpdater) {
	var finder ExistingFinder
	switch f := input[KeyFindExisting].(type) {
	case ExistingFinder:
		finder = f
	case func(context.Context, NaturalKey) (string, bool, error):
		finder = FinderFunc(f)
	}

	var updater ExistingUpdater
	switch u := input[KeyUpdateExisting].(type) {
	case ExistingUpdater:
		updater = u
	case func(context.Context, string, map[string]any) (any, error):
		updater = UpdaterFunc(u)
	}
	if updater == nil {
		updater, _ = finder.(ExistingUpdater)
	}
	return finder, updater
}
