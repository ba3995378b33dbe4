package availability

import (
	"context"
	"errors"
	"fmt"
	"time"

	"pucisca/internal/domain/property"
	"pucisca/internal/domain/shared/daterange"
)

var ErrSourceUnreachable = errors.New("availability: source unreachable")

// Source answers "which days are unavailable for this property".
type Source interface {
	Blocked(ctx context.Context, key property.Key) ([]daterange.Date, error)
}

// SourceFunc adapts a function to Source.
type SourceFunc func(ctx context.Context, key property.Key) ([]daterange.Date, error)

func (f SourceFunc) Blocked(ctx context.Context, key property.Key) ([]daterange.Date, error) {
	return f(ctx, key)
}

// FetchOutcome is the result of consulting the source. Set is always usable:
// when Err is set it is an empty, degraded set.
type FetchOutcome struct {
	Set BlockedSet
	Err error
}

func (o FetchOutcome) Degraded() bool {
	return o.Err != nil
}

// Fetch consults src and never returns a failure to the caller; transport and
// decode errors are folded into the outcome.
func Fetch(ctx context.Context, src Source, key property.Key, now time.Time) FetchOutcome {
	if src == nil {
		return FetchOutcome{Set: EmptySet(key, now), Err: fmt.Errorf("%w: no source configured", ErrSourceUnreachable)}
	}
	dates, err := src.Blocked(ctx, key)
	if err != nil {
		if !errors.Is(err, ErrSourceUnreachable) {
			err = fmt.Errorf("%w: %w", ErrSourceUnreachable, err)
		}
		return FetchOutcome{Set: EmptySet(key, now), Err: err}
	}
	return FetchOutcome{Set: NewBlockedSet(key, dates, now)}
}
