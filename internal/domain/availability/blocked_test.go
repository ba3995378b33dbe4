package availability

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pucisca/internal/domain/property"
	"pucisca/internal/domain/shared/daterange"
)

var fetchedAt = time.Date(2026, time.May, 1, 9, 0, 0, 0, time.UTC)

func mustSet(t *testing.T, raw ...string) BlockedSet {
	t.Helper()
	set, err := ParseBlockedSet(property.WhiteHouse, raw, fetchedAt)
	require.NoError(t, err)
	return set
}

func TestContainsByCanonicalForm(t *testing.T) {
	set := mustSet(t, "2026-07-01", "2026-07-02")
	assert.True(t, set.Contains(daterange.Of(2026, time.July, 1)))
	assert.True(t, set.Contains(daterange.FromTime(time.Date(2026, time.July, 2, 18, 0, 0, 0, time.Local))))
	assert.False(t, set.Contains(daterange.MustParse("2026-07-03")))
	assert.Equal(t, 2, set.Len())
	assert.False(t, set.Degraded())
}

func TestParseBlockedSetRejectsMalformedEntry(t *testing.T) {
	_, err := ParseBlockedSet(property.GlassHouse, []string{"2026-07-01", "July 2nd"}, fetchedAt)
	assert.ErrorIs(t, err, ErrMalformedPayload)
}

func TestFirstBlockedInSkipsCheckout(t *testing.T) {
	set := mustSet(t, "2026-07-04", "2026-07-02")
	r, _ := daterange.ParseRange("2026-07-01", "2026-07-05")
	first, ok := set.FirstBlockedIn(r)
	require.True(t, ok)
	assert.Equal(t, "2026-07-02", first.String())

	departOnBlocked, _ := daterange.ParseRange("2026-06-29", "2026-07-02")
	assert.False(t, set.HitsRange(departOnBlocked))
}

func TestDatesAreSorted(t *testing.T) {
	set := mustSet(t, "2026-08-10", "2026-07-01", "2026-07-15")
	assert.Equal(t, []string{"2026-07-01", "2026-07-15", "2026-08-10"}, set.Strings())
	dates := set.Dates()
	require.Len(t, dates, 3)
	assert.Equal(t, "2026-07-01", dates[0].String())
}

func TestFetchFailsOpen(t *testing.T) {
	boom := errors.New("dial tcp: connection refused")
	src := SourceFunc(func(ctx context.Context, key property.Key) ([]daterange.Date, error) {
		return nil, boom
	})
	outcome := Fetch(context.Background(), src, property.GlassHouse, fetchedAt)
	assert.True(t, outcome.Degraded())
	assert.ErrorIs(t, outcome.Err, ErrSourceUnreachable)
	assert.ErrorIs(t, outcome.Err, boom)
	assert.Equal(t, 0, outcome.Set.Len())
	assert.True(t, outcome.Set.Degraded())
	assert.Equal(t, property.GlassHouse, outcome.Set.Property())

	r, _ := daterange.ParseRange("2026-07-01", "2026-07-10")
	assert.False(t, outcome.Set.HitsRange(r))
}

func TestFetchWithoutSource(t *testing.T) {
	outcome := Fetch(context.Background(), nil, property.WhiteHouse, fetchedAt)
	assert.ErrorIs(t, outcome.Err, ErrSourceUnreachable)
}

func TestFetchSuccess(t *testing.T) {
	src := SourceFunc(func(ctx context.Context, key property.Key) ([]daterange.Date, error) {
		return []daterange.Date{daterange.MustParse("2026-07-01")}, nil
	})
	outcome := Fetch(context.Background(), src, property.WhiteHouse, fetchedAt)
	require.NoError(t, outcome.Err)
	assert.True(t, outcome.Set.Contains(daterange.MustParse("2026-07-01")))

	evs := OutcomeEvents(outcome)
	require.Len(t, evs, 1)
	assert.Equal(t, "availability.refreshed", evs[0].EventName())
}

func TestOutcomeEventsReportUnreachable(t *testing.T) {
	outcome := FetchOutcome{Set: EmptySet(property.GlassHouse, fetchedAt), Err: ErrSourceUnreachable}
	evs := OutcomeEvents(outcome)
	require.Len(t, evs, 2)
	assert.Equal(t, "availability.source_unreachable", evs[0].EventName())
	assert.Equal(t, "GH", evs[0].AggregateID())
	refreshed, ok := evs[1].(BlockedDatesRefreshed)
	require.True(t, ok)
	assert.True(t, refreshed.Degraded)
}
