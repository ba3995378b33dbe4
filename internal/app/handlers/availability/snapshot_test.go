package availability

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pucisca/internal/app/outbox"
	domainavailability "pucisca/internal/domain/availability"
	"pucisca/internal/domain/property"
	"pucisca/internal/domain/shared/daterange"
)

var fixedNow = time.Date(2026, time.June, 1, 8, 0, 0, 0, time.UTC)

type memBox struct {
	records []outbox.EventRecord
	flushed int
}

func (b *memBox) Add(_ context.Context, r outbox.EventRecord) error {
	b.records = append(b.records, r)
	return nil
}

func (b *memBox) Flush(context.Context) error {
	b.flushed++
	return nil
}

func (b *memBox) names() []string {
	out := make([]string, 0, len(b.records))
	for _, r := range b.records {
		out = append(out, r.Name)
	}
	return out
}

func dates(raw ...string) []daterange.Date {
	out := make([]daterange.Date, 0, len(raw))
	for _, r := range raw {
		out = append(out, daterange.MustParse(r))
	}
	return out
}

func newTestSnapshot(src domainavailability.Source, box outbox.Outbox) *Snapshot {
	return NewSnapshot(SnapshotConfig{
		Source: src,
		Outbox: box,
		Clock:  func() time.Time { return fixedNow },
	})
}

func TestSnapshotLoadsLazilyOnFirstRead(t *testing.T) {
	var calls atomic.Int32
	src := domainavailability.SourceFunc(func(_ context.Context, key property.Key) ([]daterange.Date, error) {
		calls.Add(1)
		if key == property.WhiteHouse {
			return dates("2026-07-01"), nil
		}
		return nil, nil
	})
	snap := newTestSnapshot(src, nil)
	assert.False(t, snap.Ready())

	sets, err := snap.Sets(context.Background(), property.GlassHouse, property.WhiteHouse)
	require.NoError(t, err)
	require.Len(t, sets, 2)
	assert.Equal(t, property.GlassHouse, sets[0].Property())
	assert.True(t, sets[1].Contains(daterange.MustParse("2026-07-01")))
	assert.True(t, snap.Ready())

	_, err = snap.Sets(context.Background(), property.WhiteHouse)
	require.NoError(t, err)
	assert.Equal(t, int32(2), calls.Load())
}

func TestSnapshotFailsOpenPerProperty(t *testing.T) {
	src := domainavailability.SourceFunc(func(_ context.Context, key property.Key) ([]daterange.Date, error) {
		if key == property.GlassHouse {
			return nil, errors.New("worker returned 502")
		}
		return dates("2026-07-01", "2026-07-02"), nil
	})
	box := &memBox{}
	snap := newTestSnapshot(src, box)
	require.NoError(t, snap.Refresh(context.Background()))

	sets, err := snap.Sets(context.Background(), property.WhiteHouse, property.GlassHouse)
	require.NoError(t, err)
	assert.False(t, sets[0].Degraded())
	assert.Equal(t, 2, sets[0].Len())
	assert.True(t, sets[1].Degraded())
	assert.Zero(t, sets[1].Len())

	assert.ElementsMatch(t, []string{
		"availability.refreshed",
		"availability.source_unreachable",
		"availability.refreshed",
	}, box.names())
	assert.Equal(t, 1, box.flushed)
}

func TestRefreshPropertyKeepsOtherHouse(t *testing.T) {
	var whFails atomic.Bool
	src := domainavailability.SourceFunc(func(_ context.Context, key property.Key) ([]daterange.Date, error) {
		if key == property.WhiteHouse && whFails.Load() {
			return nil, errors.New("down")
		}
		return dates("2026-08-10"), nil
	})
	snap := newTestSnapshot(src, nil)
	require.NoError(t, snap.Refresh(context.Background()))

	whFails.Store(true)
	require.NoError(t, snap.RefreshProperty(context.Background(), property.WhiteHouse))

	sets, err := snap.Sets(context.Background(), property.WhiteHouse, property.GlassHouse)
	require.NoError(t, err)
	assert.True(t, sets[0].Degraded())
	assert.False(t, sets[1].Degraded())
	assert.True(t, sets[1].Contains(daterange.MustParse("2026-08-10")))
}

func TestRefreshPropertyRejectsUnknownKey(t *testing.T) {
	snap := newTestSnapshot(nil, nil)
	assert.ErrorIs(t, snap.RefreshProperty(context.Background(), property.Key("XX")), property.ErrUnknownProperty)
}

func TestRefreshKeepsStateWhenCancelled(t *testing.T) {
	snap := newTestSnapshot(domainavailability.SourceFunc(func(context.Context, property.Key) ([]daterange.Date, error) {
		return nil, nil
	}), nil)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.ErrorIs(t, snap.Refresh(ctx), context.Canceled)
	assert.False(t, snap.Ready())
}

func TestGetCombinedBlockedDatesIntersects(t *testing.T) {
	src := domainavailability.SourceFunc(func(_ context.Context, key property.Key) ([]daterange.Date, error) {
		if key == property.WhiteHouse {
			return dates("2026-07-01", "2026-07-02", "2026-07-05"), nil
		}
		return dates("2026-07-02", "2026-07-05", "2026-07-09"), nil
	})
	h := &GetCombinedBlockedDatesHandler{Availability: newTestSnapshot(src, nil)}

	res, err := h.Handle(context.Background(), GetCombinedBlockedDatesQuery{})
	require.NoError(t, err)
	assert.Equal(t, []string{"2026-07-02", "2026-07-05"}, res.Blocked)
	assert.Len(t, res.Properties, 2)
	assert.False(t, res.Degraded)

	window, err := daterange.ParseRange("2026-07-01", "2026-07-04")
	require.NoError(t, err)
	res, err = h.Handle(context.Background(), GetCombinedBlockedDatesQuery{Window: &window})
	require.NoError(t, err)
	assert.Equal(t, []string{"2026-07-02"}, res.Blocked)
}

func TestGetBlockedDates(t *testing.T) {
	src := domainavailability.SourceFunc(func(context.Context, property.Key) ([]daterange.Date, error) {
		return dates("2026-07-03", "2026-07-01"), nil
	})
	h := &GetBlockedDatesHandler{Availability: newTestSnapshot(src, nil)}
	res, err := h.Handle(context.Background(), GetBlockedDatesQuery{Property: property.GlassHouse})
	require.NoError(t, err)
	assert.Equal(t, "GH", res.Property)
	assert.Equal(t, []string{"2026-07-01", "2026-07-03"}, res.Blocked)
	assert.Equal(t, fixedNow, res.FetchedAt)
}
