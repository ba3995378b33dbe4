package booking

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pucisca/internal/domain/availability"
	"pucisca/internal/domain/property"
	"pucisca/internal/domain/shared/daterange"
)

var at = time.Date(2026, time.May, 1, 0, 0, 0, 0, time.UTC)

func blocked(t *testing.T, key property.Key, days ...string) availability.BlockedSet {
	t.Helper()
	set, err := availability.ParseBlockedSet(key, days, at)
	require.NoError(t, err)
	return set
}

func rng(t *testing.T, in, out string) daterange.DateRange {
	t.Helper()
	r, err := daterange.ParseRange(in, out)
	require.NoError(t, err)
	return r
}

func TestValidateAccepts(t *testing.T) {
	out := Validate(rng(t, "2026-06-10", "2026-06-13"), DefaultPolicy(), blocked(t, property.WhiteHouse))
	assert.True(t, out.Accepted())
	assert.Equal(t, 3, out.Nights)
	assert.NoError(t, out.Err())
	assert.Empty(t, out.Message())
}

func TestValidateTooShortIgnoresBlockedSet(t *testing.T) {
	sets := []availability.BlockedSet{
		blocked(t, property.WhiteHouse),
		blocked(t, property.WhiteHouse, "2026-06-10", "2026-06-11"),
	}
	ranges := []daterange.DateRange{
		rng(t, "2026-06-10", "2026-06-10"),
		rng(t, "2026-06-10", "2026-06-11"),
		rng(t, "2026-06-10", "2026-06-12"),
	}
	for _, set := range sets {
		for _, r := range ranges {
			out := Validate(r, DefaultPolicy(), set)
			assert.Equal(t, ReasonTooShort, out.Reason, r.String())
			assert.ErrorIs(t, out.Err(), ErrRangeTooShort)
			assert.Nil(t, out.FirstBlocked)
		}
	}
}

func TestValidateReversedRangeIsTooShort(t *testing.T) {
	r := daterange.DateRange{CheckIn: daterange.MustParse("2026-06-13"), CheckOut: daterange.MustParse("2026-06-10")}
	out := Validate(r, DefaultPolicy(), blocked(t, property.WhiteHouse))
	assert.Equal(t, ReasonTooShort, out.Reason)
	assert.Equal(t, -3, out.Nights)
}

func TestValidateCheckoutDayIsExempt(t *testing.T) {
	out := Validate(rng(t, "2026-06-10", "2026-06-13"), DefaultPolicy(), blocked(t, property.WhiteHouse, "2026-06-13"))
	assert.True(t, out.Accepted())
}

func TestValidateGapInsideRangeBlocks(t *testing.T) {
	set := blocked(t, property.WhiteHouse, "2026-06-12")
	out := Validate(rng(t, "2026-06-10", "2026-06-15"), DefaultPolicy(), set)
	assert.Equal(t, ReasonBlocked, out.Reason)
	assert.ErrorIs(t, out.Err(), ErrRangeBlocked)
	require.NotNil(t, out.FirstBlocked)
	assert.Equal(t, "2026-06-12", out.FirstBlocked.String())
	assert.Equal(t, "That range includes unavailable dates. Please choose different dates.", out.Message())
}

func TestValidateCheckInDayBlocked(t *testing.T) {
	out := Validate(rng(t, "2026-06-10", "2026-06-13"), DefaultPolicy(), blocked(t, property.WhiteHouse, "2026-06-10"))
	assert.Equal(t, ReasonBlocked, out.Reason)
}

func TestValidateCustomMinimum(t *testing.T) {
	policy := Policy{MinNights: 7}
	out := Validate(rng(t, "2026-06-10", "2026-06-16"), policy, blocked(t, property.GlassHouse))
	assert.Equal(t, ReasonTooShort, out.Reason)
	assert.Equal(t, "Minimum stay is 7 nights.", out.Message())

	out = Validate(rng(t, "2026-06-10", "2026-06-17"), policy, blocked(t, property.GlassHouse))
	assert.True(t, out.Accepted())
}

func TestValidateZeroPolicyUsesDefault(t *testing.T) {
	out := Validate(rng(t, "2026-06-10", "2026-06-12"), Policy{}, blocked(t, property.GlassHouse))
	assert.Equal(t, ReasonTooShort, out.Reason)
	assert.Equal(t, DefaultMinNights, out.MinNights)
}

func TestValidateEarliest(t *testing.T) {
	policy := Policy{MinNights: 3, Earliest: daterange.MustParse("2026-10-16")}
	out := Validate(rng(t, "2026-10-10", "2026-10-20"), policy, blocked(t, property.WhiteHouse))
	assert.Equal(t, ReasonPast, out.Reason)
	assert.ErrorIs(t, out.Err(), ErrCheckInInPast)

	out = Validate(rng(t, "2026-10-16", "2026-10-19"), policy, blocked(t, property.WhiteHouse))
	assert.True(t, out.Accepted())

	// stay length is still reported first
	out = Validate(rng(t, "2026-10-10", "2026-10-11"), policy, blocked(t, property.WhiteHouse))
	assert.Equal(t, ReasonTooShort, out.Reason)
}

func TestValidateTooLongRejectedBeforeBlockedDates(t *testing.T) {
	policy := Policy{MinNights: 3, MaxNights: 14}
	set := blocked(t, property.WhiteHouse, "2026-06-11")

	out := Validate(rng(t, "2026-06-10", "2026-06-25"), policy, set)
	assert.Equal(t, ReasonTooLong, out.Reason)
	assert.ErrorIs(t, out.Err(), ErrRangeTooLong)
	assert.Nil(t, out.FirstBlocked)
	assert.Equal(t, "Maximum stay is 14 nights. Please choose a shorter range.", out.Message())

	out = Validate(rng(t, "2026-06-10", "2026-06-24"), policy, blocked(t, property.WhiteHouse))
	assert.True(t, out.Accepted())
}

func TestValidateDefaultMaximumStopsHugeRanges(t *testing.T) {
	out := Validate(rng(t, "0002-01-01", "9999-12-31"), Policy{}, blocked(t, property.GlassHouse))
	assert.Equal(t, ReasonTooLong, out.Reason)
	assert.Equal(t, DefaultMaxNights, out.MaxNights)
}
