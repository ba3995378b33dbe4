package booking

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pucisca/internal/app/commands"
	"pucisca/internal/app/dto"
	"pucisca/internal/app/middleware"
	"pucisca/internal/app/outbox"
	"pucisca/internal/domain/availability"
	"pucisca/internal/domain/booking"
	"pucisca/internal/domain/pricing"
	"pucisca/internal/domain/property"
	"pucisca/internal/domain/shared/daterange"
)

var at = time.Date(2026, time.May, 20, 10, 0, 0, 0, time.UTC)

type stubAvailability map[property.Key]availability.BlockedSet

func (s stubAvailability) Sets(_ context.Context, keys ...property.Key) ([]availability.BlockedSet, error) {
	out := make([]availability.BlockedSet, len(keys))
	for i, k := range keys {
		set, ok := s[k]
		if !ok {
			set = availability.NewBlockedSet(k, nil, at)
		}
		out[i] = set
	}
	return out, nil
}

func blocked(t *testing.T, key property.Key, days ...string) availability.BlockedSet {
	t.Helper()
	set, err := availability.ParseBlockedSet(key, days, at)
	require.NoError(t, err)
	return set
}

func stay(t *testing.T, in, out string) daterange.DateRange {
	t.Helper()
	r, err := daterange.ParseRange(in, out)
	require.NoError(t, err)
	return r
}

type memBox struct {
	records []outbox.EventRecord
}

func (b *memBox) Add(_ context.Context, r outbox.EventRecord) error {
	b.records = append(b.records, r)
	return nil
}

func (b *memBox) Flush(context.Context) error { return nil }

func TestGetQuoteAcrossSeasonBoundary(t *testing.T) {
	box := &memBox{}
	h := &GetQuoteHandler{
		Availability: stubAvailability{},
		Pricing:      pricing.DefaultTable(),
		Policy:       booking.DefaultPolicy(),
		Recipient:    "stay@example.com",
		Outbox:       box,
		Clock:        func() time.Time { return at },
	}

	res, err := h.Handle(context.Background(), GetQuoteQuery{Property: property.WhiteHouse, Range: stay(t, "2026-09-12", "2026-09-16")})
	require.NoError(t, err)
	assert.True(t, res.Accepted)
	assert.Equal(t, 4, res.Nights)
	require.NotNil(t, res.Estimate)
	assert.Equal(t, int64(7600), res.Estimate.Total.Amount)
	assert.Equal(t, "€7,600", res.Estimate.Total.Formatted)
	assert.Equal(t, int64(1900), res.Estimate.AveragePerNight.Amount)
	assert.False(t, res.Estimate.UsedFallback)
	require.NotNil(t, res.Inquiry)
	assert.Equal(t, "Booking request - The White House", res.Inquiry.Subject)
	assert.Contains(t, res.Inquiry.Body, "Estimated total: €7,600")
	assert.Contains(t, res.Inquiry.Mailto, "mailto:stay@example.com?")

	require.Len(t, box.records, 1)
	assert.Equal(t, "booking.price_estimate_viewed", box.records[0].Name)
	assert.Equal(t, "WH", box.records[0].Aggregate)
	var payload map[string]any
	require.NoError(t, json.Unmarshal(box.records[0].Payload, &payload))
	assert.EqualValues(t, 7600, payload["total"])
}

func TestGetQuoteRejections(t *testing.T) {
	tests := []struct {
		name     string
		set      availability.BlockedSet
		in, out  string
		reason   booking.Reason
		message  string
		firstHit string
	}{
		{
			name:    "too short even when blocked",
			set:     blocked(t, property.GlassHouse, "2026-07-01"),
			in:      "2026-07-01",
			out:     "2026-07-03",
			reason:  booking.ReasonTooShort,
			message: "Minimum stay is 3 nights.",
		},
		{
			name:     "gap inside the range",
			set:      blocked(t, property.GlassHouse, "2026-07-03"),
			in:       "2026-07-01",
			out:      "2026-07-06",
			reason:   booking.ReasonBlocked,
			message:  "That range includes unavailable dates. Please choose different dates.",
			firstHit: "2026-07-03",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			box := &memBox{}
			h := &GetQuoteHandler{
				Availability: stubAvailability{property.GlassHouse: tt.set},
				Pricing:      pricing.DefaultTable(),
				Outbox:       box,
			}
			res, err := h.Handle(context.Background(), GetQuoteQuery{Property: property.GlassHouse, Range: stay(t, tt.in, tt.out)})
			require.NoError(t, err)
			assert.False(t, res.Accepted)
			assert.Equal(t, string(tt.reason), res.Reason)
			assert.Equal(t, tt.message, res.Message)
			assert.Equal(t, tt.firstHit, res.FirstBlocked)
			assert.Nil(t, res.Estimate)
			assert.Nil(t, res.Inquiry)
			assert.Empty(t, box.records)
		})
	}
}

func TestGetQuoteCheckoutDayExempt(t *testing.T) {
	h := &GetQuoteHandler{
		Availability: stubAvailability{property.WhiteHouse: blocked(t, property.WhiteHouse, "2026-06-13")},
		Pricing:      pricing.DefaultTable(),
	}
	res, err := h.Handle(context.Background(), GetQuoteQuery{Property: property.WhiteHouse, Range: stay(t, "2026-06-10", "2026-06-13")})
	require.NoError(t, err)
	assert.True(t, res.Accepted)
	assert.Equal(t, int64(6300), res.Estimate.Total.Amount)
	assert.Equal(t, int64(2100), res.Estimate.AveragePerNight.Amount)
	assert.Empty(t, res.Inquiry.Mailto)
}

func TestGetQuoteRejectsPastCheckIn(t *testing.T) {
	h := &GetQuoteHandler{
		Availability: stubAvailability{},
		Pricing:      pricing.DefaultTable(),
		Today:        func() daterange.Date { return daterange.MustParse("2026-06-15") },
	}
	res, err := h.Handle(context.Background(), GetQuoteQuery{Property: property.WhiteHouse, Range: stay(t, "2026-06-10", "2026-06-13")})
	require.NoError(t, err)
	assert.False(t, res.Accepted)
	assert.Equal(t, string(booking.ReasonPast), res.Reason)
}

func TestGetQuoteReportsDegradedAvailability(t *testing.T) {
	h := &GetQuoteHandler{
		Availability: stubAvailability{property.WhiteHouse: availability.EmptySet(property.WhiteHouse, at)},
		Pricing:      pricing.DefaultTable(),
	}
	res, err := h.Handle(context.Background(), GetQuoteQuery{Property: property.WhiteHouse, Range: stay(t, "2027-01-01", "2027-01-04")})
	require.NoError(t, err)
	assert.True(t, res.Accepted)
	assert.True(t, res.Degraded)
	assert.True(t, res.Estimate.UsedFallback)
	assert.Equal(t, int64(3600), res.Estimate.Total.Amount)
}

func TestCheckCombinedBOnly(t *testing.T) {
	box := &memBox{}
	h := &CheckCombinedHandler{
		Availability: stubAvailability{property.WhiteHouse: blocked(t, property.WhiteHouse, "2026-07-01")},
		Recipient:    "stay@example.com",
		Outbox:       box,
	}
	res, err := h.Handle(context.Background(), CheckCombinedQuery{Range: stay(t, "2026-07-01", "2026-07-04")})
	require.NoError(t, err)

	assert.True(t, res.Accepted)
	assert.Equal(t, string(booking.VerdictBOnly), res.Verdict)
	assert.Equal(t, "Glass House Available", res.Label)
	require.Len(t, res.Properties, 2)
	assert.False(t, res.Properties[0].Available)
	assert.Equal(t, "2026-07-01", res.Properties[0].FirstBlocked)
	assert.Nil(t, res.Properties[0].Inquiry)
	require.NotNil(t, res.Properties[1].Inquiry)
	assert.False(t, res.Properties[1].Inquiry.Quoted)
	assert.NotContains(t, res.Properties[1].Inquiry.Body, "€")

	require.Len(t, box.records, 1)
	assert.Equal(t, "booking.combined_availability_checked", box.records[0].Name)
	assert.Equal(t, "combined", box.records[0].Aggregate)
}

func TestCheckCombinedTooShortBeforeAvailability(t *testing.T) {
	h := &CheckCombinedHandler{
		Availability: stubAvailability{
			property.WhiteHouse: blocked(t, property.WhiteHouse, "2026-07-01"),
			property.GlassHouse: blocked(t, property.GlassHouse, "2026-07-01"),
		},
	}
	res, err := h.Handle(context.Background(), CheckCombinedQuery{Range: stay(t, "2026-07-01", "2026-07-02")})
	require.NoError(t, err)
	assert.False(t, res.Accepted)
	assert.Equal(t, string(booking.ReasonTooShort), res.Reason)
	assert.Empty(t, res.Properties)
}

func TestCheckCombinedNoneAvailable(t *testing.T) {
	h := &CheckCombinedHandler{
		Availability: stubAvailability{
			property.WhiteHouse: blocked(t, property.WhiteHouse, "2026-07-02"),
			property.GlassHouse: blocked(t, property.GlassHouse, "2026-07-03"),
		},
	}
	res, err := h.Handle(context.Background(), CheckCombinedQuery{Range: stay(t, "2026-07-01", "2026-07-05")})
	require.NoError(t, err)
	assert.False(t, res.Accepted)
	assert.Equal(t, string(booking.ReasonNoneAvailable), res.Reason)
	assert.Equal(t, "Those dates aren't available in either house. Please choose different dates.", res.Message)
	assert.Len(t, res.Properties, 2)
}

func newComposeBus(avail stubAvailability, box *memBox) commands.Bus {
	bus := commands.NewInMemoryBus()
	commands.RegisterHandler[ComposeInquiryCommand, dto.InquiryDTO](bus, composeInquiryKey, &ComposeInquiryHandler{
		Availability: avail,
		Pricing:      pricing.DefaultTable(),
		Policy:       booking.DefaultPolicy(),
		Outbox:       box,
	})
	return middleware.ChainCommands(bus,
		middleware.Validation(middleware.NewStructValidator()),
		middleware.Idempotency(newIdemStore(), nil),
	)
}

type idemStore map[string]middleware.IdempotencyRecord

func newIdemStore() idemStore { return idemStore{} }

func (s idemStore) Get(_ context.Context, key string) (middleware.IdempotencyRecord, bool, error) {
	rec, ok := s[key]
	return rec, ok, nil
}

func (s idemStore) Save(_ context.Context, rec middleware.IdempotencyRecord) error {
	s[rec.Key] = rec
	return nil
}

func TestComposeInquirySingle(t *testing.T) {
	box := &memBox{}
	bus := newComposeBus(stubAvailability{}, box)
	res, err := commands.Dispatch[ComposeInquiryCommand, dto.InquiryDTO](context.Background(), bus, ComposeInquiryCommand{
		Property: property.WhiteHouse,
		Range:    stay(t, "2026-09-12", "2026-09-16"),
	})
	require.NoError(t, err)
	assert.True(t, res.Quoted)
	assert.Contains(t, res.Body, "Nights: 4\nEstimated total: €7,600\n")
	require.Len(t, box.records, 1)
	assert.Equal(t, "booking.inquiry_composed", box.records[0].Name)
}

func TestComposeInquiryRejectedIsTyped(t *testing.T) {
	bus := newComposeBus(stubAvailability{property.GlassHouse: blocked(t, property.GlassHouse, "2026-07-02")}, &memBox{})
	_, err := commands.Dispatch[ComposeInquiryCommand, dto.InquiryDTO](context.Background(), bus, ComposeInquiryCommand{
		Property: property.GlassHouse,
		Range:    stay(t, "2026-07-01", "2026-07-05"),
	})
	require.Error(t, err)
	assert.ErrorIs(t, err, booking.ErrRangeBlocked)
	var rejected *RejectedError
	require.ErrorAs(t, err, &rejected)
	assert.Equal(t, "2026-07-02", rejected.FirstBlocked.String())
}

func TestComposeInquiryCombinedPicksFreeHouse(t *testing.T) {
	avail := stubAvailability{property.WhiteHouse: blocked(t, property.WhiteHouse, "2026-07-01")}
	bus := newComposeBus(avail, &memBox{})
	r := stay(t, "2026-07-01", "2026-07-04")

	res, err := commands.Dispatch[ComposeInquiryCommand, dto.InquiryDTO](context.Background(), bus, ComposeInquiryCommand{
		Property: property.GlassHouse, Range: r, Combined: true,
	})
	require.NoError(t, err)
	assert.False(t, res.Quoted)
	assert.Equal(t, "The Glass House", res.PropertyDisplayName)

	_, err = commands.Dispatch[ComposeInquiryCommand, dto.InquiryDTO](context.Background(), bus, ComposeInquiryCommand{
		Property: property.WhiteHouse, Range: r, Combined: true,
	})
	assert.ErrorIs(t, err, booking.ErrRangeBlocked)
}

func TestComposeInquiryReplaysRejection(t *testing.T) {
	avail := stubAvailability{property.GlassHouse: blocked(t, property.GlassHouse, "2026-07-02")}
	bus := newComposeBus(avail, &memBox{})
	cmd := ComposeInquiryCommand{Property: property.GlassHouse, Range: stay(t, "2026-07-01", "2026-07-05"), IdempotencyKeyV: "abc"}

	_, first := bus.Dispatch(context.Background(), cmd)
	require.Error(t, first)
	// the house frees up but the key pins the first answer
	delete(avail, property.GlassHouse)
	_, second := bus.Dispatch(context.Background(), cmd)
	assert.ErrorIs(t, second, booking.ErrRangeBlocked)
	assert.Equal(t, first.Error(), second.Error())
}

func TestComposeInquiryValidatesProperty(t *testing.T) {
	bus := newComposeBus(stubAvailability{}, &memBox{})
	_, err := bus.Dispatch(context.Background(), ComposeInquiryCommand{Property: "XX", Range: stay(t, "2026-07-01", "2026-07-05")})
	assert.ErrorIs(t, err, middleware.ErrValidation)
}
