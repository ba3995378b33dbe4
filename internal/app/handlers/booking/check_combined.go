package booking

import (
	"context"
	"log/slog"
	"time"

	"pucisca/internal/app/dto"
	"pucisca/internal/app/outbox"
	"pucisca/internal/app/policies"
	"pucisca/internal/app/queries"
	"pucisca/internal/domain/booking"
	"pucisca/internal/domain/inquiry"
	"pucisca/internal/domain/property"
	"pucisca/internal/domain/shared/daterange"
)

const checkCombinedKey = "booking.check_combined"

type CheckCombinedQuery struct {
	Range daterange.DateRange `validate:"-"`
}

func (q CheckCombinedQuery) Key() string { return checkCombinedKey }

// CheckCombinedHandler tells which house is free for a stay. Every free house
// comes with an unpriced inquiry.
type CheckCombinedHandler struct {
	Availability policies.AvailabilityPort
	Policy       booking.Policy
	Today        func() daterange.Date
	Recipient    string
	Outbox       outbox.Outbox
	Encoder      outbox.EventEncoder
	Logger       *slog.Logger
	Clock        func() time.Time
}

func (h *CheckCombinedHandler) Handle(ctx context.Context, q CheckCombinedQuery) (dto.Combined, error) {
	sets, err := h.Availability.Sets(ctx, property.WhiteHouse, property.GlassHouse)
	if err != nil {
		return dto.Combined{}, err
	}
	outcome := booking.ResolveCombined(q.Range, stayRules{Policy: h.Policy, Today: h.Today}.policy(), sets[0], sets[1])

	resp := dto.Combined{
		CheckIn:   q.Range.CheckIn.String(),
		CheckOut:  q.Range.CheckOut.String(),
		Nights:    outcome.Nights,
		MinNights: outcome.MinNights,
		Accepted:  outcome.Accepted(),
		Degraded:  sets[0].Degraded() || sets[1].Degraded(),
	}
	if !outcome.Accepted() {
		resp.Reason = string(outcome.Reason)
		resp.Message = outcome.Message()
	} else {
		resp.Verdict = string(outcome.Verdict())
		resp.Label = outcome.Label()
	}
	resp.Properties = make([]dto.PropertyAvailabilityDTO, 0, 2)
	// stay-rule rejections never reach the per-house check
	if outcome.Reason != booking.ReasonTooShort && outcome.Reason != booking.ReasonPast {
		for _, pa := range []booking.PropertyAvailability{outcome.A, outcome.B} {
			item := dto.PropertyAvailabilityDTO{
				Property:            string(pa.Property),
				PropertyDisplayName: pa.Property.DisplayName(),
				Available:           pa.Available,
				FirstBlocked:        dto.FirstBlockedString(pa.FirstBlocked),
			}
			if pa.Available {
				inq := dto.MapInquiry(inquiry.ComposeCombined(pa.Property, q.Range), h.Recipient)
				item.Inquiry = &inq
			}
			resp.Properties = append(resp.Properties, item)
		}
	}

	if outcome.Accepted() {
		ev := booking.CombinedAvailabilityChecked{
			Range:     q.Range,
			Nights:    outcome.Nights,
			Available: outcome.Available(),
			At:        clockOrNow(h.Clock),
		}
		if err := outbox.RecordDomainEvents(ctx, h.Outbox, h.Encoder, ev); err != nil && h.Logger != nil {
			h.Logger.WarnContext(ctx, "record combined check event", "error", err)
		}
	}
	return resp, nil
}

var _ queries.Handler[CheckCombinedQuery, dto.Combined] = (*CheckCombinedHandler)(nil)
