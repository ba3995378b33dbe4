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

const getQuoteKey = "booking.quote"

type GetQuoteQuery struct {
	Property property.Key        `validate:"required,oneof=WH GH"`
	Range    daterange.DateRange `validate:"-"`
}

func (q GetQuoteQuery) Key() string { return getQuoteKey }

// GetQuoteHandler validates a stay for one house and prices it. A rejected
// stay is a normal answer, not an error.
type GetQuoteHandler struct {
	Availability policies.AvailabilityPort
	Pricing      policies.PricingPort
	Policy       booking.Policy
	Today        func() daterange.Date
	Recipient    string
	Outbox       outbox.Outbox
	Encoder      outbox.EventEncoder
	Logger       *slog.Logger
	Clock        func() time.Time
}

func (h *GetQuoteHandler) Handle(ctx context.Context, q GetQuoteQuery) (dto.Quote, error) {
	sets, err := h.Availability.Sets(ctx, q.Property)
	if err != nil {
		return dto.Quote{}, err
	}
	set := sets[0]
	outcome := booking.Validate(q.Range, stayRules{Policy: h.Policy, Today: h.Today}.policy(), set)

	resp := dto.NewQuote(q.Property, q.Range)
	resp.Nights = outcome.Nights
	resp.MinNights = outcome.MinNights
	resp.Accepted = outcome.Accepted()
	resp.Degraded = set.Degraded()
	if !outcome.Accepted() {
		resp.Reason = string(outcome.Reason)
		resp.Message = outcome.Message()
		resp.FirstBlocked = dto.FirstBlockedString(outcome.FirstBlocked)
		return resp, nil
	}

	est := h.Pricing.Estimate(q.Property, q.Range.CheckIn, q.Range.CheckOut)
	estimate := dto.MapEstimate(est)
	resp.Estimate = &estimate
	inq := dto.MapInquiry(inquiry.Compose(q.Property, q.Range, est), h.Recipient)
	resp.Inquiry = &inq

	ev := booking.PriceEstimateViewed{
		Property: q.Property,
		Range:    q.Range,
		Nights:   est.Nights,
		Total:    est.Total.Amount,
		Currency: est.Total.Currency,
		At:       clockOrNow(h.Clock),
	}
	if err := outbox.RecordDomainEvents(ctx, h.Outbox, h.Encoder, ev); err != nil && h.Logger != nil {
		h.Logger.WarnContext(ctx, "record quote event", "property", string(q.Property), "error", err)
	}
	return resp, nil
}

var _ queries.Handler[GetQuoteQuery, dto.Quote] = (*GetQuoteHandler)(nil)
