package booking

import (
	"context"
	"time"

	"pucisca/internal/app/commands"
	"pucisca/internal/app/dto"
	"pucisca/internal/app/middleware"
	"pucisca/internal/app/outbox"
	"pucisca/internal/app/policies"
	"pucisca/internal/domain/booking"
	"pucisca/internal/domain/inquiry"
	"pucisca/internal/domain/property"
	"pucisca/internal/domain/shared/daterange"
)

const composeInquiryKey = "booking.compose_inquiry"

// ComposeInquiryCommand builds the e-mail inquiry for a house. Combined
// inquiries come from the combined picker and carry no price.
type ComposeInquiryCommand struct {
	Property        property.Key        `json:"property" validate:"required,oneof=WH GH"`
	Range           daterange.DateRange `json:"range" validate:"-"`
	Combined        bool                `json:"combined"`
	IdempotencyKeyV string              `json:"-"`
}

func (c ComposeInquiryCommand) Key() string { return composeInquiryKey }

func (c ComposeInquiryCommand) IdempotencyKey() string { return c.IdempotencyKeyV }

func (c ComposeInquiryCommand) ResultPrototype() any { return &dto.InquiryDTO{} }

func (c ComposeInquiryCommand) RestoreError(code, message string) error {
	return &RejectedError{Reason: booking.Reason(code), Message: message}
}

// RejectedError carries a stay rejection out of a command. It matches the
// domain sentinel of its reason with errors.Is.
type RejectedError struct {
	Reason       booking.Reason
	Message      string
	FirstBlocked *daterange.Date
}

func (e *RejectedError) Error() string     { return e.Message }
func (e *RejectedError) Unwrap() error     { return e.Reason.Err() }
func (e *RejectedError) ErrorCode() string { return string(e.Reason) }

type ComposeInquiryHandler struct {
	Availability policies.AvailabilityPort
	Pricing      policies.PricingPort
	Policy       booking.Policy
	Today        func() daterange.Date
	Recipient    string
	Outbox       outbox.Outbox
	Encoder      outbox.EventEncoder
	Clock        func() time.Time
}

func (h *ComposeInquiryHandler) Handle(ctx context.Context, cmd ComposeInquiryCommand) (dto.InquiryDTO, error) {
	var (
		inq inquiry.Inquiry
		err error
	)
	if cmd.Combined {
		inq, err = h.composeCombined(ctx, cmd)
	} else {
		inq, err = h.composeSingle(ctx, cmd)
	}
	if err != nil {
		return dto.InquiryDTO{}, err
	}
	ev := booking.InquiryComposed{
		Property: cmd.Property,
		Range:    cmd.Range,
		Nights:   cmd.Range.Nights(),
		Quoted:   inq.Quoted,
		At:       clockOrNow(h.Clock),
	}
	if err := outbox.RecordDomainEvents(ctx, h.Outbox, h.Encoder, ev); err != nil {
		return dto.InquiryDTO{}, err
	}
	return dto.MapInquiry(inq, h.Recipient), nil
}

func (h *ComposeInquiryHandler) composeSingle(ctx context.Context, cmd ComposeInquiryCommand) (inquiry.Inquiry, error) {
	sets, err := h.Availability.Sets(ctx, cmd.Property)
	if err != nil {
		return inquiry.Inquiry{}, err
	}
	outcome := booking.Validate(cmd.Range, stayRules{Policy: h.Policy, Today: h.Today}.policy(), sets[0])
	if !outcome.Accepted() {
		return inquiry.Inquiry{}, &RejectedError{Reason: outcome.Reason, Message: outcome.Message(), FirstBlocked: outcome.FirstBlocked}
	}
	est := h.Pricing.Estimate(cmd.Property, cmd.Range.CheckIn, cmd.Range.CheckOut)
	return inquiry.Compose(cmd.Property, cmd.Range, est), nil
}

func (h *ComposeInquiryHandler) composeCombined(ctx context.Context, cmd ComposeInquiryCommand) (inquiry.Inquiry, error) {
	sets, err := h.Availability.Sets(ctx, property.WhiteHouse, property.GlassHouse)
	if err != nil {
		return inquiry.Inquiry{}, err
	}
	outcome := booking.ResolveCombined(cmd.Range, stayRules{Policy: h.Policy, Today: h.Today}.policy(), sets[0], sets[1])
	if !outcome.Accepted() {
		return inquiry.Inquiry{}, &RejectedError{Reason: outcome.Reason, Message: outcome.Message()}
	}
	side := outcome.A
	if cmd.Property == outcome.B.Property {
		side = outcome.B
	}
	if !side.Available {
		// the other house is free, this one is not
		reason := booking.ReasonBlocked
		single := booking.Outcome{Reason: reason, MinNights: outcome.MinNights}
		return inquiry.Inquiry{}, &RejectedError{Reason: reason, Message: single.Message(), FirstBlocked: side.FirstBlocked}
	}
	return inquiry.ComposeCombined(cmd.Property, cmd.Range), nil
}

var (
	_ commands.Handler[ComposeInquiryCommand, dto.InquiryDTO] = (*ComposeInquiryHandler)(nil)
	_ middleware.IdempotentCommand                            = ComposeInquiryCommand{}
	_ middleware.ErrorRestorer                                = ComposeInquiryCommand{}
	_ middleware.CodedError                                   = (*RejectedError)(nil)
)
