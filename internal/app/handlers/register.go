package handlers

import (
	"log/slog"
	"time"

	"pucisca/internal/app/commands"
	"pucisca/internal/app/dto"
	"pucisca/internal/app/handlers/availability"
	"pucisca/internal/app/handlers/booking"
	"pucisca/internal/app/handlers/pricing"
	"pucisca/internal/app/outbox"
	"pucisca/internal/app/policies"
	"pucisca/internal/app/queries"
	domainbooking "pucisca/internal/domain/booking"
	"pucisca/internal/domain/shared/daterange"
)

// Deps is what the query and command handlers share.
type Deps struct {
	Availability policies.AvailabilityPort
	Pricing      policies.PricingPort
	Policy       domainbooking.Policy
	Today        func() daterange.Date
	Recipient    string
	Outbox       outbox.Outbox
	Encoder      outbox.EventEncoder
	Logger       *slog.Logger
	Clock        func() time.Time
}

func RegisterQueries(bus *queries.InMemoryBus, d Deps) {
	queries.Register[availability.GetBlockedDatesQuery, dto.BlockedDates](bus, &availability.GetBlockedDatesHandler{Availability: d.Availability})
	queries.Register[availability.GetCombinedBlockedDatesQuery, dto.CombinedBlockedDates](bus, &availability.GetCombinedBlockedDatesHandler{Availability: d.Availability})
	queries.Register[booking.GetQuoteQuery, dto.Quote](bus, &booking.GetQuoteHandler{
		Availability: d.Availability,
		Pricing:      d.Pricing,
		Policy:       d.Policy,
		Today:        d.Today,
		Recipient:    d.Recipient,
		Outbox:       d.Outbox,
		Encoder:      d.Encoder,
		Logger:       d.Logger,
		Clock:        d.Clock,
	})
	queries.Register[booking.CheckCombinedQuery, dto.Combined](bus, &booking.CheckCombinedHandler{
		Availability: d.Availability,
		Policy:       d.Policy,
		Today:        d.Today,
		Recipient:    d.Recipient,
		Outbox:       d.Outbox,
		Encoder:      d.Encoder,
		Logger:       d.Logger,
		Clock:        d.Clock,
	})
	queries.Register[pricing.GetRatesQuery, dto.Rates](bus, &pricing.GetRatesHandler{Pricing: d.Pricing})
}

func RegisterCommands(bus *commands.InMemoryBus, d Deps) {
	commands.Register[booking.ComposeInquiryCommand, dto.InquiryDTO](bus, &booking.ComposeInquiryHandler{
		Availability: d.Availability,
		Pricing:      d.Pricing,
		Policy:       d.Policy,
		Today:        d.Today,
		Recipient:    d.Recipient,
		Outbox:       d.Outbox,
		Encoder:      d.Encoder,
		Clock:        d.Clock,
	})
}
