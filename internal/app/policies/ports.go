package policies

import (
	"context"

	"pucisca/internal/domain/availability"
	"pucisca/internal/domain/pricing"
	"pucisca/internal/domain/property"
	"pucisca/internal/domain/shared/daterange"
	"pucisca/internal/domain/shared/money"
)

// AvailabilityPort hands out the current blocked-date sets, one per key and in
// the order asked. Source failures are already folded into degraded sets; the
// only error is a cancelled context.
type AvailabilityPort interface {
	Sets(ctx context.Context, keys ...property.Key) ([]availability.BlockedSet, error)
}

// PricingPort is the rate table in force.
type PricingPort interface {
	Estimate(key property.Key, checkIn, checkOut daterange.Date) pricing.PriceEstimate
	Rules(key property.Key) []pricing.SeasonRule
	Fallback() money.Money
}

var _ PricingPort = (*pricing.RateTable)(nil)
