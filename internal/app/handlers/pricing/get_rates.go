package pricing

import (
	"context"

	"pucisca/internal/app/dto"
	"pucisca/internal/app/policies"
	"pucisca/internal/app/queries"
	"pucisca/internal/domain/property"
)

const getRatesKey = "pricing.rates"

type GetRatesQuery struct {
	Property property.Key `validate:"required,oneof=WH GH"`
}

func (q GetRatesQuery) Key() string { return getRatesKey }

type GetRatesHandler struct {
	Pricing policies.PricingPort
}

func (h *GetRatesHandler) Handle(_ context.Context, q GetRatesQuery) (dto.Rates, error) {
	return dto.MapRates(q.Property, h.Pricing.Rules(q.Property), h.Pricing.Fallback()), nil
}

var _ queries.Handler[GetRatesQuery, dto.Rates] = (*GetRatesHandler)(nil)
