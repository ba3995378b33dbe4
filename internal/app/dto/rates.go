package dto

import (
	"pucisca/internal/domain/pricing"
	"pucisca/internal/domain/property"
	"pucisca/internal/domain/shared/money"
)

type SeasonDTO struct {
	From    string `json:"from"`
	To      string `json:"to"`
	Nightly int64  `json:"nightly"`
}

// Rates is the rate table in force for one house, in match order.
type Rates struct {
	Property            string      `json:"property"`
	PropertyDisplayName string      `json:"property_display_name"`
	Currency            string      `json:"currency"`
	Fallback            MoneyDTO    `json:"fallback"`
	Seasons             []SeasonDTO `json:"seasons"`
}

func MapRates(key property.Key, rules []pricing.SeasonRule, fallback money.Money) Rates {
	out := Rates{
		Property:            string(key),
		PropertyDisplayName: key.DisplayName(),
		Currency:            fallback.Currency,
		Fallback:            MapMoney(fallback),
		Seasons:             make([]SeasonDTO, 0, len(rules)),
	}
	for _, r := range rules {
		out.Seasons = append(out.Seasons, SeasonDTO{From: r.From.String(), To: r.To.String(), Nightly: r.Nightly})
	}
	return out
}
