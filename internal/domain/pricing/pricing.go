package pricing

import (
	"errors"
	"fmt"

	"pucisca/internal/domain/property"
	"pucisca/internal/domain/shared/daterange"
	"pucisca/internal/domain/shared/money"
)

const (
	// DefaultFallbackRate is charged for nights no season rule covers.
	DefaultFallbackRate int64 = 1200
	DefaultCurrency           = "EUR"
)

var (
	ErrInvalidRule     = errors.New("pricing: invalid season rule")
	ErrInvalidFallback = errors.New("pricing: fallback rate must be positive")
)

// SeasonRule prices every night between From and To, both inclusive.
type SeasonRule struct {
	From    daterange.Date `json:"from"`
	To      daterange.Date `json:"to"`
	Nightly int64          `json:"nightly"`
}

func (r SeasonRule) Matches(d daterange.Date) bool {
	return !d.Before(r.From) && !d.After(r.To)
}

func (r SeasonRule) Validate() error {
	if r.From.IsZero() || r.To.IsZero() {
		return fmt.Errorf("%w: missing bounds", ErrInvalidRule)
	}
	if r.To.Before(r.From) {
		return fmt.Errorf("%w: %s is after %s", ErrInvalidRule, r.From, r.To)
	}
	if r.Nightly <= 0 {
		return fmt.Errorf("%w: nightly rate %d", ErrInvalidRule, r.Nightly)
	}
	return nil
}

// Config is the static input a RateTable is built from.
type Config struct {
	Rules    map[property.Key][]SeasonRule
	Fallback int64
	Currency string
}

// RateTable resolves nightly rates. Rules are scanned in declaration order and
// the first match wins, even when later rules overlap it.
type RateTable struct {
	rules    map[property.Key][]SeasonRule
	fallback money.Money
}

func NewRateTable(cfg Config) (*RateTable, error) {
	currency := cfg.Currency
	if currency == "" {
		currency = DefaultCurrency
	}
	fallbackRate := cfg.Fallback
	if fallbackRate == 0 {
		fallbackRate = DefaultFallbackRate
	}
	if fallbackRate < 0 {
		return nil, ErrInvalidFallback
	}
	fallback, err := money.New(fallbackRate, currency)
	if err != nil {
		return nil, err
	}
	rules := make(map[property.Key][]SeasonRule, len(cfg.Rules))
	for key, list := range cfg.Rules {
		if !key.Valid() {
			return nil, fmt.Errorf("%w: %q", property.ErrUnknownProperty, key)
		}
		for i, rule := range list {
			if err := rule.Validate(); err != nil {
				return nil, fmt.Errorf("%s rule %d: %w", key, i, err)
			}
		}
		rules[key] = append([]SeasonRule(nil), list...)
	}
	return &RateTable{rules: rules, fallback: fallback}, nil
}

// MustRateTable panics on invalid configuration; useful in tests and fixtures.
func MustRateTable(cfg Config) *RateTable {
	t, err := NewRateTable(cfg)
	if err != nil {
		panic(err)
	}
	return t
}

func (t *RateTable) Currency() string     { return t.fallback.Currency }
func (t *RateTable) Fallback() money.Money { return t.fallback }

// Rules returns a copy of the ordered rule list for key.
func (t *RateTable) Rules(key property.Key) []SeasonRule {
	return append([]SeasonRule(nil), t.rules[key]...)
}

// Rate is a resolved nightly rate. Rule is the index of the matching rule, or
// -1 when the fallback applied.
type Rate struct {
	Amount money.Money
	Rule   int
}

func (r Rate) Fallback() bool {
	return r.Rule < 0
}

// NightlyRate resolves the rate for the night starting on d. Unknown
// properties and uncovered dates get the fallback rate.
func (t *RateTable) NightlyRate(key property.Key, d daterange.Date) Rate {
	for i, rule := range t.rules[key] {
		if rule.Matches(d) {
			return Rate{Amount: money.Money{Amount: rule.Nightly, Currency: t.fallback.Currency}, Rule: i}
		}
	}
	return Rate{Amount: t.fallback, Rule: -1}
}

type NightCharge struct {
	Date     daterange.Date `json:"date"`
	Rate     int64          `json:"rate"`
	Fallback bool           `json:"fallback,omitempty"`
}

type PriceEstimate struct {
	Nights          int           `json:"nights"`
	Total           money.Money   `json:"total"`
	AveragePerNight money.Money   `json:"average_per_night"`
	Breakdown       []NightCharge `json:"breakdown,omitempty"`
}

// UsedFallback reports whether any night fell outside every season rule.
func (p PriceEstimate) UsedFallback() bool {
	for _, c := range p.Breakdown {
		if c.Fallback {
			return true
		}
	}
	return false
}

// Estimate sums one nightly rate per night in [checkIn, checkOut). The average
// is rounded half away from zero. Empty or reversed ranges estimate to zero.
func (t *RateTable) Estimate(key property.Key, checkIn, checkOut daterange.Date) PriceEstimate {
	zero := money.Zero(t.fallback.Currency)
	nights := daterange.NightsBetween(checkIn, checkOut)
	if nights <= 0 {
		return PriceEstimate{Total: zero, AveragePerNight: zero}
	}
	r := daterange.DateRange{CheckIn: checkIn, CheckOut: checkOut}
	breakdown := make([]NightCharge, 0, nights)
	var total int64
	for d := range r.Days() {
		rate := t.NightlyRate(key, d)
		total += rate.Amount.Amount
		breakdown = append(breakdown, NightCharge{Date: d, Rate: rate.Amount.Amount, Fallback: rate.Fallback()})
	}
	sum := money.Money{Amount: total, Currency: t.fallback.Currency}
	avg, _ := sum.DivRound(int64(nights))
	return PriceEstimate{
		Nights:          nights,
		Total:           sum,
		AveragePerNight: avg,
		Breakdown:       breakdown,
	}
}
