package pricing

import (
	"pucisca/internal/domain/property"
	"pucisca/internal/domain/shared/daterange"
)

func season(from, to string, nightly int64) SeasonRule {
	return SeasonRule{From: daterange.MustParse(from), To: daterange.MustParse(to), Nightly: nightly}
}

// Season2026 is the published 2026 price list. Both houses currently share it.
func Season2026() []SeasonRule {
	return []SeasonRule{
		season("2026-04-10", "2026-06-04", 1700),
		season("2026-06-05", "2026-09-13", 2100),
		season("2026-09-14", "2026-11-04", 1700),
	}
}

// DefaultConfig prices both houses with the 2026 list and the 1200 fallback.
func DefaultConfig() Config {
	return Config{
		Rules: map[property.Key][]SeasonRule{
			property.WhiteHouse: Season2026(),
			property.GlassHouse: Season2026(),
		},
		Fallback: DefaultFallbackRate,
		Currency: DefaultCurrency,
	}
}

func DefaultTable() *RateTable {
	return MustRateTable(DefaultConfig())
}
