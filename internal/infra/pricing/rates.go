package pricing

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	domainpricing "pucisca/internal/domain/pricing"
	"pucisca/internal/domain/property"
	"pucisca/internal/domain/shared/daterange"
)

var ErrUnsupportedRatesFormat = errors.New("pricing: unsupported rates file format")

// RatesFile is the on-disk rate table. Dates are canonical YYYY-MM-DD
// strings; rules are kept in file order because the first match wins.
type RatesFile struct {
	Currency   string                 `json:"currency" yaml:"currency"`
	Fallback   int64                  `json:"fallback" yaml:"fallback"`
	Properties map[string][]SeasonRow `json:"properties" yaml:"properties"`
}

type SeasonRow struct {
	From    string `json:"from" yaml:"from"`
	To      string `json:"to" yaml:"to"`
	Nightly int64  `json:"nightly" yaml:"nightly"`
}

// Defaults apply when the file leaves currency or fallback unset.
type Defaults struct {
	Currency string
	Fallback int64
}

// LoadRateTable builds the rate table in force. An empty path gives the
// built-in 2026 table. Any malformed rule fails the load.
func LoadRateTable(path string, defaults Defaults) (*domainpricing.RateTable, error) {
	if strings.TrimSpace(path) == "" {
		cfg := domainpricing.DefaultConfig()
		if defaults.Currency != "" {
			cfg.Currency = defaults.Currency
		}
		if defaults.Fallback != 0 {
			cfg.Fallback = defaults.Fallback
		}
		return domainpricing.NewRateTable(cfg)
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read rates file: %w", err)
	}
	var file RatesFile
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		err = json.Unmarshal(raw, &file)
	case ".yaml", ".yml":
		err = yaml.Unmarshal(raw, &file)
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedRatesFormat, path)
	}
	if err != nil {
		return nil, fmt.Errorf("decode rates file %s: %w", path, err)
	}
	return file.Table(defaults)
}

// Table converts the file into a validated rate table.
func (f RatesFile) Table(defaults Defaults) (*domainpricing.RateTable, error) {
	cfg := domainpricing.Config{
		Rules:    make(map[property.Key][]domainpricing.SeasonRule, len(f.Properties)),
		Fallback: f.Fallback,
		Currency: f.Currency,
	}
	for name, rows := range f.Properties {
		key, err := property.ParseKey(name)
		if err != nil {
			return nil, fmt.Errorf("rates file: %w", err)
		}
		rules := make([]domainpricing.SeasonRule, 0, len(rows))
		for i, row := range rows {
			rule, err := row.rule()
			if err != nil {
				return nil, fmt.Errorf("rates file %s rule %d: %w", key, i, err)
			}
			rules = append(rules, rule)
		}
		cfg.Rules[key] = rules
	}
	applyDefaults(&cfg, defaults)
	return domainpricing.NewRateTable(cfg)
}

func (r SeasonRow) rule() (domainpricing.SeasonRule, error) {
	from, err := daterange.Parse(r.From)
	if err != nil {
		return domainpricing.SeasonRule{}, err
	}
	to, err := daterange.Parse(r.To)
	if err != nil {
		return domainpricing.SeasonRule{}, err
	}
	return domainpricing.SeasonRule{From: from, To: to, Nightly: r.Nightly}, nil
}

func applyDefaults(cfg *domainpricing.Config, d Defaults) {
	if cfg.Currency == "" {
		cfg.Currency = d.Currency
	}
	if cfg.Fallback == 0 {
		cfg.Fallback = d.Fallback
	}
}
