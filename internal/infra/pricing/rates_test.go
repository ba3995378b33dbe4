package pricing

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	domainpricing "pucisca/internal/domain/pricing"
	"pucisca/internal/domain/property"
	"pucisca/internal/domain/shared/daterange"
)

func writeFile(t *testing.T, name, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestLoadRateTableDefaultsToBuiltIn(t *testing.T) {
	table, err := LoadRateTable("", Defaults{})
	require.NoError(t, err)
	assert.Equal(t, domainpricing.Season2026(), table.Rules(property.WhiteHouse))
	assert.Equal(t, int64(1200), table.Fallback().Amount)
}

func TestLoadRateTableBuiltInHonoursOverrides(t *testing.T) {
	table, err := LoadRateTable("", Defaults{Currency: "GBP", Fallback: 990})
	require.NoError(t, err)
	assert.Equal(t, "GBP", table.Currency())
	assert.Equal(t, int64(990), table.Fallback().Amount)
}

func TestLoadRateTableYAML(t *testing.T) {
	path := writeFile(t, "rates.yaml", `
properties:
  wh:
    - {from: "2027-06-01", to: "2027-08-31", nightly: 2400}
    - {from: "2027-06-01", to: "2027-12-31", nightly: 1500}
  GH:
    - {from: "2027-06-01", to: "2027-08-31", nightly: 2600}
`)
	table, err := LoadRateTable(path, Defaults{Currency: "EUR", Fallback: 1300})
	require.NoError(t, err)

	rate := table.NightlyRate(property.WhiteHouse, daterange.MustParse("2027-07-01"))
	assert.Equal(t, int64(2400), rate.Amount.Amount)
	assert.Equal(t, 0, rate.Rule)
	assert.Equal(t, int64(1500), table.NightlyRate(property.WhiteHouse, daterange.MustParse("2027-09-01")).Amount.Amount)
	assert.Equal(t, int64(2600), table.NightlyRate(property.GlassHouse, daterange.MustParse("2027-07-01")).Amount.Amount)
	assert.Equal(t, int64(1300), table.Fallback().Amount)
}

func TestLoadRateTableJSONKeepsFileFallback(t *testing.T) {
	path := writeFile(t, "rates.json", `{
  "currency": "EUR",
  "fallback": 1100,
  "properties": {"GH": [{"from": "2027-05-01", "to": "2027-05-31", "nightly": 1650}]}
}`)
	table, err := LoadRateTable(path, Defaults{Fallback: 1200})
	require.NoError(t, err)
	assert.Equal(t, int64(1100), table.Fallback().Amount)
	assert.Empty(t, table.Rules(property.WhiteHouse))
}

func TestLoadRateTableFailsLoudly(t *testing.T) {
	tests := map[string]struct {
		name string
		body string
	}{
		"bad date":       {"rates.json", `{"properties": {"WH": [{"from": "2027-5-1", "to": "2027-05-31", "nightly": 1}]}}`},
		"reversed rule":  {"rates.json", `{"properties": {"WH": [{"from": "2027-06-01", "to": "2027-05-31", "nightly": 1}]}}`},
		"zero rate":      {"rates.json", `{"properties": {"WH": [{"from": "2027-05-01", "to": "2027-05-31", "nightly": 0}]}}`},
		"unknown house":  {"rates.json", `{"properties": {"XX": []}}`},
		"broken yaml":    {"rates.yml", "properties: [\n"},
		"unknown format": {"rates.toml", ""},
	}
	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := LoadRateTable(writeFile(t, tt.name, tt.body), Defaults{})
			assert.Error(t, err)
		})
	}
	_, err := LoadRateTable(filepath.Join(t.TempDir(), "missing.json"), Defaults{})
	assert.Error(t, err)
}
