package availability

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"gopkg.in/yaml.v3"

	domainavailability "pucisca/internal/domain/availability"
	"pucisca/internal/domain/property"
	"pucisca/internal/domain/shared/daterange"
)

// StaticSource serves fixed blocked dates, loaded once from a fixtures file
// keyed by property: {"WH": ["2026-07-01"], "GH": []}.
type StaticSource struct {
	dates map[property.Key][]daterange.Date
}

func NewStaticSource(dates map[property.Key][]daterange.Date) *StaticSource {
	cp := make(map[property.Key][]daterange.Date, len(dates))
	for k, v := range dates {
		cp[k] = slices.Clone(v)
	}
	return &StaticSource{dates: cp}
}

// LoadStaticSource reads a JSON or YAML fixtures file. An empty path gives a
// source with nothing blocked.
func LoadStaticSource(path string) (*StaticSource, error) {
	if strings.TrimSpace(path) == "" {
		return NewStaticSource(nil), nil
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read availability fixtures: %w", err)
	}
	var file map[string][]string
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		err = yaml.Unmarshal(raw, &file)
	default:
		err = json.Unmarshal(raw, &file)
	}
	if err != nil {
		return nil, fmt.Errorf("decode availability fixtures: %w", err)
	}

	dates := make(map[property.Key][]daterange.Date, len(file))
	for rawKey, values := range file {
		key, err := property.ParseKey(rawKey)
		if err != nil {
			return nil, fmt.Errorf("availability fixtures: %w", err)
		}
		parsed, err := parseDates(values)
		if err != nil {
			return nil, fmt.Errorf("availability fixtures %s: %w", key, err)
		}
		dates[key] = parsed
	}
	return &StaticSource{dates: dates}, nil
}

func (s *StaticSource) Blocked(ctx context.Context, key property.Key) ([]daterange.Date, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return slices.Clone(s.dates[key]), nil
}

var _ domainavailability.Source = (*StaticSource)(nil)
