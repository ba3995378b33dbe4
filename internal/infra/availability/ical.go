package availability

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"slices"
	"strings"
	"time"

	domainavailability "pucisca/internal/domain/availability"
	"pucisca/internal/domain/property"
	"pucisca/internal/domain/shared/daterange"
)

// maxEventDays bounds how many days a single VEVENT may block.
const maxEventDays = 731

var ErrFeedNotConfigured = errors.New("availability: no ical feed for property")

// ICalSource reads blocked dates from per-property iCal exports such as the
// ones booking platforms publish. Every VEVENT blocks the days in
// [DTSTART, DTEND).
type ICalSource struct {
	Client *http.Client
	Feeds  map[property.Key]string
	Logger *slog.Logger
}

func NewICalSource(feeds map[property.Key]string, timeout time.Duration, logger *slog.Logger) *ICalSource {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &ICalSource{
		Client: &http.Client{Timeout: timeout},
		Feeds:  feeds,
		Logger: logger,
	}
}

func (s *ICalSource) Blocked(ctx context.Context, key property.Key) ([]daterange.Date, error) {
	if s == nil || s.Client == nil {
		return nil, errors.New("availability: http client not configured")
	}
	feed, ok := s.Feeds[key]
	if !ok || strings.TrimSpace(feed) == "" {
		return nil, fmt.Errorf("%w: %s", ErrFeedNotConfigured, key)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, feed, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "text/calendar")

	resp, err := s.Client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetching calendar: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("calendar returned status %d", resp.StatusCode)
	}

	spans, err := ParseICal(resp.Body)
	if err != nil {
		return nil, err
	}
	if s.Logger != nil {
		s.Logger.Debug("ical feed parsed", "property", key, "events", len(spans))
	}
	return expandSpans(spans), nil
}

// Span is one parsed VEVENT reduced to whole days. End is exclusive.
type Span struct {
	UID   string
	Start daterange.Date
	End   daterange.Date
}

// ParseICal extracts VEVENT spans from an iCalendar stream. Events without a
// usable DTSTART are skipped; a missing or non-advancing DTEND blocks the
// start day only.
func ParseICal(r io.Reader) ([]Span, error) {
	var (
		spans   []Span
		current *icalEvent
		field   string
		value   strings.Builder
	)

	flush := func() {
		if field != "" && current != nil {
			current.set(field, value.String())
		}
		field = ""
		value.Reset()
	}

	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		line := strings.TrimRight(scanner.Text(), "\r")

		// folded continuation line
		if strings.HasPrefix(line, " ") || strings.HasPrefix(line, "\t") {
			if field != "" {
				value.WriteString(line[1:])
			}
			continue
		}
		flush()

		name, val, ok := strings.Cut(line, ":")
		if !ok {
			continue
		}
		if i := strings.IndexByte(name, ';'); i >= 0 {
			name = name[:i]
		}
		name = strings.ToUpper(strings.TrimSpace(name))

		switch name {
		case "BEGIN":
			if strings.EqualFold(val, "VEVENT") {
				current = &icalEvent{}
			}
		case "END":
			if strings.EqualFold(val, "VEVENT") && current != nil {
				if span, ok := current.span(); ok {
					spans = append(spans, span)
				}
				current = nil
			}
		case "UID", "DTSTART", "DTEND":
			if current != nil {
				field = name
				value.WriteString(val)
			}
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("reading calendar: %w", err)
	}
	return spans, nil
}

type icalEvent struct {
	uid   string
	start time.Time
	end   time.Time
}

func (e *icalEvent) set(field, value string) {
	value = strings.TrimSpace(value)
	switch field {
	case "UID":
		e.uid = value
	case "DTSTART":
		e.start = parseICalTime(value)
	case "DTEND":
		e.end = parseICalTime(value)
	}
}

func (e *icalEvent) span() (Span, bool) {
	if e.start.IsZero() {
		return Span{}, false
	}
	start := daterange.FromTime(e.start)
	end := start.AddDays(1)
	if !e.end.IsZero() {
		if d := daterange.FromTime(e.end); d.After(start) {
			end = d
		}
	}
	return Span{UID: e.uid, Start: start, End: end}, true
}

var icalLayouts = []string{
	"20060102T150405Z",
	"20060102T150405",
	"20060102",
	"2006-01-02T15:04:05Z",
	"2006-01-02",
}

func parseICalTime(value string) time.Time {
	for _, layout := range icalLayouts {
		if t, err := time.Parse(layout, value); err == nil {
			return t
		}
	}
	return time.Time{}
}

func expandSpans(spans []Span) []daterange.Date {
	seen := make(map[string]daterange.Date)
	for _, sp := range spans {
		d := sp.Start
		for i := 0; i < maxEventDays && d.Before(sp.End); i++ {
			seen[d.String()] = d
			d = d.AddDays(1)
		}
	}
	out := make([]daterange.Date, 0, len(seen))
	for _, d := range seen {
		out = append(out, d)
	}
	slices.SortFunc(out, func(a, b daterange.Date) int { return a.Compare(b) })
	return out
}

var _ domainavailability.Source = (*ICalSource)(nil)
