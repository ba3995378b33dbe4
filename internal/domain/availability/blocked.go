package availability

import (
	"errors"
	"fmt"
	"slices"
	"time"

	"pucisca/internal/domain/property"
	"pucisca/internal/domain/shared/daterange"
)

var (
	ErrMalformedPayload = errors.New("availability: malformed blocked date")
)

// BlockedSet is the set of days a property cannot be occupied, as fetched from
// the availability source. It is never modified after construction; a refresh
// builds a new set.
type BlockedSet struct {
	property  property.Key
	days      map[string]struct{}
	fetchedAt time.Time
	degraded  bool
}

func NewBlockedSet(key property.Key, dates []daterange.Date, fetchedAt time.Time) BlockedSet {
	days := make(map[string]struct{}, len(dates))
	for _, d := range dates {
		days[d.String()] = struct{}{}
	}
	return BlockedSet{property: key, days: days, fetchedAt: fetchedAt.UTC()}
}

// ParseBlockedSet builds a set from canonical strings. One malformed entry
// rejects the whole payload.
func ParseBlockedSet(key property.Key, raw []string, fetchedAt time.Time) (BlockedSet, error) {
	dates := make([]daterange.Date, 0, len(raw))
	for _, value := range raw {
		d, err := daterange.Parse(value)
		if err != nil {
			return BlockedSet{}, fmt.Errorf("%w: %w", ErrMalformedPayload, err)
		}
		dates = append(dates, d)
	}
	return NewBlockedSet(key, dates, fetchedAt), nil
}

// EmptySet is the fail-open substitute used when the source could not be read.
func EmptySet(key property.Key, at time.Time) BlockedSet {
	return BlockedSet{property: key, fetchedAt: at.UTC(), degraded: true}
}

func (s BlockedSet) Property() property.Key { return s.property }
func (s BlockedSet) FetchedAt() time.Time   { return s.fetchedAt }
func (s BlockedSet) Len() int               { return len(s.days) }

// Degraded reports whether the set stands in for an unreachable source.
func (s BlockedSet) Degraded() bool { return s.degraded }

// Contains is the membership test, by canonical form.
func (s BlockedSet) Contains(d daterange.Date) bool {
	_, ok := s.days[d.String()]
	return ok
}

// FirstBlockedIn scans the occupied nights of r in order and returns the first
// blocked one. The checkout day is not inspected.
func (s BlockedSet) FirstBlockedIn(r daterange.DateRange) (daterange.Date, bool) {
	if len(s.days) == 0 {
		return daterange.Date{}, false
	}
	for d := range r.Days() {
		if s.Contains(d) {
			return d, true
		}
	}
	return daterange.Date{}, false
}

func (s BlockedSet) HitsRange(r daterange.DateRange) bool {
	_, hit := s.FirstBlockedIn(r)
	return hit
}

// Dates returns the blocked days in ascending order.
func (s BlockedSet) Dates() []daterange.Date {
	out := make([]daterange.Date, 0, len(s.days))
	for raw := range s.days {
		out = append(out, daterange.MustParse(raw))
	}
	slices.SortFunc(out, daterange.Date.Compare)
	return out
}

// Strings returns the blocked days in canonical form, ascending.
func (s BlockedSet) Strings() []string {
	out := make([]string, 0, len(s.days))
	for raw := range s.days {
		out = append(out, raw)
	}
	slices.Sort(out)
	return out
}
