package booking

import (
	"pucisca/internal/domain/availability"
	"pucisca/internal/domain/property"
	"pucisca/internal/domain/shared/daterange"
)

type Verdict string

const (
	VerdictBoth  Verdict = "both"
	VerdictAOnly Verdict = "a_only"
	VerdictBOnly Verdict = "b_only"
	VerdictNone  Verdict = "none"
)

type PropertyAvailability struct {
	Property     property.Key    `json:"property"`
	Available    bool            `json:"available"`
	FirstBlocked *daterange.Date `json:"first_blocked,omitempty"`
}

// CombinedOutcome answers "is either house free for the whole range".
type CombinedOutcome struct {
	Reason    Reason               `json:"reason,omitempty"`
	Range     daterange.DateRange  `json:"range"`
	Nights    int                  `json:"nights"`
	MinNights int                  `json:"min_nights"`
	MaxNights int                  `json:"max_nights"`
	A         PropertyAvailability `json:"a"`
	B         PropertyAvailability `json:"b"`
}

func (o CombinedOutcome) Accepted() bool {
	return o.Reason == ReasonNone
}

func (o CombinedOutcome) Err() error {
	return o.Reason.Err()
}

func (o CombinedOutcome) Message() string {
	return rejectionMessage(o.Reason, o.MinNights, o.MaxNights)
}

func (o CombinedOutcome) Verdict() Verdict {
	switch {
	case o.A.Available && o.B.Available:
		return VerdictBoth
	case o.A.Available:
		return VerdictAOnly
	case o.B.Available:
		return VerdictBOnly
	}
	return VerdictNone
}

// Label is the headline shown next to the combined calendar.
func (o CombinedOutcome) Label() string {
	switch o.Verdict() {
	case VerdictBoth:
		return "Both Houses Available"
	case VerdictAOnly:
		return o.A.Property.ShortName() + " Available"
	case VerdictBOnly:
		return o.B.Property.ShortName() + " Available"
	}
	return "No Availability"
}

// Available lists the properties free for the whole range, A first.
func (o CombinedOutcome) Available() []property.Key {
	var out []property.Key
	for _, pa := range []PropertyAvailability{o.A, o.B} {
		if pa.Available {
			out = append(out, pa.Property)
		}
	}
	return out
}

// ResolveCombined checks the stay length once, then each property's full-range
// availability. It rejects only when neither property is free.
func ResolveCombined(r daterange.DateRange, policy Policy, a, b availability.BlockedSet) CombinedOutcome {
	out := CombinedOutcome{
		Range:     r,
		Nights:    r.Nights(),
		MinNights: policy.minNights(),
		MaxNights: policy.MaxStay(),
		A:         PropertyAvailability{Property: a.Property()},
		B:         PropertyAvailability{Property: b.Property()},
	}
	if reason := checkStay(r, policy); reason != ReasonNone {
		out.Reason = reason
		return out
	}
	out.A = propertyAvailability(r, a)
	out.B = propertyAvailability(r, b)
	if !out.A.Available && !out.B.Available {
		out.Reason = ReasonNoneAvailable
	}
	return out
}

func propertyAvailability(r daterange.DateRange, set availability.BlockedSet) PropertyAvailability {
	pa := PropertyAvailability{Property: set.Property(), Available: true}
	if day, hit := set.FirstBlockedIn(r); hit {
		pa.Available = false
		pa.FirstBlocked = &day
	}
	return pa
}

// Disabled reports whether a single-property picker should grey out d.
func Disabled(d daterange.Date, set availability.BlockedSet) bool {
	return set.Contains(d)
}

// DisabledForBoth reports whether the combined picker should grey out d: only
// days blocked in both properties are unselectable.
func DisabledForBoth(d daterange.Date, a, b availability.BlockedSet) bool {
	return a.Contains(d) && b.Contains(d)
}

// DisabledDays lists the days of window that are blocked in every given set.
func DisabledDays(window daterange.DateRange, sets ...availability.BlockedSet) []daterange.Date {
	if len(sets) == 0 {
		return nil
	}
	var out []daterange.Date
	for d := range window.Days() {
		all := true
		for _, set := range sets {
			if !set.Contains(d) {
				all = false
				break
			}
		}
		if all {
			out = append(out, d)
		}
	}
	return out
}
