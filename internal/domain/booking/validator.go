package booking

import (
	"errors"
	"fmt"

	"pucisca/internal/domain/availability"
	"pucisca/internal/domain/shared/daterange"
)

// Stay length bounds applied when a policy leaves them unset.
const (
	DefaultMinNights = 3
	DefaultMaxNights = 730
)

var (
	ErrRangeTooShort = errors.New("booking: range shorter than minimum stay")
	ErrRangeTooLong  = errors.New("booking: range longer than maximum stay")
	ErrRangeBlocked  = errors.New("booking: range includes unavailable dates")
	ErrNoneAvailable = errors.New("booking: range unavailable in every property")
	ErrCheckInInPast = errors.New("booking: check-in date is in the past")
)

// Reason explains why a range was rejected. The zero value means accepted.
type Reason string

const (
	ReasonNone          Reason = ""
	ReasonTooShort      Reason = "too_short"
	ReasonTooLong       Reason = "too_long"
	ReasonPast          Reason = "check_in_in_past"
	ReasonBlocked       Reason = "blocked"
	ReasonNoneAvailable Reason = "none_available"
)

func (r Reason) Err() error {
	switch r {
	case ReasonTooShort:
		return ErrRangeTooShort
	case ReasonTooLong:
		return ErrRangeTooLong
	case ReasonPast:
		return ErrCheckInInPast
	case ReasonBlocked:
		return ErrRangeBlocked
	case ReasonNoneAvailable:
		return ErrNoneAvailable
	}
	return nil
}

// Policy holds the stay rules. Earliest, when set, is the first allowed
// check-in day (the widget passes "today"). MaxNights bounds the work a
// single request can cause: pricing walks every night of the stay.
type Policy struct {
	MinNights int
	MaxNights int
	Earliest  daterange.Date
}

func DefaultPolicy() Policy {
	return Policy{MinNights: DefaultMinNights, MaxNights: DefaultMaxNights}
}

func (p Policy) minNights() int {
	if p.MinNights <= 0 {
		return DefaultMinNights
	}
	return p.MinNights
}

// MaxStay is the longest accepted stay in nights.
func (p Policy) MaxStay() int {
	if p.MaxNights <= 0 {
		return DefaultMaxNights
	}
	return p.MaxNights
}

// Outcome is the verdict for one property.
type Outcome struct {
	Reason       Reason              `json:"reason,omitempty"`
	Range        daterange.DateRange `json:"range"`
	Nights       int                 `json:"nights"`
	MinNights    int                 `json:"min_nights"`
	MaxNights    int                 `json:"max_nights"`
	FirstBlocked *daterange.Date     `json:"first_blocked,omitempty"`
}

func (o Outcome) Accepted() bool {
	return o.Reason == ReasonNone
}

func (o Outcome) Err() error {
	return o.Reason.Err()
}

// Message is the text shown to the visitor on rejection.
func (o Outcome) Message() string {
	return rejectionMessage(o.Reason, o.MinNights, o.MaxNights)
}

// Validate decides whether r is bookable against one blocked set. The stay
// length is checked first (minimum, then maximum), then every occupied night
// in [CheckIn, CheckOut).
func Validate(r daterange.DateRange, policy Policy, blocked availability.BlockedSet) Outcome {
	out := Outcome{Range: r, Nights: r.Nights(), MinNights: policy.minNights(), MaxNights: policy.MaxStay()}
	if reason := checkStay(r, policy); reason != ReasonNone {
		out.Reason = reason
		return out
	}
	if day, hit := blocked.FirstBlockedIn(r); hit {
		out.Reason = ReasonBlocked
		out.FirstBlocked = &day
	}
	return out
}

func checkStay(r daterange.DateRange, policy Policy) Reason {
	nights := r.Nights()
	if nights < policy.minNights() {
		return ReasonTooShort
	}
	if nights > policy.MaxStay() {
		return ReasonTooLong
	}
	if !policy.Earliest.IsZero() && r.CheckIn.Before(policy.Earliest) {
		return ReasonPast
	}
	return ReasonNone
}

func rejectionMessage(reason Reason, minNights, maxNights int) string {
	switch reason {
	case ReasonTooShort:
		return fmt.Sprintf("Minimum stay is %d nights.", minNights)
	case ReasonTooLong:
		return fmt.Sprintf("Maximum stay is %d nights. Please choose a shorter range.", maxNights)
	case ReasonPast:
		return "Check-in cannot be in the past. Please choose different dates."
	case ReasonBlocked:
		return "That range includes unavailable dates. Please choose different dates."
	case ReasonNoneAvailable:
		return "Those dates aren't available in either house. Please choose different dates."
	}
	return ""
}
