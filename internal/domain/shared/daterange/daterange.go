package daterange

import (
	"errors"
	"iter"
)

var (
	ErrInvalidRange = errors.New("daterange: checkout must not be before checkin")
)

// DateRange represents a half-open interval of nights [CheckIn, CheckOut).
type DateRange struct {
	CheckIn  Date `json:"check_in"`
	CheckOut Date `json:"check_out"`
}

// New builds a range. Equal endpoints are allowed and yield zero nights.
func New(checkIn, checkOut Date) (DateRange, error) {
	dr := DateRange{CheckIn: checkIn, CheckOut: checkOut}
	if err := dr.Validate(); err != nil {
		return DateRange{}, err
	}
	return dr, nil
}

// ParseRange parses both endpoints from canonical form.
func ParseRange(checkIn, checkOut string) (DateRange, error) {
	in, err := Parse(checkIn)
	if err != nil {
		return DateRange{}, err
	}
	out, err := Parse(checkOut)
	if err != nil {
		return DateRange{}, err
	}
	return New(in, out)
}

func (dr DateRange) Validate() error {
	if dr.CheckIn.IsZero() || dr.CheckOut.IsZero() {
		return ErrInvalidRange
	}
	if dr.CheckOut.Before(dr.CheckIn) {
		return ErrInvalidRange
	}
	return nil
}

func (dr DateRange) Nights() int {
	return NightsBetween(dr.CheckIn, dr.CheckOut)
}

// Days yields every occupied night; the checkout day is never yielded.
func (dr DateRange) Days() iter.Seq[Date] {
	return func(yield func(Date) bool) {
		for d := dr.CheckIn; d.Before(dr.CheckOut); d = d.AddDays(1) {
			if !yield(d) {
				return
			}
		}
	}
}

func (dr DateRange) ContainsDate(d Date) bool {
	return !d.Before(dr.CheckIn) && d.Before(dr.CheckOut)
}

func (dr DateRange) Overlaps(other DateRange) bool {
	return dr.CheckIn.Before(other.CheckOut) && other.CheckIn.Before(dr.CheckOut)
}

func (dr DateRange) String() string {
	return dr.CheckIn.String() + ".." + dr.CheckOut.String()
}
