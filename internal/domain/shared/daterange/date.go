package daterange

import (
	"errors"
	"fmt"
	"math"
	"time"
)

// Layout is the canonical textual form of a Date.
const Layout = "2006-01-02"

var ErrInvalidDate = errors.New("daterange: date must be YYYY-MM-DD")

// Date is a calendar day without time of day. The underlying instant is always
// midnight UTC, so comparisons never depend on the caller's zone or DST.
type Date struct {
	t time.Time
}

// Of builds a Date from calendar fields. Out-of-range fields are normalized the
// way time.Date normalizes them.
func Of(year int, month time.Month, day int) Date {
	return Date{t: time.Date(year, month, day, 0, 0, 0, 0, time.UTC)}
}

// FromTime keeps the calendar fields of t as seen in t's own location.
func FromTime(t time.Time) Date {
	y, m, d := t.Date()
	return Of(y, m, d)
}

// Parse reads a zero-padded YYYY-MM-DD string.
func Parse(value string) (Date, error) {
	t, err := time.Parse(Layout, value)
	if err != nil {
		return Date{}, fmt.Errorf("%w: %q", ErrInvalidDate, value)
	}
	return Date{t: t}, nil
}

// MustParse panics on malformed input; meant for fixtures and tests.
func MustParse(value string) Date {
	d, err := Parse(value)
	if err != nil {
		panic(err)
	}
	return d
}

func (d Date) String() string {
	return d.t.Format(Layout)
}

func (d Date) Year() int         { return d.t.Year() }
func (d Date) Month() time.Month { return d.t.Month() }
func (d Date) Day() int          { return d.t.Day() }

// Time returns midnight UTC of the day.
func (d Date) Time() time.Time {
	return d.t
}

func (d Date) IsZero() bool {
	return d.t.IsZero()
}

func (d Date) AddDays(n int) Date {
	return Date{t: d.t.AddDate(0, 0, n)}
}

func (d Date) Before(other Date) bool { return d.t.Before(other.t) }
func (d Date) After(other Date) bool  { return d.t.After(other.t) }
func (d Date) Equal(other Date) bool  { return d.t.Equal(other.t) }

// Compare returns -1, 0 or +1.
func (d Date) Compare(other Date) int {
	return d.t.Compare(other.t)
}

func (d Date) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}

func (d *Date) UnmarshalText(data []byte) error {
	parsed, err := Parse(string(data))
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

// NightsBetween counts whole days from a to b. The difference is rounded rather
// than truncated; it is negative when b is before a.
func NightsBetween(a, b Date) int {
	// Unix seconds rather than Sub: a Duration saturates after ~292 years.
	return int(math.Round(float64(b.t.Unix()-a.t.Unix()) / 86400))
}
