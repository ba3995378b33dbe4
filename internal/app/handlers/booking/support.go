package booking

import (
	"time"

	"pucisca/internal/domain/booking"
	"pucisca/internal/domain/shared/daterange"
)

// stayRules turns the configured policy into the one used for a request.
// Today, when set, forbids check-in before the current day.
type stayRules struct {
	Policy booking.Policy
	Today  func() daterange.Date
}

func (r stayRules) policy() booking.Policy {
	p := r.Policy
	if r.Today != nil {
		p.Earliest = r.Today()
	}
	return p
}

func clockOrNow(c func() time.Time) time.Time {
	if c == nil {
		return time.Now().UTC()
	}
	return c().UTC()
}
