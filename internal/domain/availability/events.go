package availability

import (
	"time"

	"pucisca/internal/domain/property"
	"pucisca/internal/domain/shared/events"
)

type BlockedDatesRefreshed struct {
	Property property.Key `json:"property"`
	Blocked  int          `json:"blocked"`
	Degraded bool         `json:"degraded"`
	At       time.Time    `json:"at"`
}

func (e BlockedDatesRefreshed) EventName() string     { return "availability.refreshed" }
func (e BlockedDatesRefreshed) AggregateID() string   { return string(e.Property) }
func (e BlockedDatesRefreshed) OccurredAt() time.Time { return e.At }

type SourceUnreachable struct {
	Property property.Key `json:"property"`
	Error    string       `json:"error"`
	At       time.Time    `json:"at"`
}

func (e SourceUnreachable) EventName() string     { return "availability.source_unreachable" }
func (e SourceUnreachable) AggregateID() string   { return string(e.Property) }
func (e SourceUnreachable) OccurredAt() time.Time { return e.At }

// OutcomeEvents describes a fetch outcome as domain events.
func OutcomeEvents(o FetchOutcome) []events.DomainEvent {
	var out []events.DomainEvent
	if o.Err != nil {
		out = append(out, SourceUnreachable{Property: o.Set.Property(), Error: o.Err.Error(), At: o.Set.FetchedAt()})
	}
	out = append(out, BlockedDatesRefreshed{
		Property: o.Set.Property(),
		Blocked:  o.Set.Len(),
		Degraded: o.Degraded(),
		At:       o.Set.FetchedAt(),
	})
	return out
}
