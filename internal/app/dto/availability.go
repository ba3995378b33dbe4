package dto

import (
	"time"

	"pucisca/internal/domain/availability"
)

// BlockedDates is the blocked-date list for one house.
type BlockedDates struct {
	Property  string    `json:"property"`
	Blocked   []string  `json:"blocked"`
	Degraded  bool      `json:"degraded"`
	FetchedAt time.Time `json:"fetched_at"`
}

func MapBlockedDates(set availability.BlockedSet) BlockedDates {
	return BlockedDates{
		Property:  string(set.Property()),
		Blocked:   set.Strings(),
		Degraded:  set.Degraded(),
		FetchedAt: set.FetchedAt(),
	}
}

// CombinedBlockedDates lists the days blocked in both houses, which are the
// only days the combined picker disables.
type CombinedBlockedDates struct {
	Blocked    []string       `json:"blocked"`
	Properties []BlockedDates `json:"properties"`
	Degraded   bool           `json:"degraded"`
}
