package availability

import (
	"context"

	"pucisca/internal/app/dto"
	"pucisca/internal/app/policies"
	"pucisca/internal/app/queries"
	"pucisca/internal/domain/booking"
	"pucisca/internal/domain/property"
	"pucisca/internal/domain/shared/daterange"
)

const (
	getBlockedDatesKey  = "availability.blocked"
	getCombinedBlockKey = "availability.blocked_combined"
)

type GetBlockedDatesQuery struct {
	Property property.Key `validate:"required,oneof=WH GH"`
}

func (q GetBlockedDatesQuery) Key() string { return getBlockedDatesKey }

type GetBlockedDatesHandler struct {
	Availability policies.AvailabilityPort
}

func (h *GetBlockedDatesHandler) Handle(ctx context.Context, q GetBlockedDatesQuery) (dto.BlockedDates, error) {
	sets, err := h.Availability.Sets(ctx, q.Property)
	if err != nil {
		return dto.BlockedDates{}, err
	}
	return dto.MapBlockedDates(sets[0]), nil
}

// GetCombinedBlockedDatesQuery asks for the days the combined picker disables.
// Window limits the answer to a range of days when set.
type GetCombinedBlockedDatesQuery struct {
	Window *daterange.DateRange
}

func (q GetCombinedBlockedDatesQuery) Key() string { return getCombinedBlockKey }

type GetCombinedBlockedDatesHandler struct {
	Availability policies.AvailabilityPort
}

func (h *GetCombinedBlockedDatesHandler) Handle(ctx context.Context, q GetCombinedBlockedDatesQuery) (dto.CombinedBlockedDates, error) {
	keys := property.All()
	sets, err := h.Availability.Sets(ctx, keys...)
	if err != nil {
		return dto.CombinedBlockedDates{}, err
	}
	out := dto.CombinedBlockedDates{
		Blocked:    []string{},
		Properties: make([]dto.BlockedDates, 0, len(sets)),
	}
	for _, set := range sets {
		out.Properties = append(out.Properties, dto.MapBlockedDates(set))
		out.Degraded = out.Degraded || set.Degraded()
	}
	if q.Window != nil {
		for _, d := range booking.DisabledDays(*q.Window, sets...) {
			out.Blocked = append(out.Blocked, d.String())
		}
		return out, nil
	}
	for _, d := range sets[0].Dates() {
		if booking.DisabledForBoth(d, sets[0], sets[1]) {
			out.Blocked = append(out.Blocked, d.String())
		}
	}
	return out, nil
}

var (
	_ queries.Handler[GetBlockedDatesQuery, dto.BlockedDates]                 = (*GetBlockedDatesHandler)(nil)
	_ queries.Handler[GetCombinedBlockedDatesQuery, dto.CombinedBlockedDates] = (*GetCombinedBlockedDatesHandler)(nil)
)
