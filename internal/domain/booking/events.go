package booking

import (
	"time"

	"pucisca/internal/domain/property"
	"pucisca/internal/domain/shared/daterange"
)

// combinedAggregate is the aggregate id used for events about both houses.
const combinedAggregate = "combined"

type PriceEstimateViewed struct {
	Property property.Key        `json:"property"`
	Range    daterange.DateRange `json:"range"`
	Nights   int                 `json:"nights"`
	Total    int64               `json:"total"`
	Currency string              `json:"currency"`
	At       time.Time           `json:"at"`
}

func (e PriceEstimateViewed) EventName() string     { return "booking.price_estimate_viewed" }
func (e PriceEstimateViewed) AggregateID() string   { return string(e.Property) }
func (e PriceEstimateViewed) OccurredAt() time.Time { return e.At }

type CombinedAvailabilityChecked struct {
	Range     daterange.DateRange `json:"range"`
	Nights    int                 `json:"nights"`
	Available []property.Key      `json:"available"`
	At        time.Time           `json:"at"`
}

func (e CombinedAvailabilityChecked) EventName() string {
	return "booking.combined_availability_checked"
}
func (e CombinedAvailabilityChecked) AggregateID() string   { return combinedAggregate }
func (e CombinedAvailabilityChecked) OccurredAt() time.Time { return e.At }

type InquiryComposed struct {
	Property property.Key        `json:"property"`
	Range    daterange.DateRange `json:"range"`
	Nights   int                 `json:"nights"`
	Quoted   bool                `json:"quoted"`
	At       time.Time           `json:"at"`
}

func (e InquiryComposed) EventName() string     { return "booking.inquiry_composed" }
func (e InquiryComposed) AggregateID() string   { return string(e.Property) }
func (e InquiryComposed) OccurredAt() time.Time { return e.At }
