package dto

import (
	"pucisca/internal/domain/inquiry"
	"pucisca/internal/domain/pricing"
	"pucisca/internal/domain/property"
	"pucisca/internal/domain/shared/daterange"
)

type NightChargeDTO struct {
	Date     string `json:"date"`
	Rate     int64  `json:"rate"`
	Fallback bool   `json:"fallback,omitempty"`
}

type EstimateDTO struct {
	Nights          int              `json:"nights"`
	Total           MoneyDTO         `json:"total"`
	AveragePerNight MoneyDTO         `json:"average_per_night"`
	UsedFallback    bool             `json:"used_fallback"`
	Breakdown       []NightChargeDTO `json:"breakdown"`
}

func MapEstimate(est pricing.PriceEstimate) EstimateDTO {
	out := EstimateDTO{
		Nights:          est.Nights,
		Total:           MapMoney(est.Total),
		AveragePerNight: MapMoney(est.AveragePerNight),
		UsedFallback:    est.UsedFallback(),
		Breakdown:       make([]NightChargeDTO, 0, len(est.Breakdown)),
	}
	for _, c := range est.Breakdown {
		out.Breakdown = append(out.Breakdown, NightChargeDTO{Date: c.Date.String(), Rate: c.Rate, Fallback: c.Fallback})
	}
	return out
}

type InquiryDTO struct {
	Property            string `json:"property"`
	PropertyDisplayName string `json:"property_display_name"`
	Subject             string `json:"subject"`
	Body                string `json:"body"`
	Quoted              bool   `json:"quoted"`
	Mailto              string `json:"mailto,omitempty"`
}

// MapInquiry renders inq. The mailto link is left out when recipient is empty.
func MapInquiry(inq inquiry.Inquiry, recipient string) InquiryDTO {
	out := InquiryDTO{
		Property:            string(inq.Property),
		PropertyDisplayName: inq.PropertyDisplayName,
		Subject:             inq.Subject,
		Body:                inq.Body,
		Quoted:              inq.Quoted,
	}
	if recipient != "" {
		out.Mailto = inq.MailtoURL(recipient)
	}
	return out
}

// Quote answers "can I book this house for these dates, and for how much".
type Quote struct {
	Property            string       `json:"property"`
	PropertyDisplayName string       `json:"property_display_name"`
	CheckIn             string       `json:"check_in"`
	CheckOut            string       `json:"check_out"`
	Nights              int          `json:"nights"`
	MinNights           int          `json:"min_nights"`
	Accepted            bool         `json:"accepted"`
	Reason              string       `json:"reason,omitempty"`
	Message             string       `json:"message,omitempty"`
	FirstBlocked        string       `json:"first_blocked,omitempty"`
	Degraded            bool         `json:"availability_degraded"`
	Estimate            *EstimateDTO `json:"estimate,omitempty"`
	Inquiry             *InquiryDTO  `json:"inquiry,omitempty"`
}

// NewQuote fills the identity fields of a quote.
func NewQuote(key property.Key, r daterange.DateRange) Quote {
	return Quote{
		Property:            string(key),
		PropertyDisplayName: key.DisplayName(),
		CheckIn:             r.CheckIn.String(),
		CheckOut:            r.CheckOut.String(),
	}
}

// FirstBlockedString renders an optional first blocked day.
func FirstBlockedString(d *daterange.Date) string {
	if d == nil {
		return ""
	}
	return d.String()
}
