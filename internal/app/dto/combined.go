package dto

// PropertyAvailabilityDTO is one house's side of a combined check.
type PropertyAvailabilityDTO struct {
	Property            string      `json:"property"`
	PropertyDisplayName string      `json:"property_display_name"`
	Available           bool        `json:"available"`
	FirstBlocked        string      `json:"first_blocked,omitempty"`
	Inquiry             *InquiryDTO `json:"inquiry,omitempty"`
}

// Combined answers "which house is free for these dates".
type Combined struct {
	CheckIn    string                    `json:"check_in"`
	CheckOut   string                    `json:"check_out"`
	Nights     int                       `json:"nights"`
	MinNights  int                       `json:"min_nights"`
	Accepted   bool                      `json:"accepted"`
	Reason     string                    `json:"reason,omitempty"`
	Message    string                    `json:"message,omitempty"`
	Verdict    string                    `json:"verdict,omitempty"`
	Label      string                    `json:"label,omitempty"`
	Degraded   bool                      `json:"availability_degraded"`
	Properties []PropertyAvailabilityDTO `json:"properties"`
}
