// Package inquiry composes the booking request e-mail a visitor sends to the
// owner. Nothing here sends mail; the result is embedded in a mailto link.
package inquiry

import (
	"fmt"
	"net/url"
	"strings"

	"pucisca/internal/domain/pricing"
	"pucisca/internal/domain/property"
	"pucisca/internal/domain/shared/daterange"
	"pucisca/internal/domain/shared/money"
)

type Inquiry struct {
	Property            property.Key `json:"property"`
	PropertyDisplayName string       `json:"property_display_name"`
	Subject             string       `json:"subject"`
	Body                string       `json:"body"`
	Quoted              bool         `json:"quoted"`
}

// Compose builds a quoted inquiry for a single house.
func Compose(key property.Key, r daterange.DateRange, est pricing.PriceEstimate) Inquiry {
	name := key.DisplayName()
	var b strings.Builder
	b.WriteString("Hello,\n\n")
	fmt.Fprintf(&b, "I would like to request a booking for %s.\n\n", name)
	writeStay(&b, r, est.Nights)
	fmt.Fprintf(&b, "Estimated total: %s\n\n", money.Format(est.Total))
	writeClosing(&b)
	return Inquiry{
		Property:            key,
		PropertyDisplayName: name,
		Subject:             subject(key),
		Body:                b.String(),
		Quoted:              true,
	}
}

// ComposeCombined builds the availability-only inquiry offered by the combined
// calendar. It never carries a price.
func ComposeCombined(key property.Key, r daterange.DateRange) Inquiry {
	var b strings.Builder
	b.WriteString("Hello,\n\n")
	b.WriteString("I would like to request a booking.\n\n")
	writeStay(&b, r, r.Nights())
	// The combined form has no space after the prompts, unlike the quoted one.
	b.WriteString("\nNumber of guests:\nAny notes:\n\nThank you!")
	return Inquiry{
		Property:            key,
		PropertyDisplayName: key.DisplayName(),
		Subject:             subject(key),
		Body:                b.String(),
	}
}

func subject(key property.Key) string {
	return "Booking request - " + key.DisplayName()
}

func writeStay(b *strings.Builder, r daterange.DateRange, nights int) {
	fmt.Fprintf(b, "Check-in: %s\n", r.CheckIn)
	fmt.Fprintf(b, "Check-out: %s\n", r.CheckOut)
	fmt.Fprintf(b, "Nights: %d\n", nights)
}

func writeClosing(b *strings.Builder) {
	b.WriteString("Number of guests: \n")
	b.WriteString("Any notes: \n\n")
	b.WriteString("Thank you!")
}

// MailtoURL renders the inquiry as a mailto link. Spaces are encoded as %20
// since mail clients do not decode '+' in mailto headers.
func (i Inquiry) MailtoURL(recipient string) string {
	return "mailto:" + recipient +
		"?subject=" + escape(i.Subject) +
		"&body=" + escape(i.Body)
}

func escape(s string) string {
	return strings.ReplaceAll(url.QueryEscape(s), "+", "%20")
}
