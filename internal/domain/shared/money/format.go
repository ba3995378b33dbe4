package money

import (
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

var symbols = map[string]string{
	"EUR": "€",
	"GBP": "£",
	"USD": "$",
	"NOK": "kr ",
}

// Format renders the amount with en-GB digit grouping and the currency symbol
// prefixed, e.g. €7,600. Unknown currencies are prefixed with their code.
func Format(m Money) string {
	prefix, ok := symbols[m.Currency]
	if !ok {
		prefix = m.Currency + " "
	}
	p := message.NewPrinter(language.BritishEnglish)
	if m.Amount < 0 {
		return "-" + prefix + p.Sprintf("%d", -m.Amount)
	}
	return prefix + p.Sprintf("%d", m.Amount)
}

func (m Money) String() string {
	return Format(m)
}
