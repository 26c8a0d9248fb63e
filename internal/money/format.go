// Package money formats whole-unit prices for display.
package money

import (
	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/number"
)

const (
	DefaultLocale = "es-MX"
	DefaultSymbol = "$"
)

// Formatter renders integer amounts as currency with zero decimal places
// and the locale's thousands separator.
type Formatter struct {
	symbol  string
	printer *message.Printer
}

// NewFormatter parses locale as a BCP 47 tag. An invalid tag falls back to
// DefaultLocale.
func NewFormatter(locale, symbol string) *Formatter {
	tag, err := language.Parse(locale)
	if err != nil {
		tag = language.MustParse(DefaultLocale)
	}
	if symbol == "" {
		symbol = DefaultSymbol
	}
	return &Formatter{
		symbol:  symbol,
		printer: message.NewPrinter(tag),
	}
}

// Default is es-MX with a "$" symbol and no decimals.
func Default() *Formatter {
	return NewFormatter(DefaultLocale, DefaultSymbol)
}

func (f *Formatter) Format(amount int64) string {
	sign := ""
	if amount < 0 {
		sign = "-"
		amount = -amount
	}
	return sign + f.symbol + f.printer.Sprint(number.Decimal(amount, number.MaxFractionDigits(0)))
}
