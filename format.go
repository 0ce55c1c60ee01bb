package pinfield

import (
	"time"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/number"
)

// FormatPercent renders a percent with up to two fraction digits in the
// conventions of locale, e.g. "66.67%". Non-finite values render as empty.
func FormatPercent(v float64, locale language.Tag, empty string) string {
	if !finite(v) {
		return empty
	}
	p := message.NewPrinter(locale)
	return p.Sprint(number.Decimal(v, number.MaxFractionDigits(2), number.MinFractionDigits(0))) + "%"
}

// FormatTimestamp renders t as a local date and time for locale. The zero
// time renders as empty.
func FormatTimestamp(t time.Time, locale language.Tag, empty string) string {
	if t.IsZero() {
		return empty
	}
	base, _ := locale.Base()
	if base.String() == "de" {
		return t.Format("2.1.2006, 15:04:05")
	}
	return t.Format("02/01/2006, 15:04:05")
}
