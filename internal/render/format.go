// Package render turns ranked model metrics into the weekly digest: the
// subject line, the HTML email, and a plain-text version of the same content.
package render

import (
	"fmt"
	"time"

	"github.com/dustin/go-humanize"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// Formatter applies the digest's numeric presentation rules.
type Formatter struct {
	printer *message.Printer
}

// NewFormatter returns a formatter grouping digits for locale, a BCP 47 tag
// such as "en-US" or "de-DE". Unknown tags fall back to English.
func NewFormatter(locale string) *Formatter {
	tag, err := language.Parse(locale)
	if err != nil {
		tag = language.English
	}
	return &Formatter{printer: message.NewPrinter(tag)}
}

// Number formats n with grouped thousands.
func (f *Formatter) Number(n int64) string {
	return f.printer.Sprintf("%d", n)
}

// SignedNumber formats n with an explicit "+" when it is not negative.
func (f *Formatter) SignedNumber(n int64) string {
	if n >= 0 {
		return "+" + f.Number(n)
	}
	return f.Number(n)
}

// Percent formats p with one decimal place and a "%" suffix.
func (f *Formatter) Percent(p float64) string {
	return fmt.Sprintf("%.1f%%", p)
}

// Debut describes how long before ref a model was first seen.
func (f *Formatter) Debut(firstSeen *time.Time, ref time.Time) string {
	if firstSeen == nil {
		return ""
	}
	if firstSeen.Equal(ref) {
		return "on " + firstSeen.Format("Jan 2")
	}
	return firstSeen.Format("Jan 2") + " (" + humanize.RelTime(*firstSeen, ref, "before period end", "after period end") + ")"
}
