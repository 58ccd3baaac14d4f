// Package format holds small text and duration formatting helpers shared by
// the record stores and the run summary.
package format

import (
	"fmt"
	"html"
	"strings"
	"time"
	"unicode"
	"unicode/utf8"

	"github.com/microcosm-cc/bluemonday"
	"golang.org/x/text/unicode/norm"
)

var stripPolicy = bluemonday.StrictPolicy()

// PlainText removes any markup from s and decodes HTML entities. The Data
// API returns snippet titles HTML-escaped ("Rock &amp; Roll").
func PlainText(s string) string {
	return html.UnescapeString(stripPolicy.Sanitize(s))
}

// Text normalizes s to NFC, replaces control characters with spaces and
// collapses whitespace runs. Titles coming from feeds often carry stray
// newlines and decomposed accents.
func Text(s string) string {
	s = norm.NFC.String(s)
	s = strings.Map(func(r rune) rune {
		if unicode.IsControl(r) {
			return ' '
		}
		return r
	}, s)
	return strings.Join(strings.Fields(s), " ")
}

// Truncate returns s cut to at most max runes, ending with "…" when shortened.
func Truncate(s string, max int) string {
	if max <= 0 || utf8.RuneCountInString(s) <= max {
		return s
	}
	if max == 1 {
		return "…"
	}
	runes := []rune(s)
	return strings.TrimRightFunc(string(runes[:max-1]), unicode.IsSpace) + "…"
}

// Elapsed formats a duration as a human-readable string
// (e.g. "3.2 seconds", "1.5 minutes", "2.0 hours").
func Elapsed(d time.Duration) string {
	if d < time.Minute {
		return fmt.Sprintf("%.1f seconds", d.Seconds())
	}
	if d < time.Hour {
		return fmt.Sprintf("%.1f minutes", d.Minutes())
	}
	return fmt.Sprintf("%.1f hours", d.Hours())
}
