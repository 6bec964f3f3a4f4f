// internal/dms/frenchdate.go
package dms

import (
	"fmt"
	"strings"
	"time"
	"unicode"

	"github.com/goodsign/monday"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

var (
	// Tried in order with time.Parse, before any case folding.
	isoDateLayouts = []string{
		time.RFC3339,
		"2006-01-02T15:04:05",
		"2006-01-02",
	}

	// Day comes before month in every French numeric layout.
	numericDateLayouts = []string{
		"02/01/2006",
		"2/1/2006",
		"02-01-2006",
		"2-1-2006",
		"02.01.2006",
		"2.1.2006",
		"02/01/06",
		"2/1/06",
	}

	// Month names are translated by monday once rewritten to their full
	// accented form.
	namedDateLayouts = []string{
		"2 January 2006",
	}

	// Keyed by the lowercase unaccented spelling, full or abbreviated.
	frenchMonths = map[string]string{
		"janvier":   "janvier",
		"janv":      "janvier",
		"jan":       "janvier",
		"fevrier":   "février",
		"fevr":      "février",
		"fev":       "février",
		"mars":      "mars",
		"mar":       "mars",
		"avril":     "avril",
		"avr":       "avril",
		"mai":       "mai",
		"juin":      "juin",
		"juillet":   "juillet",
		"juil":      "juillet",
		"aout":      "août",
		"septembre": "septembre",
		"sept":      "septembre",
		"sep":       "septembre",
		"octobre":   "octobre",
		"oct":       "octobre",
		"novembre":  "novembre",
		"nov":       "novembre",
		"decembre":  "décembre",
		"dec":       "décembre",
	}

	frenchWeekdays = map[string]bool{
		"lundi":    true,
		"mardi":    true,
		"mercredi": true,
		"jeudi":    true,
		"vendredi": true,
		"samedi":   true,
		"dimanche": true,
	}
)

// ParseBirthDate parses a date written the French way: numeric day/month/year
// or a spelled-out month ("12 février 2001", "jeudi 1er mars 2001",
// "12 fevr. 2001"). ISO dates are accepted as well. The result is a UTC
// midnight.
func ParseBirthDate(value string) (time.Time, error) {
	raw := strings.TrimSpace(value)
	if raw == "" {
		return time.Time{}, fmt.Errorf("empty birth date")
	}

	for _, layout := range isoDateLayouts {
		if t, err := time.Parse(layout, raw); err == nil {
			return dateOnly(t), nil
		}
	}
	for _, layout := range numericDateLayouts {
		if t, err := time.Parse(layout, raw); err == nil {
			return dateOnly(t), nil
		}
	}

	cleaned := canonicalNamedDate(raw)
	for _, layout := range namedDateLayouts {
		if t, err := monday.Parse(layout, cleaned, monday.LocaleFrFR); err == nil {
			return dateOnly(t), nil
		}
	}

	return time.Time{}, fmt.Errorf("unrecognized birth date %q", value)
}

// canonicalNamedDate rewrites "Jeudi 1er Fevr. 2001" as "1 février 2001":
// weekdays are dropped, "1er" becomes "1" and any month spelling becomes the
// full accented name.
func canonicalNamedDate(raw string) string {
	words := strings.Fields(strings.ToLower(raw))
	out := make([]string, 0, len(words))
	for _, word := range words {
		word = strings.TrimRight(word, ".,")
		folded := foldAccents(word)
		switch {
		case frenchWeekdays[folded]:
			continue
		case folded == "1er":
			out = append(out, "1")
		case frenchMonths[folded] != "":
			out = append(out, frenchMonths[folded])
		default:
			out = append(out, word)
		}
	}
	return strings.Join(out, " ")
}

func foldAccents(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	folded, _, err := transform.String(t, s)
	if err != nil {
		return s
	}
	return folded
}

func dateOnly(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
