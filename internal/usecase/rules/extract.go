package rules

import (
	"regexp"
	"strconv"
	"strings"
	"time"
)

var (
	amountRegex = regexp.MustCompile(`(\d{1,3}(?:[.,]\d{3})*)\s*(?:tl|türk lirası)`)
	dateRegex   = regexp.MustCompile(`\d{2}[./-]\d{2}[./-]\d{4}`)
	urlRegex    = regexp.MustCompile(`http|www\.`)

	dateSeparators = strings.NewReplacer("/", ".", "-", ".")
)

const dateLayout = "02.01.2006"

// candidate is the outcome of extracting one fact from a matched substring.
// ok=false means the substring matched the pattern but could not be parsed.
type candidate[T any] struct {
	raw   string
	value T
	ok    bool
}

// extractAmounts finds currency amounts in lower-cased text.
func extractAmounts(text string) []candidate[float64] {
	matches := amountRegex.FindAllStringSubmatch(text, -1)
	out := make([]candidate[float64], 0, len(matches))
	for _, m := range matches {
		out = append(out, parseAmount(m[1]))
	}
	return out
}

// parseAmount strips thousands separators and reads a decimal comma as a point.
func parseAmount(raw string) candidate[float64] {
	normalized := strings.ReplaceAll(raw, ".", "")
	normalized = strings.ReplaceAll(normalized, ",", ".")
	v, err := strconv.ParseFloat(normalized, 64)
	if err != nil {
		return candidate[float64]{raw: raw}
	}
	return candidate[float64]{raw: raw, value: v, ok: true}
}

// extractDates finds dd.mm.yyyy dates (separators . / -) in text.
func extractDates(text string) []candidate[time.Time] {
	matches := dateRegex.FindAllString(text, -1)
	out := make([]candidate[time.Time], 0, len(matches))
	for _, m := range matches {
		out = append(out, parseDate(m))
	}
	return out
}

func parseDate(raw string) candidate[time.Time] {
	t, err := time.Parse(dateLayout, dateSeparators.Replace(raw))
	if err != nil {
		return candidate[time.Time]{raw: raw}
	}
	return candidate[time.Time]{raw: raw, value: t, ok: true}
}

// daysSince returns the calendar-day difference between the wall-clock date of
// now and date. Positive when date is in the past.
func daysSince(now, date time.Time) int {
	y, m, d := now.Date()
	today := time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
	dy, dm, dd := date.Date()
	then := time.Date(dy, dm, dd, 0, 0, 0, 0, time.UTC)
	return int(today.Sub(then).Hours() / 24)
}

func containsAny(text string, words []string) bool {
	for _, w := range words {
		if strings.Contains(text, w) {
			return true
		}
	}
	return false
}
