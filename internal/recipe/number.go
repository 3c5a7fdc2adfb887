package recipe

import (
	"regexp"
	"strconv"
	"strings"
	"unicode"
)

// leadingNumber matches the longest decimal literal at the start of a string.
var leadingNumber = regexp.MustCompile(`^[+-]?(\d+\.?\d*|\.\d+)([eE][+-]?\d+)?`)

// nonNumeric matches every character the calories extraction discards.
var nonNumeric = regexp.MustCompile(`[^0-9.]`)

// parseLeadingFloat parses the numeric prefix of s, ignoring leading whitespace
// and any trailing characters. "12 min" yields 12; "min 12" yields false.
func parseLeadingFloat(s string) (float64, bool) {
	s = strings.TrimLeftFunc(s, unicode.IsSpace)
	m := leadingNumber.FindString(s)
	if m == "" {
		return 0, false
	}
	v, err := strconv.ParseFloat(m, 64)
	if err != nil {
		// Only overflow gets here; the regexp guarantees syntax.
		return 0, false
	}
	return v, true
}

// stripToNumber removes everything but digits and '.' and parses the rest, so
// "389 kcal" yields 389. A result with no digits, or more than one '.', fails.
func stripToNumber(s string) (float64, bool) {
	stripped := nonNumeric.ReplaceAllString(s, "")
	if stripped == "" {
		return 0, false
	}
	v, err := strconv.ParseFloat(stripped, 64)
	if err != nil {
		return 0, false
	}
	return v, true
}
