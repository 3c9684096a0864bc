// Package nlq translates free-text fundraising questions into donor-segment
// SOQL queries using priority-ordered keyword heuristics.
package nlq

import (
	"regexp"
	"strconv"
	"strings"
)

// amountPattern matches an optional currency symbol, a run of digits with an
// optional 1-2 digit fraction, and an optional k/m/b magnitude suffix. The
// suffix must directly follow the digits and end on a word boundary, so the
// "m" of a following word like "months" is never read as a multiplier.
// Thousands separators are stripped before matching.
var amountPattern = regexp.MustCompile(`\$?\s*(\d+(?:\.\d{1,2})?)([kKmMbB]?)\b`)

// ParseAmount extracts the first monetary value from text. The k, m, and b
// suffixes multiply by one thousand, one million, and one billion. Returns
// false when no amount is present or the numeric parse fails.
func ParseAmount(text string) (float64, bool) {
	cleaned := strings.ReplaceAll(text, ",", "")
	m := amountPattern.FindStringSubmatch(cleaned)
	if m == nil {
		return 0, false
	}

	value, err := strconv.ParseFloat(m[1], 64)
	if err != nil {
		return 0, false
	}

	switch strings.ToLower(m[2]) {
	case "k":
		value *= 1_000
	case "m":
		value *= 1_000_000
	case "b":
		value *= 1_000_000_000
	}
	return value, true
}
