package utils

import (
	"strconv"
	"strings"
)

// ParseLocaleNumber parses a numeric token whose group/decimal separators may
// follow either the "1,200.50" or the "1.200,50" convention:
//   - If both ',' and '.' appear, whichever occurs last is the decimal
//     separator and the other is stripped as a group separator.
//   - If only one separator kind appears, it is a decimal separator unless
//     exactly three digits follow it (then it is a thousands separator and
//     removed), so "1.200" and "1,200" both mean 1200.
//
// Returns ok=false on anything that does not parse as a number.
func ParseLocaleNumber(token string) (float64, bool) {
	trimmed := strings.Join(strings.Fields(token), "")
	if trimmed == "" {
		return 0, false
	}

	lastComma := strings.LastIndex(trimmed, ",")
	lastDot := strings.LastIndex(trimmed, ".")
	switch {
	case lastComma >= 0 && lastDot >= 0:
		if lastComma > lastDot {
			trimmed = strings.ReplaceAll(trimmed, ".", "")
			trimmed = strings.ReplaceAll(trimmed, ",", ".")
		} else {
			trimmed = strings.ReplaceAll(trimmed, ",", "")
		}
	case lastComma >= 0:
		decimals := len(trimmed) - lastComma - 1
		if decimals == 3 || strings.Count(trimmed, ",") > 1 {
			trimmed = strings.ReplaceAll(trimmed, ",", "")
		} else {
			trimmed = strings.ReplaceAll(trimmed, ",", ".")
		}
	case lastDot >= 0:
		decimals := len(trimmed) - lastDot - 1
		if decimals == 3 || strings.Count(trimmed, ".") > 1 {
			trimmed = strings.ReplaceAll(trimmed, ".", "")
		}
	}

	value, err := strconv.ParseFloat(trimmed, 64)
	if err != nil {
		return 0, false
	}
	return value, true
}
