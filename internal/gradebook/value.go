package gradebook

import (
	"math"
	"strconv"
	"strings"
)

// Sanitize strips everything except digits and a single decimal separator.
// Commas are treated as decimal separators and normalized to points. The
// function is idempotent: Sanitize(Sanitize(s)) == Sanitize(s).
func Sanitize(raw string) string {
	var b strings.Builder
	seenPoint := false
	for _, r := range raw {
		switch {
		case r >= '0' && r <= '9':
			b.WriteRune(r)
		case r == '.' || r == ',':
			if !seenPoint {
				b.WriteByte('.')
				seenPoint = true
			}
		}
	}
	return b.String()
}

// Partial reports whether a sanitized value is an in-progress token (a bare
// "." or a number with a trailing ".") that should not be clamped or
// submitted while the user is still typing.
func Partial(s string) bool {
	return s == "." || (s != "" && strings.HasSuffix(s, "."))
}

// ClampToRange clamps a complete sanitized number into [min, max]. Empty and
// partial in-progress input passes through untouched so the editor does not
// fight the user mid-keystroke. In-range values are returned verbatim.
func ClampToRange(s string, min, max float64) string {
	if s == "" || Partial(s) {
		return s
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return s
	}
	if v < min {
		return FormatScore(min)
	}
	if v > max {
		return FormatScore(max)
	}
	return s
}

// ParseOrNull distinguishes the three value states: nil for empty input ("no
// score yet"), NaN for unparseable non-empty input (an error state that must
// block persistence), and the numeric value otherwise.
func ParseOrNull(raw string) *float64 {
	if raw == "" {
		return nil
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		nan := math.NaN()
		return &nan
	}
	return &v
}

// FormatScore renders a score without trailing zeros.
func FormatScore(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// Round2 applies the display rounding used across the gradebook: banker's
// rounding to two decimals.
func Round2(v float64) float64 {
	return math.RoundToEven(v*100) / 100
}
