package domain

import (
	"math"
	"strconv"
	"strings"
)

// ParseAmount turns user-supplied money input into a float. Currency
// symbols, thousands separators and whitespace are stripped; everything
// that survives must parse as a plain decimal. A zero, negative or
// non-finite result is rejected.
func ParseAmount(raw string) (float64, error) {
	v, err := parseNumeric(raw)
	if err != nil {
		return 0, err
	}
	if !ValidAmount(v) {
		return 0, ErrInvalidAmount
	}
	return Round(v), nil
}

// ParseCollectedAmount parses fields where zero legitimately means
// "nothing collected", such as cash on delivery. Unparsable input still
// fails; a non-positive value parses to 0.
func ParseCollectedAmount(raw string) (float64, error) {
	v, err := parseNumeric(raw)
	if err != nil {
		return 0, err
	}
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, ErrInvalidAmount
	}
	if v <= 0 {
		return 0, nil
	}
	return Round(v), nil
}

func parseNumeric(raw string) (float64, error) {
	var b strings.Builder
	for _, r := range raw {
		if (r >= '0' && r <= '9') || r == '.' || r == '-' {
			b.WriteRune(r)
		}
	}
	cleaned := b.String()
	if cleaned == "" {
		return 0, ErrInvalidAmount
	}
	v, err := strconv.ParseFloat(cleaned, 64)
	if err != nil {
		return 0, ErrInvalidAmount
	}
	return v, nil
}

// Round normalizes a monetary value to 5 decimal places. The small
// epsilon keeps values sitting exactly on a rounding boundary from
// flipping down due to binary representation.
func Round(v float64) float64 {
	return math.Round((v+1e-10)*100000) / 100000
}

// ValidAmount reports whether v is acceptable as a transaction amount.
func ValidAmount(v float64) bool {
	return v > 0 && !math.IsNaN(v) && !math.IsInf(v, 0)
}
