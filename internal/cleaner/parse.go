package cleaner

import (
	"regexp"
	"strconv"
	"strings"
)

// numericPattern accepts optionally signed decimal numbers with an optional
// fraction and exponent: "12", "-3.5", ".5", "5.", "1e3", "+2.5E-2".
var numericPattern = regexp.MustCompile(`^[+-]?(?:[0-9]+(?:\.[0-9]*)?|\.[0-9]+)(?:[eE][+-]?[0-9]+)?$`)

// ParseNumeric converts raw text to a float. Surrounding whitespace is
// ignored. Empty text, NaN, infinities, hex floats, digit separators, and
// values outside the float64 range report false.
func ParseNumeric(raw string) (float64, bool) {
	text := strings.TrimSpace(raw)
	if text == "" || !numericPattern.MatchString(text) {
		return 0, false
	}
	value, err := strconv.ParseFloat(text, 64)
	if err != nil {
		return 0, false
	}
	return value, true
}
