package dataset

import (
	"math"
	"strconv"
)

// Float is a nullable float64. The zero value is missing.
type Float struct {
	Value float64
	Valid bool
}

// Some wraps v as a present value. NaN and infinities are stored as missing.
func Some(v float64) Float {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return Float{}
	}
	return Float{Value: v, Valid: true}
}

// Missing returns the missing marker.
func Missing() Float {
	return Float{}
}

// IsMissing reports whether f holds no value.
func (f Float) IsMissing() bool {
	return !f.Valid
}

// String formats f for CSV output: the shortest representation that parses
// back to the same value, or "" when missing.
func (f Float) String() string {
	if !f.Valid {
		return ""
	}
	return FormatFloat(f.Value)
}

// FormatFloat renders v without an exponent for everyday magnitudes and falls
// back to exponent notation for very large or very small values.
func FormatFloat(v float64) string {
	abs := math.Abs(v)
	if abs != 0 && (abs < 1e-6 || abs >= 1e21) {
		return strconv.FormatFloat(v, 'g', -1, 64)
	}
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// RunningMean accumulates an arithmetic mean. The plain sum is used while it
// stays finite; once it overflows the incrementally updated mean is reported.
type RunningMean struct {
	n       int
	sum     float64
	running float64
}

// Add includes v in the mean.
func (m *RunningMean) Add(v float64) {
	m.n++
	m.sum += v
	n := float64(m.n)
	if delta := v - m.running; !math.IsInf(delta, 0) {
		m.running += delta / n
		return
	}
	m.running += v/n - m.running/n
}

// Count returns the number of values added.
func (m *RunningMean) Count() int {
	return m.n
}

// Value returns the mean, or missing when nothing was added.
func (m *RunningMean) Value() Float {
	if m.n == 0 {
		return Missing()
	}
	if math.IsInf(m.sum, 0) {
		return Some(m.running)
	}
	return Some(m.sum / float64(m.n))
}
