// Package mathutil provides common mathematical utility functions.
package mathutil

import (
	"math"

	"github.com/iwvelando/tax-impact/pkg/constants"
)

// RoundUnit rounds a value to the nearest whole currency unit, halves away
// from zero. Values outside the int64 range saturate at its bounds; NaN
// rounds to 0.
func RoundUnit(val float64) int64 {
	switch {
	case math.IsNaN(val):
		return 0
	case val >= math.MaxInt64:
		return math.MaxInt64
	case val <= math.MinInt64:
		return math.MinInt64
	}
	return int64(math.Round(val))
}

// WithinTolerance checks if two values are within a specified tolerance
func WithinTolerance(val1, val2, tolerance float64) bool {
	return math.Abs(val1-val2) <= tolerance
}

// Min returns the minimum of two float64 values
func Min(a, b float64) float64 {
	if a < b {
		return a
	}
	return b
}

// Max returns the maximum of two float64 values
func Max(a, b float64) float64 {
	if a > b {
		return a
	}
	return b
}

// ApplyPercentage applies a percentage to a value
func ApplyPercentage(value, percentage float64) float64 {
	return value * percentage / constants.PercentageMultiplier
}
