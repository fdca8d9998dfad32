// Package income normalizes raw gross-income input into a non-negative amount.
//
// Malformed input is never an error for callers of Parse: anything that is not
// a finite, non-negative number collapses to zero income. ParseStrict exposes
// the reason for callers that want to log it.
package income

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
)

var (
	// ErrEmpty is returned by ParseStrict for blank input.
	ErrEmpty = errors.New("income is empty")

	// ErrInvalid is returned by ParseStrict for input that is not a finite number.
	ErrInvalid = errors.New("income is not a number")

	// ErrNegative is returned by ParseStrict for amounts below zero.
	ErrNegative = errors.New("income is negative")
)

// MaxAmount is the largest monthly income computed. Larger inputs are
// capped so that any tax on them, even at a 100% rate and over twelve
// months, stays an exact integer well inside int64.
const MaxAmount = 1e14

// currencyPrefixes are display prefixes users tend to paste along with the
// amount. Longer codes come first so "KSH" is not read as "SH".
var currencyPrefixes = []string{"KES", "KSH", "SH", "$"}

// Parse converts a raw income string such as "50,000" or "KES 1 250 000" into
// an amount. Unparseable, negative or non-finite input yields 0.
func Parse(raw string) float64 {
	v, err := ParseStrict(raw)
	if err != nil {
		return 0
	}
	return v
}

// ParseStrict behaves like Parse but reports why the input was rejected.
func ParseStrict(raw string) (float64, error) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return 0, ErrEmpty
	}

	upper := strings.ToUpper(s)
	for _, prefix := range currencyPrefixes {
		if strings.HasPrefix(upper, prefix) {
			s = strings.TrimPrefix(s[len(prefix):], ".")
			break
		}
	}

	// Thousands separators
	s = strings.Map(func(r rune) rune {
		switch r {
		case ',', '_', '\'', ' ', '\u00a0':
			return -1
		}
		return r
	}, s)
	if s == "" {
		return 0, fmt.Errorf("%w: %q", ErrInvalid, raw)
	}

	if !plainNumber(s) {
		return 0, fmt.Errorf("%w: %q", ErrInvalid, raw)
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, fmt.Errorf("%w: %q", ErrInvalid, raw)
	}
	if v < 0 {
		return 0, fmt.Errorf("%w: %q", ErrNegative, raw)
	}
	return Normalize(v), nil
}

// Normalize applies the zero-fallback policy to an already numeric income
// and caps it at MaxAmount.
func Normalize(v float64) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) || v <= 0 {
		return 0
	}
	if v > MaxAmount {
		return MaxAmount
	}
	return v
}

// plainNumber reports whether s is an optionally signed decimal with at most
// one point and an optional exponent. Hex, NaN and Inf spellings that
// strconv would accept are refused.
func plainNumber(s string) bool {
	i := 0
	if i < len(s) && (s[i] == '+' || s[i] == '-') {
		i++
	}

	digits := 0
	seenDot := false
	for ; i < len(s); i++ {
		c := s[i]
		if c >= '0' && c <= '9' {
			digits++
			continue
		}
		if c == '.' && !seenDot {
			seenDot = true
			continue
		}
		break
	}
	if digits == 0 {
		return false
	}
	if i == len(s) {
		return true
	}

	if s[i] != 'e' && s[i] != 'E' {
		return false
	}
	i++
	if i < len(s) && (s[i] == '+' || s[i] == '-') {
		i++
	}
	if i == len(s) {
		return false
	}
	for ; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}
