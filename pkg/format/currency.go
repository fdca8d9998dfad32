// Package format renders amounts for display.
package format

import (
	"strings"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

var printer = message.NewPrinter(language.English)

// Currency returns whole currency units with a currency code and thousands
// separators (e.g., "KES 7,383"). An empty code yields the bare number.
func Currency(code string, amount int64) string {
	number := printer.Sprintf("%d", amount)
	code = strings.TrimSpace(code)
	if code == "" {
		return number
	}
	return code + " " + number
}

// Decimal returns an amount with two decimals and thousands separators
// (e.g., "9,783.15").
func Decimal(amount float64) string {
	return printer.Sprintf("%.2f", amount)
}

// Rate renders a fractional rate as a percentage (e.g., 0.325 -> "32.5%").
func Rate(rate float64) string {
	s := printer.Sprintf("%.2f", rate*100)
	s = strings.TrimRight(strings.TrimRight(s, "0"), ".")
	return s + "%"
}
