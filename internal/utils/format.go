package utils

import (
	"unicode/utf8"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

var printer = message.NewPrinter(language.English)

// FormatMoney renders an amount as whole dollars with thousands grouping,
// e.g. "$180,000".
func FormatMoney(amount float64) string {
	return printer.Sprintf("$%.0f", amount)
}

// Truncate cuts s to at most n bytes on a rune boundary and appends "..."
// when anything was removed.
func Truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	for n > 0 && !utf8.RuneStart(s[n]) {
		n--
	}
	return s[:n] + "..."
}
