package utils

import (
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

var printer = message.NewPrinter(language.English)

// FormatNumber groups thousands, e.g. 12345 -> "12,345".
func FormatNumber(n int64) string {
	return printer.Sprintf("%d", n)
}

// Berries renders an amount with the strawberry emoji.
func Berries(n int64) string {
	return "🍓 " + FormatNumber(n)
}

// Title upper-cases the first letter of each word. Casers keep state, so
// one is built per call.
func Title(s string) string {
	return cases.Title(language.English).String(s)
}
