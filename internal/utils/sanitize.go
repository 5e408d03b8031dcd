package utils

import (
	"html"
	"regexp"
	"strings"
	"unicode"
)

var tagExpr = regexp.MustCompile(`(?s)<[^>]*>`)

// StripTags removes anything that looks like markup. Free-text fields
// are stored plain; rendering is the presentation layer's problem.
func StripTags(input string) string {
	return tagExpr.ReplaceAllString(input, "")
}

// SanitizeText strips markup, escapes what remains and drops control
// characters other than newline and tab.
func SanitizeText(input string) string {
	sanitized := html.EscapeString(StripTags(input))

	var result strings.Builder
	for _, r := range sanitized {
		if unicode.IsControl(r) && r != '\n' && r != '\t' {
			continue
		}
		result.WriteRune(r)
	}
	return strings.TrimSpace(result.String())
}

// NeutralizeFormula prefixes a quote when value starts with a character
// a spreadsheet would interpret as a formula (=, +, -, @).
func NeutralizeFormula(value string) string {
	if value == "" {
		return value
	}
	switch value[0] {
	case '=', '+', '-', '@':
		return "'" + value
	}
	return value
}
