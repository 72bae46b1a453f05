// Package strutil holds the small text helpers shared by the ingest readers
// and configuration loading.
package strutil

import (
	"strings"
	"unicode"

	"golang.org/x/text/unicode/norm"
)

// NormalizeLower trims surrounding whitespace and converts to lower case.
func NormalizeLower(value string) string {
	return strings.ToLower(strings.TrimSpace(value))
}

// NormalizeLine folds compatibility characters (full-width digits, ideographic
// commas and spaces) to their ASCII forms and trims the result.
func NormalizeLine(line string) string {
	return strings.TrimSpace(norm.NFKC.String(line))
}

// SplitTokens splits a line on any run of whitespace or commas. Empty tokens
// are never returned.
func SplitTokens(line string) []string {
	return strings.FieldsFunc(line, isSeparator)
}

func isSeparator(r rune) bool {
	return r == ',' || unicode.IsSpace(r)
}

// IsDigits reports whether tok is a non-empty run of ASCII digits. Signs,
// decimal points and exponents disqualify the token.
func IsDigits(tok string) bool {
	if tok == "" {
		return false
	}
	for i := 0; i < len(tok); i++ {
		if tok[i] < '0' || tok[i] > '9' {
			return false
		}
	}
	return true
}
