// Package normalize provides best-effort cleaning for scraped free-text
// fields. All functions are pure and never fail: malformed input is returned
// unchanged or reduced to the empty string.
package normalize

import (
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

var (
	whitespaceRe = regexp.MustCompile(`\s+`)
	zipRe        = regexp.MustCompile(`\d{5}`)

	// foldMarks decomposes accented characters and strips the combining
	// marks, so "Café" normalizes to "Cafe".
	foldMarks = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
)

// allowedPunct is the fixed punctuation allow-list kept by Text.
func allowedPunct(r rune) bool {
	switch r {
	case '-', '.', ',', '&', '\'', '(', ')', '/':
		return true
	}
	return false
}

// Text trims and collapses whitespace, folds diacritics, and strips
// characters outside the permitted set (word characters, space, and a fixed
// punctuation allow-list).
func Text(s string) string {
	if s == "" {
		return ""
	}
	if folded, _, err := transform.String(foldMarks, s); err == nil {
		s = folded
	}
	s = whitespaceRe.ReplaceAllString(strings.TrimSpace(s), " ")

	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		if unicode.IsLetter(r) || unicode.IsDigit(r) || r == '_' || r == ' ' || allowedPunct(r) {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// Phone strips everything but digits and a leading plus, then formats US
// numbers: 10 digits as (AAA) BBB-CCCC, 11 digits with a leading 1 the same
// way after dropping the 1. Anything else passes through digit-stripped.
func Phone(s string) string {
	var b strings.Builder
	for _, r := range s {
		if r >= '0' && r <= '9' || r == '+' {
			b.WriteRune(r)
		}
	}
	digits := b.String()

	switch {
	case len(digits) == 10:
		return "(" + digits[:3] + ") " + digits[3:6] + "-" + digits[6:]
	case len(digits) == 11 && digits[0] == '1':
		return "(" + digits[1:4] + ") " + digits[4:7] + "-" + digits[7:]
	}
	return digits
}

// Zip extracts the first run of 5 consecutive digits. When none is found the
// input is returned unchanged.
func Zip(s string) string {
	if m := zipRe.FindString(s); m != "" {
		return m
	}
	return s
}

// URL trims the value and defaults the scheme to https when none is present.
func URL(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return ""
	}
	if !strings.HasPrefix(s, "http://") && !strings.HasPrefix(s, "https://") {
		s = "https://" + s
	}
	return s
}

// Email trims and lowercases. Syntax validation is a separate pipeline stage.
func Email(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// AlphaNum lowercases and keeps only word characters. Used to build
// deduplication signatures insensitive to punctuation and spacing.
func AlphaNum(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range strings.ToLower(s) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) || r == '_' {
			b.WriteRune(r)
		}
	}
	return b.String()
}
