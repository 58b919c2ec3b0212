package core

import (
	"regexp"
	"strings"
)

var tagPattern = regexp.MustCompile(`<[^>]*>`)

// SanitizeText strips control characters and HTML-like tags, collapses
// runs of whitespace to a single space, and trims the result. Categories
// and descriptions pass through this before validation and storage.
func SanitizeText(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		if r < 0x20 || r == 0x7F {
			continue
		}
		b.WriteRune(r)
	}
	cleaned := tagPattern.ReplaceAllString(b.String(), "")
	return strings.Join(strings.Fields(cleaned), " ")
}

// NormalizeCategory lowers a sanitized category for use as the stable
// key that matches limits against spend aggregates.
func NormalizeCategory(s string) string {
	return strings.ToLower(SanitizeText(s))
}
