package domain

import (
	"strings"
	"unicode/utf8"

	"golang.org/x/text/unicode/norm"
)

// DisplayNameMaxLen bounds display names in runes.
const DisplayNameMaxLen = 50

// NormalizeDisplayName trims and NFC-composes a display name so Hangul typed
// as separate jamo compares equal to precomposed syllables.
func NormalizeDisplayName(name string) string {
	return norm.NFC.String(strings.Join(strings.Fields(name), " "))
}

// ValidateDisplayName returns the normalized name or a field error.
func ValidateDisplayName(name string) (string, error) {
	n := NormalizeDisplayName(name)
	if n == "" {
		return "", invalid("name", "name is required")
	}
	if utf8.RuneCountInString(n) > DisplayNameMaxLen {
		return "", invalid("name", "name is too long")
	}
	return n, nil
}
