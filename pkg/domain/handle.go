package domain

import "unicode/utf8"

const (
	HandleMinLen = 3
	HandleMaxLen = 30

	// HandleFormatMessage is shown whenever a handle contains a character
	// outside the allowed class.
	HandleFormatMessage = "username may only contain letters, digits, '_' and '.'"
	// HandleLengthMessage is shown for well-formed handles of the wrong length.
	HandleLengthMessage = "username must be 3 to 30 characters"
)

func isHandleRune(r rune) bool {
	switch {
	case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
		return true
	case r == '_' || r == '.':
		return true
	}
	return false
}

// ValidateHandle checks a candidate username. The character class is checked
// before the length so a bad character always yields the format message.
func ValidateHandle(handle string) error {
	if handle == "" {
		return invalid("username", "username is required")
	}
	for _, r := range handle {
		if !isHandleRune(r) {
			return invalid("username", HandleFormatMessage)
		}
	}
	if n := utf8.RuneCountInString(handle); n < HandleMinLen || n > HandleMaxLen {
		return invalid("username", HandleLengthMessage)
	}
	return nil
}
