package tui

import (
	"strings"
	"unicode/utf8"

	tea "github.com/charmbracelet/bubbletea"
)

// maxInputLen is the maximum number of runes allowed in a form input.
const maxInputLen = 200

// editRune processes a keystroke for inline text editing.
// Handles backspace (rune-aware) and single printable characters.
// Returns the text unchanged for non-printable keys (enter, esc, etc.).
// Input is clamped to maxInputLen runes.
func editRune(text string, key string) string {
	switch key {
	case "backspace":
		if len(text) > 0 {
			runes := []rune(text)
			return string(runes[:len(runes)-1])
		}
		return text
	default:
		if utf8.RuneCountInString(key) == 1 {
			if utf8.RuneCountInString(text) >= maxInputLen {
				return text
			}
			return text + key
		}
		return text
	}
}

// editKey applies a key message to text. Pasted or IME-composed runes arrive
// as one message and are appended one by one.
func editKey(text string, msg tea.KeyMsg) string {
	switch msg.Type {
	case tea.KeyRunes:
		for _, r := range msg.Runes {
			text = editRune(text, string(r))
		}
		return text
	case tea.KeySpace:
		return editRune(text, " ")
	case tea.KeyBackspace:
		return editRune(text, "backspace")
	}
	return text
}

// truncateToHeight limits output to maxLines newline-delimited lines.
// Returns the original string if it fits or maxLines is <= 0.
func truncateToHeight(s string, maxLines int) string {
	if maxLines <= 0 {
		return s
	}
	n := 0
	for i := 0; i < len(s); i++ {
		if s[i] == '\n' {
			n++
			if n >= maxLines {
				return s[:i+1]
			}
		}
	}
	return s
}

// masked hides a secret field's value.
func masked(s string) string {
	return strings.Repeat("•", utf8.RuneCountInString(s))
}
