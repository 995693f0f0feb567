package tui

import (
	"fmt"
	"time"
	"unicode/utf8"

	"github.com/naveenspark/ieum/pkg/domain"
)

// formatCountdown renders the time left on a code as m:ss.
func formatCountdown(d time.Duration) string {
	if d < 0 {
		d = 0
	}
	secs := int((d + time.Second - 1) / time.Second)
	return fmt.Sprintf("%d:%02d", secs/60, secs%60)
}

// truncStr truncates a string to maxLen runes, appending an ellipsis if needed.
func truncStr(s string, maxLen int) string {
	if utf8.RuneCountInString(s) <= maxLen {
		return s
	}
	runes := []rune(s)
	return string(runes[:maxLen-1]) + "…"
}

// greetingName is the name shown on a home view.
func greetingName(s domain.Session) string {
	if s.DisplayName != "" {
		return truncStr(s.DisplayName, 20)
	}
	return "회원"
}
