package tui

import (
	"fmt"
	"math"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/naveenspark/ieum/pkg/domain"
)

// Shimmer animation for the 이음 logo.
type shimmerTickMsg time.Time

func shimmerTickCmd() tea.Cmd {
	return tea.Tick(120*time.Millisecond, func(t time.Time) tea.Msg {
		return shimmerTickMsg(t)
	})
}

// renderShimmerLogo renders "I E U M" as a slow wave of warm light, deep
// amber (#8a4b08) to bright tangerine (#ffa94d).
func renderShimmerLogo(frame int) string {
	const text = "IEUM"
	n := len(text)
	t := float64(frame)

	var out strings.Builder
	for i := 0; i < n; i++ {
		x := float64(i) / float64(n-1)
		phase := t*0.08 - x*2.5
		b := math.Sin(phase)*0.5 + 0.5
		b = math.Pow(b, 1.2)*0.8 + 0.2

		r := clampByte(138 + b*(255-138))
		g := clampByte(75 + b*(169-75))
		bl := clampByte(8 + b*(77-8))
		color := fmt.Sprintf("#%02X%02X%02X", r, g, bl)

		out.WriteString(lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color(color)).Render(string(text[i])))
		if i < n-1 {
			out.WriteString("  ")
		}
	}
	return out.String()
}

func clampByte(v float64) int {
	if v > 255 {
		return 255
	}
	if v < 0 {
		return 0
	}
	return int(v)
}

var (
	// Base styles
	dimStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#8a8f98"))

	selectedStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#f1f3f5")).
			Bold(true)

	normalStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#ced4da"))

	metaStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#5c636a"))

	// Help bar
	helpKeyStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#8a8f98"))

	helpLabelStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#5c636a"))

	accentStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#ff922b"))

	titleStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#ffa94d")).
			Bold(true)

	noticeStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#51cf66"))

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#ff6b6b"))

	hintStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#fcc419")).
			Italic(true)

	kakaoStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#191919")).
			Background(lipgloss.Color("#fee500")).
			Bold(true).
			Padding(0, 1)

	inputPlaceholderStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("#3d434a"))

	// Senior mode: larger contrast, everything bold.
	seniorTitleStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("#ffd43b")).
				Bold(true).
				Underline(true)

	seniorTextStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#ffffff")).
			Bold(true)

	countdownStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#ffd43b")).
			Bold(true)

	modalStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("#fee500")).
			Padding(0, 2)

	modeColors = map[domain.Mode]lipgloss.Color{
		domain.ModeNormal: lipgloss.Color("#4dabf7"),
		domain.ModeSenior: lipgloss.Color("#ffd43b"),
	}
)

// ModeStyle returns a bold style colored for mode.
func ModeStyle(m domain.Mode) lipgloss.Style {
	if c, ok := modeColors[m]; ok {
		return lipgloss.NewStyle().Foreground(c).Bold(true)
	}
	return lipgloss.NewStyle().Foreground(lipgloss.Color("#8a8f98")).Bold(true)
}

// ModeBadge returns a short colored badge, e.g. "[시니어]".
func ModeBadge(m domain.Mode) string {
	label, ok := modeLabels[m]
	if !ok {
		return ""
	}
	return ModeStyle(m).Render("[" + label + "]")
}

var modeLabels = map[domain.Mode]string{
	domain.ModeNormal: "일반",
	domain.ModeSenior: "시니어",
}

// helpEntry renders a single "key label" pair for help bars.
func helpEntry(key, label string) string {
	return helpKeyStyle.Render(key) + " " + helpLabelStyle.Render(label)
}

// helpBar joins key/label pairs.
func helpBar(pairs ...string) string {
	var parts []string
	for i := 0; i+1 < len(pairs); i += 2 {
		parts = append(parts, helpEntry(pairs[i], pairs[i+1]))
	}
	return " " + strings.Join(parts, "  ")
}
