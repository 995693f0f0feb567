package tui

import (
	"context"
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"

	"github.com/naveenspark/ieum/pkg/domain"
)

// entryModel is the entry page: pick a mode.
type entryModel struct {
	svc    *services
	cursor int
	held   map[domain.Mode]bool
	notice string
}

func newEntryModel(svc *services) entryModel {
	held, err := svc.Sessions.Held(context.Background())
	if err != nil {
		svc.Log.Warn("read sessions", zap.Error(err))
	}
	return entryModel{svc: svc, held: held}
}

func (m entryModel) Update(msg tea.Msg) (entryModel, tea.Cmd) {
	key, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}
	switch key.String() {
	case "q":
		return m, tea.Quit
	case "j", "down", "tab":
		m.cursor = (m.cursor + 1) % len(domain.Modes)
	case "k", "up", "shift+tab":
		m.cursor = (m.cursor - 1 + len(domain.Modes)) % len(domain.Modes)
	case "1":
		return m, m.choose(domain.ModeNormal)
	case "2":
		return m, m.choose(domain.ModeSenior)
	case "enter":
		return m, m.choose(domain.Modes[m.cursor])
	}
	return m, nil
}

// choose goes to the mode's home when it already holds a session, else to
// its login surface.
func (m entryModel) choose(mode domain.Mode) tea.Cmd {
	if m.held[mode] {
		return navigate(mode.Home(), "")
	}
	return navigate(mode.LoginRoute(), "")
}

func (m entryModel) View() string {
	var b strings.Builder
	b.WriteString(normalStyle.Render(" 어떤 모드로 시작할까요?") + "\n\n")
	labels := []string{"일반 모드 · 모든 기능", "시니어 모드 · 큰 글씨, 전화번호로 간편 로그인"}
	for i, mode := range domain.Modes {
		prefix := "   "
		label := dimStyle.Render(labels[i])
		if i == m.cursor {
			prefix = " " + accentStyle.Render(">") + " "
			label = ModeStyle(mode).Render(labels[i])
		}
		line := fmt.Sprintf("%s%d  %s", prefix, i+1, label)
		if m.held[mode] {
			line += "  " + noticeStyle.Render("● 로그인됨")
		}
		b.WriteString(line + "\n")
	}
	if m.notice != "" {
		b.WriteString("\n " + noticeStyle.Render(m.notice) + "\n")
	}
	if m.svc.Version != "" {
		b.WriteString("\n " + metaStyle.Render("ieum "+m.svc.Version) + "\n")
	}
	return b.String()
}

func (m entryModel) help() string {
	return helpBar("1/2", "mode", "j/k", "move", "enter", "select", "q", "quit")
}
