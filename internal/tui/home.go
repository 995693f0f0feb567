package tui

import (
	"context"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"

	"github.com/naveenspark/ieum/internal/route"
	"github.com/naveenspark/ieum/pkg/domain"
)

// homeModel is a mode's home area. It is only reachable through the guard,
// so a session for its mode exists when it opens.
type homeModel struct {
	svc     *services
	mode    domain.Mode
	session domain.Session
	notice  string
	err     string
}

func newHomeModel(svc *services, mode domain.Mode) homeModel {
	s, _, err := svc.Sessions.Load(context.Background(), mode)
	if err != nil {
		svc.Log.Warn("load session", zap.String("mode", mode.String()), zap.Error(err))
	}
	return homeModel{svc: svc, mode: mode, session: s}
}

func (m homeModel) Update(msg tea.Msg) (homeModel, tea.Cmd) {
	key, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}
	switch key.String() {
	case "q":
		return m, tea.Quit
	case "l":
		if err := m.svc.Sessions.Clear(context.Background(), m.mode); err != nil {
			m.err = "로그아웃하지 못했습니다."
			return m, nil
		}
		return m, navigate(route.Entry, "로그아웃했습니다.")
	case "m":
		return m, navigate(m.mode.Other().Home(), "")
	case "p":
		if m.mode == domain.ModeNormal {
			return m, navigate(route.ChangePassword, "")
		}
	}
	return m, nil
}

func (m homeModel) View() string {
	var b strings.Builder
	name := greetingName(m.session)
	if m.mode == domain.ModeSenior {
		b.WriteString(" " + seniorTextStyle.Render(name+"님, 반갑습니다!") + "\n\n")
		b.WriteString(" " + seniorTextStyle.Render("오늘도 좋은 하루 보내세요.") + "\n")
	} else {
		b.WriteString(" " + selectedStyle.Render(name+"님, 환영합니다.") + "\n\n")
		b.WriteString(" " + dimStyle.Render("새 소식이 없습니다.") + "\n")
	}
	switch {
	case m.err != "":
		b.WriteString("\n " + errorStyle.Render(m.err))
	case m.notice != "":
		b.WriteString("\n " + noticeStyle.Render(m.notice))
	}
	return b.String()
}

func (m homeModel) help() string {
	if m.mode == domain.ModeNormal {
		return helpBar("p", "password", "m", "senior mode", "l", "logout", "q", "quit")
	}
	return helpBar("m", "normal mode", "l", "logout", "q", "quit")
}
