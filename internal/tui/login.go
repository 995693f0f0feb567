package tui

import (
	"context"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/naveenspark/ieum/internal/auth"
	"github.com/naveenspark/ieum/internal/browser"
	"github.com/naveenspark/ieum/internal/route"
	"github.com/naveenspark/ieum/pkg/domain"
)

const (
	loginPhone = iota
	loginPassword
)

// loginFailedMsg ends a password login attempt.
type loginFailedMsg struct {
	err error
}

// loginModel is the normal-mode login surface: phone and password, or
// Kakao.
type loginModel struct {
	svc      *services
	form     form
	inflight bool
	err      string
	notice   string
	kakao    kakaoFlow
	modal    *signupModal
}

func newLoginModel(svc *services) loginModel {
	return loginModel{
		svc: svc,
		form: newForm(
			field{label: "휴대폰", placeholder: "010-0000-0000"},
			field{label: "비밀번호", secret: true},
		),
		kakao: kakaoFlow{mode: domain.ModeNormal},
	}
}

func (m loginModel) Update(msg tea.Msg) (loginModel, tea.Cmd) {
	if m.modal != nil {
		if _, ok := msg.(signupFailedMsg); ok || isKey(msg) {
			modal, cmd := m.modal.Update(m.svc, msg)
			m.modal = &modal
			if modal.closed {
				m.modal = nil
			}
			return m, cmd
		}
	}

	switch msg := msg.(type) {
	case loginFailedMsg:
		m.inflight = false
		m.err = auth.Describe(msg.err)
		return m, nil

	case browserMsg:
		m.notice = m.kakao.notice(msg)
		if msg.outcome == browser.Manual {
			m.kakao.manualURL = msg.url
		}
		return m, nil

	case redirectMsg:
		m.err = ""
		m.notice = "카카오 계정을 확인하는 중..."
		return m, m.kakao.complete(m.svc, msg.Redirect)

	case kakaoFailedMsg:
		m.kakao.finished(m.svc)
		m.notice = ""
		m.err = auth.Describe(msg.err)
		return m, nil

	case signupNeededMsg:
		m.kakao.finished(m.svc)
		m.notice = ""
		modal := newSignupModal(m.svc, domain.ModeNormal, msg.hint)
		m.modal = &modal
		return m, nil

	case tea.KeyMsg:
		return m.updateKeys(msg)
	}
	return m, nil
}

func (m loginModel) updateKeys(msg tea.KeyMsg) (loginModel, tea.Cmd) {
	switch msg.String() {
	case "esc":
		return m, navigate(route.Entry, "")
	case "ctrl+n":
		return m, navigate(route.Signup, "")
	case "ctrl+f":
		return m, navigate(route.FindPassword, "")
	case "ctrl+k":
		m.err = ""
		return m, m.kakao.start(m.svc)
	case "enter":
		if !m.form.last() {
			m.form.next()
			return m, nil
		}
		return m.submit()
	}
	if m.form.handleKey(msg) {
		m.err = ""
	}
	return m, nil
}

func (m loginModel) submit() (loginModel, tea.Cmd) {
	if m.inflight {
		return m, nil
	}
	m.inflight = true
	m.err = ""
	m.notice = ""
	cred := auth.PasswordCredential{Phone: m.form.value(loginPhone), Password: m.form.value(loginPassword)}
	svc := m.svc
	return m, func() tea.Msg {
		ctx := context.Background()
		res, err := svc.gateway.Resolve(ctx, domain.ModeNormal, cred)
		if err != nil {
			return loginFailedMsg{err: err}
		}
		if err := svc.Sessions.Persist(ctx, *res.Session); err != nil {
			return loginFailedMsg{err: err}
		}
		return sessionMsg{session: *res.Session}
	}
}

func (m loginModel) View() string {
	if m.modal != nil {
		return m.modal.View()
	}
	var b strings.Builder
	b.WriteString(m.form.view(nil))
	b.WriteString("\n " + kakaoStyle.Render("ctrl+k 카카오로 시작하기") + "\n")
	switch {
	case m.inflight:
		b.WriteString("\n " + dimStyle.Render("로그인하는 중..."))
	case m.err != "":
		b.WriteString("\n " + errorStyle.Render(m.err))
	case m.notice != "":
		b.WriteString("\n " + noticeStyle.Render(m.notice))
	}
	if m.kakao.manualURL != "" {
		b.WriteString("\n " + metaStyle.Render(m.kakao.manualURL))
	}
	return b.String()
}

func (m loginModel) help() string {
	if m.modal != nil {
		return m.modal.help()
	}
	return helpBar("enter", "login", "ctrl+k", "kakao", "ctrl+n", "signup", "ctrl+f", "find password", "esc", "back")
}

func isKey(msg tea.Msg) bool {
	_, ok := msg.(tea.KeyMsg)
	return ok
}
