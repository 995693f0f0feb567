package tui

import (
	"context"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/naveenspark/ieum/internal/auth"
	"github.com/naveenspark/ieum/internal/route"
	"github.com/naveenspark/ieum/pkg/domain"
)

const (
	signupName = iota
	signupUsername
	signupPhone
	signupPassword
	signupConfirm
	signupMode
)

// registeredMsg reports the result of a password signup.
type registeredMsg struct {
	user *domain.User
	err  error
}

// signupModel is the password signup form. A successful signup returns to
// the login surface without a session.
type signupModel struct {
	svc      *services
	form     form
	mode     domain.Mode
	inflight bool
	err      string
}

func newSignupModel(svc *services) signupModel {
	return signupModel{
		svc: svc,
		form: newForm(
			field{label: "이름", placeholder: "홍길동"},
			field{label: "아이디", placeholder: "영문, 숫자, _ . 3-30자"},
			field{label: "휴대폰", placeholder: "010-0000-0000"},
			field{label: "비밀번호", secret: true, placeholder: "6자 이상"},
			field{label: "비밀번호 확인", secret: true},
			field{label: "선호 모드", placeholder: "←/→"},
		),
		mode: domain.ModeNormal,
	}
}

func (m signupModel) signupForm() auth.SignupForm {
	return auth.SignupForm{
		Name:          m.form.value(signupName),
		Username:      m.form.value(signupUsername),
		Phone:         m.form.value(signupPhone),
		Password:      m.form.value(signupPassword),
		Confirm:       m.form.value(signupConfirm),
		PreferredMode: m.mode,
	}
}

func (m signupModel) Update(msg tea.Msg) (signupModel, tea.Cmd) {
	switch msg := msg.(type) {
	case registeredMsg:
		m.inflight = false
		if msg.err != nil {
			m.err = auth.Describe(msg.err)
			return m, nil
		}
		return m, navigate(route.Login, "회원가입이 완료되었습니다. 로그인해 주세요.")

	case tea.KeyMsg:
		switch msg.String() {
		case "esc":
			return m, navigate(route.Login, "")
		case "ctrl+s":
			return m.submit()
		case "enter":
			if !m.form.last() {
				m.form.next()
				return m, nil
			}
			return m.submit()
		case "left", "right", " ":
			if m.form.focus == signupMode {
				m.mode = m.mode.Other()
				return m, nil
			}
		}
		if m.form.focus == signupMode {
			return m, nil
		}
		if m.form.handleKey(msg) {
			m.err = ""
			if m.form.focus == signupUsername {
				m.form.setHint(signupUsername, handleFeedback(m.form.value(signupUsername)))
			}
		}
	}
	return m, nil
}

func (m signupModel) submit() (signupModel, tea.Cmd) {
	if m.inflight {
		return m, nil
	}
	f := m.signupForm()
	if _, err := f.Validate(); err != nil {
		m.err = auth.Describe(err)
		return m, nil
	}
	m.inflight = true
	m.err = ""
	b := m.svc.Backend
	return m, func() tea.Msg {
		u, err := auth.RegisterPassword(context.Background(), b, f)
		return registeredMsg{user: u, err: err}
	}
}

func (m signupModel) View() string {
	m.form.set(signupMode, ModeStyle(m.mode).Render(modeLabels[m.mode]))
	var b strings.Builder
	b.WriteString(m.form.view(nil))
	switch {
	case m.inflight:
		b.WriteString("\n " + dimStyle.Render("가입하는 중..."))
	case m.err != "":
		b.WriteString("\n " + errorStyle.Render(m.err))
	}
	return b.String()
}

func (m signupModel) help() string {
	return helpBar("tab", "next", "←/→", "mode", "ctrl+s", "submit", "esc", "back")
}
