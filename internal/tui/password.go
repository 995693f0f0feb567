package tui

import (
	"context"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"

	"github.com/naveenspark/ieum/internal/auth"
	"github.com/naveenspark/ieum/internal/route"
	"github.com/naveenspark/ieum/pkg/domain"
)

// passwordChangedMsg reports the result of a password change.
type passwordChangedMsg struct {
	err error
}

const (
	changeCurrent = iota
	changeNew
	changeConfirm
)

// changePasswordModel changes the signed-in normal user's password.
type changePasswordModel struct {
	svc      *services
	form     form
	token    string
	inflight bool
	err      string
}

func newChangePasswordModel(svc *services) changePasswordModel {
	s, _, err := svc.Sessions.Load(context.Background(), domain.ModeNormal)
	if err != nil {
		svc.Log.Warn("load normal session", zap.Error(err))
	}
	return changePasswordModel{
		svc:   svc,
		token: s.CredentialToken,
		form: newForm(
			field{label: "현재 비밀번호", secret: true},
			field{label: "새 비밀번호", secret: true, placeholder: "6자 이상"},
			field{label: "새 비밀번호 확인", secret: true},
		),
	}
}

func (m changePasswordModel) Update(msg tea.Msg) (changePasswordModel, tea.Cmd) {
	switch msg := msg.(type) {
	case passwordChangedMsg:
		m.inflight = false
		if msg.err != nil {
			m.err = auth.Describe(msg.err)
			return m, nil
		}
		return m, navigate(route.NormalHome, "비밀번호를 변경했습니다.")

	case tea.KeyMsg:
		switch msg.String() {
		case "esc":
			return m, navigate(route.NormalHome, "")
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
	}
	return m, nil
}

func (m changePasswordModel) submit() (changePasswordModel, tea.Cmd) {
	if m.inflight {
		return m, nil
	}
	p := auth.PasswordChange{
		Current: m.form.value(changeCurrent),
		New:     m.form.value(changeNew),
		Confirm: m.form.value(changeConfirm),
	}
	if _, err := p.Validate(); err != nil {
		m.err = auth.Describe(err)
		return m, nil
	}
	m.inflight = true
	b := m.svc.Authed(m.token)
	return m, func() tea.Msg {
		return passwordChangedMsg{err: auth.ChangePassword(context.Background(), b, p)}
	}
}

func (m changePasswordModel) View() string {
	var b strings.Builder
	b.WriteString(m.form.view(nil))
	switch {
	case m.inflight:
		b.WriteString("\n " + dimStyle.Render("변경하는 중..."))
	case m.err != "":
		b.WriteString("\n " + errorStyle.Render(m.err))
	}
	return b.String()
}

func (m changePasswordModel) help() string {
	return helpBar("tab", "next", "enter", "submit", "esc", "back")
}

const (
	recoverPhone = iota
	recoverCode
	recoverNew
	recoverConfirm
)

// recoveryModel resets a forgotten password with a texted code.
type recoveryModel struct {
	svc      *services
	form     form
	sent     bool
	inflight bool
	err      string
	notice   string
}

func newRecoveryModel(svc *services) recoveryModel {
	return recoveryModel{
		svc: svc,
		form: newForm(
			field{label: "휴대폰", placeholder: "010-0000-0000"},
			field{label: "인증번호", placeholder: "ctrl+r 로 받기"},
			field{label: "새 비밀번호", secret: true, placeholder: "6자 이상"},
			field{label: "새 비밀번호 확인", secret: true},
		),
	}
}

func (m recoveryModel) Update(msg tea.Msg) (recoveryModel, tea.Cmd) {
	switch msg := msg.(type) {
	case codeSentMsg:
		m.inflight = false
		if msg.err != nil {
			m.err = auth.Describe(msg.err)
			return m, nil
		}
		m.sent = true
		m.notice = "인증번호를 보냈습니다."
		m.form.focus = recoverCode
		return m, nil

	case passwordChangedMsg:
		m.inflight = false
		if msg.err != nil {
			m.err = auth.Describe(msg.err)
			return m, nil
		}
		return m, navigate(route.Login, "비밀번호를 재설정했습니다. 새 비밀번호로 로그인해 주세요.")

	case tea.KeyMsg:
		switch msg.String() {
		case "esc":
			return m, navigate(route.Login, "")
		case "ctrl+r":
			return m.sendCode()
		case "enter":
			if m.form.focus == recoverPhone && !m.sent {
				return m.sendCode()
			}
			if !m.form.last() {
				m.form.next()
				return m, nil
			}
			return m.submit()
		}
		if m.form.handleKey(msg) {
			m.err = ""
		}
	}
	return m, nil
}

func (m recoveryModel) sendCode() (recoveryModel, tea.Cmd) {
	if m.inflight {
		return m, nil
	}
	phone := m.form.value(recoverPhone)
	if _, err := domain.ValidateStrictPhone(phone); err != nil {
		m.err = auth.Describe(err)
		return m, nil
	}
	m.inflight = true
	mgr := m.svc.recovery
	return m, func() tea.Msg {
		c, err := mgr.IssueRecovery(context.Background(), phone)
		return codeSentMsg{challenge: c, err: err}
	}
}

func (m recoveryModel) submit() (recoveryModel, tea.Cmd) {
	if m.inflight {
		return m, nil
	}
	p := auth.PasswordChange{
		Phone:   m.form.value(recoverPhone),
		Code:    m.form.value(recoverCode),
		New:     m.form.value(recoverNew),
		Confirm: m.form.value(recoverConfirm),
	}
	if _, err := p.Validate(); err != nil {
		m.err = auth.Describe(err)
		return m, nil
	}
	m.inflight = true
	b := m.svc.Backend
	return m, func() tea.Msg {
		return passwordChangedMsg{err: auth.ChangePassword(context.Background(), b, p)}
	}
}

func (m recoveryModel) View() string {
	var b strings.Builder
	b.WriteString(m.form.view(nil))
	switch {
	case m.inflight:
		b.WriteString("\n " + dimStyle.Render("잠시만 기다려 주세요..."))
	case m.err != "":
		b.WriteString("\n " + errorStyle.Render(m.err))
	case m.notice != "":
		b.WriteString("\n " + noticeStyle.Render(m.notice))
	}
	return b.String()
}

func (m recoveryModel) help() string {
	return helpBar("ctrl+r", "send code", "tab", "next", "enter", "submit", "esc", "back")
}
