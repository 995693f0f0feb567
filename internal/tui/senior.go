package tui

import (
	"context"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/naveenspark/ieum/internal/auth"
	"github.com/naveenspark/ieum/internal/browser"
	"github.com/naveenspark/ieum/internal/route"
	"github.com/naveenspark/ieum/pkg/domain"
)

type seniorStep int

const (
	stepPhone seniorStep = iota
	stepCode
)

// codeSentMsg reports the result of issuing or resending a code.
type codeSentMsg struct {
	challenge *domain.VerificationChallenge
	err       error
}

// verifyFailedMsg ends a failed code verification.
type verifyFailedMsg struct {
	err error
}

// countdownTickMsg is the one-second countdown wake-up for the challenge of
// generation gen.
type countdownTickMsg struct {
	gen int
}

func countdownTick(gen int) tea.Cmd {
	return tea.Tick(time.Second, func(time.Time) tea.Msg {
		return countdownTickMsg{gen: gen}
	})
}

// seniorLoginModel is the senior-mode login surface: phone, then a
// one-time code with a 60-second countdown.
type seniorLoginModel struct {
	svc       *services
	step      seniorStep
	phone     form
	code      form
	remaining time.Duration
	expired   bool
	inflight  bool
	err       string
	notice    string
	kakao     kakaoFlow
	modal     *signupModal
}

func newSeniorLoginModel(svc *services) seniorLoginModel {
	return seniorLoginModel{
		svc:   svc,
		phone: newForm(field{label: "전화번호", placeholder: "010-0000-0000"}),
		code:  newForm(field{label: "인증번호", placeholder: "6자리 숫자"}),
		kakao: kakaoFlow{mode: domain.ModeSenior},
	}
}

func (m seniorLoginModel) Update(msg tea.Msg) (seniorLoginModel, tea.Cmd) {
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
	case codeSentMsg:
		m.inflight = false
		if msg.err != nil {
			m.err = auth.Describe(msg.err)
			return m, nil
		}
		m.step = stepCode
		m.code.reset()
		m.expired = false
		m.remaining = msg.challenge.ValidityWindow
		m.err = ""
		m.notice = "인증번호를 보냈습니다."
		return m, countdownTick(m.svc.challenges.Generation())

	case countdownTickMsg:
		if msg.gen != m.svc.challenges.Generation() || m.step != stepCode {
			return m, nil
		}
		remaining, state := m.svc.challenges.Tick()
		m.remaining = remaining
		switch state {
		case domain.ChallengePending:
			return m, countdownTick(msg.gen)
		case domain.ChallengeExpired:
			m.expired = true
			m.notice = ""
		}
		return m, nil

	case verifyFailedMsg:
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
		modal := newSignupModal(m.svc, domain.ModeSenior, msg.hint)
		m.modal = &modal
		return m, nil

	case tea.KeyMsg:
		if m.step == stepPhone {
			return m.updatePhoneKeys(msg)
		}
		return m.updateCodeKeys(msg)
	}
	return m, nil
}

func (m seniorLoginModel) updatePhoneKeys(msg tea.KeyMsg) (seniorLoginModel, tea.Cmd) {
	switch msg.String() {
	case "esc":
		return m, navigate(route.Entry, "")
	case "ctrl+k":
		m.err = ""
		return m, m.kakao.start(m.svc)
	case "enter":
		return m.send(false)
	}
	if m.phone.handleKey(msg) {
		m.err = ""
	}
	return m, nil
}

func (m seniorLoginModel) updateCodeKeys(msg tea.KeyMsg) (seniorLoginModel, tea.Cmd) {
	switch msg.String() {
	case "esc":
		m.svc.challenges.Reset()
		m.step = stepPhone
		m.err, m.notice = "", ""
		return m, nil
	case "ctrl+r":
		return m.send(true)
	case "enter":
		return m.verify()
	}
	if m.code.handleKey(msg) {
		m.err = ""
	}
	return m, nil
}

func (m seniorLoginModel) send(resend bool) (seniorLoginModel, tea.Cmd) {
	if m.inflight {
		return m, nil
	}
	phone := m.phone.value(0)
	if !resend {
		// Validation errors show before anything is sent.
		if _, err := domain.ValidateSeniorPhone(phone); err != nil {
			m.err = auth.Describe(err)
			return m, nil
		}
	}
	m.inflight = true
	mgr := m.svc.challenges
	return m, func() tea.Msg {
		var c *domain.VerificationChallenge
		var err error
		if resend {
			c, err = mgr.Resend(context.Background())
		} else {
			c, err = mgr.Issue(context.Background(), phone)
		}
		return codeSentMsg{challenge: c, err: err}
	}
}

func (m seniorLoginModel) verify() (seniorLoginModel, tea.Cmd) {
	if m.inflight {
		return m, nil
	}
	// An expired challenge never reaches the backend.
	if err := m.svc.challenges.Active(); err != nil {
		m.expired = true
		m.err = auth.Describe(err)
		return m, nil
	}
	code := m.code.value(0)
	if err := domain.ValidateCode(code); err != nil {
		m.err = auth.Describe(err)
		return m, nil
	}
	m.inflight = true
	svc := m.svc
	return m, func() tea.Msg {
		ctx := context.Background()
		s, err := svc.challenges.Verify(ctx, code)
		if err != nil {
			return verifyFailedMsg{err: err}
		}
		if err := svc.Sessions.Persist(ctx, s); err != nil {
			return verifyFailedMsg{err: err}
		}
		return sessionMsg{session: s}
	}
}

func (m seniorLoginModel) View() string {
	if m.modal != nil {
		return m.modal.View()
	}
	big := func(s string) string { return seniorTextStyle.Render(s) }
	var b strings.Builder
	switch m.step {
	case stepPhone:
		b.WriteString(" " + big("전화번호를 입력하고 enter를 누르세요.") + "\n\n")
		b.WriteString(m.phone.view(big))
		b.WriteString("\n " + kakaoStyle.Render("ctrl+k 카카오로 시작하기") + "\n")
	case stepCode:
		b.WriteString(" " + big(domain.MaskPhone(domain.NormalizePhone(m.phone.value(0)))+" 으로 보낸 인증번호를 입력하세요.") + "\n\n")
		b.WriteString(m.code.view(big))
		if m.expired {
			b.WriteString("\n " + errorStyle.Bold(true).Render("인증 시간이 지났습니다. ctrl+r 로 다시 받으세요.") + "\n")
		} else {
			b.WriteString("\n " + countdownStyle.Render("남은 시간 "+formatCountdown(m.remaining)) + "\n")
		}
	}
	switch {
	case m.inflight:
		b.WriteString("\n " + dimStyle.Render("잠시만 기다려 주세요..."))
	case m.err != "":
		b.WriteString("\n " + errorStyle.Bold(true).Render(m.err))
	case m.notice != "":
		b.WriteString("\n " + noticeStyle.Bold(true).Render(m.notice))
	}
	if m.kakao.manualURL != "" {
		b.WriteString("\n " + metaStyle.Render(m.kakao.manualURL))
	}
	return b.String()
}

func (m seniorLoginModel) help() string {
	if m.modal != nil {
		return m.modal.help()
	}
	if m.step == stepCode {
		return helpBar("enter", "verify", "ctrl+r", "resend", "esc", "change number")
	}
	return helpBar("enter", "send code", "ctrl+k", "kakao", "esc", "back")
}
