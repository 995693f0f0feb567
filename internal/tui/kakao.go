package tui

import (
	"context"
	"errors"
	"net/url"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"

	"github.com/naveenspark/ieum/internal/auth"
	"github.com/naveenspark/ieum/internal/browser"
	"github.com/naveenspark/ieum/internal/session"
	"github.com/naveenspark/ieum/pkg/domain"
)

// browserMsg reports how the authorization URL reached the user.
type browserMsg struct {
	outcome browser.Outcome
	url     string
	// replaced is set when this attempt superseded one still waiting for
	// its redirect.
	replaced bool
}

// kakaoFailedMsg ends a Kakao login attempt with an error.
type kakaoFailedMsg struct {
	err error
}

// signupNeededMsg opens the deferred signup modal on the surface of mode.
type signupNeededMsg struct {
	mode domain.Mode
	hint domain.ProviderProfile
}

// kakaoFlow is a login surface's Kakao button. Every press starts a fresh
// exchange; nothing is retried.
type kakaoFlow struct {
	mode     domain.Mode
	exchange *auth.Exchange
	inflight bool
	// manualURL is shown when neither a browser nor the clipboard worked.
	manualURL string
}

// start initiates an exchange. An uninitialized provider is logged by the
// exchange and the press does nothing.
func (k *kakaoFlow) start(svc *services) tea.Cmd {
	if k.inflight {
		return nil
	}
	ex := auth.NewExchange(svc.Provider, k.mode, svc.gateway, svc.Log)
	authURL, ok := ex.Initiate(pageURL(svc, k.mode))
	if !ok {
		return nil
	}
	replaced := k.exchange != nil
	k.exchange = ex
	k.manualURL = ""
	svc.Receiver.Arm(ex)

	open := svc.Open
	return func() tea.Msg {
		out, err := open(authURL)
		if err != nil {
			svc.Log.Warn("open browser", zap.Error(err))
		}
		return browserMsg{outcome: out, url: authURL, replaced: replaced}
	}
}

// complete finishes the handshake for a captured redirect.
func (k *kakaoFlow) complete(svc *services, r auth.Redirect) tea.Cmd {
	ex := k.exchange
	if ex == nil {
		return nil
	}
	k.inflight = true
	mode := k.mode
	return func() tea.Msg {
		ctx := context.Background()
		res, err := ex.Complete(ctx, r)
		if err != nil {
			return kakaoFailedMsg{err: err}
		}
		if res.Signup != nil {
			if err := svc.Sessions.StashPending(ctx, res.Signup.AccessToken); err != nil {
				return kakaoFailedMsg{err: err}
			}
			return signupNeededMsg{mode: mode, hint: res.Signup.Hint}
		}
		if err := svc.Sessions.Persist(ctx, *res.Session); err != nil {
			return kakaoFailedMsg{err: err}
		}
		return sessionMsg{session: *res.Session}
	}
}

// finished clears the in-flight exchange after any outcome.
func (k *kakaoFlow) finished(svc *services) {
	k.inflight = false
	k.exchange = nil
	if svc.Receiver != nil {
		svc.Receiver.Disarm(k.mode)
	}
}

// cancel abandons an in-progress exchange when its surface goes away.
func (k *kakaoFlow) cancel(svc *services) {
	if k.exchange != nil {
		k.finished(svc)
	}
}

// staleTabNotice follows the notice when an earlier login page was replaced.
const staleTabNotice = "먼저 열었던 카카오 로그인 창은 더 이상 사용할 수 없습니다."

func (k kakaoFlow) notice(msg browserMsg) string {
	var n string
	switch msg.outcome {
	case browser.Opened:
		n = "브라우저에서 카카오 로그인을 완료해 주세요."
	case browser.Copied:
		n = "로그인 주소를 클립보드에 복사했습니다. 브라우저에 붙여넣어 주세요."
	default:
		n = "아래 주소를 브라우저에서 열어 주세요."
	}
	if msg.replaced {
		n += " " + staleTabNotice
	}
	return n
}

func pageURL(svc *services, mode domain.Mode) *url.URL {
	if svc.Receiver == nil {
		return nil
	}
	return svc.Receiver.PageURL(mode)
}

// Deferred signup modal fields.
const (
	modalName = iota
	modalUsername
	modalPhone
)

// signupFailedMsg ends a failed modal submission.
type signupFailedMsg struct {
	err error
}

// signupModal collects the fields a new Kakao identity still needs. Its
// mode is the mode of the surface that opened it.
type signupModal struct {
	collector *auth.SignupCollector
	form      form
	inflight  bool
	err       string
	closed    bool
}

func newSignupModal(svc *services, mode domain.Mode, hint domain.ProviderProfile) signupModal {
	draft := domain.NewSignupDraft(hint)
	f := newForm(
		field{label: "이름", value: draft.ProvisionalDisplayName, placeholder: "홍길동"},
		field{label: "아이디", placeholder: "영문, 숫자, _ . 3-30자"},
		field{label: "휴대폰", placeholder: "010-0000-0000"},
	)
	if draft.ProvisionalDisplayName != "" {
		f.focus = modalUsername
	}
	return signupModal{collector: auth.NewSignupCollector(svc.Backend, mode, svc.Log), form: f}
}

func (m signupModal) draft() domain.SignupDraft {
	return domain.SignupDraft{
		ProvisionalDisplayName: m.form.value(modalName),
		ChosenHandle:           m.form.value(modalUsername),
		PhoneNumber:            m.form.value(modalPhone),
	}
}

func (m signupModal) Update(svc *services, msg tea.Msg) (signupModal, tea.Cmd) {
	switch msg := msg.(type) {
	case signupFailedMsg:
		m.inflight = false
		m.err = auth.Describe(msg.err)
		return m, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "esc":
			if err := svc.Sessions.DiscardPending(context.Background()); err != nil {
				svc.Log.Warn("discard pending kakao token", zap.Error(err))
			}
			m.closed = true
			return m, nil
		case "enter", "ctrl+s":
			if msg.String() == "enter" && !m.form.last() {
				m.form.next()
				return m, nil
			}
			return m.submit(svc)
		}
		m.err = ""
		if m.form.handleKey(msg) && m.form.focus == modalUsername {
			m.form.setHint(modalUsername, handleFeedback(m.form.value(modalUsername)))
		}
	}
	return m, nil
}

// handleFeedback is the live username message, empty when valid or blank.
func handleFeedback(handle string) string {
	if handle == "" {
		return ""
	}
	var verr *domain.ValidationError
	if errors.As(domain.ValidateHandle(handle), &verr) {
		return verr.Message
	}
	return ""
}

func (m signupModal) submit(svc *services) (signupModal, tea.Cmd) {
	if m.inflight {
		return m, nil
	}
	draft := m.draft()
	if _, err := draft.Validate(); err != nil {
		m.err = auth.Describe(err)
		return m, nil
	}
	m.inflight = true
	col := m.collector
	return m, func() tea.Msg {
		ctx := context.Background()
		token, err := svc.Sessions.PeekPending(ctx)
		if errors.Is(err, session.ErrNotFound) {
			return signupFailedMsg{err: auth.ErrNoPendingIdentity}
		}
		if err != nil {
			return signupFailedMsg{err: err}
		}
		s, err := col.Submit(ctx, draft, token)
		if err != nil {
			return signupFailedMsg{err: err}
		}
		if _, err := svc.Sessions.TakePending(ctx); err != nil {
			svc.Log.Warn("clear pending kakao token", zap.Error(err))
		}
		if err := svc.Sessions.Persist(ctx, s); err != nil {
			return signupFailedMsg{err: err}
		}
		return sessionMsg{session: s}
	}
}

func (m signupModal) View() string {
	var b strings.Builder
	b.WriteString(kakaoStyle.Render("카카오 회원가입") + "\n")
	b.WriteString(dimStyle.Render("처음 오셨네요. 몇 가지만 더 알려 주세요.") + "\n\n")
	b.WriteString(m.form.view(nil))
	switch {
	case m.inflight:
		b.WriteString("\n" + dimStyle.Render("가입하는 중..."))
	case m.err != "":
		b.WriteString("\n" + errorStyle.Render(m.err))
	}
	return modalStyle.Render(b.String())
}

func (m signupModal) help() string {
	return helpBar("tab", "next", "enter", "submit", "esc", "cancel")
}
