package tui

import (
	"context"
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"go.uber.org/zap"

	"github.com/naveenspark/ieum/internal/auth"
	"github.com/naveenspark/ieum/internal/browser"
	"github.com/naveenspark/ieum/internal/callback"
	"github.com/naveenspark/ieum/internal/route"
	"github.com/naveenspark/ieum/internal/session"
	"github.com/naveenspark/ieum/pkg/domain"
)

// Deps are the collaborators the app is built from.
type Deps struct {
	Backend auth.Backend
	// Authed returns a backend that sends token as its bearer.
	Authed   func(token string) auth.Backend
	Sessions *session.Policy
	Guard    *route.Guard
	// Receiver captures Kakao redirects. Nil disables Kakao login.
	Receiver *callback.Receiver
	Provider auth.ProviderConfig
	Clock    auth.Clock
	Log      *zap.Logger
	// Open hands a URL to the user. Defaults to browser.Launch.
	Open    func(url string) (browser.Outcome, error)
	Version string
}

// services is shared by every screen.
type services struct {
	Deps
	gateway    *auth.Gateway
	challenges *auth.ChallengeManager
	recovery   *auth.ChallengeManager
}

type screen int

const (
	screenEntry screen = iota
	screenLogin
	screenSeniorLogin
	screenSignup
	screenFindPassword
	screenNormalHome
	screenSeniorHome
	screenChangePassword
)

var screens = map[string]screen{
	route.Entry:          screenEntry,
	route.Login:          screenLogin,
	route.SeniorLogin:    screenSeniorLogin,
	route.Signup:         screenSignup,
	route.FindPassword:   screenFindPassword,
	route.NormalHome:     screenNormalHome,
	route.SeniorHome:     screenSeniorHome,
	route.ChangePassword: screenChangePassword,
}

// navigateMsg asks the app to move to path; notice is shown on arrival.
type navigateMsg struct {
	path   string
	notice string
}

func navigate(path, notice string) tea.Cmd {
	return func() tea.Msg {
		return navigateMsg{path: path, notice: notice}
	}
}

// sessionMsg reports a session that has been written to the store.
type sessionMsg struct {
	session domain.Session
}

// redirectMsg is a Kakao redirect captured by the loopback receiver.
type redirectMsg callback.Result

func listenRedirect(ch <-chan callback.Result) tea.Cmd {
	return func() tea.Msg {
		r, ok := <-ch
		if !ok {
			return nil
		}
		return redirectMsg(r)
	}
}

// App is the root Bubbletea model.
type App struct {
	svc    *services
	path   string
	screen screen

	entry    entryModel
	login    loginModel
	senior   seniorLoginModel
	signup   signupModel
	recovery recoveryModel
	home     homeModel
	password changePasswordModel

	width  int
	height int
	frame  int
}

// NewApp creates the TUI, opening at start after the route guard.
func NewApp(d Deps, start string) App {
	if d.Log == nil {
		d.Log = zap.NewNop()
	}
	if d.Open == nil {
		d.Open = browser.Launch
	}
	if d.Authed == nil {
		b := d.Backend
		d.Authed = func(string) auth.Backend { return b }
	}
	if d.Guard == nil {
		d.Guard = route.NewGuard(d.Sessions, d.Log)
	}
	svc := &services{
		Deps:       d,
		gateway:    auth.NewGateway(d.Backend, d.Log),
		challenges: auth.NewChallengeManager(d.Backend, d.Clock, d.Log),
		recovery:   auth.NewChallengeManager(d.Backend, d.Clock, d.Log),
	}
	a := App{svc: svc}
	a, _ = a.goTo(start, "")
	return a
}

// Path is the route currently shown.
func (a App) Path() string {
	return a.path
}

func (a App) Init() tea.Cmd {
	cmds := []tea.Cmd{shimmerTickCmd()}
	if a.svc.Receiver != nil {
		cmds = append(cmds, listenRedirect(a.svc.Receiver.Results()))
	}
	return tea.Batch(cmds...)
}

// goTo runs path through the guard, following redirects, and opens the
// resulting screen fresh.
func (a App) goTo(path, notice string) (App, tea.Cmd) {
	ctx := context.Background()
	for hops := 0; hops < 4; hops++ {
		d := a.svc.Guard.Check(ctx, path)
		if d.Allow {
			break
		}
		a.svc.Log.Debug("navigation redirected", zap.String("from", path), zap.String("to", d.Redirect))
		path = d.Redirect
		notice = ""
	}
	sc, ok := screens[path]
	if !ok {
		path, sc = route.Entry, screenEntry
	}

	// Leaving a login surface tears down its countdown and pending Kakao login.
	if a.path != path {
		a.teardown()
	}
	a.path = path
	a.screen = sc

	switch sc {
	case screenEntry:
		a.entry = newEntryModel(a.svc)
	case screenLogin:
		a.login = newLoginModel(a.svc)
	case screenSeniorLogin:
		a.senior = newSeniorLoginModel(a.svc)
	case screenSignup:
		a.signup = newSignupModel(a.svc)
	case screenFindPassword:
		a.recovery = newRecoveryModel(a.svc)
	case screenNormalHome:
		a.home = newHomeModel(a.svc, domain.ModeNormal)
	case screenSeniorHome:
		a.home = newHomeModel(a.svc, domain.ModeSenior)
	case screenChangePassword:
		a.password = newChangePasswordModel(a.svc)
	}
	a.setNotice(notice)
	return a, nil
}

func (a *App) teardown() {
	switch a.screen {
	case screenSeniorLogin:
		a.svc.challenges.Reset()
		a.senior.kakao.cancel(a.svc)
	case screenLogin:
		a.login.kakao.cancel(a.svc)
	case screenFindPassword:
		a.svc.recovery.Reset()
	}
}

func (a *App) setNotice(notice string) {
	if notice == "" {
		return
	}
	switch a.screen {
	case screenLogin:
		a.login.notice = notice
	case screenSeniorLogin:
		a.senior.notice = notice
	case screenNormalHome, screenSeniorHome:
		a.home.notice = notice
	case screenEntry:
		a.entry.notice = notice
	}
}

func (a App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height
		return a, nil

	case shimmerTickMsg:
		a.frame++
		return a, shimmerTickCmd()

	case navigateMsg:
		return a.goTo(msg.path, msg.notice)

	case sessionMsg:
		next, cmd := a.goTo(msg.session.Mode.Home(), "")
		// Only the token is stored, so the name from the login response is
		// carried over when the token has no claims.
		if (next.screen == screenNormalHome || next.screen == screenSeniorHome) &&
			next.home.mode == msg.session.Mode && next.home.session.DisplayName == "" {
			next.home.session.DisplayName = msg.session.DisplayName
		}
		return next, cmd

	case redirectMsg:
		var next, cmd tea.Cmd
		if a.svc.Receiver != nil {
			next = listenRedirect(a.svc.Receiver.Results())
		}
		switch {
		case msg.Mode == domain.ModeNormal && a.screen == screenLogin:
			a.login, cmd = a.login.Update(msg)
		case msg.Mode == domain.ModeSenior && a.screen == screenSeniorLogin:
			a.senior, cmd = a.senior.Update(msg)
		default:
			a.svc.Log.Info("kakao redirect arrived for a surface that is not shown", zap.String("mode", msg.Mode.String()))
		}
		return a, tea.Batch(cmd, next)

	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			return a, tea.Quit
		}
	}

	var cmd tea.Cmd
	switch a.screen {
	case screenEntry:
		a.entry, cmd = a.entry.Update(msg)
	case screenLogin:
		a.login, cmd = a.login.Update(msg)
	case screenSeniorLogin:
		a.senior, cmd = a.senior.Update(msg)
	case screenSignup:
		a.signup, cmd = a.signup.Update(msg)
	case screenFindPassword:
		a.recovery, cmd = a.recovery.Update(msg)
	case screenNormalHome, screenSeniorHome:
		a.home, cmd = a.home.Update(msg)
	case screenChangePassword:
		a.password, cmd = a.password.Update(msg)
	}
	return a, cmd
}

func (a App) View() string {
	logo := renderShimmerLogo(a.frame)
	pad := (a.width - lipgloss.Width(logo)) / 2
	if pad < 0 {
		pad = 0
	}
	header := strings.Repeat(" ", pad) + logo

	var title, body, help string
	switch a.screen {
	case screenEntry:
		title, body, help = "이음", a.entry.View(), a.entry.help()
	case screenLogin:
		title, body, help = "로그인 "+ModeBadge(domain.ModeNormal), a.login.View(), a.login.help()
	case screenSeniorLogin:
		title, body, help = seniorTitleStyle.Render("시니어 로그인"), a.senior.View(), a.senior.help()
	case screenSignup:
		title, body, help = "회원가입", a.signup.View(), a.signup.help()
	case screenFindPassword:
		title, body, help = "비밀번호 찾기", a.recovery.View(), a.recovery.help()
	case screenNormalHome, screenSeniorHome:
		title, body, help = "홈 "+ModeBadge(a.home.mode), a.home.View(), a.home.help()
	case screenChangePassword:
		title, body, help = "비밀번호 변경", a.password.View(), a.password.help()
	}

	// Chrome: header(1) + title(1) + blank(1) + help(1)
	chrome := 4
	body = strings.TrimRight(truncateToHeight(body, a.height-chrome), "\n")
	return fmt.Sprintf("%s\n %s\n\n%s\n%s", header, titleStyle.Render(title), body, help)
}
