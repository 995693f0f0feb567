package auth

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"sync"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/oauth2"

	"github.com/naveenspark/ieum/pkg/domain"
)

// Kakao's authorization-code endpoints.
const (
	KakaoAuthURL  = "https://kauth.kakao.com/oauth/authorize"
	KakaoTokenURL = "https://kauth.kakao.com/oauth/token"
)

// ExchangeState is the delegated-identity handshake's state.
type ExchangeState string

const (
	StateAwaitingCode      ExchangeState = "awaiting_code"
	StateExchangingToken   ExchangeState = "exchanging_token"
	StateResolvingIdentity ExchangeState = "resolving_identity"
	StateComplete          ExchangeState = "complete"
	StateFailed            ExchangeState = "failed"
)

// ProviderConfig describes the Kakao application.
type ProviderConfig struct {
	ClientID     string
	ClientSecret string
	AuthURL      string
	TokenURL     string
}

// Initialized reports whether the provider can be used at all.
func (c ProviderConfig) Initialized() bool {
	return c.ClientID != "" && c.AuthURL != "" && c.TokenURL != ""
}

// Redirect is what the provider sent back on the redirect URL.
type Redirect struct {
	Code  string
	Error string
	// Clean is the redirect URL with every query parameter and fragment
	// removed; it is what the browser is sent to after capture.
	Clean string
}

// RedirectURIFor returns origin+path of u, with no query or fragment.
func RedirectURIFor(u *url.URL) string {
	clean := url.URL{Scheme: u.Scheme, Host: u.Host, Path: u.Path, RawPath: u.RawPath}
	return clean.String()
}

// ScrubURL strips the query and fragment from u, leaving only the path.
func ScrubURL(u *url.URL) string {
	if u.Path == "" {
		return "/"
	}
	return (&url.URL{Path: u.Path, RawPath: u.RawPath}).String()
}

// Exchange drives one Kakao authorization-code handshake:
// awaiting_code -> exchanging_token -> resolving_identity -> complete|failed.
// Nothing is retried; a failed exchange is replaced by a new one.
type Exchange struct {
	cfg        ProviderConfig
	mode       domain.Mode
	gateway    *Gateway
	httpClient *http.Client
	log        *zap.Logger

	mu          sync.Mutex
	state       ExchangeState
	redirectURI string
	stateParam  string
	captured    bool
	used        map[string]bool
}

// NewExchange creates an exchange for the login surface of mode.
func NewExchange(cfg ProviderConfig, mode domain.Mode, gw *Gateway, log *zap.Logger) *Exchange {
	if log == nil {
		log = zap.NewNop()
	}
	return &Exchange{
		cfg:     cfg,
		mode:    mode,
		gateway: gw,
		log:     log,
		state:   StateAwaitingCode,
		used:    make(map[string]bool),
	}
}

// WithHTTPClient sets the client used for the token endpoint.
func (e *Exchange) WithHTTPClient(hc *http.Client) *Exchange {
	e.httpClient = hc
	return e
}

// State returns the current state.
func (e *Exchange) State() ExchangeState {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.state
}

// Mode returns the mode of the surface that owns the exchange.
func (e *Exchange) Mode() domain.Mode {
	return e.mode
}

// RedirectURI returns the redirect URI recorded for the token exchange.
func (e *Exchange) RedirectURI() string {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.redirectURI
}

func (e *Exchange) oauthConfig(redirectURI string) *oauth2.Config {
	return &oauth2.Config{
		ClientID:     e.cfg.ClientID,
		ClientSecret: e.cfg.ClientSecret,
		RedirectURL:  redirectURI,
		Endpoint: oauth2.Endpoint{
			AuthURL:   e.cfg.AuthURL,
			TokenURL:  e.cfg.TokenURL,
			AuthStyle: oauth2.AuthStyleInParams,
		},
	}
}

// Initiate returns the provider authorization URL for a redirect back to
// page. When the provider is not initialized it logs and returns ok=false
// without surfacing an error.
func (e *Exchange) Initiate(page *url.URL) (authURL string, ok bool) {
	if !e.cfg.Initialized() || page == nil || page.Host == "" {
		e.log.Warn("kakao login requested before provider was initialized",
			zap.Bool("client_id_set", e.cfg.ClientID != ""),
			zap.Bool("redirect_set", page != nil && page.Host != ""))
		return "", false
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	e.redirectURI = RedirectURIFor(page)
	e.stateParam = uuid.NewString()
	e.state = StateAwaitingCode
	e.captured = false
	return e.oauthConfig(e.redirectURI).AuthCodeURL(e.stateParam), true
}

// CaptureRedirect reads code and error from a redirect exactly once per
// navigation. ok is false for an ordinary load with neither parameter, for
// repeated captures and for a redirect whose state belongs to another
// attempt; only an accepted capture changes the exchange. The returned Clean
// URL never carries code or error.
func (e *Exchange) CaptureRedirect(u *url.URL) (Redirect, bool) {
	q := u.Query()
	r := Redirect{Code: q.Get("code"), Error: q.Get("error"), Clean: ScrubURL(u)}
	if r.Code == "" && r.Error == "" {
		return r, false
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	if e.captured || e.state != StateAwaitingCode {
		return r, false
	}
	// A stale tab or a forged request must not use up the live attempt.
	if e.stateParam != "" && q.Get("state") != e.stateParam {
		e.log.Warn("ignored kakao redirect with a foreign state", zap.Bool("has_code", r.Code != ""))
		return Redirect{Clean: r.Clean}, false
	}
	e.captured = true

	if e.redirectURI == "" {
		// No initiate in this process: rebuild the redirect URI from the
		// redirect itself.
		e.redirectURI = RedirectURIFor(u)
	}
	if r.Error != "" {
		e.state = StateFailed
		e.log.Info("kakao redirect carried an error",
			zap.String("error", r.Error), zap.String("description", q.Get("error_description")))
	}
	return r, true
}

// ExchangeToken trades code for a Kakao access token. A code is accepted at
// most once.
func (e *Exchange) ExchangeToken(ctx context.Context, code string) (string, error) {
	e.mu.Lock()
	if e.used[code] || e.state != StateAwaitingCode {
		e.mu.Unlock()
		return "", ErrCodeReplayed
	}
	e.used[code] = true
	e.state = StateExchangingToken
	redirectURI := e.redirectURI
	e.mu.Unlock()

	if e.httpClient != nil {
		ctx = context.WithValue(ctx, oauth2.HTTPClient, e.httpClient)
	}
	tok, err := e.oauthConfig(redirectURI).Exchange(ctx, code)
	if err == nil && tok.AccessToken == "" {
		err = ErrUnexpectedResponse
	}
	if err != nil {
		e.setState(StateFailed)
		e.log.Error("kakao token exchange failed", zap.Error(err))
		return "", fmt.Errorf("%w: %v", ErrTokenExchange, err)
	}
	return tok.AccessToken, nil
}

// ResolveIdentity resolves the Kakao token through the gateway.
func (e *Exchange) ResolveIdentity(ctx context.Context, token string) (Resolution, error) {
	e.mu.Lock()
	if e.state != StateExchangingToken {
		st := e.state
		e.mu.Unlock()
		return Resolution{}, fmt.Errorf("auth.ResolveIdentity: exchange is %s", st)
	}
	e.state = StateResolvingIdentity
	e.mu.Unlock()

	res, err := e.gateway.Resolve(ctx, e.mode, DelegatedToken{AccessToken: token})
	if err != nil {
		e.setState(StateFailed)
		return Resolution{}, err
	}
	e.setState(StateComplete)
	return res, nil
}

// Complete runs the whole post-redirect handshake for r.
func (e *Exchange) Complete(ctx context.Context, r Redirect) (Resolution, error) {
	if r.Error != "" {
		e.setState(StateFailed)
		return Resolution{}, fmt.Errorf("%w: %s", ErrProviderDenied, r.Error)
	}
	token, err := e.ExchangeToken(ctx, r.Code)
	if err != nil {
		return Resolution{}, err
	}
	return e.ResolveIdentity(ctx, token)
}

func (e *Exchange) setState(s ExchangeState) {
	e.mu.Lock()
	e.state = s
	e.mu.Unlock()
}
