package auth

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"sync"
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/naveenspark/ieum/pkg/domain"
)

type tokenServer struct {
	srv   *httptest.Server
	mu    sync.Mutex
	forms []url.Values
}

func newTokenServer(t *testing.T, status int) *tokenServer {
	t.Helper()
	ts := &tokenServer{}
	ts.srv = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseForm(); err != nil {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		ts.mu.Lock()
		ts.forms = append(ts.forms, r.PostForm)
		ts.mu.Unlock()
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		if status != http.StatusOK {
			json.NewEncoder(w).Encode(map[string]string{"error": "invalid_grant"}) //nolint:errcheck
			return
		}
		json.NewEncoder(w).Encode(map[string]any{ //nolint:errcheck
			"access_token": "kakao-at",
			"token_type":   "bearer",
			"expires_in":   21599,
		})
	}))
	t.Cleanup(ts.srv.Close)
	return ts
}

func (ts *tokenServer) requests() []url.Values {
	ts.mu.Lock()
	defer ts.mu.Unlock()
	return append([]url.Values(nil), ts.forms...)
}

func newTestExchange(t *testing.T, tokenStatus int, routes map[string]http.HandlerFunc) (*Exchange, *tokenServer, *fakeBackend) {
	t.Helper()
	ts := newTokenServer(t, tokenStatus)
	fb, c := newFakeBackend(t, routes)
	cfg := ProviderConfig{
		ClientID: "kakao-client",
		AuthURL:  "https://kauth.example/oauth/authorize",
		TokenURL: ts.srv.URL + "/oauth/token",
	}
	e := NewExchange(cfg, domain.ModeNormal, NewGateway(c, nil), nil).WithHTTPClient(ts.srv.Client())
	return e, ts, fb
}

func mustParse(t *testing.T, raw string) *url.URL {
	t.Helper()
	u, err := url.Parse(raw)
	if err != nil {
		t.Fatal(err)
	}
	return u
}

func TestExchangeRedirectURIIsOriginPlusPath(t *testing.T) {
	e, ts, _ := newTestExchange(t, http.StatusOK, map[string]http.HandlerFunc{
		"/normal/auth/kakao/login": respond(http.StatusOK, map[string]any{"token": "n1", "user": map[string]any{"id": 1}}),
	})
	page := mustParse(t, "http://127.0.0.1:5173/oauth/kakao/callback?from=login#top")
	const want = "http://127.0.0.1:5173/oauth/kakao/callback"

	authURL, ok := e.Initiate(page)
	if !ok {
		t.Fatal("Initiate() not ok")
	}
	au := mustParse(t, authURL)
	q := au.Query()
	if q.Get("redirect_uri") != want {
		t.Errorf("authorize redirect_uri = %q, want %q", q.Get("redirect_uri"), want)
	}
	if q.Get("response_type") != "code" || q.Get("client_id") != "kakao-client" || q.Get("state") == "" {
		t.Errorf("authorize query = %v", q)
	}

	cb := mustParse(t, want+"?code=abc&state="+url.QueryEscape(q.Get("state")))
	r, ok := e.CaptureRedirect(cb)
	if !ok || r.Code != "abc" {
		t.Fatalf("CaptureRedirect() = %+v, %v", r, ok)
	}
	res, err := e.Complete(context.Background(), r)
	if err != nil {
		t.Fatalf("Complete() error: %v", err)
	}
	if res.Session == nil || res.Session.CredentialToken != "n1" {
		t.Errorf("resolution = %+v", res)
	}
	if e.State() != StateComplete {
		t.Errorf("state = %s, want complete", e.State())
	}

	reqs := ts.requests()
	if len(reqs) != 1 {
		t.Fatalf("token requests = %d, want 1", len(reqs))
	}
	form := reqs[0]
	if form.Get("redirect_uri") != want {
		t.Errorf("token redirect_uri = %q, want byte-identical %q", form.Get("redirect_uri"), want)
	}
	if form.Get("grant_type") != "authorization_code" || form.Get("code") != "abc" || form.Get("client_id") != "kakao-client" {
		t.Errorf("token form = %v", form)
	}
}

func TestCaptureRedirectScrubsURL(t *testing.T) {
	tests := []struct {
		name   string
		raw    string
		wantOK bool
	}{
		{"code", "http://127.0.0.1:1/oauth/kakao/callback?code=abc", true},
		{"error", "http://127.0.0.1:1/oauth/kakao/callback?error=access_denied&error_description=no", true},
		{"both", "http://127.0.0.1:1/oauth/kakao/callback?code=abc&error=x#frag", true},
		{"plain load", "http://127.0.0.1:1/oauth/kakao/callback?tab=2", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := NewExchange(ProviderConfig{}, domain.ModeNormal, nil, nil)
			r, ok := e.CaptureRedirect(mustParse(t, tt.raw))
			if ok != tt.wantOK {
				t.Fatalf("ok = %v, want %v", ok, tt.wantOK)
			}
			clean := mustParse(t, r.Clean)
			if clean.Query().Has("code") || clean.Query().Has("error") || clean.RawQuery != "" || clean.Fragment != "" {
				t.Errorf("Clean = %q still carries parameters", r.Clean)
			}
			if clean.Path != "/oauth/kakao/callback" {
				t.Errorf("Clean path = %q", clean.Path)
			}
		})
	}
}

func TestCaptureRedirectErrorFails(t *testing.T) {
	e, ts, fb := newTestExchange(t, http.StatusOK, nil)
	r, ok := e.CaptureRedirect(mustParse(t, "http://127.0.0.1:1/cb?error=access_denied"))
	if !ok || e.State() != StateFailed {
		t.Fatalf("ok=%v state=%s, want failed", ok, e.State())
	}
	if _, err := e.Complete(context.Background(), r); !errors.Is(err, ErrProviderDenied) {
		t.Errorf("Complete() = %v, want ErrProviderDenied", err)
	}
	if len(ts.requests()) != 0 || total(fb) != 0 {
		t.Error("a failed redirect reached the network")
	}
}

func TestCaptureRedirectOncePerNavigation(t *testing.T) {
	e := NewExchange(ProviderConfig{}, domain.ModeNormal, nil, nil)
	u := mustParse(t, "http://127.0.0.1:1/cb?code=abc")
	if _, ok := e.CaptureRedirect(u); !ok {
		t.Fatal("first capture not ok")
	}
	if _, ok := e.CaptureRedirect(u); ok {
		t.Error("second capture of the same navigation was accepted")
	}
	if got := e.RedirectURI(); got != "http://127.0.0.1:1/cb" {
		t.Errorf("RedirectURI() rebuilt from redirect = %q", got)
	}
}

func TestCaptureRedirectIgnoresForeignState(t *testing.T) {
	e, ts, _ := newTestExchange(t, http.StatusOK, map[string]http.HandlerFunc{
		"/normal/auth/kakao/login": respond(http.StatusOK, map[string]any{"token": "n1"}),
	})
	page := mustParse(t, "http://127.0.0.1:9/login")
	if _, ok := e.Initiate(page); !ok {
		t.Fatal("Initiate() not ok")
	}
	// A second press replaces the state; the first tab's redirect is stale.
	authURL, ok := e.Initiate(page)
	if !ok {
		t.Fatal("Initiate() not ok")
	}
	state := mustParse(t, authURL).Query().Get("state")

	for _, raw := range []string{
		"http://127.0.0.1:9/login?code=old&state=bogus",
		"http://127.0.0.1:9/login?error=access_denied&state=bogus",
		"http://127.0.0.1:9/login?code=old",
	} {
		r, ok := e.CaptureRedirect(mustParse(t, raw))
		if ok || r.Code != "" || r.Error != "" || r.Clean != "/login" {
			t.Errorf("%s: got %+v ok=%v, want ignored and scrubbed", raw, r, ok)
		}
		if e.State() != StateAwaitingCode {
			t.Fatalf("%s: state = %s, want awaiting_code", raw, e.State())
		}
	}
	if len(ts.requests()) != 0 {
		t.Error("foreign redirect reached the token endpoint")
	}

	// The live redirect still completes.
	r, ok := e.CaptureRedirect(mustParse(t, "http://127.0.0.1:9/login?code=live&state="+url.QueryEscape(state)))
	if !ok || r.Code != "live" {
		t.Fatalf("live redirect = %+v ok=%v", r, ok)
	}
	res, err := e.Complete(context.Background(), r)
	if err != nil || res.Session == nil || res.Session.CredentialToken != "n1" {
		t.Fatalf("Complete() = %+v, %v", res, err)
	}
	if got := ts.requests()[0].Get("code"); got != "live" {
		t.Errorf("exchanged code = %q, want live", got)
	}
}

func TestExchangeCodeIsSingleUse(t *testing.T) {
	e, ts, _ := newTestExchange(t, http.StatusOK, map[string]http.HandlerFunc{
		"/normal/auth/kakao/login": respond(http.StatusOK, map[string]any{"token": "n1"}),
	})
	tok, err := e.ExchangeToken(context.Background(), "abc")
	if err != nil || tok != "kakao-at" {
		t.Fatalf("ExchangeToken() = %q, %v", tok, err)
	}
	if e.State() != StateExchangingToken {
		t.Errorf("state = %s, want exchanging_token", e.State())
	}
	if _, err := e.ExchangeToken(context.Background(), "abc"); !errors.Is(err, ErrCodeReplayed) {
		t.Errorf("replay = %v, want ErrCodeReplayed", err)
	}
	if _, err := e.ExchangeToken(context.Background(), "other"); !errors.Is(err, ErrCodeReplayed) {
		t.Errorf("second code in same exchange = %v, want ErrCodeReplayed", err)
	}
	if n := len(ts.requests()); n != 1 {
		t.Errorf("token requests = %d, want 1", n)
	}
}

func TestExchangeTokenFailure(t *testing.T) {
	e, _, fb := newTestExchange(t, http.StatusBadRequest, nil)
	_, err := e.Complete(context.Background(), Redirect{Code: "abc"})
	if !errors.Is(err, ErrTokenExchange) {
		t.Fatalf("Complete() = %v, want ErrTokenExchange", err)
	}
	if e.State() != StateFailed {
		t.Errorf("state = %s, want failed", e.State())
	}
	if total(fb) != 0 {
		t.Error("backend called after failed exchange")
	}
	if _, err := e.ExchangeToken(context.Background(), "abc"); !errors.Is(err, ErrCodeReplayed) {
		t.Errorf("retry after failure = %v, want ErrCodeReplayed", err)
	}
}

func TestInitiateWithoutProviderLogsSilently(t *testing.T) {
	core, logs := observer.New(zapcore.WarnLevel)
	e := NewExchange(ProviderConfig{}, domain.ModeSenior, nil, zap.New(core))

	authURL, ok := e.Initiate(mustParse(t, "http://127.0.0.1:1/cb"))
	if ok || authURL != "" {
		t.Errorf("Initiate() = %q, %v, want silent no-op", authURL, ok)
	}
	if logs.Len() != 1 {
		t.Fatalf("logged %d entries, want 1", logs.Len())
	}
	if e.State() != StateAwaitingCode {
		t.Errorf("state = %s, want awaiting_code", e.State())
	}
}

func TestScrubURL(t *testing.T) {
	tests := map[string]string{
		"http://h/a/b?code=1&error=2#x": "/a/b",
		"http://h?code=1":               "/",
		"/senior/login?code=1":          "/senior/login",
	}
	for raw, want := range tests {
		if got := ScrubURL(mustParse(t, raw)); got != want {
			t.Errorf("ScrubURL(%q) = %q, want %q", raw, got, want)
		}
	}
}
