package client

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/naveenspark/ieum/pkg/domain"
)

func TestLogin(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/auth/login" || r.Method != http.MethodPost {
			http.NotFound(w, r)
			return
		}
		var req LoginRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		if req.Phone != "01011112222" || req.Password != "pw1234" {
			w.WriteHeader(http.StatusUnauthorized)
			json.NewEncoder(w).Encode(map[string]string{"message": "전화번호 또는 비밀번호가 올바르지 않습니다"}) //nolint:errcheck
			return
		}
		json.NewEncoder(w).Encode(map[string]any{ //nolint:errcheck
			"token": "tok-1",
			"user":  map[string]any{"id": 7, "name": "김철수"},
		})
	}))
	defer srv.Close()

	c := New(srv.URL, "")
	resp, err := c.Login(context.Background(), LoginRequest{Phone: "01011112222", Password: "pw1234"})
	if err != nil {
		t.Fatalf("Login() error: %v", err)
	}
	if resp.BearerToken() != "tok-1" {
		t.Errorf("BearerToken() = %q, want %q", resp.BearerToken(), "tok-1")
	}
	if resp.User == nil || resp.User.ID != "7" {
		t.Errorf("User = %+v, want id 7", resp.User)
	}

	_, err = c.Login(context.Background(), LoginRequest{Phone: "01011112222", Password: "wrong"})
	if !IsStatus(err, http.StatusUnauthorized) {
		t.Fatalf("expected 401, got %v", err)
	}
	var httpErr *HTTPError
	if !errors.As(err, &httpErr) || httpErr.Message != "전화번호 또는 비밀번호가 올바르지 않습니다" {
		t.Errorf("message not passed through verbatim: %v", err)
	}
}

func TestSignupSendsAllFields(t *testing.T) {
	var got map[string]string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/auth/signup" {
			http.NotFound(w, r)
			return
		}
		json.NewDecoder(r.Body).Decode(&got) //nolint:errcheck
		w.WriteHeader(http.StatusCreated)
		json.NewEncoder(w).Encode(map[string]any{"user": map[string]any{"id": 3}}) //nolint:errcheck
	}))
	defer srv.Close()

	c := New(srv.URL, "")
	u, err := c.Signup(context.Background(), SignupRequest{
		Name: "김철수", Username: "chulsoo_01", Phone: "01011112222",
		Password: "pw1234", SignupMode: "phone", PreferredMode: domain.ModeNormal,
	})
	if err != nil {
		t.Fatalf("Signup() error: %v", err)
	}
	if u.ID != "3" {
		t.Errorf("ID = %q, want 3", u.ID)
	}
	want := map[string]string{
		"name": "김철수", "username": "chulsoo_01", "phone": "01011112222",
		"password": "pw1234", "signup_mode": "phone", "preferred_mode": "normal",
	}
	for k, v := range want {
		if got[k] != v {
			t.Errorf("body[%q] = %q, want %q", k, got[k], v)
		}
	}
}

func TestKakaoRoutesAreModeScoped(t *testing.T) {
	var paths []string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		paths = append(paths, r.URL.Path)
		if strings.HasSuffix(r.URL.Path, "/login") {
			json.NewEncoder(w).Encode(map[string]any{ //nolint:errcheck
				"needsSignup": true,
				"kakaoUser":   map[string]any{"nickname": "Jane"},
			})
			return
		}
		json.NewEncoder(w).Encode(map[string]any{ //nolint:errcheck
			"tokens": map[string]string{"accessToken": "s-1"},
			"user":   map[string]any{"id": "9"},
		})
	}))
	defer srv.Close()

	c := New(srv.URL, "")
	resp, err := c.KakaoLogin(context.Background(), domain.ModeSenior, "kakao-tok")
	if err != nil {
		t.Fatalf("KakaoLogin() error: %v", err)
	}
	if !resp.NeedsSignup || resp.KakaoUser == nil || resp.KakaoUser.Nickname != "Jane" {
		t.Errorf("unexpected response %+v", resp)
	}
	resp, err = c.KakaoSignup(context.Background(), domain.ModeSenior, KakaoSignupRequest{AccessToken: "kakao-tok"})
	if err != nil {
		t.Fatalf("KakaoSignup() error: %v", err)
	}
	if resp.BearerToken() != "s-1" {
		t.Errorf("BearerToken() = %q, want s-1", resp.BearerToken())
	}
	want := []string{"/senior/auth/kakao/login", "/senior/auth/kakao/signup"}
	for i, p := range want {
		if i >= len(paths) || paths[i] != p {
			t.Errorf("paths = %v, want %v", paths, want)
			break
		}
	}
}

func TestChangePasswordSendsBearer(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer tok" {
			w.WriteHeader(http.StatusUnauthorized)
			json.NewEncoder(w).Encode(map[string]string{"error": "not authenticated"}) //nolint:errcheck
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}))
	defer srv.Close()

	c := New(srv.URL, "")
	err := c.ChangePassword(context.Background(), ChangePasswordRequest{NewPassword: "x"})
	if got := err.Error(); !strings.Contains(got, "HTTP 401") || !strings.Contains(got, "not authenticated") {
		t.Errorf("error = %q, want 401 with message", got)
	}
	if err := c.WithToken("tok").ChangePassword(context.Background(), ChangePasswordRequest{NewPassword: "x"}); err != nil {
		t.Errorf("ChangePassword() with token error: %v", err)
	}
}

func TestTransportError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Write([]byte("{not json")) //nolint:errcheck
	}))
	defer srv.Close()

	c := New(srv.URL, "")
	_, err := c.SeniorAuthPhone(context.Background(), "01099998888", "123456")
	if !IsTransport(err) {
		t.Errorf("malformed body: expected TransportError, got %v", err)
	}

	srv.Close()
	if err := c.SendCode(context.Background(), SendCodeRequest{Phone: "01099998888"}); !IsTransport(err) {
		t.Errorf("closed server: expected TransportError, got %v", err)
	}
}
