package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/naveenspark/ieum/pkg/domain"
)

// Client is the backend API client.
type Client struct {
	baseURL    string
	token      string
	httpClient *http.Client
}

// New creates a new API client. token may be empty for unauthenticated calls.
func New(baseURL, token string) *Client {
	return &Client{
		baseURL: baseURL,
		token:   token,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// WithToken returns a copy of the client that sends token as its bearer.
func (c *Client) WithToken(token string) *Client {
	cp := *c
	cp.token = token
	return &cp
}

// LoginRequest is the password login payload.
type LoginRequest struct {
	Phone    string `json:"phone"`
	Password string `json:"password"`
}

// SignupRequest is the password signup payload.
type SignupRequest struct {
	Name          string      `json:"name"`
	Username      string      `json:"username"`
	Phone         string      `json:"phone"`
	Password      string      `json:"password"`
	SignupMode    string      `json:"signup_mode"`
	PreferredMode domain.Mode `json:"preferred_mode"`
}

// SendCodeRequest asks the backend to text a one-time code.
type SendCodeRequest struct {
	Phone string `json:"phone"`
	Type  string `json:"type,omitempty"`
}

// ChangePasswordRequest covers both the signed-in form and the phone+code
// recovery form.
type ChangePasswordRequest struct {
	CurrentPassword string `json:"currentPassword,omitempty"`
	Phone           string `json:"phone,omitempty"`
	Code            string `json:"code,omitempty"`
	NewPassword     string `json:"newPassword"`
}

// KakaoSignupRequest completes registration for a Kakao identity.
type KakaoSignupRequest struct {
	AccessToken   string      `json:"access_token"`
	Username      string      `json:"username"`
	Phone         string      `json:"phone"`
	Name          string      `json:"name"`
	PreferredMode domain.Mode `json:"preferred_mode,omitempty"`
}

// TokenPair is the alternate token envelope some signup routes return.
type TokenPair struct {
	AccessToken      string `json:"access_token,omitempty"`
	AccessTokenCamel string `json:"accessToken,omitempty"`
	RefreshToken     string `json:"refresh_token,omitempty"`
}

// AuthResponse is the common shape of every login-like response.
type AuthResponse struct {
	Token       string                  `json:"token,omitempty"`
	Tokens      *TokenPair              `json:"tokens,omitempty"`
	User        *domain.User            `json:"user,omitempty"`
	NeedsSignup bool                    `json:"needsSignup,omitempty"`
	KakaoUser   *domain.ProviderProfile `json:"kakaoUser,omitempty"`
}

// BearerToken returns the session token from either envelope.
func (r *AuthResponse) BearerToken() string {
	if r.Token != "" {
		return r.Token
	}
	if r.Tokens != nil {
		if r.Tokens.AccessToken != "" {
			return r.Tokens.AccessToken
		}
		return r.Tokens.AccessTokenCamel
	}
	return ""
}

// Login authenticates with phone and password.
func (c *Client) Login(ctx context.Context, req LoginRequest) (*AuthResponse, error) {
	var resp AuthResponse
	if err := c.post(ctx, "/auth/login", req, &resp); err != nil {
		return nil, fmt.Errorf("client.Login: %w", err)
	}
	return &resp, nil
}

// Signup registers a password account. It does not sign the user in.
func (c *Client) Signup(ctx context.Context, req SignupRequest) (*domain.User, error) {
	var resp struct {
		User domain.User `json:"user"`
	}
	if err := c.post(ctx, "/auth/signup", req, &resp); err != nil {
		return nil, fmt.Errorf("client.Signup: %w", err)
	}
	return &resp.User, nil
}

// SendCode texts a one-time code to phone.
func (c *Client) SendCode(ctx context.Context, req SendCodeRequest) error {
	if err := c.post(ctx, "/auth/send-code", req, nil); err != nil {
		return fmt.Errorf("client.SendCode: %w", err)
	}
	return nil
}

// SeniorAuthPhone verifies a code and signs in to senior mode in one call.
func (c *Client) SeniorAuthPhone(ctx context.Context, phone, code string) (*AuthResponse, error) {
	var resp AuthResponse
	body := map[string]string{"phone": phone, "code": code}
	if err := c.post(ctx, "/senior/auth/phone", body, &resp); err != nil {
		return nil, fmt.Errorf("client.SeniorAuthPhone: %w", err)
	}
	return &resp, nil
}

// ChangePassword updates the password, either for the signed-in user or
// through phone recovery.
func (c *Client) ChangePassword(ctx context.Context, req ChangePasswordRequest) error {
	if err := c.post(ctx, "/auth/change-password", req, nil); err != nil {
		return fmt.Errorf("client.ChangePassword: %w", err)
	}
	return nil
}

// KakaoLogin resolves a Kakao access token against mode's account space.
func (c *Client) KakaoLogin(ctx context.Context, mode domain.Mode, accessToken string) (*AuthResponse, error) {
	var resp AuthResponse
	body := map[string]string{"access_token": accessToken}
	if err := c.post(ctx, "/"+url.PathEscape(string(mode))+"/auth/kakao/login", body, &resp); err != nil {
		return nil, fmt.Errorf("client.KakaoLogin: %w", err)
	}
	return &resp, nil
}

// KakaoSignup registers a Kakao identity in mode's account space.
func (c *Client) KakaoSignup(ctx context.Context, mode domain.Mode, req KakaoSignupRequest) (*AuthResponse, error) {
	var resp AuthResponse
	if err := c.post(ctx, "/"+url.PathEscape(string(mode))+"/auth/kakao/signup", req, &resp); err != nil {
		return nil, fmt.Errorf("client.KakaoSignup: %w", err)
	}
	return &resp, nil
}

func (c *Client) post(ctx context.Context, path string, body any, out any) error {
	return c.doRequest(ctx, http.MethodPost, path, body, out)
}

func (c *Client) doRequest(ctx context.Context, method, path string, body any, out any) error {
	var reqBody io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("marshal body: %w", err)
		}
		reqBody = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reqBody)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return &TransportError{Err: err}
	}
	defer resp.Body.Close() //nolint:errcheck // best-effort close

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		respBody, readErr := io.ReadAll(io.LimitReader(resp.Body, 1<<20)) // 1 MB max error body
		if readErr != nil {
			return &HTTPError{StatusCode: resp.StatusCode, Message: fmt.Sprintf("failed to read body: %v", readErr)}
		}
		return &HTTPError{StatusCode: resp.StatusCode, Message: errorMessage(respBody)}
	}

	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil && err != io.EOF {
			return &TransportError{Err: fmt.Errorf("decode response: %w", err)}
		}
	}
	return nil
}

// errorMessage pulls the human-readable message out of an error body. The
// backend uses "message"; some routes use "error".
func errorMessage(body []byte) string {
	var apiErr struct {
		Message string `json:"message"`
		Error   string `json:"error"`
	}
	if json.Unmarshal(body, &apiErr) == nil {
		if apiErr.Message != "" {
			return apiErr.Message
		}
		if apiErr.Error != "" {
			return apiErr.Error
		}
	}
	return string(bytes.TrimSpace(body))
}
