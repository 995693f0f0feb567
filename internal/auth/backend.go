package auth

import (
	"context"
	"time"

	"github.com/naveenspark/ieum/pkg/client"
	"github.com/naveenspark/ieum/pkg/domain"
)

// Backend is the subset of the API client the orchestrator calls.
// *client.Client satisfies it.
type Backend interface {
	Login(ctx context.Context, req client.LoginRequest) (*client.AuthResponse, error)
	Signup(ctx context.Context, req client.SignupRequest) (*domain.User, error)
	SendCode(ctx context.Context, req client.SendCodeRequest) error
	SeniorAuthPhone(ctx context.Context, phone, code string) (*client.AuthResponse, error)
	ChangePassword(ctx context.Context, req client.ChangePasswordRequest) error
	KakaoLogin(ctx context.Context, mode domain.Mode, accessToken string) (*client.AuthResponse, error)
	KakaoSignup(ctx context.Context, mode domain.Mode, req client.KakaoSignupRequest) (*client.AuthResponse, error)
}

var _ Backend = (*client.Client)(nil)

// Clock returns the current time. Tests substitute a fixed clock.
type Clock func() time.Time

// sessionFrom builds a session from a login-like response.
func sessionFrom(op string, mode domain.Mode, resp *client.AuthResponse) (domain.Session, error) {
	token := resp.BearerToken()
	if token == "" {
		return domain.Session{}, &TransportError{Op: op, Err: ErrUnexpectedResponse}
	}
	var u domain.User
	if resp.User != nil {
		u = *resp.User
	}
	return domain.NewSession(mode, token, u), nil
}
