package auth

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/naveenspark/ieum/pkg/client"
	"github.com/naveenspark/ieum/pkg/domain"
)

// Credential is a proof of identity the gateway can resolve. The set of
// implementations is closed: PasswordCredential and DelegatedToken.
type Credential interface {
	credential()
}

// PasswordCredential is phone plus password.
type PasswordCredential struct {
	Phone    string
	Password string
}

// DelegatedToken is an access token issued by Kakao.
type DelegatedToken struct {
	AccessToken string
}

func (PasswordCredential) credential() {}
func (DelegatedToken) credential()     {}

// SignupRequired means the identity is valid but no account matches it yet.
type SignupRequired struct {
	Hint        domain.ProviderProfile
	AccessToken string
}

// Resolution is the single outcome of a resolve call: exactly one of Session
// or Signup is set.
type Resolution struct {
	Session *domain.Session
	Signup  *SignupRequired
}

// Gateway asks the backend whether a credential matches an account.
type Gateway struct {
	backend Backend
	log     *zap.Logger
}

// NewGateway creates a gateway.
func NewGateway(b Backend, log *zap.Logger) *Gateway {
	if log == nil {
		log = zap.NewNop()
	}
	return &Gateway{backend: b, log: log}
}

// Resolve sends one request for cred and returns its outcome. It never retries.
func (g *Gateway) Resolve(ctx context.Context, mode domain.Mode, cred Credential) (Resolution, error) {
	switch c := cred.(type) {
	case PasswordCredential:
		return g.resolvePassword(ctx, mode, c)
	case DelegatedToken:
		return g.resolveDelegated(ctx, mode, c)
	default:
		return Resolution{}, fmt.Errorf("auth.Resolve: unsupported credential %T", cred)
	}
}

func (g *Gateway) resolvePassword(ctx context.Context, mode domain.Mode, c PasswordCredential) (Resolution, error) {
	phone := domain.NormalizePhone(c.Phone)
	if phone == "" {
		return Resolution{}, &domain.ValidationError{Field: "phone", Message: "phone number is required"}
	}
	if c.Password == "" {
		return Resolution{}, &domain.ValidationError{Field: "password", Message: "password is required"}
	}

	resp, err := g.backend.Login(ctx, client.LoginRequest{Phone: phone, Password: c.Password})
	if err != nil {
		return Resolution{}, g.fail("password login", err)
	}
	s, err := sessionFrom("password login", mode, resp)
	if err != nil {
		return Resolution{}, g.fail("password login", err)
	}
	return Resolution{Session: &s}, nil
}

func (g *Gateway) resolveDelegated(ctx context.Context, mode domain.Mode, c DelegatedToken) (Resolution, error) {
	if c.AccessToken == "" {
		return Resolution{}, ErrNoPendingIdentity
	}
	resp, err := g.backend.KakaoLogin(ctx, mode, c.AccessToken)
	if err != nil {
		return Resolution{}, g.fail("kakao login", err)
	}
	if resp.NeedsSignup {
		var hint domain.ProviderProfile
		if resp.KakaoUser != nil {
			hint = *resp.KakaoUser
		}
		return Resolution{Signup: &SignupRequired{Hint: hint, AccessToken: c.AccessToken}}, nil
	}
	s, err := sessionFrom("kakao login", mode, resp)
	if err != nil {
		return Resolution{}, g.fail("kakao login", err)
	}
	return Resolution{Session: &s}, nil
}

func (g *Gateway) fail(op string, err error) error {
	if _, ok := err.(*TransportError); !ok {
		err = classify(op, err, ErrInvalidCredential)
	}
	switch err.(type) {
	case *CredentialError:
		g.log.Info("credential rejected", zap.String("op", op), zap.Error(err))
	default:
		g.log.Error("identity resolution failed", zap.String("op", op), zap.Error(err))
	}
	return err
}
