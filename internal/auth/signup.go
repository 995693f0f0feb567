package auth

import (
	"context"
	"net/http"

	"go.uber.org/zap"

	"github.com/naveenspark/ieum/pkg/client"
	"github.com/naveenspark/ieum/pkg/domain"
)

// SignupCollector completes registration for a Kakao identity the backend
// did not recognize. Its mode is fixed by the login surface that opened it.
type SignupCollector struct {
	backend Backend
	mode    domain.Mode
	log     *zap.Logger
}

// NewSignupCollector creates a collector bound to mode.
func NewSignupCollector(b Backend, mode domain.Mode, log *zap.Logger) *SignupCollector {
	if log == nil {
		log = zap.NewNop()
	}
	return &SignupCollector{backend: b, mode: mode, log: log}
}

// Mode returns the mode every session from this collector is issued under.
func (c *SignupCollector) Mode() domain.Mode {
	return c.mode
}

// Submit validates draft locally, then registers it with token. Any local
// failure returns before the network is touched.
func (c *SignupCollector) Submit(ctx context.Context, draft domain.SignupDraft, token string) (domain.Session, error) {
	d, err := draft.Validate()
	if err != nil {
		return domain.Session{}, err
	}
	if token == "" {
		return domain.Session{}, ErrNoPendingIdentity
	}

	resp, err := c.backend.KakaoSignup(ctx, c.mode, client.KakaoSignupRequest{
		AccessToken:   token,
		Username:      d.ChosenHandle,
		Phone:         d.PhoneNumber,
		Name:          d.ProvisionalDisplayName,
		PreferredMode: c.mode,
	})
	if err != nil {
		if client.IsStatus(err, http.StatusConflict) {
			return domain.Session{}, ErrHandleTaken
		}
		err = classify("kakao signup", err, ErrInvalidCredential)
		c.log.Warn("kakao signup failed", zap.String("mode", c.mode.String()), zap.Error(err))
		return domain.Session{}, err
	}

	s, err := sessionFrom("kakao signup", c.mode, resp)
	if err != nil {
		return domain.Session{}, err
	}
	if s.DisplayName == "" {
		s.DisplayName = d.ProvisionalDisplayName
	}
	return s, nil
}
