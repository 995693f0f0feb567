package session

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"go.uber.org/zap"

	"github.com/naveenspark/ieum/pkg/domain"
)

// Storage keys. Only the opaque bearer token is ever written.
const (
	NormalKey  = "token"
	SeniorKey  = "senior_token"
	PendingKey = "kakao_access_token"
)

// Policy routes each mode's session to its store: normal mode to the durable
// store, senior mode to the tab scope. The two never share a key, so writing
// one mode leaves the other untouched.
type Policy struct {
	durable Store
	tab     Store
	clock   func() time.Time
	log     *zap.Logger
}

// NewPolicy creates a policy over durable and tab stores.
func NewPolicy(durable, tab Store, log *zap.Logger) *Policy {
	if log == nil {
		log = zap.NewNop()
	}
	return &Policy{durable: durable, tab: tab, clock: time.Now, log: log}
}

// WithClock replaces the clock used to check token expiry.
func (p *Policy) WithClock(clock func() time.Time) *Policy {
	p.clock = clock
	return p
}

// Location returns the store and key that hold mode's session.
func (p *Policy) Location(mode domain.Mode) (Store, string) {
	if mode == domain.ModeSenior {
		return p.tab, SeniorKey
	}
	return p.durable, NormalKey
}

// Persist writes s to its mode's scope, replacing whatever was there.
func (p *Policy) Persist(ctx context.Context, s domain.Session) error {
	if !s.Valid() {
		return fmt.Errorf("session.Persist: incomplete session for mode %q", s.Mode)
	}
	store, key := p.Location(s.Mode)
	if err := store.Set(ctx, key, s.CredentialToken); err != nil {
		return fmt.Errorf("session.Persist: %w", err)
	}
	p.log.Info("session established", zap.String("mode", s.Mode.String()), zap.String("subject", s.SubjectID))
	return nil
}

// Load reads mode's session. ok is false when none is stored or the stored
// token has expired; an expired token is cleared.
func (p *Policy) Load(ctx context.Context, mode domain.Mode) (s domain.Session, ok bool, err error) {
	store, key := p.Location(mode)
	token, err := store.Get(ctx, key)
	if errors.Is(err, ErrNotFound) {
		return domain.Session{}, false, nil
	}
	if err != nil {
		return domain.Session{}, false, fmt.Errorf("session.Load: %w", err)
	}

	s = domain.Session{Mode: mode, CredentialToken: token}
	claims, isJWT := parseClaims(token)
	if !isJWT {
		return s, true, nil
	}
	if claims.ExpiresAt != nil && !claims.ExpiresAt.After(p.clock()) {
		p.log.Info("stored session expired", zap.String("mode", mode.String()))
		if err := store.Delete(ctx, key); err != nil {
			p.log.Warn("clear expired session", zap.Error(err))
		}
		return domain.Session{}, false, nil
	}
	s.SubjectID = claims.Subject
	if s.SubjectID == "" {
		s.SubjectID = claims.UserID.String()
	}
	s.DisplayName = claims.Name
	if s.DisplayName == "" {
		s.DisplayName = claims.Username
	}
	return s, true, nil
}

// Held reports which modes currently have a session. Each mode is read on
// its own; a mode whose store fails counts as not held and its error is
// joined into err, while the other modes are still reported.
func (p *Policy) Held(ctx context.Context) (map[domain.Mode]bool, error) {
	held := make(map[domain.Mode]bool, len(domain.Modes))
	var errs []error
	for _, m := range domain.Modes {
		_, ok, err := p.Load(ctx, m)
		if err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", m, err))
			continue
		}
		held[m] = ok
	}
	return held, errors.Join(errs...)
}

// Clear removes mode's session. Clearing an empty scope is not an error.
func (p *Policy) Clear(ctx context.Context, mode domain.Mode) error {
	store, key := p.Location(mode)
	if err := store.Delete(ctx, key); err != nil {
		return fmt.Errorf("session.Clear: %w", err)
	}
	p.log.Info("session cleared", zap.String("mode", mode.String()))
	return nil
}

// StashPending keeps a provider access token in the tab scope while a
// deferred signup is open.
func (p *Policy) StashPending(ctx context.Context, token string) error {
	if err := p.tab.Set(ctx, PendingKey, token); err != nil {
		return fmt.Errorf("session.StashPending: %w", err)
	}
	return nil
}

// TakePending returns the stashed provider token and removes it. It returns
// ErrNotFound when nothing is pending.
func (p *Policy) TakePending(ctx context.Context) (string, error) {
	token, err := p.PeekPending(ctx)
	if err != nil {
		return "", err
	}
	if err := p.tab.Delete(ctx, PendingKey); err != nil {
		return "", fmt.Errorf("session.TakePending: %w", err)
	}
	return token, nil
}

// PeekPending returns the stashed provider token without removing it.
func (p *Policy) PeekPending(ctx context.Context) (string, error) {
	token, err := p.tab.Get(ctx, PendingKey)
	if err != nil {
		return "", err
	}
	return token, nil
}

// DiscardPending drops any stashed provider token.
func (p *Policy) DiscardPending(ctx context.Context) error {
	return p.tab.Delete(ctx, PendingKey)
}

type tokenClaims struct {
	UserID   domain.SubjectID `json:"id,omitempty"`
	Name     string           `json:"name,omitempty"`
	Username string           `json:"username,omitempty"`
	jwt.RegisteredClaims
}

// parseClaims reads a token's claims without checking its signature; the
// backend verifies it on every request. isJWT is false for opaque tokens.
func parseClaims(token string) (tokenClaims, bool) {
	var claims tokenClaims
	if _, _, err := jwt.NewParser().ParseUnverified(token, &claims); err != nil {
		return tokenClaims{}, false
	}
	return claims, true
}
