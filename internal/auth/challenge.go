package auth

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/naveenspark/ieum/pkg/client"
	"github.com/naveenspark/ieum/pkg/domain"
)

// Send-code purposes understood by the backend.
const (
	codeTypeLogin         = ""
	codeTypePasswordReset = "reset_password"
)

// ChallengeManager owns the phone one-time-code challenge of one login
// attempt: issue, countdown, expiry, resend and verify-and-login.
type ChallengeManager struct {
	backend Backend
	clock   Clock
	log     *zap.Logger

	mu         sync.Mutex
	challenge  *domain.VerificationChallenge
	codeType   string
	generation int
}

// NewChallengeManager creates a manager. A nil clock uses time.Now.
func NewChallengeManager(b Backend, clock Clock, log *zap.Logger) *ChallengeManager {
	if clock == nil {
		clock = time.Now
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &ChallengeManager{backend: b, clock: clock, log: log}
}

// Issue validates phone with the senior rule, sends a code and starts a
// fresh 60-second challenge.
func (m *ChallengeManager) Issue(ctx context.Context, phone string) (*domain.VerificationChallenge, error) {
	p, err := domain.ValidateSeniorPhone(phone)
	if err != nil {
		return nil, err
	}
	return m.send(ctx, p, codeTypeLogin)
}

// IssueRecovery is Issue for the password-recovery channel, which requires
// the strict 010 phone format.
func (m *ChallengeManager) IssueRecovery(ctx context.Context, phone string) (*domain.VerificationChallenge, error) {
	p, err := domain.ValidateStrictPhone(phone)
	if err != nil {
		return nil, err
	}
	return m.send(ctx, p, codeTypePasswordReset)
}

// Resend re-sends the code for the current phone and replaces the challenge
// with a fresh one. It is allowed in every state.
func (m *ChallengeManager) Resend(ctx context.Context) (*domain.VerificationChallenge, error) {
	m.mu.Lock()
	c, codeType := m.challenge, m.codeType
	m.mu.Unlock()
	if c == nil {
		return nil, ErrChallengeNotFound
	}
	return m.send(ctx, c.PhoneNumber, codeType)
}

func (m *ChallengeManager) send(ctx context.Context, phone, codeType string) (*domain.VerificationChallenge, error) {
	if err := m.backend.SendCode(ctx, client.SendCodeRequest{Phone: phone, Type: codeType}); err != nil {
		err = classify("send code", err, ErrInvalidCredential)
		m.log.Warn("send code failed", zap.String("phone", domain.MaskPhone(phone)), zap.Error(err))
		return nil, err
	}

	c := domain.NewVerificationChallenge(phone, m.clock())
	m.mu.Lock()
	m.challenge = c
	m.codeType = codeType
	m.generation++
	m.mu.Unlock()

	cp := *c
	return &cp, nil
}

// Tick is the one-second wake-up. It reports the validity left and marks the
// challenge expired once it reaches zero. It never calls the backend.
func (m *ChallengeManager) Tick() (time.Duration, domain.ChallengeState) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.challenge == nil {
		return 0, ""
	}
	now := m.clock()
	state := m.challenge.StateAt(now)
	if state == domain.ChallengeExpired {
		m.challenge.State = domain.ChallengeExpired
	}
	return m.challenge.Remaining(now), state
}

// Generation identifies the current challenge. Every issue or resend bumps
// it so timers started for an older challenge can tell they are stale.
func (m *ChallengeManager) Generation() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.generation
}

// Challenge returns a copy of the current challenge, or nil.
func (m *ChallengeManager) Challenge() *domain.VerificationChallenge {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.challenge == nil {
		return nil
	}
	cp := *m.challenge
	cp.State = cp.StateAt(m.clock())
	return &cp
}

// Active returns nil when a pending challenge can still be verified.
func (m *ChallengeManager) Active() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.activeLocked()
}

func (m *ChallengeManager) activeLocked() error {
	if m.challenge == nil {
		return ErrChallengeNotFound
	}
	switch m.challenge.StateAt(m.clock()) {
	case domain.ChallengeExpired:
		m.challenge.State = domain.ChallengeExpired
		return ErrChallengeExpired
	case domain.ChallengeVerified:
		return ErrChallengeNotFound
	}
	return nil
}

// Verify checks code and signs in to senior mode in one backend call. An
// expired challenge fails without contacting the backend.
func (m *ChallengeManager) Verify(ctx context.Context, code string) (domain.Session, error) {
	m.mu.Lock()
	if err := m.activeLocked(); err != nil {
		m.mu.Unlock()
		return domain.Session{}, err
	}
	phone, gen := m.challenge.PhoneNumber, m.generation
	m.mu.Unlock()

	if err := domain.ValidateCode(code); err != nil {
		return domain.Session{}, err
	}

	resp, err := m.backend.SeniorAuthPhone(ctx, phone, code)
	if err != nil {
		err = classify("verify code", err, ErrCodeMismatch)
		m.log.Info("code verification failed", zap.String("phone", domain.MaskPhone(phone)), zap.Error(err))
		return domain.Session{}, err
	}
	s, err := sessionFrom("verify code", domain.ModeSenior, resp)
	if err != nil {
		m.log.Error("verify response without token", zap.Error(err))
		return domain.Session{}, err
	}

	m.mu.Lock()
	if m.challenge != nil && m.generation == gen {
		m.challenge.State = domain.ChallengeVerified
	}
	m.mu.Unlock()
	return s, nil
}

// Reset drops the challenge, e.g. when the user goes back to the phone step.
func (m *ChallengeManager) Reset() {
	m.mu.Lock()
	m.challenge = nil
	m.generation++
	m.mu.Unlock()
}
