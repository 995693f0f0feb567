package domain

import "time"

const (
	// ChallengeWindow is how long an issued OTP stays verifiable.
	ChallengeWindow = 60 * time.Second
	// CodeLength is the number of digits in an OTP.
	CodeLength = 6
)

// ChallengeState is the lifecycle of one verification challenge.
type ChallengeState string

const (
	ChallengePending  ChallengeState = "pending"
	ChallengeExpired  ChallengeState = "expired"
	ChallengeVerified ChallengeState = "verified"
)

// VerificationChallenge is a phone one-time-code challenge. It lives only as
// long as one login attempt.
type VerificationChallenge struct {
	PhoneNumber    string
	IssuedAt       time.Time
	ValidityWindow time.Duration
	CodeLength     int
	State          ChallengeState
}

// NewVerificationChallenge starts a pending challenge at now.
func NewVerificationChallenge(phone string, now time.Time) *VerificationChallenge {
	return &VerificationChallenge{
		PhoneNumber:    phone,
		IssuedAt:       now,
		ValidityWindow: ChallengeWindow,
		CodeLength:     CodeLength,
		State:          ChallengePending,
	}
}

// StateAt derives the state at now. A pending challenge is expired once
// now-IssuedAt reaches the window.
func (c *VerificationChallenge) StateAt(now time.Time) ChallengeState {
	if c.State != ChallengePending {
		return c.State
	}
	if now.Sub(c.IssuedAt) >= c.ValidityWindow {
		return ChallengeExpired
	}
	return ChallengePending
}

// Remaining returns the validity left at now, never negative.
func (c *VerificationChallenge) Remaining(now time.Time) time.Duration {
	if c.State != ChallengePending {
		return 0
	}
	left := c.ValidityWindow - now.Sub(c.IssuedAt)
	if left < 0 {
		return 0
	}
	return left
}

// ValidateCode checks that code has exactly CodeLength digits.
func ValidateCode(code string) error {
	if len(code) != CodeLength || !allDigits(code) {
		return invalid("code", "enter the 6-digit code")
	}
	return nil
}
