package auth

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/naveenspark/ieum/pkg/client"
	"github.com/naveenspark/ieum/pkg/domain"
)

var (
	ErrChallengeExpired   = errors.New("verification code expired")
	ErrChallengeNotFound  = errors.New("no verification code has been sent")
	ErrCodeMismatch       = errors.New("verification code does not match")
	ErrInvalidCredential  = errors.New("invalid credential")
	ErrHandleTaken        = errors.New("username is already taken")
	ErrTokenExchange      = errors.New("token exchange failed")
	ErrCodeReplayed       = errors.New("authorization code already used")
	ErrProviderDenied     = errors.New("login was cancelled at the provider")
	ErrNoPendingIdentity  = errors.New("no pending kakao identity")
	ErrUnexpectedResponse = errors.New("unexpected response from server")
)

// CredentialError is the backend rejecting what the user typed. Message is
// the backend's text, shown verbatim.
type CredentialError struct {
	Status  int
	Message string
	kind    error
}

func (e *CredentialError) Error() string {
	if e.Message == "" {
		return e.kind.Error()
	}
	return e.Message
}

func (e *CredentialError) Unwrap() error {
	return e.kind
}

// ServerError is a 5xx from the backend.
type ServerError struct {
	Status  int
	Message string
}

func (e *ServerError) Error() string {
	return fmt.Sprintf("server error %d: %s", e.Status, e.Message)
}

// TransportError means the backend or provider was unreachable or answered
// with something unreadable.
type TransportError struct {
	Op  string
	Err error
}

func (e *TransportError) Error() string {
	return e.Op + ": " + e.Err.Error()
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

// classify maps a client error onto the taxonomy. kind is the sentinel a 4xx
// should carry.
func classify(op string, err error, kind error) error {
	var httpErr *client.HTTPError
	if errors.As(err, &httpErr) {
		if httpErr.StatusCode >= http.StatusInternalServerError {
			return &ServerError{Status: httpErr.StatusCode, Message: httpErr.Message}
		}
		return &CredentialError{Status: httpErr.StatusCode, Message: httpErr.Message, kind: kind}
	}
	if client.IsTransport(err) {
		return &TransportError{Op: op, Err: err}
	}
	return fmt.Errorf("%s: %w", op, err)
}

// GenericFailure is shown for transport and server failures.
const GenericFailure = "Something went wrong. Please try again."

// Describe turns an orchestrator error into the line a login surface shows.
func Describe(err error) string {
	if err == nil {
		return ""
	}
	var verr *domain.ValidationError
	if errors.As(err, &verr) {
		return verr.Message
	}
	var cerr *CredentialError
	if errors.As(err, &cerr) {
		return cerr.Error()
	}
	switch {
	case errors.Is(err, ErrChallengeExpired):
		return "The code has expired. Send a new one."
	case errors.Is(err, ErrChallengeNotFound):
		return "Request a code first."
	case errors.Is(err, ErrHandleTaken):
		return "That username is already taken."
	case errors.Is(err, ErrProviderDenied):
		return "Kakao login was cancelled."
	case errors.Is(err, ErrNoPendingIdentity):
		return "Start Kakao login again."
	}
	return GenericFailure
}
