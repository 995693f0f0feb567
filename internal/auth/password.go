package auth

import (
	"context"
	"net/http"

	"github.com/naveenspark/ieum/pkg/client"
	"github.com/naveenspark/ieum/pkg/domain"
)

// PasswordMinLen is the shortest password the client accepts.
const PasswordMinLen = 6

// SignupForm is the password signup surface's input.
type SignupForm struct {
	Name          string
	Username      string
	Phone         string
	Password      string
	Confirm       string
	PreferredMode domain.Mode
}

// Validate checks every field in form order and builds the request.
func (f SignupForm) Validate() (client.SignupRequest, error) {
	name, err := domain.ValidateDisplayName(f.Name)
	if err != nil {
		return client.SignupRequest{}, err
	}
	if err := domain.ValidateHandle(f.Username); err != nil {
		return client.SignupRequest{}, err
	}
	phone, err := domain.ValidateStrictPhone(f.Phone)
	if err != nil {
		return client.SignupRequest{}, err
	}
	if err := validateNewPassword("password", f.Password, f.Confirm); err != nil {
		return client.SignupRequest{}, err
	}
	mode := f.PreferredMode
	if !mode.Valid() {
		mode = domain.ModeNormal
	}
	return client.SignupRequest{
		Name:          name,
		Username:      f.Username,
		Phone:         phone,
		Password:      f.Password,
		SignupMode:    "phone",
		PreferredMode: mode,
	}, nil
}

// RegisterPassword creates a password account. It never establishes a
// session; the caller sends the user back to the login surface.
func RegisterPassword(ctx context.Context, b Backend, f SignupForm) (*domain.User, error) {
	req, err := f.Validate()
	if err != nil {
		return nil, err
	}
	u, err := b.Signup(ctx, req)
	if err != nil {
		if client.IsStatus(err, http.StatusConflict) {
			return nil, classify("signup", err, ErrHandleTaken)
		}
		return nil, classify("signup", err, ErrInvalidCredential)
	}
	return u, nil
}

// PasswordChange is the change-password surface's input. Setting Phone and
// Code switches it to recovery mode.
type PasswordChange struct {
	Current string
	New     string
	Confirm string
	Phone   string
	Code    string
}

// Recovery reports whether the change is a phone+code recovery.
func (p PasswordChange) Recovery() bool {
	return p.Phone != "" || p.Code != ""
}

// Validate checks the change locally. Reusing the current password is only
// rejected outside recovery, where the current password is known.
func (p PasswordChange) Validate() (client.ChangePasswordRequest, error) {
	if p.Recovery() {
		phone, err := domain.ValidateStrictPhone(p.Phone)
		if err != nil {
			return client.ChangePasswordRequest{}, err
		}
		if err := domain.ValidateCode(p.Code); err != nil {
			return client.ChangePasswordRequest{}, err
		}
		if err := validateNewPassword("newPassword", p.New, p.Confirm); err != nil {
			return client.ChangePasswordRequest{}, err
		}
		return client.ChangePasswordRequest{Phone: phone, Code: p.Code, NewPassword: p.New}, nil
	}

	if p.Current == "" {
		return client.ChangePasswordRequest{}, &domain.ValidationError{Field: "currentPassword", Message: "enter your current password"}
	}
	if err := validateNewPassword("newPassword", p.New, p.Confirm); err != nil {
		return client.ChangePasswordRequest{}, err
	}
	if p.New == p.Current {
		return client.ChangePasswordRequest{}, &domain.ValidationError{Field: "newPassword", Message: "new password must differ from the current one"}
	}
	return client.ChangePasswordRequest{CurrentPassword: p.Current, NewPassword: p.New}, nil
}

// ChangePassword validates p and submits it. b must carry the session's
// bearer token outside recovery.
func ChangePassword(ctx context.Context, b Backend, p PasswordChange) error {
	req, err := p.Validate()
	if err != nil {
		return err
	}
	if err := b.ChangePassword(ctx, req); err != nil {
		kind := ErrInvalidCredential
		if p.Recovery() {
			kind = ErrCodeMismatch
		}
		return classify("change password", err, kind)
	}
	return nil
}

func validateNewPassword(field, pw, confirm string) error {
	if pw == "" {
		return &domain.ValidationError{Field: field, Message: "password is required"}
	}
	if len(pw) < PasswordMinLen {
		return &domain.ValidationError{Field: field, Message: "password must be at least 6 characters"}
	}
	if pw != confirm {
		return &domain.ValidationError{Field: "confirm", Message: "passwords do not match"}
	}
	return nil
}
