package domain

// Session is an established, verified login for one mode.
type Session struct {
	SubjectID       string `json:"subject_id"`
	DisplayName     string `json:"display_name"`
	Mode            Mode   `json:"mode"`
	CredentialToken string `json:"-"`
}

// Valid reports whether the session carries a mode and a token.
func (s Session) Valid() bool {
	return s.Mode.Valid() && s.CredentialToken != ""
}

// NewSession builds a session for mode from a backend user and bearer token.
func NewSession(mode Mode, token string, u User) Session {
	name := u.Name
	if name == "" {
		name = u.Username
	}
	return Session{
		SubjectID:       u.ID.String(),
		DisplayName:     name,
		Mode:            mode,
		CredentialToken: token,
	}
}
