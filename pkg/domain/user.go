package domain

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// SubjectID is a backend account identifier. The backend sends it as a
// number for some routes and as a string for others.
type SubjectID string

func (id SubjectID) String() string {
	return string(id)
}

// UnmarshalJSON accepts both JSON numbers and strings.
func (id *SubjectID) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*id = ""
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*id = SubjectID(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("subject id: %w", err)
	}
	*id = SubjectID(n.String())
	return nil
}

// User is the backend's account representation.
type User struct {
	ID            SubjectID `json:"id"`
	Name          string    `json:"name,omitempty"`
	Username      string    `json:"username,omitempty"`
	Phone         string    `json:"phone,omitempty"`
	PreferredMode Mode      `json:"preferred_mode,omitempty"`
}

// ProviderProfile is the profile hint the backend forwards from Kakao when an
// identity has no matching account yet.
type ProviderProfile struct {
	ID       SubjectID `json:"id,omitempty"`
	Nickname string    `json:"nickname,omitempty"`
	Email    string    `json:"email,omitempty"`
}
