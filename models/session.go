package models

import "fmt"

// UserProfile is the profile the back office returns on login ("usuario").
type UserProfile struct {
	ID    int64  `json:"id,omitempty"`
	Name  string `json:"nombre"`
	Role  string `json:"rol"`
	Email string `json:"email,omitempty"`
}

// Session pairs the back-office token with the cached profile of its owner.
// Token and User are either both set or the session does not exist.
type Session struct {
	Token string
	User  UserProfile
}

// IsComplete reports whether the session carries a token. The profile's presence is checked
// where it is decoded; its fields may legitimately be empty.
func (s *Session) IsComplete() bool {
	return s != nil && s.Token != ""
}

// Label is the header text shown next to the user menu, e.g. "Ana (admin)".
// A profile without a name falls back to the email.
func (s *Session) Label() string {
	name := s.User.Name
	if name == "" {
		name = s.User.Email
	}
	if name == "" {
		return s.User.Role
	}
	if s.User.Role == "" {
		return name
	}
	return fmt.Sprintf("%s (%s)", name, s.User.Role)
}

// LoginResponse is the body of a successful POST /api/login
type LoginResponse struct {
	Message   string      `json:"mensaje,omitempty"`
	SessionID string      `json:"session_id"`
	User      *UserProfile `json:"usuario"`
}
