package domain

import (
	"time"
)

// Session binds an opaque token to a user identifier. The token travels
// in a cookie; everything else stays server-side.
type Session struct {
	// Token is the opaque session identifier.
	Token string `json:"token"`

	// UserID references the authenticated user.
	UserID int64 `json:"user_id"`

	// CreatedAt is the timestamp when the session was established.
	CreatedAt time.Time `json:"created_at"`

	// ExpiresAt is the timestamp after which the session is invalid.
	ExpiresAt time.Time `json:"expires_at"`
}

// NewSession creates a session for the given user with the given lifetime.
func NewSession(token string, userID int64, lifetime time.Duration) *Session {
	now := time.Now().UTC()
	return &Session{
		Token:     token,
		UserID:    userID,
		CreatedAt: now,
		ExpiresAt: now.Add(lifetime),
	}
}

// Expired reports whether the session has passed its expiry time.
func (s *Session) Expired() bool {
	return time.Now().UTC().After(s.ExpiresAt)
}
