// Package domain contains the core business entities for Quill.
// These are pure Go structs with no external dependencies, representing
// the fundamental concepts of the blogging system.
package domain

import (
	"time"
)

// User represents a registered account in the system.
// The email doubles as the login name. Exactly one user holds the admin
// role: the first account ever registered.
type User struct {
	// ID is the unique identifier for the user (auto-generated).
	ID int64 `json:"id"`

	// Email is the unique email address used for login and display.
	Email string `json:"email"`

	// PasswordHash is the bcrypt hash of the user's password.
	// This should never be exposed in rendered pages or API responses.
	PasswordHash string `json:"-"`

	// IsAdmin indicates whether the user has administrative privileges.
	// Admins manage posts and other users' comment privileges.
	IsAdmin bool `json:"is_admin"`

	// CanComment indicates whether the user may create comments.
	// Toggled only through the admin control surface.
	CanComment bool `json:"can_comment"`

	// CreatedAt is the timestamp when the user was created.
	CreatedAt time.Time `json:"created_at"`

	// UpdatedAt is the timestamp when the user was last updated.
	UpdatedAt time.Time `json:"updated_at"`
}

// NewUser creates a new User with default values. New accounts are
// non-admin and allowed to comment until an admin says otherwise.
func NewUser(email, passwordHash string) *User {
	now := time.Now().UTC()
	return &User{
		Email:        email,
		PasswordHash: passwordHash,
		IsAdmin:      false,
		CanComment:   true,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
}
