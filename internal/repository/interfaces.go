// Package repository defines data access interfaces for Quill.
// These interfaces abstract database operations, allowing for different
// implementations (SQLite, PostgreSQL, in-memory for testing) while
// keeping the service layer clean.
package repository

import (
	"context"

	"github.com/quillhq/quill/internal/domain"
)

// =============================================================================
// User Repository
// =============================================================================

// UserRepository defines the interface for user data access.
type UserRepository interface {
	// Create creates a new user. The implementation decides the admin
	// flag atomically: the first user ever inserted becomes admin. The
	// check-and-insert must be serialized so two concurrent first
	// registrations cannot both end up with the flag set.
	// Returns domain.ErrDuplicateEmail if the email is taken.
	Create(ctx context.Context, user *domain.User) error

	// GetByID retrieves a user by ID.
	GetByID(ctx context.Context, id int64) (*domain.User, error)

	// GetByEmail retrieves a user by email.
	GetByEmail(ctx context.Context, email string) (*domain.User, error)

	// Update updates an existing user.
	Update(ctx context.Context, user *domain.User) error

	// List returns all users, oldest first (registration order).
	List(ctx context.Context) ([]*domain.User, error)

	// ExistsByEmail checks if a user with the given email exists.
	ExistsByEmail(ctx context.Context, email string) (bool, error)
}

// =============================================================================
// Post Repository
// =============================================================================

// PostRepository defines the interface for post data access.
type PostRepository interface {
	// Create creates a new post.
	Create(ctx context.Context, post *domain.Post) error

	// GetByID retrieves a post by ID.
	GetByID(ctx context.Context, id int64) (*domain.Post, error)

	// List returns all posts, newest first.
	List(ctx context.Context) ([]*domain.Post, error)

	// Update updates an existing post.
	Update(ctx context.Context, post *domain.Post) error

	// Delete deletes a post by ID. The schema cascades the delete to
	// the post's comments in the same statement.
	Delete(ctx context.Context, id int64) error
}

// =============================================================================
// Comment Repository
// =============================================================================

// CommentRepository defines the interface for comment data access.
type CommentRepository interface {
	// Create creates a new comment.
	Create(ctx context.Context, comment *domain.Comment) error

	// GetByID retrieves a comment by ID.
	GetByID(ctx context.Context, id int64) (*domain.Comment, error)

	// ListByPostID returns a post's comments in chronological order,
	// with the author email joined in for display.
	ListByPostID(ctx context.Context, postID int64) ([]*domain.Comment, error)

	// Delete deletes a comment by ID.
	Delete(ctx context.Context, id int64) error

	// ExistsByUserAndPost checks if the user already commented on the post.
	ExistsByUserAndPost(ctx context.Context, userID, postID int64) (bool, error)
}

// =============================================================================
// Session Store
// =============================================================================

// SessionStore defines the interface for session persistence. Backends:
// the relational database, Redis (token with TTL), or an in-memory map
// for tests and development.
type SessionStore interface {
	// Create stores a new session.
	Create(ctx context.Context, session *domain.Session) error

	// Get retrieves a session by token. Returns domain.ErrSessionNotFound
	// for unknown tokens; implementations may also report expired
	// sessions as not found.
	Get(ctx context.Context, token string) (*domain.Session, error)

	// Delete removes a session by token. Deleting an absent token is
	// not an error (logout is idempotent).
	Delete(ctx context.Context, token string) error
}
