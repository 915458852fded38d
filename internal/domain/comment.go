package domain

import (
	"time"
)

// Comment represents a comment on a post. Comments are owned by their
// post (deleting the post cascades) and keep a non-owning reference to
// the authoring user for display and authorization checks.
type Comment struct {
	// ID is the unique identifier for the comment (auto-generated).
	ID int64 `json:"id"`

	// PostID references the post this comment belongs to.
	PostID int64 `json:"post_id"`

	// UserID references the authoring user.
	UserID int64 `json:"user_id"`

	// AuthorEmail is the authoring user's email, joined in for display.
	// Not persisted on the comments table.
	AuthorEmail string `json:"author_email,omitempty"`

	// Text is the comment body. Never empty.
	Text string `json:"text"`

	// CreatedAt is the timestamp when the comment was created.
	CreatedAt time.Time `json:"created_at"`
}

// NewComment creates a new Comment.
func NewComment(postID, userID int64, text string) *Comment {
	return &Comment{
		PostID:    postID,
		UserID:    userID,
		Text:      text,
		CreatedAt: time.Now().UTC(),
	}
}
