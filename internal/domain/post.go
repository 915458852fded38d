package domain

import (
	"time"
)

// Post represents a blog post. Posts are created, edited, and deleted
// exclusively by the admin; everyone may read them.
type Post struct {
	// ID is the unique identifier for the post (auto-generated).
	ID int64 `json:"id"`

	// Title is the post title. Never empty.
	Title string `json:"title"`

	// Content is the post body text. Never empty.
	Content string `json:"content"`

	// ImageURL is an optional URL of a cover image. Nil when the post
	// has no image. The URL is stored verbatim; Quill hosts no media.
	ImageURL *string `json:"image_url,omitempty"`

	// CreatedAt is the timestamp when the post was created.
	CreatedAt time.Time `json:"created_at"`

	// UpdatedAt is the timestamp when the post was last edited.
	UpdatedAt time.Time `json:"updated_at"`
}

// NewPost creates a new Post.
func NewPost(title, content string, imageURL *string) *Post {
	now := time.Now().UTC()
	return &Post{
		Title:     title,
		Content:   content,
		ImageURL:  imageURL,
		CreatedAt: now,
		UpdatedAt: now,
	}
}
