package policy

import (
	"errors"
	"testing"

	"github.com/quillhq/quill/internal/domain"
)

func TestAllows(t *testing.T) {
	anonymous := domain.Anonymous()
	commenter := domain.Identity{UserID: 2, CanComment: true}
	blocked := domain.Identity{UserID: 3, CanComment: false}
	admin := domain.Identity{UserID: 1, IsAdmin: true, CanComment: true}

	tests := []struct {
		name     string
		identity domain.Identity
		action   Action
		target   Target
		want     bool
	}{
		// Rule 1: anonymous reads only.
		{"anonymous read post", anonymous, ActionReadPost, Target{}, true},
		{"anonymous read comment", anonymous, ActionReadComment, Target{}, true},
		{"anonymous create post", anonymous, ActionCreatePost, Target{}, false},
		{"anonymous create comment", anonymous, ActionCreateComment, Target{}, false},
		{"anonymous delete comment", anonymous, ActionDeleteComment, Target{CommentOwnerID: 2}, false},
		{"anonymous manage users", anonymous, ActionManageUsers, Target{}, false},

		// Rule 2: authenticated non-admin with comment privilege.
		{"commenter create comment", commenter, ActionCreateComment, Target{}, true},
		{"commenter delete own comment", commenter, ActionDeleteComment, Target{CommentOwnerID: 2}, true},
		{"commenter delete others comment", commenter, ActionDeleteComment, Target{CommentOwnerID: 9}, false},
		{"commenter create post", commenter, ActionCreatePost, Target{}, false},
		{"commenter edit post", commenter, ActionEditPost, Target{}, false},
		{"commenter delete post", commenter, ActionDeletePost, Target{}, false},
		{"commenter manage users", commenter, ActionManageUsers, Target{}, false},
		{"commenter read post", commenter, ActionReadPost, Target{}, true},

		// Rule 3: authenticated non-admin without comment privilege.
		{"blocked create comment", blocked, ActionCreateComment, Target{}, false},
		{"blocked read post", blocked, ActionReadPost, Target{}, true},
		{"blocked delete own comment", blocked, ActionDeleteComment, Target{CommentOwnerID: 3}, true},

		// Rule 4: admin may do everything.
		{"admin create post", admin, ActionCreatePost, Target{}, true},
		{"admin edit post", admin, ActionEditPost, Target{}, true},
		{"admin delete post", admin, ActionDeletePost, Target{}, true},
		{"admin delete others comment", admin, ActionDeleteComment, Target{CommentOwnerID: 9}, true},
		{"admin manage users", admin, ActionManageUsers, Target{}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Allows(tt.identity, tt.action, tt.target); got != tt.want {
				t.Errorf("Allows() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestAuthorize(t *testing.T) {
	err := Authorize(domain.Anonymous(), ActionCreatePost, Target{})
	if !errors.Is(err, domain.ErrAccessDenied) {
		t.Errorf("expected ErrAccessDenied, got %v", err)
	}

	if err := Authorize(domain.Identity{UserID: 1, IsAdmin: true}, ActionCreatePost, Target{}); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
}

func TestCanDeleteComment(t *testing.T) {
	comment := &domain.Comment{ID: 5, PostID: 1, UserID: 2}

	if !CanDeleteComment(domain.Identity{UserID: 2, CanComment: true}, comment) {
		t.Error("owner should be able to delete own comment")
	}
	if !CanDeleteComment(domain.Identity{UserID: 1, IsAdmin: true}, comment) {
		t.Error("admin should be able to delete any comment")
	}
	if CanDeleteComment(domain.Identity{UserID: 7, CanComment: true}, comment) {
		t.Error("other users should not be able to delete the comment")
	}
	if CanDeleteComment(domain.Anonymous(), comment) {
		t.Error("anonymous should not be able to delete the comment")
	}
}
