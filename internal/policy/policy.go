// Package policy derives effective permissions from a resolved identity.
// It is a pure function of (identity, action, target): it never touches
// storage and never mutates state. Handlers and services ask it for
// allow/deny decisions; templates only render flags computed here.
package policy

import (
	"github.com/quillhq/quill/internal/domain"
)

// Action enumerates the operations the policy can rule on.
type Action string

const (
	// ActionReadPost covers listing and viewing posts.
	ActionReadPost Action = "post:read"

	// ActionCreatePost covers creating a post.
	ActionCreatePost Action = "post:create"

	// ActionEditPost covers editing an existing post.
	ActionEditPost Action = "post:edit"

	// ActionDeletePost covers deleting a post and its comments.
	ActionDeletePost Action = "post:delete"

	// ActionReadComment covers viewing comments.
	ActionReadComment Action = "comment:read"

	// ActionCreateComment covers creating a comment on a post.
	ActionCreateComment Action = "comment:create"

	// ActionDeleteComment covers deleting a specific comment.
	ActionDeleteComment Action = "comment:delete"

	// ActionManageUsers covers mutating user flags (admin panel).
	ActionManageUsers Action = "user:manage"
)

// Target carries the entity context a rule may need. The zero value is
// valid for actions that are not entity-specific.
type Target struct {
	// CommentOwnerID is the authoring user of the targeted comment.
	// Only consulted for ActionDeleteComment.
	CommentOwnerID int64
}

// Allows reports whether the identity may perform the action on the target.
func Allows(id domain.Identity, action Action, target Target) bool {
	// Reads are open to everyone, including anonymous visitors.
	if action == ActionReadPost || action == ActionReadComment {
		return true
	}

	// Every write requires an authenticated session.
	if id.IsAnonymous() {
		return false
	}

	// Admins may do everything.
	if id.IsAdmin {
		return true
	}

	switch action {
	case ActionCreateComment:
		return id.CanComment
	case ActionDeleteComment:
		return target.CommentOwnerID == id.UserID
	default:
		// Post mutation and user management stay admin-only.
		return false
	}
}

// Authorize returns domain.ErrAccessDenied when the identity may not
// perform the action, nil otherwise.
func Authorize(id domain.Identity, action Action, target Target) error {
	if !Allows(id, action, target) {
		return domain.ErrAccessDenied
	}
	return nil
}

// CanDeleteComment is a view-model helper: it answers whether the
// identity may delete the given comment, so templates can render a
// delete control without recomputing rules.
func CanDeleteComment(id domain.Identity, comment *domain.Comment) bool {
	return Allows(id, ActionDeleteComment, Target{CommentOwnerID: comment.UserID})
}
