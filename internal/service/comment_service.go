package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/rs/zerolog"

	"github.com/quillhq/quill/internal/domain"
	"github.com/quillhq/quill/internal/policy"
	"github.com/quillhq/quill/internal/repository"
)

// CommentService implements the comment lifecycle.
type CommentService struct {
	commentRepo repository.CommentRepository
	postRepo    repository.PostRepository
	logger      zerolog.Logger
}

// NewCommentService creates a new CommentService.
func NewCommentService(
	commentRepo repository.CommentRepository,
	postRepo repository.PostRepository,
	logger zerolog.Logger,
) *CommentService {
	return &CommentService{
		commentRepo: commentRepo,
		postRepo:    postRepo,
		logger:      logger.With().Str("service", "comment").Logger(),
	}
}

// CreateCommentInput contains the fields for a new comment.
type CreateCommentInput struct {
	PostID int64
	Text   string
}

// Create attaches a comment to a post. Requires an authenticated identity
// with the comment privilege. Non-admins may leave at most one comment
// per post.
func (s *CommentService) Create(ctx context.Context, identity domain.Identity, input CreateCommentInput) (*domain.Comment, error) {
	if err := policy.Authorize(identity, policy.ActionCreateComment, policy.Target{}); err != nil {
		return nil, err
	}

	if strings.TrimSpace(input.Text) == "" {
		return nil, ErrEmptyComment
	}

	if _, err := s.postRepo.GetByID(ctx, input.PostID); err != nil {
		if errors.Is(err, domain.ErrPostNotFound) {
			return nil, err
		}
		s.logger.Error().Err(err).Int64("post_id", input.PostID).Msg("failed to get post")
		return nil, fmt.Errorf("%w: %v", ErrInternalError, err)
	}

	if !identity.IsAdmin {
		exists, err := s.commentRepo.ExistsByUserAndPost(ctx, identity.UserID, input.PostID)
		if err != nil {
			s.logger.Error().Err(err).Int64("post_id", input.PostID).Msg("failed to check existing comment")
			return nil, fmt.Errorf("%w: %v", ErrInternalError, err)
		}
		if exists {
			return nil, ErrDuplicateComment
		}
	}

	comment := domain.NewComment(input.PostID, identity.UserID, strings.TrimSpace(input.Text))

	if err := s.commentRepo.Create(ctx, comment); err != nil {
		if errors.Is(err, domain.ErrPostNotFound) {
			return nil, err
		}
		s.logger.Error().Err(err).Int64("post_id", input.PostID).Msg("failed to create comment")
		return nil, fmt.Errorf("%w: %v", ErrInternalError, err)
	}

	s.logger.Info().
		Int64("comment_id", comment.ID).
		Int64("post_id", input.PostID).
		Int64("user_id", identity.UserID).
		Msg("comment created")

	return comment, nil
}

// Delete removes a comment from a post. The comment's author and admins
// may delete it. A comment that does not belong to the given post is
// treated as not found.
func (s *CommentService) Delete(ctx context.Context, identity domain.Identity, postID, commentID int64) error {
	comment, err := s.commentRepo.GetByID(ctx, commentID)
	if err != nil {
		if errors.Is(err, domain.ErrCommentNotFound) {
			return err
		}
		s.logger.Error().Err(err).Int64("comment_id", commentID).Msg("failed to get comment")
		return fmt.Errorf("%w: %v", ErrInternalError, err)
	}

	if comment.PostID != postID {
		return domain.ErrCommentNotFound
	}

	if err := policy.Authorize(identity, policy.ActionDeleteComment, policy.Target{CommentOwnerID: comment.UserID}); err != nil {
		return err
	}

	if err := s.commentRepo.Delete(ctx, commentID); err != nil {
		if errors.Is(err, domain.ErrCommentNotFound) {
			return err
		}
		s.logger.Error().Err(err).Int64("comment_id", commentID).Msg("failed to delete comment")
		return fmt.Errorf("%w: %v", ErrInternalError, err)
	}

	s.logger.Info().
		Int64("comment_id", commentID).
		Int64("post_id", postID).
		Int64("user_id", identity.UserID).
		Msg("comment deleted")

	return nil
}
