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

const (
	maxTitleLength    = 100
	maxImageURLLength = 500
)

// PostService implements the post lifecycle.
type PostService struct {
	postRepo    repository.PostRepository
	commentRepo repository.CommentRepository
	logger      zerolog.Logger
}

// NewPostService creates a new PostService.
func NewPostService(
	postRepo repository.PostRepository,
	commentRepo repository.CommentRepository,
	logger zerolog.Logger,
) *PostService {
	return &PostService{
		postRepo:    postRepo,
		commentRepo: commentRepo,
		logger:      logger.With().Str("service", "post").Logger(),
	}
}

// CreatePostInput contains the fields for a new post.
type CreatePostInput struct {
	Title    string
	Content  string
	ImageURL *string
}

// EditPostInput contains the replacement fields for an existing post.
type EditPostInput struct {
	PostID   int64
	Title    string
	Content  string
	ImageURL *string
}

// PostDetail is a post together with its comments, oldest first.
type PostDetail struct {
	Post     *domain.Post
	Comments []*domain.Comment
}

// List returns all posts, newest first.
func (s *PostService) List(ctx context.Context) ([]*domain.Post, error) {
	posts, err := s.postRepo.List(ctx)
	if err != nil {
		s.logger.Error().Err(err).Msg("failed to list posts")
		return nil, fmt.Errorf("%w: %v", ErrInternalError, err)
	}
	return posts, nil
}

// Get returns a single post and its comments.
func (s *PostService) Get(ctx context.Context, postID int64) (*PostDetail, error) {
	post, err := s.postRepo.GetByID(ctx, postID)
	if err != nil {
		if errors.Is(err, domain.ErrPostNotFound) {
			return nil, err
		}
		s.logger.Error().Err(err).Int64("post_id", postID).Msg("failed to get post")
		return nil, fmt.Errorf("%w: %v", ErrInternalError, err)
	}

	comments, err := s.commentRepo.ListByPostID(ctx, postID)
	if err != nil {
		s.logger.Error().Err(err).Int64("post_id", postID).Msg("failed to list comments")
		return nil, fmt.Errorf("%w: %v", ErrInternalError, err)
	}

	return &PostDetail{Post: post, Comments: comments}, nil
}

// Create publishes a new post. Admin only.
func (s *PostService) Create(ctx context.Context, identity domain.Identity, input CreatePostInput) (*domain.Post, error) {
	if err := policy.Authorize(identity, policy.ActionCreatePost, policy.Target{}); err != nil {
		return nil, err
	}

	if err := validatePostInput(input.Title, input.Content, input.ImageURL); err != nil {
		return nil, err
	}

	post := domain.NewPost(strings.TrimSpace(input.Title), input.Content, input.ImageURL)

	if err := s.postRepo.Create(ctx, post); err != nil {
		s.logger.Error().Err(err).Msg("failed to create post")
		return nil, fmt.Errorf("%w: %v", ErrInternalError, err)
	}

	s.logger.Info().Int64("post_id", post.ID).Int64("user_id", identity.UserID).Msg("post created")

	return post, nil
}

// Edit replaces the title, content, and image of an existing post. Admin only.
func (s *PostService) Edit(ctx context.Context, identity domain.Identity, input EditPostInput) (*domain.Post, error) {
	if err := policy.Authorize(identity, policy.ActionEditPost, policy.Target{}); err != nil {
		return nil, err
	}

	if err := validatePostInput(input.Title, input.Content, input.ImageURL); err != nil {
		return nil, err
	}

	post, err := s.postRepo.GetByID(ctx, input.PostID)
	if err != nil {
		if errors.Is(err, domain.ErrPostNotFound) {
			return nil, err
		}
		s.logger.Error().Err(err).Int64("post_id", input.PostID).Msg("failed to get post")
		return nil, fmt.Errorf("%w: %v", ErrInternalError, err)
	}

	post.Title = strings.TrimSpace(input.Title)
	post.Content = input.Content
	post.ImageURL = input.ImageURL

	if err := s.postRepo.Update(ctx, post); err != nil {
		if errors.Is(err, domain.ErrPostNotFound) {
			return nil, err
		}
		s.logger.Error().Err(err).Int64("post_id", post.ID).Msg("failed to update post")
		return nil, fmt.Errorf("%w: %v", ErrInternalError, err)
	}

	s.logger.Info().Int64("post_id", post.ID).Int64("user_id", identity.UserID).Msg("post updated")

	return post, nil
}

// Delete removes a post and, through the schema, its comments. Admin only.
func (s *PostService) Delete(ctx context.Context, identity domain.Identity, postID int64) error {
	if err := policy.Authorize(identity, policy.ActionDeletePost, policy.Target{}); err != nil {
		return err
	}

	if err := s.postRepo.Delete(ctx, postID); err != nil {
		if errors.Is(err, domain.ErrPostNotFound) {
			return err
		}
		s.logger.Error().Err(err).Int64("post_id", postID).Msg("failed to delete post")
		return fmt.Errorf("%w: %v", ErrInternalError, err)
	}

	s.logger.Info().Int64("post_id", postID).Int64("user_id", identity.UserID).Msg("post deleted")

	return nil
}

func validatePostInput(title, content string, imageURL *string) error {
	title = strings.TrimSpace(title)
	if title == "" {
		return ErrEmptyTitle
	}
	if len(title) > maxTitleLength {
		return ErrTitleTooLong
	}
	if strings.TrimSpace(content) == "" {
		return ErrEmptyContent
	}
	if imageURL != nil && len(*imageURL) > maxImageURLLength {
		return ErrImageURLTooLong
	}
	return nil
}
