package service

import (
	"context"
	"errors"
	"testing"

	"github.com/rs/zerolog"

	"github.com/quillhq/quill/internal/domain"
)

func TestCommentService_Create(t *testing.T) {
	admin := domain.Identity{UserID: 1, IsAdmin: true, CanComment: true}
	member := domain.Identity{UserID: 2, CanComment: true}
	blocked := domain.Identity{UserID: 3, CanComment: false}

	tests := []struct {
		name      string
		identity  domain.Identity
		input     CreateCommentInput
		wantErr   error
		setupRepo func(*MockCommentRepository)
	}{
		{
			name:     "success",
			identity: member,
			input: CreateCommentInput{
				PostID: 1,
				Text:   "Nice post!",
			},
			wantErr: nil,
		},
		{
			name:     "anonymous denied",
			identity: domain.Anonymous(),
			input: CreateCommentInput{
				PostID: 1,
				Text:   "Nice post!",
			},
			wantErr: domain.ErrAccessDenied,
		},
		{
			name:     "blocked user denied",
			identity: blocked,
			input: CreateCommentInput{
				PostID: 1,
				Text:   "Nice post!",
			},
			wantErr: domain.ErrAccessDenied,
		},
		{
			name:     "empty text",
			identity: member,
			input: CreateCommentInput{
				PostID: 1,
				Text:   "   ",
			},
			wantErr: ErrEmptyComment,
		},
		{
			name:     "post not found",
			identity: member,
			input: CreateCommentInput{
				PostID: 99,
				Text:   "Nice post!",
			},
			wantErr: domain.ErrPostNotFound,
		},
		{
			name:     "second comment on same post",
			identity: member,
			input: CreateCommentInput{
				PostID: 1,
				Text:   "Me again",
			},
			wantErr: ErrDuplicateComment,
			setupRepo: func(m *MockCommentRepository) {
				m.comments[1] = &domain.Comment{ID: 1, PostID: 1, UserID: 2, Text: "first"}
				m.nextID = 2
			},
		},
		{
			name:     "admin may comment repeatedly",
			identity: admin,
			input: CreateCommentInput{
				PostID: 1,
				Text:   "Admin again",
			},
			wantErr: nil,
			setupRepo: func(m *MockCommentRepository) {
				m.comments[1] = &domain.Comment{ID: 1, PostID: 1, UserID: 1, Text: "first"}
				m.nextID = 2
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			comments := NewMockCommentRepository()
			if tt.setupRepo != nil {
				tt.setupRepo(comments)
			}
			posts := NewMockPostRepository()
			posts.posts[1] = &domain.Post{ID: 1, Title: "Hello", Content: "Body"}
			posts.nextID = 2

			svc := NewCommentService(comments, posts, zerolog.Nop())

			comment, err := svc.Create(context.Background(), tt.identity, tt.input)

			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Errorf("expected error %v, got %v", tt.wantErr, err)
				}
				return
			}

			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}

			if comment.ID == 0 {
				t.Error("expected assigned comment ID")
			}
			if comment.UserID != tt.identity.UserID {
				t.Errorf("expected author %d, got %d", tt.identity.UserID, comment.UserID)
			}
		})
	}
}

func TestCommentService_Delete(t *testing.T) {
	admin := domain.Identity{UserID: 1, IsAdmin: true, CanComment: true}
	author := domain.Identity{UserID: 2, CanComment: true}
	other := domain.Identity{UserID: 3, CanComment: true}

	tests := []struct {
		name      string
		identity  domain.Identity
		postID    int64
		commentID int64
		wantErr   error
	}{
		{name: "author deletes own comment", identity: author, postID: 1, commentID: 1, wantErr: nil},
		{name: "admin deletes any comment", identity: admin, postID: 1, commentID: 1, wantErr: nil},
		{name: "other user denied", identity: other, postID: 1, commentID: 1, wantErr: domain.ErrAccessDenied},
		{name: "anonymous denied", identity: domain.Anonymous(), postID: 1, commentID: 1, wantErr: domain.ErrAccessDenied},
		{name: "comment not found", identity: admin, postID: 1, commentID: 99, wantErr: domain.ErrCommentNotFound},
		{name: "comment on different post", identity: admin, postID: 2, commentID: 1, wantErr: domain.ErrCommentNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			comments := NewMockCommentRepository()
			comments.comments[1] = &domain.Comment{ID: 1, PostID: 1, UserID: 2, Text: "hello"}
			comments.nextID = 2
			posts := NewMockPostRepository()

			svc := NewCommentService(comments, posts, zerolog.Nop())

			err := svc.Delete(context.Background(), tt.identity, tt.postID, tt.commentID)

			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Errorf("expected error %v, got %v", tt.wantErr, err)
				}
				return
			}

			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}

			if _, exists := comments.comments[tt.commentID]; exists {
				t.Error("comment still present after delete")
			}
		})
	}
}
