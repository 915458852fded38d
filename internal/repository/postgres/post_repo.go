package postgres

import (
	"context"
	"fmt"

	"github.com/quillhq/quill/internal/domain"
	"github.com/quillhq/quill/internal/repository"
)

// postRepository implements repository.PostRepository for PostgreSQL.
type postRepository struct {
	db *DB
}

// NewPostRepository creates a new PostgreSQL post repository.
func NewPostRepository(db *DB) repository.PostRepository {
	return &postRepository{db: db}
}

// Create creates a new post.
func (r *postRepository) Create(ctx context.Context, post *domain.Post) error {
	query := `
		INSERT INTO posts (title, content, image_url, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id
	`

	err := r.db.Pool.QueryRow(ctx, query,
		post.Title,
		post.Content,
		post.ImageURL,
		post.CreatedAt,
		post.UpdatedAt,
	).Scan(&post.ID)
	if err != nil {
		return fmt.Errorf("failed to create post: %w", err)
	}

	return nil
}

const postColumns = `id, title, content, image_url, created_at, updated_at`

// GetByID retrieves a post by ID.
func (r *postRepository) GetByID(ctx context.Context, id int64) (*domain.Post, error) {
	query := `SELECT ` + postColumns + ` FROM posts WHERE id = $1`

	post := &domain.Post{}
	err := r.db.Pool.QueryRow(ctx, query, id).Scan(
		&post.ID, &post.Title, &post.Content,
		&post.ImageURL, &post.CreatedAt, &post.UpdatedAt,
	)
	if err != nil {
		if isNoRows(err) {
			return nil, domain.ErrPostNotFound
		}
		return nil, fmt.Errorf("failed to get post by ID: %w", err)
	}
	return post, nil
}

// List returns all posts, newest first.
func (r *postRepository) List(ctx context.Context) ([]*domain.Post, error) {
	query := `SELECT ` + postColumns + ` FROM posts ORDER BY created_at DESC, id DESC`

	rows, err := r.db.Pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list posts: %w", err)
	}
	defer rows.Close()

	var posts []*domain.Post
	for rows.Next() {
		post := &domain.Post{}
		err := rows.Scan(
			&post.ID, &post.Title, &post.Content,
			&post.ImageURL, &post.CreatedAt, &post.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan post: %w", err)
		}
		posts = append(posts, post)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating posts: %w", err)
	}

	return posts, nil
}

// Update updates an existing post.
func (r *postRepository) Update(ctx context.Context, post *domain.Post) error {
	query := `
		UPDATE posts
		SET title = $1, content = $2, image_url = $3, updated_at = now()
		WHERE id = $4
	`

	tag, err := r.db.Pool.Exec(ctx, query,
		post.Title,
		post.Content,
		post.ImageURL,
		post.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update post: %w", err)
	}

	if tag.RowsAffected() == 0 {
		return domain.ErrPostNotFound
	}

	return nil
}

// Delete deletes a post by ID. The ON DELETE CASCADE constraint removes
// the post's comments in the same statement.
func (r *postRepository) Delete(ctx context.Context, id int64) error {
	tag, err := r.db.Pool.Exec(ctx, `DELETE FROM posts WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete post: %w", err)
	}

	if tag.RowsAffected() == 0 {
		return domain.ErrPostNotFound
	}

	return nil
}

// Ensure postRepository implements repository.PostRepository.
var _ repository.PostRepository = (*postRepository)(nil)
