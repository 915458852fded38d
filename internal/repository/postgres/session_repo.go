package postgres

import (
	"context"
	"fmt"

	"github.com/quillhq/quill/internal/domain"
	"github.com/quillhq/quill/internal/repository"
)

// sessionStore implements repository.SessionStore for PostgreSQL.
type sessionStore struct {
	db *DB
}

// NewSessionStore creates a new PostgreSQL session store.
func NewSessionStore(db *DB) repository.SessionStore {
	return &sessionStore{db: db}
}

// Create stores a new session.
func (r *sessionStore) Create(ctx context.Context, session *domain.Session) error {
	query := `
		INSERT INTO sessions (token, user_id, created_at, expires_at)
		VALUES ($1, $2, $3, $4)
	`

	_, err := r.db.Pool.Exec(ctx, query,
		session.Token,
		session.UserID,
		session.CreatedAt,
		session.ExpiresAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create session: %w", err)
	}

	return nil
}

// Get retrieves a session by token. Expired rows are deleted on access
// and reported as not found.
func (r *sessionStore) Get(ctx context.Context, token string) (*domain.Session, error) {
	query := `SELECT token, user_id, created_at, expires_at FROM sessions WHERE token = $1`

	session := &domain.Session{}
	err := r.db.Pool.QueryRow(ctx, query, token).Scan(
		&session.Token,
		&session.UserID,
		&session.CreatedAt,
		&session.ExpiresAt,
	)
	if err != nil {
		if isNoRows(err) {
			return nil, domain.ErrSessionNotFound
		}
		return nil, fmt.Errorf("failed to get session: %w", err)
	}

	if session.Expired() {
		_ = r.Delete(ctx, token)
		return nil, domain.ErrSessionNotFound
	}

	return session, nil
}

// Delete removes a session by token. Absent tokens are a no-op.
func (r *sessionStore) Delete(ctx context.Context, token string) error {
	if _, err := r.db.Pool.Exec(ctx, `DELETE FROM sessions WHERE token = $1`, token); err != nil {
		return fmt.Errorf("failed to delete session: %w", err)
	}
	return nil
}

// Ensure sessionStore implements repository.SessionStore.
var _ repository.SessionStore = (*sessionStore)(nil)
