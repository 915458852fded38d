package sqlite

import (
	"context"
	"fmt"
	"time"

	"github.com/quillhq/quill/internal/domain"
	"github.com/quillhq/quill/internal/repository"
)

// sessionStore implements repository.SessionStore for SQLite.
type sessionStore struct {
	db *DB
}

// NewSessionStore creates a new SQLite session store.
func NewSessionStore(db *DB) repository.SessionStore {
	return &sessionStore{db: db}
}

// Create stores a new session.
func (r *sessionStore) Create(ctx context.Context, session *domain.Session) error {
	query := `
		INSERT INTO sessions (token, user_id, created_at, expires_at)
		VALUES (?, ?, ?, ?)
	`

	_, err := r.db.ExecContext(ctx, query,
		session.Token,
		session.UserID,
		session.CreatedAt.Format(time.RFC3339),
		session.ExpiresAt.Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("failed to create session: %w", err)
	}

	return nil
}

// Get retrieves a session by token. Expired rows are deleted on access
// and reported as not found; nothing else cleans them up.
func (r *sessionStore) Get(ctx context.Context, token string) (*domain.Session, error) {
	query := `SELECT token, user_id, created_at, expires_at FROM sessions WHERE token = ?`

	session := &domain.Session{}
	var createdAt, expiresAt string

	err := r.db.QueryRowContext(ctx, query, token).Scan(
		&session.Token,
		&session.UserID,
		&createdAt,
		&expiresAt,
	)
	if err != nil {
		if isNoRows(err) {
			return nil, domain.ErrSessionNotFound
		}
		return nil, fmt.Errorf("failed to get session: %w", err)
	}

	session.CreatedAt, _ = time.Parse(time.RFC3339, createdAt)
	session.ExpiresAt, _ = time.Parse(time.RFC3339, expiresAt)

	if session.Expired() {
		_ = r.Delete(ctx, token)
		return nil, domain.ErrSessionNotFound
	}

	return session, nil
}

// Delete removes a session by token. Absent tokens are a no-op.
func (r *sessionStore) Delete(ctx context.Context, token string) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM sessions WHERE token = ?`, token); err != nil {
		return fmt.Errorf("failed to delete session: %w", err)
	}
	return nil
}

// Ensure sessionStore implements repository.SessionStore.
var _ repository.SessionStore = (*sessionStore)(nil)
