// Package memory provides an in-memory session store. This is suitable
// for single-node development and tests where neither the database nor
// Redis should hold sessions. It is NOT suitable for distributed
// deployments.
package memory

import (
	"context"
	"sync"

	"github.com/quillhq/quill/internal/domain"
	"github.com/quillhq/quill/internal/repository"
)

// SessionStore implements repository.SessionStore using a mutex-guarded
// map. Expired sessions are removed lazily on access.
type SessionStore struct {
	mu       sync.RWMutex
	sessions map[string]*domain.Session
}

// NewSessionStore creates a new in-memory session store.
func NewSessionStore() *SessionStore {
	return &SessionStore{
		sessions: make(map[string]*domain.Session),
	}
}

// Create stores a new session.
func (s *SessionStore) Create(ctx context.Context, session *domain.Session) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	copied := *session
	s.sessions[session.Token] = &copied
	return nil
}

// Get retrieves a session by token, removing it when expired.
func (s *SessionStore) Get(ctx context.Context, token string) (*domain.Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	session, ok := s.sessions[token]
	if !ok {
		return nil, domain.ErrSessionNotFound
	}

	if session.Expired() {
		delete(s.sessions, token)
		return nil, domain.ErrSessionNotFound
	}

	copied := *session
	return &copied, nil
}

// Delete removes a session by token. Absent tokens are a no-op.
func (s *SessionStore) Delete(ctx context.Context, token string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.sessions, token)
	return nil
}

// Ensure SessionStore implements repository.SessionStore.
var _ repository.SessionStore = (*SessionStore)(nil)
