package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/quillhq/quill/internal/domain"
	"github.com/quillhq/quill/internal/repository"
)

// SessionService establishes, tears down, and resolves sessions.
type SessionService struct {
	userRepo     repository.UserRepository
	sessionStore repository.SessionStore
	accounts     *AccountService
	lifetime     time.Duration
	logger       zerolog.Logger
}

// NewSessionService creates a new SessionService.
func NewSessionService(
	userRepo repository.UserRepository,
	sessionStore repository.SessionStore,
	accounts *AccountService,
	lifetime time.Duration,
	logger zerolog.Logger,
) *SessionService {
	return &SessionService{
		userRepo:     userRepo,
		sessionStore: sessionStore,
		accounts:     accounts,
		lifetime:     lifetime,
		logger:       logger.With().Str("service", "session").Logger(),
	}
}

// LoginInput contains the credentials for a login attempt.
type LoginInput struct {
	Email    string
	Password string
}

// LoginOutput contains the established session and the user.
type LoginOutput struct {
	Session *domain.Session
	User    *domain.User
}

// Login verifies credentials and establishes a new session.
func (s *SessionService) Login(ctx context.Context, input LoginInput) (*LoginOutput, error) {
	user, err := s.accounts.Authenticate(ctx, input.Email, input.Password)
	if err != nil {
		return nil, err
	}

	session := domain.NewSession(uuid.NewString(), user.ID, s.lifetime)

	if err := s.sessionStore.Create(ctx, session); err != nil {
		s.logger.Error().Err(err).Int64("user_id", user.ID).Msg("failed to store session")
		return nil, fmt.Errorf("%w: %v", ErrInternalError, err)
	}

	s.logger.Info().
		Int64("user_id", user.ID).
		Time("expires_at", session.ExpiresAt).
		Msg("session established")

	return &LoginOutput{Session: session, User: user}, nil
}

// Logout destroys the session. Logging out an already-absent session is
// a benign no-op.
func (s *SessionService) Logout(ctx context.Context, token string) error {
	if token == "" {
		return nil
	}

	if err := s.sessionStore.Delete(ctx, token); err != nil {
		s.logger.Error().Err(err).Msg("failed to delete session")
		return fmt.Errorf("%w: %v", ErrInternalError, err)
	}

	return nil
}

// Resolve maps a session token to an identity. Missing, expired, or
// invalid tokens resolve to the anonymous identity; resolution never
// fails a request.
func (s *SessionService) Resolve(ctx context.Context, token string) domain.Identity {
	if token == "" {
		return domain.Anonymous()
	}

	session, err := s.sessionStore.Get(ctx, token)
	if err != nil {
		return domain.Anonymous()
	}

	user, err := s.userRepo.GetByID(ctx, session.UserID)
	if err != nil {
		// Session for a vanished user: clean it up and fall back.
		_ = s.sessionStore.Delete(ctx, token)
		return domain.Anonymous()
	}

	return domain.Authenticated(user)
}
