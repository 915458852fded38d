// Package service provides business logic services for Quill.
package service

import (
	"context"
	"errors"
	"fmt"
	"net/mail"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"

	"github.com/quillhq/quill/internal/domain"
	"github.com/quillhq/quill/internal/policy"
	"github.com/quillhq/quill/internal/repository"
)

// AccountService handles registration and user management.
type AccountService struct {
	userRepo repository.UserRepository
	logger   zerolog.Logger
}

// NewAccountService creates a new AccountService.
func NewAccountService(userRepo repository.UserRepository, logger zerolog.Logger) *AccountService {
	return &AccountService{
		userRepo: userRepo,
		logger:   logger.With().Str("service", "account").Logger(),
	}
}

// RegisterInput contains the data needed to register a new account.
type RegisterInput struct {
	Email    string
	Password string
}

// RegisterOutput contains the result of a registration.
type RegisterOutput struct {
	User *domain.User
}

// Register creates a new account. The first account ever registered is
// promoted to admin; the repository decides that atomically so two
// concurrent first registrations cannot both win.
func (s *AccountService) Register(ctx context.Context, input RegisterInput) (*RegisterOutput, error) {
	if err := s.validateRegisterInput(input); err != nil {
		return nil, err
	}

	// Fast-path duplicate check for a clean error. The unique
	// constraint still catches the race at insert time.
	exists, err := s.userRepo.ExistsByEmail(ctx, input.Email)
	if err != nil {
		s.logger.Error().Err(err).Str("email", input.Email).Msg("failed to check email existence")
		return nil, fmt.Errorf("%w: %v", ErrInternalError, err)
	}
	if exists {
		return nil, fmt.Errorf("%w: %s", domain.ErrDuplicateEmail, input.Email)
	}

	passwordHash, err := bcrypt.GenerateFromPassword([]byte(input.Password), bcrypt.DefaultCost)
	if err != nil {
		s.logger.Error().Err(err).Msg("failed to hash password")
		return nil, fmt.Errorf("%w: failed to hash password", ErrInternalError)
	}

	user := domain.NewUser(input.Email, string(passwordHash))

	if err := s.userRepo.Create(ctx, user); err != nil {
		if errors.Is(err, domain.ErrDuplicateEmail) {
			return nil, err
		}
		s.logger.Error().Err(err).Str("email", input.Email).Msg("failed to create user")
		return nil, fmt.Errorf("%w: %v", ErrInternalError, err)
	}

	s.logger.Info().
		Int64("user_id", user.ID).
		Str("email", user.Email).
		Bool("is_admin", user.IsAdmin).
		Msg("user registered")

	return &RegisterOutput{User: user}, nil
}

// Authenticate verifies credentials and returns the user.
func (s *AccountService) Authenticate(ctx context.Context, email, password string) (*domain.User, error) {
	user, err := s.userRepo.GetByEmail(ctx, email)
	if err != nil {
		// Log but don't expose whether the email exists
		s.logger.Debug().Str("email", email).Msg("user not found during authentication")
		return nil, domain.ErrInvalidCredentials
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		s.logger.Debug().Str("email", email).Msg("invalid password during authentication")
		return nil, domain.ErrInvalidCredentials
	}

	s.logger.Info().
		Int64("user_id", user.ID).
		Str("email", user.Email).
		Msg("user authenticated")

	return user, nil
}

// GetByID retrieves a user by ID.
func (s *AccountService) GetByID(ctx context.Context, id int64) (*domain.User, error) {
	user, err := s.userRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return nil, err
		}
		s.logger.Error().Err(err).Int64("user_id", id).Msg("failed to get user")
		return nil, fmt.Errorf("%w: %v", ErrInternalError, err)
	}
	return user, nil
}

// ListUsers returns all users for the admin panel.
func (s *AccountService) ListUsers(ctx context.Context, identity domain.Identity) ([]*domain.User, error) {
	if err := policy.Authorize(identity, policy.ActionManageUsers, policy.Target{}); err != nil {
		return nil, err
	}

	users, err := s.userRepo.List(ctx)
	if err != nil {
		s.logger.Error().Err(err).Msg("failed to list users")
		return nil, fmt.Errorf("%w: %v", ErrInternalError, err)
	}
	return users, nil
}

// SetCommentPrivilege sets the comment privilege of a user. Admin only.
func (s *AccountService) SetCommentPrivilege(ctx context.Context, identity domain.Identity, targetUserID int64, canComment bool) error {
	if err := policy.Authorize(identity, policy.ActionManageUsers, policy.Target{}); err != nil {
		return err
	}

	user, err := s.userRepo.GetByID(ctx, targetUserID)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return err
		}
		return fmt.Errorf("%w: %v", ErrInternalError, err)
	}

	user.CanComment = canComment
	user.UpdatedAt = time.Now().UTC()

	if err := s.userRepo.Update(ctx, user); err != nil {
		return fmt.Errorf("%w: %v", ErrInternalError, err)
	}

	s.logger.Info().
		Int64("user_id", user.ID).
		Bool("can_comment", canComment).
		Int64("changed_by", identity.UserID).
		Msg("comment privilege updated")

	return nil
}

// SetAdmin sets the admin flag of a user. Admin only; used by the
// operator CLI rather than the web surface.
func (s *AccountService) SetAdmin(ctx context.Context, identity domain.Identity, targetUserID int64, isAdmin bool) error {
	if err := policy.Authorize(identity, policy.ActionManageUsers, policy.Target{}); err != nil {
		return err
	}

	user, err := s.userRepo.GetByID(ctx, targetUserID)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return err
		}
		return fmt.Errorf("%w: %v", ErrInternalError, err)
	}

	user.IsAdmin = isAdmin
	user.UpdatedAt = time.Now().UTC()

	if err := s.userRepo.Update(ctx, user); err != nil {
		return fmt.Errorf("%w: %v", ErrInternalError, err)
	}

	s.logger.Info().
		Int64("user_id", user.ID).
		Bool("is_admin", isAdmin).
		Int64("changed_by", identity.UserID).
		Msg("admin flag updated")

	return nil
}

// validateRegisterInput validates the input for registering an account.
func (s *AccountService) validateRegisterInput(input RegisterInput) error {
	if _, err := mail.ParseAddress(input.Email); err != nil {
		return ErrInvalidEmail
	}

	if len(input.Password) < 5 || len(input.Password) > 50 {
		return ErrInvalidPassword
	}

	return nil
}
