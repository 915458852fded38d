package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/quillhq/quill/internal/domain"
)

func newTestSessionService(t *testing.T) (*SessionService, *MockUserRepository, *MockSessionStore) {
	t.Helper()

	userRepo := NewMockUserRepository()
	sessionStore := NewMockSessionStore()
	accounts := NewAccountService(userRepo, zerolog.Nop())
	svc := NewSessionService(userRepo, sessionStore, accounts, time.Hour, zerolog.Nop())

	if _, err := accounts.Register(context.Background(), RegisterInput{
		Email:    "alice@example.com",
		Password: "secret",
	}); err != nil {
		t.Fatalf("register failed: %v", err)
	}

	return svc, userRepo, sessionStore
}

func TestSessionService_Login(t *testing.T) {
	tests := []struct {
		name    string
		input   LoginInput
		wantErr error
	}{
		{
			name: "success",
			input: LoginInput{
				Email:    "alice@example.com",
				Password: "secret",
			},
			wantErr: nil,
		},
		{
			name: "wrong password",
			input: LoginInput{
				Email:    "alice@example.com",
				Password: "wrong-password",
			},
			wantErr: domain.ErrInvalidCredentials,
		},
		{
			name: "unknown email",
			input: LoginInput{
				Email:    "nobody@example.com",
				Password: "secret",
			},
			wantErr: domain.ErrInvalidCredentials,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, _, store := newTestSessionService(t)

			output, err := svc.Login(context.Background(), tt.input)

			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Errorf("expected error %v, got %v", tt.wantErr, err)
				}
				return
			}

			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}

			if output.Session.Token == "" {
				t.Error("expected non-empty session token")
			}

			if output.Session.UserID != output.User.ID {
				t.Errorf("session user %d does not match user %d", output.Session.UserID, output.User.ID)
			}

			if _, exists := store.sessions[output.Session.Token]; !exists {
				t.Error("session not persisted in store")
			}
		})
	}
}

func TestSessionService_Logout(t *testing.T) {
	svc, _, store := newTestSessionService(t)

	output, err := svc.Login(context.Background(), LoginInput{
		Email:    "alice@example.com",
		Password: "secret",
	})
	if err != nil {
		t.Fatalf("login failed: %v", err)
	}

	if err := svc.Logout(context.Background(), output.Session.Token); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, exists := store.sessions[output.Session.Token]; exists {
		t.Error("session still present after logout")
	}

	// Logging out again is a no-op.
	if err := svc.Logout(context.Background(), output.Session.Token); err != nil {
		t.Errorf("repeated logout should succeed, got %v", err)
	}

	if err := svc.Logout(context.Background(), ""); err != nil {
		t.Errorf("logout with empty token should succeed, got %v", err)
	}
}

func TestSessionService_Resolve(t *testing.T) {
	svc, userRepo, store := newTestSessionService(t)

	output, err := svc.Login(context.Background(), LoginInput{
		Email:    "alice@example.com",
		Password: "secret",
	})
	if err != nil {
		t.Fatalf("login failed: %v", err)
	}

	t.Run("valid token", func(t *testing.T) {
		identity := svc.Resolve(context.Background(), output.Session.Token)
		if identity.IsAnonymous() {
			t.Fatal("expected authenticated identity")
		}
		if identity.UserID != output.User.ID {
			t.Errorf("expected user %d, got %d", output.User.ID, identity.UserID)
		}
		if !identity.IsAdmin {
			t.Error("first registered user should resolve as admin")
		}
	})

	t.Run("empty token", func(t *testing.T) {
		if identity := svc.Resolve(context.Background(), ""); !identity.IsAnonymous() {
			t.Error("expected anonymous identity")
		}
	})

	t.Run("unknown token", func(t *testing.T) {
		if identity := svc.Resolve(context.Background(), "no-such-token"); !identity.IsAnonymous() {
			t.Error("expected anonymous identity")
		}
	})

	t.Run("expired token", func(t *testing.T) {
		store.sessions["stale"] = &domain.Session{
			Token:     "stale",
			UserID:    output.User.ID,
			ExpiresAt: time.Now().Add(-time.Minute),
		}
		if identity := svc.Resolve(context.Background(), "stale"); !identity.IsAnonymous() {
			t.Error("expected anonymous identity for expired session")
		}
	})

	t.Run("user deleted under session", func(t *testing.T) {
		delete(userRepo.users, output.User.ID)
		if identity := svc.Resolve(context.Background(), output.Session.Token); !identity.IsAnonymous() {
			t.Error("expected anonymous identity after user removal")
		}
		if _, exists := store.sessions[output.Session.Token]; exists {
			t.Error("orphaned session should be cleaned up")
		}
	})
}
