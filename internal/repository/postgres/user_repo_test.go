package postgres

import (
	"context"
	"fmt"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/quillhq/quill/internal/domain"
)

// newTestDB connects to the PostgreSQL instance named by
// QUILL_TEST_POSTGRES_DSN, runs migrations, and starts from an empty
// users table. Tests are skipped when no instance is available.
func newTestDB(t *testing.T) *DB {
	t.Helper()

	dsn := os.Getenv("QUILL_TEST_POSTGRES_DSN")
	if dsn == "" {
		t.Skip("QUILL_TEST_POSTGRES_DSN not set")
	}

	ctx := context.Background()

	pool, err := pgxpool.New(ctx, dsn)
	require.NoError(t, err)

	db := &DB{Pool: pool, logger: zerolog.Nop()}
	t.Cleanup(func() { _ = db.Close() })

	require.NoError(t, db.Migrate(ctx))

	_, err = pool.Exec(ctx, `TRUNCATE users RESTART IDENTITY CASCADE`)
	require.NoError(t, err)

	return db
}

func newTestUser(email string) *domain.User {
	now := time.Now().UTC()
	return &domain.User{
		Email:        email,
		PasswordHash: "x",
		CanComment:   true,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
}

func TestUserRepository_FirstUserBecomesAdmin(t *testing.T) {
	db := newTestDB(t)
	repo := NewUserRepository(db)
	ctx := context.Background()

	first := newTestUser("first@example.com")
	require.NoError(t, repo.Create(ctx, first))
	require.True(t, first.IsAdmin)

	second := newTestUser("second@example.com")
	require.NoError(t, repo.Create(ctx, second))
	require.False(t, second.IsAdmin)
}

// A burst of concurrent registrations against an empty table must
// produce exactly one admin.
func TestUserRepository_ConcurrentFirstRegistration(t *testing.T) {
	db := newTestDB(t)
	repo := NewUserRepository(db)
	ctx := context.Background()

	const racers = 16

	var wg sync.WaitGroup
	errs := make([]error, racers)

	for i := 0; i < racers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			errs[i] = repo.Create(ctx, newTestUser(fmt.Sprintf("racer%d@example.com", i)))
		}(i)
	}
	wg.Wait()

	for _, err := range errs {
		require.NoError(t, err)
	}

	users, err := repo.List(ctx)
	require.NoError(t, err)
	require.Len(t, users, racers)

	admins := 0
	for _, u := range users {
		if u.IsAdmin {
			admins++
		}
	}
	require.Equal(t, 1, admins)
}

func TestUserRepository_DuplicateEmail(t *testing.T) {
	db := newTestDB(t)
	repo := NewUserRepository(db)
	ctx := context.Background()

	require.NoError(t, repo.Create(ctx, newTestUser("dup@example.com")))

	err := repo.Create(ctx, newTestUser("dup@example.com"))
	require.ErrorIs(t, err, domain.ErrDuplicateEmail)
}
