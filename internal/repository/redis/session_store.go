// Package redis provides a Redis-backed session store. Sessions are
// stored as JSON values under a token-derived key with a TTL matching
// the session lifetime, so Redis expires them without any cleanup job.
package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/quillhq/quill/internal/domain"
	"github.com/quillhq/quill/internal/repository"
)

const keyPrefix = "quill:session:"

// Config holds Redis connection settings for the session store.
type Config struct {
	// Addr is the Redis address in host:port format.
	Addr string

	// Password is the Redis password, empty for none.
	Password string

	// DB is the Redis database number.
	DB int

	// PoolSize sets the connection pool size.
	PoolSize int

	// DialTimeout sets the dial timeout.
	DialTimeout time.Duration
}

// SessionStore implements repository.SessionStore using Redis.
type SessionStore struct {
	client *redis.Client
	logger zerolog.Logger
}

// NewSessionStore creates a new Redis session store and verifies the
// connection.
func NewSessionStore(ctx context.Context, cfg Config, logger zerolog.Logger) (*SessionStore, error) {
	client := redis.NewClient(&redis.Options{
		Addr:        cfg.Addr,
		Password:    cfg.Password,
		DB:          cfg.DB,
		PoolSize:    cfg.PoolSize,
		DialTimeout: cfg.DialTimeout,
	})

	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to ping Redis: %w", err)
	}

	logger.Info().
		Str("addr", cfg.Addr).
		Int("db", cfg.DB).
		Msg("connected to Redis session store")

	return &SessionStore{
		client: client,
		logger: logger,
	}, nil
}

// Close closes the Redis client.
func (s *SessionStore) Close() error {
	return s.client.Close()
}

// Ping checks the Redis connection.
func (s *SessionStore) Ping(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}

// Create stores a new session with a TTL until its expiry time.
func (s *SessionStore) Create(ctx context.Context, session *domain.Session) error {
	payload, err := json.Marshal(session)
	if err != nil {
		return fmt.Errorf("failed to marshal session: %w", err)
	}

	ttl := time.Until(session.ExpiresAt)
	if ttl <= 0 {
		return fmt.Errorf("session already expired")
	}

	if err := s.client.Set(ctx, keyPrefix+session.Token, payload, ttl).Err(); err != nil {
		return fmt.Errorf("failed to store session: %w", err)
	}

	return nil
}

// Get retrieves a session by token. Redis TTL eviction means expired
// tokens are simply absent.
func (s *SessionStore) Get(ctx context.Context, token string) (*domain.Session, error) {
	payload, err := s.client.Get(ctx, keyPrefix+token).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, domain.ErrSessionNotFound
		}
		return nil, fmt.Errorf("failed to get session: %w", err)
	}

	session := &domain.Session{}
	if err := json.Unmarshal(payload, session); err != nil {
		return nil, fmt.Errorf("failed to unmarshal session: %w", err)
	}

	if session.Expired() {
		_ = s.Delete(ctx, token)
		return nil, domain.ErrSessionNotFound
	}

	return session, nil
}

// Delete removes a session by token. Absent tokens are a no-op.
func (s *SessionStore) Delete(ctx context.Context, token string) error {
	if err := s.client.Del(ctx, keyPrefix+token).Err(); err != nil {
		return fmt.Errorf("failed to delete session: %w", err)
	}
	return nil
}

// Ensure SessionStore implements repository.SessionStore.
var _ repository.SessionStore = (*SessionStore)(nil)
