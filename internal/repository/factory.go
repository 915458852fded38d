// Package repository provides the data access layer for Quill.
package repository

import (
	"context"
)

// Repositories holds all repository instances.
type Repositories struct {
	Users    UserRepository
	Posts    PostRepository
	Comments CommentRepository
	Sessions SessionStore
}

// DatabaseHealth is an interface for database health checks, satisfied
// by both the SQLite and PostgreSQL connection wrappers.
type DatabaseHealth interface {
	Ping(ctx context.Context) error
	Health(ctx context.Context) error
	Close() error
}
