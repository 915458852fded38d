// Package service provides business logic services for Quill.
package service

import "errors"

// Common service errors. Validation errors represent bad user input and
// are rendered back at the form; they never reach the error page.
var (
	// Registration/login errors
	ErrInvalidEmail    = errors.New("invalid email format")
	ErrInvalidPassword = errors.New("invalid password: must be 5-50 characters")

	// Post validation errors
	ErrEmptyTitle      = errors.New("post title must not be empty")
	ErrEmptyContent    = errors.New("post content must not be empty")
	ErrTitleTooLong    = errors.New("post title exceeds maximum length of 100 characters")
	ErrImageURLTooLong = errors.New("image URL exceeds maximum length of 500 characters")

	// Comment validation errors
	ErrEmptyComment     = errors.New("comment text must not be empty")
	ErrDuplicateComment = errors.New("user already commented on this post")

	// General errors
	ErrInternalError = errors.New("internal server error")
)
