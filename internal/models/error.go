package models

import (
	"errors"
	"fmt"
)

// Sentinel errors for common failure conditions
var (
	ErrNotFound       = errors.New("resource not found")
	ErrConflict       = errors.New("resource already exists")
	ErrUnauthorized   = errors.New("unauthorized")
	ErrForbidden      = errors.New("forbidden")
	ErrBadRequest     = errors.New("bad request")
	ErrInternalServer = errors.New("internal server error")

	// Registration errors
	ErrUsernameTaken = errors.New("username already taken")
	ErrEmailTaken    = errors.New("email already registered")

	// Login attempt errors
	ErrRateLimitExceeded = errors.New("too many failed login attempts")

	// Ownership errors
	ErrCategoryNotOwned = errors.New("category does not belong to user")
)

// RateLimitError is returned when a username is inside its block window.
// RemainingSeconds is the caller-facing wait time and is never negative.
type RateLimitError struct {
	RemainingSeconds int
}

func (e *RateLimitError) Error() string {
	return fmt.Sprintf("%s: retry in %ds", ErrRateLimitExceeded.Error(), e.RemainingSeconds)
}

func (e *RateLimitError) Unwrap() error {
	return ErrRateLimitExceeded
}
