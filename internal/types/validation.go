package types

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

// ------------------------------
// Shared Interfaces
// ------------------------------

// Identity is the read-only view of the active session handed to caches.
type Identity interface {
	// User returns a copy of the active identity, or nil when anonymous.
	User() *User
}

// TokenSource yields the persisted bearer credential at call time. An empty
// string means no credential is stored.
type TokenSource interface {
	Token(ctx context.Context) (string, error)
}

// ------------------------------
// Shared Errors
// ------------------------------

var (
	// ErrNotAuthenticated is returned, before any network call, when an
	// operation needs an active session and there is none.
	ErrNotAuthenticated = errors.New("user must be logged in")

	// ErrMissingID is returned when a path identifier is empty.
	ErrMissingID = errors.New("missing identifier")

	// ErrMissingField is returned when a required request field is empty.
	ErrMissingField = errors.New("missing required field")

	ErrLoginFailed         = errors.New("login failed")
	ErrSignupFailed        = errors.New("signup failed")
	ErrProfileUpdateFailed = errors.New("failed to update profile")
)

// DomainError reports an HTTP-successful response whose body flags a
// business failure. It matches its Kind sentinel with errors.Is.
type DomainError struct {
	Op      string
	Kind    error
	Message string // server-provided, may be empty
}

func (e *DomainError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	return e.Kind.Error()
}

func (e *DomainError) Unwrap() error { return e.Kind }

// NotAuthenticated wraps ErrNotAuthenticated with the attempted action.
func NotAuthenticated(action string) error {
	return fmt.Errorf("%w to %s", ErrNotAuthenticated, action)
}

// ValidateIDPresent ensures a path identifier is non-empty.
func ValidateIDPresent(id, field string) error {
	if strings.TrimSpace(id) == "" {
		return fmt.Errorf("%w: %s", ErrMissingID, field)
	}
	return nil
}

// ValidateFieldPresent ensures a required request field is non-empty.
func ValidateFieldPresent(value, field string) error {
	if strings.TrimSpace(value) == "" {
		return fmt.Errorf("%w: %s", ErrMissingField, field)
	}
	return nil
}
