package domain

import (
	"errors"
	"fmt"
)

// Error kinds. Every error returned by the app layer wraps exactly one of these,
// so transports can map them with errors.Is.
var (
	ErrValidation   = errors.New("invalid input")
	ErrConflict     = errors.New("conflict")
	ErrNotFound     = errors.New("not found")
	ErrUnauthorized = errors.New("unauthorized")
)

var (
	// ErrIDMismatch is returned when an item id and its question number disagree.
	ErrIDMismatch = fmt.Errorf("%w: id and question number must match", ErrValidation)
	// ErrItemNotFound is returned when no item has the requested id.
	ErrItemNotFound = fmt.Errorf("item %w", ErrNotFound)
	// ErrItemExists is returned when the store already holds an item with the id.
	ErrItemExists = fmt.Errorf("%w: item id already exists", ErrConflict)
	// ErrAnswerNotFound is returned when an item holds no answer with the requested id.
	ErrAnswerNotFound = fmt.Errorf("answer %w", ErrNotFound)
	// ErrMetricNotFound is returned when no metric matches the id or question.
	ErrMetricNotFound = fmt.Errorf("metric %w", ErrNotFound)
	// ErrUserNotFound is returned when no user matches the id or email.
	ErrUserNotFound = fmt.Errorf("user %w", ErrNotFound)
	// ErrEmailTaken is returned when registering or renaming to an email already in use.
	ErrEmailTaken = fmt.Errorf("%w: email already registered", ErrConflict)
	// ErrChallengeNotFound is returned when no challenge has the requested id.
	ErrChallengeNotFound = fmt.Errorf("challenge %w", ErrNotFound)
	// ErrVersionConflict signals that a record changed between read and conditional write.
	ErrVersionConflict = fmt.Errorf("%w: concurrent update", ErrConflict)
	// ErrInvalidCredentials is returned for an unknown email or a wrong password.
	ErrInvalidCredentials = fmt.Errorf("%w: incorrect email or password", ErrUnauthorized)
	// ErrInvalidToken is returned for a missing, malformed or expired bearer token.
	ErrInvalidToken = fmt.Errorf("%w: could not validate credentials", ErrUnauthorized)
)

// Invalid builds a validation error with a caller supplied message.
func Invalid(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrValidation, fmt.Sprintf(format, args...))
}
