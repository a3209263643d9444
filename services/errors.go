package services

import (
	"errors"
	"fmt"
)

// Sentinel conflicts. Handlers map these to 409 so a client can tell a stale
// retry apart from a bad id.
var (
	ErrAlreadyCompleted   = errors.New("task already completed")
	ErrAlreadyUnlocked    = errors.New("reward already unlocked")
	ErrDuplicateUsername  = errors.New("username already exists")
	ErrInvalidCredentials = errors.New("invalid username or password")
)

// NotFoundError names the entity that was absent (or not owned by the
// caller, which is indistinguishable on purpose).
type NotFoundError struct {
	Entity string
}

func (e *NotFoundError) Error() string {
	return e.Entity + " not found"
}

func notFoundErr(entity string) error {
	return &NotFoundError{Entity: entity}
}

// ValidationError signals missing or malformed input.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

func validationErr(format string, args ...interface{}) error {
	return &ValidationError{Message: fmt.Sprintf(format, args...)}
}

// InsufficientPointsError carries both sides of the failed affordability
// check so the client can show the shortfall.
type InsufficientPointsError struct {
	Required int64
	Balance  int64
}

func (e *InsufficientPointsError) Error() string {
	return fmt.Sprintf("insufficient points: need %d, have %d", e.Required, e.Balance)
}

// Shortfall is how many points are still missing.
func (e *InsufficientPointsError) Shortfall() int64 {
	return e.Required - e.Balance
}
