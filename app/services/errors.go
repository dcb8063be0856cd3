package services

import (
	"errors"
	"fmt"
)

// ErrAuthRequired matches every *AuthRequiredError via errors.Is.
var ErrAuthRequired = errors.New("authentication required")

// AuthRequiredError is returned by writes attempted without a signed-in user.
type AuthRequiredError struct {
	Op string
}

func (e *AuthRequiredError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, ErrAuthRequired)
}

func (e *AuthRequiredError) Is(target error) bool { return target == ErrAuthRequired }

// ValidationError rejects a request before it reaches the backend.
type ValidationError struct {
	Op     string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Op, e.Reason)
}

// NotFoundError is a single-row read that matched nothing.
type NotFoundError struct {
	Entity string
	ID     interface{}
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %v not found", e.Entity, e.ID)
}

// RemoteError wraps a backend or transport failure.
type RemoteError struct {
	Op  string
	Err error
}

func (e *RemoteError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *RemoteError) Unwrap() error { return e.Err }

// IsValidation reports whether err is a *ValidationError.
func IsValidation(err error) bool {
	var v *ValidationError
	return errors.As(err, &v)
}

// IsNotFound reports whether err is a *NotFoundError.
func IsNotFound(err error) bool {
	var n *NotFoundError
	return errors.As(err, &n)
}

// IsRemote reports whether err is a *RemoteError.
func IsRemote(err error) bool {
	var r *RemoteError
	return errors.As(err, &r)
}
