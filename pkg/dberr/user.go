// pkg/dberr/user.go

package dberr

import (
	"errors"
	"fmt"
)

// UserError marks a failure the operator can fix themselves (wrong
// passphrase, duplicate name, unknown type). The CLI prints these without
// a stack trace and exits softly.
type UserError struct {
	cause error
}

func (e *UserError) Error() string {
	return e.cause.Error()
}

func (e *UserError) Unwrap() error {
	return e.cause
}

// NewUserError creates an expected, operator-fixable error.
func NewUserError(format string, args ...interface{}) error {
	return &UserError{cause: fmt.Errorf(format, args...)}
}

// MarkUserError wraps an existing error as expected. Returns nil for nil.
func MarkUserError(err error) error {
	if err == nil {
		return nil
	}
	return &UserError{cause: err}
}

// IsExpectedUserError checks whether the error is marked as expected.
func IsExpectedUserError(err error) bool {
	var e *UserError
	return errors.As(err, &e)
}

// ExitCode maps an error to a process exit code: 0 for nil, 2 for
// operator-fixable errors, 1 otherwise.
func ExitCode(err error) int {
	switch {
	case err == nil:
		return 0
	case IsExpectedUserError(err):
		return 2
	default:
		return 1
	}
}
