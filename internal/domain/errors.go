package domain

import (
	"errors"
	"fmt"
)

// ValidationError rejects bad input before any mutation is applied.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Reason)
}

func validationErr(field, reason string) error {
	return &ValidationError{Field: field, Reason: reason}
}

// IsValidation reports whether err is a ValidationError.
func IsValidation(err error) bool {
	var v *ValidationError
	return errors.As(err, &v)
}

// InvariantError rejects a command that would violate aggregate state rules,
// e.g. mutating a deleted aggregate or reopening a completed todo.
type InvariantError struct {
	Msg string
}

func (e *InvariantError) Error() string { return e.Msg }

func invariantErr(msg string) error {
	return &InvariantError{Msg: msg}
}

// IsInvariant reports whether err is an InvariantError.
func IsInvariant(err error) bool {
	var v *InvariantError
	return errors.As(err, &v)
}
