package domain

import (
	"errors"
	"fmt"
)

// Sentinel errors for course validation failures.
var (
	ErrInvalidCourse  = errors.New("invalid course")
	ErrInvalidSubject = errors.New("subject must be 2-6 uppercase letters")
	ErrInvalidNumber  = errors.New("number must be digits with an optional letter, or an XX wildcard")
	ErrInvalidTitle   = errors.New("invalid title")
	ErrInvalidUnits   = errors.New("units out of range")
	ErrInvalidGrade   = errors.New("unknown grade")
	ErrInvalidSource  = errors.New("unknown source")
)

// ValidationError wraps a field sentinel with context. It matches both the
// field sentinel and ErrInvalidCourse under errors.Is.
type ValidationError struct {
	Field   string
	Value   string
	Wrapped error
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation: %s: %s (value=%q)", e.Wrapped, e.Field, e.Value)
}

func (e *ValidationError) Unwrap() []error { return []error{e.Wrapped, ErrInvalidCourse} }

// NewValidationError creates a ValidationError.
func NewValidationError(field, value string, wrapped error) *ValidationError {
	return &ValidationError{Field: field, Value: value, Wrapped: wrapped}
}
