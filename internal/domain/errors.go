package domain

import (
	"errors"
	"fmt"
)

// ErrNotFound is returned when a requested portfolio does not exist
var ErrNotFound = errors.New("not found")

// ValidationError reports a malformed or invalid input field
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Message
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// NewValidationError builds a ValidationError
func NewValidationError(field, message string) *ValidationError {
	return &ValidationError{Field: field, Message: message}
}
