package domain

import (
	"errors"
	"fmt"
)

var (
	ErrLineNotFound         = errors.New("cart line not found")
	ErrConfirmationRequired = errors.New("removal must be confirmed")
)

// ValidationError reports user input that was rejected before any write.
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

func NewValidationError(field, message string) *ValidationError {
	return &ValidationError{Field: field, Message: message}
}

func IsValidationError(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}
