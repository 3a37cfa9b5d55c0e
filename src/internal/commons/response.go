package commons

import (
	"errors"
	"fmt"
	"strings"
)

const MessageValidationFailed = "validation failed"

// ErrValidation marks request errors the caller can fix.
var ErrValidation = errors.New(MessageValidationFailed)

// NewValidationError wraps err so errors.Is(err, ErrValidation) holds.
func NewValidationError(err error) error {
	return fmt.Errorf("%w: %w", ErrValidation, err)
}

// Response is the JSON envelope for every API reply.
type Response[T any] struct {
	Success bool     `json:"success"`
	Message string   `json:"message"`
	Data    *T       `json:"data,omitempty"`
	Errors  []string `json:"errors,omitempty"`
}

func SuccessResponse[T any](message string, data T) Response[T] {
	return Response[T]{
		Success: true,
		Message: message,
		Data:    &data,
	}
}

func ErrorResponse[T any](message string, errors ...string) Response[T] {
	return Response[T]{
		Success: false,
		Message: message,
		Errors:  errors,
	}
}

// ValidationErrorResponse splits a "; "-joined validation error into one
// entry per problem.
func ValidationErrorResponse[T any](err error) Response[T] {
	if err == nil {
		return ErrorResponse[T](MessageValidationFailed)
	}

	parts := strings.Split(err.Error(), "; ")
	errs := make([]string, 0, len(parts))
	for _, part := range parts {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			errs = append(errs, trimmed)
		}
	}
	return ErrorResponse[T](MessageValidationFailed, errs...)
}
