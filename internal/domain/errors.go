package domain

import (
	"errors"
	"fmt"
	"net/http"
)

// HTTPError defines errors that can be mapped to HTTP status codes.
type HTTPError interface {
	error
	StatusCode() int
}

// Sentinel errors - use with errors.Is()
var (
	ErrNotFound     = errors.New("not found")
	ErrValidation   = errors.New("validation failed")
	ErrUnauthorized = errors.New("unauthorized")
	ErrForbidden    = errors.New("forbidden")
	ErrGeneration   = errors.New("generation failed")
)

// ValidationError indicates invalid input with a message safe to show users
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string { return e.Message }

// StatusCode implements the HTTPError interface
func (e *ValidationError) StatusCode() int { return http.StatusBadRequest }

// Is allows errors.Is() to match against ErrValidation
func (e *ValidationError) Is(target error) bool { return target == ErrValidation }

// GenerationError wraps any failure of a call to the language model provider:
// network errors, provider errors, timeouts and unparseable output alike.
// Callers treat it as recoverable and user-visible.
type GenerationError struct {
	Op  string // which generation was attempted, e.g. "report"
	Err error
}

func (e *GenerationError) Error() string {
	return fmt.Sprintf("generate %s: %v", e.Op, e.Err)
}

func (e *GenerationError) Unwrap() error { return e.Err }

// StatusCode implements the HTTPError interface
func (e *GenerationError) StatusCode() int { return http.StatusInternalServerError }

// Is allows errors.Is() to match against ErrGeneration
func (e *GenerationError) Is(target error) bool { return target == ErrGeneration }

// NewGenerationError wraps err unless it already is a GenerationError
func NewGenerationError(op string, err error) error {
	if err == nil {
		return nil
	}
	var genErr *GenerationError
	if errors.As(err, &genErr) {
		return err
	}
	return &GenerationError{Op: op, Err: err}
}
