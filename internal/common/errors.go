package common

import (
	"errors"
	"fmt"
)

// AppError represents application-specific errors
type AppError struct {
	Code    string
	Message string
	Cause   error
}

func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *AppError) Unwrap() error {
	return e.Cause
}

// Error codes surfaced by the core.
const (
	CodeConfig           = "CONFIG_ERROR"
	CodeExtractionFailed = "EXTRACTION_FAILED"
	CodeRenderFailed     = "RENDER_FAILED"
	CodeStoreFailed      = "STORE_FAILED"
)

// Common application errors
var (
	ErrNotFound     = errors.New("resource not found")
	ErrInvalidInput = errors.New("invalid input")
	ErrInternal     = errors.New("internal error")
	ErrDatabase     = errors.New("database error")
	ErrValidation   = errors.New("validation failed")
	ErrNoInput      = errors.New("no input provided")
	ErrUpstream     = errors.New("upstream service error")
)

// Error constructors
func NewAppError(code, message string, cause error) *AppError {
	return &AppError{
		Code:    code,
		Message: message,
		Cause:   cause,
	}
}

func ExtractionFailed(cause error) *AppError {
	return NewAppError(CodeExtractionFailed, "could not extract order", cause)
}

func RenderFailed(cause error) *AppError {
	return NewAppError(CodeRenderFailed, "invoice generation failed", cause)
}

func StoreFailed(op string, cause error) *AppError {
	return NewAppError(CodeStoreFailed, op, cause)
}

// HasCode reports whether err wraps an *AppError with the given code.
func HasCode(err error, code string) bool {
	var ae *AppError
	return errors.As(err, &ae) && ae.Code == code
}

func WrapError(err error, message string) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", message, err)
}
