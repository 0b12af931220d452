package apperrors

import "errors"

var (
	ErrNotFound           = errors.New("not found")
	ErrServiceUnavailable = errors.New("AI service unavailable")
	ErrEmptyQuestion      = errors.New("question is required")
	ErrExecutionFailed    = errors.New("report query execution failed")
)
