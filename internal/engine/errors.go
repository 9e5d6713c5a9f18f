package engine

import (
	"errors"
	"fmt"
)

// RuntimeError represents an error detected while running a query.
//
// Runtime errors include:
//   - Invalid query: Structural validation failed
//   - Source failure: A source could not be materialized
//   - Compile failure: A where or select expression did not compile
//   - Evaluation failure: An expression failed for some candidate
//   - Quota exceeded: The run visited more candidates than allowed
//   - Cancellation: The context was done before the run finished
//
// RuntimeError includes structured fields for diagnostics.
type RuntimeError struct {
	// Code identifies the error category.
	Code RuntimeErrorCode

	// Message is a human-readable description.
	Message string

	// Query is the name of the affected query.
	Query string

	// RunID identifies the run.
	RunID string

	// Details contains additional context.
	Details map[string]string

	// Cause is the underlying error, if any.
	Cause error
}

// RuntimeErrorCode categorizes runtime errors.
type RuntimeErrorCode string

const (
	// ErrCodeInvalidQuery indicates the query failed validation.
	ErrCodeInvalidQuery RuntimeErrorCode = "INVALID_QUERY"

	// ErrCodeSourceFailed indicates a source could not be loaded.
	ErrCodeSourceFailed RuntimeErrorCode = "SOURCE_FAILED"

	// ErrCodeCompileFailed indicates an expression did not compile.
	ErrCodeCompileFailed RuntimeErrorCode = "COMPILE_FAILED"

	// ErrCodeEvalFailed indicates an expression failed at run time.
	ErrCodeEvalFailed RuntimeErrorCode = "EVAL_FAILED"

	// ErrCodeQuotaExceeded indicates the run exceeded max steps.
	ErrCodeQuotaExceeded RuntimeErrorCode = "QUOTA_EXCEEDED"

	// ErrCodeCanceled indicates the context ended the run.
	ErrCodeCanceled RuntimeErrorCode = "CANCELED"
)

// Error implements the error interface.
func (e *RuntimeError) Error() string {
	msg := e.Message
	if e.Cause != nil {
		msg = fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	if e.Query != "" {
		return fmt.Sprintf("%s: %s (query=%s)", e.Code, msg, e.Query)
	}
	return fmt.Sprintf("%s: %s", e.Code, msg)
}

func (e *RuntimeError) Unwrap() error {
	return e.Cause
}

// IsQuotaError returns true if the error is a quota exceeded error.
// Matches both RuntimeError with ErrCodeQuotaExceeded and StepsExceededError.
// Uses errors.As to handle wrapped errors.
func IsQuotaError(err error) bool {
	var re *RuntimeError
	if errors.As(err, &re) && re.Code == ErrCodeQuotaExceeded {
		return true
	}
	var se *StepsExceededError
	return errors.As(err, &se)
}

// CodeOf returns the RuntimeErrorCode of err, or "" when err is not a
// RuntimeError.
func CodeOf(err error) RuntimeErrorCode {
	var re *RuntimeError
	if errors.As(err, &re) {
		return re.Code
	}
	return ""
}

func newRuntimeError(code RuntimeErrorCode, query, runID, message string, cause error) *RuntimeError {
	return &RuntimeError{
		Code:    code,
		Message: message,
		Query:   query,
		RunID:   runID,
		Cause:   cause,
	}
}

// NewQuotaError creates a RuntimeError for quota exceeded.
func NewQuotaError(query, runID string, se *StepsExceededError) *RuntimeError {
	return &RuntimeError{
		Code:    ErrCodeQuotaExceeded,
		Message: fmt.Sprintf("run exceeded max steps (%d > %d)", se.Steps, se.Limit),
		Query:   query,
		RunID:   runID,
		Details: map[string]string{
			"steps":     fmt.Sprintf("%d", se.Steps),
			"max_steps": fmt.Sprintf("%d", se.Limit),
		},
		Cause: se,
	}
}
