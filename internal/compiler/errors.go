package compiler

import "fmt"

// CompileError reports an expression that failed to parse, type-check or
// plan.
type CompileError struct {
	Field string // "where[0]", "select"
	Expr  string
	Cause error
}

func (e *CompileError) Error() string {
	return fmt.Sprintf("failed to compile %s %q: %v", e.Field, e.Expr, e.Cause)
}

func (e *CompileError) Unwrap() error {
	return e.Cause
}

// EvaluationError reports an expression that failed for a particular
// candidate tuple.
type EvaluationError struct {
	Field string
	Expr  string
	Tuple string // display form of the candidate
	Cause error
}

func (e *EvaluationError) Error() string {
	return fmt.Sprintf("failed to evaluate %s %q for %s: %v", e.Field, e.Expr, e.Tuple, e.Cause)
}

func (e *EvaluationError) Unwrap() error {
	return e.Cause
}
