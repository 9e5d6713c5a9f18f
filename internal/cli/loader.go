package cli

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/roach88/lcq/internal/compiler"
	"github.com/roach88/lcq/internal/query"
)

// Load error codes (E001-E007). Structural validation codes (E101-E109)
// come from the query package; ErrCodeCompile covers expressions.
const (
	ErrCodeGeneric     = "E001" // Generic/unknown error
	ErrCodeScanError   = "E002" // Directory scan error
	ErrCodeNoFiles     = "E003" // No query files found
	ErrCodeLoadFailed  = "E004" // Query file could not be decoded
	ErrCodeNotFound    = "E005" // Path not found
	ErrCodeUnsupported = "E006" // Unsupported file extension
	ErrCodeWriteFailed = "E007" // File write error

	ErrCodeCompile = "E110" // where/select expression does not compile
)

// LoadError represents an error that occurred while loading a query file.
type LoadError struct {
	Code    string
	Message string
	Path    string
}

func (e *LoadError) Error() string {
	if e.Path != "" {
		return fmt.Sprintf("%s: %s: %s", e.Path, e.Code, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// LoadQuery reads a single query file. The query is decoded but not
// validated.
func LoadQuery(path string) (*query.Query, error) {
	info, err := os.Stat(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, &LoadError{Code: ErrCodeNotFound, Message: "query file not found", Path: path}
	}
	if err != nil {
		return nil, &LoadError{Code: ErrCodeNotFound, Message: fmt.Sprintf("error accessing query file: %v", err), Path: path}
	}
	if info.IsDir() {
		return nil, &LoadError{Code: ErrCodeNotFound, Message: "expected a file, got a directory", Path: path}
	}
	if _, ok := query.FormatOf(path); !ok {
		return nil, &LoadError{Code: ErrCodeUnsupported, Message: "unsupported extension (want .yaml, .yml or .cue)", Path: path}
	}

	q, err := query.Load(path)
	if err != nil {
		return nil, &LoadError{Code: ErrCodeLoadFailed, Message: err.Error(), Path: path}
	}
	return q, nil
}

// FindQueryFiles lists query files under dir matching filter.
func FindQueryFiles(dir, filter string) ([]string, error) {
	info, err := os.Stat(dir)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, &LoadError{Code: ErrCodeNotFound, Message: fmt.Sprintf("queries directory not found: %s", dir)}
	}
	if err != nil {
		return nil, &LoadError{Code: ErrCodeNotFound, Message: fmt.Sprintf("error accessing queries directory: %v", err)}
	}
	if !info.IsDir() {
		return nil, &LoadError{Code: ErrCodeNotFound, Message: fmt.Sprintf("not a directory: %s", dir)}
	}

	files, err := query.FindFiles(dir, filter)
	if err != nil {
		return nil, &LoadError{Code: ErrCodeScanError, Message: fmt.Sprintf("error scanning directory: %v", err)}
	}
	return files, nil
}

// CheckQuery runs structural validation and, when that passes, compiles
// the expressions. It never touches sources.
func CheckQuery(q *query.Query) []query.ValidationError {
	if errs := query.Validate(q); len(errs) > 0 {
		return errs
	}
	if _, err := compiler.CompileExpressions(q); err != nil {
		field := "expression"
		var cerr *compiler.CompileError
		if errors.As(err, &cerr) {
			field = cerr.Field
		}
		return []query.ValidationError{{
			Field:   field,
			Message: err.Error(),
			Code:    ErrCodeCompile,
		}}
	}
	return nil
}
