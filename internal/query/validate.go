package query

import (
	"fmt"
	"regexp"
	"strings"
)

// Validation error codes (E101-E109)
const (
	ErrNameEmpty        = "E101" // name is required
	ErrNoSources        = "E102" // at least one source required
	ErrInvalidIdent     = "E103" // source name is not a usable identifier
	ErrDuplicateSource  = "E104" // duplicate source name
	ErrSourceKind       = "E105" // exactly one of values/range/sql
	ErrRangeStepZero    = "E106" // range step must be non-zero
	ErrEmptyWhere       = "E107" // where expression is blank
	ErrNegativeLimit    = "E108" // limit must be >= 0
	ErrSQLSourceMissing = "E109" // sql source needs db and query
)

// ValidationError represents a query validation error.
type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
	Code    string `json:"code"`
}

// Error implements the error interface.
func (e ValidationError) Error() string {
	return fmt.Sprintf("[%s] %s: %s", e.Code, e.Field, e.Message)
}

var identPattern = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// Names that parse as something other than a variable in expressions.
var reservedNames = map[string]bool{
	"true": true, "false": true, "null": true, "in": true,
	"as": true, "break": true, "const": true, "continue": true, "else": true,
	"for": true, "function": true, "if": true, "import": true, "let": true,
	"loop": true, "package": true, "namespace": true, "return": true,
	"var": true, "void": true, "while": true,
}

// Validate checks q against the structural rules.
// Returns all errors found (does not fail-fast).
func Validate(q *Query) []ValidationError {
	var errs []ValidationError

	// E101: name is required
	if strings.TrimSpace(q.Name) == "" {
		errs = append(errs, ValidationError{
			Field:   "name",
			Message: "name is required and must be non-empty",
			Code:    ErrNameEmpty,
		})
	}

	// E102: at least one source
	if len(q.From) == 0 {
		errs = append(errs, ValidationError{
			Field:   "from",
			Message: "at least one source is required",
			Code:    ErrNoSources,
		})
	}

	seen := make(map[string]bool)
	for i, src := range q.From {
		errs = append(errs, validateSource(i, src, seen)...)
	}

	for i, expr := range q.Where {
		if strings.TrimSpace(expr) == "" {
			errs = append(errs, ValidationError{
				Field:   fmt.Sprintf("where[%d]", i),
				Message: "where expression must be non-empty",
				Code:    ErrEmptyWhere,
			})
		}
	}

	if q.Limit < 0 {
		errs = append(errs, ValidationError{
			Field:   "limit",
			Message: fmt.Sprintf("limit must be non-negative, got %d", q.Limit),
			Code:    ErrNegativeLimit,
		})
	}

	return errs
}

func validateSource(i int, src Source, seen map[string]bool) []ValidationError {
	var errs []ValidationError
	field := fmt.Sprintf("from[%d]", i)

	switch {
	case !identPattern.MatchString(src.Name):
		errs = append(errs, ValidationError{
			Field:   field + ".name",
			Message: fmt.Sprintf("source name %q must be an identifier", src.Name),
			Code:    ErrInvalidIdent,
		})
	case reservedNames[src.Name]:
		errs = append(errs, ValidationError{
			Field:   field + ".name",
			Message: fmt.Sprintf("source name %q is reserved", src.Name),
			Code:    ErrInvalidIdent,
		})
	case seen[src.Name]:
		errs = append(errs, ValidationError{
			Field:   field + ".name",
			Message: fmt.Sprintf("duplicate source name: %q", src.Name),
			Code:    ErrDuplicateSource,
		})
	}
	seen[src.Name] = true

	switch src.Kind() {
	case "":
		errs = append(errs, ValidationError{
			Field:   field,
			Message: fmt.Sprintf("source %q must define exactly one of values, range or sql", src.Name),
			Code:    ErrSourceKind,
		})
	case "range":
		if src.Range.StepOrDefault() == 0 {
			errs = append(errs, ValidationError{
				Field:   field + ".range.step",
				Message: "range step must be non-zero",
				Code:    ErrRangeStepZero,
			})
		}
	case "sql":
		if strings.TrimSpace(src.SQL.DB) == "" || strings.TrimSpace(src.SQL.Query) == "" {
			errs = append(errs, ValidationError{
				Field:   field + ".sql",
				Message: "sql source requires both db and query",
				Code:    ErrSQLSourceMissing,
			})
		}
	}

	return errs
}
