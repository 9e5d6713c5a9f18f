package harness

import (
	"fmt"
	"strings"

	"github.com/roach88/lcq/internal/query"
	"github.com/roach88/lcq/internal/value"
)

// Assertion type names.
const (
	AssertRows     = "rows"
	AssertCount    = "count"
	AssertContains = "contains"
)

// AssertionError is returned when an assertion fails.
type AssertionError struct {
	Type     string // Assertion type for categorization
	Expected string // Human-readable expected outcome
	Actual   string // Human-readable actual outcome
}

// Error implements the error interface.
func (e *AssertionError) Error() string {
	var buf strings.Builder
	fmt.Fprintf(&buf, "Assertion failed: %s\n", e.Type)
	fmt.Fprintf(&buf, "  Expected: %s\n", e.Expected)
	fmt.Fprintf(&buf, "  Actual: %s", e.Actual)
	return buf.String()
}

// Check evaluates every assertion in exp against rows and returns the
// failure messages. A nil exp always passes.
func Check(rows []value.Value, exp *query.Expect) []string {
	if exp == nil {
		return nil
	}

	var errs []string
	add := func(err error) {
		if err != nil {
			errs = append(errs, err.Error())
		}
	}

	if exp.Rows != nil {
		add(assertRows(rows, exp.Rows))
	}
	if exp.Count != nil {
		add(assertCount(rows, *exp.Count))
	}
	if exp.Contains != nil {
		add(assertContains(rows, exp.Contains))
	}
	return errs
}

// assertRows checks rows equal expected exactly, in order.
func assertRows(rows []value.Value, expected []any) error {
	want, err := value.FromNatives(expected)
	if err != nil {
		return &AssertionError{Type: AssertRows, Expected: "valid rows", Actual: err.Error()}
	}

	for i := range min(len(want), len(rows)) {
		if !value.Equal(want[i], rows[i]) {
			return &AssertionError{
				Type:     AssertRows,
				Expected: fmt.Sprintf("row %d = %s", i, want[i]),
				Actual:   fmt.Sprintf("row %d = %s", i, rows[i]),
			}
		}
	}
	if len(want) != len(rows) {
		return &AssertionError{
			Type:     AssertRows,
			Expected: fmt.Sprintf("%d rows %s", len(want), value.List(want)),
			Actual:   fmt.Sprintf("%d rows %s", len(rows), value.List(rows)),
		}
	}
	return nil
}

// assertCount checks the number of results.
func assertCount(rows []value.Value, expected int) error {
	if len(rows) == expected {
		return nil
	}
	return &AssertionError{
		Type:     AssertCount,
		Expected: fmt.Sprintf("%d results", expected),
		Actual:   fmt.Sprintf("%d results", len(rows)),
	}
}

// assertContains checks that every expected value appears among rows.
// Order is ignored.
func assertContains(rows []value.Value, expected []any) error {
	want, err := value.FromNatives(expected)
	if err != nil {
		return &AssertionError{Type: AssertContains, Expected: "valid values", Actual: err.Error()}
	}

	var missing []string
	for _, w := range want {
		if !containsValue(rows, w) {
			missing = append(missing, w.String())
		}
	}
	if len(missing) == 0 {
		return nil
	}
	return &AssertionError{
		Type:     AssertContains,
		Expected: fmt.Sprintf("results containing %s", strings.Join(missing, ", ")),
		Actual:   "not found",
	}
}

func containsValue(rows []value.Value, v value.Value) bool {
	for _, r := range rows {
		if value.Equal(r, v) {
			return true
		}
	}
	return false
}
