package query

import "strings"

// Query is a declarative comprehension over named sources.
type Query struct {
	// Name uniquely identifies the query. Golden files are keyed by it.
	Name string `yaml:"name" json:"name"`

	// Description explains what the query computes.
	Description string `yaml:"description,omitempty" json:"description,omitempty"`

	// From lists the sources in dimension order. The last source varies
	// fastest during enumeration.
	From []Source `yaml:"from" json:"from"`

	// Where holds boolean expressions that must all hold for a candidate
	// to be accepted. They are evaluated in order and short-circuit.
	Where []string `yaml:"where,omitempty" json:"where,omitempty"`

	// Select is the expression producing each result. When empty the
	// result is the list of all source variables.
	Select string `yaml:"select,omitempty" json:"select,omitempty"`

	// Limit stops enumeration after this many accepted results.
	// Zero means no limit.
	Limit int `yaml:"limit,omitempty" json:"limit,omitempty"`

	// Expect holds assertions checked by `lcq test`.
	Expect *Expect `yaml:"expect,omitempty" json:"expect,omitempty"`

	// Path is the file the query was loaded from, if any.
	Path string `yaml:"-" json:"-"`
}

// Source is one dimension of the candidate space. Exactly one of Values,
// Range and SQL must be set.
type Source struct {
	Name   string     `yaml:"name" json:"name"`
	Values []any      `yaml:"values,omitempty" json:"values,omitempty"`
	Range  *Range     `yaml:"range,omitempty" json:"range,omitempty"`
	SQL    *SQLSource `yaml:"sql,omitempty" json:"sql,omitempty"`
}

// Range is an arithmetic progression of integers. End is exclusive. An
// omitted Step means 1; a negative Step counts down from Start.
type Range struct {
	Start int64  `yaml:"start" json:"start"`
	End   int64  `yaml:"end" json:"end"`
	Step  *int64 `yaml:"step,omitempty" json:"step,omitempty"`
}

// StepOrDefault returns the configured step, or 1 when unset.
func (r Range) StepOrDefault() int64 {
	if r.Step == nil {
		return 1
	}
	return *r.Step
}

// SQLSource reads the first column of every row returned by Query against
// the SQLite database at DB.
type SQLSource struct {
	DB    string `yaml:"db" json:"db"`
	Query string `yaml:"query" json:"query"`
}

// Expect specifies the expected outcome of a query. Nil fields are not
// checked.
type Expect struct {
	// Rows is the exact ordered result.
	Rows []any `yaml:"rows,omitempty" json:"rows,omitempty"`

	// Count is the expected number of results.
	Count *int `yaml:"count,omitempty" json:"count,omitempty"`

	// Contains lists results that must appear, in any order.
	Contains []any `yaml:"contains,omitempty" json:"contains,omitempty"`
}

// Kind reports which of the three source forms s uses: "values", "range",
// "sql" or "" when none or several are set.
func (s Source) Kind() string {
	kind := ""
	n := 0
	if s.Values != nil {
		kind = "values"
		n++
	}
	if s.Range != nil {
		kind = "range"
		n++
	}
	if s.SQL != nil {
		kind = "sql"
		n++
	}
	if n != 1 {
		return ""
	}
	return kind
}

// Names returns the source names in dimension order.
func (q *Query) Names() []string {
	names := make([]string, len(q.From))
	for i, s := range q.From {
		names[i] = s.Name
	}
	return names
}

// SelectExpr returns the select expression, defaulting to a list of every
// source variable.
func (q *Query) SelectExpr() string {
	if strings.TrimSpace(q.Select) != "" {
		return q.Select
	}
	return "[" + strings.Join(q.Names(), ", ") + "]"
}
