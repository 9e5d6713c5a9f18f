// Package query defines declarative comprehension queries and loads them
// from YAML or CUE files.
//
// A query names one or more sources (literal values, an integer range or a
// SQLite query), zero or more where expressions and an optional select
// expression. The sources become the dimensions of the candidate space in
// declaration order, so the last source varies fastest.
//
// Validation is a pure pass over the decoded struct and reports every
// problem it finds with a stable code (E101-E109). Expression syntax is not
// checked here; that happens when the query is compiled.
package query
