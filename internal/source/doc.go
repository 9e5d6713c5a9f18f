// Package source materializes the dimensions of a query.
//
// Each query.Source becomes a slice of value.Value:
//   - values: literal elements, converted with value.FromNative
//   - range: an integer progression, end exclusive
//   - sql: the first column of every row of a SQLite query
//
// # Database Configuration
//
// SQL sources are opened read-only from the engine's point of view:
//   - busy_timeout=5000: Wait for writers up to 5 seconds
//   - query_only=ON: Reject statements that would modify the database
//
// Result order is whatever the query returns, so SQL sources that need a
// stable enumeration order should carry an ORDER BY.
package source
