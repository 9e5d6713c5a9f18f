// Package engine runs declarative comprehension queries.
//
// A run is a straight pipeline over a single goroutine:
//  1. Validate the query structure
//  2. Compile the where and select expressions
//  3. Materialize every source in declaration order
//  4. Enumerate candidates, eagerly or lazily up to the query limit
//
// Expressions are compiled before any source is loaded, so a query with a
// bad expression fails without touching its databases.
//
// LIMITS:
//
// Every candidate the enumeration visits counts against the engine's
// max-steps quota, accepted or not. The context is checked between lazy
// pulls and periodically during eager evaluation; cancelling it stops the
// run at the next check.
//
// Runs are identified by a UUIDv7 run ID and a per-engine sequence number
// from a logical clock. Both are injectable for deterministic tests.
//
// METRICS:
//
// Run counts by status, visited candidates, accepted rows and run duration
// are collected in Registry and can be dumped with WriteMetrics.
package engine
