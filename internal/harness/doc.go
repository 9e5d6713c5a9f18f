// Package harness checks query results against their expectations.
//
// A query file may carry an expect block:
//
//	expect:
//	  rows: [[3, 4, 5], [5, 12, 13]]   # exact, ordered
//	  count: 2                         # number of results
//	  contains: [[5, 12, 13]]          # subset, any order
//
// Run executes a query through the engine and evaluates every assertion,
// collecting all failures rather than stopping at the first.
//
// # Golden Files
//
// RunWithGolden snapshots the canonical JSON of a query's rows into
// testdata/golden/<name>.golden using goldie. Regenerate with:
//
//	go test ./... -update
package harness
