// Package value defines the dynamic values that flow through declarative
// comprehension queries.
//
// Source elements loaded from YAML, CUE or SQLite, the candidate tuples
// handed to expressions, and the results they produce are all Values. The
// set of types is deliberately small (null, int, float, string, bool, list)
// so results can be compared structurally and encoded deterministically
// for golden files.
//
// ENCODING:
//
// MarshalCanonical is the single JSON encoding used for output and
// snapshots. Strings are NFC normalized at the serialization boundary so
// that visually identical inputs produce byte-identical output.
package value
