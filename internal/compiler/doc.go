// Package compiler turns a declarative query into a runnable comprehension.
//
// Where and select expressions are written in CEL. Every source name is
// declared as a dynamically typed variable, so expressions can mix ints,
// floats, strings and lists the way the source data does. Where
// expressions must produce a bool; a statically non-bool where expression
// is rejected at compile time and a dynamic one is checked per candidate.
//
// Compilation happens once per query. The resulting comprehension is a
// lc.Comprehension over []value.Value candidates built with
// lc.FromSlices, so enumeration order, laziness and short-circuiting are
// exactly those of the lc package.
package compiler
