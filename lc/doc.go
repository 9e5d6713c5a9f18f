/*
Package lc computes list comprehensions: the lazily filtered and lazily
transformed Cartesian product of a fixed number of sequences.

A comprehension is built from its sources, narrowed with predicates and
optionally mapped with a transform:

	c := lc.From2(xs, ys).Where(lc.Pred2(func(x, y int) bool { return x < y }))
	sums := lc.Select(c, lc.Func2(func(x, y int) int { return x + y }))
	out, _ := sums.Evaluate()

# Enumeration order

Candidates are visited in odometer order: the last source varies fastest and
overflow carries into the source on its left. Every combination is visited
exactly once and advancing costs O(N) for N sources. If any source is empty
the product is empty.

# Filtering and transforming

Predicates run in the order they were attached and the first false (or
error) rejects the candidate without running the rest. The transform runs
only for accepted candidates: eagerly in [Comprehension.Evaluate], and only
when [Iterator.Value] is called for an [Iterator].

# Arity

[From1] through [From4] give statically typed tuples ([Tuple2] and so on)
and [Pred2]/[Func2] style adapters accept plain N-ary functions. [FromSlices]
accepts any number of sequences of one element type and passes each
candidate as a slice.

# Iterators and mutation

[Comprehension.Iter] snapshots the predicates and transform, so attaching
more predicates later does not change iterators that already exist. The
sequences themselves are copied at construction and never change.

Nothing in this package is safe for concurrent mutation; concurrent
read-only use of a comprehension through separate iterators is fine as long
as the predicates and transform are themselves safe to call concurrently.
*/
package lc
