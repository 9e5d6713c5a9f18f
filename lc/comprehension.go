package lc

import (
	"iter"
	"slices"
)

// Predicate is a fallible test over a candidate tuple.
type Predicate[T any] func(T) (bool, error)

// Transform is a fallible mapping from an accepted tuple to an output value.
type Transform[T, R any] func(T) (R, error)

// rules is the filter list and transform of a comprehension. Iterators hold
// a copy of it; the predicate slice is only ever appended to, so a copied
// header keeps seeing exactly the predicates that existed when it was taken.
type rules[T, R any] struct {
	filters   []Predicate[T]
	transform Transform[T, R]
}

// accept runs the filters in attachment order and stops at the first
// rejection or error.
func (r rules[T, R]) accept(t T) (bool, error) {
	for _, f := range r.filters {
		ok, err := f(t)
		if err != nil {
			return false, err
		}
		if !ok {
			return false, nil
		}
	}
	return true, nil
}

// Comprehension is the lazily filtered and transformed Cartesian product of
// the sequences in its Store.
//
// A Comprehension is not safe for concurrent mutation. Iterators take a
// snapshot of the predicates and transform when they are created, so calls
// to Where or Map afterwards only affect iterators created later.
type Comprehension[T, R any] struct {
	store *Store[T]
	rules rules[T, R]
}

// newComprehension returns a comprehension with no predicates.
func newComprehension[T, R any](store *Store[T], transform func(T) (R, error)) *Comprehension[T, R] {
	return &Comprehension[T, R]{
		store: store,
		rules: rules[T, R]{transform: transform},
	}
}

// identity is the default transform: the candidate tuple itself.
func identity[T any](t T) (T, error) {
	return t, nil
}

// Store returns the sequences the comprehension enumerates.
func (c *Comprehension[T, R]) Store() *Store[T] {
	return c.store
}

// Predicates returns the number of attached predicates.
func (c *Comprehension[T, R]) Predicates() int {
	return len(c.rules.filters)
}

// Where appends predicates. A candidate is accepted only when every
// predicate returns true; predicates run in the order they were attached and
// evaluation of a candidate stops at the first false.
func (c *Comprehension[T, R]) Where(preds ...func(T) bool) *Comprehension[T, R] {
	for _, p := range preds {
		c.rules.filters = append(c.rules.filters, func(t T) (bool, error) {
			return p(t), nil
		})
	}
	return c
}

// TryWhere appends predicates that may fail. The first error aborts the
// evaluation that triggered it.
func (c *Comprehension[T, R]) TryWhere(preds ...Predicate[T]) *Comprehension[T, R] {
	c.rules.filters = append(c.rules.filters, preds...)
	return c
}

// Map replaces the transform with one of the same output type.
func (c *Comprehension[T, R]) Map(fn func(T) R) *Comprehension[T, R] {
	c.rules.transform = func(t T) (R, error) {
		return fn(t), nil
	}
	return c
}

// Select returns a comprehension over the same store and predicates whose
// results are produced by fn. c itself is left unchanged.
func Select[T, R, S any](c *Comprehension[T, R], fn func(T) S) *Comprehension[T, S] {
	return TrySelect(c, func(t T) (S, error) {
		return fn(t), nil
	})
}

// TrySelect is Select with a transform that may fail.
func TrySelect[T, R, S any](c *Comprehension[T, R], fn func(T) (S, error)) *Comprehension[T, S] {
	return &Comprehension[T, S]{
		store: c.store,
		rules: rules[T, S]{
			filters:   slices.Clone(c.rules.filters),
			transform: fn,
		},
	}
}

// Evaluate materializes every result in odometer order.
//
// The transform runs only for accepted candidates. Evaluate does not modify
// the comprehension and may be called any number of times. If a fallible
// predicate or transform fails, Evaluate returns that error and no results.
func (c *Comprehension[T, R]) Evaluate() ([]R, error) {
	var results []R
	for r, err := range c.All() {
		if err != nil {
			return nil, err
		}
		results = append(results, r)
	}
	return results, nil
}

// All yields the results in odometer order. When a fallible callable fails
// the error is yielded with a zero result and iteration stops.
func (c *Comprehension[T, R]) All() iter.Seq2[R, error] {
	rs := c.rules
	return func(yield func(R, error) bool) {
		odo := c.store.Odometer()
		p := odo.Begin()
		for !odo.IsEnd(p) {
			t := c.store.Tuple(p)
			ok, err := rs.accept(t)
			if err != nil {
				var zero R
				yield(zero, err)
				return
			}
			if ok {
				r, err := rs.transform(t)
				if err != nil {
					yield(r, err)
					return
				}
				if !yield(r, nil) {
					return
				}
			}
			odo.Next(p)
		}
	}
}

// Values yields the results of a comprehension whose callables cannot fail.
// It panics if a fallible callable returns an error.
func (c *Comprehension[T, R]) Values() iter.Seq[R] {
	return func(yield func(R) bool) {
		for r, err := range c.All() {
			if err != nil {
				panic(err)
			}
			if !yield(r) {
				return
			}
		}
	}
}

// Count returns the number of accepted candidates without running the
// transform.
func (c *Comprehension[T, R]) Count() (int, error) {
	odo := c.store.Odometer()
	n := 0
	for p := odo.Begin(); !odo.IsEnd(p); odo.Next(p) {
		ok, err := c.rules.accept(c.store.Tuple(p))
		if err != nil {
			return 0, err
		}
		if ok {
			n++
		}
	}
	return n, nil
}

// Iter returns a lazy iterator positioned at the first result.
// It does not copy the sequences.
func (c *Comprehension[T, R]) Iter() *Iterator[T, R] {
	return newIterator(c.store, c.rules)
}
