package lc

// Iterator is a cursor over the results of a Comprehension.
//
// Filtering happens when the iterator moves; the transform runs only when
// Value is called and its result is cached until the next move. An Iterator
// owns its position and cache, so independent iterators over one
// comprehension do not interfere.
type Iterator[T, R any] struct {
	store *Store[T]
	rules rules[T, R]

	pos   Position
	begin Position
	end   Position

	value R
	dirty bool
	err   error
}

// newIterator positions a fresh iterator at the first accepted candidate,
// or at end if there is none.
func newIterator[T, R any](store *Store[T], rs rules[T, R]) *Iterator[T, R] {
	it := &Iterator[T, R]{
		store: store,
		rules: rs,
		pos:   store.Begin(),
		begin: store.Begin(),
		end:   store.End(),
		dirty: true,
	}
	if it.atEnd() {
		return it
	}
	ok, err := it.rules.accept(store.Tuple(it.pos))
	switch {
	case err != nil:
		it.fail(err)
	case !ok:
		it.step()
	}
	return it
}

func (it *Iterator[T, R]) atEnd() bool {
	return it.store.Odometer().IsEnd(it.pos)
}

// fail records err and parks the iterator at end.
func (it *Iterator[T, R]) fail(err error) {
	it.err = err
	copy(it.pos, it.end)
	it.dirty = true
}

// step moves to the next accepted candidate.
func (it *Iterator[T, R]) step() {
	odo := it.store.Odometer()
	for odo.Next(it.pos) {
		it.dirty = true
		ok, err := it.rules.accept(it.store.Tuple(it.pos))
		if err != nil {
			it.fail(err)
			return
		}
		if ok {
			return
		}
	}
	it.dirty = true
}

// Valid reports whether the iterator refers to a result.
func (it *Iterator[T, R]) Valid() bool {
	return it.err == nil && !it.atEnd()
}

// Next advances to the next result. At end it does nothing.
func (it *Iterator[T, R]) Next() {
	if !it.Valid() {
		return
	}
	it.step()
}

// Advance skips n results, stopping early at end.
func (it *Iterator[T, R]) Advance(n int) {
	for ; n > 0 && it.Valid(); n-- {
		it.step()
	}
}

// Value returns the transformed result at the current position, computing
// it on first use. Calling Value on an exhausted iterator panics.
//
// If the transform fails the error is available from Err and the zero value
// is returned.
func (it *Iterator[T, R]) Value() R {
	if it.atEnd() {
		panic("lc: Value called on exhausted iterator")
	}
	if it.dirty {
		v, err := it.rules.transform(it.store.Tuple(it.pos))
		if err != nil {
			it.err = err
			var zero R
			return zero
		}
		it.value = v
		it.dirty = false
	}
	return it.value
}

// Err returns the first error raised by a fallible predicate or transform.
func (it *Iterator[T, R]) Err() error {
	return it.err
}

// Position returns a copy of the current position.
func (it *Iterator[T, R]) Position() Position {
	return it.pos.Clone()
}

// Begin returns the first position of the underlying product.
func (it *Iterator[T, R]) Begin() Position {
	return it.begin.Clone()
}

// End returns the end sentinel of the underlying product.
func (it *Iterator[T, R]) End() Position {
	return it.end.Clone()
}

// Equal reports whether two iterators of the same comprehension are at the
// same position. Iterators of different comprehensions must not be compared.
func (it *Iterator[T, R]) Equal(other *Iterator[T, R]) bool {
	return it.pos.Equal(other.pos)
}

// Clone returns an independent iterator at the same position.
func (it *Iterator[T, R]) Clone() *Iterator[T, R] {
	cp := *it
	cp.pos = it.pos.Clone()
	return &cp
}
