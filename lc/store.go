package lc

// Store owns the source sequences of a comprehension and builds candidate
// tuples of type T from positions.
//
// The sequences are copied in at construction and never exposed for
// writing, so they stay immutable for as long as any engine or iterator
// refers to the store.
type Store[T any] struct {
	odo  Odometer
	load func(Position) T
}

// newStore wires a tuple loader to the lengths of the sequences it reads.
// A store without sequences is a programming error.
func newStore[T any](load func(Position) T, lengths ...int) *Store[T] {
	if len(lengths) == 0 {
		panic("lc: store needs at least one sequence")
	}
	return &Store[T]{
		odo:  NewOdometer(lengths...),
		load: load,
	}
}

// Dims returns the number of sequences.
func (s *Store[T]) Dims() int {
	return s.odo.Dims()
}

// Len returns the length of sequence dim.
func (s *Store[T]) Len(dim int) int {
	return s.odo.Bound(dim)
}

// Size returns the size of the full Cartesian product.
func (s *Store[T]) Size() int {
	return s.odo.Size()
}

// Odometer returns the cursor arithmetic over this store's bounds.
func (s *Store[T]) Odometer() Odometer {
	return s.odo
}

// Begin returns the first position of the product.
func (s *Store[T]) Begin() Position {
	return s.odo.Begin()
}

// End returns the end sentinel of the product.
func (s *Store[T]) End() Position {
	return s.odo.End()
}

// Tuple returns the candidate tuple at p. p must not be End.
func (s *Store[T]) Tuple(p Position) T {
	return s.load(p)
}
