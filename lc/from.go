package lc

import (
	"iter"
	"slices"
)

// From1 starts a comprehension over one sequence. The slice is copied.
func From1[A any](a []A) *Comprehension[Tuple1[A], Tuple1[A]] {
	a = slices.Clone(a)
	store := newStore(func(p Position) Tuple1[A] {
		return Tuple1[A]{a[p[0]]}
	}, len(a))
	return newComprehension(store, identity[Tuple1[A]])
}

// From2 starts a comprehension over the product of two sequences.
// The slices are copied.
func From2[A, B any](a []A, b []B) *Comprehension[Tuple2[A, B], Tuple2[A, B]] {
	a, b = slices.Clone(a), slices.Clone(b)
	store := newStore(func(p Position) Tuple2[A, B] {
		return Tuple2[A, B]{a[p[0]], b[p[1]]}
	}, len(a), len(b))
	return newComprehension(store, identity[Tuple2[A, B]])
}

// From3 starts a comprehension over the product of three sequences.
// The slices are copied.
func From3[A, B, C any](a []A, b []B, c []C) *Comprehension[Tuple3[A, B, C], Tuple3[A, B, C]] {
	a, b, c = slices.Clone(a), slices.Clone(b), slices.Clone(c)
	store := newStore(func(p Position) Tuple3[A, B, C] {
		return Tuple3[A, B, C]{a[p[0]], b[p[1]], c[p[2]]}
	}, len(a), len(b), len(c))
	return newComprehension(store, identity[Tuple3[A, B, C]])
}

// From4 starts a comprehension over the product of four sequences.
// The slices are copied.
func From4[A, B, C, D any](a []A, b []B, c []C, d []D) *Comprehension[Tuple4[A, B, C, D], Tuple4[A, B, C, D]] {
	a, b, c, d = slices.Clone(a), slices.Clone(b), slices.Clone(c), slices.Clone(d)
	store := newStore(func(p Position) Tuple4[A, B, C, D] {
		return Tuple4[A, B, C, D]{a[p[0]], b[p[1]], c[p[2]], d[p[3]]}
	}, len(a), len(b), len(c), len(d))
	return newComprehension(store, identity[Tuple4[A, B, C, D]])
}

// FromSeq1 collects a finite sequence and starts a comprehension over it.
func FromSeq1[A any](a iter.Seq[A]) *Comprehension[Tuple1[A], Tuple1[A]] {
	return From1(slices.Collect(a))
}

// FromSeq2 collects two finite sequences and starts a comprehension over
// their product.
func FromSeq2[A, B any](a iter.Seq[A], b iter.Seq[B]) *Comprehension[Tuple2[A, B], Tuple2[A, B]] {
	return From2(slices.Collect(a), slices.Collect(b))
}

// FromSeq3 collects three finite sequences and starts a comprehension over
// their product.
func FromSeq3[A, B, C any](a iter.Seq[A], b iter.Seq[B], c iter.Seq[C]) *Comprehension[Tuple3[A, B, C], Tuple3[A, B, C]] {
	return From3(slices.Collect(a), slices.Collect(b), slices.Collect(c))
}

// FromSeq4 collects four finite sequences and starts a comprehension over
// their product.
func FromSeq4[A, B, C, D any](a iter.Seq[A], b iter.Seq[B], c iter.Seq[C], d iter.Seq[D]) *Comprehension[Tuple4[A, B, C, D], Tuple4[A, B, C, D]] {
	return From4(slices.Collect(a), slices.Collect(b), slices.Collect(c), slices.Collect(d))
}

// FromSlices starts a comprehension over any number of sequences sharing an
// element type. The arity is fixed by the number of arguments and must be at
// least one; FromSlices panics otherwise.
//
// Each candidate is a freshly allocated slice with one element per
// sequence, so callables may keep it.
func FromSlices[E any](seqs ...[]E) *Comprehension[[]E, []E] {
	if len(seqs) == 0 {
		panic("lc: FromSlices needs at least one sequence")
	}
	owned := make([][]E, len(seqs))
	lengths := make([]int, len(seqs))
	for i, s := range seqs {
		owned[i] = slices.Clone(s)
		lengths[i] = len(s)
	}
	store := newStore(func(p Position) []E {
		t := make([]E, len(owned))
		for dim, idx := range p {
			t[dim] = owned[dim][idx]
		}
		return t
	}, lengths...)
	return newComprehension(store, identity[[]E])
}
