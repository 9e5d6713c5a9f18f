package lc

import "slices"

// Position is one index per dimension of a product set.
//
// Positions are ordered lexicographically with the last dimension varying
// fastest. The end sentinel of an odometer has dimension 0 set to its
// length and every other dimension at 0, so it sorts after every valid
// position.
type Position []int

// Equal reports whether p and other address the same combination.
func (p Position) Equal(other Position) bool {
	return slices.Equal(p, other)
}

// Clone returns an independent copy of p.
func (p Position) Clone() Position {
	return slices.Clone(p)
}

// Compare orders two positions of the same odometer.
// It returns -1, 0 or +1 like cmp.Compare.
func Compare(a, b Position) int {
	return slices.Compare(a, b)
}

// Odometer enumerates the positions of an N-dimensional product in
// lexicographic order: the rightmost dimension is incremented first and
// overflow carries into the dimension on its left.
//
// An Odometer holds only the bounds; the moving part is the Position passed
// to Next, so any number of cursors can share one Odometer.
type Odometer struct {
	bounds []int
	empty  bool
}

// NewOdometer returns an odometer over dimensions of the given lengths.
// Negative lengths are treated as zero.
func NewOdometer(lengths ...int) Odometer {
	bounds := make([]int, len(lengths))
	empty := len(lengths) == 0
	for i, n := range lengths {
		if n <= 0 {
			n = 0
			empty = true
		}
		bounds[i] = n
	}
	return Odometer{bounds: bounds, empty: empty}
}

// Dims returns the number of dimensions.
func (o Odometer) Dims() int {
	return len(o.bounds)
}

// Bound returns the length of dimension dim.
func (o Odometer) Bound(dim int) int {
	return o.bounds[dim]
}

// Size returns the number of positions the odometer visits.
func (o Odometer) Size() int {
	if o.empty {
		return 0
	}
	size := 1
	for _, n := range o.bounds {
		size *= n
	}
	return size
}

// Begin returns the first position. When the product is empty Begin equals
// End, so a cursor created from it is immediately exhausted.
func (o Odometer) Begin() Position {
	if o.empty {
		return o.End()
	}
	return make(Position, len(o.bounds))
}

// End returns the one-past-the-last sentinel.
func (o Odometer) End() Position {
	end := make(Position, len(o.bounds))
	if len(end) > 0 {
		end[0] = o.bounds[0]
	}
	return end
}

// IsEnd reports whether p is the end sentinel (or has run past it).
func (o Odometer) IsEnd(p Position) bool {
	if o.empty || len(p) == 0 {
		return true
	}
	return p[0] >= o.bounds[0]
}

// Next advances p in place to the lexicographically next position.
//
// It returns false once the product is exhausted, leaving p at End. Calling
// Next on an exhausted position is a no-op that keeps returning false.
// Each call does O(N) work in the worst case.
func (o Odometer) Next(p Position) bool {
	if o.IsEnd(p) {
		o.reset(p)
		return false
	}
	for dim := len(p) - 1; dim >= 0; dim-- {
		p[dim]++
		if p[dim] < o.bounds[dim] {
			return true
		}
		if dim == 0 {
			break
		}
		p[dim] = 0
	}
	o.reset(p)
	return false
}

// reset moves p onto the end sentinel.
func (o Odometer) reset(p Position) {
	for i := range p {
		p[i] = 0
	}
	if len(p) > 0 {
		p[0] = o.bounds[0]
	}
}

// Rank returns the zero-based visitation index of p, or Size() for End.
func (o Odometer) Rank(p Position) int {
	if o.IsEnd(p) {
		return o.Size()
	}
	rank := 0
	for dim, idx := range p {
		rank = rank*o.bounds[dim] + idx
	}
	return rank
}

// Unrank is the inverse of Rank. Ranks outside [0, Size()) yield End.
func (o Odometer) Unrank(rank int) Position {
	if rank < 0 || rank >= o.Size() {
		return o.End()
	}
	p := make(Position, len(o.bounds))
	for dim := len(o.bounds) - 1; dim >= 0; dim-- {
		p[dim] = rank % o.bounds[dim]
		rank /= o.bounds[dim]
	}
	return p
}
