package lc

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIterator_AgreesWithEvaluate(t *testing.T) {
	tests := []struct {
		name string
		c    *Comprehension[Tuple2[int, int], Tuple2[int, int]]
	}{
		{
			name: "no_predicates",
			c:    From2(ints(0, 3), ints(0, 2)),
		},
		{
			name: "first_candidate_rejected",
			c:    From2(ints(0, 3), ints(0, 3)).Where(Pred2(func(x, y int) bool { return x+y > 2 })),
		},
		{
			name: "only_last_candidate_accepted",
			c:    From2(ints(0, 3), ints(0, 3)).Where(Pred2(func(x, y int) bool { return x == 3 && y == 3 })),
		},
		{
			name: "nothing_accepted",
			c:    From2(ints(0, 3), ints(0, 3)).Where(Pred2(func(int, int) bool { return false })),
		},
		{
			name: "empty_outer_dimension",
			c:    From2([]int{}, ints(0, 3)),
		},
		{
			name: "empty_inner_dimension",
			c:    From2(ints(0, 3), []int{}),
		},
		{
			name: "single_candidate",
			c:    From2([]int{4}, []int{2}),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			want, err := tt.c.Evaluate()
			require.NoError(t, err)

			got := drain(t, tt.c)
			assert.Equal(t, want, got)
		})
	}
}

func TestIterator_ValueIsCachedUntilAdvance(t *testing.T) {
	calls := 0
	c := Select(From1(ints(1, 3)), Func1(func(x int) int { calls++; return x * 10 }))

	it := c.Iter()
	assert.Zero(t, calls, "construction must not transform")

	assert.Equal(t, 10, it.Value())
	assert.Equal(t, 10, it.Value())
	assert.Equal(t, 1, calls)

	it.Next()
	assert.Equal(t, 1, calls, "advancing must not transform")
	assert.Equal(t, 20, it.Value())
	assert.Equal(t, 2, calls)
}

func TestIterator_AdvanceSkipsAcceptedResults(t *testing.T) {
	c := From1(ints(1, 20)).Where(Pred1(func(x int) bool { return x%3 == 0 }))

	it := c.Iter()
	it.Advance(2)
	require.True(t, it.Valid())
	assert.Equal(t, 9, it.Value().V1)

	it.Advance(100)
	assert.False(t, it.Valid())
	it.Advance(1)
	assert.False(t, it.Valid(), "advancing past end is a no-op")
}

func TestIterator_NextAtEndIsNoop(t *testing.T) {
	c := From1([]int{1})
	it := c.Iter()
	it.Next()
	require.False(t, it.Valid())

	it.Next()
	it.Next()
	assert.True(t, it.Position().Equal(it.End()))
	assert.False(t, it.Position().Equal(it.Begin()))
}

func TestIterator_ValueAtEndPanics(t *testing.T) {
	it := From1([]int{}).Iter()

	assert.PanicsWithValue(t, "lc: Value called on exhausted iterator", func() {
		it.Value()
	})
}

func TestIterator_IndependentCursors(t *testing.T) {
	c := From2(ints(1, 3), ints(1, 3)).Where(Pred2(func(x, y int) bool { return x != y }))

	a := c.Iter()
	b := c.Iter()
	require.True(t, a.Equal(b))

	a.Next()
	a.Next()
	assert.False(t, a.Equal(b))
	assert.Equal(t, Tuple2[int, int]{1, 2}, b.Value())
	assert.Equal(t, Tuple2[int, int]{2, 1}, a.Value())

	b.Next()
	b.Next()
	assert.True(t, a.Equal(b))
}

func TestIterator_CloneIsIndependent(t *testing.T) {
	c := From1(ints(1, 5))
	it := c.Iter()
	it.Next()

	cp := it.Clone()
	cp.Next()

	assert.Equal(t, 2, it.Value().V1)
	assert.Equal(t, 3, cp.Value().V1)
}

func TestIterator_SnapshotsRules(t *testing.T) {
	c := From1(ints(1, 6))
	before := c.Iter()

	c.Where(Pred1(func(x int) bool { return x > 4 }))
	c.Map(func(t Tuple1[int]) Tuple1[int] { return Tuple1[int]{t.V1 * 100} })
	after := c.Iter()

	assert.Equal(t, []int{1, 2, 3, 4, 5, 6}, values(before))
	assert.Equal(t, []int{500, 600}, values(after))
}

func values(it *Iterator[Tuple1[int], Tuple1[int]]) []int {
	var out []int
	for ; it.Valid(); it.Next() {
		out = append(out, it.Value().V1)
	}
	return out
}
