package lc

import (
	"errors"
	"slices"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func ints(from, to int) []int {
	var out []int
	if from <= to {
		for i := from; i <= to; i++ {
			out = append(out, i)
		}
		return out
	}
	for i := from; i >= to; i-- {
		out = append(out, i)
	}
	return out
}

// drain collects every result of a fresh iterator.
func drain[T, R any](t *testing.T, c *Comprehension[T, R]) []R {
	t.Helper()
	var out []R
	for it := c.Iter(); it.Valid(); it.Next() {
		out = append(out, it.Value())
	}
	return out
}

func TestEvaluate_FullProductInOdometerOrder(t *testing.T) {
	c := From3([]int{1, 2}, []string{"a", "b", "c"}, []bool{false, true})

	got, err := c.Evaluate()
	require.NoError(t, err)

	var want []Tuple3[int, string, bool]
	for _, a := range []int{1, 2} {
		for _, b := range []string{"a", "b", "c"} {
			for _, v := range []bool{false, true} {
				want = append(want, Tuple3[int, string, bool]{a, b, v})
			}
		}
	}
	assert.Equal(t, want, got)
	assert.Len(t, got, c.Store().Size())
}

func TestEvaluate_LessThanPairs(t *testing.T) {
	c := From2(ints(0, 9), ints(9, 0)).
		Where(Pred2(func(x, y int) bool { return x < y }))

	got, err := c.Evaluate()
	require.NoError(t, err)

	var want []Tuple2[int, int]
	for _, x := range ints(0, 9) {
		for _, y := range ints(9, 0) {
			if x < y {
				want = append(want, Tuple2[int, int]{x, y})
			}
		}
	}
	assert.Len(t, got, 45)
	assert.Equal(t, want, got)
	assert.Equal(t, Tuple2[int, int]{0, 9}, got[0])
	assert.Equal(t, Tuple2[int, int]{8, 9}, got[len(got)-1])
}

func TestEvaluate_PythagoreanTriples(t *testing.T) {
	r := ints(1, 20)
	c := From3(r, r, r).Where(
		Pred3(func(x, y, z int) bool { return x < y && y < z }),
		Pred3(func(x, y, z int) bool { return x*x+y*y == z*z }),
	)

	got, err := c.Evaluate()
	require.NoError(t, err)

	want := []Tuple3[int, int, int]{
		{3, 4, 5},
		{5, 12, 13},
		{6, 8, 10},
		{8, 15, 17},
		{9, 12, 15},
		{12, 16, 20},
	}
	assert.Equal(t, want, got)
}

func TestEvaluate_RejectEverything(t *testing.T) {
	c := From2(ints(0, 9), ints(0, 9)).
		Where(func(Tuple2[int, int]) bool { return false })

	got, err := c.Evaluate()
	require.NoError(t, err)
	assert.Empty(t, got)

	it := c.Iter()
	assert.False(t, it.Valid())
	assert.True(t, it.Position().Equal(it.End()))

	end := c.Iter()
	assert.True(t, it.Equal(end))
}

func TestSelect_ChangesOutputTypeNotAcceptedSet(t *testing.T) {
	base := From2(ints(0, 5), ints(0, 5)).
		Where(Pred2(func(x, y int) bool { return x == y }))

	tuples, err := base.Evaluate()
	require.NoError(t, err)

	sums := Select(base, Func2(func(x, y int) int { return x + y }))
	got, err := sums.Evaluate()
	require.NoError(t, err)

	require.Len(t, got, len(tuples))
	for i, tup := range tuples {
		assert.Equal(t, tup.V1+tup.V2, got[i])
	}
	assert.Equal(t, 1, sums.Predicates(), "predicates carry over")

	again, err := base.Evaluate()
	require.NoError(t, err)
	assert.Equal(t, tuples, again, "Select must leave the source comprehension unchanged")
}

func TestSelect_ThenWhereOnlyAffectsNewComprehension(t *testing.T) {
	base := From1(ints(1, 6))
	doubled := Select(base, Func1(func(x int) int { return x * 2 })).
		Where(Pred1(func(x int) bool { return x%2 == 1 }))

	got, err := doubled.Evaluate()
	require.NoError(t, err)
	assert.Equal(t, []int{2, 6, 10}, got)
	assert.Equal(t, 0, base.Predicates())
}

func TestMap_ReplacesTransform(t *testing.T) {
	c := From2([]int{1, 2}, []int{10, 20})
	c.Map(func(t Tuple2[int, int]) Tuple2[int, int] { return Tuple2[int, int]{t.V2, t.V1} })
	c.Map(func(t Tuple2[int, int]) Tuple2[int, int] { return Tuple2[int, int]{-t.V1, -t.V2} })

	got, err := c.Evaluate()
	require.NoError(t, err)
	assert.Equal(t, Tuple2[int, int]{-1, -10}, got[0], "only the last transform applies")
}

func TestEvaluate_PredicateOrderDoesNotChangeResult(t *testing.T) {
	even := Pred3(func(x, y, z int) bool { return (x+y+z)%2 == 0 })
	sorted := Pred3(func(x, y, z int) bool { return x <= y && y <= z })
	small := Pred3(func(x, y, z int) bool { return x+y+z < 12 })

	preds := []func(Tuple3[int, int, int]) bool{even, sorted, small}
	r := ints(0, 6)

	var reference []Tuple3[int, int, int]
	for i, order := range [][]int{{0, 1, 2}, {2, 1, 0}, {1, 2, 0}, {2, 0, 1}} {
		c := From3(r, r, r)
		for _, idx := range order {
			c.Where(preds[idx])
		}
		got, err := c.Evaluate()
		require.NoError(t, err)
		if i == 0 {
			reference = got
			continue
		}
		if diff := cmp.Diff(reference, got); diff != "" {
			t.Errorf("order %v changed result (-want +got):\n%s", order, diff)
		}
	}
	assert.NotEmpty(t, reference)
}

func TestEvaluate_ShortCircuitsPredicates(t *testing.T) {
	var first, second int
	c := From2(ints(0, 9), ints(0, 9)).Where(
		Pred2(func(x, _ int) bool { first++; return x < 3 }),
		Pred2(func(_, y int) bool { second++; return y < 3 }),
	)

	got, err := c.Evaluate()
	require.NoError(t, err)

	assert.Len(t, got, 9)
	assert.Equal(t, 100, first)
	assert.Equal(t, 30, second, "second predicate runs only where the first accepted")
}

func TestEvaluate_IsIdempotent(t *testing.T) {
	c := From2([]string{"a", "b", "c"}, ints(1, 4)).
		Where(Pred2(func(s string, n int) bool { return len(s)+n != 3 }))

	first, err := c.Evaluate()
	require.NoError(t, err)
	second, err := c.Evaluate()
	require.NoError(t, err)

	assert.Equal(t, first, second)
}

func TestEvaluate_EmptyDimension(t *testing.T) {
	c := From3(ints(1, 3), []string{}, ints(1, 3))

	got, err := c.Evaluate()
	require.NoError(t, err)
	assert.Empty(t, got)

	it := c.Iter()
	assert.False(t, it.Valid())
	assert.True(t, it.Position().Equal(c.Store().End()))

	n, err := c.Count()
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestEvaluate_TransformRunsOnlyForAcceptedTuples(t *testing.T) {
	calls := 0
	c := Select(
		From2(ints(0, 4), ints(0, 4)).Where(Pred2(func(x, y int) bool { return x+y == 4 })),
		Func2(func(x, y int) int { calls++; return x * y }),
	)

	got, err := c.Evaluate()
	require.NoError(t, err)
	assert.Equal(t, []int{0, 3, 4, 3, 0}, got)
	assert.Equal(t, 5, calls)

	n, err := c.Count()
	require.NoError(t, err)
	assert.Equal(t, 5, n)
	assert.Equal(t, 5, calls, "Count must not call the transform")
}

func TestEvaluate_SourcesAreCopied(t *testing.T) {
	xs := []int{1, 2, 3}
	c := From1(xs)
	xs[0] = 100

	got, err := c.Evaluate()
	require.NoError(t, err)
	assert.Equal(t, []Tuple1[int]{{1}, {2}, {3}}, got)
}

func TestTryWhere_ErrorAbortsEvaluation(t *testing.T) {
	boom := errors.New("boom")
	c := From1(ints(1, 10)).TryWhere(func(t Tuple1[int]) (bool, error) {
		if t.V1 == 4 {
			return false, boom
		}
		return true, nil
	})

	got, err := c.Evaluate()
	require.ErrorIs(t, err, boom)
	assert.Nil(t, got, "evaluation is all-or-nothing")

	_, err = c.Count()
	assert.ErrorIs(t, err, boom)

	it := c.Iter()
	var seen []int
	for ; it.Valid(); it.Next() {
		seen = append(seen, it.Value().V1)
	}
	assert.Equal(t, []int{1, 2, 3}, seen)
	assert.ErrorIs(t, it.Err(), boom)
}

func TestTrySelect_ErrorSurfaces(t *testing.T) {
	boom := errors.New("no sevens")
	c := TrySelect(From1(ints(1, 9)), func(t Tuple1[int]) (string, error) {
		if t.V1 == 7 {
			return "", boom
		}
		return "ok", nil
	})

	_, err := c.Evaluate()
	require.ErrorIs(t, err, boom)

	it := c.Iter()
	it.Advance(6)
	require.True(t, it.Valid())
	assert.Equal(t, "", it.Value())
	assert.ErrorIs(t, it.Err(), boom)
	assert.False(t, it.Valid())
}

func TestAll_StopsEarly(t *testing.T) {
	c := From2(ints(1, 100), ints(1, 100))

	var got []Tuple2[int, int]
	for r, err := range c.All() {
		require.NoError(t, err)
		got = append(got, r)
		if len(got) == 3 {
			break
		}
	}
	assert.Equal(t, []Tuple2[int, int]{{1, 1}, {1, 2}, {1, 3}}, got)
}

func TestValues_PanicsOnFailure(t *testing.T) {
	c := From1([]int{1}).TryWhere(func(Tuple1[int]) (bool, error) {
		return false, errors.New("bad")
	})

	assert.Panics(t, func() {
		for range c.Values() {
		}
	})
}

func TestValues_CollectsResults(t *testing.T) {
	c := Select(From2([]string{"x", "y"}, []int{1, 2}), Func2(func(s string, n int) string {
		return s + string(rune('0'+n))
	}))

	assert.Equal(t, []string{"x1", "x2", "y1", "y2"}, slices.Collect(c.Values()))
}

func TestFromSlices_DynamicArity(t *testing.T) {
	c := FromSlices([]int{1, 2}, []int{3}, []int{4, 5}).
		Where(func(t []int) bool { return t[0]+t[1]+t[2] != 9 })

	got, err := c.Evaluate()
	require.NoError(t, err)
	assert.Equal(t, [][]int{{1, 3, 4}, {2, 3, 5}}, got)
	assert.Equal(t, 3, c.Store().Dims())
}

func TestFromSlices_CandidatesAreIndependent(t *testing.T) {
	c := FromSlices([]string{"a", "b"}, []string{"c"})

	var kept [][]string
	for it := c.Iter(); it.Valid(); it.Next() {
		kept = append(kept, it.Value())
	}
	assert.Equal(t, [][]string{{"a", "c"}, {"b", "c"}}, kept)
}

func TestFromSlices_RejectsZeroArity(t *testing.T) {
	assert.PanicsWithValue(t, "lc: FromSlices needs at least one sequence", func() {
		FromSlices[int]()
	})
}

func TestFromSeq_CollectsSequences(t *testing.T) {
	c := FromSeq2(slices.Values([]int{1, 2}), slices.Values([]string{"a"}))

	got, err := c.Evaluate()
	require.NoError(t, err)
	assert.Equal(t, []Tuple2[int, string]{{1, "a"}, {2, "a"}}, got)
}

func TestTupleUnpack(t *testing.T) {
	a, b, c, d := Tuple4[int, string, bool, float64]{1, "x", true, 2.5}.Unpack()
	assert.Equal(t, 1, a)
	assert.Equal(t, "x", b)
	assert.True(t, c)
	assert.Equal(t, 2.5, d)
}
