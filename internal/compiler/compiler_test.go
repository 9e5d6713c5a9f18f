package compiler

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/lcq/internal/query"
	"github.com/roach88/lcq/internal/value"
)

func ints(from, to int) []value.Value {
	var out []value.Value
	for i := from; i <= to; i++ {
		out = append(out, value.Int(i))
	}
	return out
}

func newQuery(where []string, sel string, names ...string) *query.Query {
	q := &query.Query{Name: "t", Where: where, Select: sel}
	for _, n := range names {
		q.From = append(q.From, query.Source{Name: n, Values: []any{}})
	}
	return q
}

func rows(vals ...[]int) []value.Value {
	out := make([]value.Value, len(vals))
	for i, r := range vals {
		l := make(value.List, len(r))
		for j, n := range r {
			l[j] = value.Int(n)
		}
		out[i] = l
	}
	return out
}

func TestCompilePythagorean(t *testing.T) {
	r := ints(1, 20)
	q := newQuery([]string{"x < y && y < z", "x*x + y*y == z*z"}, "", "x", "y", "z")

	c, err := Compile(q, [][]value.Value{r, r, r})
	require.NoError(t, err)

	got, err := c.Evaluate()
	require.NoError(t, err)
	assert.Equal(t, rows(
		[]int{3, 4, 5}, []int{5, 12, 13}, []int{6, 8, 10},
		[]int{8, 15, 17}, []int{9, 12, 15}, []int{12, 16, 20},
	), got)
}

func TestCompileNoWhereEnumeratesProduct(t *testing.T) {
	q := newQuery(nil, "", "a", "b")
	c, err := Compile(q, [][]value.Value{ints(1, 2), ints(8, 9)})
	require.NoError(t, err)

	got, err := c.Evaluate()
	require.NoError(t, err)
	assert.Equal(t, rows([]int{1, 8}, []int{1, 9}, []int{2, 8}, []int{2, 9}), got)
}

func TestCompileSelect(t *testing.T) {
	q := newQuery([]string{"x < y"}, "x * y", "x", "y")
	c, err := Compile(q, [][]value.Value{ints(1, 3), ints(1, 3)})
	require.NoError(t, err)

	got, err := c.Evaluate()
	require.NoError(t, err)
	assert.Equal(t, []value.Value{value.Int(2), value.Int(3), value.Int(6)}, got)
}

func TestCompileSelectNestedList(t *testing.T) {
	q := newQuery(nil, "[x, [double(x) * 2.0, 'k'], null]", "x")
	c, err := Compile(q, [][]value.Value{ints(1, 1)})
	require.NoError(t, err)

	got, err := c.Evaluate()
	require.NoError(t, err)
	want := value.List{value.Int(1), value.List{value.Float(2), value.String("k")}, value.Null{}}
	assert.Equal(t, []value.Value{want}, got)
}

func TestCompileStringFunctions(t *testing.T) {
	q := newQuery([]string{"s.startsWith('a')"}, "s.upperAscii()", "s")
	c, err := Compile(q, [][]value.Value{{value.String("ab"), value.String("bc"), value.String("ax")}})
	require.NoError(t, err)

	got, err := c.Evaluate()
	require.NoError(t, err)
	assert.Equal(t, []value.Value{value.String("AB"), value.String("AX")}, got)
}

func TestCompileCrossTypeComparison(t *testing.T) {
	q := newQuery([]string{"x < y"}, "", "x", "y")
	c, err := Compile(q, [][]value.Value{ints(1, 3), {value.Float(2.5)}})
	require.NoError(t, err)

	n, err := c.Count()
	require.NoError(t, err)
	assert.Equal(t, 2, n)
}

func TestCompileErrors(t *testing.T) {
	tests := []struct {
		name  string
		query *query.Query
		field string
	}{
		{"syntax", newQuery([]string{"x <"}, "", "x"), "where[0]"},
		{"undeclared variable", newQuery([]string{"x > 0", "w > 1"}, "", "x"), "where[1]"},
		{"string where", newQuery([]string{"'yes'"}, "", "x"), "where[0]"},
		{"list where", newQuery([]string{"[x]"}, "", "x"), "where[0]"},
		{"bad select", newQuery(nil, "x +", "x"), "select"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := CompileExpressions(tt.query)
			require.Error(t, err)

			var ce *CompileError
			require.True(t, errors.As(err, &ce), "want CompileError, got %T", err)
			assert.Equal(t, tt.field, ce.Field)
		})
	}
}

func TestEvaluationErrors(t *testing.T) {
	t.Run("non-bool dynamic where", func(t *testing.T) {
		c, err := Compile(newQuery([]string{"x"}, "", "x"), [][]value.Value{ints(1, 2)})
		require.NoError(t, err)

		_, err = c.Evaluate()
		var ee *EvaluationError
		require.ErrorAs(t, err, &ee)
		assert.Equal(t, "where[0]", ee.Field)
		assert.Equal(t, "(1)", ee.Tuple)
		assert.Contains(t, err.Error(), "expected bool")
	})

	t.Run("division by zero in select", func(t *testing.T) {
		c, err := Compile(newQuery(nil, "x / y", "x", "y"), [][]value.Value{ints(1, 1), ints(0, 1)})
		require.NoError(t, err)

		got, err := c.Evaluate()
		assert.Nil(t, got)
		var ee *EvaluationError
		require.ErrorAs(t, err, &ee)
		assert.Equal(t, "select", ee.Field)
		assert.Equal(t, "(1, 0)", ee.Tuple)
	})

	t.Run("map result", func(t *testing.T) {
		c, err := Compile(newQuery(nil, "{'k': x}", "x"), [][]value.Value{ints(1, 1)})
		require.NoError(t, err)

		_, err = c.Evaluate()
		assert.ErrorContains(t, err, "unsupported result type")
	})
}

func TestErrorsStopIterator(t *testing.T) {
	c, err := Compile(newQuery(nil, "10 / x", "x"), [][]value.Value{{value.Int(5), value.Int(0), value.Int(2)}})
	require.NoError(t, err)

	it := c.Iter()
	require.True(t, it.Valid())
	assert.Equal(t, value.Int(2), it.Value())
	it.Next()
	require.True(t, it.Valid())
	assert.Nil(t, it.Value())
	assert.False(t, it.Valid())
	assert.Error(t, it.Err())
}

func TestBindArity(t *testing.T) {
	e, err := CompileExpressions(newQuery(nil, "", "x", "y"))
	require.NoError(t, err)
	assert.Equal(t, 2, e.Arity())

	_, err = e.Bind([][]value.Value{ints(1, 2)})
	assert.ErrorContains(t, err, "expected 2 sources, got 1")

	empty, err := CompileExpressions(newQuery(nil, ""))
	require.NoError(t, err)
	_, err = empty.Bind(nil)
	assert.ErrorContains(t, err, "no sources")
}

func TestExpressionsReusableAcrossBindings(t *testing.T) {
	e, err := CompileExpressions(newQuery([]string{"x % 2 == 0"}, "", "x"))
	require.NoError(t, err)

	a, err := e.Bind([][]value.Value{ints(1, 4)})
	require.NoError(t, err)
	b, err := e.Bind([][]value.Value{ints(10, 12)})
	require.NoError(t, err)

	na, err := a.Count()
	require.NoError(t, err)
	nb, err := b.Count()
	require.NoError(t, err)
	assert.Equal(t, 2, na)
	assert.Equal(t, 2, nb)
}

func TestGuardsRunBeforeWhere(t *testing.T) {
	e, err := CompileExpressions(newQuery([]string{"x > 2"}, "", "x"))
	require.NoError(t, err)

	seen := 0
	guard := func([]value.Value) (bool, error) {
		seen++
		return true, nil
	}
	c, err := e.Bind([][]value.Value{ints(1, 4)}, guard)
	require.NoError(t, err)

	got, err := c.Evaluate()
	require.NoError(t, err)
	assert.Len(t, got, 2)
	assert.Equal(t, 4, seen, "guard sees every candidate")

	stop := errors.New("stop")
	c, err = e.Bind([][]value.Value{ints(1, 4)}, func([]value.Value) (bool, error) { return false, stop })
	require.NoError(t, err)
	_, err = c.Evaluate()
	assert.ErrorIs(t, err, stop)
}
