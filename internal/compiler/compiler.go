package compiler

import (
	"fmt"
	"reflect"

	"github.com/google/cel-go/cel"
	"github.com/google/cel-go/common"
	"github.com/google/cel-go/ext"

	"github.com/roach88/lcq/internal/query"
	"github.com/roach88/lcq/internal/value"
	"github.com/roach88/lcq/lc"
)

// Comprehension is the comprehension type produced for a query: candidates
// are tuples of source elements and results are single values.
type Comprehension = lc.Comprehension[[]value.Value, value.Value]

// Expressions holds the compiled where and select programs of a query.
// It is independent of the source data and safe for concurrent use.
type Expressions struct {
	names  []string
	where  []expr
	sel    expr
	hasSel bool
}

type expr struct {
	field string
	text  string
	prg   cel.Program
}

// CompileExpressions builds the CEL environment for q and compiles every
// where expression and the select expression.
func CompileExpressions(q *query.Query) (*Expressions, error) {
	names := q.Names()

	envOpts := []cel.EnvOption{
		cel.CrossTypeNumericComparisons(true),
		ext.Strings(),
		ext.Math(),
	}
	for _, name := range names {
		envOpts = append(envOpts, cel.Variable(name, cel.DynType))
	}

	env, err := cel.NewEnv(envOpts...)
	if err != nil {
		return nil, &CompileError{Field: "from", Cause: err}
	}

	e := &Expressions{names: names}

	for i, text := range q.Where {
		field := fmt.Sprintf("where[%d]", i)
		prg, err := compileExpr(env, field, text, true)
		if err != nil {
			return nil, err
		}
		e.where = append(e.where, expr{field: field, text: text, prg: prg})
	}

	if q.Select != "" {
		prg, err := compileExpr(env, "select", q.Select, false)
		if err != nil {
			return nil, err
		}
		e.sel = expr{field: "select", text: q.Select, prg: prg}
		e.hasSel = true
	}

	return e, nil
}

func compileExpr(env *cel.Env, field, text string, wantBool bool) (cel.Program, error) {
	source := common.NewStringSource(text, field)
	ast, issues := env.CompileSource(source)
	if issues != nil {
		if err := issues.Err(); err != nil {
			return nil, &CompileError{Field: field, Expr: text, Cause: err}
		}
	}

	if wantBool {
		out := ast.OutputType()
		if !reflect.DeepEqual(out, cel.BoolType) && !reflect.DeepEqual(out, cel.DynType) {
			return nil, &CompileError{
				Field: field,
				Expr:  text,
				Cause: fmt.Errorf("expected a bool expression, but got '%s'", out),
			}
		}
	}

	prg, err := env.Program(ast)
	if err != nil {
		return nil, &CompileError{
			Field: field,
			Expr:  text,
			Cause: fmt.Errorf("expression construction: %w", err),
		}
	}
	return prg, nil
}

// Arity returns the number of sources the expressions were compiled for.
func (e *Expressions) Arity() int {
	return len(e.names)
}

// Bind builds the comprehension over seqs, one slice per source in
// declaration order. Guards run on every candidate before the where
// predicates; a guard error aborts enumeration.
func (e *Expressions) Bind(seqs [][]value.Value, guards ...lc.Predicate[[]value.Value]) (*Comprehension, error) {
	if len(seqs) != len(e.names) {
		return nil, fmt.Errorf("expected %d sources, got %d", len(e.names), len(seqs))
	}
	if len(seqs) == 0 {
		return nil, fmt.Errorf("query has no sources")
	}

	preds := make([]lc.Predicate[[]value.Value], 0, len(guards)+len(e.where))
	preds = append(preds, guards...)
	for _, w := range e.where {
		preds = append(preds, e.predicate(w))
	}

	c := lc.FromSlices(seqs...).TryWhere(preds...)
	if !e.hasSel {
		return lc.Select(c, func(t []value.Value) value.Value {
			return value.List(t)
		}), nil
	}
	return lc.TrySelect(c, e.transform(e.sel)), nil
}

// Compile compiles q and binds it to seqs.
func Compile(q *query.Query, seqs [][]value.Value) (*Comprehension, error) {
	e, err := CompileExpressions(q)
	if err != nil {
		return nil, err
	}
	return e.Bind(seqs)
}

func (e *Expressions) activation(t []value.Value) map[string]any {
	vars := make(map[string]any, len(e.names))
	for i, name := range e.names {
		vars[name] = value.ToNative(t[i])
	}
	return vars
}

func (e *Expressions) predicate(w expr) lc.Predicate[[]value.Value] {
	return func(t []value.Value) (bool, error) {
		out, _, err := w.prg.Eval(e.activation(t))
		if err != nil {
			return false, e.evalError(w, t, err)
		}
		b, ok := out.Value().(bool)
		if !ok {
			return false, e.evalError(w, t, fmt.Errorf("expected bool, got %s", out.Type().TypeName()))
		}
		return b, nil
	}
}

func (e *Expressions) transform(s expr) func([]value.Value) (value.Value, error) {
	return func(t []value.Value) (value.Value, error) {
		out, _, err := s.prg.Eval(e.activation(t))
		if err != nil {
			return nil, e.evalError(s, t, err)
		}
		v, err := fromCEL(out)
		if err != nil {
			return nil, e.evalError(s, t, err)
		}
		return v, nil
	}
}

func (e *Expressions) evalError(x expr, t []value.Value, cause error) error {
	return &EvaluationError{
		Field: x.field,
		Expr:  x.text,
		Tuple: value.List(t).String(),
		Cause: cause,
	}
}
