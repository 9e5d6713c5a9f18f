package engine

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/roach88/lcq/internal/compiler"
	"github.com/roach88/lcq/internal/query"
	"github.com/roach88/lcq/internal/source"
	"github.com/roach88/lcq/internal/value"
)

// DefaultMaxSteps is the default maximum number of candidates a run may
// visit.
const DefaultMaxSteps = 10_000_000

// cancelCheckInterval is how many visited candidates pass between context
// checks during eager evaluation.
const cancelCheckInterval = 1024

// Engine runs queries. It is safe for concurrent use; each Run owns its
// own quota and comprehension.
type Engine struct {
	maxSteps int
	logger   *slog.Logger
	ids      IDGenerator
	clock    *Clock
}

// Option allows configuration of engine parameters.
type Option func(*Engine)

// WithMaxSteps sets the maximum candidates visited per run.
// Zero or a negative value disables the quota.
func WithMaxSteps(maxSteps int) Option {
	return func(e *Engine) {
		e.maxSteps = maxSteps
	}
}

// WithLogger sets the logger. Defaults to slog.Default().
func WithLogger(l *slog.Logger) Option {
	return func(e *Engine) {
		e.logger = l
	}
}

// WithIDGenerator sets the run ID generator. Defaults to UUIDv7Generator.
func WithIDGenerator(g IDGenerator) Option {
	return func(e *Engine) {
		e.ids = g
	}
}

// WithClock sets the clock that numbers runs.
func WithClock(c *Clock) Option {
	return func(e *Engine) {
		e.clock = c
	}
}

// New creates an Engine.
func New(opts ...Option) *Engine {
	e := &Engine{
		maxSteps: DefaultMaxSteps,
		ids:      UUIDv7Generator{},
		clock:    NewClock(),
	}
	for _, opt := range opts {
		opt(e)
	}
	if e.logger == nil {
		e.logger = slog.Default()
	}
	return e
}

// Result is the outcome of a successful run.
type Result struct {
	RunID    string        `json:"run_id"`
	Seq      int64         `json:"seq"`
	Query    string        `json:"query"`
	Rows     []value.Value `json:"rows"`
	Visited  int           `json:"visited"`
	Accepted int           `json:"accepted"`

	// Truncated reports that the run stopped at the query limit rather
	// than at the end of the candidate space.
	Truncated bool `json:"truncated,omitempty"`

	Elapsed time.Duration `json:"elapsed_ns"`
}

// Run executes q and collects its results.
func (e *Engine) Run(ctx context.Context, q *query.Query) (*Result, error) {
	runID := e.ids.Generate()
	seq := e.clock.Next()
	log := e.logger.With("query", q.Name, "run_id", runID)
	start := time.Now()

	log.Info("run starting", "seq", seq, "sources", len(q.From), "where", len(q.Where), "limit", q.Limit)

	if errs := query.Validate(q); len(errs) > 0 {
		joined := make([]error, len(errs))
		for i, ve := range errs {
			joined[i] = ve
		}
		return nil, e.fail(log, newRuntimeError(ErrCodeInvalidQuery, q.Name, runID,
			fmt.Sprintf("%d validation error(s)", len(errs)), errors.Join(joined...)))
	}

	exprs, err := compiler.CompileExpressions(q)
	if err != nil {
		return nil, e.fail(log, newRuntimeError(ErrCodeCompileFailed, q.Name, runID, "compile failed", err))
	}

	seqs := make([][]value.Value, len(q.From))
	for i, src := range q.From {
		if err := ctx.Err(); err != nil {
			return nil, e.fail(log, newRuntimeError(ErrCodeCanceled, q.Name, runID, "run canceled", err))
		}
		vals, err := source.Load(ctx, src)
		if err != nil {
			return nil, e.fail(log, newRuntimeError(ErrCodeSourceFailed, q.Name, runID, "source failed", err))
		}
		log.Debug("source loaded", "source", src.Name, "kind", src.Kind(), "elements", len(vals))
		seqs[i] = vals
	}

	quota := NewQuotaEnforcer(e.maxSteps)
	guard := func([]value.Value) (bool, error) {
		if err := quota.Check(runID); err != nil {
			return false, err
		}
		if quota.Current()%cancelCheckInterval == 0 {
			if err := ctx.Err(); err != nil {
				return false, err
			}
		}
		return true, nil
	}

	c, err := exprs.Bind(seqs, guard)
	if err != nil {
		return nil, e.fail(log, newRuntimeError(ErrCodeCompileFailed, q.Name, runID, "bind failed", err))
	}

	rows, truncated, err := collect(ctx, c, q.Limit)
	if err != nil {
		return nil, e.fail(log, classify(q.Name, runID, err))
	}

	res := &Result{
		RunID:     runID,
		Seq:       seq,
		Query:     q.Name,
		Rows:      rows,
		Visited:   quota.Current(),
		Accepted:  len(rows),
		Truncated: truncated,
		Elapsed:   time.Since(start),
	}

	observeSuccess(res)
	log.Info("run finished",
		"visited", res.Visited,
		"accepted", res.Accepted,
		"truncated", res.Truncated,
		"elapsed", res.Elapsed,
	)
	return res, nil
}

// collect evaluates c eagerly when limit is zero, and otherwise pulls the
// lazy iterator until limit results have been produced.
func collect(ctx context.Context, c *compiler.Comprehension, limit int) ([]value.Value, bool, error) {
	if limit == 0 {
		rows, err := c.Evaluate()
		if err != nil {
			return nil, false, err
		}
		if rows == nil {
			rows = []value.Value{}
		}
		return rows, false, nil
	}

	rows := make([]value.Value, 0, min(limit, 64))
	it := c.Iter()
	for ; it.Valid(); it.Next() {
		if err := ctx.Err(); err != nil {
			return nil, false, err
		}
		v := it.Value()
		if err := it.Err(); err != nil {
			return nil, false, err
		}
		rows = append(rows, v)
		if len(rows) == limit {
			return rows, true, nil
		}
	}
	if err := it.Err(); err != nil {
		return nil, false, err
	}
	return rows, false, nil
}

func classify(queryName, runID string, err error) *RuntimeError {
	var se *StepsExceededError
	switch {
	case errors.As(err, &se):
		return NewQuotaError(queryName, runID, se)
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return newRuntimeError(ErrCodeCanceled, queryName, runID, "run canceled", err)
	default:
		return newRuntimeError(ErrCodeEvalFailed, queryName, runID, "evaluation failed", err)
	}
}

func (e *Engine) fail(log *slog.Logger, err *RuntimeError) error {
	observeFailure(err.Code)
	log.Error("run failed", "code", err.Code, "error", err)
	return err
}
