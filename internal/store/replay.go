package store

import (
	"context"
	"fmt"

	"github.com/roach88/lcq/internal/engine"
	"github.com/roach88/lcq/internal/query"
)

// Runner executes a query. *engine.Engine implements it.
type Runner interface {
	Run(ctx context.Context, q *query.Query) (*engine.Result, error)
}

// ReplayOutcome compares a stored run with a fresh execution of its query.
type ReplayOutcome struct {
	Run    RunRecord    `json:"run"`
	Replay ReplayRecord `json:"replay"`
}

// Deterministic reports whether the replay reproduced the stored status
// and rows.
func (o ReplayOutcome) Deterministic() bool {
	return o.Replay.Matched
}

// Replay re-runs the stored query of runID with r and records whether the
// result matches. A run that originally failed matches when the replay
// fails with the same error code.
//
// Errors are returned only when the run cannot be read, decoded or
// recorded; a failing replay execution is a mismatch or a match, never an
// error.
func (s *Store) Replay(ctx context.Context, r Runner, runID string) (ReplayOutcome, error) {
	orig, err := s.ReadRun(ctx, runID)
	if err != nil {
		return ReplayOutcome{}, fmt.Errorf("replay: %w", err)
	}

	q, err := orig.DecodeQuery()
	if err != nil {
		return ReplayOutcome{}, fmt.Errorf("replay: %w", err)
	}

	res, runErr := r.Run(ctx, q)
	fresh, err := NewRunRecord(q, res, runErr)
	if err != nil {
		return ReplayOutcome{}, fmt.Errorf("replay %s: %w", runID, err)
	}

	rec := ReplayRecord{
		RunID:    orig.ID,
		ReplayID: fresh.ID,
		Status:   fresh.Status,
		RowsHash: fresh.RowsHash,
		Matched:  fresh.Status == orig.Status && fresh.RowsHash == orig.RowsHash,
	}
	id, err := s.WriteReplay(ctx, rec)
	if err != nil {
		return ReplayOutcome{}, fmt.Errorf("replay %s: %w", runID, err)
	}
	rec.ID = id

	return ReplayOutcome{Run: orig, Replay: rec}, nil
}

// ReplayAll replays every run matching f in seq order.
func (s *Store) ReplayAll(ctx context.Context, r Runner, f ListFilter) ([]ReplayOutcome, error) {
	runs, err := s.ListRuns(ctx, f)
	if err != nil {
		return nil, fmt.Errorf("replay all: %w", err)
	}

	outcomes := make([]ReplayOutcome, 0, len(runs))
	for _, run := range runs {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		out, err := s.Replay(ctx, r, run.ID)
		if err != nil {
			return nil, err
		}
		outcomes = append(outcomes, out)
	}
	return outcomes, nil
}
