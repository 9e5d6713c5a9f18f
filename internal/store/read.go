package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
)

// ErrRunNotFound is returned when no run has the requested ID.
var ErrRunNotFound = errors.New("run not found")

const runColumns = `id, seq, query_name, query, query_hash, status, error, rows, rows_hash, visited, accepted, truncated, elapsed_ns`

// ReadRun returns the run with the given ID.
// Returns an error wrapping ErrRunNotFound if it does not exist.
func (s *Store) ReadRun(ctx context.Context, id string) (RunRecord, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+runColumns+` FROM runs WHERE id = ?`, id)
	rec, err := scanRun(row)
	if errors.Is(err, sql.ErrNoRows) {
		return RunRecord{}, fmt.Errorf("read run %s: %w", id, ErrRunNotFound)
	}
	if err != nil {
		return RunRecord{}, fmt.Errorf("read run %s: %w", id, err)
	}
	return rec, nil
}

// ListFilter narrows ListRuns. Zero values match everything.
type ListFilter struct {
	Query  string // exact query name
	Status string // "ok" or a runtime error code
	Limit  int    // most recent N runs, still returned in seq order
}

// ListRuns returns stored runs ordered by seq ASC, id ASC COLLATE BINARY.
//
// Returns an empty slice (not nil) if no runs match.
func (s *Store) ListRuns(ctx context.Context, f ListFilter) ([]RunRecord, error) {
	var (
		conds []string
		args  []any
	)
	if f.Query != "" {
		conds = append(conds, "query_name = ?")
		args = append(args, f.Query)
	}
	if f.Status != "" {
		conds = append(conds, "status = ?")
		args = append(args, f.Status)
	}

	q := `SELECT ` + runColumns + ` FROM runs`
	if len(conds) > 0 {
		q += ` WHERE ` + strings.Join(conds, " AND ")
	}
	if f.Limit > 0 {
		// Take the newest N, then restore ascending order
		q = `SELECT * FROM (` + q + ` ORDER BY seq DESC LIMIT ?)`
		args = append(args, f.Limit)
	}
	q += ` ORDER BY seq ASC, id COLLATE BINARY ASC`

	rows, err := s.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("query runs: %w", err)
	}
	defer rows.Close()

	runs := []RunRecord{}
	for rows.Next() {
		rec, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		runs = append(runs, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate runs: %w", err)
	}
	return runs, nil
}

// ReadReplays returns the replays of a run in insertion order.
func (s *Store) ReadReplays(ctx context.Context, runID string) ([]ReplayRecord, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, run_id, replay_id, status, rows_hash, matched
		FROM replays
		WHERE run_id = ?
		ORDER BY id ASC
	`, runID)
	if err != nil {
		return nil, fmt.Errorf("query replays: %w", err)
	}
	defer rows.Close()

	replays := []ReplayRecord{}
	for rows.Next() {
		var (
			rec     ReplayRecord
			matched int
		)
		if err := rows.Scan(&rec.ID, &rec.RunID, &rec.ReplayID, &rec.Status, &rec.RowsHash, &matched); err != nil {
			return nil, fmt.Errorf("scan replay: %w", err)
		}
		rec.Matched = matched != 0
		replays = append(replays, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate replays: %w", err)
	}
	return replays, nil
}

// scanner is satisfied by *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}

func scanRun(sc scanner) (RunRecord, error) {
	var (
		rec       RunRecord
		truncated int
	)
	err := sc.Scan(
		&rec.ID,
		&rec.Seq,
		&rec.QueryName,
		&rec.Query,
		&rec.QueryHash,
		&rec.Status,
		&rec.Error,
		&rec.Rows,
		&rec.RowsHash,
		&rec.Visited,
		&rec.Accepted,
		&truncated,
		&rec.ElapsedNS,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return RunRecord{}, err
		}
		return RunRecord{}, fmt.Errorf("scan run: %w", err)
	}
	rec.Truncated = truncated != 0
	return rec, nil
}
