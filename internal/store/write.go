package store

import (
	"context"
	"errors"
	"fmt"
)

// WriteRun inserts a run record and returns the seq assigned to it.
//
// Uses ON CONFLICT(id) DO NOTHING for idempotency: writing the same run ID
// twice keeps the first record and returns its seq.
func (s *Store) WriteRun(ctx context.Context, rec RunRecord) (int64, error) {
	if rec.ID == "" {
		return 0, errors.New("write run: empty run id")
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("write run: begin tx: %w", err)
	}
	defer tx.Rollback() // No-op if committed

	var seq int64
	if err := tx.QueryRowContext(ctx, `SELECT COALESCE(MAX(seq), 0) + 1 FROM runs`).Scan(&seq); err != nil {
		return 0, fmt.Errorf("write run: next seq: %w", err)
	}

	result, err := tx.ExecContext(ctx, `
		INSERT INTO runs
		(id, seq, query_name, query, query_hash, status, error, rows, rows_hash, visited, accepted, truncated, elapsed_ns)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO NOTHING
	`,
		rec.ID,
		seq,
		rec.QueryName,
		rec.Query,
		rec.QueryHash,
		rec.Status,
		rec.Error,
		rec.Rows,
		rec.RowsHash,
		rec.Visited,
		rec.Accepted,
		boolToInt(rec.Truncated),
		rec.ElapsedNS,
	)
	if err != nil {
		return 0, fmt.Errorf("write run: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("write run: rows affected: %w", err)
	}
	if affected == 0 {
		// Already stored - report the existing seq
		if err := tx.QueryRowContext(ctx, `SELECT seq FROM runs WHERE id = ?`, rec.ID).Scan(&seq); err != nil {
			return 0, fmt.Errorf("write run: read existing seq: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("write run: commit: %w", err)
	}
	return seq, nil
}

// ReplayRecord is the outcome of re-running a stored run.
type ReplayRecord struct {
	ID       int64  `json:"id"` // assigned by WriteReplay
	RunID    string `json:"run_id"`
	ReplayID string `json:"replay_id"`
	Status   string `json:"status"`
	RowsHash string `json:"rows_hash"`
	Matched  bool   `json:"matched"`
}

// WriteReplay inserts a replay record. The referenced run must exist.
func (s *Store) WriteReplay(ctx context.Context, rec ReplayRecord) (int64, error) {
	result, err := s.db.ExecContext(ctx, `
		INSERT INTO replays (run_id, replay_id, status, rows_hash, matched)
		VALUES (?, ?, ?, ?, ?)
	`,
		rec.RunID,
		rec.ReplayID,
		rec.Status,
		rec.RowsHash,
		boolToInt(rec.Matched),
	)
	if err != nil {
		return 0, fmt.Errorf("write replay: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("write replay: last insert id: %w", err)
	}
	return id, nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
