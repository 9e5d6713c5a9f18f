package store

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/roach88/lcq/internal/engine"
	"github.com/roach88/lcq/internal/query"
	"github.com/roach88/lcq/internal/value"
)

// createTestStore creates a new file-backed store in a temp directory.
func createTestStore(t *testing.T) *Store {
	t.Helper()
	path := filepath.Join(t.TempDir(), "test.db")
	s, err := Open(path)
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

// pairsQuery is a small query whose rows are [[1,2],[1,3],[2,3]].
func pairsQuery() *query.Query {
	return &query.Query{
		Name: "pairs",
		From: []query.Source{
			{Name: "x", Values: []any{1, 2, 3}},
			{Name: "y", Values: []any{1, 2, 3}},
		},
		Where: []string{"x < y"},
	}
}

// createTestRecord builds an ok record for pairsQuery with the given ID.
func createTestRecord(t *testing.T, id string) RunRecord {
	t.Helper()
	res := &engine.Result{
		RunID:    id,
		Query:    "pairs",
		Rows:     []value.Value{value.List{value.Int(1), value.Int(2)}},
		Visited:  9,
		Accepted: 1,
		Elapsed:  time.Millisecond,
	}
	rec, err := NewRunRecord(pairsQuery(), res, nil)
	if err != nil {
		t.Fatalf("NewRunRecord() failed: %v", err)
	}
	return rec
}

func mustWriteRun(t *testing.T, s *Store, rec RunRecord) int64 {
	t.Helper()
	seq, err := s.WriteRun(t.Context(), rec)
	if err != nil {
		t.Fatalf("WriteRun(%s) failed: %v", rec.ID, err)
	}
	return seq
}
