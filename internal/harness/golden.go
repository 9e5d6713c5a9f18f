package harness

import (
	"bytes"
	"context"
	"testing"

	"github.com/sebdah/goldie/v2"

	"github.com/roach88/lcq/internal/engine"
	"github.com/roach88/lcq/internal/query"
	"github.com/roach88/lcq/internal/value"
)

// Snapshot renders the canonical golden form of a query's rows:
//
//	{"query":"<name>","rows":[...]}
//
// Run IDs, timings and visit counts are left out so snapshots only change
// when results do.
func Snapshot(name string, rows []value.Value) ([]byte, error) {
	nameJSON, err := value.MarshalCanonical(value.String(name))
	if err != nil {
		return nil, err
	}
	rowsJSON, err := value.MarshalCanonicalRows(rows)
	if err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	buf.WriteString(`{"query":`)
	buf.Write(nameJSON)
	buf.WriteString(`,"rows":`)
	buf.Write(rowsJSON)
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// RunWithGolden runs q and compares its rows against
// testdata/golden/{q.Name}.golden.
//
// To regenerate golden files, run:
//
//	go test ./internal/harness -update
//
// Returns an error if the run fails. A snapshot mismatch fails t.
func RunWithGolden(t *testing.T, e *engine.Engine, q *query.Query) error {
	t.Helper()

	res, err := e.Run(context.Background(), q)
	if err != nil {
		return err
	}
	return AssertGolden(t, q.Name, res.Rows)
}

// AssertGolden compares rows against the golden file for name without
// re-running anything.
func AssertGolden(t *testing.T, name string, rows []value.Value) error {
	t.Helper()

	data, err := Snapshot(name, rows)
	if err != nil {
		return err
	}

	g := goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)
	g.Assert(t, name, data)
	return nil
}
