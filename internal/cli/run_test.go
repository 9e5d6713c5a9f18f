package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/lcq/internal/engine"
	"github.com/roach88/lcq/internal/store"
	"github.com/roach88/lcq/internal/testutil"
)

func newRunCmd(format string) (*RootOptions, *bytes.Buffer) {
	opts := &RootOptions{
		Format:      format,
		IDGenerator: testutil.NewFixedIDGenerator("run-42"),
	}
	return opts, &bytes.Buffer{}
}

func executeRun(t *testing.T, opts *RootOptions, out *bytes.Buffer, args ...string) error {
	t.Helper()
	cmd := NewRunCommand(opts)
	cmd.SetOut(out)
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs(args)
	return cmd.Execute()
}

func TestRunCommandMissingArgs(t *testing.T) {
	opts, out := newRunCmd("text")
	err := executeRun(t, opts, out)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "accepts 1 arg")
}

func TestRunCommandTextOutput(t *testing.T) {
	opts, out := newRunCmd("text")
	err := executeRun(t, opts, out, filepath.Join(queriesDir, "pythagorean.yaml"))
	require.NoError(t, err)

	want := "(3, 4, 5)\n(5, 12, 13)\n(6, 8, 10)\n(8, 15, 17)\n(9, 12, 15)\n(12, 16, 20)\n"
	assert.Equal(t, want, out.String())
}

func TestRunCommandLimitFlag(t *testing.T) {
	opts, out := newRunCmd("text")
	err := executeRun(t, opts, out, "--limit", "1", "--stats", filepath.Join(queriesDir, "pythagorean.yaml"))
	require.NoError(t, err)

	// the first triple is found after 865 candidates; the rest are never visited
	assert.Equal(t, "(3, 4, 5)\n# 1 row(s), 865 visited, 1 accepted, truncated at limit\n", out.String())
}

func TestRunCommandNegativeLimit(t *testing.T) {
	opts, out := newRunCmd("text")
	err := executeRun(t, opts, out, "--limit", "-1", filepath.Join(queriesDir, "pythagorean.yaml"))
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
}

func TestRunCommandJSONOutput(t *testing.T) {
	opts, out := newRunCmd("json")
	err := executeRun(t, opts, out, filepath.Join(queriesDir, "equal_sums.yaml"))
	require.NoError(t, err)

	var resp struct {
		Status  string `json:"status"`
		TraceID string `json:"trace_id"`
		Data    struct {
			RunID   string            `json:"run_id"`
			Query   string            `json:"query"`
			Rows    []json.RawMessage `json:"rows"`
			Count   int               `json:"count"`
			Visited int               `json:"visited"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(out.Bytes(), &resp))

	assert.Equal(t, "ok", resp.Status)
	assert.Equal(t, "run-42", resp.TraceID)
	assert.Equal(t, "run-42", resp.Data.RunID)
	assert.Equal(t, "equal_sums", resp.Data.Query)
	assert.Equal(t, 10, resp.Data.Count)
	assert.Equal(t, 100, resp.Data.Visited)
	require.Len(t, resp.Data.Rows, 10)
	assert.JSONEq(t, "18", string(resp.Data.Rows[9]))
}

func TestRunCommandCUEQuery(t *testing.T) {
	opts, out := newRunCmd("text")
	err := executeRun(t, opts, out, "--limit", "3", filepath.Join(queriesDir, "letters.cue"))
	require.NoError(t, err)
	assert.Equal(t, "(0, a)\n(0, b)\n(0, d)\n", out.String())
}

func TestRunCommandSQLSource(t *testing.T) {
	dir := t.TempDir()
	testutil.CreateNumsDB(t, filepath.Join(dir, "nums.db"), 1, 2, 3, 4)
	path := testutil.WriteFile(t, dir, "squares.yaml", `
name: squares
from:
  - name: n
    sql: {db: nums.db, query: "SELECT n FROM nums ORDER BY n"}
where: ["n % 2 == 0"]
select: "n * n"
`)

	opts, out := newRunCmd("text")
	require.NoError(t, executeRun(t, opts, out, path))
	assert.Equal(t, "4\n16\n", out.String())
}

func TestRunCommandFileNotFound(t *testing.T) {
	opts, out := newRunCmd("json")
	err := executeRun(t, opts, out, "/nonexistent/query.yaml")
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))

	var resp CLIResponse
	require.NoError(t, json.Unmarshal(out.Bytes(), &resp))
	require.NotNil(t, resp.Error)
	assert.Equal(t, ErrCodeNotFound, resp.Error.Code)
}

func TestRunCommandInvalidQuery(t *testing.T) {
	path := testutil.WriteFile(t, t.TempDir(), "bad.yaml", `
name: bad
from:
  - name: x
    values: [1]
limit: -2
`)

	opts, out := newRunCmd("text")
	err := executeRun(t, opts, out, path)
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
	assert.Contains(t, out.String(), "Error [INVALID_QUERY]")
}

func TestRunCommandEvaluationFailure(t *testing.T) {
	path := testutil.WriteFile(t, t.TempDir(), "div.yaml", `
name: div
from:
  - name: x
    values: [1, 0]
select: "10 / x"
`)

	opts, out := newRunCmd("json")
	err := executeRun(t, opts, out, path)
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))

	var resp CLIResponse
	require.NoError(t, json.Unmarshal(out.Bytes(), &resp))
	require.NotNil(t, resp.Error)
	assert.Equal(t, "EVAL_FAILED", resp.Error.Code)
	assert.Equal(t, "run-42", resp.TraceID)
}

func TestRunCommandCanceledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	opts, out := newRunCmd("text")
	cmd := NewRunCommand(opts)
	cmd.SetOut(out)
	cmd.SetArgs([]string{filepath.Join(queriesDir, "pythagorean.yaml")})

	err := cmd.ExecuteContext(ctx)
	require.Error(t, err)
	assert.Contains(t, out.String(), "CANCELED")
}

func TestRunCommandRecordsHistory(t *testing.T) {
	dir := t.TempDir()
	dbPath := filepath.Join(dir, "history.db")
	failing := testutil.WriteFile(t, dir, "div.yaml", `
name: div
from:
  - name: x
    values: [0]
select: "1 / x"
`)

	opts, out := newRunCmd("text")
	opts.IDGenerator = engine.NewFixedGenerator("ok-run", "failed-run")
	require.NoError(t, executeRun(t, opts, out, "--db", dbPath, filepath.Join(queriesDir, "sum_ten.yaml")))
	require.Error(t, executeRun(t, opts, out, "--db", dbPath, failing))

	st, err := store.Open(dbPath)
	require.NoError(t, err)
	defer st.Close()

	runs, err := st.ListRuns(t.Context(), store.ListFilter{})
	require.NoError(t, err)
	require.Len(t, runs, 2)

	assert.Equal(t, "ok-run", runs[0].ID)
	assert.Equal(t, store.StatusOK, runs[0].Status)
	assert.Equal(t, "[0,0,0,0,0]", runs[0].Rows)
	assert.True(t, runs[0].Truncated)

	assert.Equal(t, "failed-run", runs[1].ID)
	assert.Equal(t, "EVAL_FAILED", runs[1].Status)
	assert.Equal(t, int64(2), runs[1].Seq)
}

func TestRunCommandMetrics(t *testing.T) {
	opts, out := newRunCmd("text")
	cmd := NewRunCommand(opts)
	var stderr bytes.Buffer
	cmd.SetOut(out)
	cmd.SetErr(&stderr)
	cmd.SetArgs([]string{"--metrics", filepath.Join(queriesDir, "sum_ten.yaml")})
	require.NoError(t, cmd.Execute())

	assert.Contains(t, stderr.String(), `lcq_runs_total{status="ok"}`)
	assert.Contains(t, stderr.String(), "lcq_candidates_visited_total")
	assert.NotContains(t, out.String(), "lcq_", "metrics never go to stdout")
}
