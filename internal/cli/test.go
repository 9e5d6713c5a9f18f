package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/roach88/lcq/internal/engine"
	"github.com/roach88/lcq/internal/harness"
)

// TestOptions holds flags for the test command.
type TestOptions struct {
	*RootOptions
	Update bool   // regenerate golden files
	Filter string // query filter (glob on the file name without extension)
}

// QueryResult holds the result of a single query file.
type QueryResult struct {
	Name    string   `json:"name"`
	File    string   `json:"file"`
	Pass    bool     `json:"pass"`
	Skipped bool     `json:"skipped,omitempty"`
	Errors  []string `json:"errors,omitempty"`
}

// TestResult holds the overall test result.
type TestResult struct {
	Queries []QueryResult `json:"queries"`
	Passed  int           `json:"passed"`
	Failed  int           `json:"failed"`
	Skipped int           `json:"skipped"`
	Total   int           `json:"total"`
}

// NewTestCommand creates the test command.
func NewTestCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &TestOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "test <queries-dir>",
		Short: "Check queries against their expectations",
		Long: `Run every query under a directory and check its expect block and,
when present, its golden snapshot at golden/<file>.golden next to the
query. Queries with neither are skipped.

Exit codes:
  0 - All queries passed
  1 - One or more queries failed
  2 - Command error (invalid paths, etc.)

Examples:
  lcq test ./queries
  lcq test ./queries --filter "pyth*"
  lcq test ./queries --update
  lcq test ./queries --format json`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTests(opts, args[0], cmd)
		},
	}

	cmd.Flags().BoolVar(&opts.Update, "update", false, "regenerate golden files")
	cmd.Flags().StringVar(&opts.Filter, "filter", "", "filter queries by glob pattern")

	return cmd
}

func runTests(opts *TestOptions, dir string, cmd *cobra.Command) error {
	files, err := FindQueryFiles(dir, opts.Filter)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to find queries", err)
	}

	if len(files) == 0 {
		if opts.Format == "json" {
			return outputTestJSON(cmd, TestResult{Queries: []QueryResult{}})
		}
		fmt.Fprintln(cmd.OutOrStdout(), "No queries found.")
		return nil
	}

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	eng := opts.newEngine()

	result := TestResult{
		Queries: make([]QueryResult, 0, len(files)),
		Total:   len(files),
	}
	for _, file := range files {
		qr := runQueryTest(ctx, eng, file, opts)
		if opts.Format != "json" {
			printQueryResult(cmd, qr)
		}
		result.Queries = append(result.Queries, qr)

		switch {
		case qr.Skipped:
			result.Skipped++
		case qr.Pass:
			result.Passed++
		default:
			result.Failed++
		}
	}

	if opts.Format == "json" {
		return outputTestJSON(cmd, result)
	}
	return outputTestText(cmd, result)
}

// runQueryTest loads, checks and runs one query file.
func runQueryTest(ctx context.Context, eng *engine.Engine, file string, opts *TestOptions) QueryResult {
	qr := QueryResult{Name: baseName(file), File: file}
	fail := func(msgs ...string) QueryResult {
		qr.Errors = append(qr.Errors, msgs...)
		return qr
	}

	q, err := LoadQuery(file)
	if err != nil {
		return fail(err.Error())
	}
	if q.Name != "" {
		qr.Name = q.Name
	}

	if errs := CheckQuery(q); len(errs) > 0 {
		msgs := make([]string, len(errs))
		for i, e := range errs {
			msgs[i] = e.Error()
		}
		return fail(msgs...)
	}

	goldenPath := goldenFilePath(file)
	hasGolden := fileExists(goldenPath)
	if q.Expect == nil && !hasGolden && !opts.Update {
		qr.Skipped = true
		return qr
	}

	res, err := harness.Run(ctx, eng, q)
	if err != nil {
		return fail(err.Error())
	}
	qr.Errors = append(qr.Errors, res.Errors...)
	if res.Run == nil {
		return qr
	}

	snapshot, err := harness.Snapshot(q.Name, res.Run.Rows)
	if err != nil {
		return fail(fmt.Sprintf("failed to render snapshot: %v", err))
	}

	switch {
	case opts.Update:
		if err := writeGolden(goldenPath, snapshot); err != nil {
			return fail(fmt.Sprintf("[%s] %v", ErrCodeWriteFailed, err))
		}
	case hasGolden:
		match, err := compareWithGolden(goldenPath, snapshot)
		if err != nil {
			return fail(fmt.Sprintf("golden comparison failed: %v", err))
		}
		if !match {
			qr.Errors = append(qr.Errors, "rows do not match golden file (run with --update to regenerate)")
		}
	}

	qr.Pass = len(qr.Errors) == 0
	return qr
}

func baseName(file string) string {
	base := filepath.Base(file)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

// goldenFilePath returns the path to the golden file for a query file.
func goldenFilePath(file string) string {
	return filepath.Join(filepath.Dir(file), "golden", baseName(file)+".golden")
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return !errors.Is(err, fs.ErrNotExist)
}

func writeGolden(path string, data []byte) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create golden directory: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write golden file: %w", err)
	}
	return nil
}

// compareWithGolden ignores surrounding whitespace so editors that add a
// trailing newline do not break the comparison.
func compareWithGolden(path string, snapshot []byte) (bool, error) {
	golden, err := os.ReadFile(path)
	if err != nil {
		return false, fmt.Errorf("failed to read golden file: %w", err)
	}
	return bytes.Equal(bytes.TrimSpace(golden), bytes.TrimSpace(snapshot)), nil
}

func printQueryResult(cmd *cobra.Command, qr QueryResult) {
	w := cmd.OutOrStdout()
	switch {
	case qr.Skipped:
		fmt.Fprintf(w, "- %s (skipped: no expect block or golden file)\n", qr.Name)
	case qr.Pass:
		fmt.Fprintf(w, "✓ %s\n", qr.Name)
	default:
		fmt.Fprintf(w, "✗ %s\n", qr.Name)
		for _, e := range qr.Errors {
			fmt.Fprintf(w, "  %s\n", e)
		}
	}
}

// outputTestJSON outputs the test result as JSON.
func outputTestJSON(cmd *cobra.Command, result TestResult) error {
	response := CLIResponse{Status: "ok", Data: result}
	if result.Failed > 0 {
		response.Status = "error"
		response.Error = &CLIError{
			Code:    "E_TEST_FAILED",
			Message: fmt.Sprintf("%d query(ies) failed", result.Failed),
		}
	}

	encoder := json.NewEncoder(cmd.OutOrStdout())
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(response); err != nil {
		return err
	}

	if result.Failed > 0 {
		return NewExitError(ExitFailure, fmt.Sprintf("%d query(ies) failed", result.Failed))
	}
	return nil
}

// outputTestText outputs the test summary as text.
func outputTestText(cmd *cobra.Command, result TestResult) error {
	w := cmd.OutOrStdout()

	fmt.Fprintln(w)
	fmt.Fprintf(w, "Test Summary: %d passed, %d failed, %d skipped, %d total\n",
		result.Passed, result.Failed, result.Skipped, result.Total)

	if result.Failed > 0 {
		return NewExitError(ExitFailure, fmt.Sprintf("%d query(ies) failed", result.Failed))
	}

	fmt.Fprintln(w, "✓ All queries passed")
	return nil
}
