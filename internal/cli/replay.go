package cli

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/roach88/lcq/internal/store"
)

// ReplayOptions holds flags for the replay command.
type ReplayOptions struct {
	*RootOptions
	Database string
	RunID    string // optional - specific run only
	Query    string // optional - runs of this query only
}

// ReplayRunResult holds the replay result for a single stored run.
type ReplayRunResult struct {
	RunID         string `json:"run_id"`
	ReplayID      string `json:"replay_id"`
	Query         string `json:"query"`
	Status        string `json:"status"`
	ReplayStatus  string `json:"replay_status"`
	Deterministic bool   `json:"deterministic"`
}

// ReplayResult holds the overall replay result.
type ReplayResult struct {
	Runs             []ReplayRunResult `json:"runs"`
	TotalRuns        int               `json:"total_runs"`
	AllDeterministic bool              `json:"all_deterministic"`
}

// NewReplayCommand creates the replay command.
func NewReplayCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ReplayOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "replay",
		Short: "Re-run recorded queries and verify determinism",
		Long: `Re-run queries recorded with "lcq run --db" and check that each one
produces the same status and rows as when it was recorded. Every replay is
stored next to the run it checked.

Exit codes:
  0 - All runs are deterministic
  1 - Determinism verification failed (differences detected)
  2 - Command error (database not found, unknown run, etc.)

Examples:
  lcq replay --db ./history.db
  lcq replay --db ./history.db --run 0190c2a4-...
  lcq replay --db ./history.db --query pythagorean --format json`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runReplay(opts, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Database, "db", "", "path to SQLite history database (required)")
	_ = cmd.MarkFlagRequired("db")
	cmd.Flags().StringVar(&opts.RunID, "run", "", "replay a specific run only")
	cmd.Flags().StringVar(&opts.Query, "query", "", "replay runs of this query only")

	return cmd
}

func runReplay(opts *ReplayOptions, cmd *cobra.Command) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	st, err := openHistory(opts.Database)
	if err != nil {
		return err
	}
	defer st.Close()

	eng := opts.newEngine()

	var outcomes []store.ReplayOutcome
	if opts.RunID != "" {
		out, err := st.Replay(ctx, eng, opts.RunID)
		if errors.Is(err, store.ErrRunNotFound) {
			return WrapExitError(ExitCommandError, "unknown run", err)
		}
		if err != nil {
			return WrapExitError(ExitCommandError, "failed to replay run", err)
		}
		outcomes = []store.ReplayOutcome{out}
	} else {
		outcomes, err = st.ReplayAll(ctx, eng, store.ListFilter{Query: opts.Query})
		if err != nil {
			return WrapExitError(ExitCommandError, "failed to replay runs", err)
		}
	}

	result := ReplayResult{
		Runs:             make([]ReplayRunResult, 0, len(outcomes)),
		TotalRuns:        len(outcomes),
		AllDeterministic: true,
	}
	for _, out := range outcomes {
		result.Runs = append(result.Runs, ReplayRunResult{
			RunID:         out.Run.ID,
			ReplayID:      out.Replay.ReplayID,
			Query:         out.Run.QueryName,
			Status:        out.Run.Status,
			ReplayStatus:  out.Replay.Status,
			Deterministic: out.Deterministic(),
		})
		if !out.Deterministic() {
			result.AllDeterministic = false
		}
	}

	if opts.Format == "json" {
		return outputReplayJSON(cmd, result)
	}
	return outputReplayText(cmd, result, opts.Verbose)
}

// openHistory opens an existing history database. A missing file is a
// command error rather than a fresh empty database.
func openHistory(path string) (*store.Store, error) {
	if !fileExists(path) {
		return nil, NewExitError(ExitCommandError, fmt.Sprintf("history database not found: %s", path))
	}
	st, err := store.Open(path)
	if err != nil {
		return nil, WrapExitError(ExitCommandError, "failed to open database", err)
	}
	return st, nil
}

// outputReplayJSON outputs the replay result as JSON.
func outputReplayJSON(cmd *cobra.Command, result ReplayResult) error {
	response := CLIResponse{
		Status: "ok",
		Data:   result,
	}

	if !result.AllDeterministic {
		response.Status = "error"
		response.Error = &CLIError{
			Code:    "E_DETERMINISM",
			Message: "determinism verification failed",
		}
	}

	encoder := json.NewEncoder(cmd.OutOrStdout())
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(response); err != nil {
		return err
	}

	if !result.AllDeterministic {
		return NewExitError(ExitFailure, "determinism verification failed")
	}
	return nil
}

// outputReplayText outputs the replay result as text.
func outputReplayText(cmd *cobra.Command, result ReplayResult, verbose bool) error {
	w := cmd.OutOrStdout()

	if result.TotalRuns == 0 {
		fmt.Fprintln(w, "No runs found in database.")
		return nil
	}

	fmt.Fprintf(w, "Replay Summary: %d run(s)\n", result.TotalRuns)
	fmt.Fprintln(w)

	for _, run := range result.Runs {
		mark := "✓"
		if !run.Deterministic {
			mark = "✗"
		}
		fmt.Fprintf(w, "%s %s (%s)\n", mark, run.Query, run.RunID)

		if verbose {
			fmt.Fprintf(w, "  Replay: %s\n", run.ReplayID)
		}
		if !run.Deterministic {
			fmt.Fprintf(w, "  Recorded %s, replayed %s: results differ\n", run.Status, run.ReplayStatus)
		}
	}
	fmt.Fprintln(w)

	if result.AllDeterministic {
		fmt.Fprintln(w, "✓ All runs verified deterministic")
		return nil
	}

	fmt.Fprintln(w, "✗ Determinism verification failed")
	return NewExitError(ExitFailure, "determinism verification failed")
}
