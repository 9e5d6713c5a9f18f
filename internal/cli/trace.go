package cli

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/roach88/lcq/internal/store"
)

// TraceOptions holds flags for the trace command.
type TraceOptions struct {
	*RootOptions
	Database string
	RunID    string // optional - show one run in detail
	Query    string // optional - filter the timeline
	Limit    int    // optional - newest N runs
}

// TraceEntry is one run in the history timeline.
type TraceEntry struct {
	Seq       int64  `json:"seq"`
	RunID     string `json:"run_id"`
	Query     string `json:"query"`
	Status    string `json:"status"`
	Accepted  int    `json:"accepted"`
	Visited   int    `json:"visited"`
	Truncated bool   `json:"truncated,omitempty"`
}

// TraceDetail is a single run with its rows and replays.
type TraceDetail struct {
	Run     store.RunRecord      `json:"run"`
	Rows    json.RawMessage      `json:"rows"`
	Replays []store.ReplayRecord `json:"replays"`
}

// NewTraceCommand creates the trace command.
func NewTraceCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &TraceOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "trace",
		Short: "Inspect recorded runs",
		Long: `Show the run history recorded with "lcq run --db".

Without --run, lists runs in the order they were recorded. With --run,
shows one run in detail: its status, visit counts, rows and every replay
that checked it.

Examples:
  lcq trace --db ./history.db
  lcq trace --db ./history.db --query pythagorean --limit 5
  lcq trace --db ./history.db --run 0190c2a4-... --format json`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTrace(opts, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Database, "db", "", "path to SQLite history database (required)")
	_ = cmd.MarkFlagRequired("db")
	cmd.Flags().StringVar(&opts.RunID, "run", "", "show a specific run")
	cmd.Flags().StringVar(&opts.Query, "query", "", "list runs of this query only")
	cmd.Flags().IntVar(&opts.Limit, "limit", 0, "list only the newest N runs")

	return cmd
}

func runTrace(opts *TraceOptions, cmd *cobra.Command) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	st, err := openHistory(opts.Database)
	if err != nil {
		return err
	}
	defer st.Close()

	if opts.RunID != "" {
		return traceRun(ctx, st, opts, cmd)
	}
	return traceTimeline(ctx, st, opts, cmd)
}

func traceTimeline(ctx context.Context, st *store.Store, opts *TraceOptions, cmd *cobra.Command) error {
	runs, err := st.ListRuns(ctx, store.ListFilter{Query: opts.Query, Limit: opts.Limit})
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to list runs", err)
	}

	entries := make([]TraceEntry, len(runs))
	for i, r := range runs {
		entries[i] = TraceEntry{
			Seq:       r.Seq,
			RunID:     r.ID,
			Query:     r.QueryName,
			Status:    r.Status,
			Accepted:  r.Accepted,
			Visited:   r.Visited,
			Truncated: r.Truncated,
		}
	}

	if opts.Format == "json" {
		return outputTraceJSON(cmd, entries)
	}

	w := cmd.OutOrStdout()
	if len(entries) == 0 {
		fmt.Fprintln(w, "No runs found in database.")
		return nil
	}

	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "SEQ\tRUN\tQUERY\tSTATUS\tROWS\tVISITED")
	for _, e := range entries {
		fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%d\t%d\n", e.Seq, e.RunID, e.Query, e.Status, e.Accepted, e.Visited)
	}
	return tw.Flush()
}

func traceRun(ctx context.Context, st *store.Store, opts *TraceOptions, cmd *cobra.Command) error {
	rec, err := st.ReadRun(ctx, opts.RunID)
	if errors.Is(err, store.ErrRunNotFound) {
		return WrapExitError(ExitCommandError, "unknown run", err)
	}
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to read run", err)
	}

	replays, err := st.ReadReplays(ctx, rec.ID)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to read replays", err)
	}

	if opts.Format == "json" {
		return outputTraceJSON(cmd, TraceDetail{
			Run:     rec,
			Rows:    json.RawMessage(rec.Rows),
			Replays: replays,
		})
	}

	w := cmd.OutOrStdout()
	fmt.Fprintf(w, "Run: %s (seq %d)\n", rec.ID, rec.Seq)
	fmt.Fprintf(w, "Query: %s\n", rec.QueryName)
	fmt.Fprintf(w, "Status: %s\n", rec.Status)
	if rec.Error != "" {
		fmt.Fprintf(w, "Error: %s\n", rec.Error)
	}
	fmt.Fprintf(w, "Visited: %d, accepted: %d", rec.Visited, rec.Accepted)
	if rec.Truncated {
		fmt.Fprint(w, " (truncated at limit)")
	}
	fmt.Fprintln(w)
	if opts.Verbose {
		fmt.Fprintf(w, "Elapsed: %s\n", time.Duration(rec.ElapsedNS))
		fmt.Fprintf(w, "Query hash: %s\n", rec.QueryHash)
		fmt.Fprintf(w, "Rows hash: %s\n", rec.RowsHash)
	}
	fmt.Fprintf(w, "Rows: %s\n", rec.Rows)

	if len(replays) > 0 {
		fmt.Fprintln(w, "Replays:")
		for _, r := range replays {
			mark := "✓"
			if !r.Matched {
				mark = "✗"
			}
			fmt.Fprintf(w, "  %s %s %s\n", mark, r.ReplayID, r.Status)
		}
	}
	return nil
}

func outputTraceJSON(cmd *cobra.Command, data any) error {
	encoder := json.NewEncoder(cmd.OutOrStdout())
	encoder.SetEscapeHTML(false)
	encoder.SetIndent("", "  ")
	return encoder.Encode(CLIResponse{Status: "ok", Data: data})
}
