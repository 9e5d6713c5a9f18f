package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/roach88/lcq/internal/engine"
	"github.com/roach88/lcq/internal/query"
	"github.com/roach88/lcq/internal/store"
	"github.com/roach88/lcq/lc"
)

// RunOptions holds flags for the run command.
type RunOptions struct {
	*RootOptions
	Limit    int // overrides the query's limit when > 0
	Stats    bool
	Database string // run history; empty disables recording
	Metrics  bool
}

// RunOutput is the JSON payload of a successful run.
type RunOutput struct {
	*engine.Result
	Count int `json:"count"`
}

// NewRunCommand creates the run command.
func NewRunCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &RunOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "run <query-file>",
		Short: "Run a query and print its rows",
		Long: `Load a query file (.yaml, .yml or .cue), enumerate its sources lazily
and print every accepted row.

Text output prints one row per line. JSON output wraps the rows, visit
counts and run ID in the standard response envelope.

Example:
  lcq run ./queries/pythagorean.yaml
  lcq run ./queries/pythagorean.yaml --limit 1 --format json
  lcq run ./queries/pythagorean.yaml --db ./history.db
  LCQ_MAX_STEPS=1000 lcq run ./queries/big.cue`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runQuery(opts, args[0], cmd)
		},
	}

	cmd.Flags().IntVar(&opts.Limit, "limit", 0, "stop after this many rows (overrides the query's limit)")
	cmd.Flags().BoolVar(&opts.Stats, "stats", false, "print visit counts after the rows (text format)")
	cmd.Flags().StringVar(&opts.Database, "db", "", "record the run in this SQLite history database")
	cmd.Flags().BoolVar(&opts.Metrics, "metrics", false, "write run metrics to stderr in Prometheus text format")

	return cmd
}

func runQuery(opts *RunOptions, path string, cmd *cobra.Command) error {
	formatter := &OutputFormatter{
		Format:    opts.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(),
		Verbose:   opts.Verbose,
	}

	if opts.Limit < 0 {
		return NewExitError(ExitCommandError, fmt.Sprintf("invalid --limit %d: must be >= 0", opts.Limit))
	}

	q, err := LoadQuery(path)
	if err != nil {
		return outputLoadError(formatter, err)
	}
	if opts.Limit > 0 {
		q.Limit = opts.Limit
	}

	// Use the command's context if set (tests), otherwise background.
	parent := cmd.Context()
	if parent == nil {
		parent = context.Background()
	}
	ctx, stop := signal.NotifyContext(parent, os.Interrupt, syscall.SIGTERM)
	defer stop()

	if opts.Metrics {
		defer func() {
			if err := engine.WriteMetrics(formatter.GetErrWriter()); err != nil {
				opts.Logger().Warn("failed to write metrics", "error", err)
			}
		}()
	}

	res, err := opts.newEngine().Run(ctx, q)
	if opts.Database != "" {
		if recErr := recordRun(ctx, opts, q, res, err); recErr != nil {
			return WrapExitError(ExitCommandError, "failed to record run", recErr)
		}
	}
	if err != nil {
		var rerr *engine.RuntimeError
		if errors.As(err, &rerr) {
			_ = formatter.RuntimeError(rerr)
		} else {
			_ = formatter.Error(ErrCodeGeneric, err.Error(), nil)
		}
		return WrapExitError(ExitFailure, "query failed", err)
	}

	if formatter.Format == "json" {
		return formatter.SuccessWithTrace(RunOutput{Result: res, Count: len(res.Rows)}, res.RunID)
	}

	w := formatter.Writer
	for _, row := range res.Rows {
		fmt.Fprintln(w, lc.Format(row))
	}
	if opts.Stats {
		fmt.Fprintf(w, "# %d row(s), %d visited, %d accepted", len(res.Rows), res.Visited, res.Accepted)
		if res.Truncated {
			fmt.Fprint(w, ", truncated at limit")
		}
		fmt.Fprintln(w)
	}
	formatter.VerboseLog("run %s finished in %s", res.RunID, res.Elapsed)
	return nil
}

// recordRun stores the outcome of a run, failed or not, in the history
// database.
func recordRun(ctx context.Context, opts *RunOptions, q *query.Query, res *engine.Result, runErr error) error {
	rec, err := store.NewRunRecord(q, res, runErr)
	if err != nil {
		return err
	}

	st, err := store.Open(opts.Database)
	if err != nil {
		return err
	}
	defer st.Close()

	// A canceled run is still recorded
	seq, err := st.WriteRun(context.WithoutCancel(ctx), rec)
	if err != nil {
		return err
	}
	opts.Logger().Debug("run recorded", "run_id", rec.ID, "seq", seq, "db", opts.Database)
	return nil
}
