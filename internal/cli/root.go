package cli

import (
	"fmt"
	"io"
	"log/slog"
	"slices"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/roach88/lcq/internal/engine"
)

// RootOptions holds global flags for all commands.
type RootOptions struct {
	Verbose  bool
	Format   string // "json" | "text"
	MaxSteps int

	// IDGenerator overrides the run ID generator (for testing).
	// If nil, the engine default (UUIDv7) is used.
	IDGenerator engine.IDGenerator

	logger *slog.Logger
}

// ValidFormats defines the allowed output formats.
var ValidFormats = []string{"text", "json"}

// EnvPrefix prefixes the environment variables bound to global flags,
// e.g. LCQ_FORMAT, LCQ_VERBOSE, LCQ_MAX_STEPS.
const EnvPrefix = "LCQ"

// NewRootCommand creates the root command for the lcq CLI.
func NewRootCommand() *cobra.Command {
	return newRootCommand(&RootOptions{})
}

func newRootCommand(opts *RootOptions) *cobra.Command {
	v := viper.New()
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	cmd := &cobra.Command{
		Use:   "lcq",
		Short: "lcq - lazy list comprehension queries",
		Long: `Run declarative list comprehensions over literal values, integer
ranges and SQLite tables.

A query names its sources, filters candidates with where expressions and
shapes results with a select expression. Enumeration is lazy: a limit stops
the search as soon as enough results are found.

Runs can be recorded in a SQLite history database, inspected with trace and
re-run with replay to verify that results are deterministic.`,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			opts.Verbose = v.GetBool("verbose")
			opts.Format = v.GetString("format")
			opts.MaxSteps = v.GetInt("max-steps")

			if !isValidFormat(opts.Format) {
				return fmt.Errorf("invalid format %q: must be one of %v", opts.Format, ValidFormats)
			}

			opts.logger = newLogger(cmd.ErrOrStderr(), opts.Verbose)
			return nil
		},
	}

	flags := cmd.PersistentFlags()
	flags.BoolP("verbose", "v", false, "verbose output")
	flags.String("format", "text", "output format (json|text)")
	flags.Int("max-steps", engine.DefaultMaxSteps, "maximum candidates visited per query (0 = unlimited)")
	for _, name := range []string{"verbose", "format", "max-steps"} {
		mustBindPFlag(v, name, flags.Lookup(name))
	}

	cmd.AddCommand(NewRunCommand(opts))
	cmd.AddCommand(NewValidateCommand(opts))
	cmd.AddCommand(NewTestCommand(opts))
	cmd.AddCommand(NewReplayCommand(opts))
	cmd.AddCommand(NewTraceCommand(opts))

	return cmd
}

// mustBindPFlag binds key to a cobra flag and panics if the binding fails.
func mustBindPFlag(v *viper.Viper, key string, flag *pflag.Flag) {
	if err := v.BindPFlag(key, flag); err != nil {
		panic("failed to bind pflag: " + err.Error())
	}
}

// newLogger writes text records to w: Debug and up when verbose, otherwise
// only warnings and errors so normal output stays clean.
func newLogger(w io.Writer, verbose bool) *slog.Logger {
	level := slog.LevelWarn
	if verbose {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
}

// Logger returns the logger configured by the root command, or a
// warn-level stderr-less logger when the command ran standalone.
func (o *RootOptions) Logger() *slog.Logger {
	if o.logger == nil {
		o.logger = newLogger(io.Discard, false)
	}
	return o.logger
}

// newEngine builds an engine from the global options.
func (o *RootOptions) newEngine() *engine.Engine {
	engineOpts := []engine.Option{
		engine.WithMaxSteps(o.MaxSteps),
		engine.WithLogger(o.Logger()),
	}
	if o.IDGenerator != nil {
		engineOpts = append(engineOpts, engine.WithIDGenerator(o.IDGenerator))
	}
	return engine.New(engineOpts...)
}

// isValidFormat checks if the format is one of the allowed values.
func isValidFormat(format string) bool {
	return slices.Contains(ValidFormats, format)
}
