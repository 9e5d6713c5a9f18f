package cli

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/roach88/lcq/internal/query"
)

// ValidationResult holds validation results.
type ValidationResult struct {
	Query   string                  `json:"query,omitempty"`
	Sources int                     `json:"sources"`
	Valid   bool                    `json:"valid"`
	Errors  []query.ValidationError `json:"errors,omitempty"`
}

// NewValidateCommand creates the validate command.
func NewValidateCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "validate <query-file>",
		Short: "Check a query without running it",
		Long: `Decode a query file, check its structure and compile its where and
select expressions. Sources are not loaded, so a missing database is not
reported here.

Exit codes:
  0 - Query is valid
  1 - Query is invalid
  2 - Command error (missing file, unsupported extension)`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runValidate(rootOpts, args[0], cmd)
		},
	}

	return cmd
}

func runValidate(opts *RootOptions, path string, cmd *cobra.Command) error {
	formatter := &OutputFormatter{
		Format:    opts.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(),
		Verbose:   opts.Verbose,
	}

	q, err := LoadQuery(path)
	if err != nil {
		return outputLoadError(formatter, err)
	}
	formatter.VerboseLog("Loaded query %q with %d source(s)", q.Name, len(q.From))

	if errs := CheckQuery(q); len(errs) > 0 {
		return outputValidationErrors(formatter, errs)
	}

	if formatter.Format == "json" {
		return formatter.Success(ValidationResult{Query: q.Name, Sources: len(q.From), Valid: true})
	}
	fmt.Fprintf(formatter.Writer, "✓ %s is valid\n", q.Name)
	return nil
}

// outputLoadError reports a LoadError and maps it to an exit code: a file
// that exists but does not decode is invalid input (1), anything else is a
// command error (2).
func outputLoadError(formatter *OutputFormatter, err error) error {
	var loadErr *LoadError
	if !errors.As(err, &loadErr) {
		_ = formatter.Error(ErrCodeGeneric, err.Error(), nil)
		return WrapExitError(ExitCommandError, "failed to load query", err)
	}

	var details any
	if loadErr.Path != "" {
		details = map[string]string{"path": loadErr.Path}
	}
	_ = formatter.Error(loadErr.Code, loadErr.Message, details)

	code := ExitCommandError
	if loadErr.Code == ErrCodeLoadFailed {
		code = ExitFailure
	}
	return WrapExitError(code, "failed to load query", loadErr)
}

// outputValidationErrors outputs multiple validation errors.
func outputValidationErrors(formatter *OutputFormatter, errs []query.ValidationError) error {
	if formatter.Format == "json" {
		response := CLIResponse{
			Status: "error",
			Data:   ValidationResult{Valid: false, Errors: errs},
			Error: &CLIError{
				Code:    errs[0].Code,
				Message: errs[0].Message,
			},
		}

		encoder := json.NewEncoder(formatter.Writer)
		encoder.SetIndent("", "  ")
		if err := encoder.Encode(response); err != nil {
			return err
		}
		return NewExitError(ExitFailure, fmt.Sprintf("validation failed with %d error(s)", len(errs)))
	}

	fmt.Fprintln(formatter.Writer, "✗ Validation failed")
	fmt.Fprintln(formatter.Writer)
	for _, err := range errs {
		fmt.Fprintf(formatter.Writer, "  %s\n", err.Error())
	}

	return NewExitError(ExitFailure, fmt.Sprintf("validation failed with %d error(s)", len(errs)))
}
