package cli

import (
	"bytes"
	"encoding/json"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/lcq/internal/engine"
	"github.com/roach88/lcq/internal/testutil"
)

var queriesDir = filepath.Join("..", "..", "testdata", "queries")

// executeRoot runs the full command tree so flags and environment
// variables go through viper.
func executeRoot(t *testing.T, args ...string) (stdout, stderr string, err error) {
	t.Helper()
	opts := &RootOptions{IDGenerator: testutil.NewFixedIDGenerator("")}
	cmd := newRootCommand(opts)
	out := &bytes.Buffer{}
	errOut := &bytes.Buffer{}
	cmd.SetOut(out)
	cmd.SetErr(errOut)
	cmd.SetArgs(args)
	err = cmd.Execute()
	return out.String(), errOut.String(), err
}

func TestRootCommand(t *testing.T) {
	cmd := NewRootCommand()
	require.NotNil(t, cmd)
	assert.Equal(t, "lcq", cmd.Use)
	assert.Contains(t, cmd.Long, "list comprehensions")
}

func TestCommandPresence(t *testing.T) {
	cmd := NewRootCommand()
	for _, name := range []string{"run", "validate", "test", "replay", "trace"} {
		t.Run(name, func(t *testing.T) {
			sub, _, err := cmd.Find([]string{name})
			require.NoError(t, err)
			assert.Equal(t, name, sub.Name())
		})
	}
}

func TestGlobalFlags(t *testing.T) {
	cmd := NewRootCommand()

	verboseFlag := cmd.PersistentFlags().Lookup("verbose")
	require.NotNil(t, verboseFlag)
	assert.Equal(t, "v", verboseFlag.Shorthand)
	assert.Equal(t, "false", verboseFlag.DefValue)

	formatFlag := cmd.PersistentFlags().Lookup("format")
	require.NotNil(t, formatFlag)
	assert.Equal(t, "text", formatFlag.DefValue)

	maxStepsFlag := cmd.PersistentFlags().Lookup("max-steps")
	require.NotNil(t, maxStepsFlag)
	assert.Equal(t, "10000000", maxStepsFlag.DefValue)
}

func TestRunCommandFlags(t *testing.T) {
	cmd := NewRootCommand()
	runCmd, _, err := cmd.Find([]string{"run"})
	require.NoError(t, err)
	assert.NotNil(t, runCmd.Flags().Lookup("limit"))
	assert.NotNil(t, runCmd.Flags().Lookup("stats"))
	assert.NotNil(t, runCmd.Flags().Lookup("db"))
}

func TestTestCommandFlags(t *testing.T) {
	cmd := NewRootCommand()
	testCmd, _, err := cmd.Find([]string{"test"})
	require.NoError(t, err)
	assert.NotNil(t, testCmd.Flags().Lookup("update"))
	assert.NotNil(t, testCmd.Flags().Lookup("filter"))
}

func TestInvalidFormatRejected(t *testing.T) {
	_, _, err := executeRoot(t, "--format", "xml", "validate", filepath.Join(queriesDir, "pythagorean.yaml"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), `invalid format "xml"`)
}

func TestFormatFromEnvironment(t *testing.T) {
	t.Setenv("LCQ_FORMAT", "json")

	out, _, err := executeRoot(t, "run", filepath.Join(queriesDir, "pythagorean.yaml"))
	require.NoError(t, err)

	var resp CLIResponse
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	assert.Equal(t, "ok", resp.Status)
	assert.Equal(t, testutil.FixedRunID, resp.TraceID)
}

func TestFlagOverridesEnvironment(t *testing.T) {
	t.Setenv("LCQ_FORMAT", "json")

	out, _, err := executeRoot(t, "--format", "text", "run", filepath.Join(queriesDir, "sum_ten.yaml"))
	require.NoError(t, err)
	assert.Equal(t, "0\n0\n0\n0\n0\n", out)
}

func TestMaxStepsFromEnvironment(t *testing.T) {
	t.Setenv("LCQ_MAX_STEPS", "100")

	out, _, err := executeRoot(t, "--format", "json", "run", filepath.Join(queriesDir, "pythagorean.yaml"))
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
	assert.True(t, engine.IsQuotaError(err))

	var resp CLIResponse
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	assert.Equal(t, "error", resp.Status)
	require.NotNil(t, resp.Error)
	assert.Equal(t, "QUOTA_EXCEEDED", resp.Error.Code)
	assert.Equal(t, testutil.FixedRunID, resp.TraceID)
}

func TestVerboseLogsToStderr(t *testing.T) {
	out, errOut, err := executeRoot(t, "-v", "run", filepath.Join(queriesDir, "sum_ten.yaml"))
	require.NoError(t, err)
	assert.Equal(t, "0\n0\n0\n0\n0\n", out)
	assert.Contains(t, errOut, "run starting")
	assert.Contains(t, errOut, "source loaded")
}

func TestQuietByDefault(t *testing.T) {
	_, errOut, err := executeRoot(t, "run", filepath.Join(queriesDir, "sum_ten.yaml"))
	require.NoError(t, err)
	assert.Empty(t, errOut)
}
