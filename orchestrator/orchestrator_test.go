package orchestrator

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/flanksource/lit/directive"
	"github.com/flanksource/lit/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeTestFile(t *testing.T, body string) model.TestFile {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "case.test")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))

	tf, err := directive.ParseFile(path)
	require.NoError(t, err)
	return tf
}

func TestRunFile_HappyPath(t *testing.T) {
	tf := writeTestFile(t, "; RUN: echo hello\n; CHECK: hello\n")
	result := RunFile(tf, model.Config{Shell: "bash"})

	assert.Equal(t, model.Pass, result.OverallResult.Kind)
	require.Len(t, result.IndividualRunResults, 1)
	assert.Equal(t, model.Pass, result.IndividualRunResults[0].Kind.Kind)
}

func TestRunFile_NoRunCommandsIsSkip(t *testing.T) {
	tf := writeTestFile(t, "just prose, no directives\n")
	result := RunFile(tf, model.Config{Shell: "bash"})
	assert.Equal(t, model.Skip, result.OverallResult.Kind)
}

func TestRunFile_CheckFailureFails(t *testing.T) {
	tf := writeTestFile(t, "; RUN: echo hello\n; CHECK: goodbye\n")
	result := RunFile(tf, model.Config{Shell: "bash"})

	assert.Equal(t, model.FailOutcome, result.OverallResult.Kind)
	require.NotNil(t, result.OverallResult.FailReason)
	assert.Equal(t, model.CheckFailed, result.OverallResult.FailReason.Kind)
}

func TestRunFile_NonZeroExitFails(t *testing.T) {
	tf := writeTestFile(t, "; RUN: exit 1\n")
	result := RunFile(tf, model.Config{Shell: "bash"})

	assert.Equal(t, model.FailOutcome, result.OverallResult.Kind)
	assert.Equal(t, model.UnsuccessfulExecution, result.OverallResult.FailReason.Kind)
}

func TestRunFile_MissingShellIsError(t *testing.T) {
	tf := writeTestFile(t, "; RUN: echo hello\n")
	result := RunFile(tf, model.Config{Shell: "definitely-not-a-shell"})
	assert.Equal(t, model.ErrorOutcome, result.OverallResult.Kind)
}

func TestRunFile_XFailInvertsFailToExpectedFailure(t *testing.T) {
	tf := writeTestFile(t, "; RUN: exit 1\n; XFAIL\n")
	result := RunFile(tf, model.Config{Shell: "bash"})
	assert.Equal(t, model.ExpectedFailure, result.OverallResult.Kind)
}

func TestRunFile_XFailInvertsPassToUnexpectedPass(t *testing.T) {
	tf := writeTestFile(t, "; RUN: echo hello\n; CHECK: hello\n; XFAIL\n")
	result := RunFile(tf, model.Config{Shell: "bash"})
	assert.Equal(t, model.UnexpectedPass, result.OverallResult.Kind)
}

func TestRunFile_StopsAtFirstErroneousRunAcrossMultipleRuns(t *testing.T) {
	tf := writeTestFile(t, "; RUN: exit 1\n; RUN: echo should-not-run\n; CHECK: should-not-run\n")
	result := RunFile(tf, model.Config{Shell: "bash"})

	assert.Equal(t, model.FailOutcome, result.OverallResult.Kind)
	assert.Len(t, result.IndividualRunResults, 1, "second RUN must not execute after the first erroneous RUN")
}

func TestRunFile_WalksFullCommandListForEveryRun(t *testing.T) {
	// CHECK: right textually follows both RUNs, but per spec.md §4.4 each
	// RUN walks the entire command list (not just the checks that follow
	// it): RUN 1's own output ("wrong") must be checked against it too,
	// and since that fails, RUN 2 must never execute.
	tf := writeTestFile(t, "; RUN: echo wrong\n; RUN: echo right\n; CHECK: right\n")
	result := RunFile(tf, model.Config{Shell: "bash"})

	assert.Equal(t, model.FailOutcome, result.OverallResult.Kind)
	assert.Len(t, result.IndividualRunResults, 1, "RUN 1's own output fails the check, so RUN 2 must never run")
}

func TestRunFile_XFailAppliedPerRunAllowsContinuingAfterExpectedFailure(t *testing.T) {
	// XFAIL inverts each RUN's own result before that RUN's erroneousness
	// decides whether evaluation continues. RUN 1 fails (-> ExpectedFailure,
	// non-erroneous, so RUN 2 still executes); RUN 2 passes (-> UnexpectedPass,
	// erroneous).
	tf := writeTestFile(t, "; XFAIL\n; RUN: exit 1\n; RUN: echo ok\n")
	result := RunFile(tf, model.Config{Shell: "bash"})

	require.Len(t, result.IndividualRunResults, 2, "RUN 1's inverted result is non-erroneous, so RUN 2 must still run")
	assert.Equal(t, model.ExpectedFailure, result.IndividualRunResults[0].Kind.Kind)
	assert.Equal(t, model.UnexpectedPass, result.IndividualRunResults[1].Kind.Kind)
	assert.Equal(t, model.UnexpectedPass, result.OverallResult.Kind)
}

func TestRunFile_CaptureAcrossRunsWithinSameRunOnly(t *testing.T) {
	tf := writeTestFile(t, "; RUN: echo token-4471\n; CHECK: token-[[id:[0-9]+]]\n; RUN: echo @id\n")
	result := RunFile(tf, model.Config{Shell: "bash"})
	assert.Equal(t, model.ErrorOutcome, result.OverallResult.Kind, "captures must not leak into a later RUN's invocation resolution")
}
