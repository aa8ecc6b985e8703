package artifact

import (
	"os"
	"path/filepath"
	"strconv"
	"testing"

	"github.com/flanksource/lit/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDump_SingleRunWritesExpectedFiles(t *testing.T) {
	root := t.TempDir()
	testFile := filepath.Join(t.TempDir(), "case.test")
	require.NoError(t, os.WriteFile(testFile, []byte("; RUN: echo hi\n"), 0o644))

	result := model.TestResult{
		Path:          model.TestFilePath{Relative: "case.test"},
		OverallResult: model.PassResult(),
		IndividualRunResults: []model.IndividualRunResult{
			{Kind: model.PassResult(), CommandLine: "echo hi", Output: model.ProgramOutput{Stdout: "hi\n"}},
		},
	}

	require.NoError(t, Dump(root, result, testFile))

	dir := filepath.Join(root, "case.test")
	for _, name := range []string{"result.txt", "stdout.txt", "stderr.txt", "command-line.txt", "copy-of-test-case.test"} {
		_, err := os.Stat(filepath.Join(dir, name))
		assert.NoError(t, err, "expected %s to exist", name)
	}

	stdout, err := os.ReadFile(filepath.Join(dir, "stdout.txt"))
	require.NoError(t, err)
	assert.Equal(t, "hi\n", string(stdout))
}

func TestDump_MultipleRunsGetSeparateSubdirectories(t *testing.T) {
	root := t.TempDir()
	testFile := filepath.Join(t.TempDir(), "case.test")
	require.NoError(t, os.WriteFile(testFile, []byte("; RUN: echo one\n; RUN: echo two\n"), 0o644))

	result := model.TestResult{
		Path:          model.TestFilePath{Relative: "case.test"},
		OverallResult: model.PassResult(),
		IndividualRunResults: []model.IndividualRunResult{
			{Kind: model.PassResult(), CommandLine: "echo one"},
			{Kind: model.PassResult(), CommandLine: "echo two"},
		},
	}

	require.NoError(t, Dump(root, result, testFile))

	wantCommandLines := []string{"echo one", "echo two"}
	for i := 1; i <= 2; i++ {
		dir := filepath.Join(root, "case.test", "run-command-"+strconv.Itoa(i))
		data, err := os.ReadFile(filepath.Join(dir, "command-line.txt"))
		require.NoError(t, err)
		assert.Equal(t, wantCommandLines[i-1], string(data), "run-command-%d should hold its own invocation, not the last one's", i)
	}
}

func TestWriteSuiteStatus(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, WriteSuiteStatus(root, true))
	data, err := os.ReadFile(filepath.Join(root, "suite-status.txt"))
	require.NoError(t, err)
	assert.Equal(t, "successful\n", string(data))
}

