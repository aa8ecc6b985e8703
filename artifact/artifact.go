// Package artifact implements the optional per-test artifact dump
// described in spec.md §6: one directory per test file (and, when a file
// has more than one RUN, one subdirectory per RUN) holding the result,
// captured output and a copy of the test case itself, plus a suite-wide
// status file.
package artifact

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"

	"github.com/google/uuid"
	"github.com/flanksource/lit/model"
)

// Dump writes one test file's artifacts under root/<relative-path>, per
// spec.md §6. When the file ran more than one RUN, each gets its own
// run-command-N subdirectory so their outputs don't collide.
func Dump(root string, result model.TestResult, testFilePath string) error {
	base := filepath.Join(root, result.Path.Relative)
	runID := NewRunID()

	if len(result.IndividualRunResults) <= 1 {
		run := model.IndividualRunResult{Kind: result.OverallResult}
		if len(result.IndividualRunResults) == 1 {
			run = result.IndividualRunResults[0]
			run.Kind = result.OverallResult
		}
		return dumpOne(base, run, testFilePath, runID)
	}

	for i, run := range result.IndividualRunResults {
		dir := filepath.Join(base, fmt.Sprintf("run-command-%d", i+1))
		if err := dumpOne(dir, run, testFilePath, runID); err != nil {
			return err
		}
	}
	return nil
}

// dumpOne writes one RUN's artifacts. runID is recorded in result.txt, since
// the on-disk layout itself has no run id in its path.
func dumpOne(dir string, run model.IndividualRunResult, testFilePath, runID string) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating artifact directory %s: %w", dir, err)
	}

	writes := map[string]string{
		"result.txt":       resultDump(run.Kind) + "run: " + runID + "\n",
		"stdout.txt":       run.Output.Stdout,
		"stderr.txt":       run.Output.Stderr,
		"command-line.txt": run.CommandLine,
	}
	for name, content := range writes {
		if err := os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644); err != nil {
			return fmt.Errorf("writing %s: %w", name, err)
		}
	}

	ext := filepath.Ext(testFilePath)
	copyPath := filepath.Join(dir, "copy-of-test-case"+ext)
	data, err := os.ReadFile(testFilePath)
	if err != nil {
		return fmt.Errorf("reading test case %s: %w", testFilePath, err)
	}
	if err := os.WriteFile(copyPath, data, 0o644); err != nil {
		return fmt.Errorf("writing %s: %w", copyPath, err)
	}

	if runtime.GOOS != "windows" {
		symlinkPath := filepath.Join(dir, "symlink-to-test-case"+ext)
		_ = os.Remove(symlinkPath)
		if err := os.Symlink(testFilePath, symlinkPath); err != nil {
			return fmt.Errorf("symlinking %s: %w", symlinkPath, err)
		}
	}

	return nil
}

func resultDump(kind model.TestResultKind) string {
	switch kind.Kind {
	case model.FailOutcome:
		if kind.FailReason != nil {
			return fmt.Sprintf("%s: %s\n", kind.Kind, kind.FailReason.HumanSummary())
		}
		return kind.Kind.String() + "\n"
	case model.ErrorOutcome:
		return fmt.Sprintf("%s: %s\n", kind.Kind, kind.ErrorMessage)
	default:
		return kind.Kind.String() + "\n"
	}
}

// WriteSuiteStatus writes root/suite-status.txt, one of "successful\n" or
// "failed\n".
func WriteSuiteStatus(root string, passed bool) error {
	status := "failed\n"
	if passed {
		status = "successful\n"
	}
	return os.WriteFile(filepath.Join(root, "suite-status.txt"), []byte(status), 0o644)
}

// NewRunID returns a fresh random id. Dump draws one per call and writes it
// into every result.txt it produces; the directory layout does not include
// it, so a later dump into the same directory overwrites the earlier files.
func NewRunID() string {
	return uuid.NewString()
}
