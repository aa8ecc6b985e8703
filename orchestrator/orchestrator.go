// Package orchestrator implements C6, the test orchestrator: for one
// TestFile it runs each RUN invocation through shell, feeds the captured
// stdout to eval, walks the file's full command list against that output
// (RUN and XFAIL are no-ops in the walk), applies the XFAIL polarity rule
// to that RUN's own result, then classifies the outcome and applies the
// Skip law, per spec.md §4.4.
package orchestrator

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/flanksource/commons/logger"
	"github.com/flanksource/lit/eval"
	"github.com/flanksource/lit/model"
	"github.com/flanksource/lit/shell"
	"github.com/flanksource/lit/vars"
	"github.com/samber/lo"
)

// RunFile executes tf's RUN invocations in order and returns its overall
// result plus every individual RUN's diagnostics.
func RunFile(tf model.TestFile, config model.Config) model.TestResult {
	runs := runCommands(tf.Commands)
	if len(runs) == 0 {
		return model.TestResult{Path: tf.Path, OverallResult: model.SkipResult()}
	}

	seed := model.Variables(config.Constants).Merge(tf.Variables())
	dir := filepath.Dir(tf.Path.Absolute)
	hasXFail := tf.HasXFail()

	var individual []model.IndividualRunResult
	overall := model.PassResult()
	seenVariables := seed.Clone()

	for _, run := range runs {
		result, runResult, finalVars := runSegment(dir, run, tf.Commands, seed, config)
		if hasXFail {
			result = applyXFailPolarity(result)
			runResult.Kind = result
		}

		individual = append(individual, runResult)
		seenVariables = seenVariables.Merge(finalVars)

		overall = result
		if result.IsErroneous() {
			break
		}
	}

	if config.CleanupTemporaryFiles && !overall.IsErroneous() {
		cleanupTempfiles(seenVariables)
	}

	return model.TestResult{Path: tf.Path, OverallResult: overall, IndividualRunResults: individual}
}

// runCommands returns every RUN command in source order.
func runCommands(commands []model.Command) []model.Command {
	var runs []model.Command
	for _, c := range commands {
		if c.Kind == model.KindRun {
			runs = append(runs, c)
		}
	}
	return runs
}

// runSegment resolves and executes one RUN invocation, then walks the
// file's entire command list (not just the commands textually following
// run) against its output, skipping RUN and XFAIL as no-ops.
func runSegment(dir string, run model.Command, allCommands []model.Command, seed model.Variables, config model.Config) (model.TestResultKind, model.IndividualRunResult, model.Variables) {
	resolvedCommand, err := vars.ResolveInvocation(*run.Invocation, config, seed)
	if err != nil {
		result := model.ErrorResult("%v", err)
		return result, model.IndividualRunResult{Kind: result, Invocation: *run.Invocation}, nil
	}

	outcome := shell.Run(dir, resolvedCommand, config)
	runResult := model.IndividualRunResult{
		Invocation:  *run.Invocation,
		CommandLine: outcome.CommandLine,
		Output:      outcome.Output,
	}

	if outcome.Err != nil {
		result := model.ErrorResult("%v", outcome.Err)
		runResult.Kind = result
		return result, runResult, nil
	}

	if outcome.Failed {
		result := model.FailResult(model.TestFailReason{
			Kind:               model.UnsuccessfulExecution,
			ProgramCommandLine: outcome.CommandLine,
			ExitStatus:         outcome.ExitCode,
		}, nil)
		runResult.Kind = result
		return result, runResult, nil
	}

	state := eval.NewState(outcome.Output.Stdout, outcome.Output.Stderr, seed, config)

	result := model.PassResult()
	for _, c := range allCommands {
		var status eval.CheckStatus
		var checkErr error

		switch c.Kind {
		case model.KindCheck:
			status, checkErr = state.Check(*c.Pattern)
		case model.KindCheckNext:
			status, checkErr = state.CheckNext(*c.Pattern)
		default:
			continue // RUN and XFAIL are no-ops within a RUN's own walk.
		}

		if checkErr != nil {
			result = model.ErrorResult("%v", checkErr)
			break
		}
		if !status.Passed {
			result = model.FailResult(status.FailReason, status.Hint)
			break
		}
	}

	runResult.Kind = result
	return result, runResult, state.Variables()
}

func applyXFailPolarity(result model.TestResultKind) model.TestResultKind {
	switch result.Kind {
	case model.Pass:
		return model.UnexpectedPassResult()
	case model.FailOutcome, model.ErrorOutcome:
		return model.ExpectedFailureResult()
	default:
		return result
	}
}

// cleanupTempfiles removes every file named by a variable whose name
// contains "tempfile". Best-effort: a missing or unremovable file is logged
// and otherwise ignored, since it's post-test housekeeping, not the test's
// own result.
func cleanupTempfiles(variables model.Variables) {
	tempfiles := lo.PickBy(variables, func(name, _ string) bool { return strings.Contains(name, "tempfile") })
	for name, path := range tempfiles {
		if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
			logger.Warnf("cleanup: could not remove tempfile variable %q (%s): %v", name, path, err)
		}
	}
}
