// Package suite implements C7, the suite driver: discover test paths,
// parse and orchestrate each one, report through an event handler and
// aggregate the overall pass/fail result, per spec.md §4.5.
package suite

import (
	"github.com/flanksource/lit/artifact"
	"github.com/flanksource/lit/directive"
	"github.com/flanksource/lit/discover"
	"github.com/flanksource/lit/model"
	"github.com/flanksource/lit/orchestrator"
	"github.com/flanksource/lit/report"
)

// Run executes the whole suite described by config and reports through
// handler. It returns true iff no test was erroneous, plus every file's
// result for callers that want to inspect them afterward (artifacts, tests).
func Run(config model.Config, handler report.EventHandler) (bool, model.Results) {
	paths, err := discover.Find(config.TestPaths, config.SupportedFileExtensions)
	if err != nil {
		handler.NoteWarning(err.Error())
		return false, model.Results{}
	}
	if len(paths) == 0 {
		handler.NoteWarning("no test files found in the configured test paths")
		return false, model.Results{}
	}

	handler.OnTestSuiteStarted(model.TestSuiteDetails{NumberOfTestFiles: len(paths)}, config)

	anyErroneous := false
	var results []model.TestResult

	for _, path := range paths {
		tf, parseErr := directive.ParseFile(path.Absolute)
		var result model.TestResult
		if parseErr != nil {
			result = model.TestResult{
				Path:          path,
				OverallResult: model.ErrorResult("%v", parseErr),
			}
		} else {
			tf.Path = path
			result = orchestrator.RunFile(tf, config)
		}

		if result.OverallResult.IsErroneous() {
			anyErroneous = true
		}
		results = append(results, result)
		handler.OnTestFinished(result, config)

		if config.SaveArtifactsToDirectory != nil {
			if err := artifact.Dump(*config.SaveArtifactsToDirectory, result, path.Absolute); err != nil {
				handler.NoteWarning(err.Error())
			}
		}
	}

	passed := !anyErroneous
	handler.OnTestSuiteFinished(passed, config)

	if config.SaveArtifactsToDirectory != nil {
		if err := artifact.WriteSuiteStatus(*config.SaveArtifactsToDirectory, passed); err != nil {
			handler.NoteWarning(err.Error())
		}
	}

	return passed, model.Results{TestResults: results}
}
