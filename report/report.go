// Package report implements the default event-handler collaborator C7
// drives: colored PASS/FAIL/SKIP/XFAIL/ERROR lines and a suite summary,
// grounded in the teacher's lipgloss/fatih-color terminal output idiom.
package report

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/fatih/color"
	"github.com/flanksource/lit/model"
)

var (
	summaryBoxPass = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("10")).
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("10")).
			Padding(0, 2)

	summaryBoxFail = summaryBoxPass.Copy().
			Foreground(lipgloss.Color("9")).
			BorderForeground(lipgloss.Color("9"))
)

// EventHandler is the suite driver's collaborator interface (spec.md §4.5).
type EventHandler interface {
	OnTestSuiteStarted(details model.TestSuiteDetails, config model.Config)
	OnTestFinished(result model.TestResult, config model.Config)
	OnTestSuiteFinished(passed bool, config model.Config)
	NoteWarning(message string)
}

var (
	passColor    = color.New(color.FgGreen, color.Bold)
	failColor    = color.New(color.FgRed, color.Bold)
	skipColor    = color.New(color.FgYellow)
	xfailColor   = color.New(color.FgCyan)
	errorColor   = color.New(color.FgMagenta, color.Bold)
	warnColor    = color.New(color.FgYellow, color.Bold)
	dimColor     = color.New(color.Faint)
)

// ConsoleHandler is the default EventHandler: it prints one colored line
// per test result and a horizontal-rule-bounded summary at the end.
type ConsoleHandler struct {
	Out    io.Writer
	counts map[model.ResultKind]int
}

func NewConsoleHandler(out io.Writer) *ConsoleHandler {
	return &ConsoleHandler{Out: out, counts: make(map[model.ResultKind]int)}
}

func (h *ConsoleHandler) OnTestSuiteStarted(details model.TestSuiteDetails, config model.Config) {
	fmt.Fprintln(h.Out, rule())
	fmt.Fprintf(h.Out, "running %d test file(s)\n", details.NumberOfTestFiles)
	fmt.Fprintln(h.Out, rule())
}

func (h *ConsoleHandler) OnTestFinished(result model.TestResult, config model.Config) {
	h.counts[result.OverallResult.Kind]++

	label, paint := labelAndColor(result.OverallResult.Kind)
	fmt.Fprintf(h.Out, "%s %s\n", paint.Sprint(label), result.Path.String())

	switch result.OverallResult.Kind {
	case model.FailOutcome:
		h.printFailDetail(result, config)
	case model.ErrorOutcome:
		fmt.Fprintf(h.Out, "  %s\n", dimColor.Sprint(result.OverallResult.ErrorMessage))
	}

	if config.AlwaysShowStderr || result.OverallResult.IsErroneous() {
		for _, run := range result.IndividualRunResults {
			if run.Output.Stderr != "" {
				fmt.Fprintf(h.Out, "  stderr: %s\n", run.Output.Stderr)
			}
		}
	}
}

func (h *ConsoleHandler) printFailDetail(result model.TestResult, config model.Config) {
	reason := result.OverallResult.FailReason
	if reason == nil {
		return
	}
	fmt.Fprintf(h.Out, "  %s\n", dimColor.Sprint(reason.HumanSummary()))

	switch reason.Kind {
	case model.UnsuccessfulExecution:
		fmt.Fprintf(h.Out, "  command: %s\n  exit status: %d\n", reason.ProgramCommandLine, reason.ExitStatus)
	case model.CheckFailed:
		if reason.CheckFailure != nil {
			fmt.Fprintf(h.Out, "  expected pattern: %s\n", reason.CheckFailure.ExpectedPattern.String())
			fmt.Fprint(h.Out, truncatedContext(reason.CheckFailure.RemainingText(), config.TruncateOutputContextToNumberOfLines))
		}
		if result.OverallResult.FailHint != nil {
			fmt.Fprintf(h.Out, "  hint: %s\n", *result.OverallResult.FailHint)
		}
	}
}

// truncatedContext renders the unchecked output remainder as indented
// context lines, capped at limit lines when set (spec.md's
// truncate_output_context_to_number_of_lines; nil or negative disables the
// cap).
func truncatedContext(remaining string, limit *int) string {
	remaining = strings.TrimRight(remaining, "\n")
	if remaining == "" {
		return ""
	}
	lines := strings.Split(remaining, "\n")
	omitted := 0
	if limit != nil && *limit >= 0 && len(lines) > *limit {
		omitted = len(lines) - *limit
		lines = lines[:*limit]
	}

	var b strings.Builder
	for _, line := range lines {
		fmt.Fprintf(&b, "  | %s\n", line)
	}
	if omitted > 0 {
		fmt.Fprintf(&b, "  | ... (%d more line(s) omitted)\n", omitted)
	}
	return b.String()
}

func (h *ConsoleHandler) OnTestSuiteFinished(passed bool, config model.Config) {
	fmt.Fprintln(h.Out, rule())
	var lines []string
	for _, kind := range []model.ResultKind{model.Pass, model.FailOutcome, model.ErrorOutcome, model.ExpectedFailure, model.UnexpectedPass, model.Skip} {
		if n := h.counts[kind]; n > 0 {
			lines = append(lines, fmt.Sprintf("%s: %d", kind.HumanLabelPluralized(), n))
		}
	}

	box := summaryBoxFail
	banner := "suite failed"
	if passed {
		box = summaryBoxPass
		banner = "suite passed"
	}
	lines = append(lines, banner)
	fmt.Fprintln(h.Out, box.Render(strings.Join(lines, "\n")))
}

func (h *ConsoleHandler) NoteWarning(message string) {
	fmt.Fprintln(h.Out, warnColor.Sprint("warning: ")+message)
}

func labelAndColor(kind model.ResultKind) (string, *color.Color) {
	switch kind {
	case model.Pass:
		return "PASS", passColor
	case model.FailOutcome:
		return "FAIL", failColor
	case model.ErrorOutcome:
		return "ERROR", errorColor
	case model.ExpectedFailure:
		return "XFAIL", xfailColor
	case model.UnexpectedPass:
		return "UNEXPECTED PASS", failColor
	case model.Skip:
		return "SKIP", skipColor
	default:
		return kind.String(), dimColor
	}
}

func rule() string {
	return strings.Repeat("─", 72)
}
