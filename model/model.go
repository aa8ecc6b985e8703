// Package model holds the data types shared by the directive parser, the
// variable resolver, the evaluator and the test orchestrator: TestFile,
// Command, TextPattern and the TestResult taxonomy.
package model

import (
	"fmt"
	"strings"

	"github.com/samber/lo"
)

// Variables is the flat name->value mapping used throughout resolution.
// Constants, test-file variables and captures are all composed into one of
// these before a RUN or a check runs.
type Variables map[string]string

// Clone returns a shallow copy so callers can mutate without aliasing the
// source map.
func (v Variables) Clone() Variables {
	out := make(Variables, len(v))
	for k, val := range v {
		out[k] = val
	}
	return out
}

// Merge returns a new Variables with other's entries overriding v's.
func (v Variables) Merge(other Variables) Variables {
	out := v.Clone()
	for k, val := range other {
		out[k] = val
	}
	return out
}

// TestFilePath carries both the on-disk and display-relative path of a
// discovered test file.
type TestFilePath struct {
	Absolute string
	Relative string
}

func (p TestFilePath) String() string {
	if p.Relative != "" {
		return p.Relative
	}
	return p.Absolute
}

// Invocation is a RUN directive's raw tail, preserved verbatim for later
// variable expansion and shell invocation.
type Invocation struct {
	OriginalCommand string
}

// CommandKind is the closed set of directive kinds a line can parse to.
type CommandKind int

const (
	KindRun CommandKind = iota
	KindCheck
	KindCheckNext
	KindXFail
)

func (k CommandKind) String() string {
	switch k {
	case KindRun:
		return "RUN"
	case KindCheck:
		return "CHECK"
	case KindCheckNext:
		return "CHECK-NEXT"
	case KindXFail:
		return "XFAIL"
	default:
		return "UNKNOWN"
	}
}

// Command is one parsed directive: a line number plus a tagged payload. Only
// the field matching Kind is populated; Invocation is set iff Kind==KindRun,
// Pattern is set iff Kind is KindCheck or KindCheckNext.
type Command struct {
	LineNumber uint32
	Kind       CommandKind
	Invocation *Invocation
	Pattern    *TextPattern
}

func NewRunCommand(line uint32, inv Invocation) Command {
	return Command{LineNumber: line, Kind: KindRun, Invocation: &inv}
}

func NewCheckCommand(line uint32, pattern TextPattern) Command {
	return Command{LineNumber: line, Kind: KindCheck, Pattern: &pattern}
}

func NewCheckNextCommand(line uint32, pattern TextPattern) Command {
	return Command{LineNumber: line, Kind: KindCheckNext, Pattern: &pattern}
}

func NewXFailCommand(line uint32) Command {
	return Command{LineNumber: line, Kind: KindXFail}
}

// Equal compares commands the way the spec requires: patterns compare by
// their canonical Display string, never by compiled-regex identity (a
// compiled regexp.Regexp has no structural equality).
func (c Command) Equal(other Command) bool {
	if c.LineNumber != other.LineNumber || c.Kind != other.Kind {
		return false
	}
	switch c.Kind {
	case KindRun:
		return c.Invocation.OriginalCommand == other.Invocation.OriginalCommand
	case KindCheck, KindCheckNext:
		return c.Pattern.String() == other.Pattern.String()
	default:
		return true
	}
}

// ComponentKind is the closed set of pattern fragment kinds.
type ComponentKind int

const (
	CompText ComponentKind = iota
	CompVariable
	CompRegex
	CompNamedRegex
	CompConstant
)

// PatternComponent is one fragment of a TextPattern.
type PatternComponent struct {
	Kind ComponentKind
	// Text holds the literal for CompText.
	Text string
	// Name holds the variable/constant name, or the capture name for
	// CompNamedRegex.
	Name string
	// Regex holds the raw regex fragment for CompRegex/CompNamedRegex.
	Regex string
}

func TextComponent(s string) PatternComponent       { return PatternComponent{Kind: CompText, Text: s} }
func VariableComponent(name string) PatternComponent { return PatternComponent{Kind: CompVariable, Name: name} }
func ConstantComponent(name string) PatternComponent { return PatternComponent{Kind: CompConstant, Name: name} }
func RegexComponent(r string) PatternComponent       { return PatternComponent{Kind: CompRegex, Regex: r} }
func NamedRegexComponent(name, r string) PatternComponent {
	return PatternComponent{Kind: CompNamedRegex, Name: name, Regex: r}
}

// TextPattern is an ordered sequence of pattern fragments.
type TextPattern struct {
	Components []PatternComponent
}

// NewTextPattern builds a pattern from a single component, mirroring the
// teacher's single-component convenience constructors.
func NewTextPattern(c PatternComponent) TextPattern {
	return TextPattern{Components: []PatternComponent{c}}
}

// String renders the canonical round-trip surface syntax: $$name, [[r]],
// [[name:r]], @const, literal text.
func (p TextPattern) String() string {
	var b strings.Builder
	for _, c := range p.Components {
		switch c.Kind {
		case CompText:
			b.WriteString(c.Text)
		case CompVariable:
			b.WriteString("$$")
			b.WriteString(c.Name)
		case CompConstant:
			b.WriteString("@")
			b.WriteString(c.Name)
		case CompRegex:
			b.WriteString("[[")
			b.WriteString(c.Regex)
			b.WriteString("]]")
		case CompNamedRegex:
			b.WriteString("[[")
			b.WriteString(c.Name)
			b.WriteString(":")
			b.WriteString(c.Regex)
			b.WriteString("]]")
		}
	}
	return b.String()
}

// TestFile is an ordered list of commands discovered in one source file.
type TestFile struct {
	Path     TestFilePath
	Commands []Command
}

// Variables returns the test-file-derived variable layer: currently just
// "file", the test's absolute path.
func (t TestFile) Variables() Variables {
	return Variables{"file": t.Path.Absolute}
}

// RunCommandInvocations returns every RUN invocation in source order.
func (t TestFile) RunCommandInvocations() []Invocation {
	runCommands := lo.Filter(t.Commands, func(c Command, _ int) bool { return c.Kind == KindRun })
	return lo.Map(runCommands, func(c Command, _ int) Invocation { return *c.Invocation })
}

// HasXFail reports whether the file carries an XFAIL marker anywhere.
func (t TestFile) HasXFail() bool {
	return lo.ContainsBy(t.Commands, func(c Command) bool { return c.Kind == KindXFail })
}

// ResultKind is the closed set of test outcomes.
type ResultKind int

const (
	Pass ResultKind = iota
	Skip
	ExpectedFailure
	UnexpectedPass
	ErrorOutcome
	FailOutcome
)

func (k ResultKind) String() string {
	switch k {
	case Pass:
		return "PASS"
	case Skip:
		return "SKIP"
	case ExpectedFailure:
		return "XFAIL"
	case UnexpectedPass:
		return "UNEXPECTED PASS"
	case ErrorOutcome:
		return "ERROR"
	case FailOutcome:
		return "FAIL"
	default:
		return "UNKNOWN"
	}
}

// HumanLabelPluralized matches the phrasing the teacher's own result
// summaries use when grouping by outcome kind.
func (k ResultKind) HumanLabelPluralized() string {
	switch k {
	case Pass:
		return "Passes"
	case UnexpectedPass:
		return "Unexpected passes"
	case ErrorOutcome:
		return "Errors"
	case FailOutcome:
		return "Test failures"
	case ExpectedFailure:
		return "Expected failures"
	case Skip:
		return "Skipped tests"
	default:
		return "Unknown"
	}
}

// FailReasonKind distinguishes the two ways a test can Fail.
type FailReasonKind int

const (
	UnsuccessfulExecution FailReasonKind = iota
	CheckFailed
)

// TestFailReason is the payload of a FailOutcome.
type TestFailReason struct {
	Kind FailReasonKind

	// UnsuccessfulExecution fields.
	ProgramCommandLine string
	ExitStatus         int

	// CheckFailed field.
	CheckFailure *CheckFailureInfo
}

func (r TestFailReason) HumanSummary() string {
	switch r.Kind {
	case UnsuccessfulExecution:
		return "unsuccessful program execution whilst running test"
	case CheckFailed:
		return "test checked for text that did not exist in the output"
	default:
		return "unknown failure"
	}
}

// CheckFailureInfo captures everything needed to render both the
// successfully-checked prefix and the remaining unchecked suffix.
type CheckFailureInfo struct {
	CompleteOutputText               string
	SuccessfullyCheckedUntilByteIndex int
	ExpectedPattern                  TextPattern
}

func (c CheckFailureInfo) SuccessfullyCheckedText() string {
	return c.CompleteOutputText[:c.SuccessfullyCheckedUntilByteIndex]
}

func (c CheckFailureInfo) RemainingText() string {
	return c.CompleteOutputText[c.SuccessfullyCheckedUntilByteIndex:]
}

func (c CheckFailureInfo) SuccessfullyCheckedUptoLineNumber() int {
	return strings.Count(c.SuccessfullyCheckedText(), "\n") + 1
}

// TestResultKind is the closed outcome sum: Pass, Skip, ExpectedFailure,
// UnexpectedPass, Error{message}, Fail{reason, hint}.
type TestResultKind struct {
	Kind         ResultKind
	ErrorMessage string
	FailReason   *TestFailReason
	FailHint     *string
}

func PassResult() TestResultKind              { return TestResultKind{Kind: Pass} }
func SkipResult() TestResultKind              { return TestResultKind{Kind: Skip} }
func ExpectedFailureResult() TestResultKind   { return TestResultKind{Kind: ExpectedFailure} }
func UnexpectedPassResult() TestResultKind    { return TestResultKind{Kind: UnexpectedPass} }

func ErrorResult(format string, args ...interface{}) TestResultKind {
	return TestResultKind{Kind: ErrorOutcome, ErrorMessage: fmt.Sprintf(format, args...)}
}

func FailResult(reason TestFailReason, hint *string) TestResultKind {
	return TestResultKind{Kind: FailOutcome, FailReason: &reason, FailHint: hint}
}

// IsErroneous matches spec.md's closed classification: UnexpectedPass, Error
// and Fail are erroneous; Pass, Skip and ExpectedFailure are not.
func (k TestResultKind) IsErroneous() bool {
	switch k.Kind {
	case UnexpectedPass, ErrorOutcome, FailOutcome:
		return true
	default:
		return false
	}
}

// ProgramOutput is the captured stdout/stderr of a single RUN invocation.
type ProgramOutput struct {
	Stdout string
	Stderr string
}

// IndividualRunResult is the outcome of one RUN invocation within a test
// file, kept for diagnostics even when it did not determine the overall
// outcome.
type IndividualRunResult struct {
	Kind        TestResultKind
	Invocation  Invocation
	CommandLine string
	Output      ProgramOutput
}

// TestResult is the outcome of running one whole test file.
type TestResult struct {
	Path                TestFilePath
	OverallResult       TestResultKind
	IndividualRunResults []IndividualRunResult
}

// Results aggregates every TestResult in a suite run.
type Results struct {
	TestResults []TestResult
}

// TestSuiteDetails is passed to on_test_suite_started (spec.md §4.5).
type TestSuiteDetails struct {
	NumberOfTestFiles int
}
