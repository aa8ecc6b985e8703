// Package eval implements C5, the evaluator state machine: it holds the
// accumulated output stream, the checked-through cursor and the live
// variable map for a single RUN, and exposes Check/CheckNext per spec.md
// §4.3.
package eval

import (
	"fmt"
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/flanksource/lit/model"
	"github.com/flanksource/lit/vars"
)

// State is created once per RUN, lives for the duration of that RUN's
// checking, and is dropped afterward. Captures never cross RUN boundaries;
// a fresh State starts over.
type State struct {
	output    string
	stderr    string
	cursor    int
	variables model.Variables
	config    model.Config
}

// NewState seeds a fresh evaluator for one RUN. variables should already be
// the merged constants+test-file-variables layer (spec.md §3); captures are
// added to it live as checks succeed.
func NewState(output, stderr string, variables model.Variables, config model.Config) *State {
	return &State{
		output:    output,
		stderr:    stderr,
		variables: variables.Clone(),
		config:    config,
	}
}

func (s *State) Output() string          { return s.output }
func (s *State) Stderr() string          { return s.stderr }
func (s *State) Cursor() int             { return s.cursor }
func (s *State) Variables() model.Variables { return s.variables.Clone() }

// CheckStatus is the outcome of one Check/CheckNext call. Passed==true means
// the cursor advanced and any captures were merged; otherwise FailReason
// describes the CheckFailed outcome (and Hint, for CheckNext's line-locality
// violation).
type CheckStatus struct {
	Passed     bool
	FailReason model.TestFailReason
	Hint       *string
}

// Check implements spec.md §4.3's check(pattern): eat leading whitespace,
// search the unprocessed slice for the first match, merge captures and
// advance the cursor past the rest of the matched line.
func (s *State) Check(pattern model.TextPattern) (CheckStatus, error) {
	return s.run(pattern, false)
}

// CheckNext implements check_next(pattern): as Check, but the match must
// start strictly before the first '\n' of the (whitespace-trimmed)
// unprocessed slice.
func (s *State) CheckNext(pattern model.TextPattern) (CheckStatus, error) {
	return s.run(pattern, true)
}

func (s *State) run(pattern model.TextPattern, requireNextLine bool) (CheckStatus, error) {
	re, err := vars.ResolvePattern(pattern, s.config, s.variables)
	if err != nil {
		return CheckStatus{}, err
	}

	unprocessed := s.output[s.cursor:]
	eaten := leadingWhitespaceByteLen(unprocessed)
	searchSlice := unprocessed[eaten:]

	loc := re.FindStringSubmatchIndex(searchSlice)
	if loc == nil {
		return s.failStatus(pattern, nil), nil
	}

	matchStart, matchEnd := loc[0], loc[1]

	if requireNextLine {
		if nlIdx := strings.IndexByte(searchSlice, '\n'); nlIdx >= 0 && matchStart >= nlIdx {
			hint := fmt.Sprintf("found a match for '%s', but it does not appear on the next line", pattern.String())
			return s.failStatus(pattern, &hint), nil
		}
	}

	s.applyCaptures(re, searchSlice, loc)

	newCursor := s.cursor + eaten + matchEnd
	rest := s.output[newCursor:]
	if nlIdx := strings.IndexByte(rest, '\n'); nlIdx >= 0 {
		newCursor += nlIdx + 1
	} else {
		newCursor += len(rest)
	}
	s.cursor = newCursor

	return CheckStatus{Passed: true}, nil
}

func (s *State) failStatus(pattern model.TextPattern, hint *string) CheckStatus {
	return CheckStatus{
		Passed: false,
		FailReason: model.TestFailReason{
			Kind: model.CheckFailed,
			CheckFailure: &model.CheckFailureInfo{
				CompleteOutputText:                s.output,
				SuccessfullyCheckedUntilByteIndex: s.cursor,
				ExpectedPattern:                   pattern,
			},
		},
		Hint: hint,
	}
}

// applyCaptures merges every named group the match produced into the live
// variable map; they become visible to $$name in later patterns within the
// same RUN.
func (s *State) applyCaptures(re *regexp.Regexp, slice string, loc []int) {
	for i, name := range re.SubexpNames() {
		if i == 0 || name == "" {
			continue
		}
		start, end := loc[2*i], loc[2*i+1]
		if start < 0 {
			continue
		}
		s.variables[name] = slice[start:end]
	}
}

// leadingWhitespaceByteLen returns the UTF-8 byte length of the leading run
// of whitespace runes in s (possibly zero), never stopping mid-rune.
func leadingWhitespaceByteLen(s string) int {
	i := 0
	for i < len(s) {
		r, size := utf8.DecodeRuneInString(s[i:])
		if !unicode.IsSpace(r) {
			break
		}
		i += size
	}
	return i
}
