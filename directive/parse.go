// Package directive implements the C1 directive parser: it reads a text
// file and yields a model.TestFile, extracting RUN / CHECK / CHECK-NEXT /
// XFAIL directives per spec.md §4.1. The parser is agnostic to the host
// file's comment syntax — the directive regex is anchored only at the
// keyword, so "; RUN: foo", "// CHECK: bar" and bare "RUN: foo" all parse
// the same way.
package directive

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"regexp"
	"strings"

	"github.com/flanksource/lit/errs"
	"github.com/flanksource/lit/model"
)

var directiveRegex = regexp.MustCompile(`([A-Z-]+):(.*)`)

// bareXFailRegex recognises an XFAIL marker written without a colon
// ("XFAIL", "; XFAIL"), which directiveRegex alone does not match.
var bareXFailRegex = regexp.MustCompile(`(?:^|\s)XFAIL\s*$`)

// ParseFile opens and parses a test file from disk.
func ParseFile(absolutePath string) (model.TestFile, error) {
	f, err := os.Open(absolutePath)
	if err != nil {
		return model.TestFile{}, errs.Wrap(errs.IO, absolutePath, 0, err)
	}
	defer func() { _ = f.Close() }()

	return ParseReader(absolutePath, f)
}

// ParseReader parses a test file's directives from an already-open stream.
func ParseReader(absolutePath string, r io.Reader) (model.TestFile, error) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 16*1024*1024)

	var commands []model.Command
	var lineNumber uint32

	for scanner.Scan() {
		lineNumber++
		line := scanner.Text()

		match := directiveRegex.FindStringSubmatch(line)
		if match == nil {
			if bareXFailRegex.MatchString(line) {
				commands = append(commands, model.NewXFailCommand(lineNumber))
			}
			continue
		}

		keyword := strings.TrimSpace(match[1])
		tail := strings.TrimSpace(match[2])

		cmd, err := parseDirective(keyword, tail, lineNumber)
		if err != nil {
			return model.TestFile{}, errs.Wrap(errs.Parse, absolutePath, lineNumber, err)
		}
		commands = append(commands, cmd)
	}
	if err := scanner.Err(); err != nil {
		return model.TestFile{}, errs.Wrap(errs.IO, absolutePath, 0, err)
	}

	return model.TestFile{
		Path:     model.TestFilePath{Absolute: absolutePath},
		Commands: commands,
	}, nil
}

func parseDirective(keyword, tail string, line uint32) (model.Command, error) {
	switch keyword {
	case "RUN":
		return model.NewRunCommand(line, model.Invocation{OriginalCommand: tail}), nil
	case "CHECK":
		return model.NewCheckCommand(line, ParsePattern(tail)), nil
	case "CHECK-NEXT":
		return model.NewCheckNextCommand(line, ParsePattern(tail)), nil
	case "XFAIL":
		return model.NewXFailCommand(line), nil
	default:
		return model.Command{}, fmt.Errorf("command %q not known", keyword)
	}
}
