// Package vars implements C3 (the variable/constant resolver) and the
// "pattern -> concrete regex" half of C2: expanding $$name / @name inside
// patterns and @name inside RUN tails against a merged variable store, per
// spec.md §4.2.
package vars

import (
	"fmt"
	"os"
	"regexp"
	"strings"

	"github.com/flanksource/commons/logger"
	"github.com/flanksource/lit/errs"
	"github.com/flanksource/lit/model"
)

// invocationConstantRegex matches the constant-reference syntax recognised
// inside RUN tails: "@" followed by one or more letters/underscores. Two
// consecutive "@@" are deliberately not special-cased: the regex simply
// can't start a match on the first "@" (nothing alphabetic follows it
// immediately), so it anchors on the second "@" instead, leaving a literal
// "@" before the substituted value.
var invocationConstantRegex = regexp.MustCompile(`@([A-Za-z_]+)`)

// ResolvePattern walks a TextPattern's components and compiles a concrete
// regexp.Regexp, per spec.md §4.2:
//
//	Text            -> regexp-escaped literal
//	Variable/Constant -> resolved value, regexp-escaped
//	Regex           -> verbatim
//	NamedRegex      -> (?P<name>regex)
//
// A missing variable/constant is a Resolution-class error (never silently
// substituted); an invalid concrete regex is a Regex-class error including
// the generated string.
func ResolvePattern(pattern model.TextPattern, config model.Config, variables model.Variables) (*regexp.Regexp, error) {
	parts := make([]string, 0, len(pattern.Components))

	for _, c := range pattern.Components {
		switch c.Kind {
		case model.CompText:
			parts = append(parts, regexp.QuoteMeta(c.Text))
		case model.CompVariable, model.CompConstant:
			value, ok := config.LookupVariable(c.Name, variables)
			if !ok {
				return nil, errs.New(errs.Resolution, "", 0, "unknown variable '%s' referenced in pattern '%s'", c.Name, pattern.String())
			}
			logResolution(config, c.Name, value, pattern.String())
			parts = append(parts, regexp.QuoteMeta(value))
		case model.CompRegex:
			parts = append(parts, c.Regex)
		case model.CompNamedRegex:
			parts = append(parts, fmt.Sprintf("(?P<%s>%s)", c.Name, c.Regex))
		}
	}

	joined := strings.Join(parts, "")
	re, err := regexp.Compile(joined)
	if err != nil {
		return nil, errs.Wrap(errs.Regex, "", 0, fmt.Errorf("generated invalid match regex '%s': %w", joined, err))
	}
	return re, nil
}

// ResolveInvocation replaces every @name reference in a RUN tail with its
// resolved value, unescaped (it becomes shell text, not a regex fragment).
func ResolveInvocation(invocation model.Invocation, config model.Config, variables model.Variables) (string, error) {
	command := invocation.OriginalCommand

	matches := invocationConstantRegex.FindAllStringSubmatchIndex(command, -1)
	if len(matches) == 0 {
		return command, nil
	}

	var b strings.Builder
	last := 0
	for _, m := range matches {
		start, end := m[0], m[1]
		nameStart, nameEnd := m[2], m[3]
		name := command[nameStart:nameEnd]

		value, ok := config.LookupVariable(name, variables)
		if !ok {
			return "", fmt.Errorf("unknown constant '@%s' referenced in RUN command '%s'", name, command)
		}
		logResolution(config, name, value, command)

		b.WriteString(command[last:start])
		b.WriteString(value)
		last = end
	}
	b.WriteString(command[last:])

	return b.String(), nil
}

func logResolution(config model.Config, name, value, context string) {
	logLine := fmt.Sprintf("resolving '@%s' to '%s' in %q", name, value, context)
	logger.Debugf("%s", logLine)
	if config.DumpVariableResolution {
		fmt.Fprintf(os.Stderr, "[info] %s\n", logLine)
	}
}
