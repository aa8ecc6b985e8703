package directive

import (
	"regexp"
	"strings"

	"github.com/flanksource/lit/model"
)

var identifierRegex = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// ParsePattern scans a CHECK/CHECK-NEXT tail into an ordered TextPattern, per
// spec.md §4.1:
//
//	$$name         -> Variable(name)
//	[[ ... ]]      -> Regex(...) or NamedRegex{name, ...} if the inner text
//	                  starts with "ident:"; inner brackets balance.
//	@name          -> Constant(name)
//	anything else  -> accumulated into the current literal Text run.
func ParsePattern(s string) model.TextPattern {
	runes := []rune(s)
	n := len(runes)
	i := 0

	var components []model.PatternComponent
	var text strings.Builder

	flush := func() {
		if text.Len() > 0 {
			components = append(components, model.TextComponent(text.String()))
			text.Reset()
		}
	}

	for i < n {
		c := runes[i]

		if c == '$' && i+1 < n && runes[i+1] == '$' {
			start := i + 2
			j := start
			for j < n && isAlnum(runes[j]) {
				j++
			}
			if j > start {
				flush()
				components = append(components, model.VariableComponent(string(runes[start:j])))
				i = j
				continue
			}
			text.WriteRune(c)
			i++
			continue
		}

		if c == '[' && i+1 < n && runes[i+1] == '[' {
			flush()
			body, next := scanBracketed(runes, i+2)
			i = next
			if name, regex, ok := splitNamedRegex(body); ok {
				components = append(components, model.NamedRegexComponent(name, regex))
			} else {
				components = append(components, model.RegexComponent(body))
			}
			continue
		}

		if c == '@' {
			start := i + 1
			j := start
			for j < n && isAlnum(runes[j]) {
				j++
			}
			if j > start {
				flush()
				components = append(components, model.ConstantComponent(string(runes[start:j])))
				i = j
				continue
			}
			text.WriteRune(c)
			i++
			continue
		}

		text.WriteRune(c)
		i++
	}
	flush()

	return model.TextPattern{Components: components}
}

// scanBracketed consumes runes from i until a depth-0 "]]", balancing
// nested '[' / ']' along the way. Returns the inner text and the index just
// past the closing "]]" (or len(runes) if unterminated).
func scanBracketed(runes []rune, i int) (string, int) {
	depth := 0
	var b strings.Builder
	n := len(runes)
	for i < n {
		if runes[i] == ']' && depth == 0 && i+1 < n && runes[i+1] == ']' {
			return b.String(), i + 2
		}
		switch runes[i] {
		case '[':
			depth++
		case ']':
			depth--
		}
		b.WriteRune(runes[i])
		i++
	}
	return b.String(), i
}

// splitNamedRegex splits "name:rest" when name is a valid identifier,
// otherwise reports !ok so the caller keeps the body as a plain Regex.
func splitNamedRegex(body string) (name, regex string, ok bool) {
	idx := strings.IndexByte(body, ':')
	if idx < 0 {
		return "", body, false
	}
	prefix := body[:idx]
	if !identifierRegex.MatchString(prefix) {
		return "", body, false
	}
	return prefix, body[idx+1:], true
}

func isAlnum(r rune) bool {
	return (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9')
}
