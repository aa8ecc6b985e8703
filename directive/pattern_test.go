package directive

import (
	"testing"

	"github.com/flanksource/lit/model"
	"github.com/stretchr/testify/assert"
)

func TestParsePattern_SingleText(t *testing.T) {
	p := ParsePattern("hello world")
	assert.Equal(t, "hello world", p.String())
}

func TestParsePattern_RegexBetweenText(t *testing.T) {
	p := ParsePattern(`1[[\d]]3`)
	assert.Equal(t, `1[[\d]]3`, p.String())
	assert.Len(t, p.Components, 3)
	assert.Equal(t, model.CompRegex, p.Components[1].Kind)
	assert.Equal(t, `\d`, p.Components[1].Regex)
}

func TestParsePattern_NamedRegex(t *testing.T) {
	p := ParsePattern(`[[num:\d+]]`)
	assert.Len(t, p.Components, 1)
	assert.Equal(t, model.CompNamedRegex, p.Components[0].Kind)
	assert.Equal(t, "num", p.Components[0].Name)
	assert.Equal(t, `\d+`, p.Components[0].Regex)
}

func TestParsePattern_BalancedBrackets(t *testing.T) {
	p := ParsePattern(`[[[a-z]]]`)
	assert.Len(t, p.Components, 1)
	assert.Equal(t, model.CompRegex, p.Components[0].Kind)
	assert.Equal(t, "[a-z]", p.Components[0].Regex)
}

func TestParsePattern_VariableAndConstant(t *testing.T) {
	p := ParsePattern("goodbye $$name say @greeting")
	assert.Equal(t, "goodbye $$name say @greeting", p.String())

	var kinds []model.ComponentKind
	for _, c := range p.Components {
		kinds = append(kinds, c.Kind)
	}
	assert.Equal(t, []model.ComponentKind{
		model.CompText, model.CompVariable, model.CompText, model.CompConstant,
	}, kinds)
}

func TestParsePattern_LoneDollarAndAtAreLiteral(t *testing.T) {
	p := ParsePattern("$ and @ alone")
	assert.Equal(t, "$ and @ alone", p.String())
	assert.Len(t, p.Components, 1)
	assert.Equal(t, model.CompText, p.Components[0].Kind)
}

func TestParsePattern_EmptyPatternHasNoComponents(t *testing.T) {
	p := ParsePattern("")
	assert.Empty(t, p.Components)
	assert.Equal(t, "", p.String())
}

// TestParsePattern_RoundTrip is invariant #1 from spec.md §8: re-rendering a
// parsed pattern by its canonical syntax and re-parsing it yields an equal
// pattern.
func TestParsePattern_RoundTrip(t *testing.T) {
	inputs := []string{
		"hello world",
		`id=[[N:\d+]]`,
		`id=$$N again`,
		"@cc ok",
		`[[[a-z]]]$$po foo`,
		"",
		"mix $$a [[b]] [[c:d]] @e tail",
	}

	for _, in := range inputs {
		first := ParsePattern(in)
		second := ParsePattern(first.String())
		assert.Equal(t, first.String(), second.String(), "round-trip for %q", in)
		assert.Equal(t, first, second, "round-trip components for %q", in)
	}
}
