package describe

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/veritas-sh/veritas/internal/model"
)

func TestBuild_PrefersRuleDescription(t *testing.T) {
	out := Build("a", "b", model.TypeNumeric, "the rule already explained this", 90)
	assert.Equal(t, "the rule already explained this", out)
}

func TestBuild_SemanticFallback(t *testing.T) {
	out := Build(
		"The lease terminates automatically at the end of the term.",
		"The lease renews automatically at the end of the term.",
		model.TypeSemantic,
		"",
		82,
	)
	assert.Contains(t, out, "terminates")
	assert.Contains(t, out, "renews")
}

func TestBuild_SemanticNoSpanUsesConfidenceFallback(t *testing.T) {
	out := Build("the meeting occurs next week", "the meeting occurs next week", model.TypeSemantic, "", 76)
	assert.Equal(t, "Semantic conflict detected (confidence: 76%)", out)
}

func TestLongestUniqueSpan_FindsDifferingWords(t *testing.T) {
	span := longestUniqueSpan("the meeting shall occur in Boston next week", "the meeting shall occur next week")
	assert.Equal(t, "in Boston", span)
}

func TestLongestUniqueSpan_NoneFound(t *testing.T) {
	span := longestUniqueSpan("the meeting occurs next week", "the meeting occurs next week")
	assert.Equal(t, "", span)
}

func TestNumericDescription_ExtractsBothSides(t *testing.T) {
	out := numericDescription("The fee is 500 dollars.", "The fee is 1000 dollars.")
	assert.Contains(t, out, "500 dollars")
	assert.Contains(t, out, "1000 dollars")
}
