package decision

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/veritas-sh/veritas/internal/model"
	"github.com/veritas-sh/veritas/internal/nli"
	"github.com/veritas-sh/veritas/internal/rules"
)

func TestEvaluate_NumericRuleBypassesGates(t *testing.T) {
	c := Candidate{
		ClauseA: "The contractor shall pay a penalty of 500 dollars for each late delivery.",
		ClauseB: "The contractor shall pay a penalty of 1000 dollars for each late delivery.",
		RuleMatches: []rules.Match{
			{Type: model.TypeNumeric, Confidence: 92, Description: "amounts differ"},
		},
		NLI: nil, // no NLI call needed — numeric bypass
	}
	d := Evaluate(c, DefaultThresholds)
	assert.True(t, d.Keep)
	assert.Equal(t, model.TypeNumeric, d.Type)
	assert.Equal(t, model.SeverityHigh, d.Severity)
}

func TestEvaluate_SemanticRequiresDominanceAndEntailmentVeto(t *testing.T) {
	c := Candidate{
		ClauseA: "The lease terminates automatically at the end of the term.",
		ClauseB: "The lease renews automatically at the end of the term.",
		NLI:     &nli.Result{Contradiction: 0.80, Entailment: 0.10, Neutral: 0.10},
	}
	d := Evaluate(c, DefaultThresholds)
	assert.True(t, d.Keep)
	assert.Equal(t, model.TypeSemantic, d.Type)
}

func TestEvaluate_EntailmentVetoRejects(t *testing.T) {
	c := Candidate{
		ClauseA: "The lease terminates automatically at the end of the term.",
		ClauseB: "The lease renews automatically at the end of the term.",
		NLI:     &nli.Result{Contradiction: 0.80, Entailment: 0.60, Neutral: 0.0},
	}
	d := Evaluate(c, DefaultThresholds)
	assert.False(t, d.Keep)
}

func TestEvaluate_NoEvidenceRejected(t *testing.T) {
	c := Candidate{
		ClauseA: "The lease terminates automatically at the end of the term.",
		ClauseB: "The lease renews automatically at the end of the term.",
		NLI:     nil,
	}
	d := Evaluate(c, DefaultThresholds)
	assert.False(t, d.Keep)
}

func TestEvaluate_LowOverlapDropped(t *testing.T) {
	c := Candidate{
		ClauseA: "The building has a red roof.",
		ClauseB: "Quarterly revenue grew by double digits.",
		NLI:     &nli.Result{Contradiction: 0.99, Entailment: 0.0, Neutral: 0.01},
	}
	d := Evaluate(c, DefaultThresholds)
	assert.False(t, d.Keep)
}

func TestUnionPairs_Deduplicates(t *testing.T) {
	a, b := uuid.New(), uuid.New()
	out := UnionPairs(
		[][2]uuid.UUID{{a, b}},
		[][2]uuid.UUID{{b, a}},
	)
	assert.Len(t, out, 1)
}
