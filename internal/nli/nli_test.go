package nli

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSoftmax_SumsToOne(t *testing.T) {
	r := softmax([3]float64{2, 1, 0})
	assert.InDelta(t, 1.0, r.Contradiction+r.Entailment+r.Neutral, 1e-9)
	assert.Greater(t, r.Contradiction, r.Entailment)
	assert.Greater(t, r.Entailment, r.Neutral)
}

func TestSoftmax_StableUnderLargeLogits(t *testing.T) {
	r := softmax([3]float64{1000, 999, 1})
	assert.InDelta(t, 1.0, r.Contradiction+r.Entailment+r.Neutral, 1e-6)
	assert.False(t, isNaN(r.Contradiction))
}

func isNaN(f float64) bool { return f != f }

func TestNoopVerifier_ReturnsNeutral(t *testing.T) {
	v := NoopVerifier{}
	results, err := v.Verify(context.Background(), []Pair{{Premise: "a", Hypothesis: "b"}})
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, 1.0, results[0].Neutral)
}
