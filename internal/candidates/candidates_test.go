package candidates

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCosineSimilarity_Identical(t *testing.T) {
	a := []float32{1, 0, 0}
	assert.InDelta(t, 1.0, cosineSimilarity(a, a), 1e-9)
}

func TestCosineSimilarity_Orthogonal(t *testing.T) {
	a := []float32{1, 0}
	b := []float32{0, 1}
	assert.InDelta(t, 0.0, cosineSimilarity(a, b), 1e-9)
}

func TestCosineSimilarity_MismatchedLength(t *testing.T) {
	assert.Equal(t, 0.0, cosineSimilarity([]float32{1, 2}, []float32{1}))
}

func TestCosineSimilarity_ZeroVector(t *testing.T) {
	assert.Equal(t, 0.0, cosineSimilarity([]float32{0, 0}, []float32{1, 1}))
}

func TestFindIntraDocument_SkipsNilEmbeddings(t *testing.T) {
	embeddings := [][]float32{
		{1, 0, 0},
		nil,
		{1, 0, 0},
	}
	pairs := FindIntraDocument(embeddings, 0.8)
	assert.Len(t, pairs, 1)
	assert.Equal(t, Pair{I: 0, J: 2, Similarity: 1.0}, pairs[0])
}

func TestFindCrossDocument_ReturnsBlockMatches(t *testing.T) {
	a := [][]float32{{1, 0}, {0, 1}}
	b := [][]float32{{1, 0}}
	pairs := FindCrossDocument(a, b, 0.9)
	assert.Len(t, pairs, 1)
	assert.Equal(t, 0, pairs[0].I)
	assert.Equal(t, 0, pairs[0].J)
}
