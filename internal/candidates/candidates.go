// Package candidates implements C6, the candidate finder: it proposes
// clause pairs likely to conflict by cosine similarity over embeddings,
// for intra-document and cross-document comparison.
package candidates

import (
	"math"
)

// Pair is one candidate clause pair with its cosine similarity score.
// Indices refer to the caller's clause slice(s), not database IDs — the
// pipeline layer resolves indices to model.Clause before persisting.
type Pair struct {
	I, J       int
	Similarity float64
}

const cosineEpsilon = 1e-10

// cosineSimilarity computes cosine similarity between two equal-length
// vectors. Returns 0 for mismatched lengths or zero vectors rather than
// NaN, so a malformed embedding degrades a candidate's score to "no match"
// instead of corrupting downstream sorts.
func cosineSimilarity(a, b []float32) float64 {
	if len(a) != len(b) || len(a) == 0 {
		return 0
	}
	var dot, normA, normB float64
	for i := range a {
		da, db := float64(a[i]), float64(b[i])
		dot += da * db
		normA += da * da
		normB += db * db
	}
	denom := math.Sqrt(normA) * math.Sqrt(normB)
	if denom < cosineEpsilon {
		return 0
	}
	return dot / denom
}

// FindIntraDocument returns every clause-index pair (i < j) within a single
// document whose cosine similarity meets threshold. embeddings[i] == nil is
// skipped (clause has no usable embedding).
func FindIntraDocument(embeddings [][]float32, threshold float64) []Pair {
	var pairs []Pair
	for i := 0; i < len(embeddings); i++ {
		if embeddings[i] == nil {
			continue
		}
		for j := i + 1; j < len(embeddings); j++ {
			if embeddings[j] == nil {
				continue
			}
			sim := cosineSimilarity(embeddings[i], embeddings[j])
			if sim >= threshold {
				pairs = append(pairs, Pair{I: i, J: j, Similarity: sim})
			}
		}
	}
	return pairs
}

// FindCrossDocument returns every (i, j) pair with i from docA's clauses
// and j from docB's clauses whose cosine similarity meets threshold — the
// block-matrix equivalent used by C11 when comparing two documents.
func FindCrossDocument(embeddingsA, embeddingsB [][]float32, threshold float64) []Pair {
	var pairs []Pair
	for i, ea := range embeddingsA {
		if ea == nil {
			continue
		}
		for j, eb := range embeddingsB {
			if eb == nil {
				continue
			}
			sim := cosineSimilarity(ea, eb)
			if sim >= threshold {
				pairs = append(pairs, Pair{I: i, J: j, Similarity: sim})
			}
		}
	}
	return pairs
}
