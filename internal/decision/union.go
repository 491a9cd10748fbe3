package decision

import "github.com/google/uuid"

// PairKey is the canonical, order-independent identity of a clause pair —
// re-exported shape of model.PairKey so callers assembling candidate sets
// don't need to import model just for this.
type PairKey [2]uuid.UUID

// UnionPairs merges C5's rule-flagged pairs and C6's similarity-flagged
// pairs into one deduplicated set of clause IDs to evaluate. A pair found
// by both C5 and C6 is evaluated once, with both signals available to
// Evaluate via the caller's own Candidate assembly.
func UnionPairs(rulePairs, similarityPairs [][2]uuid.UUID) []PairKey {
	seen := make(map[PairKey]bool)
	var out []PairKey
	add := func(a, b uuid.UUID) {
		k := canonicalKey(a, b)
		if seen[k] {
			return
		}
		seen[k] = true
		out = append(out, k)
	}
	for _, p := range rulePairs {
		add(p[0], p[1])
	}
	for _, p := range similarityPairs {
		add(p[0], p[1])
	}
	return out
}

func canonicalKey(a, b uuid.UUID) PairKey {
	if lessUUID(b, a) {
		return PairKey{b, a}
	}
	return PairKey{a, b}
}

func lessUUID(a, b uuid.UUID) bool {
	for i := range a {
		if a[i] != b[i] {
			return a[i] < b[i]
		}
	}
	return false
}
