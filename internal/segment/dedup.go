package segment

import "strings"

// nearDuplicateOverlap is the content-word overlap ratio above which two
// clauses are considered the same claim restated (e.g. a clause repeated in
// a summary section).
const nearDuplicateOverlap = 0.85

var dedupStopWords = map[string]bool{
	"the": true, "a": true, "an": true, "and": true, "or": true, "of": true,
	"to": true, "in": true, "on": true, "for": true, "with": true, "is": true,
	"are": true, "was": true, "were": true, "be": true, "by": true, "as": true,
	"at": true, "this": true, "that": true, "it": true, "its": true,
}

// contentSignature returns the lowercased, stopword-stripped, sorted-unique
// content words of s, used both for exact-duplicate comparison and as the
// basis for near-duplicate overlap scoring.
func contentSignature(s string) string {
	words := contentWords(s)
	return strings.Join(words, " ")
}

func contentWords(s string) []string {
	fields := strings.FieldsFunc(strings.ToLower(s), func(r rune) bool {
		return !(r >= 'a' && r <= 'z' || r >= '0' && r <= '9')
	})
	seen := make(map[string]bool, len(fields))
	out := make([]string, 0, len(fields))
	for _, w := range fields {
		if len(w) < 3 || dedupStopWords[w] {
			continue
		}
		if seen[w] {
			continue
		}
		seen[w] = true
		out = append(out, w)
	}
	return out
}

// isDuplicate reports whether candidate is an exact or near-duplicate
// (>=nearDuplicateOverlap content-word overlap) of any previously kept
// clause's signature.
func isDuplicate(candidate string, seenSignatures []string) bool {
	sig := contentSignature(candidate)
	words := strings.Fields(sig)
	wordSet := make(map[string]bool, len(words))
	for _, w := range words {
		wordSet[w] = true
	}
	for _, prior := range seenSignatures {
		if prior == sig {
			return true
		}
		if overlapRatio(wordSet, strings.Fields(prior)) >= nearDuplicateOverlap {
			return true
		}
	}
	return false
}

func overlapRatio(a map[string]bool, bWords []string) float64 {
	if len(a) == 0 || len(bWords) == 0 {
		return 0
	}
	shared := 0
	for _, w := range bWords {
		if a[w] {
			shared++
		}
	}
	smaller := len(a)
	if len(bWords) < smaller {
		smaller = len(bWords)
	}
	if smaller == 0 {
		return 0
	}
	return float64(shared) / float64(smaller)
}
