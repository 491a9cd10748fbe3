package rules

import "strings"

// stopWords is a deliberately broad list (~55 entries) so overlap scoring
// reflects shared subject matter rather than shared function words — two
// clauses about completely different topics shouldn't score high overlap
// just because they're both full of "the"/"shall"/"and".
var stopWords = map[string]bool{
	"the": true, "a": true, "an": true, "and": true, "or": true, "of": true,
	"to": true, "in": true, "on": true, "for": true, "with": true, "is": true,
	"are": true, "was": true, "were": true, "be": true, "been": true,
	"being": true, "by": true, "as": true, "at": true, "this": true,
	"that": true, "these": true, "those": true, "it": true, "its": true,
	"shall": true, "will": true, "must": true, "may": true, "not": true,
	"from": true, "into": true, "upon": true, "such": true, "any": true,
	"all": true, "each": true, "other": true, "than": true, "then": true,
	"which": true, "who": true, "whom": true, "if": true, "when": true,
	"within": true, "under": true, "per": true, "has": true, "have": true,
	"had": true, "can": true, "should": true, "would": true, "could": true,
	"there": true, "their": true, "they": true,
}

// contentWords splits s into lowercase alphanumeric tokens, drops stop
// words and tokens shorter than 3 characters, and dedupes.
func contentWords(s string) map[string]bool {
	fields := strings.FieldsFunc(strings.ToLower(s), func(r rune) bool {
		return !(r >= 'a' && r <= 'z' || r >= '0' && r <= '9')
	})
	out := make(map[string]bool, len(fields))
	for _, w := range fields {
		if len(w) < 3 || stopWords[w] {
			continue
		}
		out[w] = true
	}
	return out
}

// Overlap is the exported form of overlap, used by C8 for its
// significance pre-filter over the clause pair as a whole.
func Overlap(a, b string) float64 { return overlap(a, b) }

// ContentWords is the exported form of contentWords, used by C9 to build
// the stop-word-filtered symmetric-difference span for semantic
// descriptions.
func ContentWords(s string) map[string]bool { return contentWords(s) }

// overlap returns the content-word overlap ratio of two clauses: shared
// words divided by the larger set's size (spec.md §4.5).
func overlap(a, b string) float64 {
	wa := contentWords(a)
	wb := contentWords(b)
	if len(wa) == 0 || len(wb) == 0 {
		return 0
	}
	shared := 0
	for w := range wa {
		if wb[w] {
			shared++
		}
	}
	larger := len(wa)
	if len(wb) > larger {
		larger = len(wb)
	}
	return float64(shared) / float64(larger)
}
