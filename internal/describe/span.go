package describe

import (
	"strings"

	"github.com/veritas-sh/veritas/internal/rules"
)

// longestUniqueSpan finds the part of a that distinguishes it from b: the
// longest contiguous run of original-casing tokens whose lower-cased,
// punctuation-stripped form lies in a's content-word set (stop list + min
// length 3) but not b's, prefixed by one token of left context for
// readability and capped at maxSnippetTokens. If no contiguous run exists,
// falls back to the first maxSnippetTokens unique words in document order.
// Returns "" if a has no content word absent from b.
func longestUniqueSpan(a, b string) string {
	contentA := rules.ContentWords(a)
	contentB := rules.ContentWords(b)

	isDiff := func(w string) bool {
		norm := trimPunct(strings.ToLower(w))
		return contentA[norm] && !contentB[norm]
	}

	words := strings.Fields(a)
	bestStart, bestLen := -1, 0
	curStart, curLen := -1, 0

	for i, w := range words {
		if isDiff(w) {
			if curStart == -1 {
				curStart = i
			}
			curLen++
			if curLen > bestLen {
				bestLen = curLen
				bestStart = curStart
			}
		} else {
			curStart, curLen = -1, 0
		}
	}

	if bestStart == -1 {
		return firstUniqueWordsInOrder(words, isDiff)
	}

	start := bestStart
	if start > 0 {
		start--
	}
	end := bestStart + bestLen
	if end-start > maxSnippetTokens {
		end = start + maxSnippetTokens
	}
	return strings.Join(words[start:end], " ")
}

// firstUniqueWordsInOrder collects the first maxSnippetTokens words of
// words for which isDiff holds, preserving document order. Used when a's
// unique content words never form a contiguous run.
func firstUniqueWordsInOrder(words []string, isDiff func(string) bool) string {
	var out []string
	for _, w := range words {
		if isDiff(w) {
			out = append(out, w)
			if len(out) == maxSnippetTokens {
				break
			}
		}
	}
	if len(out) == 0 {
		return ""
	}
	return strings.Join(out, " ")
}

func trimPunct(s string) string {
	return strings.Trim(s, ".,;:!?\"'()[]")
}
