// Package describe implements C9, the description builder: it turns a
// kept decision and its clause pair into a human-readable explanation of
// why the pair was flagged.
package describe

import (
	"fmt"

	"github.com/veritas-sh/veritas/internal/model"
)

// maxSnippetTokens caps how much of a clause's differing span gets quoted
// in a generated description — enough to be recognizable, short enough to
// stay readable in a list of findings.
const maxSnippetTokens = 12

// Build returns a human-readable description of the conflict between a and
// b. If ruleDescription is non-empty (the decision was rule-backed), it is
// used as-is — the rule already explains itself better than a generic
// symmetric-difference summary could. Otherwise a semantic or numeric
// description is synthesized from the clauses' differing content.
// confidence is the decision's percent confidence, used only by the
// semantic fallback when no span could be extracted.
func Build(a, b string, ctype model.ContradictionType, ruleDescription string, confidence float64) string {
	if ruleDescription != "" {
		return ruleDescription
	}
	switch ctype {
	case model.TypeNumeric, model.TypeFinancial:
		if d := numericDescription(a, b); d != "" {
			return d
		}
	}
	return semanticDescription(a, b, confidence)
}

// semanticDescription finds the longest differing span on each side (see
// longestUniqueSpan) and reports them side by side. Falls back to a
// confidence-only message when either side has no extractable span.
func semanticDescription(a, b string, confidence float64) string {
	spanA := longestUniqueSpan(a, b)
	spanB := longestUniqueSpan(b, a)
	if spanA == "" || spanB == "" {
		return fmt.Sprintf("Semantic conflict detected (confidence: %.0f%%)", confidence)
	}
	return fmt.Sprintf("Semantic conflict: '%s' vs '%s'", spanA, spanB)
}
