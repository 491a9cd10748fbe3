package nli

import "context"

// NoopVerifier returns a neutral verdict for every pair. Used when no NLI
// backend is configured; C8's entailment veto and dominance gates will
// reject semantic-only candidates under a neutral verdict (as they should
// — there's no model confirming the conflict). Numeric-rule matches bypass
// these gates, so numeric detection still works; modal, authority and
// entity matches still need an NLI contradiction probability above the
// rule-backed floor and are dropped under a neutral verdict.
type NoopVerifier struct{}

func (NoopVerifier) Verify(_ context.Context, pairs []Pair) ([]Result, error) {
	out := make([]Result, len(pairs))
	for i := range out {
		out[i] = Result{Neutral: 1}
	}
	return out, nil
}
