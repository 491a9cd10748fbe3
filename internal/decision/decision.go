// Package decision implements C8, the decision layer: it fuses C5's rule
// matches and C7's NLI verdicts on each C6 candidate pair into a final
// keep/drop decision with a type, confidence, and severity.
package decision

import (
	"github.com/veritas-sh/veritas/internal/model"
	"github.com/veritas-sh/veritas/internal/nli"
	"github.com/veritas-sh/veritas/internal/rules"
)

// Thresholds bundles the gate cutoffs C8 applies. Values come from
// internal/config; defaults mirror spec.md §4.8.
type Thresholds struct {
	Significance          float64 // overlap pre-filter floor
	RuleBackedFloor       float64 // confidence gate floor when a rule matched
	NonRuleBackedFloor    float64 // confidence gate floor with no rule match
	EntailmentVetoCeiling float64
}

// DefaultThresholds matches spec.md §4.8/§9.
var DefaultThresholds = Thresholds{
	Significance:          0.30,
	RuleBackedFloor:       0.50,
	NonRuleBackedFloor:    0.75,
	EntailmentVetoCeiling: 0.50,
}

// Candidate is everything C8 needs to decide one clause pair: the clause
// texts (for the overlap pre-filter), whatever rules fired on the pair,
// and the NLI verdict if one was computed. NLI is a pointer because C8 can
// decide numeric-rule-backed pairs without ever calling C7 (spec.md §9's
// numeric-rule bypass).
type Candidate struct {
	ClauseA, ClauseB string
	RuleMatches      []rules.Match
	NLI              *nli.Result
}

// Decision is C8's verdict on one candidate.
type Decision struct {
	Keep        bool
	Type        model.ContradictionType
	Confidence  float64 // 0-100
	Severity    model.Severity
	RuleBacked  bool
	Description string // only set when a rule produced one; C9 fills in the rest
}

// Evaluate applies the full C8 gate sequence to one candidate and returns
// the final decision.
func Evaluate(c Candidate, t Thresholds) Decision {
	if rules.Overlap(c.ClauseA, c.ClauseB) < t.Significance {
		return Decision{Keep: false}
	}

	rule, ruleBacked := dominantRule(c.RuleMatches)
	numericBypass := ruleBacked && rule.Type == model.TypeNumeric

	p, e, n := nliTriple(c.NLI)

	if !numericBypass {
		floor := t.NonRuleBackedFloor
		if ruleBacked {
			floor = t.RuleBackedFloor
		}
		if p <= floor {
			return Decision{Keep: false}
		}
		if !(p > e && p > n) {
			return Decision{Keep: false}
		}
		if e > t.EntailmentVetoCeiling {
			return Decision{Keep: false}
		}
	}

	ctype := model.TypeSemantic
	confidence := p * 100
	description := ""
	if ruleBacked {
		ctype = rule.Type
		description = rule.Description
		if numericBypass {
			confidence = rule.Confidence
		}
	}

	severity, ok := model.SeverityForConfidence(confidence)
	if !ok {
		return Decision{Keep: false}
	}

	return Decision{
		Keep:        true,
		Type:        ctype,
		Confidence:  confidence,
		Severity:    severity,
		RuleBacked:  ruleBacked,
		Description: description,
	}
}

// dominantRule picks the highest-confidence rule match when more than one
// rule fired on the same pair.
func dominantRule(matches []rules.Match) (rules.Match, bool) {
	if len(matches) == 0 {
		return rules.Match{}, false
	}
	best := matches[0]
	for _, m := range matches[1:] {
		if m.Confidence > best.Confidence {
			best = m
		}
	}
	return best, true
}

// nliTriple extracts (contradiction, entailment, neutral) from an optional
// NLI result, treating a missing result as maximally uncertain (all gates
// except the numeric bypass will reject it, which is correct: a candidate
// with no rule backing and no NLI confirmation has no evidence at all).
func nliTriple(r *nli.Result) (p, e, n float64) {
	if r == nil {
		return 0, 0, 1
	}
	return r.Contradiction, r.Entailment, r.Neutral
}
