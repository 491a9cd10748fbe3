// Package rules implements C5, the symbolic rule checker: a set of
// deterministic checks that flag clause pairs as conflicting without
// needing an embedding or an NLI call. A numeric match bypasses C8's
// decision gates since the evidence is already explicit rather than
// inferred from a similarity score; the other rule-backed pairs still go
// through them, with the lower rule-backed confidence floor.
package rules

import (
	"github.com/veritas-sh/veritas/internal/model"
)

// Match is one rule's verdict that a clause pair conflicts.
type Match struct {
	Type        model.ContradictionType
	Confidence  float64 // 0-100
	Description string
}

// Clause is the minimal view a rule needs: the text and any NER labels
// already extracted for it.
type Clause struct {
	Text     string
	Entities map[string][]string
}

// Rule evaluates a single ordered clause pair and reports whether it found
// a conflict.
type Rule interface {
	Check(a, b Clause) (Match, bool)
}

// Checker runs every registered Rule over a clause pair and returns every
// match found — a pair can trigger more than one rule (e.g. both a numeric
// and an entity mismatch), and C8 decides which to keep.
type Checker struct {
	rules []Rule
}

// NewChecker builds the default rule set: numeric, modal, authority, and
// entity mismatch.
func NewChecker() *Checker {
	return &Checker{
		rules: []Rule{
			numericRule{},
			modalRule{},
			authorityRule{},
			entityRule{},
		},
	}
}

// Check runs all rules over (a, b) and returns every match found.
func (c *Checker) Check(a, b Clause) []Match {
	var matches []Match
	for _, r := range c.rules {
		if m, ok := r.Check(a, b); ok {
			matches = append(matches, m)
		}
	}
	return matches
}
