package rules

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/veritas-sh/veritas/internal/model"
)

const authorityOverlapFloor = 0.55

var authorityTerm = regexp.MustCompile(
	`(?i)\b(responsible|authority|department|team|manager|director)\b`,
)

// capitalizedRun matches a run of one or more capitalized words — a cheap
// proper-noun proxy used when NER hasn't labeled a PERSON/ORG for this
// clause pair.
var capitalizedRun = regexp.MustCompile(`\b[A-Z][a-zA-Z]*(\s+[A-Z][a-zA-Z]*)*\b`)

// authorityRule flags clause pairs that both invoke an authority/approval
// term over the same subject matter, but name disjoint capitalized
// entities — two different people or organizations named as the approver,
// signer, or responsible party for the same thing.
type authorityRule struct{}

func (authorityRule) Check(a, b Clause) (Match, bool) {
	if overlap(a.Text, b.Text) <= authorityOverlapFloor {
		return Match{}, false
	}
	if !authorityTerm.MatchString(a.Text) || !authorityTerm.MatchString(b.Text) {
		return Match{}, false
	}

	namesA := properNouns(a)
	namesB := properNouns(b)
	if len(namesA) == 0 || len(namesB) == 0 {
		return Match{}, false
	}
	if !disjoint(namesA, namesB) {
		return Match{}, false
	}

	return Match{
		Type:       model.TypeAuthority,
		Confidence: 70,
		Description: fmt.Sprintf(
			"different parties are named as the responsible authority for the same matter: %s vs %s",
			strings.Join(setKeys(namesA), ", "), strings.Join(setKeys(namesB), ", "),
		),
	}, true
}

// properNouns prefers NER PERSON/ORG labels when available, falling back
// to a capitalized-word-run heuristic.
func properNouns(c Clause) map[string]bool {
	out := make(map[string]bool)
	for _, label := range []string{"PERSON", "ORG"} {
		for _, v := range c.Entities[label] {
			out[v] = true
		}
	}
	if len(out) > 0 {
		return out
	}
	for _, m := range capitalizedRun.FindAllString(c.Text, -1) {
		if isSentenceStartArtifact(m, c.Text) {
			continue
		}
		out[m] = true
	}
	return out
}

// isSentenceStartArtifact filters out a capitalized match that is only the
// first word of the sentence and a common word capitalized by sentence
// position rather than a proper noun.
func isSentenceStartArtifact(match, text string) bool {
	trimmed := strings.TrimSpace(text)
	if !strings.HasPrefix(trimmed, match) || strings.Contains(match, " ") {
		return false
	}
	return stopWords[strings.ToLower(match)]
}

func disjoint(a, b map[string]bool) bool {
	for k := range a {
		if b[k] {
			return false
		}
	}
	return true
}

func setKeys(m map[string]bool) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	return out
}
