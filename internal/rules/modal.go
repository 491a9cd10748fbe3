package rules

import (
	"fmt"
	"regexp"

	"github.com/veritas-sh/veritas/internal/model"
)

const modalOverlapFloor = 0.55

var (
	strongModal = regexp.MustCompile(`(?i)\b(must|shall|required|mandatory|obligatory)\b`)
	weakModal   = regexp.MustCompile(`(?i)\b(may|can|optional|permitted|allowed)\b`)
)

// modalRule flags clause pairs that cover the same subject (high content
// overlap) but disagree on obligation strength: one side says something is
// mandatory, the other says it's optional.
type modalRule struct{}

func (modalRule) Check(a, b Clause) (Match, bool) {
	if overlap(a.Text, b.Text) <= modalOverlapFloor {
		return Match{}, false
	}

	aStrong, aWeak := strongModal.MatchString(a.Text), weakModal.MatchString(a.Text)
	bStrong, bWeak := strongModal.MatchString(b.Text), weakModal.MatchString(b.Text)

	if (aStrong && bWeak) || (aWeak && bStrong) {
		return Match{
			Type:       model.TypeModal,
			Confidence: 75,
			Description: fmt.Sprintf(
				"one clause treats this as mandatory while the other treats it as optional: %q vs %q",
				a.Text, b.Text,
			),
		}, true
	}
	return Match{}, false
}
