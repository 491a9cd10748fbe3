package rules

import (
	"fmt"
	"strings"

	"github.com/veritas-sh/veritas/internal/model"
)

const (
	entityOverlapFloor  = 0.50
	maxCombinedEntities = 4 // above this, differing entity sets are normal variety, not a conflict
)

// entityGroup bundles related NER labels under one semantic comparison, the
// contradiction type a mismatch in that group should be reported as, and the
// confidence spec.md §4.5 assigns to that group.
type entityGroup struct {
	labels     []string
	ctype      model.ContradictionType
	confidence float64
}

var entityGroups = []entityGroup{
	{labels: []string{"DATE", "TIME"}, ctype: model.TypeDate, confidence: 85},
	{labels: []string{"MONEY", "PERCENT"}, ctype: model.TypeFinancial, confidence: 88},
	{labels: []string{"PERSON", "ORG"}, ctype: model.TypeEntity, confidence: 75},
	{labels: []string{"GPE", "LOC"}, ctype: model.TypeLocation, confidence: 78},
	{labels: []string{"QUANTITY", "CARDINAL"}, ctype: model.TypeQuantity, confidence: 80},
}

// entityRule flags clause pairs that discuss the same subject but name
// disjoint entities within one semantic group (e.g. clause A names
// "Acme Corp" as the vendor, clause B names "Globex Inc" for the same
// role). Skipped when the two sides together mention more than
// maxCombinedEntities distinct values in the group — that's just clauses
// listing many entities, not a one-to-one disagreement.
type entityRule struct{}

func (entityRule) Check(a, b Clause) (Match, bool) {
	if overlap(a.Text, b.Text) < entityOverlapFloor {
		return Match{}, false
	}

	for _, group := range entityGroups {
		valsA := groupValues(a.Entities, group.labels)
		valsB := groupValues(b.Entities, group.labels)
		if len(valsA) == 0 || len(valsB) == 0 {
			continue
		}
		if len(valsA)+len(valsB) > maxCombinedEntities {
			continue
		}
		if !disjoint(valsA, valsB) {
			continue
		}
		return Match{
			Type:       group.ctype,
			Confidence: group.confidence,
			Description: fmt.Sprintf(
				"clauses on the same subject name different entities: %s vs %s",
				strings.Join(setKeys(valsA), ", "), strings.Join(setKeys(valsB), ", "),
			),
		}, true
	}
	return Match{}, false
}

func groupValues(entities map[string][]string, labels []string) map[string]bool {
	out := make(map[string]bool)
	for _, label := range labels {
		for _, v := range entities[label] {
			out[strings.ToLower(v)] = true
		}
	}
	return out
}
