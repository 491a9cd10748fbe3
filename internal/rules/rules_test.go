package rules

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/veritas-sh/veritas/internal/model"
)

func TestNumericRule_FlagsDifferingAmounts(t *testing.T) {
	a := Clause{Text: "The contractor shall pay a penalty of 500 dollars for each late delivery."}
	b := Clause{Text: "The contractor shall pay a penalty of 1000 dollars for each late delivery."}
	m, ok := numericRule{}.Check(a, b)
	require.True(t, ok)
	assert.Equal(t, model.TypeNumeric, m.Type)
}

func TestNumericRule_SkipsLowOverlap(t *testing.T) {
	a := Clause{Text: "The penalty is 500 dollars."}
	b := Clause{Text: "Weather conditions were unusually mild this year."}
	_, ok := numericRule{}.Check(a, b)
	assert.False(t, ok)
}

func TestModalRule_FlagsMandatoryVsOptional(t *testing.T) {
	a := Clause{Text: "Employees must complete the annual safety training by December 1."}
	b := Clause{Text: "Employees may complete the annual safety training by December 1."}
	m, ok := modalRule{}.Check(a, b)
	require.True(t, ok)
	assert.Equal(t, model.TypeModal, m.Type)
}

func TestAuthorityRule_FlagsDifferentApprover(t *testing.T) {
	a := Clause{Text: "The IT department is responsible for compliance with this policy."}
	b := Clause{Text: "The Legal department is responsible for compliance with this policy."}
	m, ok := authorityRule{}.Check(a, b)
	require.True(t, ok)
	assert.Equal(t, model.TypeAuthority, m.Type)
}

func TestEntityRule_FlagsDisjointOrg(t *testing.T) {
	a := Clause{
		Text:     "The vendor for office supplies this quarter is handled under the existing contract.",
		Entities: map[string][]string{"ORG": {"Acme Corp"}},
	}
	b := Clause{
		Text:     "The vendor for office supplies this quarter is handled under the existing contract.",
		Entities: map[string][]string{"ORG": {"Globex Inc"}},
	}
	m, ok := entityRule{}.Check(a, b)
	require.True(t, ok)
	assert.Equal(t, model.TypeEntity, m.Type)
}

func TestEntityRule_SkipsHighCardinality(t *testing.T) {
	a := Clause{
		Text:     "Several vendors were evaluated during the sourcing review for office supplies.",
		Entities: map[string][]string{"ORG": {"Acme Corp", "Globex Inc", "Initech"}},
	}
	b := Clause{
		Text:     "Several vendors were evaluated during the sourcing review for office supplies.",
		Entities: map[string][]string{"ORG": {"Umbrella LLC", "Soylent Co"}},
	}
	_, ok := entityRule{}.Check(a, b)
	assert.False(t, ok)
}

func TestChecker_RunsAllRules(t *testing.T) {
	c := NewChecker()
	a := Clause{Text: "The contractor shall pay a penalty of 500 dollars for each late delivery."}
	b := Clause{Text: "The contractor shall pay a penalty of 1000 dollars for each late delivery."}
	matches := c.Check(a, b)
	assert.NotEmpty(t, matches)
}

func TestOverlap_SharedSubjectScoresHigh(t *testing.T) {
	a := "The tenant shall pay rent on the first day of each month."
	b := "The tenant must pay rent on the first day of every month."
	assert.Greater(t, overlap(a, b), 0.5)
}
