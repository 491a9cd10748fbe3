package rules

import (
	"fmt"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/veritas-sh/veritas/internal/model"
)

const numericOverlapFloor = 0.40

var numberPattern = regexp.MustCompile(`\b\d[\d,]*(\.\d+)?\b`)

var numberWords = map[string]float64{
	"zero": 0, "one": 1, "two": 2, "three": 3, "four": 4, "five": 5,
	"six": 6, "seven": 7, "eight": 8, "nine": 9, "ten": 10,
	"eleven": 11, "twelve": 12, "thirteen": 13, "fourteen": 14,
	"fifteen": 15, "twenty": 20, "thirty": 30, "forty": 40, "fifty": 50,
	"sixty": 60, "seventy": 70, "eighty": 80, "ninety": 90,
	"hundred": 100, "thousand": 1000, "million": 1000000,
	"once": 1, "twice": 2, "thrice": 3,
	"first": 1, "second": 2, "third": 3, "fourth": 4, "fifth": 5,
}

// extractNumbers pulls numeric literals and spelled-out number words out of
// s, returning their float values.
func extractNumbers(s string) []float64 {
	var nums []float64
	for _, m := range numberPattern.FindAllString(s, -1) {
		cleaned := strings.ReplaceAll(m, ",", "")
		if v, err := strconv.ParseFloat(cleaned, 64); err == nil {
			nums = append(nums, v)
		}
	}
	words := strings.FieldsFunc(strings.ToLower(s), func(r rune) bool {
		return r < 'a' || r > 'z'
	})
	for _, w := range words {
		if v, ok := numberWords[w]; ok {
			nums = append(nums, v)
		}
	}
	return nums
}

// numericRule flags clause pairs that discuss the same subject (overlap
// above numericOverlapFloor) but state different numeric values — the
// textbook case is two price or deadline clauses about the same item.
type numericRule struct{}

func (numericRule) Check(a, b Clause) (Match, bool) {
	if overlap(a.Text, b.Text) < numericOverlapFloor {
		return Match{}, false
	}
	numsA := extractNumbers(a.Text)
	numsB := extractNumbers(b.Text)
	if len(numsA) == 0 || len(numsB) == 0 {
		return Match{}, false
	}

	if sameMultiset(numsA, numsB) {
		return Match{}, false
	}

	return Match{
		Type:       model.TypeNumeric,
		Confidence: 90,
		Description: fmt.Sprintf(
			"one clause states %s while the other states %s for the same subject matter",
			formatNumbers(numsA), formatNumbers(numsB),
		),
	}, true
}

// sameMultiset reports whether a and b contain the same numbers with the
// same multiplicities, ignoring order — the numeric rule only suppresses a
// match when both clauses state exactly the same figures (spec.md §4.5:
// sharing one number, like a fee repeated alongside a differing deadline,
// must still fire).
func sameMultiset(a, b []float64) bool {
	if len(a) != len(b) {
		return false
	}
	sa := append([]float64(nil), a...)
	sb := append([]float64(nil), b...)
	sort.Float64s(sa)
	sort.Float64s(sb)
	for i := range sa {
		if sa[i] != sb[i] {
			return false
		}
	}
	return true
}

func formatNumbers(nums []float64) string {
	parts := make([]string, 0, len(nums))
	for _, n := range nums {
		if n == float64(int64(n)) {
			parts = append(parts, strconv.FormatInt(int64(n), 10))
		} else {
			parts = append(parts, strconv.FormatFloat(n, 'f', -1, 64))
		}
	}
	return strings.Join(parts, ", ")
}
