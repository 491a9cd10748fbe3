package describe

import (
	"fmt"
	"regexp"
	"strings"
)

var numberToken = regexp.MustCompile(`^\d[\d,]*(\.\d+)?$`)

// numericDescription extracts every number on each side together with its
// trailing 1-2 word context, picks the number on each side whose context
// shares the most words with the other clause (same topic, different
// figure), and reports the two side by side. Returns "" if either side has
// no number.
func numericDescription(a, b string) string {
	numsA := numberContexts(a)
	numsB := numberContexts(b)
	if len(numsA) == 0 || len(numsB) == 0 {
		return ""
	}
	bestA := bestMatchingContext(numsA, b)
	bestB := bestMatchingContext(numsB, a)
	return fmt.Sprintf("Numeric conflict: %s %s vs %s %s", bestA.num, bestA.ctx, bestB.num, bestB.ctx)
}

// numberContext is a number found in a clause together with the 1-2 words
// immediately following it.
type numberContext struct {
	num string
	ctx string
}

func numberContexts(s string) []numberContext {
	words := strings.Fields(s)
	var out []numberContext
	for i, w := range words {
		cleaned := trimPunct(w)
		if !numberToken.MatchString(cleaned) {
			continue
		}
		end := i + 1
		if end < len(words) {
			end++
		}
		if end > len(words) {
			end = len(words)
		}
		ctx := ""
		if i+1 <= len(words) {
			ctx = strings.Join(words[i+1:end], " ")
		}
		out = append(out, numberContext{num: cleaned, ctx: ctx})
	}
	return out
}

// bestMatchingContext picks the candidate whose trailing context shares the
// most words with other — the number that's talking about the same thing
// the other clause is.
func bestMatchingContext(cands []numberContext, other string) numberContext {
	otherWords := make(map[string]bool)
	for _, w := range strings.Fields(strings.ToLower(other)) {
		otherWords[trimPunct(w)] = true
	}
	best := cands[0]
	bestScore := -1
	for _, c := range cands {
		score := 0
		for _, w := range strings.Fields(strings.ToLower(c.ctx)) {
			if otherWords[trimPunct(w)] {
				score++
			}
		}
		if score > bestScore {
			bestScore = score
			best = c
		}
	}
	return best
}
