package segment

import (
	"regexp"
	"strings"
	"unicode"
)

var (
	numberedHeading = regexp.MustCompile(`^(article|section|clause|part|exhibit|appendix|schedule)\s+[\divxlcIVXLC]+\b`)
	decimalPrefix   = regexp.MustCompile(`^\d+(\.\d+)*[.)]\s+`)
	bulletPrefix    = regexp.MustCompile(`^[-•*●▪]\s+`)
)

// skippableSectionNames are heading words/phrases that introduce a whole
// section with no assertable clauses of its own (spec.md §4.2 step 2) —
// everything up to the next heading is dropped rather than run through the
// assertive test.
var skippableSectionNames = []*regexp.Regexp{
	regexp.MustCompile(`(?i)\btable of contents\b`),
	regexp.MustCompile(`(?i)\bcontents\b`),
	regexp.MustCompile(`(?i)\bindex\b`),
	regexp.MustCompile(`(?i)\bappendix\b`),
	regexp.MustCompile(`(?i)\bglossary\b`),
	regexp.MustCompile(`(?i)\bdefinitions\b`),
	regexp.MustCompile(`(?i)\babbreviations\b`),
	regexp.MustCompile(`(?i)\bacronyms\b`),
	regexp.MustCompile(`(?i)\breferences\b`),
	regexp.MustCompile(`(?i)\bbibliography\b`),
	regexp.MustCompile(`(?i)\battachments\b`),
	regexp.MustCompile(`(?i)\bannexure\b`),
	regexp.MustCompile(`(?i)\bsignature page\b`),
	regexp.MustCompile(`(?i)\bexecution page\b`),
	regexp.MustCompile(`(?i)\bwitness\b`),
}

// isSkippableSection reports whether heading introduces one of the
// whole-section skip categories, regardless of leading numbering
// ("Appendix A", "Section 9: Definitions").
func isSkippableSection(heading string) bool {
	for _, p := range skippableSectionNames {
		if p.MatchString(heading) {
			return true
		}
	}
	return false
}

// isSectionHeading reports whether line looks like a structural heading
// rather than a sentence: a short line matching a numbered-section pattern
// (in any casing), or a short all-caps line with no terminal punctuation.
// Title-cased lines without numbering are not treated as headings.
func isSectionHeading(line string) bool {
	if len(line) > 80 {
		return false
	}
	lower := strings.ToLower(line)
	if numberedHeading.MatchString(lower) {
		return true
	}
	if strings.HasSuffix(line, ".") || strings.HasSuffix(line, "!") || strings.HasSuffix(line, "?") {
		return false
	}
	words := strings.Fields(line)
	if len(words) == 0 || len(words) > 10 {
		return false
	}
	if isAllCaps(line) {
		return true
	}
	return false
}

func isAllCaps(s string) bool {
	hasLetter := false
	for _, r := range s {
		if unicode.IsLetter(r) {
			hasLetter = true
			if unicode.IsLower(r) {
				return false
			}
		}
	}
	return hasLetter
}

// stripNumericPrefix removes a leading list/section numbering like "3.2)"
// or a bullet marker, so the numbering itself never becomes part of the
// clause text compared during overlap checks.
func stripNumericPrefix(s string) string {
	s = decimalPrefix.ReplaceAllString(s, "")
	s = bulletPrefix.ReplaceAllString(s, "")
	return strings.TrimSpace(s)
}
