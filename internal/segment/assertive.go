package segment

import (
	"regexp"
	"strings"
	"unicode"

	prose "github.com/jdkato/prose/v2"
)

// verbTags are the Penn-Treebank POS tags prose's tagger assigns to any verb
// form (base, past, gerund, third-person singular, ...).
var verbTags = map[string]bool{
	"VB": true, "VBD": true, "VBG": true, "VBN": true, "VBP": true, "VBZ": true,
	"MD": true, // modal, e.g. "shall", "must" — counts as an assertion carrier
}

// isAssertive applies the C2 assertive-sentence test: at least
// minAssertiveTokens tokens, at least one verb, and a start that looks like
// prose (capital letter, digit, opening quote) rather than a loose fragment.
func isAssertive(s string) bool {
	if s == "" {
		return false
	}
	r := []rune(strings.TrimSpace(s))[0]
	if !(unicode.IsUpper(r) || unicode.IsDigit(r) || r == '"' || r == '\'' || r == '“') {
		return false
	}

	doc, err := prose.NewDocument(s, prose.WithSegmentation(false), prose.WithExtraction(false))
	if err != nil {
		return false
	}
	tokens := doc.Tokens()
	if len(tokens) < minAssertiveTokens {
		return false
	}

	hasVerb := false
	for _, tok := range tokens {
		if verbTags[tok.Tag] {
			hasVerb = true
			break
		}
	}
	return hasVerb
}

// noisePatterns reject common boilerplate that survives sentence splitting
// but carries no assertable content: table-of-contents lines, page
// footers, URLs, email addresses, signature blocks, and pure enumerations.
var noisePatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)^table of contents$`),
	regexp.MustCompile(`(?i)^page \d+( of \d+)?$`),
	regexp.MustCompile(`(?i)^\s*confidential\s*$`),
	regexp.MustCompile(`(?i)^\s*draft\s*$`),
	regexp.MustCompile(`(?i)^see (exhibit|appendix|schedule|section) [\divxlc]+`),
	regexp.MustCompile(`https?://\S+`),
	regexp.MustCompile(`\S+@\S+\.\S+`),
	regexp.MustCompile(`(?i)^signature:?\s*$`),
	regexp.MustCompile(`(?i)^date:?\s*$`),
	regexp.MustCompile(`(?i)^(name|title|address|phone|fax):\s*$`),
	regexp.MustCompile(`^[_\-=.]{5,}$`),
	regexp.MustCompile(`(?i)^\[.*\]$`),
	regexp.MustCompile(`(?i)^exhibit [a-z0-9]+$`),
	regexp.MustCompile(`(?i)^\d+\s*$`),
	regexp.MustCompile(`(?i)^appendix [a-z0-9]+$`),
}

// isNoise reports whether s matches a known boilerplate pattern or fails
// the general alpha-content and casing sanity checks.
func isNoise(s string) bool {
	for _, p := range noisePatterns {
		if p.MatchString(s) {
			return true
		}
	}
	if isAllCaps(s) && len(strings.Fields(s)) <= 6 {
		return true
	}
	return lowAlphaRatio(s)
}

// lowAlphaRatio rejects strings where letters make up less than a third of
// non-space characters — usually tables of numbers or punctuation noise
// that slipped past extraction.
func lowAlphaRatio(s string) bool {
	letters, total := 0, 0
	for _, r := range s {
		if unicode.IsSpace(r) {
			continue
		}
		total++
		if unicode.IsLetter(r) {
			letters++
		}
	}
	if total == 0 {
		return true
	}
	return float64(letters)/float64(total) < 0.33
}
