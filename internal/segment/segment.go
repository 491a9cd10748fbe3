// Package segment implements C2, the clause segmenter: it turns cleaned
// document text into an ordered list of assertive clauses suitable for
// embedding and rule checking.
package segment

import (
	"strings"
	"unicode"

	prose "github.com/jdkato/prose/v2"
)

// Clause is one segmented, assertive sentence with its position and
// section heading. The pipeline converts these into model.Clause once IDs
// are assigned.
type Clause struct {
	Text     string
	Position int
	Section  string
}

// minAssertiveTokens is the minimum token count a sentence needs to be
// considered an assertive claim rather than a fragment (spec.md §4.2).
const minAssertiveTokens = 8

// Segment splits text into ordered assertive clauses. Section headings are
// tracked as state while walking paragraphs so each clause can record the
// nearest enclosing heading above it.
func Segment(text string) ([]Clause, error) {
	paragraphs := splitParagraphs(text)

	var clauses []Clause
	var seen []string // content-word signatures of clauses already kept, for dedup
	section := ""
	skipping := false

	for _, para := range paragraphs {
		trimmed := strings.TrimSpace(para)
		if trimmed == "" {
			continue
		}
		if isSectionHeading(trimmed) {
			section = trimmed
			skipping = isSkippableSection(trimmed)
			continue
		}
		if skipping {
			continue
		}

		for _, sentence := range splitSentences(trimmed) {
			for _, candidate := range splitNumberedItems(sentence) {
				candidate = stripNumericPrefix(strings.TrimSpace(candidate))
				if candidate == "" {
					continue
				}
				if !isAssertive(candidate) {
					continue
				}
				if isNoise(candidate) {
					continue
				}
				if isDuplicate(candidate, seen) {
					continue
				}
				seen = append(seen, contentSignature(candidate))
				clauses = append(clauses, Clause{
					Text:     candidate,
					Position: len(clauses),
					Section:  section,
				})
			}
		}
	}
	return clauses, nil
}

func splitParagraphs(text string) []string {
	return strings.Split(text, "\n\n")
}

// splitSentences uses prose's sentence tokenizer, which handles
// abbreviations and punctuation far better than a hand-rolled regex would.
func splitSentences(text string) []string {
	doc, err := prose.NewDocument(text,
		prose.WithTagging(false),
		prose.WithExtraction(false),
		prose.WithSegmentation(true),
	)
	if err != nil {
		// Fall back to treating the whole paragraph as one sentence rather
		// than dropping it.
		return []string{text}
	}
	sentences := doc.Sentences()
	out := make([]string, 0, len(sentences))
	for _, s := range sentences {
		if t := strings.TrimSpace(s.Text); t != "" {
			out = append(out, t)
		}
	}
	if len(out) == 0 {
		return []string{text}
	}
	return out
}

// splitNumberedItems splits a sentence containing "(1) ... (2) ..." style
// lists into individual items. Returns the original string unchanged if no
// such pattern is found.
func splitNumberedItems(s string) []string {
	var parts []string
	var current strings.Builder
	runes := []rune(s)

	for i := 0; i < len(runes); i++ {
		if runes[i] == '(' && i+2 < len(runes) && unicode.IsDigit(runes[i+1]) {
			j := i + 1
			for j < len(runes) && unicode.IsDigit(runes[j]) {
				j++
			}
			if j < len(runes) && runes[j] == ')' {
				before := strings.TrimSpace(current.String())
				if before != "" {
					parts = append(parts, before)
				}
				current.Reset()
				current.WriteString(string(runes[i : j+1]))
				i = j
				continue
			}
		}
		current.WriteRune(runes[i])
	}
	remainder := strings.TrimSpace(current.String())
	if remainder != "" {
		parts = append(parts, remainder)
	}
	if len(parts) <= 1 {
		return []string{s}
	}
	return parts
}
