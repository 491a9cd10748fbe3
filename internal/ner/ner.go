// Package ner implements C4, the named-entity extractor: it labels each
// clause with the entities it mentions, feeding C5's entity-mismatch rule
// and C9's description builder.
package ner

import (
	"strings"

	prose "github.com/jdkato/prose/v2"
)

// Retained entity labels. prose/v2's IOB model natively tags PERSON, ORG,
// and LOC; the rest are recovered with the lexical/regex heuristics in
// lexical.go since no pack dependency ships a broader NER model.
const (
	LabelPerson    = "PERSON"
	LabelOrg       = "ORG"
	LabelLoc       = "LOC"
	LabelGPE       = "GPE"
	LabelDate      = "DATE"
	LabelTime      = "TIME"
	LabelMoney     = "MONEY"
	LabelPercent   = "PERCENT"
	LabelQuantity  = "QUANTITY"
	LabelCardinal  = "CARDINAL"
	LabelOrdinal   = "ORDINAL"
	LabelLaw       = "LAW"
	LabelProduct   = "PRODUCT"
	LabelEvent     = "EVENT"
)

// Extractor labels clause text with named entities.
type Extractor interface {
	Extract(text string) map[string][]string
}

// ProseExtractor extracts PERSON/ORG/LOC via prose/v2's IOB tagger and
// layers regex-based recognition for the numeric/temporal classes on top.
type ProseExtractor struct{}

func New() *ProseExtractor { return &ProseExtractor{} }

// Extract returns a label -> deduplicated surface forms map, always
// non-nil. If the underlying model fails to load, the map holds only the
// regex-based lexical matches (possibly none) — C4 degrades gracefully
// rather than failing the pipeline (spec.md §4.4).
func (e *ProseExtractor) Extract(text string) map[string][]string {
	out := make(map[string][]string)

	doc, err := prose.NewDocument(text,
		prose.WithTagging(true),
		prose.WithExtraction(true),
		prose.WithSegmentation(false),
	)
	if err == nil {
		for _, ent := range doc.Entities() {
			label := normalizeProseLabel(ent.Label)
			if label == "" {
				continue
			}
			appendUnique(out, label, ent.Text)
		}
	}

	for label, matches := range lexicalEntities(text) {
		for _, m := range matches {
			appendUnique(out, label, m)
		}
	}

	if len(out) == 0 {
		return out
	}
	return out
}

func normalizeProseLabel(label string) string {
	switch strings.ToUpper(label) {
	case "PERSON":
		return LabelPerson
	case "ORG", "ORGANIZATION":
		return LabelOrg
	case "LOC", "LOCATION", "GPE":
		return LabelLoc
	default:
		return ""
	}
}

func appendUnique(m map[string][]string, label, value string) {
	value = strings.TrimSpace(value)
	if value == "" {
		return
	}
	for _, v := range m[label] {
		if strings.EqualFold(v, value) {
			return
		}
	}
	m[label] = append(m[label], value)
}
