package ner

import "regexp"

// lexicalPatterns recognize the numeric/temporal entity classes prose/v2's
// IOB tagger doesn't cover. Each pattern's matches are attributed to the
// label it's keyed under.
var lexicalPatterns = map[string]*regexp.Regexp{
	LabelMoney: regexp.MustCompile(
		`(?i)\$\s?[\d,]+(\.\d+)?(\s?(million|billion|thousand|k|m|bn))?|[\d,]+(\.\d+)?\s?(dollars|USD|EUR|euros|GBP|pounds)`,
	),
	LabelPercent: regexp.MustCompile(`\d+(\.\d+)?\s?%|\d+(\.\d+)?\s?percent`),
	LabelDate: regexp.MustCompile(
		`(?i)\b(january|february|march|april|may|june|july|august|september|october|november|december)\s+\d{1,2}(st|nd|rd|th)?,?\s+\d{4}\b` +
			`|\b\d{1,2}/\d{1,2}/\d{2,4}\b` +
			`|\b\d{4}-\d{2}-\d{2}\b`,
	),
	LabelTime: regexp.MustCompile(`\b\d{1,2}:\d{2}\s?(am|pm|AM|PM)?\b`),
	LabelOrdinal: regexp.MustCompile(
		`(?i)\b\d+(st|nd|rd|th)\b|\b(first|second|third|fourth|fifth|sixth|seventh|eighth|ninth|tenth)\b`,
	),
	LabelQuantity: regexp.MustCompile(
		`(?i)\b\d+(\.\d+)?\s?(kg|kilograms?|lbs?|pounds?|miles?|km|kilometers?|meters?|feet|ft|gallons?|liters?|units?|days?|weeks?|months?|years?|hours?)\b`,
	),
	LabelCardinal: regexp.MustCompile(`\b\d+(\.\d+)?\b`),
}

// lexicalEntities runs every pattern in lexicalPatterns over text and
// returns the matches grouped by label. CARDINAL matches overlapping text
// already claimed by a more specific class (MONEY, PERCENT, ...) are not
// double-counted.
func lexicalEntities(text string) map[string][]string {
	out := make(map[string][]string)
	var claimed [][2]int

	order := []string{LabelMoney, LabelPercent, LabelDate, LabelTime, LabelOrdinal, LabelQuantity, LabelCardinal}
	for _, label := range order {
		pattern := lexicalPatterns[label]
		for _, loc := range pattern.FindAllStringIndex(text, -1) {
			if label == LabelCardinal {
				inside := false
				for _, c := range claimed {
					if loc[0] < c[1] && c[0] < loc[1] {
						inside = true
						break
					}
				}
				if inside {
					continue
				}
			}
			out[label] = append(out[label], text[loc[0]:loc[1]])
			claimed = append(claimed, [2]int{loc[0], loc[1]})
		}
	}
	return out
}
