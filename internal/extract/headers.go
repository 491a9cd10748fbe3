package extract

import (
	"regexp"
	"strings"
)

var (
	pageNumberLine = regexp.MustCompile(`(?i)^\s*(page\s+)?\d{1,4}(\s*(of|/)\s*\d{1,4})?\s*$`)
	numericToken   = regexp.MustCompile(`\d+`)
)

// normalizedForm replaces every run of digits in s with "#" so that a
// running header varying only by page number ("Confidential — Page 3",
// "Confidential — Page 4", ...) is recognized as the same repeating line
// (spec.md §4.1).
func normalizedForm(s string) string {
	return numericToken.ReplaceAllString(s, "#")
}

// stripRunningHeaders removes lines whose page-number-normalized form
// repeats on more than 40% of pages (and on at least two) — running
// headers and footers —
// plus any line that is nothing but a page number. pages holds each page's
// text in reading order.
func stripRunningHeaders(pages []string) string {
	if len(pages) == 0 {
		return ""
	}

	counts := make(map[string]int)
	pageLines := make([][]string, len(pages))
	for i, page := range pages {
		lines := strings.Split(page, "\n")
		pageLines[i] = lines
		seen := make(map[string]bool)
		for _, l := range lines {
			t := strings.TrimSpace(l)
			if t == "" {
				continue
			}
			norm := normalizedForm(t)
			if seen[norm] {
				continue
			}
			seen[norm] = true
			counts[norm]++
		}
	}

	var out strings.Builder
	for _, lines := range pageLines {
		for _, l := range lines {
			t := strings.TrimSpace(l)
			if t == "" {
				out.WriteString("\n")
				continue
			}
			if pageNumberLine.MatchString(t) {
				continue
			}
			n := counts[normalizedForm(t)]
			if len(pages) > 2 && n >= 2 && float64(n) > 0.4*float64(len(pages)) {
				continue
			}
			out.WriteString(l)
			out.WriteString("\n")
		}
		out.WriteString("\n")
	}
	return out.String()
}
