package extract

import (
	"bytes"
	"fmt"

	"github.com/ledongthuc/pdf"
)

// pdfExtractor pulls text out of PDF pages and strips running headers and
// footers that would otherwise pollute the plain-text output (the same
// heading/footer line repeated on every page is never an assertive claim).
type pdfExtractor struct{}

func (pdfExtractor) Extract(filename string, data []byte) (string, error) {
	r, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", fmt.Errorf("extract: open pdf %s: %w", filename, err)
	}

	total := r.NumPage()
	pages := make([]string, 0, total)
	for i := 1; i <= total; i++ {
		page := r.Page(i)
		if page.V.IsNull() {
			continue
		}
		text, err := page.GetPlainText(nil)
		if err != nil {
			// A single malformed page shouldn't fail the whole document;
			// skip it and keep going.
			continue
		}
		pages = append(pages, text)
	}

	return stripRunningHeaders(pages), nil
}
