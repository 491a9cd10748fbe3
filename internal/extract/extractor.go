// Package extract implements C1, the text extractor: it turns a raw
// document (PDF, DOCX, or TXT bytes) into clean, paragraph-delimited plain
// text ready for clause segmentation.
package extract

import (
	"fmt"
	"path/filepath"
	"regexp"
	"strings"
)

// Extractor pulls plain text out of a document's raw bytes.
type Extractor interface {
	Extract(filename string, data []byte) (string, error)
}

// New returns the Extractor appropriate for filename's extension.
func New(filename string) (Extractor, error) {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".pdf":
		return pdfExtractor{}, nil
	case ".docx":
		return docxExtractor{}, nil
	case ".txt":
		return txtExtractor{}, nil
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedFormat, filepath.Ext(filename))
	}
}

// Extract dispatches to the format-appropriate Extractor for filename and
// runs the shared cleanup pass over its output.
func Extract(filename string, data []byte) (string, error) {
	ex, err := New(filename)
	if err != nil {
		return "", err
	}
	raw, err := ex.Extract(filename, data)
	if err != nil {
		return "", err
	}
	cleaned := cleanup(raw)
	if strings.TrimSpace(cleaned) == "" {
		return "", ErrEmptyDocument
	}
	return cleaned, nil
}

var (
	multiSpace = regexp.MustCompile(`[ \t]+`)
	multiBlank = regexp.MustCompile(`\n{3,}`)
)

// cleanup collapses runs of horizontal whitespace, trims every line, and
// caps consecutive blank lines at one so paragraph boundaries survive but
// padding doesn't. Lines that are empty after trimming are kept as those
// paragraph-separating blank lines.
func cleanup(text string) string {
	lines := strings.Split(text, "\n")
	kept := make([]string, 0, len(lines))
	for _, line := range lines {
		line = multiSpace.ReplaceAllString(strings.TrimRight(line, " \t\r"), " ")
		kept = append(kept, strings.TrimSpace(line))
	}
	joined := strings.Join(kept, "\n")
	joined = multiBlank.ReplaceAllString(joined, "\n\n")
	return strings.TrimSpace(joined)
}
