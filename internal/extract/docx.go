package extract

import (
	"archive/zip"
	"bytes"
	"fmt"
	"regexp"
	"strings"

	"github.com/beevik/etree"
)

// docxExtractor reads word/document.xml out of the OOXML zip container and
// walks its paragraph/table tree. Tables whose cells are mostly numbers,
// currency, or dates are skipped entirely — they're almost always financial
// or scheduling exhibits, not assertive prose, and segmenting their cells as
// clauses produces noise rather than claims.
type docxExtractor struct{}

const (
	wordNS        = "http://schemas.openxmlformats.org/wordprocessingml/2006/main"
	tableNumericRatio = 0.50
)

var numericCellPattern = regexp.MustCompile(`^[\$€£]?[\d,.]+%?$|^\d{1,4}[/-]\d{1,2}[/-]\d{1,4}$`)

func (docxExtractor) Extract(filename string, data []byte) (string, error) {
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", fmt.Errorf("extract: open docx %s: %w", filename, err)
	}

	var docXML []byte
	for _, f := range zr.File {
		if f.Name == "word/document.xml" {
			rc, err := f.Open()
			if err != nil {
				return "", fmt.Errorf("extract: read document.xml: %w", err)
			}
			buf := new(bytes.Buffer)
			if _, err := buf.ReadFrom(rc); err != nil {
				rc.Close()
				return "", fmt.Errorf("extract: read document.xml: %w", err)
			}
			rc.Close()
			docXML = buf.Bytes()
			break
		}
	}
	if docXML == nil {
		return "", fmt.Errorf("extract: %s has no word/document.xml", filename)
	}

	doc := etree.NewDocument()
	if err := doc.ReadFromBytes(docXML); err != nil {
		return "", fmt.Errorf("extract: parse document.xml: %w", err)
	}

	body := doc.FindElement("//w:body")
	if body == nil {
		body = doc.Root()
	}
	if body == nil {
		return "", nil
	}

	var out strings.Builder
	for _, child := range body.ChildElements() {
		switch child.Tag {
		case "p":
			text := paragraphText(child)
			if text != "" {
				out.WriteString(text)
				out.WriteString("\n")
			}
		case "tbl":
			if skipTable(child) {
				continue
			}
			out.WriteString(tableText(child))
		}
	}
	return out.String(), nil
}

func paragraphText(p *etree.Element) string {
	var sb strings.Builder
	for _, run := range p.FindElements(".//w:r/w:t") {
		sb.WriteString(run.Text())
	}
	return strings.TrimSpace(sb.String())
}

func tableText(tbl *etree.Element) string {
	var sb strings.Builder
	for _, row := range tbl.FindElements(".//w:tr") {
		var cells []string
		for _, cell := range row.FindElements(".//w:tc") {
			var cb strings.Builder
			for _, p := range cell.FindElements(".//w:p") {
				t := paragraphText(p)
				if t != "" {
					cb.WriteString(t)
					cb.WriteString(" ")
				}
			}
			if t := strings.TrimSpace(cb.String()); t != "" {
				cells = append(cells, t)
			}
		}
		if len(cells) > 0 {
			sb.WriteString(strings.Join(cells, " "))
			sb.WriteString("\n")
		}
	}
	return sb.String()
}

// skipTable reports whether tbl's cells are predominantly numeric, currency,
// or date-formatted, per the >50% rule.
func skipTable(tbl *etree.Element) bool {
	cells := tbl.FindElements(".//w:tc")
	if len(cells) == 0 {
		return false
	}
	numeric := 0
	total := 0
	for _, cell := range cells {
		for _, p := range cell.FindElements(".//w:p") {
			text := strings.TrimSpace(paragraphText(p))
			if text == "" {
				continue
			}
			total++
			if numericCellPattern.MatchString(text) {
				numeric++
			}
		}
	}
	if total == 0 {
		return false
	}
	return float64(numeric)/float64(total) > tableNumericRatio
}
