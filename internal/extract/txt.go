package extract

import (
	"unicode/utf8"

	"golang.org/x/text/encoding/charmap"
)

// txtExtractor decodes plain-text files. Most are already valid UTF-8; for
// the legacy minority that aren't, it falls back to Latin-1 (Windows-1252's
// ISO cousin) rather than rejecting the file outright.
type txtExtractor struct{}

func (txtExtractor) Extract(filename string, data []byte) (string, error) {
	if utf8.Valid(data) {
		return string(data), nil
	}
	decoded, err := charmap.ISO8859_1.NewDecoder().Bytes(data)
	if err != nil {
		return "", err
	}
	return string(decoded), nil
}
