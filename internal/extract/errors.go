package extract

import "errors"

// ErrUnsupportedFormat is returned when the file extension isn't one of the
// formats this extractor understands (.pdf, .docx, .txt).
var ErrUnsupportedFormat = errors.New("extract: unsupported format")

// ErrEmptyDocument is returned when extraction produced no usable text —
// nothing, or nothing but whitespace. The pipeline treats this as a terminal failure
// for the document rather than proceeding to segment nothing.
var ErrEmptyDocument = errors.New("extract: document contains no extractable text")
