package pipeline

import "errors"

// Typed error kinds the orchestrator distinguishes (spec.md §7). Most of
// them are fatal — the document transitions to failed — except
// ErrEmptySegmentation, which is a legitimate zero-contradiction outcome.
var (
	// ErrExtraction wraps a C1 failure: the source bytes could not be
	// turned into text at all.
	ErrExtraction = errors.New("pipeline: extraction failed")

	// ErrEmptySegmentation marks a document that segmented to zero
	// clauses. Non-fatal: the run still completes with zero
	// contradictions.
	ErrEmptySegmentation = errors.New("pipeline: segmentation produced no clauses")

	// ErrModelLoad names a C3/C7 provider failure (the embedding or NLI
	// backend could not be reached at all). Neither orchestrator returns
	// it: a failed embedding batch leaves its clauses unembedded, and a
	// failed NLI call leaves its candidates unconfirmed. C4 (NER) never
	// produces it either — it degrades to lexical-only entities.
	ErrModelLoad = errors.New("pipeline: model provider unavailable")

	// ErrStorageFetch wraps a failed object-storage GET (C10's download
	// stage).
	ErrStorageFetch = errors.New("pipeline: storage fetch failed")

	// ErrPersistence wraps a failed repository write.
	ErrPersistence = errors.New("pipeline: persistence failed")

	// ErrInvalidDocument is raised when the document id passed to
	// ProcessDocument does not exist.
	ErrInvalidDocument = errors.New("pipeline: invalid document")

	// ErrInvalidSession is raised when the session id passed to
	// ProcessMultiDocuments does not exist.
	ErrInvalidSession = errors.New("pipeline: invalid session")
)

// maxErrorMessageLen truncates a stored error_message to 500 chars per
// spec.md §7.
const maxErrorMessageLen = 500

func truncateError(err error) string {
	msg := err.Error()
	if len(msg) > maxErrorMessageLen {
		msg = msg[:maxErrorMessageLen]
	}
	return msg
}
