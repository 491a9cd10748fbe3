// Package model defines the core domain types for Veritas.
//
// Types correspond directly to the data model in SPEC_FULL.md §3 and use
// strong typing (UUIDs, time.Time, enums) rather than interface{} wherever
// possible, matching the convention the pipeline's host applications expect.
package model

import (
	"github.com/google/uuid"
	"github.com/pgvector/pgvector-go"
)

// Clause is one assertive sentence extracted from a document by the
// segmenter. Immutable after creation: position, text, and document
// ownership never change once a Clause is built.
type Clause struct {
	ID       uuid.UUID `json:"id"`
	DocID    uuid.UUID `json:"document_id"`
	Text     string    `json:"text"`
	Position int       `json:"position"` // zero-based, contiguous within a document

	// Section is the nearest enclosing heading, if one was found walking
	// backward from the clause's offset. Empty when the clause has no
	// enclosing heading (e.g. it precedes the first heading in the document).
	Section string `json:"section,omitempty"`

	// Embedding is nil until the embedding stage runs, and stays nil when
	// the clause's embedding batch failed or no embedding provider is
	// configured. A nil embedding excludes the clause from candidate
	// finding (C6).
	Embedding *pgvector.Vector `json:"-"`

	// Entities maps a retained NER label (PERSON, ORG, GPE, ...) to its
	// deduplicated surface forms. Nil when NER has not run or the NER
	// model was unavailable (C4 degrades gracefully, not fatally).
	Entities map[string][]string `json:"entities,omitempty"`

	// Tokens holds an optional lightweight full-text search token set. No
	// pipeline stage or persistence adapter in this module populates it;
	// it stays nil unless a caller sets it.
	Tokens []string `json:"tokens,omitempty"`
}

// EmbeddingDims is the canonical embedding dimensionality this pipeline is
// built around (reference encoder: all-MiniLM-L6-v2). A Clause's embedding,
// if present, always has this length; the candidate finder treats any other
// length as a defect and skips the clause rather than panicking.
const EmbeddingDims = 384

// HasEmbedding reports whether the clause carries a usable embedding of the
// expected dimensionality.
func (c Clause) HasEmbedding() bool {
	return c.Embedding != nil && len(c.Embedding.Slice()) == EmbeddingDims
}
