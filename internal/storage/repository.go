// Package storage defines the persistence contract the pipeline orchestrators
// (C10/C11) depend on. The HTTP/auth/ORM layer that owns the actual schema is
// out of scope (spec.md Non-goals); this package only defines and implements
// the read/write surface the pipeline itself needs.
package storage

import (
	"context"

	"github.com/google/uuid"
	"github.com/veritas-sh/veritas/internal/model"
)

// Repository is the full persistence surface C10 and C11 call through.
// Implementations: postgres (production) and memory (tests).
type Repository interface {
	GetDocument(ctx context.Context, id uuid.UUID) (model.Document, error)
	UpdateDocumentProgress(ctx context.Context, id uuid.UUID, stage string, progress int) error
	UpdateDocumentStatus(ctx context.Context, id uuid.UUID, status model.DocumentStatus, errMsg *string) error

	// ClaimPendingDocument atomically picks one pending document, marks it
	// processing, and returns its id. The bool is false (with a nil error)
	// when no document is pending — the worker pool's dispatch loop treats
	// that as "nothing to do this tick", not a failure.
	ClaimPendingDocument(ctx context.Context) (uuid.UUID, bool, error)

	GetSession(ctx context.Context, id uuid.UUID) (model.ComparisonSession, error)
	UpdateSessionProgress(ctx context.Context, id uuid.UUID, stage string, progress int) error
	UpdateSessionStatus(ctx context.Context, id uuid.UUID, status model.DocumentStatus, errMsg *string) error

	// ClaimPendingSession is ClaimPendingDocument's counterpart for
	// comparison sessions (C11).
	ClaimPendingSession(ctx context.Context) (uuid.UUID, bool, error)

	// ReplaceClauses deletes any clauses already stored for docID and
	// inserts the given set in one transaction — the idempotent
	// delete-then-rebuild invariant reprocessing relies on (spec.md §8).
	ReplaceClauses(ctx context.Context, docID uuid.UUID, clauses []model.Clause) error
	GetClauses(ctx context.Context, docID uuid.UUID) ([]model.Clause, error)

	// RefreshSearchVector recomputes the full-text-search vector for a
	// clause (spec.md §6: "scalar SQL execute for full-text-search vector
	// updates"). Implementations backed by a store with no tsvector
	// column are a no-op — the pipeline must tolerate its absence rather
	// than fail.
	RefreshSearchVector(ctx context.Context, clauseID uuid.UUID) error

	// ReplaceContradictions deletes any contradictions already stored for
	// the given owner (a document ID for single-document runs, a session
	// ID for cross-document runs) and inserts the given set.
	ReplaceContradictions(ctx context.Context, ownerID uuid.UUID, forSession bool, contradictions []model.Contradiction) error
	GetContradictions(ctx context.Context, ownerID uuid.UUID, forSession bool) ([]model.Contradiction, error)
}
