package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/veritas-sh/veritas/internal/model"
)

// ReplaceClauses deletes any clauses already stored for docID and
// bulk-inserts the given set via COPY, all inside one retried transaction.
// This is the idempotent delete-then-rebuild step reprocessing a document
// relies on (SPEC_FULL.md §8): re-running the pipeline on a document never
// leaves stale clauses behind.
func (db *DB) ReplaceClauses(ctx context.Context, docID uuid.UUID, clauses []model.Clause) error {
	return withRetry(ctx, 3, 100*time.Millisecond, func() error {
		tx, err := db.pool.Begin(ctx)
		if err != nil {
			return fmt.Errorf("postgres: begin replace clauses: %w", err)
		}
		defer tx.Rollback(ctx) //nolint:errcheck

		if _, err := tx.Exec(ctx, `DELETE FROM clauses WHERE document_id = $1`, docID); err != nil {
			return fmt.Errorf("postgres: delete clauses: %w", err)
		}

		if len(clauses) > 0 {
			rows := make([][]any, len(clauses))
			for i, c := range clauses {
				rows[i] = []any{c.ID, c.DocID, c.Text, c.Position, c.Section, c.Embedding}
			}
			_, err := tx.CopyFrom(ctx,
				pgx.Identifier{"clauses"},
				[]string{"id", "document_id", "text", "position", "section", "embedding"},
				pgx.CopyFromRows(rows),
			)
			if err != nil {
				return fmt.Errorf("postgres: copy clauses: %w", err)
			}
		}

		return tx.Commit(ctx)
	})
}

// GetClauses returns all clauses for a document, ordered by position.
func (db *DB) GetClauses(ctx context.Context, docID uuid.UUID) ([]model.Clause, error) {
	rows, err := db.pool.Query(ctx,
		`SELECT id, document_id, text, position, section, embedding
		 FROM clauses WHERE document_id = $1 ORDER BY position`, docID)
	if err != nil {
		return nil, fmt.Errorf("postgres: get clauses: %w", err)
	}
	defer rows.Close()

	var clauses []model.Clause
	for rows.Next() {
		var c model.Clause
		if err := rows.Scan(&c.ID, &c.DocID, &c.Text, &c.Position, &c.Section, &c.Embedding); err != nil {
			return nil, fmt.Errorf("postgres: scan clause: %w", err)
		}
		clauses = append(clauses, c)
	}
	return clauses, rows.Err()
}

// RefreshSearchVector recomputes a clause's tsvector column from its text.
func (db *DB) RefreshSearchVector(ctx context.Context, clauseID uuid.UUID) error {
	_, err := db.pool.Exec(ctx,
		`UPDATE clauses SET search_vector = to_tsvector('english', text) WHERE id = $1`, clauseID)
	if err != nil {
		return fmt.Errorf("postgres: refresh search vector: %w", err)
	}
	return nil
}
