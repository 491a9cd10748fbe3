package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/veritas-sh/veritas/internal/model"
)

// ReplaceContradictions deletes any contradictions already stored for
// ownerID (a document ID for single-document runs, a comparison session ID
// for cross-document runs) and bulk-inserts the given set via COPY.
func (db *DB) ReplaceContradictions(ctx context.Context, ownerID uuid.UUID, forSession bool, contradictions []model.Contradiction) error {
	ownerCol := "document_id"
	if forSession {
		ownerCol = "session_id"
	}

	return withRetry(ctx, 3, 100*time.Millisecond, func() error {
		tx, err := db.pool.Begin(ctx)
		if err != nil {
			return fmt.Errorf("postgres: begin replace contradictions: %w", err)
		}
		defer tx.Rollback(ctx) //nolint:errcheck

		if _, err := tx.Exec(ctx, fmt.Sprintf(`DELETE FROM contradictions WHERE %s = $1`, ownerCol), ownerID); err != nil {
			return fmt.Errorf("postgres: delete contradictions: %w", err)
		}

		if len(contradictions) > 0 {
			rows := make([][]any, len(contradictions))
			for i, c := range contradictions {
				rows[i] = []any{
					c.ID, c.ClauseAID, c.ClauseBID, c.DocID, c.SessionID, c.DocAID, c.DocBID,
					c.Type, c.Severity, c.Confidence, c.Description, c.Status, c.DetectedAt,
				}
			}
			_, err := tx.CopyFrom(ctx,
				pgx.Identifier{"contradictions"},
				[]string{
					"id", "clause_a_id", "clause_b_id", "document_id", "session_id", "document_a_id", "document_b_id",
					"type", "severity", "confidence", "description", "status", "detected_at",
				},
				pgx.CopyFromRows(rows),
			)
			if err != nil {
				return fmt.Errorf("postgres: copy contradictions: %w", err)
			}
		}

		return tx.Commit(ctx)
	})
}

// GetContradictions returns all contradictions stored for ownerID.
func (db *DB) GetContradictions(ctx context.Context, ownerID uuid.UUID, forSession bool) ([]model.Contradiction, error) {
	ownerCol := "document_id"
	if forSession {
		ownerCol = "session_id"
	}

	rows, err := db.pool.Query(ctx, fmt.Sprintf(
		`SELECT id, clause_a_id, clause_b_id, document_id, session_id, document_a_id, document_b_id,
		        type, severity, confidence, description, status,
		        resolved_by, resolved_at, resolution_note, detected_at
		 FROM contradictions WHERE %s = $1 ORDER BY detected_at`, ownerCol), ownerID)
	if err != nil {
		return nil, fmt.Errorf("postgres: get contradictions: %w", err)
	}
	defer rows.Close()

	var out []model.Contradiction
	for rows.Next() {
		var c model.Contradiction
		if err := rows.Scan(
			&c.ID, &c.ClauseAID, &c.ClauseBID, &c.DocID, &c.SessionID, &c.DocAID, &c.DocBID,
			&c.Type, &c.Severity, &c.Confidence, &c.Description, &c.Status,
			&c.ResolvedBy, &c.ResolvedAt, &c.ResolutionNote, &c.DetectedAt,
		); err != nil {
			return nil, fmt.Errorf("postgres: scan contradiction: %w", err)
		}
		out = append(out, c)
	}
	return out, rows.Err()
}
