package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/veritas-sh/veritas/internal/model"
	"github.com/veritas-sh/veritas/internal/storage"
)

// GetDocument fetches a document by ID.
func (db *DB) GetDocument(ctx context.Context, id uuid.UUID) (model.Document, error) {
	var d model.Document
	err := db.pool.QueryRow(ctx,
		`SELECT id, filename, status, processing_stage, progress_percent,
		        analysis_start_time, analysis_end_time, error_message
		 FROM documents WHERE id = $1`, id).
		Scan(&d.ID, &d.Filename, &d.Status, &d.Stage, &d.Progress,
			&d.AnalysisStartTime, &d.AnalysisEndTime, &d.ErrorMessage)
	if errors.Is(err, pgx.ErrNoRows) {
		return model.Document{}, storage.ErrNotFound
	}
	if err != nil {
		return model.Document{}, fmt.Errorf("postgres: get document: %w", err)
	}
	return d, nil
}

// UpdateDocumentProgress advances a document's processing_stage and
// progress_percent, and broadcasts the change on the document_progress
// channel for any listener tracking the run live.
func (db *DB) UpdateDocumentProgress(ctx context.Context, id uuid.UUID, stage string, progress int) error {
	_, err := db.pool.Exec(ctx,
		`UPDATE documents SET processing_stage = $2, progress_percent = $3 WHERE id = $1`,
		id, stage, progress)
	if err != nil {
		return fmt.Errorf("postgres: update document progress: %w", err)
	}
	db.notify(ctx, "document_progress", fmt.Sprintf(`{"document_id":%q,"stage":%q,"progress":%d}`, id, stage, progress))
	return nil
}

// UpdateDocumentStatus sets a document's terminal or transitional status,
// stamping analysis_start_time/analysis_end_time as appropriate and
// recording errMsg when the run failed.
func (db *DB) UpdateDocumentStatus(ctx context.Context, id uuid.UUID, status model.DocumentStatus, errMsg *string) error {
	var err error
	switch status {
	case model.DocumentProcessing:
		_, err = db.pool.Exec(ctx,
			`UPDATE documents SET status = $2, analysis_start_time = now(), error_message = NULL WHERE id = $1`,
			id, status)
	case model.DocumentCompleted, model.DocumentFailed:
		_, err = db.pool.Exec(ctx,
			`UPDATE documents SET status = $2, analysis_end_time = now(), error_message = $3 WHERE id = $1`,
			id, status, errMsg)
	default:
		_, err = db.pool.Exec(ctx, `UPDATE documents SET status = $2 WHERE id = $1`, id, status)
	}
	if err != nil {
		return fmt.Errorf("postgres: update document status: %w", err)
	}
	db.notify(ctx, "document_progress", fmt.Sprintf(`{"document_id":%q,"status":%q}`, id, status))
	return nil
}

// ClaimPendingDocument selects the oldest pending document, marks it
// processing, and returns its id in one statement — SKIP LOCKED lets
// multiple worker-pool goroutines (or processes) poll the same table
// without claiming the same row twice.
func (db *DB) ClaimPendingDocument(ctx context.Context) (uuid.UUID, bool, error) {
	var id uuid.UUID
	err := db.pool.QueryRow(ctx,
		`UPDATE documents SET status = 'processing', analysis_start_time = now(), error_message = NULL
		 WHERE id = (
		     SELECT id FROM documents
		     WHERE status = 'pending'
		     ORDER BY created_at
		     FOR UPDATE SKIP LOCKED
		     LIMIT 1
		 )
		 RETURNING id`).Scan(&id)
	if errors.Is(err, pgx.ErrNoRows) {
		return uuid.UUID{}, false, nil
	}
	if err != nil {
		return uuid.UUID{}, false, fmt.Errorf("postgres: claim pending document: %w", err)
	}
	db.notify(ctx, "document_progress", fmt.Sprintf(`{"document_id":%q,"status":"processing"}`, id))
	return id, true, nil
}

// GetSession fetches a comparison session by ID.
func (db *DB) GetSession(ctx context.Context, id uuid.UUID) (model.ComparisonSession, error) {
	var s model.ComparisonSession
	err := db.pool.QueryRow(ctx,
		`SELECT id, document_ids, status, processing_stage, progress_percent,
		        started_at, completed_at, error_message, cross_contradiction_count
		 FROM comparison_sessions WHERE id = $1`, id).
		Scan(&s.ID, &s.DocumentIDs, &s.Status, &s.Stage, &s.Progress,
			&s.StartedAt, &s.CompletedAt, &s.ErrorMessage, &s.CrossContradictionCount)
	if errors.Is(err, pgx.ErrNoRows) {
		return model.ComparisonSession{}, storage.ErrNotFound
	}
	if err != nil {
		return model.ComparisonSession{}, fmt.Errorf("postgres: get session: %w", err)
	}
	return s, nil
}

// UpdateSessionProgress advances a session's processing_stage and
// progress_percent, broadcasting on session_progress.
func (db *DB) UpdateSessionProgress(ctx context.Context, id uuid.UUID, stage string, progress int) error {
	_, err := db.pool.Exec(ctx,
		`UPDATE comparison_sessions SET processing_stage = $2, progress_percent = $3 WHERE id = $1`,
		id, stage, progress)
	if err != nil {
		return fmt.Errorf("postgres: update session progress: %w", err)
	}
	db.notify(ctx, "session_progress", fmt.Sprintf(`{"session_id":%q,"stage":%q,"progress":%d}`, id, stage, progress))
	return nil
}

// UpdateSessionStatus sets a comparison session's status, stamping
// started_at/completed_at as appropriate.
func (db *DB) UpdateSessionStatus(ctx context.Context, id uuid.UUID, status model.DocumentStatus, errMsg *string) error {
	var err error
	switch status {
	case model.DocumentProcessing:
		_, err = db.pool.Exec(ctx,
			`UPDATE comparison_sessions SET status = $2, started_at = now(), error_message = NULL WHERE id = $1`,
			id, status)
	case model.DocumentCompleted, model.DocumentFailed:
		_, err = db.pool.Exec(ctx,
			`UPDATE comparison_sessions SET status = $2, completed_at = now(), error_message = $3 WHERE id = $1`,
			id, status, errMsg)
	default:
		_, err = db.pool.Exec(ctx, `UPDATE comparison_sessions SET status = $2 WHERE id = $1`, id, status)
	}
	if err != nil {
		return fmt.Errorf("postgres: update session status: %w", err)
	}
	db.notify(ctx, "session_progress", fmt.Sprintf(`{"session_id":%q,"status":%q}`, id, status))
	return nil
}

// ClaimPendingSession is ClaimPendingDocument's counterpart for comparison
// sessions.
func (db *DB) ClaimPendingSession(ctx context.Context) (uuid.UUID, bool, error) {
	var id uuid.UUID
	err := db.pool.QueryRow(ctx,
		`UPDATE comparison_sessions SET status = 'processing', started_at = now(), error_message = NULL
		 WHERE id = (
		     SELECT id FROM comparison_sessions
		     WHERE status = 'pending'
		     ORDER BY created_at
		     FOR UPDATE SKIP LOCKED
		     LIMIT 1
		 )
		 RETURNING id`).Scan(&id)
	if errors.Is(err, pgx.ErrNoRows) {
		return uuid.UUID{}, false, nil
	}
	if err != nil {
		return uuid.UUID{}, false, fmt.Errorf("postgres: claim pending session: %w", err)
	}
	db.notify(ctx, "session_progress", fmt.Sprintf(`{"session_id":%q,"status":"processing"}`, id))
	return id, true, nil
}
