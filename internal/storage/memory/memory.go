// Package memory is an in-memory internal/storage.Repository used by tests
// and by local runs that don't have Postgres available (e.g. exercising the
// pipeline against the Noop embedding/NLI providers end-to-end).
package memory

import (
	"context"
	"sync"

	"github.com/google/uuid"
	"github.com/veritas-sh/veritas/internal/model"
	"github.com/veritas-sh/veritas/internal/storage"
)

// Store is a mutex-guarded in-memory Repository. Zero value is ready to use.
type Store struct {
	mu sync.Mutex

	documents      map[uuid.UUID]model.Document
	sessions       map[uuid.UUID]model.ComparisonSession
	clauses        map[uuid.UUID][]model.Clause
	contradictions map[uuid.UUID][]model.Contradiction // keyed by document_id or session_id
}

// New returns an empty Store.
func New() *Store {
	return &Store{
		documents:      make(map[uuid.UUID]model.Document),
		sessions:       make(map[uuid.UUID]model.ComparisonSession),
		clauses:        make(map[uuid.UUID][]model.Clause),
		contradictions: make(map[uuid.UUID][]model.Contradiction),
	}
}

// PutDocument seeds a document for a test to operate on.
func (s *Store) PutDocument(d model.Document) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.documents[d.ID] = d
}

// PutSession seeds a comparison session for a test to operate on.
func (s *Store) PutSession(sess model.ComparisonSession) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessions[sess.ID] = sess
}

func (s *Store) GetDocument(_ context.Context, id uuid.UUID) (model.Document, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	d, ok := s.documents[id]
	if !ok {
		return model.Document{}, storage.ErrNotFound
	}
	return d, nil
}

func (s *Store) UpdateDocumentProgress(_ context.Context, id uuid.UUID, stage string, progress int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	d, ok := s.documents[id]
	if !ok {
		return storage.ErrNotFound
	}
	d.Stage = stage
	d.Progress = progress
	s.documents[id] = d
	return nil
}

func (s *Store) UpdateDocumentStatus(_ context.Context, id uuid.UUID, status model.DocumentStatus, errMsg *string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	d, ok := s.documents[id]
	if !ok {
		return storage.ErrNotFound
	}
	d.Status = status
	d.ErrorMessage = errMsg
	s.documents[id] = d
	return nil
}

// ClaimPendingDocument picks an arbitrary pending document (map iteration
// order is unspecified, matching the absence of an ORDER BY guarantee
// callers should rely on) and marks it processing.
func (s *Store) ClaimPendingDocument(_ context.Context) (uuid.UUID, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for id, d := range s.documents {
		if d.Status != model.DocumentPending {
			continue
		}
		d.Status = model.DocumentProcessing
		d.ErrorMessage = nil
		s.documents[id] = d
		return id, true, nil
	}
	return uuid.UUID{}, false, nil
}

func (s *Store) GetSession(_ context.Context, id uuid.UUID) (model.ComparisonSession, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sess, ok := s.sessions[id]
	if !ok {
		return model.ComparisonSession{}, storage.ErrNotFound
	}
	return sess, nil
}

func (s *Store) UpdateSessionProgress(_ context.Context, id uuid.UUID, stage string, progress int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	sess, ok := s.sessions[id]
	if !ok {
		return storage.ErrNotFound
	}
	sess.Stage = stage
	sess.Progress = progress
	s.sessions[id] = sess
	return nil
}

func (s *Store) UpdateSessionStatus(_ context.Context, id uuid.UUID, status model.DocumentStatus, errMsg *string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	sess, ok := s.sessions[id]
	if !ok {
		return storage.ErrNotFound
	}
	sess.Status = status
	sess.ErrorMessage = errMsg
	s.sessions[id] = sess
	return nil
}

// ClaimPendingSession is ClaimPendingDocument's counterpart for comparison
// sessions.
func (s *Store) ClaimPendingSession(_ context.Context) (uuid.UUID, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for id, sess := range s.sessions {
		if sess.Status != model.DocumentPending {
			continue
		}
		sess.Status = model.DocumentProcessing
		sess.ErrorMessage = nil
		s.sessions[id] = sess
		return id, true, nil
	}
	return uuid.UUID{}, false, nil
}

func (s *Store) ReplaceClauses(_ context.Context, docID uuid.UUID, clauses []model.Clause) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := make([]model.Clause, len(clauses))
	copy(cp, clauses)
	s.clauses[docID] = cp
	return nil
}

func (s *Store) GetClauses(_ context.Context, docID uuid.UUID) ([]model.Clause, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]model.Clause(nil), s.clauses[docID]...), nil
}

// RefreshSearchVector is a no-op: the in-memory store has no tsvector
// column, and the persistence contract requires its absence be tolerated.
func (s *Store) RefreshSearchVector(_ context.Context, _ uuid.UUID) error {
	return nil
}

func (s *Store) ReplaceContradictions(_ context.Context, ownerID uuid.UUID, _ bool, contradictions []model.Contradiction) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := make([]model.Contradiction, len(contradictions))
	copy(cp, contradictions)
	s.contradictions[ownerID] = cp
	return nil
}

func (s *Store) GetContradictions(_ context.Context, ownerID uuid.UUID, _ bool) ([]model.Contradiction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]model.Contradiction(nil), s.contradictions[ownerID]...), nil
}
