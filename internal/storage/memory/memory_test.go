package memory_test

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/veritas-sh/veritas/internal/model"
	"github.com/veritas-sh/veritas/internal/storage"
	"github.com/veritas-sh/veritas/internal/storage/memory"
)

func TestGetDocument_NotFound(t *testing.T) {
	s := memory.New()
	_, err := s.GetDocument(context.Background(), uuid.New())
	assert.ErrorIs(t, err, storage.ErrNotFound)
}

func TestDocumentProgressLifecycle(t *testing.T) {
	ctx := context.Background()
	s := memory.New()
	doc := model.Document{ID: uuid.New(), Filename: "lease.pdf", Status: model.DocumentPending}
	s.PutDocument(doc)

	require.NoError(t, s.UpdateDocumentProgress(ctx, doc.ID, model.StageEmbedding, 40))
	got, err := s.GetDocument(ctx, doc.ID)
	require.NoError(t, err)
	assert.Equal(t, model.StageEmbedding, got.Stage)
	assert.Equal(t, 40, got.Progress)

	require.NoError(t, s.UpdateDocumentStatus(ctx, doc.ID, model.DocumentFailed, nil))
	got, err = s.GetDocument(ctx, doc.ID)
	require.NoError(t, err)
	assert.Equal(t, model.DocumentFailed, got.Status)
}

func TestReplaceClauses_OverwritesPriorSet(t *testing.T) {
	ctx := context.Background()
	s := memory.New()
	docID := uuid.New()

	first := []model.Clause{{ID: uuid.New(), DocID: docID, Text: "a", Position: 0}}
	require.NoError(t, s.ReplaceClauses(ctx, docID, first))
	got, err := s.GetClauses(ctx, docID)
	require.NoError(t, err)
	assert.Len(t, got, 1)

	second := []model.Clause{
		{ID: uuid.New(), DocID: docID, Text: "b", Position: 0},
		{ID: uuid.New(), DocID: docID, Text: "c", Position: 1},
	}
	require.NoError(t, s.ReplaceClauses(ctx, docID, second))
	got, err = s.GetClauses(ctx, docID)
	require.NoError(t, err)
	assert.Len(t, got, 2)
}

func TestClaimPendingDocument_SkipsNonPending(t *testing.T) {
	ctx := context.Background()
	s := memory.New()

	processing := model.Document{ID: uuid.New(), Filename: "a.pdf", Status: model.DocumentProcessing}
	pending := model.Document{ID: uuid.New(), Filename: "b.pdf", Status: model.DocumentPending}
	s.PutDocument(processing)
	s.PutDocument(pending)

	id, ok, err := s.ClaimPendingDocument(ctx)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, pending.ID, id)

	got, err := s.GetDocument(ctx, pending.ID)
	require.NoError(t, err)
	assert.Equal(t, model.DocumentProcessing, got.Status)

	_, ok, err = s.ClaimPendingDocument(ctx)
	require.NoError(t, err)
	assert.False(t, ok, "no document should remain pending")
}

func TestClaimPendingSession_NoneReturnsFalse(t *testing.T) {
	s := memory.New()
	_, ok, err := s.ClaimPendingSession(context.Background())
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestReplaceContradictions_RoundTrip(t *testing.T) {
	ctx := context.Background()
	s := memory.New()
	ownerID := uuid.New()

	c := model.Contradiction{ID: uuid.New(), ClauseAID: uuid.New(), ClauseBID: uuid.New(), Type: model.TypeModal}
	require.NoError(t, s.ReplaceContradictions(ctx, ownerID, false, []model.Contradiction{c}))

	got, err := s.GetContradictions(ctx, ownerID, false)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, model.TypeModal, got[0].Type)
}
