package postgres_test

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/veritas-sh/veritas/internal/model"
	"github.com/veritas-sh/veritas/internal/storage"
	"github.com/veritas-sh/veritas/internal/storage/postgres"
	"github.com/veritas-sh/veritas/internal/testutil"
)

// testDB holds a shared test database connection for all tests in this
// package.
var testDB *postgres.DB

func TestMain(m *testing.M) {
	ctx := context.Background()

	tc := testutil.MustStartPostgres()

	var err error
	testDB, err = tc.NewTestDB(ctx, testutil.TestLogger())
	if err != nil {
		tc.Terminate()
		os.Exit(1)
	}

	code := m.Run()

	testDB.Close(ctx)
	tc.Terminate()
	os.Exit(code)
}

func seedDocument(t *testing.T, ctx context.Context) model.Document {
	t.Helper()
	id := uuid.New()
	_, err := testDB.Pool().Exec(ctx,
		`INSERT INTO documents (id, filename, status) VALUES ($1, $2, 'pending')`,
		id, "lease.pdf")
	require.NoError(t, err)
	doc, err := testDB.GetDocument(ctx, id)
	require.NoError(t, err)
	return doc
}

func TestDocumentProgressLifecycle(t *testing.T) {
	ctx := context.Background()
	doc := seedDocument(t, ctx)

	require.NoError(t, testDB.UpdateDocumentProgress(ctx, doc.ID, model.StageSegmenting, 25))
	got, err := testDB.GetDocument(ctx, doc.ID)
	require.NoError(t, err)
	assert.Equal(t, model.StageSegmenting, got.Stage)
	assert.Equal(t, 25, got.Progress)

	require.NoError(t, testDB.UpdateDocumentStatus(ctx, doc.ID, model.DocumentCompleted, nil))
	got, err = testDB.GetDocument(ctx, doc.ID)
	require.NoError(t, err)
	assert.Equal(t, model.DocumentCompleted, got.Status)
	assert.NotNil(t, got.AnalysisEndTime)
}

func TestGetDocument_NotFound(t *testing.T) {
	_, err := testDB.GetDocument(context.Background(), uuid.New())
	assert.ErrorIs(t, err, storage.ErrNotFound)
}

func TestReplaceClauses_IsIdempotent(t *testing.T) {
	ctx := context.Background()
	doc := seedDocument(t, ctx)

	first := []model.Clause{
		{ID: uuid.New(), DocID: doc.ID, Text: "Rent is due on the first of each month.", Position: 0},
		{ID: uuid.New(), DocID: doc.ID, Text: "The tenant shall maintain the premises.", Position: 1},
	}
	require.NoError(t, testDB.ReplaceClauses(ctx, doc.ID, first))

	got, err := testDB.GetClauses(ctx, doc.ID)
	require.NoError(t, err)
	assert.Len(t, got, 2)

	second := []model.Clause{
		{ID: uuid.New(), DocID: doc.ID, Text: "Only one clause remains after reprocessing.", Position: 0},
	}
	require.NoError(t, testDB.ReplaceClauses(ctx, doc.ID, second))

	got, err = testDB.GetClauses(ctx, doc.ID)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, second[0].Text, got[0].Text)
}

func TestClaimPendingDocument_SkipLockedPreventsDoubleClaim(t *testing.T) {
	ctx := context.Background()
	doc := seedDocument(t, ctx)

	id, ok, err := testDB.ClaimPendingDocument(ctx)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, doc.ID, id)

	got, err := testDB.GetDocument(ctx, doc.ID)
	require.NoError(t, err)
	assert.Equal(t, model.DocumentProcessing, got.Status)

	_, ok, err = testDB.ClaimPendingDocument(ctx)
	require.NoError(t, err)
	assert.False(t, ok, "no other document should be pending")
}

func TestReplaceContradictions_RoundTrip(t *testing.T) {
	ctx := context.Background()
	doc := seedDocument(t, ctx)

	clauses := []model.Clause{
		{ID: uuid.New(), DocID: doc.ID, Text: "The fee is 500 dollars.", Position: 0},
		{ID: uuid.New(), DocID: doc.ID, Text: "The fee is 1000 dollars.", Position: 1},
	}
	require.NoError(t, testDB.ReplaceClauses(ctx, doc.ID, clauses))

	c := model.Contradiction{
		ID:          uuid.New(),
		ClauseAID:   clauses[0].ID,
		ClauseBID:   clauses[1].ID,
		DocID:       &doc.ID,
		Type:        model.TypeNumeric,
		Severity:    model.SeverityHigh,
		Confidence:  92,
		Description: "one clause specifies 500 dollars while the other specifies 1000 dollars",
		Status:      model.StatusOpen,
		DetectedAt:  time.Now().UTC(),
	}
	require.NoError(t, testDB.ReplaceContradictions(ctx, doc.ID, false, []model.Contradiction{c}))

	got, err := testDB.GetContradictions(ctx, doc.ID, false)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, model.TypeNumeric, got[0].Type)

	// Replacing with an empty set clears prior contradictions — the
	// delete-then-rebuild step reprocessing depends on.
	require.NoError(t, testDB.ReplaceContradictions(ctx, doc.ID, false, nil))
	got, err = testDB.GetContradictions(ctx, doc.ID, false)
	require.NoError(t, err)
	assert.Empty(t, got)
}
