package pipeline

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/veritas-sh/veritas/internal/embedding"
	"github.com/veritas-sh/veritas/internal/model"
	"github.com/veritas-sh/veritas/internal/nli"
	"github.com/veritas-sh/veritas/internal/objectstore"
	"github.com/veritas-sh/veritas/internal/storage/memory"
)

// fakeExtractor maps clause text to a fixed entity set by substring match,
// so tests don't depend on prose/v2's IOB tagger recognizing specific
// proper nouns.
type fakeExtractor struct{}

func (fakeExtractor) Extract(text string) map[string][]string {
	switch {
	case strings.Contains(text, "Acme Corporation"):
		return map[string][]string{"ORG": {"Acme Corporation"}}
	case strings.Contains(text, "Globex Incorporated"):
		return map[string][]string{"ORG": {"Globex Incorporated"}}
	default:
		return map[string][]string{}
	}
}

// fakeVerifier returns a strong contradiction verdict for the two pairs the
// test document is built to exercise (modal and entity), neutral otherwise.
type fakeVerifier struct{}

func (fakeVerifier) Verify(_ context.Context, pairs []nli.Pair) ([]nli.Result, error) {
	out := make([]nli.Result, len(pairs))
	for i, p := range pairs {
		combined := p.Premise + " " + p.Hypothesis
		if (strings.Contains(combined, "required to complete") && strings.Contains(combined, "may complete")) ||
			(strings.Contains(combined, "Acme Corporation") && strings.Contains(combined, "Globex Incorporated")) {
			out[i] = nli.Result{Contradiction: 0.9, Entailment: 0.05, Neutral: 0.05}
			continue
		}
		out[i] = nli.Result{Neutral: 1}
	}
	return out, nil
}

const testDocText = `The tenant shall pay rent within 30 days of the invoice date.

Rent payment is due no later than 60 days after the tenant receives the invoice, per the payment schedule.

Staff members are required to complete the annual compliance training program without exception.

Staff members may complete the annual compliance training program at their own discretion.

The vendor responsible for office supply procurement is Acme Corporation for this contract.

The vendor responsible for office supply procurement is Globex Incorporated for this contract.`

func newTestPipeline(t *testing.T, objBaseURL string) (*Pipeline, *memory.Store) {
	t.Helper()
	store := memory.New()
	objects, err := objectstore.New(objBaseURL, "test-signing-key")
	require.NoError(t, err)
	p := New(store, objects, embedding.NewNoopProvider(384), fakeExtractor{}, fakeVerifier{}, nil)
	return p, store
}

func seedDocument(t *testing.T, store *memory.Store, filename string) uuid.UUID {
	t.Helper()
	id := uuid.New()
	store.PutDocument(model.Document{
		ID:       id,
		Filename: filename,
		Status:   model.DocumentPending,
	})
	return id
}

func TestProcessDocument_DetectsNumericModalAndEntityContradictions(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(testDocText))
	}))
	defer srv.Close()

	p, store := newTestPipeline(t, srv.URL)
	docID := seedDocument(t, store, "lease.txt")

	err := p.ProcessDocument(context.Background(), docID)
	require.NoError(t, err)

	doc, err := store.GetDocument(context.Background(), docID)
	require.NoError(t, err)
	assert.Equal(t, model.DocumentCompleted, doc.Status)
	assert.Equal(t, model.StageCompleted, doc.Stage)
	assert.Equal(t, 100, doc.Progress)

	contradictions, err := store.GetContradictions(context.Background(), docID, false)
	require.NoError(t, err)

	byType := make(map[model.ContradictionType]model.Contradiction)
	for _, c := range contradictions {
		byType[c.Type] = c
	}

	require.Contains(t, byType, model.TypeNumeric)
	numeric := byType[model.TypeNumeric]
	assert.Equal(t, model.SeverityHigh, numeric.Severity)
	assert.GreaterOrEqual(t, numeric.Confidence, 90.0)

	require.Contains(t, byType, model.TypeModal)
	require.Contains(t, byType, model.TypeEntity)
}

func TestProcessDocument_IdempotentReprocessingYieldsSameTerminalState(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(testDocText))
	}))
	defer srv.Close()

	p, store := newTestPipeline(t, srv.URL)
	docID := seedDocument(t, store, "lease.txt")

	require.NoError(t, p.ProcessDocument(context.Background(), docID))
	first, err := store.GetContradictions(context.Background(), docID, false)
	require.NoError(t, err)

	require.NoError(t, p.ProcessDocument(context.Background(), docID))
	second, err := store.GetContradictions(context.Background(), docID, false)
	require.NoError(t, err)

	assert.Len(t, second, len(first))
	doc, err := store.GetDocument(context.Background(), docID)
	require.NoError(t, err)
	assert.Equal(t, model.DocumentCompleted, doc.Status)
}

func TestProcessDocument_EmptySegmentationCompletesWithNoContradictions(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("CONFIDENTIAL\n\nPage 1 of 10\n\nDRAFT"))
	}))
	defer srv.Close()

	p, store := newTestPipeline(t, srv.URL)
	docID := seedDocument(t, store, "blank.txt")

	err := p.ProcessDocument(context.Background(), docID)
	require.NoError(t, err)

	doc, err := store.GetDocument(context.Background(), docID)
	require.NoError(t, err)
	assert.Equal(t, model.DocumentCompleted, doc.Status)

	contradictions, err := store.GetContradictions(context.Background(), docID, false)
	require.NoError(t, err)
	assert.Empty(t, contradictions)
}

func TestProcessDocument_UnsupportedFormatFailsDocument(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("irrelevant"))
	}))
	defer srv.Close()

	p, store := newTestPipeline(t, srv.URL)
	docID := seedDocument(t, store, "lease.rtf")

	err := p.ProcessDocument(context.Background(), docID)
	assert.Error(t, err)

	doc, err := store.GetDocument(context.Background(), docID)
	require.NoError(t, err)
	assert.Equal(t, model.DocumentFailed, doc.Status)
	require.NotNil(t, doc.ErrorMessage)
	assert.NotEmpty(t, *doc.ErrorMessage)
}

func TestProcessDocument_InvalidDocumentIDReturnsTypedError(t *testing.T) {
	p, _ := newTestPipeline(t, "https://storage.invalid")
	err := p.ProcessDocument(context.Background(), uuid.New())
	assert.ErrorIs(t, err, ErrInvalidDocument)
}

func TestProcessDocument_StorageFetchFailureFailsDocument(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	p, store := newTestPipeline(t, srv.URL)
	docID := seedDocument(t, store, "lease.txt")

	err := p.ProcessDocument(context.Background(), docID)
	assert.Error(t, err)

	doc, err := store.GetDocument(context.Background(), docID)
	require.NoError(t, err)
	assert.Equal(t, model.DocumentFailed, doc.Status)
}
