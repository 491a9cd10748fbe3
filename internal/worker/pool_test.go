package worker

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/veritas-sh/veritas/internal/crossdoc"
	"github.com/veritas-sh/veritas/internal/embedding"
	"github.com/veritas-sh/veritas/internal/model"
	"github.com/veritas-sh/veritas/internal/ner"
	"github.com/veritas-sh/veritas/internal/nli"
	"github.com/veritas-sh/veritas/internal/objectstore"
	"github.com/veritas-sh/veritas/internal/pipeline"
	"github.com/veritas-sh/veritas/internal/storage/memory"
)

func waitForStatus(t *testing.T, get func() model.DocumentStatus, want model.DocumentStatus) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if get() == want {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("status never reached %q, last was %q", want, get())
}

func TestPool_ProcessesPendingDocumentAutomatically(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("The tenant shall pay rent within 30 days of the invoice date."))
	}))
	defer srv.Close()

	store := memory.New()
	objects, err := objectstore.New(srv.URL, "test-signing-key")
	require.NoError(t, err)

	pl := pipeline.New(store, objects, embedding.NewNoopProvider(384), ner.New(), nli.NoopVerifier{}, nil)
	cd := crossdoc.New(store, objects, embedding.NewNoopProvider(384), ner.New(), nli.NoopVerifier{}, nil)

	pool := New(store, pl, cd, nil, 10*time.Millisecond, 2)

	docID := uuid.New()
	store.PutDocument(model.Document{ID: docID, Filename: "lease.txt", Status: model.DocumentPending})

	ctx, cancel := context.WithCancel(context.Background())
	pool.Start(ctx)
	defer func() {
		cancel()
		pool.Wait()
	}()

	waitForStatus(t, func() model.DocumentStatus {
		doc, _ := store.GetDocument(context.Background(), docID)
		return doc.Status
	}, model.DocumentCompleted)
}

func TestPool_ClaimPendingDocumentIsNotDoubleProcessed(t *testing.T) {
	store := memory.New()
	docID := uuid.New()
	store.PutDocument(model.Document{ID: docID, Filename: "lease.txt", Status: model.DocumentPending})

	id1, ok1, err := store.ClaimPendingDocument(context.Background())
	require.NoError(t, err)
	require.True(t, ok1)
	assert.Equal(t, docID, id1)

	_, ok2, err := store.ClaimPendingDocument(context.Background())
	require.NoError(t, err)
	assert.False(t, ok2)

	doc, err := store.GetDocument(context.Background(), docID)
	require.NoError(t, err)
	assert.Equal(t, model.DocumentProcessing, doc.Status)
}

func TestPool_StopAndWaitReturnsAfterInFlightRunCompletes(t *testing.T) {
	store := memory.New()
	objects, err := objectstore.New("https://storage.invalid", "test-signing-key")
	require.NoError(t, err)

	pl := pipeline.New(store, objects, embedding.NewNoopProvider(384), ner.New(), nli.NoopVerifier{}, nil)
	cd := crossdoc.New(store, objects, embedding.NewNoopProvider(384), ner.New(), nli.NoopVerifier{}, nil)
	pool := New(store, pl, cd, nil, 5*time.Millisecond, 1)

	ctx, cancel := context.WithCancel(context.Background())
	pool.Start(ctx)
	time.Sleep(15 * time.Millisecond)
	cancel()
	pool.Stop()
	pool.Wait()
}
