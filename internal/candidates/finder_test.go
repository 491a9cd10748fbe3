package candidates

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/pgvector/pgvector-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/veritas-sh/veritas/internal/model"
)

func vecOf(t *testing.T, values ...float32) *pgvector.Vector {
	t.Helper()
	full := make([]float32, model.EmbeddingDims)
	copy(full, values)
	v := pgvector.NewVector(full)
	return &v
}

func TestExactFinder_FindIntraDocument_MatchesPackageFunction(t *testing.T) {
	docID := uuid.New()
	clauses := []model.Clause{
		{ID: uuid.New(), DocID: docID, Embedding: vecOf(t, 1, 0, 0)},
		{ID: uuid.New(), DocID: docID, Embedding: nil},
		{ID: uuid.New(), DocID: docID, Embedding: vecOf(t, 1, 0, 0)},
	}

	pairs, err := ExactFinder{}.FindIntraDocument(context.Background(), clauses, 0.8)
	require.NoError(t, err)
	require.Len(t, pairs, 1)
	assert.Equal(t, 0, pairs[0].I)
	assert.Equal(t, 2, pairs[0].J)
}

func TestExactFinder_FindCrossDocument_RespectsThreshold(t *testing.T) {
	docA, docB := uuid.New(), uuid.New()
	clausesA := []model.Clause{{ID: uuid.New(), DocID: docA, Embedding: vecOf(t, 1, 0)}}
	clausesB := []model.Clause{{ID: uuid.New(), DocID: docB, Embedding: vecOf(t, 0, 1)}}

	pairs, err := ExactFinder{}.FindCrossDocument(context.Background(), clausesA, clausesB, 0.5)
	require.NoError(t, err)
	assert.Empty(t, pairs)
}

func TestParseQdrantURL(t *testing.T) {
	tests := []struct {
		name     string
		url      string
		wantHost string
		wantPort int
		wantTLS  bool
		wantErr  bool
	}{
		{name: "https default port remaps to grpc", url: "https://qdrant.internal:6333", wantHost: "qdrant.internal", wantPort: 6334, wantTLS: true},
		{name: "explicit grpc port kept as-is", url: "http://localhost:6334", wantHost: "localhost", wantPort: 6334, wantTLS: false},
		{name: "no port defaults to 6334", url: "http://localhost", wantHost: "localhost", wantPort: 6334, wantTLS: false},
		{name: "invalid url errors", url: "://bad", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			host, port, tls, err := parseQdrantURL(tt.url)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantHost, host)
			assert.Equal(t, tt.wantPort, port)
			assert.Equal(t, tt.wantTLS, tls)
		})
	}
}
