package candidates

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"strconv"

	"github.com/google/uuid"
	"github.com/qdrant/go-client/qdrant"

	"github.com/veritas-sh/veritas/internal/model"
)

// neighborFetchLimit is the limit passed to SearchWithinDocuments per query
// clause; that call over-fetches 3x this many ANN neighbors, before the
// threshold filter below is applied.
const neighborFetchLimit = 50

// QdrantConfig configures the optional ANN accelerator. When unset, C6
// falls back to the exact block-matrix cosine similarity in candidates.go
// — correct for the document sizes this pipeline targets, just O(n*m)
// instead of sub-linear.
type QdrantConfig struct {
	URL        string
	APIKey     string
	Collection string
	Dims       uint64
}

// Point is one clause's embedding plus the document it belongs to, used
// both to upsert and to scope searches to (or across) documents via the
// document_id payload filter.
type Point struct {
	ClauseID  uuid.UUID
	DocID     uuid.UUID
	Embedding []float32
}

// QdrantIndex accelerates candidate finding over large clause sets using
// Qdrant's HNSW index instead of an in-process full matrix multiply.
type QdrantIndex struct {
	client     *qdrant.Client
	collection string
	dims       uint64
	logger     *slog.Logger
}

func parseQdrantURL(rawURL string) (host string, port int, useTLS bool, err error) {
	u, parseErr := url.Parse(rawURL)
	if parseErr != nil || u.Host == "" {
		return "", 0, false, fmt.Errorf("candidates: invalid qdrant URL: %q", rawURL)
	}
	useTLS = u.Scheme == "https"
	host = u.Hostname()
	if portStr := u.Port(); portStr != "" {
		p, err := strconv.Atoi(portStr)
		if err != nil {
			return "", 0, false, fmt.Errorf("candidates: invalid port in qdrant URL: %q", portStr)
		}
		if p == 6333 {
			port = 6334
		} else {
			port = p
		}
	} else {
		port = 6334
	}
	return host, port, useTLS, nil
}

// NewQdrantIndex connects to Qdrant over gRPC.
func NewQdrantIndex(cfg QdrantConfig, logger *slog.Logger) (*QdrantIndex, error) {
	host, port, useTLS, err := parseQdrantURL(cfg.URL)
	if err != nil {
		return nil, err
	}
	client, err := qdrant.NewClient(&qdrant.Config{
		Host:   host,
		Port:   port,
		APIKey: cfg.APIKey,
		UseTLS: useTLS,
	})
	if err != nil {
		return nil, fmt.Errorf("candidates: connect to qdrant at %s:%d: %w", host, port, err)
	}
	return &QdrantIndex{client: client, collection: cfg.Collection, dims: cfg.Dims, logger: logger}, nil
}

// EnsureCollection creates the clause collection if it doesn't exist yet,
// with a keyword index on document_id for per-document filtering.
func (q *QdrantIndex) EnsureCollection(ctx context.Context) error {
	exists, err := q.client.CollectionExists(ctx, q.collection)
	if err != nil {
		return fmt.Errorf("candidates: check collection exists: %w", err)
	}
	if exists {
		return nil
	}

	m := uint64(16)
	efConstruct := uint64(128)
	err = q.client.CreateCollection(ctx, &qdrant.CreateCollection{
		CollectionName: q.collection,
		VectorsConfig: qdrant.NewVectorsConfig(&qdrant.VectorParams{
			Size:     q.dims,
			Distance: qdrant.Distance_Cosine,
			HnswConfig: &qdrant.HnswConfigDiff{
				M:           &m,
				EfConstruct: &efConstruct,
			},
		}),
	})
	if err != nil {
		return fmt.Errorf("candidates: create collection %q: %w", q.collection, err)
	}

	keywordType := qdrant.FieldType_FieldTypeKeyword
	if _, err := q.client.CreateFieldIndex(ctx, &qdrant.CreateFieldIndexCollection{
		CollectionName: q.collection,
		FieldName:      "document_id",
		FieldType:      &keywordType,
	}); err != nil {
		return fmt.Errorf("candidates: create index on document_id: %w", err)
	}

	q.logger.Info("candidates: created qdrant collection", "collection", q.collection, "dims", q.dims)
	return nil
}

// Upsert inserts or replaces clause points.
func (q *QdrantIndex) Upsert(ctx context.Context, points []Point) error {
	if len(points) == 0 {
		return nil
	}
	qdrantPoints := make([]*qdrant.PointStruct, len(points))
	for i, p := range points {
		qdrantPoints[i] = &qdrant.PointStruct{
			Id:      qdrant.NewID(p.ClauseID.String()),
			Vectors: qdrant.NewVectorsDense(p.Embedding),
			Payload: qdrant.NewValueMap(map[string]any{"document_id": p.DocID.String()}),
		}
	}
	_, err := q.client.Upsert(ctx, &qdrant.UpsertPoints{
		CollectionName: q.collection,
		Wait:           qdrant.PtrOf(true),
		Points:         qdrantPoints,
	})
	if err != nil {
		return fmt.Errorf("candidates: qdrant upsert %d points: %w", len(points), err)
	}
	return nil
}

// NeighborResult is one approximate-nearest-neighbor hit.
type NeighborResult struct {
	ClauseID uuid.UUID
	Score    float64
}

// SearchWithinDocuments returns clauses near embedding, restricted to the
// given document IDs (one document for intra-doc candidate finding, two
// for cross-document). Over-fetches 3x limit so the caller can apply the
// similarity threshold itself rather than trusting Qdrant's ranking cutoff.
func (q *QdrantIndex) SearchWithinDocuments(ctx context.Context, embedding []float32, docIDs []uuid.UUID, limit int) ([]NeighborResult, error) {
	var must *qdrant.Condition
	if len(docIDs) == 1 {
		must = qdrant.NewMatch("document_id", docIDs[0].String())
	} else {
		ids := make([]string, len(docIDs))
		for i, d := range docIDs {
			ids[i] = d.String()
		}
		must = qdrant.NewMatchKeywords("document_id", ids...)
	}

	fetchLimit := uint64(limit) * 3
	scored, err := q.client.Query(ctx, &qdrant.QueryPoints{
		CollectionName: q.collection,
		Query:          qdrant.NewQueryDense(embedding),
		Filter:         &qdrant.Filter{Must: []*qdrant.Condition{must}},
		Limit:          &fetchLimit,
		WithPayload:    qdrant.NewWithPayload(false),
	})
	if err != nil {
		return nil, fmt.Errorf("candidates: qdrant query: %w", err)
	}

	results := make([]NeighborResult, 0, len(scored))
	for _, sp := range scored {
		idStr := sp.Id.GetUuid()
		if idStr == "" {
			continue
		}
		clauseID, err := uuid.Parse(idStr)
		if err != nil {
			q.logger.Warn("candidates: invalid UUID in qdrant point", "id", idStr)
			continue
		}
		results = append(results, NeighborResult{ClauseID: clauseID, Score: sp.Score})
	}
	return results, nil
}

// FindIntraDocument implements Finder: it upserts clauses (Qdrant upsert is
// idempotent by point ID, so re-running a document is cheap) then queries
// each clause's nearest neighbors restricted to the same document.
func (q *QdrantIndex) FindIntraDocument(ctx context.Context, clauses []model.Clause, threshold float64) ([]Pair, error) {
	if len(clauses) == 0 {
		return nil, nil
	}
	if err := q.upsertClauses(ctx, clauses); err != nil {
		return nil, err
	}
	docID := clauses[0].DocID
	indexByID := make(map[uuid.UUID]int, len(clauses))
	for i, c := range clauses {
		indexByID[c.ID] = i
	}

	seen := make(map[[2]int]bool)
	var pairs []Pair
	for i, c := range clauses {
		if !c.HasEmbedding() {
			continue
		}
		neighbors, err := q.SearchWithinDocuments(ctx, c.Embedding.Slice(), []uuid.UUID{docID}, neighborFetchLimit)
		if err != nil {
			return nil, err
		}
		for _, n := range neighbors {
			j, ok := indexByID[n.ClauseID]
			if !ok || j == i || n.Score < threshold {
				continue
			}
			lo, hi := i, j
			if lo > hi {
				lo, hi = hi, lo
			}
			key := [2]int{lo, hi}
			if seen[key] {
				continue
			}
			seen[key] = true
			pairs = append(pairs, Pair{I: lo, J: hi, Similarity: n.Score})
		}
	}
	return pairs, nil
}

// FindCrossDocument implements Finder for the two-document case: it upserts
// both sides, then for each clause in A searches only within B's document
// id, so a clause never matches its own document's neighbors.
func (q *QdrantIndex) FindCrossDocument(ctx context.Context, clausesA, clausesB []model.Clause, threshold float64) ([]Pair, error) {
	if len(clausesA) == 0 || len(clausesB) == 0 {
		return nil, nil
	}
	if err := q.upsertClauses(ctx, clausesA); err != nil {
		return nil, err
	}
	if err := q.upsertClauses(ctx, clausesB); err != nil {
		return nil, err
	}
	docBID := clausesB[0].DocID
	indexByID := make(map[uuid.UUID]int, len(clausesB))
	for j, c := range clausesB {
		indexByID[c.ID] = j
	}

	var pairs []Pair
	for i, c := range clausesA {
		if !c.HasEmbedding() {
			continue
		}
		neighbors, err := q.SearchWithinDocuments(ctx, c.Embedding.Slice(), []uuid.UUID{docBID}, neighborFetchLimit)
		if err != nil {
			return nil, err
		}
		for _, n := range neighbors {
			j, ok := indexByID[n.ClauseID]
			if !ok || n.Score < threshold {
				continue
			}
			pairs = append(pairs, Pair{I: i, J: j, Similarity: n.Score})
		}
	}
	return pairs, nil
}

func (q *QdrantIndex) upsertClauses(ctx context.Context, clauses []model.Clause) error {
	points := make([]Point, 0, len(clauses))
	for _, c := range clauses {
		if !c.HasEmbedding() {
			continue
		}
		points = append(points, Point{ClauseID: c.ID, DocID: c.DocID, Embedding: c.Embedding.Slice()})
	}
	return q.Upsert(ctx, points)
}
