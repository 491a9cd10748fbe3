// Package embedding implements C3, the clause embedder: it turns clause
// text into fixed-dimensionality vectors for similarity-based candidate
// finding.
package embedding

import (
	"context"
	"errors"
	"fmt"

	"github.com/pgvector/pgvector-go"
)

// ErrNoProvider is returned by NoopProvider to signal no real embedding
// backend is configured. Callers treat this as "no embedding available" for
// this clause, not a transient failure — the clause is simply excluded from
// candidate finding (model.Clause.HasEmbedding returns false).
var ErrNoProvider = errors.New("embedding: no provider configured (noop)")

// maxResponseBody bounds how much of an embedding API response we'll read.
const maxResponseBody = 10 * 1024 * 1024

// Provider generates vector embeddings from clause text.
type Provider interface {
	Embed(ctx context.Context, text string) (pgvector.Vector, error)
	EmbedBatch(ctx context.Context, texts []string) ([]pgvector.Vector, error)
	Dimensions() int
}

// NoopProvider returns ErrNoProvider unconditionally. Selected when no
// embedding backend is configured.
type NoopProvider struct {
	dims int
}

func NewNoopProvider(dims int) *NoopProvider {
	return &NoopProvider{dims: dims}
}

func (p *NoopProvider) Dimensions() int { return p.dims }

func (p *NoopProvider) Embed(_ context.Context, _ string) (pgvector.Vector, error) {
	return pgvector.Vector{}, ErrNoProvider
}

func (p *NoopProvider) EmbedBatch(_ context.Context, _ []string) ([]pgvector.Vector, error) {
	return nil, ErrNoProvider
}

// checkDimensions returns an error if got doesn't match want — a defensive
// check against a misconfigured model name returning the wrong vector size.
func checkDimensions(want, got int) error {
	if want > 0 && got != want {
		return fmt.Errorf("embedding: expected %d dimensions, got %d", want, got)
	}
	return nil
}
