package candidates

import (
	"context"

	"github.com/veritas-sh/veritas/internal/model"
)

// Finder proposes candidate clause pairs for contradiction checking. C10
// and C11 depend on this interface rather than the package-level functions
// directly, so a Qdrant-backed accelerator can stand in for the exact scan
// without either orchestrator knowing the difference.
type Finder interface {
	FindIntraDocument(ctx context.Context, clauses []model.Clause, threshold float64) ([]Pair, error)
	FindCrossDocument(ctx context.Context, clausesA, clausesB []model.Clause, threshold float64) ([]Pair, error)
}

// ExactFinder wraps the in-process block-matrix cosine similarity scan.
// The default Finder: correct for the clause-set sizes this pipeline
// targets, O(n*m) rather than an ANN index's sub-linear search.
type ExactFinder struct{}

func (ExactFinder) FindIntraDocument(_ context.Context, clauses []model.Clause, threshold float64) ([]Pair, error) {
	return FindIntraDocument(embeddingsOf(clauses), threshold), nil
}

func (ExactFinder) FindCrossDocument(_ context.Context, clausesA, clausesB []model.Clause, threshold float64) ([]Pair, error) {
	return FindCrossDocument(embeddingsOf(clausesA), embeddingsOf(clausesB), threshold), nil
}

func embeddingsOf(clauses []model.Clause) [][]float32 {
	out := make([][]float32, len(clauses))
	for i, c := range clauses {
		if c.HasEmbedding() {
			out[i] = c.Embedding.Slice()
		}
	}
	return out
}
