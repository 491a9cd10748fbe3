package embedding

import (
	"context"
	"log/slog"

	"github.com/pgvector/pgvector-go"
)

// batchSize is the number of clause texts sent to a provider in a single
// request. 50 balances request-size limits against round-trip overhead for
// a multi-hundred-clause document.
const batchSize = 50

// EmbedAll embeds texts in fixed-size batches, logging progress between
// batches so a long-running document doesn't look stalled. A batch that
// fails degrades that batch's clauses to "no embedding" rather than failing
// the whole document — the candidate finder already treats missing
// embeddings as "skip this clause", and partial similarity coverage beats
// none.
func EmbedAll(ctx context.Context, provider Provider, texts []string, logger *slog.Logger) []*pgvector.Vector {
	if logger == nil {
		logger = slog.Default()
	}
	out := make([]*pgvector.Vector, len(texts))
	for start := 0; start < len(texts); start += batchSize {
		end := start + batchSize
		if end > len(texts) {
			end = len(texts)
		}
		batch := texts[start:end]
		vecs, err := provider.EmbedBatch(ctx, batch)
		if err != nil {
			logger.Warn("embedding: batch failed, clauses left unembedded",
				"batch_start", start, "batch_size", len(batch), "error", err)
			continue
		}
		for i, v := range vecs {
			vCopy := v
			out[start+i] = &vCopy
		}
		logger.Debug("embedding: batch complete", "embedded", end, "total", len(texts))
	}
	return out
}
