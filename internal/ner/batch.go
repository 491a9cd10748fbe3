package ner

// MinBatchSize records a clause-batch size of 128 for C4. Nothing in this
// package reads it: ExtractAll hands texts to the Extractor one at a time.
const MinBatchSize = 128

// ExtractAll labels every clause in texts, returning a parallel slice of
// label maps. A per-clause panic recovery isn't needed here since
// Extractor.Extract already degrades to an empty map internally; ExtractAll
// exists to give callers a single batched entry point to extend later
// (e.g. if a future Extractor implementation is genuinely batch-native).
func ExtractAll(extractor Extractor, texts []string) []map[string][]string {
	out := make([]map[string][]string, len(texts))
	for i, t := range texts {
		out[i] = extractor.Extract(t)
	}
	return out
}
