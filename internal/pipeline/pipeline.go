// Package pipeline implements C10, the single-document orchestrator: the
// synchronous state machine that turns one uploaded document into a set of
// stored clauses and contradictions.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/veritas-sh/veritas/internal/candidates"
	"github.com/veritas-sh/veritas/internal/decision"
	"github.com/veritas-sh/veritas/internal/describe"
	"github.com/veritas-sh/veritas/internal/embedding"
	"github.com/veritas-sh/veritas/internal/extract"
	"github.com/veritas-sh/veritas/internal/model"
	"github.com/veritas-sh/veritas/internal/ner"
	"github.com/veritas-sh/veritas/internal/nli"
	"github.com/veritas-sh/veritas/internal/objectstore"
	"github.com/veritas-sh/veritas/internal/rules"
	"github.com/veritas-sh/veritas/internal/segment"
	"github.com/veritas-sh/veritas/internal/storage"
)

// Pipeline wires together every stage of the single-document run. All
// dependencies are interfaces or concrete adapters assembled once at
// process startup and shared across runs — the sentence encoder, NLI
// verifier, and NER extractor are read-only after construction and safe
// for concurrent workers to share (spec.md §5).
type Pipeline struct {
	Repo      storage.Repository
	Objects   *objectstore.Store
	Embedder  embedding.Provider
	NER       ner.Extractor
	Rules     *rules.Checker
	Verifier  nli.Verifier
	Finder    candidates.Finder
	Thresholds decision.Thresholds

	SignedURLTTLSeconds int
	SimilarityThreshold float64 // intra-document candidate threshold (spec.md §4.6)

	Logger *slog.Logger
}

// New assembles a Pipeline, applying sensible defaults for anything left
// zero-valued. Finder defaults to the exact block-matrix scan; callers with
// a Qdrant accelerator configured swap it in afterward.
func New(repo storage.Repository, objects *objectstore.Store, embedder embedding.Provider, nerExtractor ner.Extractor, verifier nli.Verifier, logger *slog.Logger) *Pipeline {
	if logger == nil {
		logger = slog.Default()
	}
	return &Pipeline{
		Repo:                repo,
		Objects:             objects,
		Embedder:            embedder,
		NER:                 nerExtractor,
		Rules:               rules.NewChecker(),
		Verifier:            verifier,
		Finder:              candidates.ExactFinder{},
		Thresholds:          decision.DefaultThresholds,
		SignedURLTTLSeconds: 300,
		SimilarityThreshold: 0.82,
		Logger:              logger,
	}
}

// ProcessDocument runs the full C10 state machine for one document: fetch,
// extract, segment, embed, tag entities, find candidates, check rules,
// verify via NLI, decide, and persist. It is idempotent — any clauses and
// contradictions already stored for docID are replaced, never appended
// (spec.md §4.10).
func (p *Pipeline) ProcessDocument(ctx context.Context, docID uuid.UUID) (err error) {
	doc, getErr := p.Repo.GetDocument(ctx, docID)
	if getErr != nil {
		if errors.Is(getErr, storage.ErrNotFound) {
			return fmt.Errorf("%w: %s", ErrInvalidDocument, docID)
		}
		return fmt.Errorf("pipeline: get document: %w", getErr)
	}

	defer func() {
		if err != nil {
			msg := truncateError(err)
			if statusErr := p.Repo.UpdateDocumentStatus(ctx, docID, model.DocumentFailed, &msg); statusErr != nil {
				p.Logger.Error("pipeline: failed to record failure status", "document_id", docID, "error", statusErr)
			}
		}
	}()

	if err := p.Repo.UpdateDocumentStatus(ctx, docID, model.DocumentProcessing, nil); err != nil {
		return fmt.Errorf("%w: %v", ErrPersistence, err)
	}

	text, err := p.downloadAndExtract(ctx, docID, doc.Filename)
	if err != nil {
		return err
	}

	if err := p.setStage(ctx, docID, model.StageSegmenting); err != nil {
		return err
	}
	segments, err := segment.Segment(text)
	if err != nil {
		return fmt.Errorf("pipeline: segment: %w", err)
	}

	clauses := make([]model.Clause, len(segments))
	for i, s := range segments {
		clauses[i] = model.Clause{
			ID:       uuid.New(),
			DocID:    docID,
			Text:     s.Text,
			Position: s.Position,
			Section:  s.Section,
		}
	}

	if len(clauses) == 0 {
		p.Logger.Info("pipeline: document segmented to zero clauses", "document_id", docID)
		if err := p.Repo.ReplaceClauses(ctx, docID, nil); err != nil {
			return fmt.Errorf("%w: %v", ErrPersistence, err)
		}
		if err := p.Repo.ReplaceContradictions(ctx, docID, false, nil); err != nil {
			return fmt.Errorf("%w: %v", ErrPersistence, err)
		}
		return p.complete(ctx, docID)
	}

	if err := p.embedAndTag(ctx, docID, clauses); err != nil {
		return err
	}

	contradictions, err := p.findContradictions(ctx, docID, clauses)
	if err != nil {
		return err
	}

	if err := p.setStage(ctx, docID, model.StageStoring); err != nil {
		return err
	}
	if err := p.Repo.ReplaceClauses(ctx, docID, clauses); err != nil {
		return fmt.Errorf("%w: %v", ErrPersistence, err)
	}
	for _, c := range clauses {
		if rErr := p.Repo.RefreshSearchVector(ctx, c.ID); rErr != nil {
			p.Logger.Debug("pipeline: refresh search vector skipped", "clause_id", c.ID, "error", rErr)
		}
	}
	if err := p.Repo.ReplaceContradictions(ctx, docID, false, contradictions); err != nil {
		return fmt.Errorf("%w: %v", ErrPersistence, err)
	}

	return p.complete(ctx, docID)
}

func (p *Pipeline) downloadAndExtract(ctx context.Context, docID uuid.UUID, filename string) (string, error) {
	if err := p.setStage(ctx, docID, model.StageDownloading); err != nil {
		return "", err
	}
	url, err := p.Objects.GetSignedURL(filename, p.SignedURLTTLSeconds)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrStorageFetch, err)
	}
	data, err := p.Objects.Fetch(ctx, url)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrStorageFetch, err)
	}

	if err := p.setStage(ctx, docID, model.StageExtracting); err != nil {
		return "", err
	}
	text, err := extract.Extract(filename, data)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrExtraction, err)
	}
	return text, nil
}

// embedAndTag runs C3 and C4 over clauses in place.
func (p *Pipeline) embedAndTag(ctx context.Context, docID uuid.UUID, clauses []model.Clause) error {
	if err := p.setStage(ctx, docID, model.StageEmbedding); err != nil {
		return err
	}
	texts := make([]string, len(clauses))
	for i, c := range clauses {
		texts[i] = c.Text
	}
	vecs := embedding.EmbedAll(ctx, p.Embedder, texts, p.Logger)
	for i := range clauses {
		clauses[i].Embedding = vecs[i]
	}

	if err := p.setStage(ctx, docID, model.StageNER); err != nil {
		return err
	}
	entities := ner.ExtractAll(p.NER, texts)
	for i := range clauses {
		clauses[i].Entities = entities[i]
	}
	return nil
}

// findContradictions runs C5, C6, C7, and C8 over the fully-populated
// clause set and returns the contradictions to persist.
func (p *Pipeline) findContradictions(ctx context.Context, docID uuid.UUID, clauses []model.Clause) ([]model.Contradiction, error) {
	if err := p.setStage(ctx, docID, model.StageSimilarity); err != nil {
		return nil, err
	}
	finder := p.Finder
	if finder == nil {
		finder = candidates.ExactFinder{}
	}
	simPairs, err := finder.FindIntraDocument(ctx, clauses, p.SimilarityThreshold)
	if err != nil {
		return nil, fmt.Errorf("pipeline: find intra-document candidates: %w", err)
	}
	var similarityPairs [][2]uuid.UUID
	for _, sp := range simPairs {
		similarityPairs = append(similarityPairs, [2]uuid.UUID{clauses[sp.I].ID, clauses[sp.J].ID})
	}

	if err := p.setStage(ctx, docID, model.StageRules); err != nil {
		return nil, err
	}
	ruleMatches, rulePairs := p.checkRules(clauses)
	union := decision.UnionPairs(rulePairs, similarityPairs)

	byID := make(map[uuid.UUID]*model.Clause, len(clauses))
	for i := range clauses {
		byID[clauses[i].ID] = &clauses[i]
	}

	if err := p.setStage(ctx, docID, model.StageNLI); err != nil {
		return nil, err
	}
	verdicts, nliPairs, bypassed := p.runVerification(ctx, docID, union, byID, ruleMatches)

	var out []model.Contradiction
	for _, key := range bypassed.keys {
		cand := decision.Candidate{
			ClauseA:     byID[key[0]].Text,
			ClauseB:     byID[key[1]].Text,
			RuleMatches: ruleMatches[key],
		}
		if d := decision.Evaluate(cand, p.Thresholds); d.Keep {
			out = append(out, p.buildContradiction(docID, key, d, byID))
		}
	}
	for i, key := range nliPairs {
		cand := decision.Candidate{
			ClauseA:     byID[key[0]].Text,
			ClauseB:     byID[key[1]].Text,
			RuleMatches: ruleMatches[key],
			NLI:         &verdicts[i],
		}
		if d := decision.Evaluate(cand, p.Thresholds); d.Keep {
			out = append(out, p.buildContradiction(docID, key, d, byID))
		}
	}

	return out, nil
}

type bypassSet struct {
	keys []decision.PairKey
}

// checkRules runs C5 over every unordered clause pair. All clauses reaching
// this stage are already assertive (≥8 tokens per C2), so every pair
// qualifies for rule checking (spec.md §4.5).
func (p *Pipeline) checkRules(clauses []model.Clause) (map[decision.PairKey][]rules.Match, [][2]uuid.UUID) {
	matches := make(map[decision.PairKey][]rules.Match)
	var pairs [][2]uuid.UUID
	for i := 0; i < len(clauses); i++ {
		for j := i + 1; j < len(clauses); j++ {
			a := rules.Clause{Text: clauses[i].Text, Entities: clauses[i].Entities}
			b := rules.Clause{Text: clauses[j].Text, Entities: clauses[j].Entities}
			m := p.Rules.Check(a, b)
			if len(m) == 0 {
				continue
			}
			rawKey := model.PairKey(clauses[i].ID, clauses[j].ID)
			key := decision.PairKey(rawKey)
			matches[key] = m
			pairs = append(pairs, rawKey)
		}
	}
	return matches, pairs
}

// runVerification splits the unioned candidate set into numeric-rule-backed
// pairs (which bypass NLI entirely, per spec.md §9) and everything else,
// then calls C7 once over the remainder.
func (p *Pipeline) runVerification(
	ctx context.Context,
	docID uuid.UUID,
	union []decision.PairKey,
	byID map[uuid.UUID]*model.Clause,
	ruleMatches map[decision.PairKey][]rules.Match,
) ([]nli.Result, []decision.PairKey, bypassSet) {
	var bypassed bypassSet
	var needsNLI []decision.PairKey
	for _, key := range union {
		if hasDominantNumericMatch(ruleMatches[key]) {
			bypassed.keys = append(bypassed.keys, key)
			continue
		}
		needsNLI = append(needsNLI, key)
	}

	if len(needsNLI) == 0 {
		return nil, nil, bypassed
	}

	pairs := make([]nli.Pair, len(needsNLI))
	for i, key := range needsNLI {
		pairs[i] = nli.Pair{Premise: byID[key[0]].Text, Hypothesis: byID[key[1]].Text}
	}
	results, err := p.Verifier.Verify(ctx, pairs)
	if err != nil {
		p.Logger.Warn("pipeline: NLI verification failed, treating candidates as unconfirmed",
			"document_id", docID, "error", err)
		results = make([]nli.Result, len(needsNLI))
		for i := range results {
			results[i] = nli.Result{Neutral: 1}
		}
	}
	return results, needsNLI, bypassed
}

// hasDominantNumericMatch reports whether the highest-confidence rule match
// on a pair is a numeric mismatch — the only rule class whose evidence is
// strong enough to skip NLI confirmation (spec.md §9).
func hasDominantNumericMatch(matches []rules.Match) bool {
	if len(matches) == 0 {
		return false
	}
	best := matches[0]
	for _, m := range matches[1:] {
		if m.Confidence > best.Confidence {
			best = m
		}
	}
	return best.Type == model.TypeNumeric
}

func (p *Pipeline) buildContradiction(docID uuid.UUID, key decision.PairKey, d decision.Decision, byID map[uuid.UUID]*model.Clause) model.Contradiction {
	a, b := byID[key[0]], byID[key[1]]
	return model.Contradiction{
		ID:          uuid.New(),
		ClauseAID:   key[0],
		ClauseBID:   key[1],
		DocID:       &docID,
		Type:        d.Type,
		Severity:    d.Severity,
		Confidence:  d.Confidence,
		Description: describe.Build(a.Text, b.Text, d.Type, d.Description, d.Confidence),
		Status:      model.StatusOpen,
		DetectedAt:  time.Now().UTC(),
	}
}

func (p *Pipeline) setStage(ctx context.Context, docID uuid.UUID, stage string) error {
	progress, _ := model.ProgressForStage(stage)
	if err := p.Repo.UpdateDocumentProgress(ctx, docID, stage, progress); err != nil {
		return fmt.Errorf("%w: %v", ErrPersistence, err)
	}
	return nil
}

func (p *Pipeline) complete(ctx context.Context, docID uuid.UUID) error {
	if err := p.setStage(ctx, docID, model.StageCompleted); err != nil {
		return err
	}
	if err := p.Repo.UpdateDocumentStatus(ctx, docID, model.DocumentCompleted, nil); err != nil {
		return fmt.Errorf("%w: %v", ErrPersistence, err)
	}
	return nil
}
