// Package crossdoc implements C11, the cross-document orchestrator: the
// state machine that compares every pair of documents in a comparison
// session and stores the contradictions found between them.
package crossdoc

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

var (
	// ErrInvalidSession is raised when the session id passed to
	// ProcessMultiDocuments does not exist.
	ErrInvalidSession = errors.New("crossdoc: invalid session")
	// ErrPersistence wraps a failed repository write.
	ErrPersistence = errors.New("crossdoc: persistence failed")
)

const maxErrorMessageLen = 500

func truncateError(err error) string {
	msg := err.Error()
	if len(msg) > maxErrorMessageLen {
		msg = msg[:maxErrorMessageLen]
	}
	return msg
}

// Orchestrator runs the C11 state machine over a comparison session. It
// shares the same rule set, embedding provider, NER extractor, and NLI
// verifier as a single-document Pipeline — these are process-wide
// singletons the spec requires both orchestrators to share (spec.md §5).
type Orchestrator struct {
	Repo     storage.Repository
	Objects  *objectstore.Store
	Embedder embedding.Provider
	NER      ner.Extractor
	Rules    *rules.Checker
	Verifier nli.Verifier
	Finder   candidates.Finder

	Thresholds          decision.Thresholds
	SimilarityThreshold float64
	SignedURLTTLSeconds int

	Logger *slog.Logger
}

// New assembles an Orchestrator, applying the same defaults Pipeline uses
// except for the similarity threshold, which takes the cross-document
// default (0.75) rather than Pipeline's intra-document one.
func New(repo storage.Repository, objects *objectstore.Store, embedder embedding.Provider, nerExtractor ner.Extractor, verifier nli.Verifier, logger *slog.Logger) *Orchestrator {
	if logger == nil {
		logger = slog.Default()
	}
	return &Orchestrator{
		Repo:                repo,
		Objects:             objects,
		Embedder:            embedder,
		NER:                 nerExtractor,
		Rules:               rules.NewChecker(),
		Verifier:            verifier,
		Finder:              candidates.ExactFinder{},
		Thresholds:          decision.DefaultThresholds,
		SimilarityThreshold: 0.75,
		SignedURLTTLSeconds: 300,
		Logger:              logger,
	}
}

// docPair names the two documents being compared, in session order.
type docPair struct {
	docA, docB uuid.UUID
}

// crossCandidate is one cross-document clause pair awaiting a decision,
// carrying enough context to build the final model.Contradiction without
// needing to re-resolve which document (and which NLI premise/hypothesis
// order) it came from.
type crossCandidate struct {
	pair        docPair
	clauseAID   uuid.UUID
	clauseBID   uuid.UUID
	clauseAText string
	clauseBText string
	ruleMatches []rules.Match
}

// ProcessMultiDocuments runs the full C11 state machine for one comparison
// session: for every document pair, reuse or compute embeddings, find
// similarity candidates, check rules across the concatenation, union the
// two candidate sets, verify the non-numeric-backed ones via NLI, decide,
// and persist every contradiction found across all pairs.
func (o *Orchestrator) ProcessMultiDocuments(ctx context.Context, sessionID uuid.UUID) (err error) {
	sess, getErr := o.Repo.GetSession(ctx, sessionID)
	if getErr != nil {
		if errors.Is(getErr, storage.ErrNotFound) {
			return fmt.Errorf("%w: %s", ErrInvalidSession, sessionID)
		}
		return fmt.Errorf("crossdoc: get session: %w", getErr)
	}

	defer func() {
		if err != nil {
			msg := truncateError(err)
			if statusErr := o.Repo.UpdateSessionStatus(ctx, sessionID, model.DocumentFailed, &msg); statusErr != nil {
				o.Logger.Error("crossdoc: failed to record failure status", "session_id", sessionID, "error", statusErr)
			}
		}
	}()

	if err := o.Repo.UpdateSessionStatus(ctx, sessionID, model.DocumentProcessing, nil); err != nil {
		return fmt.Errorf("%w: %v", ErrPersistence, err)
	}
	if err := o.setStage(ctx, sessionID, model.CrossStagePreparing); err != nil {
		return err
	}

	pairs := documentPairs(sess.DocumentIDs)

	if err := o.setStage(ctx, sessionID, model.CrossStageExtracting); err != nil {
		return err
	}
	clausesByDoc := make(map[uuid.UUID][]model.Clause, len(sess.DocumentIDs))
	for _, docID := range sess.DocumentIDs {
		clauses, err := o.ensureClauses(ctx, docID)
		if err != nil {
			return err
		}
		clausesByDoc[docID] = clauses
	}

	if err := o.setStage(ctx, sessionID, model.CrossStageEmbedding); err != nil {
		return err
	}
	// Embeddings were computed (or reused) inside ensureClauses; this stage
	// marker exists purely to mirror spec.md §4.11's progress table.

	if err := o.setStage(ctx, sessionID, model.CrossStageSimilarity); err != nil {
		return err
	}
	var allBypassed []crossCandidate
	var allNeedsNLI []crossCandidate
	for _, dp := range pairs {
		clausesA := clausesByDoc[dp.docA]
		clausesB := clausesByDoc[dp.docB]

		bypassed, needsNLI, err := o.candidatesForPair(ctx, dp, clausesA, clausesB)
		if err != nil {
			return err
		}
		allBypassed = append(allBypassed, bypassed...)
		allNeedsNLI = append(allNeedsNLI, needsNLI...)
	}

	if err := o.setStage(ctx, sessionID, model.CrossStageRules); err != nil {
		return err
	}
	// Rule checking already ran inside candidatesForPair, ahead of this
	// marker, since the cross-document filter needs the full candidate set
	// before NLI verification begins.

	if err := o.setNLIProgress(ctx, sessionID, 0, len(allNeedsNLI)); err != nil {
		return err
	}
	verdicts, err := o.verify(ctx, allNeedsNLI)
	if err != nil {
		return err
	}
	if err := o.setNLIProgress(ctx, sessionID, len(allNeedsNLI), len(allNeedsNLI)); err != nil {
		return err
	}

	var contradictions []model.Contradiction
	for _, c := range allBypassed {
		if ct, ok := o.decide(sessionID, c, nil); ok {
			contradictions = append(contradictions, ct)
		}
	}
	for i, c := range allNeedsNLI {
		if ct, ok := o.decide(sessionID, c, &verdicts[i]); ok {
			contradictions = append(contradictions, ct)
		}
	}

	if err := o.setStage(ctx, sessionID, model.CrossStageStoring); err != nil {
		return err
	}
	if err := o.Repo.ReplaceContradictions(ctx, sessionID, true, contradictions); err != nil {
		return fmt.Errorf("%w: %v", ErrPersistence, err)
	}

	if err := o.setStage(ctx, sessionID, model.CrossStageCompleted); err != nil {
		return err
	}
	if err := o.Repo.UpdateSessionStatus(ctx, sessionID, model.DocumentCompleted, nil); err != nil {
		return fmt.Errorf("%w: %v", ErrPersistence, err)
	}
	return nil
}

// documentPairs returns every unordered pair of document ids, in a stable
// order derived from the session's document list.
func documentPairs(docIDs []uuid.UUID) []docPair {
	var out []docPair
	for i := 0; i < len(docIDs); i++ {
		for j := i + 1; j < len(docIDs); j++ {
			out = append(out, docPair{docA: docIDs[i], docB: docIDs[j]})
		}
	}
	return out
}

// ensureClauses applies the per-document reuse rule: if the document
// already has clauses with a non-null embedding, reuse them as-is;
// otherwise run C1-C4 inline and persist the result so later sessions
// (and the single-document pipeline) can reuse it too (spec.md §4.11).
func (o *Orchestrator) ensureClauses(ctx context.Context, docID uuid.UUID) ([]model.Clause, error) {
	existing, err := o.Repo.GetClauses(ctx, docID)
	if err != nil {
		return nil, fmt.Errorf("crossdoc: get clauses: %w", err)
	}
	for _, c := range existing {
		if c.HasEmbedding() {
			return existing, nil
		}
	}

	doc, err := o.Repo.GetDocument(ctx, docID)
	if err != nil {
		return nil, fmt.Errorf("crossdoc: get document: %w", err)
	}

	url, err := o.Objects.GetSignedURL(doc.Filename, o.SignedURLTTLSeconds)
	if err != nil {
		return nil, fmt.Errorf("crossdoc: sign url: %w", err)
	}
	data, err := o.Objects.Fetch(ctx, url)
	if err != nil {
		return nil, fmt.Errorf("crossdoc: fetch: %w", err)
	}
	text, err := extract.Extract(doc.Filename, data)
	if err != nil {
		return nil, fmt.Errorf("crossdoc: extract: %w", err)
	}
	segments, err := segment.Segment(text)
	if err != nil {
		return nil, fmt.Errorf("crossdoc: segment: %w", err)
	}

	clauses := make([]model.Clause, len(segments))
	texts := make([]string, len(segments))
	for i, s := range segments {
		clauses[i] = model.Clause{
			ID:       uuid.New(),
			DocID:    docID,
			Text:     s.Text,
			Position: s.Position,
			Section:  s.Section,
		}
		texts[i] = s.Text
	}

	vecs := embedding.EmbedAll(ctx, o.Embedder, texts, o.Logger)
	entities := ner.ExtractAll(o.NER, texts)
	for i := range clauses {
		clauses[i].Embedding = vecs[i]
		clauses[i].Entities = entities[i]
	}

	if err := o.Repo.ReplaceClauses(ctx, docID, clauses); err != nil {
		return nil, fmt.Errorf("crossdoc: persist clauses: %w", err)
	}
	for _, c := range clauses {
		if rErr := o.Repo.RefreshSearchVector(ctx, c.ID); rErr != nil {
			o.Logger.Debug("crossdoc: refresh search vector skipped", "clause_id", c.ID, "error", rErr)
		}
	}
	return clauses, nil
}

// candidatesForPair computes the similarity and rule-matched cross
// candidates for one document pair, splitting them into numeric-bypassed
// (no NLI needed) and everything else.
func (o *Orchestrator) candidatesForPair(ctx context.Context, dp docPair, clausesA, clausesB []model.Clause) (bypassed, needsNLI []crossCandidate, err error) {
	finder := o.Finder
	if finder == nil {
		finder = candidates.ExactFinder{}
	}
	simPairs, err := finder.FindCrossDocument(ctx, clausesA, clausesB, o.SimilarityThreshold)
	if err != nil {
		return nil, nil, fmt.Errorf("crossdoc: find cross-document candidates: %w", err)
	}

	ruleMatches := o.checkCrossRules(clausesA, clausesB)

	seen := make(map[[2]uuid.UUID]bool)
	var combined []crossCandidate

	for _, sp := range simPairs {
		a, b := clausesA[sp.I], clausesB[sp.J]
		key := [2]uuid.UUID{a.ID, b.ID}
		if seen[key] {
			continue
		}
		seen[key] = true
		combined = append(combined, crossCandidate{
			pair:        dp,
			clauseAID:   a.ID,
			clauseBID:   b.ID,
			clauseAText: a.Text,
			clauseBText: b.Text,
			ruleMatches: ruleMatches[key],
		})
	}
	for key, matches := range ruleMatches {
		if seen[key] {
			continue
		}
		seen[key] = true
		combined = append(combined, crossCandidate{
			pair:        dp,
			clauseAID:   key[0],
			clauseBID:   key[1],
			clauseAText: clauseTextByID(clausesA, key[0]),
			clauseBText: clauseTextByID(clausesB, key[1]),
			ruleMatches: matches,
		})
	}

	for _, c := range combined {
		if hasDominantNumericMatch(c.ruleMatches) {
			bypassed = append(bypassed, c)
		} else {
			needsNLI = append(needsNLI, c)
		}
	}
	return bypassed, needsNLI, nil
}

func clauseTextByID(clauses []model.Clause, id uuid.UUID) string {
	for _, c := range clauses {
		if c.ID == id {
			return c.Text
		}
	}
	return ""
}

// checkCrossRules runs C5 over the full concatenation clauses_a ∥
// clauses_b and keeps only violations where exactly one clause belongs to
// A and the other to B, determined by position index vs len(clausesA)
// (spec.md §4.11).
func (o *Orchestrator) checkCrossRules(clausesA, clausesB []model.Clause) map[[2]uuid.UUID][]rules.Match {
	combined := make([]model.Clause, 0, len(clausesA)+len(clausesB))
	combined = append(combined, clausesA...)
	combined = append(combined, clausesB...)
	splitAt := len(clausesA)

	out := make(map[[2]uuid.UUID][]rules.Match)
	for i := 0; i < len(combined); i++ {
		for j := i + 1; j < len(combined); j++ {
			crossesBoundary := (i < splitAt) != (j < splitAt)
			if !crossesBoundary {
				continue
			}
			a := rules.Clause{Text: combined[i].Text, Entities: combined[i].Entities}
			b := rules.Clause{Text: combined[j].Text, Entities: combined[j].Entities}
			m := o.Rules.Check(a, b)
			if len(m) == 0 {
				continue
			}
			// i is always the A-side clause and j the B-side clause since
			// the loop only keeps pairs that straddle splitAt and i < j.
			out[[2]uuid.UUID{combined[i].ID, combined[j].ID}] = m
		}
	}
	return out
}

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

// verify calls C7 once over every candidate across every document pair
// needing NLI confirmation.
func (o *Orchestrator) verify(ctx context.Context, cands []crossCandidate) ([]nli.Result, error) {
	if len(cands) == 0 {
		return nil, nil
	}
	pairs := make([]nli.Pair, len(cands))
	for i, c := range cands {
		pairs[i] = nli.Pair{Premise: c.clauseAText, Hypothesis: c.clauseBText}
	}
	results, err := o.Verifier.Verify(ctx, pairs)
	if err != nil {
		o.Logger.Warn("crossdoc: NLI verification failed, treating candidates as unconfirmed", "error", err)
		results = make([]nli.Result, len(cands))
		for i := range results {
			results[i] = nli.Result{Neutral: 1}
		}
	}
	return results, nil
}

// decide applies C8's gates to a cross candidate and builds the resulting
// Contradiction if kept. Cross-document candidates are evaluated with the
// exact same thresholds as single-document ones (no separate cross-doc
// gate profile).
func (o *Orchestrator) decide(sessionID uuid.UUID, c crossCandidate, result *nli.Result) (model.Contradiction, bool) {
	cand := decision.Candidate{
		ClauseA:     c.clauseAText,
		ClauseB:     c.clauseBText,
		RuleMatches: c.ruleMatches,
		NLI:         result,
	}
	d := decision.Evaluate(cand, o.Thresholds)
	if !d.Keep {
		return model.Contradiction{}, false
	}
	docA, docB := c.pair.docA, c.pair.docB
	return model.Contradiction{
		ID:          uuid.New(),
		ClauseAID:   c.clauseAID,
		ClauseBID:   c.clauseBID,
		SessionID:   &sessionID,
		DocAID:      &docA,
		DocBID:      &docB,
		Type:        d.Type,
		Severity:    d.Severity,
		Confidence:  d.Confidence,
		Description: describe.Build(c.clauseAText, c.clauseBText, d.Type, d.Description, d.Confidence),
		Status:      model.StatusOpen,
		DetectedAt:  timeNow(),
	}, true
}

func (o *Orchestrator) setStage(ctx context.Context, sessionID uuid.UUID, stage string) error {
	progress, _ := model.ProgressForCrossStage(stage)
	if err := o.Repo.UpdateSessionProgress(ctx, sessionID, stage, progress); err != nil {
		return fmt.Errorf("%w: %v", ErrPersistence, err)
	}
	return nil
}

// setNLIProgress reports progress within the NLI stage's 70..78 sub-range,
// interpolated by how many of the session's cross-document candidates have
// been verified so far (spec.md §4.11).
func (o *Orchestrator) setNLIProgress(ctx context.Context, sessionID uuid.UUID, verified, total int) error {
	progress := model.NLIProgress(verified, total)
	if err := o.Repo.UpdateSessionProgress(ctx, sessionID, model.CrossStageNLI, progress); err != nil {
		return fmt.Errorf("%w: %v", ErrPersistence, err)
	}
	return nil
}

func timeNow() time.Time { return time.Now().UTC() }
