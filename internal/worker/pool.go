// Package worker implements the worker pool spec.md §5 describes: the HTTP
// front-end that dispatches pipeline runs is out of scope, but the pool
// that claims pending documents/sessions and runs C10/C11 to completion
// inside its own slot is not — it's the scheduling contract itself.
package worker

import (
	"context"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/veritas-sh/veritas/internal/crossdoc"
	"github.com/veritas-sh/veritas/internal/pipeline"
	"github.com/veritas-sh/veritas/internal/storage"
)

// Pool polls storage for pending documents and comparison sessions and
// runs each claimed one to a terminal state in its own goroutine slot, with
// no intra-run parallelism (spec.md §5's "synchronous sequential state
// machine... one document (or one comparison session) owns its worker from
// entry to terminal state").
type Pool struct {
	Repo     storage.Repository
	Pipeline *pipeline.Pipeline
	Crossdoc *crossdoc.Orchestrator
	Logger   *slog.Logger

	PollInterval time.Duration
	Concurrency  int

	started    atomic.Bool
	cancelLoop context.CancelFunc
	wg         sync.WaitGroup
}

// New assembles a Pool with the given concurrency (number of slots polling
// independently) and poll interval.
func New(repo storage.Repository, pl *pipeline.Pipeline, cd *crossdoc.Orchestrator, logger *slog.Logger, pollInterval time.Duration, concurrency int) *Pool {
	if logger == nil {
		logger = slog.Default()
	}
	if concurrency <= 0 {
		concurrency = 1
	}
	return &Pool{
		Repo:         repo,
		Pipeline:     pl,
		Crossdoc:     cd,
		Logger:       logger,
		PollInterval: pollInterval,
		Concurrency:  concurrency,
	}
}

// Start launches Concurrency slots, each polling independently. Safe to
// call only once; a second call is a no-op.
func (p *Pool) Start(ctx context.Context) {
	if !p.started.CompareAndSwap(false, true) {
		p.Logger.Warn("worker: Start called more than once, ignoring")
		return
	}
	loopCtx, cancel := context.WithCancel(ctx)
	p.cancelLoop = cancel
	for i := 0; i < p.Concurrency; i++ {
		p.wg.Add(1)
		go p.loop(loopCtx, i)
	}
}

// Wait blocks until every slot's current run finishes and the loop exits
// (call after cancelling ctx or calling Stop).
func (p *Pool) Wait() {
	p.wg.Wait()
}

// Stop cancels the poll loops. It does not wait for in-flight runs; call
// Wait afterward to block until they drain.
func (p *Pool) Stop() {
	if p.cancelLoop != nil {
		p.cancelLoop()
	}
}

func (p *Pool) loop(ctx context.Context, slot int) {
	defer p.wg.Done()
	ticker := time.NewTicker(p.PollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			p.tick(ctx, slot)
		}
	}
}

// tick claims and runs at most one unit of work: a pending document takes
// priority over a pending comparison session, since C11 reuses embeddings
// C10 may have just computed.
func (p *Pool) tick(ctx context.Context, slot int) {
	docID, ok, err := p.Repo.ClaimPendingDocument(ctx)
	if err != nil {
		p.Logger.Error("worker: claim pending document failed", "slot", slot, "error", err)
		return
	}
	if ok {
		if err := p.Pipeline.ProcessDocument(ctx, docID); err != nil {
			p.Logger.Warn("worker: document run ended in error", "slot", slot, "document_id", docID, "error", err)
		}
		return
	}

	sessionID, ok, err := p.Repo.ClaimPendingSession(ctx)
	if err != nil {
		p.Logger.Error("worker: claim pending session failed", "slot", slot, "error", err)
		return
	}
	if ok {
		if err := p.Crossdoc.ProcessMultiDocuments(ctx, sessionID); err != nil {
			p.Logger.Warn("worker: session run ended in error", "slot", slot, "session_id", sessionID, "error", err)
		}
	}
}
