package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/veritas-sh/veritas/internal/candidates"
	"github.com/veritas-sh/veritas/internal/config"
	"github.com/veritas-sh/veritas/internal/crossdoc"
	"github.com/veritas-sh/veritas/internal/embedding"
	"github.com/veritas-sh/veritas/internal/ner"
	"github.com/veritas-sh/veritas/internal/nli"
	"github.com/veritas-sh/veritas/internal/objectstore"
	"github.com/veritas-sh/veritas/internal/pipeline"
	"github.com/veritas-sh/veritas/internal/storage/postgres"
	"github.com/veritas-sh/veritas/internal/telemetry"
	"github.com/veritas-sh/veritas/internal/worker"
	"github.com/veritas-sh/veritas/migrations"
)

// version is set at build time via -ldflags.
var version = "dev"

// pollInterval governs how often each worker-pool slot checks storage for
// pending work.
const pollInterval = 2 * time.Second

func main() {
	os.Exit(run0())
}

func run0() int {
	level := parseLogLevel(os.Getenv("VERITAS_LOG_LEVEL"))
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: level,
	}))
	slog.SetDefault(logger)

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if err := run(ctx, logger); err != nil {
		slog.Error("fatal error", "error", err)
		return 1
	}
	return 0
}

func run(ctx context.Context, logger *slog.Logger) error {
	// Load .env file if present (non-fatal; production won't have one).
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	logger.Info("veritas starting", "version", version)

	otelShutdown, err := telemetry.Init(ctx, cfg.OTELEndpoint, cfg.ServiceName, version, cfg.OTELInsecure)
	if err != nil {
		return fmt.Errorf("telemetry: %w", err)
	}
	defer func() { _ = otelShutdown(context.Background()) }()

	db, err := postgres.New(ctx, cfg.DatabaseURL, cfg.NotifyURL, logger)
	if err != nil {
		return fmt.Errorf("storage: %w", err)
	}
	defer db.Close(ctx)

	if err := db.RunMigrations(ctx, migrations.FS); err != nil {
		return fmt.Errorf("migrations: %w", err)
	}

	// Verify the schema came up: if the pgvector extension failed to
	// create, migration 001 fails silently on some Postgres images and the
	// process would otherwise start against a database with no tables.
	var schemaOK bool
	if err := db.Pool().QueryRow(ctx,
		`SELECT EXISTS (SELECT FROM information_schema.tables WHERE table_schema = 'public' AND table_name = 'documents')`,
	).Scan(&schemaOK); err != nil {
		return fmt.Errorf("schema verification: %w", err)
	}
	if !schemaOK {
		return fmt.Errorf("critical table 'documents' does not exist after migration — check that the vector extension is available")
	}

	objects, err := objectstore.New(cfg.ObjectStoreBaseURL, cfg.ObjectStoreSigningKey)
	if err != nil {
		return fmt.Errorf("objectstore: %w", err)
	}

	embedder := newEmbeddingProvider(cfg, logger)
	verifier := newNLIVerifier(cfg, logger)
	nerExtractor := ner.New()

	pl := pipeline.New(db, objects, embedder, nerExtractor, verifier, logger)
	pl.Thresholds.Significance = cfg.SignificanceThreshold
	pl.Thresholds.RuleBackedFloor = cfg.RuleBackedConfidenceFloor
	pl.Thresholds.NonRuleBackedFloor = cfg.NonRuleBackedConfidenceFloor
	pl.Thresholds.EntailmentVetoCeiling = cfg.EntailmentVetoCeiling
	pl.SignedURLTTLSeconds = cfg.SignedURLTTLSeconds
	pl.SimilarityThreshold = cfg.IntraDocSimilarityThreshold

	cd := crossdoc.New(db, objects, embedder, nerExtractor, verifier, logger)
	cd.Thresholds = pl.Thresholds
	cd.SignedURLTTLSeconds = cfg.SignedURLTTLSeconds
	cd.SimilarityThreshold = cfg.CrossDocSimilarityThreshold

	if finder := newCandidateFinder(ctx, cfg, logger); finder != nil {
		pl.Finder = finder
		cd.Finder = finder
	}

	pool := worker.New(db, pl, cd, logger, pollInterval, cfg.WorkerConcurrency)
	pool.Start(ctx)

	<-ctx.Done()
	logger.Info("veritas shutting down")
	pool.Stop()
	pool.Wait()
	logger.Info("veritas stopped")
	return nil
}

func parseLogLevel(raw string) slog.Level {
	switch raw {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// newEmbeddingProvider selects C3's backend. Auto mode prefers Ollama (the
// clause text never leaves the host), falling back to OpenAI if a key is
// present, else noop (candidate-finding degrades to rule/NLI-only).
func newEmbeddingProvider(cfg config.Config, logger *slog.Logger) embedding.Provider {
	dims := cfg.EmbeddingDimensions

	switch cfg.EmbeddingProvider {
	case "openai":
		if cfg.OpenAIAPIKey == "" {
			logger.Error("OPENAI_API_KEY required when VERITAS_EMBEDDING_PROVIDER=openai")
			return embedding.NewNoopProvider(dims)
		}
		logger.Info("embedding provider: openai", "model", cfg.EmbeddingModel, "dimensions", dims)
		p, err := embedding.NewOpenAIProvider(cfg.OpenAIAPIKey, cfg.EmbeddingModel, dims)
		if err != nil {
			logger.Error("openai embedding provider init failed", "error", err)
			return embedding.NewNoopProvider(dims)
		}
		return p

	case "ollama":
		logger.Info("embedding provider: ollama", "url", cfg.OllamaURL, "model", cfg.OllamaEmbedModel, "dimensions", dims)
		return embedding.NewOllamaProvider(cfg.OllamaURL, cfg.OllamaEmbedModel, dims)

	case "noop":
		logger.Info("embedding provider: noop (similarity candidates disabled)")
		return embedding.NewNoopProvider(dims)

	case "auto":
		fallthrough
	default:
		if ollamaReachable(cfg.OllamaURL) {
			logger.Info("embedding provider: ollama (auto-detected)", "url", cfg.OllamaURL, "model", cfg.OllamaEmbedModel, "dimensions", dims)
			return embedding.NewOllamaProvider(cfg.OllamaURL, cfg.OllamaEmbedModel, dims)
		}
		if cfg.OpenAIAPIKey != "" {
			logger.Info("embedding provider: openai (auto-detected)", "model", cfg.EmbeddingModel, "dimensions", dims)
			p, err := embedding.NewOpenAIProvider(cfg.OpenAIAPIKey, cfg.EmbeddingModel, dims)
			if err != nil {
				logger.Error("openai embedding provider init failed", "error", err)
				return embedding.NewNoopProvider(dims)
			}
			return p
		}
		logger.Warn("no embedding backend available, using noop (similarity candidates disabled)")
		return embedding.NewNoopProvider(dims)
	}
}

// newNLIVerifier selects C7's backend. An explicit "ollama" is used as
// requested even if unreachable at startup (the first Verify call will
// surface the error, which the pipeline treats as "unconfirmed" rather
// than fatal); any value other than "openai", "noop" or "ollama" (e.g.
// "auto") auto-detects like the embedding provider: a reachable Ollama,
// then OpenAI, then noop. A noop verifier still lets numeric-rule
// contradictions through, since those bypass NLI entirely; modal,
// authority, entity and semantic-only candidates go undetected.
func newNLIVerifier(cfg config.Config, logger *slog.Logger) nli.Verifier {
	switch cfg.NLIProvider {
	case "openai":
		if cfg.OpenAIAPIKey == "" {
			logger.Error("OPENAI_API_KEY required when VERITAS_NLI_PROVIDER=openai")
			return nli.NoopVerifier{}
		}
		logger.Info("nli provider: openai", "model", cfg.NLIModel)
		return nli.NewOpenAIVerifier(cfg.OpenAIAPIKey, cfg.NLIModel)

	case "noop":
		logger.Info("nli provider: noop (semantic-only contradictions disabled)")
		return nli.NoopVerifier{}

	case "ollama":
		logger.Info("nli provider: ollama", "url", cfg.OllamaURL, "model", cfg.NLIModel)
		return nli.NewOllamaVerifier(cfg.OllamaURL, cfg.NLIModel)

	default:
		if ollamaReachable(cfg.OllamaURL) {
			logger.Info("nli provider: ollama (auto-detected)", "url", cfg.OllamaURL, "model", cfg.NLIModel)
			return nli.NewOllamaVerifier(cfg.OllamaURL, cfg.NLIModel)
		}
		if cfg.OpenAIAPIKey != "" {
			logger.Info("nli provider: openai (auto-detected)", "model", cfg.NLIModel)
			return nli.NewOpenAIVerifier(cfg.OpenAIAPIKey, cfg.NLIModel)
		}
		logger.Warn("no nli backend available, using noop (semantic-only contradictions disabled)")
		return nli.NoopVerifier{}
	}
}

// newCandidateFinder wires C6's optional Qdrant accelerator when QdrantURL
// is configured. Returns nil (and the caller keeps the exact block-matrix
// Finder both Pipeline and Orchestrator default to) when Qdrant is unset or
// unreachable at startup — the in-process scan is always correct, just
// O(n*m) instead of sub-linear over large clause sets.
func newCandidateFinder(ctx context.Context, cfg config.Config, logger *slog.Logger) candidates.Finder {
	if cfg.QdrantURL == "" {
		return nil
	}
	idx, err := candidates.NewQdrantIndex(candidates.QdrantConfig{
		URL:        cfg.QdrantURL,
		APIKey:     cfg.QdrantAPIKey,
		Collection: cfg.QdrantCollection,
		Dims:       uint64(cfg.EmbeddingDimensions),
	}, logger)
	if err != nil {
		logger.Error("qdrant accelerator init failed, falling back to exact candidate scan", "error", err)
		return nil
	}
	if err := idx.EnsureCollection(ctx); err != nil {
		logger.Error("qdrant collection setup failed, falling back to exact candidate scan", "error", err)
		return nil
	}
	logger.Info("candidate finder: qdrant", "url", cfg.QdrantURL, "collection", cfg.QdrantCollection)
	return idx
}

// ollamaReachable checks if an Ollama server is responding.
func ollamaReachable(baseURL string) bool {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, baseURL+"/api/tags", nil)
	if err != nil {
		return false
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return false
	}
	_ = resp.Body.Close()
	return resp.StatusCode == http.StatusOK
}
