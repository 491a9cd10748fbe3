package config

import "testing"

func TestEnvIntValid(t *testing.T) {
	t.Setenv("TEST_INT", "42")
	v, err := envInt("TEST_INT", 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if v != 42 {
		t.Fatalf("expected 42, got %d", v)
	}
}

func TestEnvIntFallback(t *testing.T) {
	v, err := envInt("TEST_INT_MISSING", 99)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if v != 99 {
		t.Fatalf("expected fallback 99, got %d", v)
	}
}

func TestEnvIntInvalid(t *testing.T) {
	t.Setenv("TEST_INT_BAD", "abc")
	_, err := envInt("TEST_INT_BAD", 0)
	if err == nil {
		t.Fatal("expected error for non-integer value, got nil")
	}
	if got := err.Error(); got != `TEST_INT_BAD="abc" is not a valid integer` {
		t.Fatalf("unexpected error message: %s", got)
	}
}

func TestEnvFloatInvalid(t *testing.T) {
	t.Setenv("TEST_FLOAT_BAD", "abc")
	_, err := envFloat("TEST_FLOAT_BAD", 0)
	if err == nil {
		t.Fatal("expected error for non-float value, got nil")
	}
}

func TestEnvBoolInvalid(t *testing.T) {
	t.Setenv("TEST_BOOL_BAD", "maybe")
	_, err := envBool("TEST_BOOL_BAD", false)
	if err == nil {
		t.Fatal("expected error for non-boolean value, got nil")
	}
}

func TestLoad_SucceedsWithDefaults(t *testing.T) {
	cfg, err := Load()
	if err != nil {
		t.Fatalf("expected Load() to succeed with defaults, got: %v", err)
	}
	if cfg.WorkerConcurrency != 4 {
		t.Fatalf("expected default WorkerConcurrency 4, got %d", cfg.WorkerConcurrency)
	}
	if cfg.EmbeddingProvider != "auto" {
		t.Fatalf("expected default EmbeddingProvider %q, got %q", "auto", cfg.EmbeddingProvider)
	}
	if cfg.NLIProvider != "ollama" {
		t.Fatalf("expected default NLIProvider %q, got %q", "ollama", cfg.NLIProvider)
	}
	if cfg.QdrantURL != "" {
		t.Fatalf("expected empty QdrantURL by default, got %q", cfg.QdrantURL)
	}
}

func TestLoad_FailsOnInvalidWorkerConcurrency(t *testing.T) {
	t.Setenv("VERITAS_WORKER_CONCURRENCY", "abc")
	_, err := Load()
	if err == nil {
		t.Fatal("expected Load() to fail with invalid VERITAS_WORKER_CONCURRENCY")
	}
	if !contains(err.Error(), "VERITAS_WORKER_CONCURRENCY") {
		t.Fatalf("error should mention VERITAS_WORKER_CONCURRENCY, got: %s", err.Error())
	}
}

func TestLoad_FailsOnZeroWorkerConcurrency(t *testing.T) {
	t.Setenv("VERITAS_WORKER_CONCURRENCY", "0")
	_, err := Load()
	if err == nil {
		t.Fatal("expected Load() to fail with VERITAS_WORKER_CONCURRENCY=0")
	}
}

func TestLoad_QdrantURLHonored(t *testing.T) {
	qdrantURL := "https://qdrant.example.com:6334"
	t.Setenv("QDRANT_URL", qdrantURL)
	t.Setenv("QDRANT_COLLECTION", "custom_clauses")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("expected Load() to succeed, got: %v", err)
	}
	if cfg.QdrantURL != qdrantURL {
		t.Fatalf("expected QdrantURL %q, got %q", qdrantURL, cfg.QdrantURL)
	}
	if cfg.QdrantCollection != "custom_clauses" {
		t.Fatalf("expected QdrantCollection %q, got %q", "custom_clauses", cfg.QdrantCollection)
	}
}

func TestLoad_SimilarityThresholdsOutOfRange(t *testing.T) {
	t.Setenv("VERITAS_INTRA_DOC_SIMILARITY_THRESHOLD", "1.5")
	_, err := Load()
	if err == nil {
		t.Fatal("expected Load() to fail when a similarity threshold exceeds 1")
	}
	if !contains(err.Error(), "VERITAS_INTRA_DOC_SIMILARITY_THRESHOLD") {
		t.Fatalf("error should mention VERITAS_INTRA_DOC_SIMILARITY_THRESHOLD, got: %s", err.Error())
	}
}

func contains(s, substr string) bool {
	for i := 0; i+len(substr) <= len(s); i++ {
		if s[i:i+len(substr)] == substr {
			return true
		}
	}
	return false
}
