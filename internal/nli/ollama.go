package nli

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// ollamaPerCallTimeout is higher than the OpenAI path to account for local
// model cold-start the first time a batch runs.
const ollamaPerCallTimeout = 60 * time.Second

// maxResponseBody bounds how much of an NLI response we'll read.
const maxResponseBody = 10 * 1024 * 1024

// OllamaVerifier calls a local Ollama-hosted cross-encoder NLI model
// through its generate endpoint, requesting raw per-class logits as JSON
// and softmaxing them locally rather than trusting the model's own
// normalization.
type OllamaVerifier struct {
	baseURL    string
	model      string
	httpClient *http.Client
}

func NewOllamaVerifier(baseURL, model string) *OllamaVerifier {
	if baseURL == "" {
		baseURL = "http://localhost:11434"
	}
	return &OllamaVerifier{
		baseURL:    baseURL,
		model:      model,
		httpClient: &http.Client{Timeout: ollamaPerCallTimeout + 5*time.Second},
	}
}

type ollamaGenerateRequest struct {
	Model  string `json:"model"`
	Prompt string `json:"prompt"`
	Stream bool   `json:"stream"`
	Format string `json:"format"` // "json" forces structured output
}

type ollamaGenerateResponse struct {
	Response string `json:"response"`
}

type nliLogits struct {
	Contradiction float64 `json:"contradiction"`
	Entailment    float64 `json:"entailment"`
	Neutral       float64 `json:"neutral"`
}

func nliPrompt(p Pair) string {
	return fmt.Sprintf(
		"Classify the logical relationship of the hypothesis to the premise as an NLI "+
			"cross-encoder would, returning raw unnormalized logits (not probabilities) as "+
			"JSON with keys contradiction, entailment, neutral.\n\nPremise: %s\nHypothesis: %s",
		p.Premise, p.Hypothesis,
	)
}

func (v *OllamaVerifier) Verify(ctx context.Context, pairs []Pair) ([]Result, error) {
	results := make([]Result, len(pairs))
	for i, p := range pairs {
		r, err := v.verifyOne(ctx, p)
		if err != nil {
			return nil, fmt.Errorf("nli: pair %d: %w", i, err)
		}
		results[i] = r
	}
	return results, nil
}

func (v *OllamaVerifier) verifyOne(ctx context.Context, p Pair) (Result, error) {
	callCtx, cancel := context.WithTimeout(ctx, ollamaPerCallTimeout)
	defer cancel()

	body, err := json.Marshal(ollamaGenerateRequest{
		Model:  v.model,
		Prompt: nliPrompt(p),
		Stream: false,
		Format: "json",
	})
	if err != nil {
		return Result{}, fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(callCtx, http.MethodPost, v.baseURL+"/api/generate", bytes.NewReader(body))
	if err != nil {
		return Result{}, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := v.httpClient.Do(req)
	if err != nil {
		return Result{}, fmt.Errorf("request failed: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	respBody, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBody))
	if err != nil {
		return Result{}, fmt.Errorf("read response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return Result{}, fmt.Errorf("status %d: %s", resp.StatusCode, string(respBody))
	}

	var gen ollamaGenerateResponse
	if err := json.Unmarshal(respBody, &gen); err != nil {
		return Result{}, fmt.Errorf("unmarshal envelope: %w", err)
	}

	var logits nliLogits
	if err := json.Unmarshal([]byte(gen.Response), &logits); err != nil {
		return Result{}, fmt.Errorf("unmarshal logits: %w", err)
	}

	return softmax([3]float64{logits.Contradiction, logits.Entailment, logits.Neutral}), nil
}
