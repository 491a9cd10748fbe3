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

// perCallTimeout bounds a single OpenAI classification call, separate from
// the pipeline's overall context so one slow call doesn't stall an entire
// batch (same reasoning as the teacher's validator.go perCallTimeout).
const perCallTimeout = 15 * time.Second

// OpenAIVerifier uses a chat completion with a strict JSON response format
// to approximate cross-encoder NLI classification when no local model is
// configured.
type OpenAIVerifier struct {
	apiKey     string
	model      string
	httpClient *http.Client
}

func NewOpenAIVerifier(apiKey, model string) *OpenAIVerifier {
	return &OpenAIVerifier{
		apiKey:     apiKey,
		model:      model,
		httpClient: &http.Client{Timeout: 30 * time.Second},
	}
}

type chatRequest struct {
	Model          string        `json:"model"`
	Messages       []chatMessage `json:"messages"`
	ResponseFormat struct {
		Type string `json:"type"`
	} `json:"response_format"`
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
	Error *struct {
		Message string `json:"message"`
	} `json:"error"`
}

func (v *OpenAIVerifier) Verify(ctx context.Context, pairs []Pair) ([]Result, error) {
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

func (v *OpenAIVerifier) verifyOne(ctx context.Context, p Pair) (Result, error) {
	callCtx, cancel := context.WithTimeout(ctx, perCallTimeout)
	defer cancel()

	reqBody := chatRequest{
		Model: v.model,
		Messages: []chatMessage{
			{Role: "user", Content: nliPrompt(p)},
		},
	}
	reqBody.ResponseFormat.Type = "json_object"

	body, err := json.Marshal(reqBody)
	if err != nil {
		return Result{}, fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(callCtx, http.MethodPost, "https://api.openai.com/v1/chat/completions", bytes.NewReader(body))
	if err != nil {
		return Result{}, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+v.apiKey)

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

	var parsed chatResponse
	if err := json.Unmarshal(respBody, &parsed); err != nil {
		return Result{}, fmt.Errorf("unmarshal response: %w", err)
	}
	if parsed.Error != nil {
		return Result{}, fmt.Errorf("openai error: %s", parsed.Error.Message)
	}
	if len(parsed.Choices) == 0 {
		return Result{}, fmt.Errorf("no choices returned")
	}

	var logits nliLogits
	if err := json.Unmarshal([]byte(parsed.Choices[0].Message.Content), &logits); err != nil {
		return Result{}, fmt.Errorf("unmarshal logits: %w", err)
	}
	return softmax([3]float64{logits.Contradiction, logits.Entailment, logits.Neutral}), nil
}
