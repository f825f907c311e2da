package ai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"strings"
	"time"

	backoff "github.com/cenkalti/backoff/v4"

	"github.com/accordfamily/accord-backend/pkg/config"
)

// Message is a single chat turn sent to the model.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// CompletionRequest is the shape for moderation/analysis completions.
type CompletionRequest struct {
	System      string
	Messages    []Message
	MaxTokens   int
	Temperature float64
}

// AnthropicClient is a minimal client for the Anthropic messages API used
// for compliance evaluation, rewriting, translation and call analysis.
type AnthropicClient struct {
	apiKey     string
	baseURL    string
	model      string
	maxRetries uint64
	client     *http.Client
}

// NewAnthropicClient creates a client using values from the provided config.
// Pass a nil config to fall back to environment variables.
func NewAnthropicClient(cfg *config.AnthropicConfig) *AnthropicClient {
	var apiKey string
	if cfg != nil {
		apiKey = cfg.APIKey
	}
	if apiKey == "" {
		apiKey = os.Getenv("ANTHROPIC_API_KEY")
	}

	var base string
	if cfg != nil && cfg.BaseURL != "" {
		base = cfg.BaseURL
	} else {
		base = os.Getenv("ANTHROPIC_API_URL")
		if base == "" {
			base = "https://api.anthropic.com"
		}
	}

	model := "claude-3-5-sonnet-20241022"
	if cfg != nil && cfg.Model != "" {
		model = cfg.Model
	}

	timeout := 30 * time.Second
	var maxRetries uint64 = 2
	if cfg != nil {
		if cfg.Timeout > 0 {
			timeout = cfg.Timeout
		}
		maxRetries = cfg.MaxRetries
	}

	return &AnthropicClient{
		apiKey:     apiKey,
		baseURL:    base,
		model:      model,
		maxRetries: maxRetries,
		client:     &http.Client{Timeout: timeout},
	}
}

type messagesRequest struct {
	Model       string    `json:"model"`
	MaxTokens   int       `json:"max_tokens"`
	Temperature float64   `json:"temperature"`
	System      string    `json:"system,omitempty"`
	Messages    []Message `json:"messages"`
}

type messagesResponse struct {
	Content []struct {
		Type string `json:"type"`
		Text string `json:"text"`
	} `json:"content"`
}

// Complete sends the request and returns the concatenated text blocks of
// the response. Transient failures are retried with exponential backoff.
func (a *AnthropicClient) Complete(ctx context.Context, req CompletionRequest) (string, error) {
	maxTokens := req.MaxTokens
	if maxTokens == 0 {
		maxTokens = 1000
	}

	body := messagesRequest{
		Model:       a.model,
		MaxTokens:   maxTokens,
		Temperature: req.Temperature,
		System:      req.System,
		Messages:    req.Messages,
	}

	b, err := json.Marshal(body)
	if err != nil {
		return "", err
	}

	var result string
	call := func() error {
		text, callErr := a.post(ctx, b)
		if callErr != nil {
			return callErr
		}
		result = text
		return nil
	}

	bo := backoff.WithMaxRetries(backoff.NewExponentialBackOff(), a.maxRetries)
	if err := backoff.Retry(call, backoff.WithContext(bo, ctx)); err != nil {
		return "", err
	}
	return result, nil
}

func (a *AnthropicClient) post(ctx context.Context, body []byte) (string, error) {
	endpoint := a.baseURL + "/v1/messages"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return "", backoff.Permanent(err)
	}
	req.Header.Set("x-api-key", a.apiKey)
	req.Header.Set("anthropic-version", "2023-06-01")
	req.Header.Set("Content-Type", "application/json")

	resp, err := a.client.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 500 || resp.StatusCode == http.StatusTooManyRequests {
		return "", fmt.Errorf("anthropic returned status %d", resp.StatusCode)
	}
	if resp.StatusCode >= 400 {
		return "", backoff.Permanent(fmt.Errorf("anthropic returned status %d", resp.StatusCode))
	}

	var mr messagesResponse
	if err := json.NewDecoder(resp.Body).Decode(&mr); err != nil {
		return "", err
	}
	if len(mr.Content) == 0 {
		return "", fmt.Errorf("empty response from anthropic")
	}

	parts := make([]string, 0, len(mr.Content))
	for _, block := range mr.Content {
		parts = append(parts, block.Text)
	}
	return strings.Join(parts, " "), nil
}
