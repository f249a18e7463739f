// Package openai implements the completion and embedding backend over an
// OpenAI-compatible HTTP API.
package openai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/AbdulKhaliqAbdulAzeez/gym-assistant/internal/domain"
)

// DefaultBaseURL points at the OpenAI API.
const DefaultBaseURL = "https://api.openai.com/v1"

// Config configures the client.
type Config struct {
	APIKey         string
	BaseURL        string
	Model          string
	EmbeddingModel string
	MaxRetries     int
	RetryBackoff   time.Duration
	Timeout        time.Duration
}

// Client talks to the chat completion and embeddings endpoints. Rate-limited
// completion calls are retried with exponential backoff up to the configured
// attempt count; every other failure kind propagates immediately.
type Client struct {
	httpClient     *http.Client
	apiKey         string
	baseURL        string
	model          string
	embeddingModel string
	maxRetries     int
	retryBackoff   time.Duration
}

// CompletionRequest describes a single chat completion call.
type CompletionRequest struct {
	Prompt        string
	SystemMessage string
	Model         string
	Temperature   float64
	MaxTokens     int
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	Temperature float64       `json:"temperature,omitempty"`
	MaxTokens   int           `json:"max_tokens,omitempty"`
}

type chatResponse struct {
	Choices []struct {
		Message chatMessage `json:"message"`
	} `json:"choices"`
	Error *apiError `json:"error,omitempty"`
}

type embeddingRequest struct {
	Model string `json:"model"`
	Input string `json:"input"`
}

type embeddingResponse struct {
	Data []struct {
		Embedding []float64 `json:"embedding"`
	} `json:"data"`
	Error *apiError `json:"error,omitempty"`
}

type apiError struct {
	Message string `json:"message"`
	Type    string `json:"type"`
}

// NewClient validates credentials and builds a client.
func NewClient(cfg Config) (*Client, error) {
	if strings.TrimSpace(cfg.APIKey) == "" {
		return nil, domain.E(domain.KindConfiguration, "no API key provided; set OPENAI_API_KEY")
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.RetryBackoff <= 0 {
		cfg.RetryBackoff = time.Second
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 60 * time.Second
	}
	return &Client{
		httpClient:     &http.Client{Timeout: cfg.Timeout},
		apiKey:         cfg.APIKey,
		baseURL:        strings.TrimRight(cfg.BaseURL, "/"),
		model:          cfg.Model,
		embeddingModel: cfg.EmbeddingModel,
		maxRetries:     cfg.MaxRetries,
		retryBackoff:   cfg.RetryBackoff,
	}, nil
}

// Complete generates a chat completion, retrying rate-limited responses with
// exponential backoff up to the configured retry count.
func (c *Client) Complete(ctx context.Context, req CompletionRequest) (string, error) {
	model := req.Model
	if model == "" {
		model = c.model
	}

	messages := make([]chatMessage, 0, 2)
	if req.SystemMessage != "" {
		messages = append(messages, chatMessage{Role: "system", Content: req.SystemMessage})
	}
	messages = append(messages, chatMessage{Role: "user", Content: req.Prompt})

	payload := chatRequest{
		Model:       model,
		Messages:    messages,
		Temperature: req.Temperature,
		MaxTokens:   req.MaxTokens,
	}

	var lastErr error
	for attempt := 0; attempt <= c.maxRetries; attempt++ {
		if attempt > 0 {
			// 1x, 2x, 4x... of the configured base backoff.
			wait := c.retryBackoff << (attempt - 1)
			select {
			case <-ctx.Done():
				return "", domain.Wrap(domain.KindAPI, "completion cancelled", ctx.Err())
			case <-time.After(wait):
			}
		}

		text, err := c.complete(ctx, payload)
		if err == nil {
			return text, nil
		}
		if !domain.IsKind(err, domain.KindRateLimited) {
			return "", err
		}
		lastErr = err
	}

	return "", domain.Wrap(domain.KindAPI, fmt.Sprintf("max retries (%d) exceeded", c.maxRetries), lastErr)
}

func (c *Client) complete(ctx context.Context, payload chatRequest) (string, error) {
	body, err := c.post(ctx, "/chat/completions", payload)
	if err != nil {
		return "", err
	}

	var parsed chatResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return "", domain.Wrap(domain.KindAPI, "malformed completion response", err)
	}
	if parsed.Error != nil {
		return "", domain.E(domain.KindAPI, "completion API error: "+parsed.Error.Message)
	}
	if len(parsed.Choices) == 0 {
		return "", domain.E(domain.KindAPI, "completion response contained no choices")
	}
	return parsed.Choices[0].Message.Content, nil
}

// Embed generates an embedding vector for the text. No retry policy at this
// layer; rate limits surface to the caller as API errors.
func (c *Client) Embed(ctx context.Context, text string) ([]float64, error) {
	body, err := c.post(ctx, "/embeddings", embeddingRequest{Model: c.embeddingModel, Input: text})
	if err != nil {
		if domain.IsKind(err, domain.KindRateLimited) {
			return nil, domain.Wrap(domain.KindAPI, "embedding request rate limited", err)
		}
		return nil, err
	}

	var parsed embeddingResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return nil, domain.Wrap(domain.KindAPI, "malformed embedding response", err)
	}
	if parsed.Error != nil {
		return nil, domain.E(domain.KindAPI, "embedding API error: "+parsed.Error.Message)
	}
	if len(parsed.Data) == 0 {
		return nil, domain.E(domain.KindAPI, "embedding response contained no data")
	}
	return parsed.Data[0].Embedding, nil
}

func (c *Client) post(ctx context.Context, path string, payload any) ([]byte, error) {
	encoded, err := json.Marshal(payload)
	if err != nil {
		return nil, domain.Wrap(domain.KindAPI, "encode request", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(encoded))
	if err != nil {
		return nil, domain.Wrap(domain.KindAPI, "build request", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, domain.Wrap(domain.KindAPI, "request failed", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, domain.Wrap(domain.KindAPI, "read response", err)
	}

	switch {
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		return nil, domain.E(domain.KindAuthentication, "authentication failed: "+string(body))
	case resp.StatusCode == http.StatusTooManyRequests:
		return nil, domain.E(domain.KindRateLimited, "rate limited by API")
	case resp.StatusCode >= 400:
		return nil, domain.E(domain.KindAPI, fmt.Sprintf("API returned status %d: %s", resp.StatusCode, body))
	}
	return body, nil
}
