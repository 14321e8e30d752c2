package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/haricode-hub/rfp-ofsaa/internal/config"
	"github.com/haricode-hub/rfp-ofsaa/internal/domain"
	"github.com/haricode-hub/rfp-ofsaa/internal/metrics"
)

// Client calls an OpenAI-compatible chat completions endpoint.
type Client struct {
	baseURL    string
	apiKey     string
	model      string
	maxTokens  int
	temp       float64
	maxRetries int
	httpClient *http.Client
	logger     *zap.Logger
}

// NewClient creates an LLM client from the application configuration.
func NewClient(cfg config.LLMConfig, logger *zap.Logger) *Client {
	return &Client{
		baseURL:    strings.TrimRight(cfg.BaseURL, "/"),
		apiKey:     cfg.APIKey,
		model:      cfg.Model,
		maxTokens:  cfg.MaxTokens,
		temp:       cfg.Temperature,
		maxRetries: cfg.MaxRetries,
		httpClient: &http.Client{
			Timeout: time.Duration(cfg.Timeout) * time.Second,
		},
		logger: logger,
	}
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	MaxTokens   int           `json:"max_tokens"`
	Temperature float64       `json:"temperature"`
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

// Complete sends a system and user message and returns the model's reply.
// Transient failures are retried with exponential backoff; after the final
// attempt the last error is returned.
func (c *Client) Complete(ctx context.Context, systemPrompt, userPrompt string) (string, error) {
	if c.apiKey == "" {
		return "", domain.NewFatal("LLM API key not configured")
	}

	started := time.Now()
	var lastErr error

	for attempt := 0; attempt <= c.maxRetries; attempt++ {
		if attempt > 0 {
			metrics.LLMCalls.WithLabelValues("retried").Inc()
			backoff := time.Duration(1<<uint(attempt-1)) * time.Second
			select {
			case <-time.After(backoff):
			case <-ctx.Done():
				metrics.LLMCalls.WithLabelValues("failed").Inc()
				return "", fmt.Errorf("completion cancelled: %w", ctx.Err())
			}
		}

		reply, retryable, err := c.attempt(ctx, systemPrompt, userPrompt)
		if err == nil {
			metrics.LLMCalls.WithLabelValues("ok").Inc()
			c.logger.Debug("Completion finished",
				zap.Duration("elapsed", time.Since(started)),
				zap.Int("attempts", attempt+1),
				zap.Int("reply_len", len(reply)))
			return reply, nil
		}
		if !retryable {
			metrics.LLMCalls.WithLabelValues("failed").Inc()
			return "", err
		}

		lastErr = err
		c.logger.Warn("Completion attempt failed",
			zap.Int("attempt", attempt+1),
			zap.Error(err))
	}

	metrics.LLMCalls.WithLabelValues("failed").Inc()
	return "", domain.NewExternal("max retries exceeded: %v", lastErr)
}

// attempt performs a single API call. The second return value reports
// whether the failure is worth retrying.
func (c *Client) attempt(ctx context.Context, systemPrompt, userPrompt string) (string, bool, error) {
	body, err := json.Marshal(chatRequest{
		Model: c.model,
		Messages: []chatMessage{
			{Role: "system", Content: systemPrompt},
			{Role: "user", Content: userPrompt},
		},
		MaxTokens:   c.maxTokens,
		Temperature: c.temp,
	})
	if err != nil {
		return "", false, fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/chat/completions", bytes.NewReader(body))
	if err != nil {
		return "", false, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", true, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", true, fmt.Errorf("failed to read response: %w", err)
	}

	switch {
	case resp.StatusCode == http.StatusTooManyRequests:
		return "", true, fmt.Errorf("rate limit exceeded (429)")
	case resp.StatusCode >= 500:
		return "", true, fmt.Errorf("API request failed with status %d: %s", resp.StatusCode, strings.TrimSpace(string(raw)))
	case resp.StatusCode != http.StatusOK:
		return "", false, domain.NewExternal("API request failed with status %d: %s", resp.StatusCode, strings.TrimSpace(string(raw)))
	}

	var parsed chatResponse
	if err := json.Unmarshal(raw, &parsed); err != nil {
		return "", false, fmt.Errorf("failed to parse response: %w", err)
	}
	if parsed.Error != nil {
		return "", false, domain.NewExternal("API error: %s", parsed.Error.Message)
	}
	if len(parsed.Choices) == 0 {
		return "", true, fmt.Errorf("no completion returned")
	}

	return strings.TrimSpace(parsed.Choices[0].Message.Content), false, nil
}

// Verify that Client implements domain.Completer interface
var _ domain.Completer = (*Client)(nil)
