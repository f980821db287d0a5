// Package deepseek provides a client for the DeepSeek chat completions API
package deepseek

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/aristath/finsight/internal/domain"
	"github.com/rs/zerolog"
)

const (
	DefaultModel = "deepseek-chat"
	Temperature  = 0.7
)

// ErrNoAPIKey is returned when no API key has been configured
var ErrNoAPIKey = errors.New("deepseek API key not configured")

// Client for an OpenAI-compatible chat completions endpoint
type Client struct {
	apiURL string
	apiKey string
	model  string
	client *http.Client
	log    zerolog.Logger
}

// NewClient creates a new DeepSeek client
func NewClient(apiURL, apiKey, model string, timeout time.Duration, log zerolog.Logger) *Client {
	if model == "" {
		model = DefaultModel
	}
	return &Client{
		apiURL: apiURL,
		apiKey: apiKey,
		model:  model,
		client: &http.Client{Timeout: timeout},
		log:    log.With().Str("client", "deepseek").Logger(),
	}
}

type chatRequest struct {
	Model       string               `json:"model"`
	Messages    []domain.ChatMessage `json:"messages"`
	Temperature float64              `json:"temperature"`
}

type chatResponse struct {
	Choices []struct {
		Message domain.ChatMessage `json:"message"`
	} `json:"choices"`
	Error *struct {
		Message string `json:"message"`
	} `json:"error,omitempty"`
}

// Complete sends the transcript and returns the assistant reply verbatim
func (c *Client) Complete(ctx context.Context, messages []domain.ChatMessage) (string, error) {
	if c.apiKey == "" {
		return "", ErrNoAPIKey
	}
	if len(messages) == 0 {
		return "", fmt.Errorf("empty transcript")
	}

	body, err := json.Marshal(chatRequest{
		Model:       c.model,
		Messages:    messages,
		Temperature: Temperature,
	})
	if err != nil {
		return "", fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.apiURL, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Content-Type", "application/json")

	start := time.Now()
	resp, err := c.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("chat request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return "", fmt.Errorf("chat API returned status %d: %s", resp.StatusCode, bytes.TrimSpace(snippet))
	}

	var result chatResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return "", fmt.Errorf("failed to parse chat response: %w", err)
	}
	if result.Error != nil {
		return "", fmt.Errorf("chat API error: %s", result.Error.Message)
	}
	if len(result.Choices) == 0 {
		return "", fmt.Errorf("chat response has no choices")
	}

	c.log.Debug().
		Str("model", c.model).
		Int("messages", len(messages)).
		Dur("took", time.Since(start)).
		Msg("Chat completion received")

	return result.Choices[0].Message.Content, nil
}
