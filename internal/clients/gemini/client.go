// Package gemini provides a client for the Google Gemini API
package gemini

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/aristath/finsight/internal/domain"
	"github.com/rs/zerolog"
	"google.golang.org/genai"
)

const (
	DefaultModel = "gemini-2.0-flash"
	Temperature  = 0.7
)

// ErrNoAPIKey is returned when no API key has been configured
var ErrNoAPIKey = errors.New("gemini API key not configured")

// Client turns chat transcripts into Gemini generate-content calls
type Client struct {
	client *genai.Client
	model  string
	log    zerolog.Logger
}

// ClientOption configures the client
type ClientOption func(*clientOptions)

type clientOptions struct {
	model   string
	baseURL string
}

// WithModel sets the model to use
func WithModel(model string) ClientOption {
	return func(o *clientOptions) {
		if model != "" {
			o.model = model
		}
	}
}

// WithBaseURL points the client at a different API host
func WithBaseURL(url string) ClientOption {
	return func(o *clientOptions) {
		o.baseURL = url
	}
}

// NewClient creates a new Gemini client
func NewClient(ctx context.Context, apiKey string, log zerolog.Logger, opts ...ClientOption) (*Client, error) {
	if apiKey == "" {
		return nil, ErrNoAPIKey
	}

	o := clientOptions{model: DefaultModel}
	for _, opt := range opts {
		opt(&o)
	}

	cfg := &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	}
	if o.baseURL != "" {
		cfg.HTTPOptions = genai.HTTPOptions{BaseURL: o.baseURL}
	}

	genaiClient, err := genai.NewClient(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}

	return &Client{
		client: genaiClient,
		model:  o.model,
		log:    log.With().Str("client", "gemini").Logger(),
	}, nil
}

// Complete sends the transcript and returns the model reply verbatim.
// System messages become the system instruction.
func (c *Client) Complete(ctx context.Context, messages []domain.ChatMessage) (string, error) {
	contents, system := toContents(messages)
	if len(contents) == 0 {
		return "", fmt.Errorf("empty transcript")
	}

	config := &genai.GenerateContentConfig{
		Temperature: genai.Ptr[float32](Temperature),
	}
	if system != "" {
		config.SystemInstruction = genai.NewContentFromText(system, genai.RoleUser)
	}

	result, err := c.client.Models.GenerateContent(ctx, c.model, contents, config)
	if err != nil {
		return "", fmt.Errorf("failed to generate content: %w", err)
	}

	text, err := extractText(result)
	if err != nil {
		return "", err
	}

	c.log.Debug().Str("model", c.model).Int("messages", len(messages)).Msg("Content generated")
	return text, nil
}

func toContents(messages []domain.ChatMessage) ([]*genai.Content, string) {
	var system []string
	contents := make([]*genai.Content, 0, len(messages))
	for _, m := range messages {
		switch m.Role {
		case domain.RoleSystem:
			system = append(system, m.Content)
		case domain.RoleAssistant:
			contents = append(contents, genai.NewContentFromText(m.Content, genai.RoleModel))
		default:
			contents = append(contents, genai.NewContentFromText(m.Content, genai.RoleUser))
		}
	}
	return contents, strings.Join(system, "\n\n")
}

// extractText concatenates the text parts of the first candidate
func extractText(result *genai.GenerateContentResponse) (string, error) {
	if result == nil || len(result.Candidates) == 0 || result.Candidates[0].Content == nil || len(result.Candidates[0].Content.Parts) == 0 {
		return "", fmt.Errorf("no content generated")
	}

	var sb strings.Builder
	for _, part := range result.Candidates[0].Content.Parts {
		if part.Text != "" {
			sb.WriteString(part.Text)
		}
	}
	return sb.String(), nil
}
