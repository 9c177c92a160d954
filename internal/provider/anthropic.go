package provider

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
)

const anthropicVersion = "2023-06-01"

// AnthropicClient generates text through the Anthropic Messages API.
type AnthropicClient struct {
	client    *resty.Client
	model     string
	maxTokens int
}

// AnthropicConfig holds configuration for the Anthropic client.
type AnthropicConfig struct {
	APIKey    string
	Model     string
	BaseURL   string
	MaxTokens int
	Timeout   time.Duration
}

// NewAnthropicClient creates a new Anthropic Messages API client.
// Parameters:
//   - cfg: client configuration including model, key, and timeout.
// Returns:
//   - *AnthropicClient: initialized client wrapper.
func NewAnthropicClient(cfg *AnthropicConfig) *AnthropicClient {
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = "https://api.anthropic.com"
	}

	client := resty.New()
	client.SetBaseURL(baseURL)
	client.SetHeader("x-api-key", cfg.APIKey)
	client.SetHeader("anthropic-version", anthropicVersion)
	client.SetHeader("Content-Type", "application/json")
	if cfg.Timeout > 0 {
		client.SetTimeout(cfg.Timeout)
	} else {
		client.SetTimeout(120 * time.Second)
	}

	maxTokens := cfg.MaxTokens
	if maxTokens <= 0 {
		maxTokens = 4096
	}

	return &AnthropicClient{
		client:    client,
		model:     cfg.Model,
		maxTokens: maxTokens,
	}
}

// GetModel returns the model name being used.
func (c *AnthropicClient) GetModel() string {
	return c.model
}

// Messages API request/response structures
type anthropicRequest struct {
	Model     string             `json:"model"`
	MaxTokens int                `json:"max_tokens"`
	System    string             `json:"system,omitempty"`
	Messages  []anthropicMessage `json:"messages"`
}

type anthropicMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type anthropicResponse struct {
	Content []struct {
		Type string `json:"type"`
		Text string `json:"text"`
	} `json:"content"`
	StopReason string `json:"stop_reason"`
	Error      *struct {
		Type    string `json:"type"`
		Message string `json:"message"`
	} `json:"error,omitempty"`
}

// Complete sends a prompt and returns the generated text.
// Parameters:
//   - ctx: context for cancellation and deadlines.
//   - system: system prompt; empty to omit.
//   - user: user prompt.
// Returns:
//   - string: concatenated text blocks from the response.
//   - error: non-nil if the API request fails.
func (c *AnthropicClient) Complete(ctx context.Context, system, user string) (string, error) {
	req := anthropicRequest{
		Model:     c.model,
		MaxTokens: c.maxTokens,
		System:    system,
		Messages: []anthropicMessage{
			{Role: "user", Content: user},
		},
	}

	var resp anthropicResponse
	httpResp, err := c.client.R().
		SetContext(ctx).
		SetBody(req).
		SetResult(&resp).
		SetError(&resp).
		Post("/v1/messages")

	if err != nil {
		return "", fmt.Errorf("failed to call Anthropic API: %w", err)
	}

	if httpResp.StatusCode() < 200 || httpResp.StatusCode() >= 300 {
		if resp.Error != nil {
			return "", fmt.Errorf("Anthropic API error: %s (%s)", resp.Error.Message, resp.Error.Type)
		}
		return "", fmt.Errorf("Anthropic API error: status %d", httpResp.StatusCode())
	}

	var sb strings.Builder
	for _, block := range resp.Content {
		if block.Type == "text" {
			sb.WriteString(block.Text)
		}
	}

	text := strings.TrimSpace(sb.String())
	if text == "" {
		return "", fmt.Errorf("%w: empty completion", ErrMalformedResponse)
	}
	return text, nil
}
