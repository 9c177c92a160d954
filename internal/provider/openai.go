package provider

import (
	"context"
	"fmt"

	"github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"
)

// EmbeddingClient generates text embeddings through the OpenAI API.
type EmbeddingClient struct {
	client     openai.Client
	model      string
	dimensions int
}

// EmbeddingConfig holds configuration for the embedding client.
type EmbeddingConfig struct {
	APIKey     string
	Model      string
	BaseURL    string
	Dimensions int
}

// NewEmbeddingClient creates a new OpenAI embedding client.
func NewEmbeddingClient(cfg *EmbeddingConfig) *EmbeddingClient {
	opts := []option.RequestOption{
		option.WithAPIKey(cfg.APIKey),
	}
	if cfg.BaseURL != "" {
		opts = append(opts, option.WithBaseURL(cfg.BaseURL))
	}

	model := cfg.Model
	if model == "" {
		model = string(openai.EmbeddingModelTextEmbedding3Small)
	}

	return &EmbeddingClient{
		client:     openai.NewClient(opts...),
		model:      model,
		dimensions: cfg.Dimensions,
	}
}

// GetModel returns the model name being used.
func (c *EmbeddingClient) GetModel() string {
	return c.model
}

// Dimensions returns the configured vector length.
func (c *EmbeddingClient) Dimensions() int {
	return c.dimensions
}

// Embed generates an embedding for a single text.
func (c *EmbeddingClient) Embed(ctx context.Context, text string) ([]float32, error) {
	embeddings, err := c.EmbedBatch(ctx, []string{text})
	if err != nil {
		return nil, err
	}
	if len(embeddings) == 0 {
		return nil, fmt.Errorf("no embedding returned")
	}
	return embeddings[0], nil
}

// EmbedBatch generates embeddings for multiple texts.
// Parameters:
//   - ctx: context for cancellation and deadlines.
//   - texts: input strings; order is preserved in the output.
// Returns:
//   - [][]float32: one vector per input text.
//   - error: non-nil if the API request fails.
func (c *EmbeddingClient) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return [][]float32{}, nil
	}

	params := openai.EmbeddingNewParams{
		Model: openai.EmbeddingModel(c.model),
		Input: openai.EmbeddingNewParamsInputUnion{
			OfArrayOfStrings: texts,
		},
	}
	if c.dimensions > 0 {
		params.Dimensions = openai.Int(int64(c.dimensions))
	}

	resp, err := c.client.Embeddings.New(ctx, params)
	if err != nil {
		return nil, fmt.Errorf("failed to call OpenAI embeddings API: %w", err)
	}

	if len(resp.Data) != len(texts) {
		return nil, fmt.Errorf("unexpected number of embeddings: got %d, expected %d", len(resp.Data), len(texts))
	}

	// Order by index to guarantee input/output alignment
	embeddings := make([][]float32, len(texts))
	for _, item := range resp.Data {
		vec := make([]float32, len(item.Embedding))
		for i, f := range item.Embedding {
			vec[i] = float32(f)
		}
		if int(item.Index) < len(embeddings) {
			embeddings[item.Index] = vec
		}
	}

	return embeddings, nil
}
