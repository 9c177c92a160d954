package service

import (
	"context"

	"github.com/launchpadhq/launchpad/internal/provider"
)

// TextCompleter generates text from a prompt. Satisfied by
// provider.AnthropicClient; tests substitute fakes.
type TextCompleter interface {
	Complete(ctx context.Context, system, user string) (string, error)
}

// Embedder turns text into fixed-length vectors. Satisfied by
// provider.EmbeddingClient.
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
	EmbedBatch(ctx context.Context, texts []string) ([][]float32, error)
	GetModel() string
}

// Renderer turns structured content into rendered artifacts. Satisfied by
// provider.RendererClient.
type Renderer interface {
	RenderCover(ctx context.Context, spec *provider.CoverSpec) (string, error)
	RenderPDF(ctx context.Context, spec *provider.PDFSpec) (string, error)
	Fetch(ctx context.Context, url string) ([]byte, string, error)
}
