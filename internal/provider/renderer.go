package provider

import (
	"context"
	"fmt"
	"time"

	"github.com/go-resty/resty/v2"
)

// RendererClient talks to the external rendering service that turns
// structured content into cover images and PDFs. The service is opaque: it
// accepts content plus styling parameters and returns an artifact URL.
type RendererClient struct {
	client *resty.Client

	// Artifact URLs may point at arbitrary hosts, so downloads go through a
	// client that never carries the renderer credentials.
	fetcher *resty.Client
}

// RendererConfig holds configuration for the renderer client.
type RendererConfig struct {
	BaseURL string
	APIKey  string
	Timeout time.Duration
}

// NewRendererClient creates a new renderer client.
func NewRendererClient(cfg *RendererConfig) *RendererClient {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 90 * time.Second
	}

	client := resty.New()
	client.SetBaseURL(cfg.BaseURL)
	client.SetHeader("Authorization", "Bearer "+cfg.APIKey)
	client.SetHeader("Content-Type", "application/json")
	client.SetTimeout(timeout)

	fetcher := resty.New()
	fetcher.SetTimeout(timeout)

	return &RendererClient{client: client, fetcher: fetcher}
}

// CoverSpec describes a cover rendering request.
type CoverSpec struct {
	Title    string                 `json:"title"`
	Subtitle string                 `json:"subtitle,omitempty"`
	Author   string                 `json:"author,omitempty"`
	Style    map[string]interface{} `json:"style,omitempty"`
}

// PDFSpec describes a PDF rendering request.
type PDFSpec struct {
	Title string                   `json:"title"`
	Pages []map[string]interface{} `json:"pages"`
	Style map[string]interface{}   `json:"style,omitempty"`
}

type renderResponse struct {
	URL   string `json:"url"`
	Error string `json:"error,omitempty"`
}

// RenderCover submits a cover rendering request and returns the artifact URL.
func (c *RendererClient) RenderCover(ctx context.Context, spec *CoverSpec) (string, error) {
	return c.render(ctx, "/v1/render/cover", spec)
}

// RenderPDF submits a PDF rendering request and returns the artifact URL.
func (c *RendererClient) RenderPDF(ctx context.Context, spec *PDFSpec) (string, error) {
	return c.render(ctx, "/v1/render/pdf", spec)
}

func (c *RendererClient) render(ctx context.Context, path string, body interface{}) (string, error) {
	var resp renderResponse
	httpResp, err := c.client.R().
		SetContext(ctx).
		SetBody(body).
		SetResult(&resp).
		SetError(&resp).
		Post(path)

	if err != nil {
		return "", fmt.Errorf("failed to call renderer: %w", err)
	}

	if httpResp.StatusCode() < 200 || httpResp.StatusCode() >= 300 {
		if resp.Error != "" {
			return "", fmt.Errorf("renderer error: %s", resp.Error)
		}
		return "", fmt.Errorf("renderer error: status %d", httpResp.StatusCode())
	}

	if resp.URL == "" {
		return "", fmt.Errorf("%w: renderer returned no artifact URL", ErrMalformedResponse)
	}
	return resp.URL, nil
}

// Fetch downloads a rendered artifact by URL.
// Returns the raw bytes and the reported content type.
func (c *RendererClient) Fetch(ctx context.Context, url string) ([]byte, string, error) {
	resp, err := c.fetcher.R().
		SetContext(ctx).
		Get(url)
	if err != nil {
		return nil, "", fmt.Errorf("failed to fetch artifact: %w", err)
	}
	if resp.StatusCode() < 200 || resp.StatusCode() >= 300 {
		return nil, "", fmt.Errorf("failed to fetch artifact: status %d", resp.StatusCode())
	}
	return resp.Body(), resp.Header().Get("Content-Type"), nil
}
