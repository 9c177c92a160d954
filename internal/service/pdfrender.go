package service

import (
	"bytes"
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/launchpadhq/launchpad/internal/domain"
	"github.com/launchpadhq/launchpad/internal/jobs"
	"github.com/launchpadhq/launchpad/internal/provider"
	"github.com/launchpadhq/launchpad/internal/repository"
	"github.com/launchpadhq/launchpad/internal/storage"
)

// pdfLayout is the page plan assembled from the product's generated content.
type pdfLayout struct {
	Title string
	Pages []map[string]interface{}
}

// PDFRenderRunner assembles a product's generated content into pages, sends
// them to the renderer, and stores the resulting PDF in object storage.
type PDFRenderRunner struct {
	renderer  Renderer
	artifacts storage.ArtifactStorage
	products  *repository.ProductRepository
}

// NewPDFRenderRunner creates the funnel PDF runner.
func NewPDFRenderRunner(renderer Renderer, artifacts storage.ArtifactStorage, products *repository.ProductRepository) *PDFRenderRunner {
	return &PDFRenderRunner{renderer: renderer, artifacts: artifacts, products: products}
}

// JobType identifies which jobs this runner handles.
func (r *PDFRenderRunner) JobType() domain.JobType {
	return domain.JobTypeFunnelPDF
}

// Plan builds the layout -> render -> store sequence.
func (r *PDFRenderRunner) Plan(ctx context.Context, job *domain.Job) ([]jobs.Unit, error) {
	productID, err := requireInput(job.InputData, "product_id")
	if err != nil {
		return nil, err
	}

	return []jobs.Unit{
		{
			Name: "assemble layout",
			Run: func(ctx context.Context, job *domain.Job, prior map[string]interface{}) (interface{}, error) {
				product, err := r.products.GetByID(ctx, productID, job.OwnerID)
				if err != nil {
					return nil, err
				}
				layout, err := buildLayout(product)
				if err != nil {
					return nil, err
				}
				return layout, nil
			},
		},
		{
			Name: "render pdf",
			Run: func(ctx context.Context, job *domain.Job, prior map[string]interface{}) (interface{}, error) {
				layout := prior["assemble layout"].(*pdfLayout)
				style := map[string]interface{}{}
				if s, ok := job.InputData["style"].(map[string]interface{}); ok {
					style = s
				}
				url, err := r.renderer.RenderPDF(ctx, &provider.PDFSpec{
					Title: layout.Title,
					Pages: layout.Pages,
					Style: style,
				})
				if err != nil {
					return nil, err
				}
				return url, nil
			},
		},
		{
			Name: "store artifact",
			Run: func(ctx context.Context, job *domain.Job, prior map[string]interface{}) (interface{}, error) {
				renderURL := prior["render pdf"].(string)
				data, contentType, err := r.renderer.Fetch(ctx, renderURL)
				if err != nil {
					return nil, err
				}
				if len(data) == 0 {
					return nil, fmt.Errorf("%w: renderer returned empty PDF", ErrContentRejected)
				}
				if contentType == "" {
					contentType = "application/pdf"
				}

				key := fmt.Sprintf("pdfs/%s/%s.pdf", productID, uuid.New().String())
				if err := r.artifacts.Upload(ctx, key, bytes.NewReader(data), int64(len(data)), contentType); err != nil {
					return nil, err
				}
				return r.artifacts.GetURL(key), nil
			},
		},
	}, nil
}

// Finalize writes the stored PDF URL onto the product.
func (r *PDFRenderRunner) Finalize(ctx context.Context, job *domain.Job, outputs map[string]interface{}) (domain.JSONMap, error) {
	pdfURL, ok := outputs["store artifact"].(string)
	if !ok || pdfURL == "" {
		return nil, fmt.Errorf("stored PDF URL missing")
	}

	productID, err := requireInput(job.InputData, "product_id")
	if err != nil {
		return nil, err
	}
	if err := r.products.Update(ctx, productID, job.OwnerID, map[string]interface{}{
		"pdf_url": pdfURL,
	}); err != nil {
		return nil, fmt.Errorf("failed to write PDF URL to product: %w", err)
	}

	return domain.JSONMap{
		"product_id": productID,
		"pdf_url":    pdfURL,
	}, nil
}

// buildLayout turns generated content into renderer pages. The cover page is
// included when the product already has a cover; chapters, bridge, and CTA
// follow in reading order.
func buildLayout(product *domain.Product) (*pdfLayout, error) {
	content, ok := product.GeneratedContent["lead_magnet"].(map[string]interface{})
	if !ok {
		return nil, fmt.Errorf("product %s has no generated lead magnet content", product.ID)
	}

	title, _ := content["title"].(string)
	if title == "" {
		title = product.Title
	}

	pages := make([]map[string]interface{}, 0, 8)
	if product.CoverURL != "" {
		pages = append(pages, map[string]interface{}{
			"kind":      "cover",
			"image_url": product.CoverURL,
		})
	}
	pages = append(pages, map[string]interface{}{
		"kind":     "title",
		"title":    title,
		"subtitle": content["subtitle"],
		"hook":     content["hook"],
	})

	chapters, _ := content["chapters"].([]interface{})
	if len(chapters) == 0 {
		return nil, fmt.Errorf("product %s has no chapters to render", product.ID)
	}
	for _, raw := range chapters {
		chapter, ok := raw.(map[string]interface{})
		if !ok {
			continue
		}
		pages = append(pages, map[string]interface{}{
			"kind":  "chapter",
			"title": chapter["title"],
			"body":  chapter["body"],
		})
	}
	if bridge, ok := content["bridge"].(map[string]interface{}); ok {
		pages = append(pages, map[string]interface{}{
			"kind":  "chapter",
			"title": bridge["title"],
			"body":  bridge["body"],
		})
	}
	if cta, ok := content["cta"].(map[string]interface{}); ok {
		pages = append(pages, map[string]interface{}{
			"kind":        "cta",
			"headline":    cta["headline"],
			"body":        cta["body"],
			"button_text": cta["button_text"],
		})
	}

	return &pdfLayout{Title: title, Pages: pages}, nil
}
