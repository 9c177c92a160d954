package service

import (
	"bytes"
	"context"
	"fmt"
	"image"
	_ "image/jpeg"
	_ "image/png"
	"strings"

	"github.com/google/uuid"
	_ "golang.org/x/image/webp"

	"github.com/launchpadhq/launchpad/internal/domain"
	"github.com/launchpadhq/launchpad/internal/jobs"
	"github.com/launchpadhq/launchpad/internal/prompts"
	"github.com/launchpadhq/launchpad/internal/provider"
	"github.com/launchpadhq/launchpad/internal/repository"
	"github.com/launchpadhq/launchpad/internal/storage"
)

// coverConcept is the decoded visual direction for the renderer.
type coverConcept struct {
	Palette        []string `json:"palette"`
	TitleTreatment string   `json:"title_treatment"`
	Imagery        string   `json:"imagery"`
	Mood           string   `json:"mood"`
}

// CoverDesignRunner produces a cover image for a product: the LLM proposes a
// visual concept, the renderer draws it, and the validated artifact is copied
// into our own object storage so the product never depends on the renderer's
// ephemeral URLs.
type CoverDesignRunner struct {
	llm       TextCompleter
	renderer  Renderer
	artifacts storage.ArtifactStorage
	products  *repository.ProductRepository
}

// NewCoverDesignRunner creates the cover design runner.
func NewCoverDesignRunner(llm TextCompleter, renderer Renderer, artifacts storage.ArtifactStorage, products *repository.ProductRepository) *CoverDesignRunner {
	return &CoverDesignRunner{llm: llm, renderer: renderer, artifacts: artifacts, products: products}
}

// JobType identifies which jobs this runner handles.
func (r *CoverDesignRunner) JobType() domain.JobType {
	return domain.JobTypeCoverDesign
}

// Plan builds the concept -> render -> store sequence.
func (r *CoverDesignRunner) Plan(ctx context.Context, job *domain.Job) ([]jobs.Unit, error) {
	title, err := requireInput(job.InputData, "title")
	if err != nil {
		return nil, err
	}
	productID, err := requireInput(job.InputData, "product_id")
	if err != nil {
		return nil, err
	}
	subtitle := inputString(job.InputData, "subtitle")
	niche := inputString(job.InputData, "niche")
	author := inputString(job.InputData, "author")

	return []jobs.Unit{
		{
			Name: "cover concept",
			Run: func(ctx context.Context, job *domain.Job, prior map[string]interface{}) (interface{}, error) {
				raw, err := r.llm.Complete(ctx, prompts.CoverConceptSystem,
					fmt.Sprintf(prompts.CoverConcept, title, subtitle, niche))
				if err != nil {
					return nil, err
				}
				var concept coverConcept
				if err := provider.DecodeJSON(raw, &concept); err != nil {
					return nil, err
				}
				return &concept, nil
			},
			Validate: func(output interface{}) error {
				concept := output.(*coverConcept)
				if len(concept.Palette) == 0 {
					return fmt.Errorf("%w: concept has no palette", ErrContentRejected)
				}
				return nil
			},
		},
		{
			Name: "render cover",
			Run: func(ctx context.Context, job *domain.Job, prior map[string]interface{}) (interface{}, error) {
				concept := prior["cover concept"].(*coverConcept)
				url, err := r.renderer.RenderCover(ctx, &provider.CoverSpec{
					Title:    title,
					Subtitle: subtitle,
					Author:   author,
					Style: map[string]interface{}{
						"palette":         concept.Palette,
						"title_treatment": concept.TitleTreatment,
						"imagery":         concept.Imagery,
						"mood":            concept.Mood,
					},
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
				renderURL := prior["render cover"].(string)
				data, contentType, err := r.renderer.Fetch(ctx, renderURL)
				if err != nil {
					return nil, err
				}

				// Decode to verify the renderer returned a usable image
				_, format, err := image.Decode(bytes.NewReader(data))
				if err != nil {
					return nil, fmt.Errorf("%w: artifact is not a decodable image: %v", ErrContentRejected, err)
				}

				key := fmt.Sprintf("covers/%s/%s.%s", productID, uuid.New().String(), format)
				if contentType == "" {
					contentType = "image/" + format
				}
				if err := r.artifacts.Upload(ctx, key, bytes.NewReader(data), int64(len(data)), contentType); err != nil {
					return nil, err
				}
				return r.artifacts.GetURL(key), nil
			},
		},
	}, nil
}

// Finalize writes the stored cover URL onto the product.
func (r *CoverDesignRunner) Finalize(ctx context.Context, job *domain.Job, outputs map[string]interface{}) (domain.JSONMap, error) {
	coverURL, ok := outputs["store artifact"].(string)
	if !ok || strings.TrimSpace(coverURL) == "" {
		return nil, fmt.Errorf("stored cover URL missing")
	}

	productID, err := requireInput(job.InputData, "product_id")
	if err != nil {
		return nil, err
	}
	if err := r.products.Update(ctx, productID, job.OwnerID, map[string]interface{}{
		"cover_url": coverURL,
	}); err != nil {
		return nil, fmt.Errorf("failed to write cover URL to product: %w", err)
	}

	result := domain.JSONMap{
		"product_id": productID,
		"cover_url":  coverURL,
	}
	if concept, ok := outputs["cover concept"].(*coverConcept); ok {
		result["concept"] = concept
	}
	return result, nil
}
