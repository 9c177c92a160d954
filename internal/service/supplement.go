package service

import (
	"context"
	"fmt"

	"github.com/launchpadhq/launchpad/internal/domain"
	"github.com/launchpadhq/launchpad/internal/jobs"
	"github.com/launchpadhq/launchpad/internal/prompts"
	"github.com/launchpadhq/launchpad/internal/provider"
	"github.com/launchpadhq/launchpad/internal/repository"
)

// defaultSupplementKinds lists the companion documents generated when the
// request does not name specific kinds.
var defaultSupplementKinds = []string{"workbook", "checklist", "cheat sheet", "resource list"}

const minSectionItems = 3

// supplementSection is one section of a supplementary document.
type supplementSection struct {
	Heading string   `json:"heading"`
	Items   []string `json:"items"`
}

// supplementContent is the decoded output of one supplementary document unit.
type supplementContent struct {
	Title    string              `json:"title"`
	Intro    string              `json:"intro"`
	Sections []supplementSection `json:"sections"`
}

// SupplementRunner generates companion documents (workbook, checklist,
// cheat sheet, resource list) for an existing lead magnet.
type SupplementRunner struct {
	llm      TextCompleter
	products *repository.ProductRepository
}

// NewSupplementRunner creates the supplementary content runner.
func NewSupplementRunner(llm TextCompleter, products *repository.ProductRepository) *SupplementRunner {
	return &SupplementRunner{llm: llm, products: products}
}

// JobType identifies which jobs this runner handles.
func (r *SupplementRunner) JobType() domain.JobType {
	return domain.JobTypeSupplementaryContent
}

// Plan builds one mandatory unit per requested document kind.
func (r *SupplementRunner) Plan(ctx context.Context, job *domain.Job) ([]jobs.Unit, error) {
	title, err := requireInput(job.InputData, "title")
	if err != nil {
		return nil, err
	}
	if _, err := requireInput(job.InputData, "product_id"); err != nil {
		return nil, err
	}
	niche := inputString(job.InputData, "niche")
	audience := inputString(job.InputData, "audience")

	kinds := inputStrings(job.InputData, "kinds")
	if len(kinds) == 0 {
		kinds = defaultSupplementKinds
	}

	units := make([]jobs.Unit, 0, len(kinds))
	for _, kind := range kinds {
		docKind := kind
		units = append(units, jobs.Unit{
			Name: docKind,
			Run: func(ctx context.Context, job *domain.Job, prior map[string]interface{}) (interface{}, error) {
				raw, err := r.llm.Complete(ctx, prompts.SupplementarySystem,
					fmt.Sprintf(prompts.SupplementaryDocument, docKind, title, niche, audience))
				if err != nil {
					return nil, err
				}
				var doc supplementContent
				if err := provider.DecodeJSON(raw, &doc); err != nil {
					return nil, err
				}
				return &doc, nil
			},
			Validate: func(output interface{}) error {
				return validateSections(output.(*supplementContent), minSectionItems)
			},
		})
	}

	return units, nil
}

// Finalize merges the documents into the owning product's generated content.
func (r *SupplementRunner) Finalize(ctx context.Context, job *domain.Job, outputs map[string]interface{}) (domain.JSONMap, error) {
	documents := make(map[string]interface{}, len(outputs))
	for kind, out := range outputs {
		doc := out.(*supplementContent)
		documents[kind] = doc
	}

	productID, err := requireInput(job.InputData, "product_id")
	if err != nil {
		return nil, err
	}

	// Merge with existing content rather than replacing it; the lead magnet
	// body may already be present.
	product, err := r.products.GetByID(ctx, productID, job.OwnerID)
	if err != nil {
		return nil, fmt.Errorf("failed to load product for merge: %w", err)
	}
	content := product.GeneratedContent
	if content == nil {
		content = domain.JSONMap{}
	}
	content["supplements"] = documents

	if err := r.products.Update(ctx, productID, job.OwnerID, map[string]interface{}{
		"generated_content": content,
	}); err != nil {
		return nil, fmt.Errorf("failed to write supplements to product: %w", err)
	}

	return domain.JSONMap{
		"product_id": productID,
		"documents":  documents,
	}, nil
}
