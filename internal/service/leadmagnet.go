package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/launchpadhq/launchpad/internal/domain"
	"github.com/launchpadhq/launchpad/internal/jobs"
	"github.com/launchpadhq/launchpad/internal/prompts"
	"github.com/launchpadhq/launchpad/internal/provider"
	"github.com/launchpadhq/launchpad/internal/repository"
)

const (
	defaultChapterCount = 5
	maxChapterCount     = 20
)

// outlineContent is the decoded outline unit output.
type outlineContent struct {
	Title    string   `json:"title"`
	Subtitle string   `json:"subtitle"`
	Hook     string   `json:"hook"`
	Chapters []string `json:"chapters"`
}

// chapterContent is the decoded output of one chapter unit.
type chapterContent struct {
	Title string `json:"title"`
	Body  string `json:"body"`
}

// ctaContent is the decoded call-to-action unit output.
type ctaContent struct {
	Headline   string `json:"headline"`
	Body       string `json:"body"`
	ButtonText string `json:"button_text"`
}

// LeadMagnetRunner generates the full e-book content for a lead magnet
// product: outline, chapters, a bridge chapter, and a closing CTA.
type LeadMagnetRunner struct {
	llm      TextCompleter
	products *repository.ProductRepository
	minWords int
}

// NewLeadMagnetRunner creates the lead magnet content runner.
// Parameters:
//   - llm: content generation provider.
//   - products: product repository for the dual write on completion.
//   - minWords: minimum accepted word count per chapter body.
// Returns:
//   - *LeadMagnetRunner: initialized runner.
func NewLeadMagnetRunner(llm TextCompleter, products *repository.ProductRepository, minWords int) *LeadMagnetRunner {
	if minWords <= 0 {
		minWords = 150
	}
	return &LeadMagnetRunner{llm: llm, products: products, minWords: minWords}
}

// JobType identifies which jobs this runner handles.
func (r *LeadMagnetRunner) JobType() domain.JobType {
	return domain.JobTypeLeadMagnetContent
}

// Plan builds the ordered unit sequence from the job's input snapshot.
// Later units consume earlier outputs: chapters need the outline, the bridge
// references chapter titles, the CTA references the book title.
func (r *LeadMagnetRunner) Plan(ctx context.Context, job *domain.Job) ([]jobs.Unit, error) {
	niche, err := requireInput(job.InputData, "niche")
	if err != nil {
		return nil, err
	}
	audience, err := requireInput(job.InputData, "audience")
	if err != nil {
		return nil, err
	}
	if _, err := requireInput(job.InputData, "product_id"); err != nil {
		return nil, err
	}
	transformation := inputString(job.InputData, "transformation")
	chapterCount := inputInt(job.InputData, "chapters", defaultChapterCount)
	if chapterCount < 1 || chapterCount > maxChapterCount {
		return nil, fmt.Errorf("chapters must be between 1 and %d, got %d", maxChapterCount, chapterCount)
	}

	units := make([]jobs.Unit, 0, chapterCount+3)

	units = append(units, jobs.Unit{
		Name: "outline",
		Run: func(ctx context.Context, job *domain.Job, prior map[string]interface{}) (interface{}, error) {
			raw, err := r.llm.Complete(ctx, prompts.LeadMagnetSystem,
				fmt.Sprintf(prompts.LeadMagnetOutline, niche, audience, transformation, chapterCount))
			if err != nil {
				return nil, err
			}
			var outline outlineContent
			if err := provider.DecodeJSON(raw, &outline); err != nil {
				return nil, err
			}
			return &outline, nil
		},
		Validate: func(output interface{}) error {
			return validateOutline(output.(*outlineContent), chapterCount)
		},
	})

	for i := 1; i <= chapterCount; i++ {
		chapterNum := i
		units = append(units, jobs.Unit{
			Name: fmt.Sprintf("chapter %d", chapterNum),
			Run: func(ctx context.Context, job *domain.Job, prior map[string]interface{}) (interface{}, error) {
				outline, err := priorOutline(prior)
				if err != nil {
					return nil, err
				}
				raw, err := r.llm.Complete(ctx, prompts.LeadMagnetSystem,
					fmt.Sprintf(prompts.LeadMagnetChapter,
						chapterNum, outline.Chapters[chapterNum-1], outline.Title, audience, r.minWords))
				if err != nil {
					return nil, err
				}
				var chapter chapterContent
				if err := provider.DecodeJSON(raw, &chapter); err != nil {
					return nil, err
				}
				return &chapter, nil
			},
			Validate: func(output interface{}) error {
				chapter := output.(*chapterContent)
				return validateChapterBody(chapter.Title, chapter.Body, r.minWords)
			},
		})
	}

	units = append(units, jobs.Unit{
		Name: "bridge",
		Run: func(ctx context.Context, job *domain.Job, prior map[string]interface{}) (interface{}, error) {
			outline, err := priorOutline(prior)
			if err != nil {
				return nil, err
			}
			raw, err := r.llm.Complete(ctx, prompts.LeadMagnetSystem,
				fmt.Sprintf(prompts.LeadMagnetBridge, outline.Title, strings.Join(outline.Chapters, "; ")))
			if err != nil {
				return nil, err
			}
			var bridge chapterContent
			if err := provider.DecodeJSON(raw, &bridge); err != nil {
				return nil, err
			}
			return &bridge, nil
		},
		Validate: func(output interface{}) error {
			bridge := output.(*chapterContent)
			// Bridges run shorter than full chapters
			return validateChapterBody(bridge.Title, bridge.Body, r.minWords/3)
		},
	})

	// The CTA cross-promotes the front-end offer; failure there should not
	// discard an otherwise complete e-book.
	units = append(units, jobs.Unit{
		Name:     "call to action",
		Optional: true,
		Run: func(ctx context.Context, job *domain.Job, prior map[string]interface{}) (interface{}, error) {
			outline, err := priorOutline(prior)
			if err != nil {
				return nil, err
			}
			raw, err := r.llm.Complete(ctx, prompts.LeadMagnetSystem,
				fmt.Sprintf(prompts.LeadMagnetCTA, outline.Title, audience))
			if err != nil {
				return nil, err
			}
			var cta ctaContent
			if err := provider.DecodeJSON(raw, &cta); err != nil {
				return nil, err
			}
			if strings.TrimSpace(cta.Body) == "" {
				return nil, fmt.Errorf("%w: empty CTA body", ErrContentRejected)
			}
			return &cta, nil
		},
	})

	return units, nil
}

// Finalize aggregates unit outputs into the e-book content, writes it onto
// the owning product, and returns the job result. The job record is
// diagnostic; the product is the durable artifact.
func (r *LeadMagnetRunner) Finalize(ctx context.Context, job *domain.Job, outputs map[string]interface{}) (domain.JSONMap, error) {
	outline, err := priorOutline(outputs)
	if err != nil {
		return nil, err
	}

	chapters := make([]interface{}, 0, len(outline.Chapters))
	for i := 1; i <= len(outline.Chapters); i++ {
		out, ok := outputs[fmt.Sprintf("chapter %d", i)]
		if !ok {
			return nil, fmt.Errorf("chapter %d output missing", i)
		}
		chapter := out.(*chapterContent)
		chapters = append(chapters, map[string]interface{}{
			"title": chapter.Title,
			"body":  chapter.Body,
		})
	}

	content := domain.JSONMap{
		"title":    outline.Title,
		"subtitle": outline.Subtitle,
		"hook":     outline.Hook,
		"chapters": chapters,
	}
	if out, ok := outputs["bridge"]; ok {
		bridge := out.(*chapterContent)
		content["bridge"] = map[string]interface{}{"title": bridge.Title, "body": bridge.Body}
	}
	if out, ok := outputs["call to action"]; ok {
		cta := out.(*ctaContent)
		content["cta"] = map[string]interface{}{
			"headline":    cta.Headline,
			"body":        cta.Body,
			"button_text": cta.ButtonText,
		}
	}

	productID, err := requireInput(job.InputData, "product_id")
	if err != nil {
		return nil, err
	}
	if err := r.products.Update(ctx, productID, job.OwnerID, map[string]interface{}{
		"title":             outline.Title,
		"generated_content": domain.JSONMap{"lead_magnet": map[string]interface{}(content)},
		"status":            domain.ProductStatusReady,
	}); err != nil {
		return nil, fmt.Errorf("failed to write content to product: %w", err)
	}

	return domain.JSONMap{
		"product_id": productID,
		"content":    map[string]interface{}(content),
	}, nil
}

// priorOutline pulls the decoded outline out of earlier unit outputs.
func priorOutline(prior map[string]interface{}) (*outlineContent, error) {
	out, ok := prior["outline"]
	if !ok {
		return nil, fmt.Errorf("outline output missing")
	}
	outline, ok := out.(*outlineContent)
	if !ok {
		return nil, fmt.Errorf("outline output has unexpected type %T", out)
	}
	return outline, nil
}
