package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/launchpadhq/launchpad/internal/domain"
	"github.com/launchpadhq/launchpad/internal/jobs"
	"github.com/launchpadhq/launchpad/internal/prompts"
	"github.com/launchpadhq/launchpad/internal/provider"
	"github.com/launchpadhq/launchpad/internal/repository"
)

const defaultIdeaCount = 5

// funnelIdea is one generated funnel concept.
type funnelIdea struct {
	Name       string `json:"name"`
	LeadMagnet string `json:"lead_magnet"`
	Frontend   string `json:"frontend"`
	Upsell     string `json:"upsell"`
	Angle      string `json:"angle"`
}

type funnelIdeaBatch struct {
	Ideas []funnelIdea `json:"ideas"`
}

// FunnelIdeasRunner generates funnel concepts for a niche and embeds each
// accepted idea so past ideas become searchable by similarity.
type FunnelIdeasRunner struct {
	llm        TextCompleter
	embedder   Embedder
	embeddings *repository.EmbeddingRepository
}

// NewFunnelIdeasRunner creates the funnel ideas runner.
func NewFunnelIdeasRunner(llm TextCompleter, embedder Embedder, embeddings *repository.EmbeddingRepository) *FunnelIdeasRunner {
	return &FunnelIdeasRunner{llm: llm, embedder: embedder, embeddings: embeddings}
}

// JobType identifies which jobs this runner handles.
func (r *FunnelIdeasRunner) JobType() domain.JobType {
	return domain.JobTypeFunnelIdeas
}

// Plan builds the generation unit plus an optional embedding unit; losing
// searchability must not fail an otherwise successful batch of ideas.
func (r *FunnelIdeasRunner) Plan(ctx context.Context, job *domain.Job) ([]jobs.Unit, error) {
	niche, err := requireInput(job.InputData, "niche")
	if err != nil {
		return nil, err
	}
	audience := inputString(job.InputData, "audience")
	count := inputInt(job.InputData, "count", defaultIdeaCount)

	return []jobs.Unit{
		{
			Name: "generate ideas",
			Run: func(ctx context.Context, job *domain.Job, prior map[string]interface{}) (interface{}, error) {
				raw, err := r.llm.Complete(ctx, prompts.FunnelIdeasSystem,
					fmt.Sprintf(prompts.FunnelIdeas, count, niche, audience))
				if err != nil {
					return nil, err
				}
				var batch funnelIdeaBatch
				if err := provider.DecodeJSON(raw, &batch); err != nil {
					return nil, err
				}
				return &batch, nil
			},
			Validate: func(output interface{}) error {
				batch := output.(*funnelIdeaBatch)
				if len(batch.Ideas) == 0 {
					return fmt.Errorf("%w: no ideas returned", ErrContentRejected)
				}
				for i, idea := range batch.Ideas {
					if strings.TrimSpace(idea.Name) == "" || strings.TrimSpace(idea.LeadMagnet) == "" {
						return fmt.Errorf("%w: idea %d is incomplete", ErrContentRejected, i+1)
					}
				}
				return nil
			},
		},
		{
			Name:     "embed ideas",
			Optional: true,
			Run: func(ctx context.Context, job *domain.Job, prior map[string]interface{}) (interface{}, error) {
				batch := prior["generate ideas"].(*funnelIdeaBatch)

				texts := make([]string, len(batch.Ideas))
				for i, idea := range batch.Ideas {
					texts[i] = ideaEmbeddingText(&idea)
				}
				vectors, err := r.embedder.EmbedBatch(ctx, texts)
				if err != nil {
					return nil, err
				}

				rows := make([]domain.IdeaEmbedding, len(batch.Ideas))
				for i, idea := range batch.Ideas {
					rows[i] = domain.IdeaEmbedding{
						ID:       uuid.New().String(),
						OwnerID:  job.OwnerID,
						FunnelID: inputString(job.InputData, "funnel_id"),
						Idea:     idea.Name,
						Vector:   vectors[i],
						Model:    r.embedder.GetModel(),
						Dims:     len(vectors[i]),
					}
				}
				if err := r.embeddings.CreateBatch(ctx, rows); err != nil {
					return nil, err
				}
				return len(rows), nil
			},
		},
	}, nil
}

// Finalize returns the idea batch as the job result. There is no owning
// product yet; the user picks an idea and creates the funnel from it.
func (r *FunnelIdeasRunner) Finalize(ctx context.Context, job *domain.Job, outputs map[string]interface{}) (domain.JSONMap, error) {
	batch, ok := outputs["generate ideas"].(*funnelIdeaBatch)
	if !ok {
		return nil, fmt.Errorf("idea batch output missing")
	}

	ideas := make([]interface{}, len(batch.Ideas))
	for i, idea := range batch.Ideas {
		ideas[i] = idea
	}
	result := domain.JSONMap{"ideas": ideas}
	if n, ok := outputs["embed ideas"].(int); ok {
		result["embedded"] = n
	}
	return result, nil
}

// ideaEmbeddingText builds the text embedded for one idea.
func ideaEmbeddingText(idea *funnelIdea) string {
	segments := []string{
		"name:" + idea.Name,
		"lead_magnet:" + idea.LeadMagnet,
		"frontend:" + idea.Frontend,
		"upsell:" + idea.Upsell,
	}
	return strings.Join(segments, "\n")
}
