package service

import (
	"context"
	"fmt"
	"math"
	"sort"

	"github.com/launchpadhq/launchpad/internal/domain"
	"github.com/launchpadhq/launchpad/internal/logger"
	"github.com/launchpadhq/launchpad/internal/repository"
)

// SimilarityService answers "which of my past funnel ideas is this like"
// queries by embedding the query text and scoring it against the owner's
// stored idea vectors.
type SimilarityService struct {
	embedder    Embedder
	embeddings  *repository.EmbeddingRepository
	threshold   float32
	defaultTopK int
}

// NewSimilarityService creates the idea similarity search service.
// threshold filters out weak matches; defaultTopK caps result size when the
// caller does not specify a limit.
func NewSimilarityService(embedder Embedder, embeddings *repository.EmbeddingRepository, threshold float32, defaultTopK int) *SimilarityService {
	if defaultTopK <= 0 {
		defaultTopK = 10
	}
	return &SimilarityService{
		embedder:    embedder,
		embeddings:  embeddings,
		threshold:   threshold,
		defaultTopK: defaultTopK,
	}
}

// SearchIdeas embeds the query and returns the owner's stored ideas ranked by
// cosine similarity, strongest first. Ideas embedded with a different model or
// dimension than the query are skipped rather than mis-scored.
func (s *SimilarityService) SearchIdeas(ctx context.Context, ownerID, query string, topK int) ([]domain.IdeaSearchResult, error) {
	if query == "" {
		return nil, fmt.Errorf("query must not be empty")
	}
	if topK <= 0 {
		topK = s.defaultTopK
	}

	queryVec, err := s.embedder.Embed(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to embed query: %w", err)
	}

	stored, err := s.embeddings.ListByOwner(ctx, ownerID)
	if err != nil {
		return nil, fmt.Errorf("failed to load stored ideas: %w", err)
	}

	results := make([]domain.IdeaSearchResult, 0, len(stored))
	skipped := 0
	for _, idea := range stored {
		if len(idea.Vector) != len(queryVec) {
			skipped++
			continue
		}
		score := cosineSimilarity(queryVec, idea.Vector)
		if score < s.threshold {
			continue
		}
		results = append(results, domain.IdeaSearchResult{IdeaEmbedding: idea, Score: score})
	}
	if skipped > 0 {
		logger.CtxWarn(ctx, "skipped %d stored ideas with mismatched embedding dimensions", skipped)
	}

	sort.Slice(results, func(i, j int) bool {
		return results[i].Score > results[j].Score
	})
	if len(results) > topK {
		results = results[:topK]
	}
	return results, nil
}

// cosineSimilarity returns the cosine of the angle between two equal-length
// vectors, or 0 when either vector has zero magnitude.
func cosineSimilarity(a, b []float32) float32 {
	var dot, normA, normB float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}
	if normA == 0 || normB == 0 {
		return 0
	}
	return float32(dot / (math.Sqrt(normA) * math.Sqrt(normB)))
}
