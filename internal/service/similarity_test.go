package service

import (
	"context"
	"fmt"
	"math"
	"testing"

	"github.com/google/uuid"

	"github.com/launchpadhq/launchpad/internal/config"
	"github.com/launchpadhq/launchpad/internal/domain"
	"github.com/launchpadhq/launchpad/internal/repository"
	"gorm.io/gorm"
)

// fakeEmbedder returns canned vectors keyed by input text.
type fakeEmbedder struct {
	vectors map[string][]float32
}

func (f *fakeEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	v, ok := f.vectors[text]
	if !ok {
		return nil, fmt.Errorf("no canned vector for %q", text)
	}
	return v, nil
}

func (f *fakeEmbedder) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	out := make([][]float32, len(texts))
	for i, text := range texts {
		v, err := f.Embed(ctx, text)
		if err != nil {
			return nil, err
		}
		out[i] = v
	}
	return out, nil
}

func (f *fakeEmbedder) GetModel() string { return "fake-embedding-model" }

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := repository.InitDB(&config.DatabaseConfig{
		Driver:       "sqlite",
		Path:         fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.New().String()),
		MaxIdleConns: 1,
		MaxOpenConns: 1,
		AutoMigrate:  true,
	})
	if err != nil {
		t.Fatalf("failed to init test database: %v", err)
	}
	return db
}

func storeIdea(t *testing.T, repo *repository.EmbeddingRepository, owner, idea string, vector []float32) {
	t.Helper()
	err := repo.Create(context.Background(), &domain.IdeaEmbedding{
		ID:      uuid.New().String(),
		OwnerID: owner,
		Idea:    idea,
		Vector:  vector,
		Model:   "fake-embedding-model",
		Dims:    len(vector),
	})
	if err != nil {
		t.Fatalf("failed to store idea: %v", err)
	}
}

func TestSimilarityService_RanksBySimilarity(t *testing.T) {
	repo := repository.NewEmbeddingRepository(newTestDB(t))
	embedder := &fakeEmbedder{vectors: map[string][]float32{
		"launch checklist": {1, 0, 0},
	}}
	svc := NewSimilarityService(embedder, repo, 0.1, 10)

	storeIdea(t, repo, "owner-1", "five day launch plan", []float32{0.9, 0.1, 0})
	storeIdea(t, repo, "owner-1", "sourdough starter guide", []float32{0, 1, 0})
	storeIdea(t, repo, "owner-1", "pre-launch checklist", []float32{1, 0, 0})
	// Another owner's ideas must not leak into results
	storeIdea(t, repo, "owner-2", "identical idea", []float32{1, 0, 0})

	results, err := svc.SearchIdeas(context.Background(), "owner-1", "launch checklist", 10)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(results) != 2 {
		t.Fatalf("expected 2 results above threshold, got %d", len(results))
	}
	if results[0].Idea != "pre-launch checklist" {
		t.Errorf("expected exact match first, got %q", results[0].Idea)
	}
	if results[1].Idea != "five day launch plan" {
		t.Errorf("expected near match second, got %q", results[1].Idea)
	}
	if results[0].Score < results[1].Score {
		t.Error("results not ordered by descending score")
	}
	for _, r := range results {
		if r.OwnerID != "owner-1" {
			t.Errorf("result leaked from owner %q", r.OwnerID)
		}
	}
}

func TestSimilarityService_TopKCapsResults(t *testing.T) {
	repo := repository.NewEmbeddingRepository(newTestDB(t))
	embedder := &fakeEmbedder{vectors: map[string][]float32{
		"query": {1, 0},
	}}
	svc := NewSimilarityService(embedder, repo, 0, 10)

	for i := 0; i < 5; i++ {
		storeIdea(t, repo, "owner-1", fmt.Sprintf("idea %d", i), []float32{1, float32(i) * 0.1})
	}

	results, err := svc.SearchIdeas(context.Background(), "owner-1", "query", 2)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(results) != 2 {
		t.Errorf("expected top-k of 2, got %d", len(results))
	}
}

func TestSimilarityService_SkipsMismatchedDimensions(t *testing.T) {
	repo := repository.NewEmbeddingRepository(newTestDB(t))
	embedder := &fakeEmbedder{vectors: map[string][]float32{
		"query": {1, 0, 0},
	}}
	svc := NewSimilarityService(embedder, repo, 0, 10)

	storeIdea(t, repo, "owner-1", "matching dims", []float32{1, 0, 0})
	// Stored under an older embedding model with a different vector length
	storeIdea(t, repo, "owner-1", "stale dims", []float32{1, 0})

	results, err := svc.SearchIdeas(context.Background(), "owner-1", "query", 10)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(results) != 1 {
		t.Fatalf("expected 1 result, got %d", len(results))
	}
	if results[0].Idea != "matching dims" {
		t.Errorf("expected the matching-dimension idea, got %q", results[0].Idea)
	}
}

func TestSimilarityService_EmptyQuery(t *testing.T) {
	repo := repository.NewEmbeddingRepository(newTestDB(t))
	svc := NewSimilarityService(&fakeEmbedder{}, repo, 0, 10)

	if _, err := svc.SearchIdeas(context.Background(), "owner-1", "", 5); err == nil {
		t.Error("expected error for empty query")
	}
}

func TestCosineSimilarity(t *testing.T) {
	tests := []struct {
		name string
		a, b []float32
		want float32
	}{
		{"identical", []float32{1, 2, 3}, []float32{1, 2, 3}, 1},
		{"orthogonal", []float32{1, 0}, []float32{0, 1}, 0},
		{"opposite", []float32{1, 0}, []float32{-1, 0}, -1},
		{"zero vector", []float32{0, 0}, []float32{1, 1}, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := cosineSimilarity(tt.a, tt.b)
			if math.Abs(float64(got-tt.want)) > 1e-6 {
				t.Errorf("cosineSimilarity() = %f, want %f", got, tt.want)
			}
		})
	}
}
