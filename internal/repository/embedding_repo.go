package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/launchpadhq/launchpad/internal/domain"
)

// EmbeddingRepository handles idea embedding persistence.
type EmbeddingRepository struct {
	db *gorm.DB
}

// NewEmbeddingRepository creates a new EmbeddingRepository.
func NewEmbeddingRepository(db *gorm.DB) *EmbeddingRepository {
	return &EmbeddingRepository{db: db}
}

// Create inserts a new idea embedding record.
func (r *EmbeddingRepository) Create(ctx context.Context, embedding *domain.IdeaEmbedding) error {
	return r.db.WithContext(ctx).Create(embedding).Error
}

// CreateBatch inserts multiple idea embedding records.
func (r *EmbeddingRepository) CreateBatch(ctx context.Context, embeddings []domain.IdeaEmbedding) error {
	if len(embeddings) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Create(&embeddings).Error
}

// ListByOwner retrieves all idea embeddings for an owner. The similarity
// search scans these rows linearly; idea counts per owner are small.
func (r *EmbeddingRepository) ListByOwner(ctx context.Context, ownerID string) ([]domain.IdeaEmbedding, error) {
	var embeddings []domain.IdeaEmbedding
	if err := r.db.WithContext(ctx).
		Where("owner_id = ?", ownerID).
		Find(&embeddings).Error; err != nil {
		return nil, err
	}
	return embeddings, nil
}
