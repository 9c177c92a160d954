package repository

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/launchpadhq/launchpad/internal/domain"
)

// ErrFunnelNotFound is returned when a funnel id does not resolve to a record.
var ErrFunnelNotFound = errors.New("funnel not found")

// FunnelRepository handles funnel data operations.
type FunnelRepository struct {
	db *gorm.DB
}

// NewFunnelRepository creates a new FunnelRepository.
func NewFunnelRepository(db *gorm.DB) *FunnelRepository {
	return &FunnelRepository{db: db}
}

// Create inserts a new funnel record.
func (r *FunnelRepository) Create(ctx context.Context, funnel *domain.Funnel) error {
	return r.db.WithContext(ctx).Create(funnel).Error
}

// GetByID retrieves a funnel with its products, scoped to the owner.
// Parameters:
//   - ctx: context for cancellation and deadlines.
//   - id: funnel identifier.
//   - ownerID: owning user; scoping all reads avoids cross-tenant access.
// Returns:
//   - *domain.Funnel: matching funnel if found.
//   - error: ErrFunnelNotFound or a query error.
func (r *FunnelRepository) GetByID(ctx context.Context, id, ownerID string) (*domain.Funnel, error) {
	var funnel domain.Funnel
	err := r.db.WithContext(ctx).
		Preload("Products").
		Where("id = ? AND owner_id = ?", id, ownerID).
		First(&funnel).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrFunnelNotFound
		}
		return nil, err
	}
	return &funnel, nil
}

// SetStatus updates a funnel's status, scoped to the owner.
func (r *FunnelRepository) SetStatus(ctx context.Context, id, ownerID string, status domain.FunnelStatus) error {
	tx := r.db.WithContext(ctx).Model(&domain.Funnel{}).
		Where("id = ? AND owner_id = ?", id, ownerID).
		Update("status", status)
	if tx.Error != nil {
		return tx.Error
	}
	if tx.RowsAffected == 0 {
		return ErrFunnelNotFound
	}
	return nil
}

// ListByOwner retrieves all funnels for an owner, newest first.
func (r *FunnelRepository) ListByOwner(ctx context.Context, ownerID string) ([]domain.Funnel, error) {
	var funnels []domain.Funnel
	if err := r.db.WithContext(ctx).
		Where("owner_id = ?", ownerID).
		Order("created_at DESC").
		Find(&funnels).Error; err != nil {
		return nil, err
	}
	return funnels, nil
}
