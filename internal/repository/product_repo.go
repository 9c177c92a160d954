package repository

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/launchpadhq/launchpad/internal/domain"
)

// ErrProductNotFound is returned when a product id does not resolve to a record.
var ErrProductNotFound = errors.New("product not found")

// ProductRepository handles product data operations.
type ProductRepository struct {
	db *gorm.DB
}

// NewProductRepository creates a new ProductRepository.
func NewProductRepository(db *gorm.DB) *ProductRepository {
	return &ProductRepository{db: db}
}

// Create inserts a new product record.
func (r *ProductRepository) Create(ctx context.Context, product *domain.Product) error {
	return r.db.WithContext(ctx).Create(product).Error
}

// GetByID retrieves a product scoped to the owner.
func (r *ProductRepository) GetByID(ctx context.Context, id, ownerID string) (*domain.Product, error) {
	var product domain.Product
	err := r.db.WithContext(ctx).
		Where("id = ? AND owner_id = ?", id, ownerID).
		First(&product).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrProductNotFound
		}
		return nil, err
	}
	return &product, nil
}

// Update applies field updates to a product, scoped to the owner.
// All writes carry the ownership predicate; products are single-writer per
// job so no further locking is needed.
func (r *ProductRepository) Update(ctx context.Context, id, ownerID string, updates map[string]interface{}) error {
	tx := r.db.WithContext(ctx).Model(&domain.Product{}).
		Where("id = ? AND owner_id = ?", id, ownerID).
		Updates(updates)
	if tx.Error != nil {
		return tx.Error
	}
	if tx.RowsAffected == 0 {
		return ErrProductNotFound
	}
	return nil
}

// ListByFunnel retrieves all products for a funnel.
func (r *ProductRepository) ListByFunnel(ctx context.Context, funnelID string) ([]domain.Product, error) {
	var products []domain.Product
	if err := r.db.WithContext(ctx).
		Where("funnel_id = ?", funnelID).
		Order("created_at ASC").
		Find(&products).Error; err != nil {
		return nil, err
	}
	return products, nil
}
