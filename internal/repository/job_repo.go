package repository

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/launchpadhq/launchpad/internal/domain"
)

// ErrJobNotFound is returned when a job id does not resolve to a record.
var ErrJobNotFound = errors.New("job not found")

// JobRepository handles job record persistence.
type JobRepository struct {
	db *gorm.DB
}

// NewJobRepository creates a new JobRepository.
// Parameters:
//   - db: GORM database handle used for queries.
// Returns:
//   - *JobRepository: repository instance bound to db.
func NewJobRepository(db *gorm.DB) *JobRepository {
	return &JobRepository{db: db}
}

// Create inserts a new job record.
func (r *JobRepository) Create(ctx context.Context, job *domain.Job) error {
	return r.db.WithContext(ctx).Create(job).Error
}

// GetByID retrieves a job by id.
// Returns ErrJobNotFound when no record exists.
func (r *JobRepository) GetByID(ctx context.Context, id string) (*domain.Job, error) {
	var job domain.Job
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&job).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrJobNotFound
		}
		return nil, err
	}
	return &job, nil
}

// UpdateWhereStatus applies updates to a job only when its current status is
// one of the expected values. Jobs are single-writer, but the guard prevents a
// late transition from silently overwriting a terminal state.
// Parameters:
//   - ctx: context for cancellation and deadlines.
//   - id: job identifier.
//   - expected: statuses the update is valid from.
//   - updates: column updates to apply.
// Returns:
//   - int64: number of rows affected (0 means the guard rejected the update).
//   - error: non-nil if the update itself fails.
func (r *JobRepository) UpdateWhereStatus(ctx context.Context, id string, expected []domain.JobStatus, updates map[string]interface{}) (int64, error) {
	tx := r.db.WithContext(ctx).Model(&domain.Job{}).
		Where("id = ? AND status IN ?", id, expected).
		Updates(updates)
	return tx.RowsAffected, tx.Error
}

// ListByOwner retrieves jobs for an owner, newest first.
func (r *JobRepository) ListByOwner(ctx context.Context, ownerID string, limit int) ([]domain.Job, error) {
	var jobs []domain.Job
	query := r.db.WithContext(ctx).
		Where("owner_id = ?", ownerID).
		Order("created_at DESC")
	if limit > 0 {
		query = query.Limit(limit)
	}
	if err := query.Find(&jobs).Error; err != nil {
		return nil, err
	}
	return jobs, nil
}
