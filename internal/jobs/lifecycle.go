package jobs

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/launchpadhq/launchpad/internal/domain"
	"github.com/launchpadhq/launchpad/internal/logger"
	"github.com/launchpadhq/launchpad/internal/repository"
)

// Manager encapsulates job record lifecycle: creation, guarded transitions,
// and reads. Transitions are best-effort inside the worker: a failed status
// write is logged and swallowed, because the worker's own progress is more
// valuable than a perfectly mirrored status row.
type Manager struct {
	repo *repository.JobRepository
	log  *logger.Logger
}

// NewManager creates a new job lifecycle manager.
// Parameters:
//   - repo: job repository.
//   - log: base logger.
// Returns:
//   - *Manager: initialized manager.
func NewManager(repo *repository.JobRepository, log *logger.Logger) *Manager {
	if log == nil {
		log = logger.GetDefault()
	}
	return &Manager{repo: repo, log: log}
}

// Create inserts a new pending job with zero completed units.
// Parameters:
//   - ctx: context for cancellation and deadlines.
//   - jobType: which worker logic applies.
//   - ownerID: owning user.
//   - input: immutable snapshot of the request payload.
//   - totalUnits: planned sub-task count; may be corrected by the worker.
// Returns:
//   - *domain.Job: the created record.
//   - error: non-nil if the store is unreachable.
func (m *Manager) Create(ctx context.Context, jobType domain.JobType, ownerID string, input domain.JSONMap, totalUnits int) (*domain.Job, error) {
	job := &domain.Job{
		ID:         uuid.New().String(),
		JobType:    jobType,
		OwnerID:    ownerID,
		Status:     domain.JobStatusPending,
		TotalUnits: totalUnits,
		InputData:  input,
	}
	if err := m.repo.Create(ctx, job); err != nil {
		return nil, fmt.Errorf("failed to create job: %w", err)
	}
	return job, nil
}

// Get reads a job record. Returns repository.ErrJobNotFound for unknown ids.
func (m *Manager) Get(ctx context.Context, id string) (*domain.Job, error) {
	return m.repo.GetByID(ctx, id)
}

// Transition applies updates to a job only from the expected statuses.
// A rejected or failed write is logged, never fatal. Returns whether the
// update was applied.
func (m *Manager) Transition(ctx context.Context, id string, from []domain.JobStatus, updates map[string]interface{}) bool {
	affected, err := m.repo.UpdateWhereStatus(ctx, id, from, updates)
	if err != nil {
		m.log.WithFields(logger.Fields{logger.FieldJobID: id}).
			WithError(err).Error("Job transition write failed")
		return false
	}
	if affected == 0 {
		m.log.WithFields(logger.Fields{logger.FieldJobID: id}).
			Warn("Job transition rejected by status guard")
		return false
	}
	return true
}

// MarkProcessing transitions a job to processing and records the start time.
// Valid from pending (worker pickup, or the dispatcher's optimistic
// transition) and idempotent when already processing.
func (m *Manager) MarkProcessing(ctx context.Context, id string) bool {
	now := time.Now()
	return m.Transition(ctx, id,
		[]domain.JobStatus{domain.JobStatusPending, domain.JobStatusProcessing},
		map[string]interface{}{
			"status":     domain.JobStatusProcessing,
			"started_at": &now,
		})
}

// SetUnitLabel updates the human-readable label of the in-flight sub-task.
// Purely observational; best-effort.
func (m *Manager) SetUnitLabel(ctx context.Context, id, label string) {
	m.Transition(ctx, id,
		[]domain.JobStatus{domain.JobStatusProcessing},
		map[string]interface{}{"current_unit_label": label})
}

// MarkUnitDone increments progress after a sub-task finished (or an optional
// one was skipped) and accumulates retries spent on it. The SQL guard keeps
// completed_units from ever exceeding total_units.
func (m *Manager) MarkUnitDone(ctx context.Context, id string, retries int) {
	affected, err := m.repo.UpdateWhereStatus(ctx, id,
		[]domain.JobStatus{domain.JobStatusProcessing},
		map[string]interface{}{
			"completed_units": gorm.Expr("CASE WHEN completed_units < total_units THEN completed_units + 1 ELSE completed_units END"),
			"retry_count":     gorm.Expr("retry_count + ?", retries),
		})
	if err != nil || affected == 0 {
		m.log.WithFields(logger.Fields{logger.FieldJobID: id}).
			WithError(err).Warn("Progress update not applied")
	}
}

// MarkComplete transitions a job to its successful terminal state.
func (m *Manager) MarkComplete(ctx context.Context, id string, result domain.JSONMap) bool {
	now := time.Now()
	return m.Transition(ctx, id,
		[]domain.JobStatus{domain.JobStatusProcessing},
		map[string]interface{}{
			"status":             domain.JobStatusComplete,
			"result":             result,
			"current_unit_label": "",
			"completed_at":       &now,
		})
}

// MarkFailed transitions a job to its failed terminal state, preserving any
// completed sub-task outputs as a partial result for diagnosis or resumption.
func (m *Manager) MarkFailed(ctx context.Context, id, errorMessage, failedAtUnit string, retries int, partial domain.JSONMap) bool {
	now := time.Now()
	updates := map[string]interface{}{
		"status":        domain.JobStatusFailed,
		"error_message": errorMessage,
		"completed_at":  &now,
	}
	if failedAtUnit != "" {
		updates["failed_at_unit"] = failedAtUnit
	}
	if retries > 0 {
		updates["retry_count"] = gorm.Expr("retry_count + ?", retries)
	}
	if len(partial) > 0 {
		updates["partial_result"] = partial
	}
	return m.Transition(ctx, id,
		[]domain.JobStatus{domain.JobStatusPending, domain.JobStatusProcessing},
		updates)
}
