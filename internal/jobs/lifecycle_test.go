package jobs

import (
	"context"
	"fmt"
	"testing"

	"github.com/google/uuid"

	"github.com/launchpadhq/launchpad/internal/config"
	"github.com/launchpadhq/launchpad/internal/domain"
	"github.com/launchpadhq/launchpad/internal/logger"
	"github.com/launchpadhq/launchpad/internal/repository"
)

// newTestManager creates a manager backed by a private in-memory database.
func newTestManager(t *testing.T) *Manager {
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

	return NewManager(repository.NewJobRepository(db), logger.GetDefault())
}

func TestManager_CreateAndGet(t *testing.T) {
	m := newTestManager(t)
	ctx := context.Background()

	job, err := m.Create(ctx, domain.JobTypeFunnelIdeas, "owner-1",
		domain.JSONMap{"niche": "sourdough baking"}, 2)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if job.ID == "" {
		t.Fatal("expected generated job id")
	}
	if job.Status != domain.JobStatusPending {
		t.Errorf("expected pending, got %s", job.Status)
	}

	loaded, err := m.Get(ctx, job.ID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if loaded.TotalUnits != 2 {
		t.Errorf("expected 2 total units, got %d", loaded.TotalUnits)
	}
	if loaded.InputData["niche"] != "sourdough baking" {
		t.Errorf("input snapshot not persisted: %v", loaded.InputData)
	}
}

func TestManager_Get_Unknown(t *testing.T) {
	m := newTestManager(t)

	_, err := m.Get(context.Background(), "nope")
	if err != repository.ErrJobNotFound {
		t.Errorf("expected ErrJobNotFound, got %v", err)
	}
}

func TestManager_ProgressIsMonotonic(t *testing.T) {
	m := newTestManager(t)
	ctx := context.Background()

	job, err := m.Create(ctx, domain.JobTypeLeadMagnetContent, "owner-1", nil, 2)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !m.MarkProcessing(ctx, job.ID) {
		t.Fatal("expected pending -> processing to apply")
	}

	// One increment past total must not overflow
	for i := 0; i < 4; i++ {
		m.MarkUnitDone(ctx, job.ID, 0)
	}

	loaded, err := m.Get(ctx, job.ID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if loaded.CompletedUnits != 2 {
		t.Errorf("expected completed_units capped at 2, got %d", loaded.CompletedUnits)
	}
}

func TestManager_TerminalStatesAreImmutable(t *testing.T) {
	m := newTestManager(t)
	ctx := context.Background()

	job, err := m.Create(ctx, domain.JobTypeCoverDesign, "owner-1", nil, 1)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	m.MarkProcessing(ctx, job.ID)
	if !m.MarkComplete(ctx, job.ID, domain.JSONMap{"cover_url": "https://cdn.example/x.png"}) {
		t.Fatal("expected processing -> complete to apply")
	}

	// None of these may resurrect or mutate a terminal job
	if m.MarkProcessing(ctx, job.ID) {
		t.Error("complete -> processing must be refused")
	}
	if m.MarkFailed(ctx, job.ID, "late failure", "", 0, nil) {
		t.Error("complete -> failed must be refused")
	}
	m.MarkUnitDone(ctx, job.ID, 0)
	m.SetUnitLabel(ctx, job.ID, "ghost unit")

	loaded, err := m.Get(ctx, job.ID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if loaded.Status != domain.JobStatusComplete {
		t.Errorf("terminal status changed to %s", loaded.Status)
	}
	if loaded.CurrentUnitLabel != "" {
		t.Errorf("terminal job label changed to %q", loaded.CurrentUnitLabel)
	}
	if loaded.ErrorMessage != "" {
		t.Errorf("terminal job gained error message %q", loaded.ErrorMessage)
	}
}

func TestManager_MarkFailedRecordsDiagnostics(t *testing.T) {
	m := newTestManager(t)
	ctx := context.Background()

	job, err := m.Create(ctx, domain.JobTypeSupplementaryContent, "owner-1", nil, 4)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	m.MarkProcessing(ctx, job.ID)
	m.MarkUnitDone(ctx, job.ID, 1)

	partial := domain.JSONMap{"workbook": map[string]interface{}{"title": "Workbook"}}
	if !m.MarkFailed(ctx, job.ID, `sub-task "checklist" failed`, "checklist", 3, partial) {
		t.Fatal("expected processing -> failed to apply")
	}

	loaded, err := m.Get(ctx, job.ID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if loaded.Status != domain.JobStatusFailed {
		t.Fatalf("expected failed, got %s", loaded.Status)
	}
	if loaded.FailedAtUnit != "checklist" {
		t.Errorf("expected failed_at_unit checklist, got %q", loaded.FailedAtUnit)
	}
	if loaded.RetryCount != 4 {
		t.Errorf("expected retry_count 4 (1 progress + 3 final), got %d", loaded.RetryCount)
	}
	if loaded.PartialResult == nil {
		t.Fatal("expected partial_result to be preserved")
	}
	if loaded.CompletedAt == nil {
		t.Error("expected completed_at on terminal job")
	}
}

func TestJob_ProgressPercent(t *testing.T) {
	tests := []struct {
		name      string
		completed int
		total     int
		status    domain.JobStatus
		want      int
	}{
		{"zero of three", 0, 3, domain.JobStatusProcessing, 0},
		{"one of three", 1, 3, domain.JobStatusProcessing, 33},
		{"two of three", 2, 3, domain.JobStatusProcessing, 67},
		{"all done", 3, 3, domain.JobStatusComplete, 100},
		{"empty plan complete", 0, 0, domain.JobStatusComplete, 100},
		{"empty plan pending", 0, 0, domain.JobStatusPending, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			job := &domain.Job{
				Status:         tt.status,
				CompletedUnits: tt.completed,
				TotalUnits:     tt.total,
			}
			if got := job.ProgressPercent(); got != tt.want {
				t.Errorf("ProgressPercent() = %d, want %d", got, tt.want)
			}
		})
	}
}
