package jobs

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/launchpadhq/launchpad/internal/domain"
	"github.com/launchpadhq/launchpad/internal/logger"
)

// fakeRunner is a scriptable runner for executor tests.
type fakeRunner struct {
	jobType  domain.JobType
	units    []Unit
	planErr  error
	finalErr error

	mu        sync.Mutex
	finalized bool
}

func (r *fakeRunner) JobType() domain.JobType { return r.jobType }

func (r *fakeRunner) Plan(ctx context.Context, job *domain.Job) ([]Unit, error) {
	if r.planErr != nil {
		return nil, r.planErr
	}
	return r.units, nil
}

func (r *fakeRunner) Finalize(ctx context.Context, job *domain.Job, outputs map[string]interface{}) (domain.JSONMap, error) {
	r.mu.Lock()
	r.finalized = true
	r.mu.Unlock()
	if r.finalErr != nil {
		return nil, r.finalErr
	}
	result := domain.JSONMap{}
	for name, out := range outputs {
		result[name] = out
	}
	return result, nil
}

// okUnit returns a unit that succeeds immediately with a fixed output.
func okUnit(name string) Unit {
	return Unit{
		Name: name,
		Run: func(ctx context.Context, job *domain.Job, prior map[string]interface{}) (interface{}, error) {
			return name + " output", nil
		},
	}
}

func newTestExecutor(t *testing.T, m *Manager, runners ...Runner) *Executor {
	t.Helper()
	e := NewExecutor(&ExecutorConfig{
		MaxAttempts: 3,
		RetryDelay:  time.Millisecond,
		UnitTimeout: time.Second,
	}, m, logger.GetDefault())
	for _, r := range runners {
		e.Register(r)
	}
	return e
}

func TestExecutor_HappyPath(t *testing.T) {
	m := newTestManager(t)
	ctx := context.Background()

	runner := &fakeRunner{
		jobType: domain.JobTypeLeadMagnetContent,
		units: []Unit{
			okUnit("outline"),
			{
				Name: "chapter 1",
				Run: func(ctx context.Context, job *domain.Job, prior map[string]interface{}) (interface{}, error) {
					if prior["outline"] != "outline output" {
						return nil, fmt.Errorf("earlier output not visible: %v", prior)
					}
					return "chapter 1 output", nil
				},
			},
			okUnit("bridge"),
		},
	}
	e := newTestExecutor(t, m, runner)

	job, err := m.Create(ctx, domain.JobTypeLeadMagnetContent, "owner-1", nil, 3)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if err := e.Execute(ctx, job.ID); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	loaded, err := m.Get(ctx, job.ID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if loaded.Status != domain.JobStatusComplete {
		t.Fatalf("expected complete, got %s (%s)", loaded.Status, loaded.ErrorMessage)
	}
	if loaded.CompletedUnits != 3 {
		t.Errorf("expected 3 completed units, got %d", loaded.CompletedUnits)
	}
	if got := loaded.ProgressPercent(); got != 100 {
		t.Errorf("expected 100%%, got %d%%", got)
	}
	if loaded.Result["outline"] != "outline output" {
		t.Errorf("expected unit outputs in result, got %v", loaded.Result)
	}
	if loaded.CurrentUnitLabel != "" {
		t.Errorf("expected cleared unit label, got %q", loaded.CurrentUnitLabel)
	}
	if loaded.StartedAt == nil || loaded.CompletedAt == nil {
		t.Error("expected started_at and completed_at to be set")
	}
}

func TestExecutor_RetryThenSucceed(t *testing.T) {
	m := newTestManager(t)
	ctx := context.Background()

	attempts := 0
	runner := &fakeRunner{
		jobType: domain.JobTypeFunnelIdeas,
		units: []Unit{
			{
				Name: "ideas",
				Run: func(ctx context.Context, job *domain.Job, prior map[string]interface{}) (interface{}, error) {
					attempts++
					if attempts < 3 {
						return nil, errors.New("transient provider error")
					}
					return "ideas output", nil
				},
			},
		},
	}
	e := newTestExecutor(t, m, runner)

	job, _ := m.Create(ctx, domain.JobTypeFunnelIdeas, "owner-1", nil, 1)
	if err := e.Execute(ctx, job.ID); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	loaded, _ := m.Get(ctx, job.ID)
	if loaded.Status != domain.JobStatusComplete {
		t.Fatalf("expected complete, got %s (%s)", loaded.Status, loaded.ErrorMessage)
	}
	if attempts != 3 {
		t.Errorf("expected 3 attempts, got %d", attempts)
	}
	if loaded.RetryCount != 2 {
		t.Errorf("expected retry_count 2, got %d", loaded.RetryCount)
	}
}

func TestExecutor_MandatoryUnitExhaustsRetries(t *testing.T) {
	m := newTestManager(t)
	ctx := context.Background()

	runner := &fakeRunner{
		jobType: domain.JobTypeCoverDesign,
		units: []Unit{
			okUnit("concept"),
			{
				Name: "render",
				Run: func(ctx context.Context, job *domain.Job, prior map[string]interface{}) (interface{}, error) {
					return nil, errors.New("renderer unreachable")
				},
			},
			okUnit("store"),
		},
	}
	e := newTestExecutor(t, m, runner)

	job, _ := m.Create(ctx, domain.JobTypeCoverDesign, "owner-1", nil, 3)
	if err := e.Execute(ctx, job.ID); err == nil {
		t.Fatal("expected execution error")
	}

	loaded, _ := m.Get(ctx, job.ID)
	if loaded.Status != domain.JobStatusFailed {
		t.Fatalf("expected failed, got %s", loaded.Status)
	}
	if loaded.FailedAtUnit != "render" {
		t.Errorf("expected failed_at_unit render, got %q", loaded.FailedAtUnit)
	}
	if loaded.RetryCount != 3 {
		t.Errorf("expected retry_count 3, got %d", loaded.RetryCount)
	}
	if loaded.CompletedUnits != 1 {
		t.Errorf("expected 1 completed unit, got %d", loaded.CompletedUnits)
	}
	if loaded.PartialResult == nil || loaded.PartialResult["concept"] != "concept output" {
		t.Errorf("expected earlier outputs in partial_result, got %v", loaded.PartialResult)
	}
	if runner.finalized {
		t.Error("Finalize must not run after a mandatory failure")
	}
}

func TestExecutor_OptionalUnitSkipped(t *testing.T) {
	m := newTestManager(t)
	ctx := context.Background()

	runner := &fakeRunner{
		jobType: domain.JobTypeLeadMagnetContent,
		units: []Unit{
			okUnit("outline"),
			{
				Name:     "call to action",
				Optional: true,
				Run: func(ctx context.Context, job *domain.Job, prior map[string]interface{}) (interface{}, error) {
					return nil, errors.New("model refused")
				},
			},
		},
	}
	e := newTestExecutor(t, m, runner)

	job, _ := m.Create(ctx, domain.JobTypeLeadMagnetContent, "owner-1", nil, 2)
	if err := e.Execute(ctx, job.ID); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	loaded, _ := m.Get(ctx, job.ID)
	if loaded.Status != domain.JobStatusComplete {
		t.Fatalf("expected complete, got %s (%s)", loaded.Status, loaded.ErrorMessage)
	}
	if got := loaded.ProgressPercent(); got != 100 {
		t.Errorf("expected 100%% after optional skip, got %d%%", got)
	}
	skipped, ok := loaded.Result["skipped_units"].([]interface{})
	if !ok || len(skipped) != 1 || skipped[0] != "call to action" {
		t.Errorf("expected skipped_units [call to action], got %v", loaded.Result["skipped_units"])
	}
	if _, present := loaded.Result["call to action"]; present {
		t.Error("skipped unit must not contribute output")
	}
}

func TestExecutor_ValidationFailureIsRetryable(t *testing.T) {
	m := newTestManager(t)
	ctx := context.Background()

	attempts := 0
	runner := &fakeRunner{
		jobType: domain.JobTypeSupplementaryContent,
		units: []Unit{
			{
				Name: "workbook",
				Run: func(ctx context.Context, job *domain.Job, prior map[string]interface{}) (interface{}, error) {
					attempts++
					if attempts == 1 {
						return "", nil // structurally deficient
					}
					return "a full workbook", nil
				},
				Validate: func(output interface{}) error {
					if output == "" {
						return errors.New("empty document")
					}
					return nil
				},
			},
		},
	}
	e := newTestExecutor(t, m, runner)

	job, _ := m.Create(ctx, domain.JobTypeSupplementaryContent, "owner-1", nil, 1)
	if err := e.Execute(ctx, job.ID); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	loaded, _ := m.Get(ctx, job.ID)
	if loaded.Status != domain.JobStatusComplete {
		t.Fatalf("expected complete, got %s (%s)", loaded.Status, loaded.ErrorMessage)
	}
	if attempts != 2 {
		t.Errorf("expected rejected output to be retried, got %d attempts", attempts)
	}
}

func TestExecutor_UnknownJobType(t *testing.T) {
	m := newTestManager(t)
	ctx := context.Background()

	e := newTestExecutor(t, m) // no runners registered

	job, _ := m.Create(ctx, domain.JobTypeFunnelPDF, "owner-1", nil, 3)
	err := e.Execute(ctx, job.ID)
	if !errors.Is(err, ErrUnknownJobType) {
		t.Fatalf("expected ErrUnknownJobType, got %v", err)
	}

	loaded, _ := m.Get(ctx, job.ID)
	if loaded.Status != domain.JobStatusFailed {
		t.Errorf("expected failed, got %s", loaded.Status)
	}
}

func TestExecutor_TerminalJobIsNotRerun(t *testing.T) {
	m := newTestManager(t)
	ctx := context.Background()

	runner := &fakeRunner{
		jobType: domain.JobTypeFunnelIdeas,
		units:   []Unit{okUnit("ideas")},
	}
	e := newTestExecutor(t, m, runner)

	job, _ := m.Create(ctx, domain.JobTypeFunnelIdeas, "owner-1", nil, 1)
	if err := e.Execute(ctx, job.ID); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := e.Execute(ctx, job.ID); !errors.Is(err, ErrAlreadyTerminal) {
		t.Fatalf("expected ErrAlreadyTerminal on re-execution, got %v", err)
	}
}

func TestExecutor_PlanCorrectsTotalUnits(t *testing.T) {
	m := newTestManager(t)
	ctx := context.Background()

	runner := &fakeRunner{
		jobType: domain.JobTypeFunnelIdeas,
		units:   []Unit{okUnit("ideas"), okUnit("embed")},
	}
	e := newTestExecutor(t, m, runner)

	// Start endpoint estimated 5; the plan is authoritative at 2
	job, _ := m.Create(ctx, domain.JobTypeFunnelIdeas, "owner-1", nil, 5)
	if err := e.Execute(ctx, job.ID); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	loaded, _ := m.Get(ctx, job.ID)
	if loaded.TotalUnits != 2 {
		t.Errorf("expected corrected total_units 2, got %d", loaded.TotalUnits)
	}
	if got := loaded.ProgressPercent(); got != 100 {
		t.Errorf("expected 100%%, got %d%%", got)
	}
}
