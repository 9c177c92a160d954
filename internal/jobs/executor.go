package jobs

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/avast/retry-go/v4"

	"github.com/launchpadhq/launchpad/internal/domain"
	"github.com/launchpadhq/launchpad/internal/logger"
)

// ErrAlreadyTerminal is returned when execution is requested for a job that
// already reached complete or failed.
var ErrAlreadyTerminal = errors.New("job already in terminal state")

// ErrUnknownJobType is returned when no runner is registered for a job's type.
var ErrUnknownJobType = errors.New("unknown job type")

// Unit is one discrete sub-task within a job, executed in order.
type Unit struct {
	// Name is the human-readable label shown to the polling client and used
	// as the output key.
	Name string

	// Optional units are logged and skipped after retries are exhausted
	// instead of failing the whole job.
	Optional bool

	// Run performs the sub-task. Outputs of earlier units are available in
	// prior, keyed by unit name.
	Run func(ctx context.Context, job *domain.Job, prior map[string]interface{}) (interface{}, error)

	// Validate rejects structurally deficient output. A validation failure
	// is a retryable failure, not a silent acceptance of low-quality output.
	Validate func(output interface{}) error
}

// Runner supplies the ordered unit sequence for one job type and aggregates
// the outputs into the final domain object.
type Runner interface {
	// JobType identifies which jobs this runner handles.
	JobType() domain.JobType

	// Plan builds the ordered unit sequence from the job's input snapshot.
	Plan(ctx context.Context, job *domain.Job) ([]Unit, error)

	// Finalize aggregates unit outputs into the job result and performs the
	// dual write onto the owning domain entity.
	Finalize(ctx context.Context, job *domain.Job, outputs map[string]interface{}) (domain.JSONMap, error)
}

// Executor performs detached job execution: it owns every status transition
// after dispatch and runs each job's sub-tasks strictly sequentially, since
// later units may depend on earlier outputs and the upstream providers are
// rate limited.
type Executor struct {
	manager     *Manager
	runners     map[domain.JobType]Runner
	maxAttempts uint
	retryDelay  time.Duration
	unitTimeout time.Duration
	log         *logger.Logger
}

// ExecutorConfig holds executor tuning knobs.
type ExecutorConfig struct {
	MaxAttempts int           // attempts per sub-task, including the first
	RetryDelay  time.Duration // fixed delay between attempts
	UnitTimeout time.Duration // per-sub-task deadline
}

// NewExecutor creates a new executor.
func NewExecutor(cfg *ExecutorConfig, manager *Manager, log *logger.Logger) *Executor {
	maxAttempts := cfg.MaxAttempts
	if maxAttempts <= 0 {
		maxAttempts = 3
	}
	retryDelay := cfg.RetryDelay
	if retryDelay <= 0 {
		retryDelay = 2 * time.Second
	}
	unitTimeout := cfg.UnitTimeout
	if unitTimeout <= 0 {
		unitTimeout = 120 * time.Second
	}
	if log == nil {
		log = logger.GetDefault()
	}

	return &Executor{
		manager:     manager,
		runners:     make(map[domain.JobType]Runner),
		maxAttempts: uint(maxAttempts),
		retryDelay:  retryDelay,
		unitTimeout: unitTimeout,
		log:         log,
	}
}

// Register adds a runner to the executor's registry.
func (e *Executor) Register(r Runner) {
	e.runners[r.JobType()] = r
}

// PlanFor validates input for a job type before any job row exists, by
// planning against a transient job. Returns the planned unit count so the
// caller can seed total_units.
// Parameters:
//   - ctx: request context.
//   - jobType: requested job type.
//   - ownerID: requesting owner.
//   - input: raw request input.
// Returns:
//   - int: number of planned sub-tasks.
//   - error: ErrUnknownJobType or the runner's input validation error.
func (e *Executor) PlanFor(ctx context.Context, jobType domain.JobType, ownerID string, input domain.JSONMap) (int, error) {
	runner, ok := e.runners[jobType]
	if !ok {
		return 0, fmt.Errorf("%w: %s", ErrUnknownJobType, jobType)
	}

	units, err := runner.Plan(ctx, &domain.Job{
		JobType:   jobType,
		OwnerID:   ownerID,
		Status:    domain.JobStatusPending,
		InputData: input,
	})
	if err != nil {
		return 0, err
	}
	return len(units), nil
}

// Execute runs a job to a terminal state. It is invoked once per job, from
// the worker entry point, and is the only writer of processing/complete/
// failed transitions after dispatch.
// Parameters:
//   - ctx: context for cancellation and deadlines; must outlive the
//     dispatcher's ack window.
//   - jobID: job to execute.
// Returns:
//   - error: non-nil when the job could not be run or ended failed; the
//     job record itself always carries the user-facing outcome.
func (e *Executor) Execute(ctx context.Context, jobID string) error {
	job, err := e.manager.Get(ctx, jobID)
	if err != nil {
		return err
	}
	if job.Status.IsTerminal() {
		return ErrAlreadyTerminal
	}

	ctx = logger.WithFields(ctx, logger.Fields{
		logger.FieldJobID:   job.ID,
		logger.FieldJobType: string(job.JobType),
	})
	log := logger.FromContext(ctx)

	runner, ok := e.runners[job.JobType]
	if !ok {
		msg := fmt.Sprintf("no runner registered for job type %q", job.JobType)
		e.manager.MarkFailed(ctx, job.ID, msg, "", 0, nil)
		return fmt.Errorf("%w: %s", ErrUnknownJobType, job.JobType)
	}

	e.manager.MarkProcessing(ctx, job.ID)

	units, err := runner.Plan(ctx, job)
	if err != nil {
		e.manager.MarkFailed(ctx, job.ID, fmt.Sprintf("failed to plan job: %v", err), "", 0, nil)
		return err
	}
	if len(units) != job.TotalUnits {
		// The plan is authoritative; the start endpoint's estimate may be off.
		e.manager.Transition(ctx, job.ID,
			[]domain.JobStatus{domain.JobStatusProcessing},
			map[string]interface{}{"total_units": len(units)})
		job.TotalUnits = len(units)
	}

	log.WithField("units", len(units)).Info("Job execution started")

	outputs := make(map[string]interface{}, len(units))
	skipped := make([]string, 0)

	for _, unit := range units {
		e.manager.SetUnitLabel(ctx, job.ID, unit.Name)

		out, retries, err := e.runUnit(ctx, job, unit, outputs)
		if err != nil {
			if unit.Optional {
				log.WithFields(logger.Fields{logger.FieldUnit: unit.Name}).
					WithError(err).Warn("Optional sub-task exhausted retries; skipping")
				skipped = append(skipped, unit.Name)
				e.manager.MarkUnitDone(ctx, job.ID, retries)
				continue
			}

			msg := fmt.Sprintf("sub-task %q failed: %v", unit.Name, err)
			e.manager.MarkFailed(ctx, job.ID, msg, unit.Name, retries, domain.JSONMap(outputs))
			log.WithFields(logger.Fields{logger.FieldUnit: unit.Name}).
				WithError(err).Error("Job failed")
			return fmt.Errorf("job %s: %s", job.ID, msg)
		}

		outputs[unit.Name] = out
		e.manager.MarkUnitDone(ctx, job.ID, retries)
	}

	result, err := runner.Finalize(ctx, job, outputs)
	if err != nil {
		msg := fmt.Sprintf("failed to finalize job: %v", err)
		e.manager.MarkFailed(ctx, job.ID, msg, "", 0, domain.JSONMap(outputs))
		return fmt.Errorf("job %s: %s", job.ID, msg)
	}
	if len(skipped) > 0 {
		if result == nil {
			result = domain.JSONMap{}
		}
		result["skipped_units"] = skipped
	}

	e.manager.MarkComplete(ctx, job.ID, result)
	log.Info("Job execution complete")
	return nil
}

// runUnit executes one sub-task with a per-attempt timeout and bounded
// retries. Returns the output, the number of failed attempts, and the final
// error if every attempt failed.
func (e *Executor) runUnit(ctx context.Context, job *domain.Job, unit Unit, prior map[string]interface{}) (interface{}, int, error) {
	var out interface{}
	retries := 0

	err := retry.Do(
		func() error {
			unitCtx, cancel := context.WithTimeout(ctx, e.unitTimeout)
			defer cancel()

			o, err := unit.Run(unitCtx, job, prior)
			if err != nil {
				return err
			}
			if unit.Validate != nil {
				if err := unit.Validate(o); err != nil {
					return err
				}
			}
			out = o
			return nil
		},
		retry.Attempts(e.maxAttempts),
		retry.Delay(e.retryDelay),
		retry.DelayType(retry.FixedDelay),
		retry.Context(ctx),
		retry.LastErrorOnly(true),
		retry.OnRetry(func(attempt uint, err error) {
			retries++
			logger.FromContext(ctx).WithFields(logger.Fields{
				logger.FieldUnit:    unit.Name,
				logger.FieldAttempt: attempt + 1,
			}).WithError(err).Warn("Sub-task attempt failed; retrying")
		}),
	)

	return out, retries, err
}
