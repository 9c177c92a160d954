package jobs

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/go-resty/resty/v2"

	"github.com/launchpadhq/launchpad/internal/domain"
	"github.com/launchpadhq/launchpad/internal/logger"
)

// Outcome is the result of a dispatch attempt. Fire-and-forget is expressed
// as an explicit three-way contract so "I do not know if this succeeded" is a
// first-class, testable state.
type Outcome string

const (
	// OutcomeAcknowledged means the worker responded within the ack window.
	OutcomeAcknowledged Outcome = "acknowledged"

	// OutcomeTimedOutButPossiblyRunning means the ack window elapsed while
	// the worker may legitimately still be running.
	OutcomeTimedOutButPossiblyRunning Outcome = "timed_out_but_possibly_running"

	// OutcomeFailed means the dispatch attempt itself errored before any
	// acknowledgment.
	OutcomeFailed Outcome = "failed"
)

// Dispatcher hands a job off to the worker entry point over HTTP, decoupled
// from the caller's request/response cycle. It waits only for a short
// acknowledgment window; the worker's own execution may take minutes.
type Dispatcher struct {
	client     *resty.Client
	baseURL    string
	ackTimeout time.Duration
	manager    *Manager
	log        *logger.Logger
}

// DispatcherConfig holds dispatcher configuration.
type DispatcherConfig struct {
	// WorkerBaseURL is the base URL hosting the worker entry point.
	WorkerBaseURL string

	// AckTimeout bounds how long the dispatcher waits for acknowledgment.
	AckTimeout time.Duration
}

// NewDispatcher creates a new dispatcher.
func NewDispatcher(cfg *DispatcherConfig, manager *Manager, log *logger.Logger) *Dispatcher {
	ackTimeout := cfg.AckTimeout
	if ackTimeout <= 0 {
		ackTimeout = 3 * time.Second
	}
	if log == nil {
		log = logger.GetDefault()
	}

	client := resty.New()
	client.SetHeader("Content-Type", "application/json")

	return &Dispatcher{
		client:     client,
		baseURL:    cfg.WorkerBaseURL,
		ackTimeout: ackTimeout,
		manager:    manager,
		log:        log,
	}
}

type dispatchPayload struct {
	JobID string `json:"job_id"`
}

// Dispatch fires the worker for a pending job and maps the attempt to an
// Outcome, updating the job record accordingly:
//   - Acknowledged: the worker owns the record from here.
//   - TimedOutButPossiblyRunning: optimistically transition pending ->
//     processing; a false "failed" would strand a user-visible job while work
//     continues in the background.
//   - Failed: there is no ambiguity, transition to failed immediately.
func (d *Dispatcher) Dispatch(ctx context.Context, job *domain.Job) Outcome {
	log := d.log.WithFields(logger.Fields{
		logger.FieldJobID:   job.ID,
		logger.FieldJobType: string(job.JobType),
	})

	ackCtx, cancel := context.WithTimeout(ctx, d.ackTimeout)
	defer cancel()

	url := fmt.Sprintf("%s/internal/jobs/%s/execute", d.baseURL, job.ID)
	resp, err := d.client.R().
		SetContext(ackCtx).
		SetBody(dispatchPayload{JobID: job.ID}).
		Post(url)

	switch {
	case err != nil && (errors.Is(err, context.DeadlineExceeded) || errors.Is(ackCtx.Err(), context.DeadlineExceeded)):
		log.Info("Dispatch ack window elapsed; worker assumed running")
		d.manager.MarkProcessing(ctx, job.ID)
		return OutcomeTimedOutButPossiblyRunning

	case err != nil:
		log.WithError(err).Error("Dispatch failed")
		d.manager.MarkFailed(ctx, job.ID,
			fmt.Sprintf("dispatch failed: %v", err), "", 0, nil)
		return OutcomeFailed

	case resp.StatusCode() < 200 || resp.StatusCode() >= 300:
		log.WithField(logger.FieldStatus, resp.StatusCode()).Error("Dispatch rejected by worker")
		d.manager.MarkFailed(ctx, job.ID,
			fmt.Sprintf("dispatch rejected: worker returned status %d", resp.StatusCode()), "", 0, nil)
		return OutcomeFailed

	default:
		return OutcomeAcknowledged
	}
}
