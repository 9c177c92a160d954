package handler

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/launchpadhq/launchpad/internal/domain"
	"github.com/launchpadhq/launchpad/internal/jobs"
	"github.com/launchpadhq/launchpad/internal/logger"
	"github.com/launchpadhq/launchpad/internal/repository"
)

// WorkerHandler is the dispatcher's target: it runs jobs to a terminal
// state on the worker side of the protocol.
type WorkerHandler struct {
	manager  *jobs.Manager
	executor *jobs.Executor
	products *repository.ProductRepository
	funnels  *repository.FunnelRepository
}

// NewWorkerHandler creates a new worker handler.
func NewWorkerHandler(manager *jobs.Manager, executor *jobs.Executor, products *repository.ProductRepository, funnels *repository.FunnelRepository) *WorkerHandler {
	return &WorkerHandler{
		manager:  manager,
		executor: executor,
		products: products,
		funnels:  funnels,
	}
}

// Execute handles POST /internal/jobs/:id/execute.
//
// Runs the job synchronously. The dispatcher only waits for a short ack
// window before disconnecting, so execution uses a context detached from the
// request's cancellation; the job keeps running after the caller gives up.
// Parameters:
//   - c: Gin request context.
// Returns: none (writes JSON response).
func (h *WorkerHandler) Execute(c *gin.Context) {
	jobID := c.Param("id")
	ctx := context.WithoutCancel(c.Request.Context())

	err := h.executor.Execute(ctx, jobID)
	switch {
	case err == nil:
	case errors.Is(err, repository.ErrJobNotFound):
		c.JSON(http.StatusNotFound, gin.H{
			"error": "Job not found",
		})
		return
	case errors.Is(err, jobs.ErrAlreadyTerminal):
		c.JSON(http.StatusConflict, gin.H{
			"error": "Job already reached a terminal state",
		})
		return
	}

	// Executor errors other than the above mean the job ended failed; the
	// record carries the outcome either way.
	job, loadErr := h.manager.Get(ctx, jobID)
	if loadErr != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Failed to load job after execution: " + loadErr.Error(),
		})
		return
	}

	status := job.Status
	if !status.IsTerminal() {
		// Should not happen; the executor always lands terminal.
		status = domain.JobStatusFailed
	}

	h.syncProduct(ctx, job, status)

	c.JSON(http.StatusOK, gin.H{
		"job_id": job.ID,
		"status": string(status),
	})
}

// syncProduct mirrors a terminal job outcome onto the bound product: ready on
// complete, failed on failure. A funnel with a ready product counts as active.
// The job record stays authoritative, so these writes are best effort.
func (h *WorkerHandler) syncProduct(ctx context.Context, job *domain.Job, status domain.JobStatus) {
	productID, _ := job.InputData["product_id"].(string)
	if productID == "" {
		return
	}

	productStatus := domain.ProductStatusFailed
	if status == domain.JobStatusComplete {
		productStatus = domain.ProductStatusReady
	}
	if err := h.products.Update(ctx, productID, job.OwnerID, map[string]interface{}{
		"status": productStatus,
	}); err != nil {
		logger.CtxWarn(ctx, "failed to set product %s status %s: %v", productID, productStatus, err)
		return
	}

	if productStatus != domain.ProductStatusReady {
		return
	}
	product, err := h.products.GetByID(ctx, productID, job.OwnerID)
	if err != nil {
		logger.CtxWarn(ctx, "failed to load product %s after job %s: %v", productID, job.ID, err)
		return
	}
	if err := h.funnels.SetStatus(ctx, product.FunnelID, job.OwnerID, domain.FunnelStatusActive); err != nil {
		logger.CtxWarn(ctx, "failed to activate funnel %s: %v", product.FunnelID, err)
	}
}
