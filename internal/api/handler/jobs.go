package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/launchpadhq/launchpad/internal/domain"
	"github.com/launchpadhq/launchpad/internal/jobs"
	"github.com/launchpadhq/launchpad/internal/logger"
	"github.com/launchpadhq/launchpad/internal/repository"
)

// JobHandler handles job start and status endpoints.
type JobHandler struct {
	manager    *jobs.Manager
	dispatcher *jobs.Dispatcher
	executor   *jobs.Executor
	products   *repository.ProductRepository
}

// NewJobHandler creates a new job handler.
// Parameters:
//   - manager: job lifecycle manager.
//   - dispatcher: worker dispatcher.
//   - executor: executor, used for synchronous input validation.
//   - products: product repository, for the generating-status write on start.
// Returns:
//   - *JobHandler: initialized handler.
func NewJobHandler(manager *jobs.Manager, dispatcher *jobs.Dispatcher, executor *jobs.Executor, products *repository.ProductRepository) *JobHandler {
	return &JobHandler{
		manager:    manager,
		dispatcher: dispatcher,
		executor:   executor,
		products:   products,
	}
}

// ownerID resolves the requesting owner from the X-Owner-ID header, the
// owner_id query parameter, or an owner_id body field already bound by the
// caller. There is no auth layer; the owner is a plain request field.
func ownerID(c *gin.Context, body map[string]interface{}) string {
	if id := c.GetHeader("X-Owner-ID"); id != "" {
		return id
	}
	if id := c.Query("owner_id"); id != "" {
		return id
	}
	if body != nil {
		if id, ok := body["owner_id"].(string); ok {
			return id
		}
	}
	return ""
}

// StartJob handles POST /api/v1/start/:job_type.
//
// Input is validated synchronously against the runner's plan so that a bad
// request never leaves a job row behind; only valid inputs reach the
// dispatcher.
// Parameters:
//   - c: Gin request context.
// Returns: none (writes JSON response).
func (h *JobHandler) StartJob(c *gin.Context) {
	jobType := domain.JobType(c.Param("job_type"))
	if !domain.ValidJobType(jobType) {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Unknown job type: " + string(jobType),
		})
		return
	}

	var input map[string]interface{}
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Invalid request: " + err.Error(),
		})
		return
	}

	owner := ownerID(c, input)
	if owner == "" {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "owner_id is required",
		})
		return
	}
	delete(input, "owner_id")

	ctx := c.Request.Context()
	totalUnits, err := h.executor.PlanFor(ctx, jobType, owner, domain.JSONMap(input))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Invalid input: " + err.Error(),
		})
		return
	}

	// Jobs bound to a product flip it to generating before any work starts.
	// The write doubles as an existence check: an unknown product_id is a
	// bad request, not a job that fails later.
	productID, _ := input["product_id"].(string)
	if productID != "" {
		err := h.products.Update(ctx, productID, owner, map[string]interface{}{
			"status": domain.ProductStatusGenerating,
		})
		if errors.Is(err, repository.ErrProductNotFound) {
			c.JSON(http.StatusBadRequest, gin.H{
				"error": "Invalid input: product not found",
			})
			return
		}
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{
				"error": "Failed to update product: " + err.Error(),
			})
			return
		}
	}

	job, err := h.manager.Create(ctx, jobType, owner, domain.JSONMap(input), totalUnits)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Failed to create job: " + err.Error(),
		})
		return
	}

	// The outcome only affects the job record; the caller polls for it.
	outcome := h.dispatcher.Dispatch(ctx, job)
	if outcome == jobs.OutcomeFailed && productID != "" {
		// The job will never run, so the product must not sit in generating.
		if err := h.products.Update(ctx, productID, owner, map[string]interface{}{
			"status": domain.ProductStatusFailed,
		}); err != nil {
			logger.CtxWarn(ctx, "failed to mark product %s failed after dispatch failure: %v", productID, err)
		}
	}

	c.JSON(http.StatusAccepted, gin.H{
		"job_id": job.ID,
		"status": string(domain.JobStatusPending),
	})
}

// Status handles GET /api/v1/jobs/:id/status.
//
// Reads are side-effect free; terminal jobs return the same body on every
// poll.
// Parameters:
//   - c: Gin request context.
// Returns: none (writes JSON response).
func (h *JobHandler) Status(c *gin.Context) {
	job, err := h.manager.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		if errors.Is(err, repository.ErrJobNotFound) {
			c.JSON(http.StatusNotFound, gin.H{
				"error": "Job not found",
			})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Failed to load job: " + err.Error(),
		})
		return
	}

	resp := gin.H{
		"job_id":           job.ID,
		"job_type":         string(job.JobType),
		"status":           string(job.Status),
		"progress_percent": job.ProgressPercent(),
	}
	if job.CurrentUnitLabel != "" {
		resp["current_unit_label"] = job.CurrentUnitLabel
	}
	if job.Status == domain.JobStatusComplete && job.Result != nil {
		resp["result"] = job.Result
	}
	if job.Status == domain.JobStatusFailed {
		resp["error"] = job.ErrorMessage
		if job.FailedAtUnit != "" {
			resp["failed_at_unit"] = job.FailedAtUnit
		}
		if job.RetryCount > 0 {
			resp["retry_count"] = job.RetryCount
		}
		if job.PartialResult != nil {
			resp["partial_result"] = job.PartialResult
		}
	}

	c.JSON(http.StatusOK, resp)
}
