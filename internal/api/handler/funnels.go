package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/launchpadhq/launchpad/internal/domain"
	"github.com/launchpadhq/launchpad/internal/repository"
)

// FunnelHandler handles funnel CRUD endpoints.
type FunnelHandler struct {
	funnels  *repository.FunnelRepository
	products *repository.ProductRepository
}

// NewFunnelHandler creates a new funnel handler.
func NewFunnelHandler(funnels *repository.FunnelRepository, products *repository.ProductRepository) *FunnelHandler {
	return &FunnelHandler{funnels: funnels, products: products}
}

// createFunnelRequest is the POST /api/v1/funnels body.
type createFunnelRequest struct {
	OwnerID        string `json:"owner_id"`
	Name           string `json:"name" binding:"required"`
	Niche          string `json:"niche" binding:"required"`
	Audience       string `json:"audience" binding:"required"`
	Transformation string `json:"transformation"`
}

// Create handles POST /api/v1/funnels. It creates the funnel shell plus one
// draft product per funnel position; generation jobs fill them in later.
// Parameters:
//   - c: Gin request context.
// Returns: none (writes JSON response).
func (h *FunnelHandler) Create(c *gin.Context) {
	var req createFunnelRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Invalid request: " + err.Error(),
		})
		return
	}

	owner := req.OwnerID
	if owner == "" {
		owner = ownerID(c, nil)
	}
	if owner == "" {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "owner_id is required",
		})
		return
	}

	funnel := &domain.Funnel{
		ID:             uuid.New().String(),
		OwnerID:        owner,
		Name:           req.Name,
		Niche:          req.Niche,
		Audience:       req.Audience,
		Transformation: req.Transformation,
		Status:         domain.FunnelStatusDraft,
	}

	ctx := c.Request.Context()
	if err := h.funnels.Create(ctx, funnel); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Failed to create funnel: " + err.Error(),
		})
		return
	}

	for _, kind := range []domain.ProductKind{
		domain.ProductKindLeadMagnet,
		domain.ProductKindFrontend,
		domain.ProductKindUpsell,
	} {
		product := &domain.Product{
			ID:       uuid.New().String(),
			FunnelID: funnel.ID,
			OwnerID:  owner,
			Kind:     kind,
			Status:   domain.ProductStatusDraft,
		}
		if err := h.products.Create(ctx, product); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{
				"error": "Failed to create funnel products: " + err.Error(),
			})
			return
		}
		funnel.Products = append(funnel.Products, *product)
	}

	c.JSON(http.StatusCreated, funnel)
}

// List handles GET /api/v1/funnels.
func (h *FunnelHandler) List(c *gin.Context) {
	owner := ownerID(c, nil)
	if owner == "" {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "owner_id is required",
		})
		return
	}

	funnels, err := h.funnels.ListByOwner(c.Request.Context(), owner)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Failed to list funnels: " + err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"funnels": funnels,
		"total":   len(funnels),
	})
}

// Get handles GET /api/v1/funnels/:id, returning the funnel with its
// products preloaded.
func (h *FunnelHandler) Get(c *gin.Context) {
	owner := ownerID(c, nil)
	if owner == "" {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "owner_id is required",
		})
		return
	}

	funnel, err := h.funnels.GetByID(c.Request.Context(), c.Param("id"), owner)
	if err != nil {
		if errors.Is(err, repository.ErrFunnelNotFound) {
			c.JSON(http.StatusNotFound, gin.H{
				"error": "Funnel not found",
			})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Failed to load funnel: " + err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, funnel)
}
