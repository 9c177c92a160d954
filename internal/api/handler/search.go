package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/launchpadhq/launchpad/internal/service"
)

// SearchHandler handles idea similarity search endpoints.
type SearchHandler struct {
	similarity *service.SimilarityService
}

// NewSearchHandler creates a new search handler.
// Parameters:
//   - similarity: idea similarity service instance.
// Returns:
//   - *SearchHandler: initialized handler.
func NewSearchHandler(similarity *service.SimilarityService) *SearchHandler {
	return &SearchHandler{similarity: similarity}
}

// searchIdeasRequest is the POST /api/v1/search/ideas body.
type searchIdeasRequest struct {
	OwnerID string `json:"owner_id"`
	Query   string `json:"query" binding:"required"`
	TopK    int    `json:"top_k"`
}

// SearchIdeas handles POST /api/v1/search/ideas.
// Parameters:
//   - c: Gin request context.
// Returns: none (writes JSON response).
func (h *SearchHandler) SearchIdeas(c *gin.Context) {
	var req searchIdeasRequest
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

	results, err := h.similarity.SearchIdeas(c.Request.Context(), owner, req.Query, req.TopK)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Search failed: " + err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"query":   req.Query,
		"results": results,
		"total":   len(results),
	})
}
