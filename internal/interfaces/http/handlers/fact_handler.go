package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	appdedup "github.com/phytokg/termlink/internal/application/dedup"
	"github.com/phytokg/termlink/pkg/types/mapping"
)

// FactHandler exposes fact deduplication over HTTP.
type FactHandler struct {
	service appdedup.Service
}

// NewFactHandler creates a FactHandler.
func NewFactHandler(svc appdedup.Service) *FactHandler {
	return &FactHandler{service: svc}
}

// RegisterRoutes registers fact routes on the given group.
func (h *FactHandler) RegisterRoutes(g *gin.RouterGroup) {
	g.POST("/facts/dedup", h.DeduplicateBatch)
	g.POST("/facts/merge", h.MergeBatches)
}

// DeduplicateBatch handles POST /api/v1/facts/dedup. The request body is a
// batch of extracted facts; the response carries the canonical set and the
// facts routed to manual review.
func (h *FactHandler) DeduplicateBatch(c *gin.Context) {
	var req appdedup.BatchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadJSON(c, err)
		return
	}

	result, err := h.service.DeduplicateBatch(c.Request.Context(), req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

// MergeRequest is the body for POST /api/v1/facts/merge.
type MergeRequest struct {
	Batches [][]mapping.CanonicalFact `json:"batches"`
}

// MergeResponse is the response for POST /api/v1/facts/merge.
type MergeResponse struct {
	Canonical []mapping.CanonicalFact `json:"canonical"`
}

// MergeBatches handles POST /api/v1/facts/merge, combining canonical outputs
// of earlier deduplication passes.
func (h *FactHandler) MergeBatches(c *gin.Context) {
	var req MergeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadJSON(c, err)
		return
	}

	merged, err := h.service.MergeBatches(c.Request.Context(), req.Batches...)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, MergeResponse{Canonical: merged})
}
