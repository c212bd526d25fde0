package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	appres "github.com/phytokg/termlink/internal/application/resolution"
	"github.com/phytokg/termlink/pkg/types/mapping"
)

// ResolutionHandler exposes mention resolution over HTTP.
type ResolutionHandler struct {
	service appres.Service
}

// NewResolutionHandler creates a ResolutionHandler.
func NewResolutionHandler(svc appres.Service) *ResolutionHandler {
	return &ResolutionHandler{service: svc}
}

// RegisterRoutes registers resolution routes on the given group.
func (h *ResolutionHandler) RegisterRoutes(g *gin.RouterGroup) {
	g.POST("/resolve", h.ResolveBatch)
	g.POST("/resolve/mention", h.ResolveMention)
}

// ResolveBatch handles POST /api/v1/resolve. The request body is a batch of
// mentions; the response carries one mapping per mention in input order.
func (h *ResolutionHandler) ResolveBatch(c *gin.Context) {
	var req appres.BatchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadJSON(c, err)
		return
	}

	result, err := h.service.ResolveBatch(c.Request.Context(), req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

// ResolveMention handles POST /api/v1/resolve/mention for single-mention
// lookups, useful for interactive curation tools.
func (h *ResolutionHandler) ResolveMention(c *gin.Context) {
	var m mapping.Mention
	if err := c.ShouldBindJSON(&m); err != nil {
		respondBadJSON(c, err)
		return
	}

	mapped, err := h.service.ResolveMention(c.Request.Context(), m)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, mapped)
}
