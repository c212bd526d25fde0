package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/phytokg/termlink/internal/domain/ontology"
	"github.com/phytokg/termlink/pkg/errors"
	"github.com/phytokg/termlink/pkg/types/vocab"
)

// TermHandler exposes read-only lookups against the term index.
type TermHandler struct {
	index *ontology.Index
}

// NewTermHandler creates a TermHandler.
func NewTermHandler(idx *ontology.Index) *TermHandler {
	return &TermHandler{index: idx}
}

// RegisterRoutes registers term routes on the given group.
func (h *TermHandler) RegisterRoutes(g *gin.RouterGroup) {
	g.GET("/terms/:id", h.GetTerm)
}

// TermResponse is the wire shape of a vocabulary term.
type TermResponse struct {
	ID             vocab.TermID       `json:"id"`
	CanonicalLabel string             `json:"canonical_label"`
	Synonyms       []string           `json:"synonyms,omitempty"`
	Category       vocab.TermCategory `json:"category"`
	ParentIDs      []vocab.TermID     `json:"parent_ids,omitempty"`
	SourceOntology string             `json:"source_ontology,omitempty"`
}

// GetTerm handles GET /api/v1/terms/:id.
func (h *TermHandler) GetTerm(c *gin.Context) {
	id := vocab.TermID(c.Param("id"))
	term, ok := h.index.Term(id)
	if !ok {
		respondError(c, errors.Newf(errors.ErrCodeTermNotFound, "term %q not found", id))
		return
	}
	c.JSON(http.StatusOK, TermResponse{
		ID:             term.ID,
		CanonicalLabel: term.CanonicalLabel,
		Synonyms:       term.Synonyms,
		Category:       term.Category,
		ParentIDs:      term.ParentIDs,
		SourceOntology: term.SourceOntology,
	})
}
