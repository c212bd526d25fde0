package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/phytokg/termlink/internal/domain/ontology"
	"github.com/phytokg/termlink/pkg/errors"
	"github.com/phytokg/termlink/pkg/types/vocab"
)

func termRouter(t *testing.T) *gin.Engine {
	t.Helper()
	idx, err := ontology.Build([]vocab.TermRecord{
		{ID: "C:1", CanonicalLabel: "flavonoid", Category: vocab.CategoryStructural},
		{ID: "C:2", CanonicalLabel: "quercetin", Synonyms: []string{"Sophoretin"},
			Category: vocab.CategoryStructural, ParentIDs: []vocab.TermID{"C:1"}, SourceOntology: "chebi"},
	})
	require.NoError(t, err)

	gin.SetMode(gin.TestMode)
	r := gin.New()
	NewTermHandler(idx).RegisterRoutes(r.Group("/api/v1"))
	return r
}

func TestGetTerm_OK(t *testing.T) {
	t.Parallel()

	r := termRouter(t)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/terms/C:2", nil))

	require.Equal(t, http.StatusOK, w.Code)
	var resp TermResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, vocab.TermID("C:2"), resp.ID)
	assert.Equal(t, "quercetin", resp.CanonicalLabel)
	assert.Equal(t, []string{"Sophoretin"}, resp.Synonyms)
	assert.Equal(t, []vocab.TermID{"C:1"}, resp.ParentIDs)
	assert.Equal(t, "chebi", resp.SourceOntology)
}

func TestGetTerm_NotFound(t *testing.T) {
	t.Parallel()

	r := termRouter(t)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/terms/C:999", nil))

	require.Equal(t, http.StatusNotFound, w.Code)
	var resp ErrorResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, errors.ErrCodeTermNotFound.String(), resp.Code)
}
