package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	appdedup "github.com/phytokg/termlink/internal/application/dedup"
	"github.com/phytokg/termlink/pkg/errors"
	"github.com/phytokg/termlink/pkg/types/mapping"
)

type mockDedupService struct {
	deduplicateBatchFn func(ctx context.Context, req appdedup.BatchRequest) (*appdedup.BatchResult, error)
	mergeBatchesFn     func(ctx context.Context, batches ...[]mapping.CanonicalFact) ([]mapping.CanonicalFact, error)
}

func (m *mockDedupService) DeduplicateBatch(ctx context.Context, req appdedup.BatchRequest) (*appdedup.BatchResult, error) {
	if m.deduplicateBatchFn != nil {
		return m.deduplicateBatchFn(ctx, req)
	}
	return &appdedup.BatchResult{BatchID: req.BatchID}, nil
}

func (m *mockDedupService) MergeBatches(ctx context.Context, batches ...[]mapping.CanonicalFact) ([]mapping.CanonicalFact, error) {
	if m.mergeBatchesFn != nil {
		return m.mergeBatchesFn(ctx, batches...)
	}
	return nil, nil
}

func factRouter(svc appdedup.Service) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	NewFactHandler(svc).RegisterRoutes(r.Group("/api/v1"))
	return r
}

func TestDeduplicateBatch_OK(t *testing.T) {
	t.Parallel()

	canonical := mapping.CanonicalFact{
		SubjectTermID: "C:2",
		Predicate:     "affects",
		ObjectTermID:  "T:1",
		Provenance:    []string{"doc-1", "doc-2"},
		SupportCount:  2,
	}
	svc := &mockDedupService{
		deduplicateBatchFn: func(_ context.Context, req appdedup.BatchRequest) (*appdedup.BatchResult, error) {
			require.Len(t, req.Facts, 2)
			return &appdedup.BatchResult{
				BatchID:   req.BatchID,
				Canonical: []mapping.CanonicalFact{canonical},
			}, nil
		},
	}
	r := factRouter(svc)

	subject := mapping.Mapping{TermID: "C:2", Confidence: 1, Status: mapping.StatusMapped}
	object := mapping.Mapping{TermID: "T:1", Confidence: 1, Status: mapping.StatusMapped}
	w := postJSON(t, r, "/api/v1/facts/dedup", appdedup.BatchRequest{
		BatchID: "b-1",
		Facts: []mapping.Fact{
			{Subject: subject, Predicate: "affects", Object: object, Provenance: []string{"doc-1"}},
			{Subject: subject, Predicate: "Affects", Object: object, Provenance: []string{"doc-2"}},
		},
	})

	require.Equal(t, http.StatusOK, w.Code)
	var result appdedup.BatchResult
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &result))
	require.Len(t, result.Canonical, 1)
	assert.Equal(t, 2, result.Canonical[0].SupportCount)
}

func TestDeduplicateBatch_EmptyBatch(t *testing.T) {
	t.Parallel()

	svc := &mockDedupService{
		deduplicateBatchFn: func(context.Context, appdedup.BatchRequest) (*appdedup.BatchResult, error) {
			return nil, errors.New(errors.ErrCodeEmptyBatch, "batch contains no facts")
		},
	}
	r := factRouter(svc)

	w := postJSON(t, r, "/api/v1/facts/dedup", appdedup.BatchRequest{})

	require.Equal(t, http.StatusBadRequest, w.Code)
}

func TestDeduplicateBatch_InvalidBody(t *testing.T) {
	t.Parallel()

	r := factRouter(&mockDedupService{})

	req := httptest.NewRequest(http.MethodPost, "/api/v1/facts/dedup", bytes.NewBufferString("[["))
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusBadRequest, w.Code)
	var resp ErrorResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, errors.ErrCodeBadRequest.String(), resp.Code)
}

func TestMergeBatches_OK(t *testing.T) {
	t.Parallel()

	svc := &mockDedupService{
		mergeBatchesFn: func(_ context.Context, batches ...[]mapping.CanonicalFact) ([]mapping.CanonicalFact, error) {
			require.Len(t, batches, 2)
			return []mapping.CanonicalFact{{
				SubjectTermID: "C:2",
				Predicate:     "affects",
				ObjectTermID:  "T:1",
				Provenance:    []string{"doc-1", "doc-2"},
				SupportCount:  2,
			}}, nil
		},
	}
	r := factRouter(svc)

	w := postJSON(t, r, "/api/v1/facts/merge", MergeRequest{
		Batches: [][]mapping.CanonicalFact{
			{{SubjectTermID: "C:2", Predicate: "affects", ObjectTermID: "T:1", Provenance: []string{"doc-1"}, SupportCount: 1}},
			{{SubjectTermID: "C:2", Predicate: "affects", ObjectTermID: "T:1", Provenance: []string{"doc-2"}, SupportCount: 1}},
		},
	})

	require.Equal(t, http.StatusOK, w.Code)
	var resp MergeResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.Len(t, resp.Canonical, 1)
	assert.Equal(t, 2, resp.Canonical[0].SupportCount)
}
