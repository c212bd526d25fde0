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

	appres "github.com/phytokg/termlink/internal/application/resolution"
	"github.com/phytokg/termlink/pkg/errors"
	"github.com/phytokg/termlink/pkg/types/mapping"
	"github.com/phytokg/termlink/pkg/types/vocab"
)

type mockResolutionService struct {
	resolveMentionFn func(ctx context.Context, m mapping.Mention) (mapping.Mapping, error)
	resolveBatchFn   func(ctx context.Context, req appres.BatchRequest) (*appres.BatchResult, error)
}

func (m *mockResolutionService) ResolveMention(ctx context.Context, men mapping.Mention) (mapping.Mapping, error) {
	if m.resolveMentionFn != nil {
		return m.resolveMentionFn(ctx, men)
	}
	return mapping.Mapping{Mention: men, Status: mapping.StatusUnmapped}, nil
}

func (m *mockResolutionService) ResolveBatch(ctx context.Context, req appres.BatchRequest) (*appres.BatchResult, error) {
	if m.resolveBatchFn != nil {
		return m.resolveBatchFn(ctx, req)
	}
	return &appres.BatchResult{BatchID: req.BatchID}, nil
}

func resolutionRouter(svc appres.Service) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	NewResolutionHandler(svc).RegisterRoutes(r.Group("/api/v1"))
	return r
}

func postJSON(t *testing.T, r *gin.Engine, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	data, err := json.Marshal(body)
	require.NoError(t, err)
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(data))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestResolveBatch_OK(t *testing.T) {
	t.Parallel()

	termID := vocab.TermID("C:2")
	svc := &mockResolutionService{
		resolveBatchFn: func(_ context.Context, req appres.BatchRequest) (*appres.BatchResult, error) {
			require.Len(t, req.Mentions, 1)
			return &appres.BatchResult{
				BatchID: req.BatchID,
				Mappings: []mapping.Mapping{{
					Mention:    req.Mentions[0],
					TermID:     termID,
					Confidence: 1.0,
					Status:     mapping.StatusMapped,
				}},
				Stats: appres.BatchStats{Mapped: 1},
			}, nil
		},
	}
	r := resolutionRouter(svc)

	w := postJSON(t, r, "/api/v1/resolve", appres.BatchRequest{
		BatchID:  "b-1",
		Mentions: []mapping.Mention{{Text: "quercetin", ContextCategory: vocab.CategoryStructural}},
	})

	require.Equal(t, http.StatusOK, w.Code)
	var result appres.BatchResult
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &result))
	assert.Equal(t, "b-1", result.BatchID)
	require.Len(t, result.Mappings, 1)
	assert.Equal(t, mapping.StatusMapped, result.Mappings[0].Status)
	assert.Equal(t, 1, result.Stats.Mapped)
}

func TestResolveBatch_InvalidBody(t *testing.T) {
	t.Parallel()

	r := resolutionRouter(&mockResolutionService{})

	req := httptest.NewRequest(http.MethodPost, "/api/v1/resolve", bytes.NewBufferString("{not json"))
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusBadRequest, w.Code)
	var resp ErrorResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, errors.ErrCodeBadRequest.String(), resp.Code)
}

func TestResolveBatch_EmptyBatch(t *testing.T) {
	t.Parallel()

	svc := &mockResolutionService{
		resolveBatchFn: func(context.Context, appres.BatchRequest) (*appres.BatchResult, error) {
			return nil, errors.New(errors.ErrCodeEmptyBatch, "batch contains no mentions")
		},
	}
	r := resolutionRouter(svc)

	w := postJSON(t, r, "/api/v1/resolve", appres.BatchRequest{BatchID: "b-1"})

	require.Equal(t, http.StatusBadRequest, w.Code)
	var resp ErrorResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, errors.ErrCodeEmptyBatch.String(), resp.Code)
}

func TestResolveBatch_InternalErrorMasked(t *testing.T) {
	t.Parallel()

	svc := &mockResolutionService{
		resolveBatchFn: func(context.Context, appres.BatchRequest) (*appres.BatchResult, error) {
			return nil, errors.New(errors.ErrCodeInternal, "pool exhausted on node pg-3")
		},
	}
	r := resolutionRouter(svc)

	w := postJSON(t, r, "/api/v1/resolve", appres.BatchRequest{
		Mentions: []mapping.Mention{{Text: "quercetin"}},
	})

	require.Equal(t, http.StatusInternalServerError, w.Code)
	var resp ErrorResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "internal server error", resp.Message)
	assert.NotContains(t, w.Body.String(), "pg-3")
}

func TestResolveMention_OK(t *testing.T) {
	t.Parallel()

	termID := vocab.TermID("T:1")
	svc := &mockResolutionService{
		resolveMentionFn: func(_ context.Context, m mapping.Mention) (mapping.Mapping, error) {
			return mapping.Mapping{Mention: m, TermID: termID, Confidence: 0.92, Status: mapping.StatusMapped}, nil
		},
	}
	r := resolutionRouter(svc)

	w := postJSON(t, r, "/api/v1/resolve/mention", mapping.Mention{Text: "drought tolerance"})

	require.Equal(t, http.StatusOK, w.Code)
	var got mapping.Mapping
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
	assert.Equal(t, termID, got.TermID)
	assert.InDelta(t, 0.92, got.Confidence, 1e-9)
}

func TestResolveMention_InvalidMention(t *testing.T) {
	t.Parallel()

	svc := &mockResolutionService{
		resolveMentionFn: func(context.Context, mapping.Mention) (mapping.Mapping, error) {
			return mapping.Mapping{}, errors.New(errors.ErrCodeInvalidMention, "mention text is empty")
		},
	}
	r := resolutionRouter(svc)

	w := postJSON(t, r, "/api/v1/resolve/mention", mapping.Mention{})

	require.Equal(t, http.StatusBadRequest, w.Code)
	var resp ErrorResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, errors.ErrCodeInvalidMention.String(), resp.Code)
}
