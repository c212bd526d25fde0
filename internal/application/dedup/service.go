// Package dedup is the application service around fact deduplication:
// running the clustering pass, persisting canonical facts, and publishing
// results to the downstream streams.
package dedup

import (
	"context"

	"github.com/google/uuid"

	"github.com/phytokg/termlink/internal/domain/fact"
	"github.com/phytokg/termlink/internal/infrastructure/monitoring/logging"
	"github.com/phytokg/termlink/internal/infrastructure/monitoring/metrics"
	"github.com/phytokg/termlink/pkg/errors"
	"github.com/phytokg/termlink/pkg/types/mapping"
)

// FactRepository persists canonical facts. Implemented by the postgres
// layer; nil disables persistence.
type FactRepository interface {
	UpsertCanonical(ctx context.Context, batchID string, facts []mapping.CanonicalFact) error
}

// Publisher emits deduplication output to downstream consumers. Implemented
// by the kafka layer; nil disables publishing.
type Publisher interface {
	PublishCanonical(ctx context.Context, facts []mapping.CanonicalFact) error
	PublishReview(ctx context.Context, items []mapping.ReviewItem) error
}

// BatchRequest is the input for one deduplication pass.
type BatchRequest struct {
	BatchID string         `json:"batch_id,omitempty"`
	Facts   []mapping.Fact `json:"facts"`
}

// BatchResult carries the canonical set and the review side output.
type BatchResult struct {
	BatchID   string                  `json:"batch_id"`
	Canonical []mapping.CanonicalFact `json:"canonical"`
	Review    []mapping.ReviewItem    `json:"review"`
}

// Service deduplicates extracted facts.
type Service interface {
	// DeduplicateBatch clusters the batch and returns the canonical facts
	// plus the facts held back for manual review.
	DeduplicateBatch(ctx context.Context, req BatchRequest) (*BatchResult, error)

	// MergeBatches combines already-canonical outputs of earlier batches.
	MergeBatches(ctx context.Context, batches ...[]mapping.CanonicalFact) ([]mapping.CanonicalFact, error)
}

// Deps carries the collaborators of the dedup service.
type Deps struct {
	Dedup     *fact.Deduplicator
	Repo      FactRepository
	Publisher Publisher
	Logger    logging.Logger
	Metrics   *metrics.Metrics
}

type serviceImpl struct {
	deps Deps
}

// NewService constructs the dedup application service.
func NewService(deps Deps) Service {
	if deps.Logger == nil {
		deps.Logger = logging.NewNopLogger()
	}
	return &serviceImpl{deps: deps}
}

func (s *serviceImpl) DeduplicateBatch(ctx context.Context, req BatchRequest) (*BatchResult, error) {
	if len(req.Facts) == 0 {
		return nil, errors.New(errors.ErrCodeEmptyBatch, "batch contains no facts")
	}
	batchID := req.BatchID
	if batchID == "" {
		batchID = uuid.NewString()
	}
	log := s.deps.Logger.With(logging.String("batch_id", batchID), logging.Int("facts", len(req.Facts)))

	res := s.deps.Dedup.Deduplicate(req.Facts)
	if s.deps.Metrics != nil {
		for _, cf := range res.Canonical {
			s.deps.Metrics.DedupClusterSize.Observe(float64(cf.SupportCount))
		}
		s.deps.Metrics.FactsReviewTotal.Add(float64(len(res.Review)))
	}

	if s.deps.Repo != nil {
		if err := s.deps.Repo.UpsertCanonical(ctx, batchID, res.Canonical); err != nil {
			return nil, errors.Wrap(err, errors.ErrCodeDatabaseError, "failed to persist canonical facts")
		}
	}
	if s.deps.Publisher != nil {
		if err := s.deps.Publisher.PublishCanonical(ctx, res.Canonical); err != nil {
			return nil, errors.Wrap(err, errors.ErrCodeExternalService, "failed to publish canonical facts")
		}
		if err := s.deps.Publisher.PublishReview(ctx, res.Review); err != nil {
			return nil, errors.Wrap(err, errors.ErrCodeExternalService, "failed to publish review items")
		}
	}

	log.Info("batch deduplicated",
		logging.Int("canonical", len(res.Canonical)),
		logging.Int("review", len(res.Review)))
	return &BatchResult{BatchID: batchID, Canonical: res.Canonical, Review: res.Review}, nil
}

func (s *serviceImpl) MergeBatches(ctx context.Context, batches ...[]mapping.CanonicalFact) ([]mapping.CanonicalFact, error) {
	merged := s.deps.Dedup.Merge(batches...)
	if s.deps.Repo != nil {
		if err := s.deps.Repo.UpsertCanonical(ctx, uuid.NewString(), merged); err != nil {
			return nil, errors.Wrap(err, errors.ErrCodeDatabaseError, "failed to persist merged facts")
		}
	}
	return merged, nil
}
