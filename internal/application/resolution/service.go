// Package resolution is the application service orchestrating batch mention
// resolution: validation, caching, the worker pool over the domain pipeline,
// and persistence of the resulting mappings. Business rules live in the
// domain layer; this layer only coordinates.
package resolution

import (
	"context"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	resdomain "github.com/phytokg/termlink/internal/domain/resolution"
	"github.com/phytokg/termlink/internal/infrastructure/cache"
	"github.com/phytokg/termlink/internal/infrastructure/monitoring/logging"
	"github.com/phytokg/termlink/internal/infrastructure/monitoring/metrics"
	"github.com/phytokg/termlink/pkg/errors"
	"github.com/phytokg/termlink/pkg/types/mapping"
)

// MappingRepository persists resolved mappings. Implemented by the postgres
// layer; nil disables persistence (CLI one-shot runs).
type MappingRepository interface {
	SaveBatch(ctx context.Context, batchID string, mappings []mapping.Mapping) error
}

// BatchRequest is the input for one resolution batch.
type BatchRequest struct {
	// BatchID identifies the batch in logs and persistence; generated when
	// empty.
	BatchID  string            `json:"batch_id,omitempty"`
	Mentions []mapping.Mention `json:"mentions"`
}

// BatchStats summarizes a finished batch.
type BatchStats struct {
	Mapped    int `json:"mapped"`
	Unmapped  int `json:"unmapped"`
	Ambiguous int `json:"ambiguous"`
	Invalid   int `json:"invalid"`
}

// BatchResult carries the mappings of one batch in input order.
type BatchResult struct {
	BatchID  string            `json:"batch_id"`
	Mappings []mapping.Mapping `json:"mappings"`
	Stats    BatchStats        `json:"stats"`
}

// Service resolves mentions against the term index.
type Service interface {
	// ResolveMention resolves a single mention.
	ResolveMention(ctx context.Context, m mapping.Mention) (mapping.Mapping, error)

	// ResolveBatch resolves every mention of the batch concurrently and
	// returns mappings in input order. Invalid mentions become unmapped
	// results rather than failing the batch; only cancellation aborts it.
	ResolveBatch(ctx context.Context, req BatchRequest) (*BatchResult, error)
}

// Deps carries the collaborators of the resolution service.
type Deps struct {
	Generator *resdomain.Generator
	Filter    *resdomain.Filter
	Resolver  *resdomain.Resolver

	// Cache is optional; nil computes every mention from scratch.
	Cache *cache.ResolutionCache

	// Repo is optional mapping persistence.
	Repo MappingRepository

	// Concurrency bounds the worker pool; values below 1 fall back to 1.
	Concurrency int

	Logger  logging.Logger
	Metrics *metrics.Metrics
}

type serviceImpl struct {
	deps Deps
}

// NewService constructs the resolution application service.
func NewService(deps Deps) Service {
	if deps.Concurrency < 1 {
		deps.Concurrency = 1
	}
	if deps.Logger == nil {
		deps.Logger = logging.NewNopLogger()
	}
	return &serviceImpl{deps: deps}
}

func (s *serviceImpl) ResolveMention(ctx context.Context, m mapping.Mention) (mapping.Mapping, error) {
	if err := m.Validate(); err != nil {
		return mapping.Mapping{}, errors.Wrap(err, errors.ErrCodeInvalidMention, "mention failed validation")
	}
	return s.resolve(ctx, m)
}

func (s *serviceImpl) ResolveBatch(ctx context.Context, req BatchRequest) (*BatchResult, error) {
	if len(req.Mentions) == 0 {
		return nil, errors.New(errors.ErrCodeEmptyBatch, "batch contains no mentions")
	}
	batchID := req.BatchID
	if batchID == "" {
		batchID = uuid.NewString()
	}

	log := s.deps.Logger.With(logging.String("batch_id", batchID), logging.Int("mentions", len(req.Mentions)))
	log.Info("resolving batch")
	if s.deps.Metrics != nil {
		s.deps.Metrics.BatchSize.Observe(float64(len(req.Mentions)))
	}

	result := &BatchResult{
		BatchID:  batchID,
		Mappings: make([]mapping.Mapping, len(req.Mentions)),
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.deps.Concurrency)
	for i, m := range req.Mentions {
		i, m := i, m
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				// Batch cancelled; not-yet-started work is discarded.
				return err
			}
			if err := m.Validate(); err != nil {
				// Per-mention isolation: a malformed mention must not sink
				// the batch.
				log.Warn("skipping invalid mention", logging.Err(err))
				result.Mappings[i] = mapping.Mapping{Mention: m, Status: mapping.StatusUnmapped}
				return nil
			}
			resolved, err := s.resolve(gctx, m)
			if err != nil {
				if gctx.Err() != nil {
					return err
				}
				log.Warn("mention resolution failed", logging.String("text", m.Text), logging.Err(err))
				result.Mappings[i] = mapping.Mapping{Mention: m, Status: mapping.StatusUnmapped}
				return nil
			}
			result.Mappings[i] = resolved
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeResolutionFailed, "batch aborted")
	}

	for i := range result.Mappings {
		mp := &result.Mappings[i]
		switch {
		case mp.Status == mapping.StatusMapped:
			result.Stats.Mapped++
		case mp.Status == mapping.StatusAmbiguous:
			result.Stats.Ambiguous++
		case mp.Mention.Validate() != nil:
			result.Stats.Invalid++
		default:
			result.Stats.Unmapped++
		}
	}

	if s.deps.Repo != nil {
		if err := s.deps.Repo.SaveBatch(ctx, batchID, result.Mappings); err != nil {
			return nil, errors.Wrap(err, errors.ErrCodeDatabaseError, "failed to persist batch mappings")
		}
	}

	log.Info("batch resolved",
		logging.Int("mapped", result.Stats.Mapped),
		logging.Int("unmapped", result.Stats.Unmapped),
		logging.Int("ambiguous", result.Stats.Ambiguous),
		logging.Int("invalid", result.Stats.Invalid))
	return result, nil
}

// resolve runs one mention through the cache and the domain pipeline.
func (s *serviceImpl) resolve(ctx context.Context, m mapping.Mention) (mapping.Mapping, error) {
	start := time.Now()

	var (
		entry cache.Entry
		err   error
	)
	if s.deps.Cache != nil {
		key := cache.Key(m.Text, m.ContextCategory)
		var outcome cache.Outcome
		entry, outcome, err = s.deps.Cache.GetOrCompute(ctx, key, func(context.Context) (cache.Entry, error) {
			return s.computeEntry(m), nil
		})
		if s.deps.Metrics != nil {
			s.deps.Metrics.ObserveCache(string(outcome))
		}
		if err != nil {
			return mapping.Mapping{}, err
		}
	} else {
		entry = s.computeEntry(m)
	}

	resolved := entry.Apply(m)
	if s.deps.Metrics != nil {
		s.deps.Metrics.ObserveResolution(string(resolved.Status), time.Since(start))
	}
	return resolved, nil
}

// computeEntry is the pure resolution pipeline: generate, filter, resolve.
// The mention identity is stripped so the outcome is shareable across all
// mentions with the same normalized text and category.
func (s *serviceImpl) computeEntry(m mapping.Mention) cache.Entry {
	cands := s.deps.Generator.Generate(m.Text)
	cands, restored := s.deps.Filter.Apply(cands, m.ContextCategory)
	resolved := s.deps.Resolver.Resolve(m, cands, restored)
	return cache.Entry{TermID: resolved.TermID, Confidence: resolved.Confidence, Status: resolved.Status}
}
