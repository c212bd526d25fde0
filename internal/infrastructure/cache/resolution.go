// Package cache implements the resolution cache: a process-local store of
// mention-text resolution outcomes with an optional shared second tier, and
// a single-computation guarantee so that concurrent resolutions of the same
// normalized text compute once and share the result.
package cache

import (
	"context"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/phytokg/termlink/internal/domain/ontology"
	"github.com/phytokg/termlink/internal/infrastructure/monitoring/logging"
	"github.com/phytokg/termlink/pkg/errors"
	"github.com/phytokg/termlink/pkg/types/mapping"
	"github.com/phytokg/termlink/pkg/types/vocab"
)

// Entry is a cached resolution outcome. It deliberately excludes the
// Mention: all mentions sharing a normalized text and context category share
// one entry, whatever document they came from.
type Entry struct {
	TermID     vocab.TermID          `json:"term_id,omitempty"`
	Confidence float64               `json:"confidence"`
	Status     mapping.MappingStatus `json:"status"`
}

// Apply combines the cached outcome with a concrete mention.
func (e Entry) Apply(m mapping.Mention) mapping.Mapping {
	return mapping.Mapping{Mention: m, TermID: e.TermID, Confidence: e.Confidence, Status: e.Status}
}

// Loader computes the outcome on a cache miss.
type Loader func(ctx context.Context) (Entry, error)

// Store is an optional shared second cache tier behind the local map.
type Store interface {
	Get(ctx context.Context, key string) (Entry, bool, error)
	Set(ctx context.Context, key string, e Entry) error
}

// Key derives the cache key for a mention: normalized text plus context
// category, the exact inputs resolution depends on.
func Key(text string, category vocab.TermCategory) string {
	return ontology.Normalize(text) + "|" + string(category)
}

// DefaultWaitTimeout bounds how long a caller waits for another goroutine's
// in-flight computation of the same key.
const DefaultWaitTimeout = 2 * time.Second

// ResolutionCache is safe for concurrent use. The local tier never evicts;
// the key space is bounded by the distinct mention surface of a corpus,
// which is orders of magnitude below the document count.
type ResolutionCache struct {
	mu    sync.RWMutex
	local map[string]Entry

	store       Store
	group       singleflight.Group
	waitTimeout time.Duration
	logger      logging.Logger
}

// Option configures a ResolutionCache.
type Option func(*ResolutionCache)

// WithStore attaches a shared second tier consulted after a local miss.
func WithStore(s Store) Option {
	return func(c *ResolutionCache) { c.store = s }
}

// WithWaitTimeout overrides the bounded wait for in-flight computations.
func WithWaitTimeout(d time.Duration) Option {
	return func(c *ResolutionCache) {
		if d > 0 {
			c.waitTimeout = d
		}
	}
}

// NewResolutionCache constructs a ResolutionCache.
func NewResolutionCache(log logging.Logger, opts ...Option) *ResolutionCache {
	c := &ResolutionCache{
		local:       make(map[string]Entry),
		waitTimeout: DefaultWaitTimeout,
		logger:      log,
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.logger == nil {
		c.logger = logging.NewNopLogger()
	}
	return c
}

// Len returns the number of locally cached entries.
func (c *ResolutionCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.local)
}

// Outcome classifies a GetOrCompute lookup for accounting.
type Outcome string

const (
	// OutcomeHit served the entry from a cache tier.
	OutcomeHit Outcome = "hit"
	// OutcomeMiss ran the loader for this caller.
	OutcomeMiss Outcome = "miss"
	// OutcomeShared joined another caller's in-flight computation. Not a
	// hit: nothing was cached yet when this caller arrived.
	OutcomeShared Outcome = "shared"
)

// GetOrCompute returns the cached entry for key, computing it via loader on
// a miss. Concurrent callers of the same key share one computation. The
// wait on another caller's in-flight computation is bounded: on timeout the
// caller degrades to computing uncached rather than blocking on a possibly
// stuck first writer, and the incident surfaces as a warning.
func (c *ResolutionCache) GetOrCompute(ctx context.Context, key string, loader Loader) (Entry, Outcome, error) {
	if e, ok := c.lookupLocal(key); ok {
		return e, OutcomeHit, nil
	}

	// executed stays false for callers coalesced onto another goroutine's
	// computation: singleflight runs only the first closure per key.
	executed := false
	viaStore := false
	ch := c.group.DoChan(key, func() (interface{}, error) {
		executed = true
		e, fromStore, err := c.compute(ctx, key, loader)
		viaStore = fromStore
		return e, err
	})

	timer := time.NewTimer(c.waitTimeout)
	defer timer.Stop()

	select {
	case res := <-ch:
		outcome := OutcomeShared
		if executed {
			if viaStore {
				outcome = OutcomeHit
			} else {
				outcome = OutcomeMiss
			}
		}
		if res.Err != nil {
			return Entry{}, outcome, res.Err
		}
		return res.Val.(Entry), outcome, nil
	case <-ctx.Done():
		return Entry{}, OutcomeMiss, errors.Wrap(ctx.Err(), errors.ErrCodeResolutionTimeout, "resolution cancelled while waiting on cache")
	case <-timer.C:
		c.logger.Warn("cache wait timeout, computing uncached",
			logging.String("key", key),
			logging.Duration("wait", c.waitTimeout))
		c.group.Forget(key)
		e, err := loader(ctx)
		return e, OutcomeMiss, err
	}
}

func (c *ResolutionCache) lookupLocal(key string) (Entry, bool) {
	c.mu.RLock()
	e, ok := c.local[key]
	c.mu.RUnlock()
	return e, ok
}

// compute runs inside singleflight: check the shared tier, fall back to the
// loader, then populate both tiers. The bool reports whether the entry was
// served from the shared tier rather than computed.
func (c *ResolutionCache) compute(ctx context.Context, key string, loader Loader) (Entry, bool, error) {
	if c.store != nil {
		e, ok, err := c.store.Get(ctx, key)
		if err != nil {
			c.logger.Warn("shared cache tier read failed", logging.String("key", key), logging.Err(err))
		} else if ok {
			c.setLocal(key, e)
			return e, true, nil
		}
	}

	e, err := loader(ctx)
	if err != nil {
		return Entry{}, false, err
	}

	c.setLocal(key, e)
	if c.store != nil {
		if err := c.store.Set(ctx, key, e); err != nil {
			c.logger.Warn("shared cache tier write failed", logging.String("key", key), logging.Err(err))
		}
	}
	return e, false, nil
}

func (c *ResolutionCache) setLocal(key string, e Entry) {
	c.mu.Lock()
	c.local[key] = e
	c.mu.Unlock()
}

// Invalidate drops all local entries, e.g. after an index rebuild.
func (c *ResolutionCache) Invalidate() {
	c.mu.Lock()
	c.local = make(map[string]Entry)
	c.mu.Unlock()
}
