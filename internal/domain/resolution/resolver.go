package resolution

import (
	"github.com/phytokg/termlink/pkg/types/mapping"
	"github.com/phytokg/termlink/pkg/types/vocab"
)

// Resolution-policy defaults. Both values are external configuration so that
// thresholds can be tuned per deployment against a gold standard; stricter
// per-category overrides are supported through Policy.CategoryThresholds.
const (
	DefaultSimilarityThreshold = 0.75
	DefaultAmbiguityMargin     = 0.03

	// ambiguityPenalty scales confidence down on a margin-ambiguous result
	// to signal downstream caution without discarding the top candidate.
	ambiguityPenalty = 0.9
)

// Policy carries the confidence thresholds applied when turning a candidate
// list into a Mapping.
type Policy struct {
	// SimilarityThreshold is the minimum top score for any non-unmapped
	// result.
	SimilarityThreshold float64

	// AmbiguityMargin is the minimum lead the top candidate needs over the
	// runner-up to be accepted without an ambiguity flag.
	AmbiguityMargin float64

	// CategoryThresholds overrides SimilarityThreshold per mention context
	// category, e.g. a stricter threshold for species than for broad
	// functional traits.
	CategoryThresholds map[vocab.TermCategory]float64
}

// DefaultPolicy returns the default resolution policy.
func DefaultPolicy() Policy {
	return Policy{
		SimilarityThreshold: DefaultSimilarityThreshold,
		AmbiguityMargin:     DefaultAmbiguityMargin,
	}
}

// Resolver applies the threshold and tie-break policy. It is stateless and
// deterministic: identical mention text against an identical index always
// yields a bit-identical Mapping.
type Resolver struct {
	policy Policy
}

// NewResolver constructs a Resolver, filling unset policy fields with
// defaults.
func NewResolver(policy Policy) *Resolver {
	if policy.SimilarityThreshold <= 0 {
		policy.SimilarityThreshold = DefaultSimilarityThreshold
	}
	if policy.AmbiguityMargin <= 0 {
		policy.AmbiguityMargin = DefaultAmbiguityMargin
	}
	return &Resolver{policy: policy}
}

// Resolve produces the Mapping for one mention from its filtered candidate
// list. filterRestored indicates the taxonomy filter emptied the list and
// fell back to the unfiltered candidates; such results are downgraded to
// ambiguous for curation visibility.
func (r *Resolver) Resolve(m mapping.Mention, cands []Candidate, filterRestored bool) mapping.Mapping {
	if len(cands) == 0 {
		return mapping.Mapping{Mention: m, Status: mapping.StatusUnmapped}
	}

	threshold := r.policy.SimilarityThreshold
	if t, ok := r.policy.CategoryThresholds[m.ContextCategory]; ok && t > 0 {
		threshold = t
	}

	top := cands[0]
	if top.Score < threshold {
		return mapping.Mapping{Mention: m, Status: mapping.StatusUnmapped}
	}

	runnerUp := 0.0
	if len(cands) > 1 {
		runnerUp = cands[1].Score
	}

	if len(cands) > 1 && top.Score-runnerUp < r.policy.AmbiguityMargin {
		return mapping.Mapping{
			Mention:    m,
			TermID:     top.TermID,
			Confidence: top.Score * ambiguityPenalty,
			Status:     mapping.StatusAmbiguous,
		}
	}

	if filterRestored {
		return mapping.Mapping{
			Mention:    m,
			TermID:     top.TermID,
			Confidence: top.Score * ambiguityPenalty,
			Status:     mapping.StatusAmbiguous,
		}
	}

	return mapping.Mapping{
		Mention:    m,
		TermID:     top.TermID,
		Confidence: top.Score,
		Status:     mapping.StatusMapped,
	}
}
