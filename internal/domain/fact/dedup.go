package fact

import (
	"fmt"
	"sort"

	"github.com/phytokg/termlink/internal/domain/ontology"
	"github.com/phytokg/termlink/pkg/types/mapping"
)

// Review reasons attached to facts excluded from canonicalization.
const (
	ReasonInvalidFact     = "invalid fact"
	ReasonUnmappedSubject = "unmapped subject"
	ReasonUnmappedObject  = "unmapped object"
	ReasonUnmappedBoth    = "unmapped subject and object"
)

// Result is the outcome of one deduplication pass. Canonical is sorted by
// triple key for reproducible output; Review preserves input order.
type Result struct {
	Canonical []mapping.CanonicalFact
	Review    []mapping.ReviewItem
}

// Deduplicator groups facts into clusters of equivalent assertions. It holds
// only the immutable predicate alias table and is safe for concurrent use.
type Deduplicator struct {
	aliases map[string]string
}

// NewDeduplicator constructs a Deduplicator. predicateAliases collapses
// configured near-identical predicates onto one canonical form, e.g.
// "affects_trait" onto "affects"; both sides are normalized before use.
func NewDeduplicator(predicateAliases map[string]string) *Deduplicator {
	aliases := make(map[string]string, len(predicateAliases))
	for alias, canonical := range predicateAliases {
		aliases[ontology.Normalize(alias)] = ontology.Normalize(canonical)
	}
	return &Deduplicator{aliases: aliases}
}

// NormalizePredicate maps a raw predicate onto its cluster-key form:
// case-folded, whitespace-collapsed, alias-resolved.
func (d *Deduplicator) NormalizePredicate(p string) string {
	norm := ontology.Normalize(p)
	if canonical, ok := d.aliases[norm]; ok {
		return canonical
	}
	return norm
}

// Deduplicate partitions facts into equivalence clusters and aggregates each
// cluster into one canonical fact. Facts with an unresolved subject or
// object, or failing structural validation, go to the review output instead
// of being dropped.
//
// The pass is idempotent: re-running it over its own canonical output
// (replayed as facts) yields the same canonical set.
func (d *Deduplicator) Deduplicate(facts []mapping.Fact) Result {
	clusters := make(map[tripleKey]*Cluster, len(facts))
	var res Result

	for _, f := range facts {
		if reason, ok := d.reviewReason(&f); ok {
			res.Review = append(res.Review, mapping.ReviewItem{Fact: f, Reason: reason})
			continue
		}

		key := tripleKey{
			subject:   f.Subject.TermID,
			predicate: d.NormalizePredicate(f.Predicate),
			object:    f.Object.TermID,
		}
		c, ok := clusters[key]
		if !ok {
			c = &Cluster{key: key}
			clusters[key] = c
		}
		c.members = append(c.members, f)
	}

	res.Canonical = make([]mapping.CanonicalFact, 0, len(clusters))
	for _, c := range clusters {
		res.Canonical = append(res.Canonical, c.Canonical())
	}
	sort.Slice(res.Canonical, func(i, j int) bool {
		return res.Canonical[i].Key() < res.Canonical[j].Key()
	})
	return res
}

func (d *Deduplicator) reviewReason(f *mapping.Fact) (string, bool) {
	if err := f.Validate(); err != nil {
		return fmt.Sprintf("%s: %v", ReasonInvalidFact, err), true
	}
	subjectUnmapped := !f.Subject.IsResolved()
	objectUnmapped := !f.Object.IsResolved()
	switch {
	case subjectUnmapped && objectUnmapped:
		return ReasonUnmappedBoth, true
	case subjectUnmapped:
		return ReasonUnmappedSubject, true
	case objectUnmapped:
		return ReasonUnmappedObject, true
	}
	return "", false
}

// Merge combines already-deduplicated batches into one canonical set without
// revisiting the underlying facts. Merging is associative and commutative:
// merging the canonical outputs of two batches equals deduplicating the
// union of their inputs directly. Predicates are assumed already normalized
// by the pass that produced the inputs.
func (d *Deduplicator) Merge(batches ...[]mapping.CanonicalFact) []mapping.CanonicalFact {
	type acc struct {
		prov    []string
		support int
	}
	merged := make(map[tripleKey]*acc)

	for _, batch := range batches {
		for _, cf := range batch {
			key := tripleKey{
				subject:   cf.SubjectTermID,
				predicate: d.NormalizePredicate(cf.Predicate),
				object:    cf.ObjectTermID,
			}
			a, ok := merged[key]
			if !ok {
				a = &acc{}
				merged[key] = a
			}
			a.prov = append(a.prov, cf.Provenance...)
			a.support += cf.SupportCount
		}
	}

	out := make([]mapping.CanonicalFact, 0, len(merged))
	for key, a := range merged {
		prov := mapping.SortProvenance(a.prov)
		support := len(prov)
		if support == 0 {
			// Provenance-free clusters keep the summed member counts.
			support = a.support
		}
		out = append(out, mapping.CanonicalFact{
			SubjectTermID: key.subject,
			Predicate:     key.predicate,
			ObjectTermID:  key.object,
			Provenance:    prov,
			SupportCount:  support,
		})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Key() < out[j].Key() })
	return out
}

// Replay converts canonical facts back into input facts, used when a merged
// batch must flow through deduplication again.
func Replay(canonical []mapping.CanonicalFact) []mapping.Fact {
	facts := make([]mapping.Fact, 0, len(canonical))
	for _, cf := range canonical {
		facts = append(facts, mapping.Fact{
			Subject:    mapping.Mapping{TermID: cf.SubjectTermID, Status: mapping.StatusMapped, Confidence: 1},
			Predicate:  cf.Predicate,
			Object:     mapping.Mapping{TermID: cf.ObjectTermID, Status: mapping.StatusMapped, Confidence: 1},
			Provenance: append([]string(nil), cf.Provenance...),
		})
	}
	return facts
}
