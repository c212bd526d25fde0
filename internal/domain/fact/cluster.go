// Package fact implements equality-based deduplication of extracted facts:
// clustering by normalized (subject, predicate, object) triple, provenance
// aggregation, and a review side output for facts whose endpoints stayed
// unresolved. Clustering is an equality test on normalized triples, not
// pairwise fuzzy scoring, so equivalence is transitive by construction and
// no iterative merge loop exists.
package fact

import (
	"github.com/phytokg/termlink/pkg/types/mapping"
	"github.com/phytokg/termlink/pkg/types/vocab"
)

// tripleKey is the normalized identity of a fact cluster.
type tripleKey struct {
	subject   vocab.TermID
	predicate string
	object    vocab.TermID
}

// Cluster is a set of facts judged equivalent. Every canonicalizable input
// fact belongs to exactly one cluster.
type Cluster struct {
	key     tripleKey
	members []mapping.Fact
}

// Size returns the number of member facts.
func (c *Cluster) Size() int { return len(c.members) }

// Canonical aggregates the cluster into its representative fact. Provenance
// is the sorted, deduplicated union of member provenances. SupportCount is
// the number of distinct supporting documents, so replaying a canonical
// fact through deduplication reproduces it unchanged; clusters with no
// provenance at all fall back to the member count.
func (c *Cluster) Canonical() mapping.CanonicalFact {
	var prov []string
	for _, f := range c.members {
		prov = append(prov, f.Provenance...)
	}
	prov = mapping.SortProvenance(prov)

	support := len(prov)
	if support == 0 {
		support = len(c.members)
	}

	return mapping.CanonicalFact{
		SubjectTermID: c.key.subject,
		Predicate:     c.key.predicate,
		ObjectTermID:  c.key.object,
		Provenance:    prov,
		SupportCount:  support,
	}
}
