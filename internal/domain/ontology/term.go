// Package ontology implements the immutable in-memory term index: the
// controlled vocabulary (terms, synonyms, hierarchy edges) against which all
// mention resolution runs. The index is built exactly once per session from
// normalized term records and is safe for unsynchronized concurrent reads
// afterwards.
package ontology

import (
	"github.com/phytokg/termlink/pkg/types/vocab"
)

// Term is one canonical vocabulary entry as held by the index. All lookup
// forms are precomputed at build time; Term values are never mutated after
// Build returns.
type Term struct {
	ID             vocab.TermID
	CanonicalLabel string
	Synonyms       []string
	Category       vocab.TermCategory
	ParentIDs      []vocab.TermID
	SourceOntology string

	// normalizedNames holds Normalize(label) followed by the normalized
	// synonyms, deduplicated. Candidate scoring runs against these forms.
	normalizedNames []string

	// normalizedLabel is Normalize(CanonicalLabel), kept separately because
	// tie-breaking prefers the shorter canonical label.
	normalizedLabel string
}

// NormalizedNames returns every normalized lookup form of the term: the
// canonical label first, then synonyms. Callers must not modify the slice.
func (t *Term) NormalizedNames() []string {
	return t.normalizedNames
}

// NormalizedLabel returns the normalized canonical label.
func (t *Term) NormalizedLabel() string {
	return t.normalizedLabel
}

// newTerm converts a validated source record into an index term, computing
// its normalized forms.
func newTerm(r vocab.TermRecord) *Term {
	t := &Term{
		ID:             r.ID,
		CanonicalLabel: r.CanonicalLabel,
		Synonyms:       append([]string(nil), r.Synonyms...),
		Category:       r.Category,
		ParentIDs:      append([]vocab.TermID(nil), r.ParentIDs...),
		SourceOntology: r.SourceOntology,
	}
	t.normalizedLabel = Normalize(r.CanonicalLabel)

	seen := map[string]struct{}{t.normalizedLabel: {}}
	t.normalizedNames = append(t.normalizedNames, t.normalizedLabel)
	for _, syn := range r.Synonyms {
		n := Normalize(syn)
		if n == "" {
			continue
		}
		if _, dup := seen[n]; dup {
			continue
		}
		seen[n] = struct{}{}
		t.normalizedNames = append(t.normalizedNames, n)
	}
	return t
}
