package resolution

import (
	"github.com/phytokg/termlink/internal/domain/ontology"
	"github.com/phytokg/termlink/pkg/types/vocab"
)

// Filter narrows a candidate list using structural constraints: category
// agreement with the mention context and, where a domain root is configured
// for the category, containment in the subtree below that root (e.g. species
// mentions restricted to the plant clade).
//
// Filtering is assistive, never a hard requirement: when it would eliminate
// every candidate the original list is restored and the caller is told, so
// the resolver can mark the result ambiguous instead of silently losing all
// signal.
type Filter struct {
	index       *ontology.Index
	domainRoots map[vocab.TermCategory]vocab.TermID
}

// NewFilter constructs a Filter. domainRoots maps a mention category to the
// term id whose subtree candidates of that category must belong to; absent
// categories are unrestricted.
func NewFilter(index *ontology.Index, domainRoots map[vocab.TermCategory]vocab.TermID) *Filter {
	roots := make(map[vocab.TermCategory]vocab.TermID, len(domainRoots))
	for cat, root := range domainRoots {
		roots[cat] = root
	}
	return &Filter{index: index, domainRoots: roots}
}

// Apply filters cands for a mention with the given context category. The
// restored return is true when filtering emptied the list and the unfiltered
// candidates were reinstated.
func (f *Filter) Apply(cands []Candidate, contextCategory vocab.TermCategory) (out []Candidate, restored bool) {
	if len(cands) == 0 || contextCategory == vocab.CategoryUnknown || contextCategory == "" {
		return cands, false
	}

	root, rootConfigured := f.domainRoots[contextCategory]

	kept := make([]Candidate, 0, len(cands))
	for _, c := range cands {
		term, ok := f.index.Term(c.TermID)
		if !ok {
			continue
		}
		if term.Category != contextCategory {
			continue
		}
		if rootConfigured && !f.index.IsDescendant(c.TermID, root) {
			continue
		}
		kept = append(kept, c)
	}

	if len(kept) == 0 {
		return cands, true
	}
	return kept, false
}
