package ontology

import (
	"sort"
	"sync"

	"github.com/phytokg/termlink/pkg/errors"
	"github.com/phytokg/termlink/pkg/types/vocab"
)

// Index is the immutable in-memory representation of the controlled
// vocabulary. Build is the only mutation point; afterwards every method is
// safe for unsynchronized concurrent use. The lazily computed subtree cache
// is the one internally synchronized structure.
type Index struct {
	terms    map[vocab.TermID]*Term
	exact    map[string][]vocab.TermID
	grams    map[string][]vocab.TermID
	phonetic map[string][]vocab.TermID
	children map[vocab.TermID][]vocab.TermID

	subtreeMu sync.RWMutex
	subtrees  map[vocab.TermID]map[vocab.TermID]struct{}
}

// Build constructs an Index from the term source records. It fails with an
// index-build error on any malformed hierarchy: invalid record, duplicate id
// with conflicting category, parent reference to a missing term, or a cycle
// in the parent relation. On failure no partial index is returned.
//
// Records sharing an id with an identical category are merged: synonyms and
// parents accumulate. Ontology exports commonly split a term across files,
// so this is treated as well-formed input.
func Build(records []vocab.TermRecord) (*Index, error) {
	merged := make(map[vocab.TermID]*vocab.TermRecord, len(records))
	order := make([]vocab.TermID, 0, len(records))

	for i := range records {
		r := records[i]
		if err := r.Validate(); err != nil {
			return nil, errors.Wrap(err, errors.ErrCodeIndexBuild, "invalid term record")
		}
		existing, ok := merged[r.ID]
		if !ok {
			clone := r
			merged[r.ID] = &clone
			order = append(order, r.ID)
			continue
		}
		if existing.Category != r.Category {
			return nil, errors.Newf(errors.ErrCodeDuplicateTerm,
				"term %s declared with conflicting categories %s and %s",
				r.ID, existing.Category, r.Category)
		}
		existing.Synonyms = append(existing.Synonyms, r.Synonyms...)
		existing.ParentIDs = append(existing.ParentIDs, r.ParentIDs...)
	}

	idx := &Index{
		terms:    make(map[vocab.TermID]*Term, len(merged)),
		exact:    make(map[string][]vocab.TermID),
		grams:    make(map[string][]vocab.TermID),
		phonetic: make(map[string][]vocab.TermID),
		children: make(map[vocab.TermID][]vocab.TermID),
		subtrees: make(map[vocab.TermID]map[vocab.TermID]struct{}),
	}

	for _, id := range order {
		idx.terms[id] = newTerm(*merged[id])
	}

	// Hierarchy edges. Every parent must itself be a term: a dangling edge
	// means the export was truncated and subtree queries would silently lie.
	for _, id := range order {
		t := idx.terms[id]
		t.ParentIDs = dedupeIDs(t.ParentIDs)
		for _, p := range t.ParentIDs {
			if _, ok := idx.terms[p]; !ok {
				return nil, errors.Newf(errors.ErrCodeIndexBuild,
					"term %s references missing parent %s", id, p)
			}
			idx.children[p] = append(idx.children[p], id)
		}
	}

	if cycleAt, ok := findCycle(idx.terms); ok {
		return nil, errors.Newf(errors.ErrCodeHierarchyCycle,
			"term %s is its own ancestor", cycleAt)
	}

	// Lookup structures.
	for _, id := range order {
		t := idx.terms[id]
		for _, name := range t.normalizedNames {
			idx.exact[name] = append(idx.exact[name], id)
			for _, g := range ngrams(name) {
				idx.grams[g] = appendUniqueID(idx.grams[g], id)
			}
			if pk := phoneticKey(name); pk != "" {
				idx.phonetic[pk] = appendUniqueID(idx.phonetic[pk], id)
			}
		}
	}
	for _, postings := range idx.exact {
		sortIDs(postings)
	}
	for _, postings := range idx.grams {
		sortIDs(postings)
	}
	for _, postings := range idx.phonetic {
		sortIDs(postings)
	}
	for _, kids := range idx.children {
		sortIDs(kids)
	}

	return idx, nil
}

// Len returns the number of terms in the index.
func (idx *Index) Len() int {
	return len(idx.terms)
}

// Term returns the term for id.
func (idx *Index) Term(id vocab.TermID) (*Term, bool) {
	t, ok := idx.terms[id]
	return t, ok
}

// LookupExact returns the ids of every term whose canonical label or synonym
// equals text after normalization. The result is a fresh slice sorted by id.
func (idx *Index) LookupExact(text string) []vocab.TermID {
	postings := idx.exact[Normalize(text)]
	if len(postings) == 0 {
		return nil
	}
	return append([]vocab.TermID(nil), postings...)
}

// LexicalCandidates returns up to limit term ids sharing at least one
// character n-gram with the already-normalized text, ranked by shared-gram
// count descending, ties broken by id. This is the sub-linear recall step;
// precise similarity scoring happens downstream on the returned ids only.
func (idx *Index) LexicalCandidates(normText string, limit int) []vocab.TermID {
	if normText == "" || limit <= 0 {
		return nil
	}
	shared := make(map[vocab.TermID]int)
	for _, g := range ngrams(normText) {
		for _, id := range idx.grams[g] {
			shared[id]++
		}
	}
	if len(shared) == 0 {
		return nil
	}
	ids := make([]vocab.TermID, 0, len(shared))
	for id := range shared {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool {
		if shared[ids[i]] != shared[ids[j]] {
			return shared[ids[i]] > shared[ids[j]]
		}
		return ids[i] < ids[j]
	})
	if len(ids) > limit {
		ids = ids[:limit]
	}
	return ids
}

// PhoneticCandidates returns the ids of terms whose phonetic key matches the
// already-normalized text. Fresh slice, sorted by id.
func (idx *Index) PhoneticCandidates(normText string) []vocab.TermID {
	pk := phoneticKey(normText)
	if pk == "" {
		return nil
	}
	postings := idx.phonetic[pk]
	if len(postings) == 0 {
		return nil
	}
	return append([]vocab.TermID(nil), postings...)
}

// IsDescendant reports whether termID lies within the subtree rooted at
// ancestorID. A term lies in its own subtree.
func (idx *Index) IsDescendant(termID, ancestorID vocab.TermID) bool {
	_, ok := idx.Subtree(ancestorID)[termID]
	return ok
}

// Subtree returns the set of term ids reachable downward from rootID,
// including rootID itself when it exists. The set is computed lazily and
// cached per root; callers must treat the returned map as read-only. An
// unknown root yields an empty set.
func (idx *Index) Subtree(rootID vocab.TermID) map[vocab.TermID]struct{} {
	idx.subtreeMu.RLock()
	cached, ok := idx.subtrees[rootID]
	idx.subtreeMu.RUnlock()
	if ok {
		return cached
	}

	set := make(map[vocab.TermID]struct{})
	if _, exists := idx.terms[rootID]; exists {
		stack := []vocab.TermID{rootID}
		for len(stack) > 0 {
			id := stack[len(stack)-1]
			stack = stack[:len(stack)-1]
			if _, seen := set[id]; seen {
				continue
			}
			set[id] = struct{}{}
			stack = append(stack, idx.children[id]...)
		}
	}

	idx.subtreeMu.Lock()
	// Another goroutine may have raced the computation; keep the first
	// stored set so callers always observe one stable map per root.
	if prior, raced := idx.subtrees[rootID]; raced {
		set = prior
	} else {
		idx.subtrees[rootID] = set
	}
	idx.subtreeMu.Unlock()
	return set
}

// findCycle walks the parent relation with a three-color DFS and returns a
// term on a cycle, if any.
func findCycle(terms map[vocab.TermID]*Term) (vocab.TermID, bool) {
	const (
		white = 0
		gray  = 1
		black = 2
	)
	color := make(map[vocab.TermID]int, len(terms))

	var visit func(id vocab.TermID) (vocab.TermID, bool)
	visit = func(id vocab.TermID) (vocab.TermID, bool) {
		color[id] = gray
		for _, p := range terms[id].ParentIDs {
			switch color[p] {
			case gray:
				return p, true
			case white:
				if at, found := visit(p); found {
					return at, true
				}
			}
		}
		color[id] = black
		return "", false
	}

	// Deterministic iteration order so the reported term is stable.
	ids := make([]vocab.TermID, 0, len(terms))
	for id := range terms {
		ids = append(ids, id)
	}
	sortIDs(ids)
	for _, id := range ids {
		if color[id] == white {
			if at, found := visit(id); found {
				return at, true
			}
		}
	}
	return "", false
}

func sortIDs(ids []vocab.TermID) {
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
}

func dedupeIDs(ids []vocab.TermID) []vocab.TermID {
	if len(ids) < 2 {
		return ids
	}
	sortIDs(ids)
	out := ids[:1]
	for _, id := range ids[1:] {
		if id != out[len(out)-1] {
			out = append(out, id)
		}
	}
	return out
}

// appendUniqueID appends id unless it is already the last element. Posting
// construction iterates one term at a time, so duplicates are always
// adjacent.
func appendUniqueID(postings []vocab.TermID, id vocab.TermID) []vocab.TermID {
	if n := len(postings); n > 0 && postings[n-1] == id {
		return postings
	}
	return append(postings, id)
}
