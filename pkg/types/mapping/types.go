// Package mapping defines the wire-level records that cross the engine
// boundary: mentions and facts arrive from the extraction collaborator,
// mappings and canonical facts leave toward the persistence collaborator.
package mapping

import (
	"fmt"
	"sort"
	"strings"

	"github.com/phytokg/termlink/pkg/types/vocab"
)

// Mention is a raw text occurrence of an entity extracted from a document.
// Produced externally; the engine never mutates it.
type Mention struct {
	Text            string             `json:"text"`
	ContextCategory vocab.TermCategory `json:"context_category"`
	DocumentID      string             `json:"document_id"`

	// Span is the character offset of the mention inside its document,
	// carried through for provenance only. Nil when the extractor did not
	// report offsets.
	Span *Span `json:"span,omitempty"`
}

// Span is a half-open [Start, End) character range.
type Span struct {
	Start int `json:"start"`
	End   int `json:"end"`
}

// Validate reports whether the mention is well-formed enough to resolve.
func (m *Mention) Validate() error {
	if strings.TrimSpace(m.Text) == "" {
		return fmt.Errorf("mapping: mention has empty text (document %s)", m.DocumentID)
	}
	return nil
}

// MappingStatus is the outcome classification of resolving one mention.
type MappingStatus string

const (
	StatusMapped    MappingStatus = "mapped"
	StatusUnmapped  MappingStatus = "unmapped"
	StatusAmbiguous MappingStatus = "ambiguous"
)

// Mapping is the resolution result for exactly one mention. Immutable once
// produced; identical mention text against an identical term index always
// yields an identical Mapping.
type Mapping struct {
	Mention    Mention       `json:"mention"`
	TermID     vocab.TermID  `json:"term_id,omitempty"`
	Confidence float64       `json:"confidence"`
	Status     MappingStatus `json:"status"`
}

// IsResolved reports whether the mapping carries a term id (mapped or
// ambiguous; ambiguous mappings still name the top candidate).
func (m *Mapping) IsResolved() bool {
	return m.TermID != "" && (m.Status == StatusMapped || m.Status == StatusAmbiguous)
}

// Fact is an extracted subject-predicate-object assertion linking two
// mappings, with the set of documents that support it.
type Fact struct {
	Subject    Mapping  `json:"subject"`
	Predicate  string   `json:"predicate"`
	Object     Mapping  `json:"object"`
	Provenance []string `json:"provenance"`
}

// Validate reports whether the fact is structurally sound.
func (f *Fact) Validate() error {
	if strings.TrimSpace(f.Predicate) == "" {
		return fmt.Errorf("mapping: fact has empty predicate")
	}
	return nil
}

// CanonicalFact is the deduplicated representative of a cluster of
// equivalent facts. Provenance is the sorted union of member provenances;
// SupportCount is the number of contributing facts.
type CanonicalFact struct {
	SubjectTermID vocab.TermID `json:"subject_term_id"`
	Predicate     string       `json:"predicate"`
	ObjectTermID  vocab.TermID `json:"object_term_id"`
	Provenance    []string     `json:"provenance"`
	SupportCount  int          `json:"support_count"`
}

// Key returns the normalized triple identity of the canonical fact, usable
// as a grouping key.
func (c *CanonicalFact) Key() string {
	return fmt.Sprintf("%s|%s|%s", c.SubjectTermID, c.Predicate, c.ObjectTermID)
}

// ReviewItem is a fact excluded from canonicalization because its subject or
// object stayed unmapped. Retained for manual curation, never dropped.
type ReviewItem struct {
	Fact   Fact   `json:"fact"`
	Reason string `json:"reason"`
}

// SortProvenance sorts and compacts a provenance document-id list in place,
// returning the deduplicated slice. Downstream consumers rely on the sorted
// order for reproducible output.
func SortProvenance(docs []string) []string {
	sort.Strings(docs)
	out := docs[:0]
	var prev string
	for i, d := range docs {
		if i > 0 && d == prev {
			continue
		}
		out = append(out, d)
		prev = d
	}
	return out
}
