// Package vocab defines the wire-level controlled-vocabulary records exchanged
// with the ontology-management collaborator. The core consumes these
// normalized records; the file format they were parsed from is outside its
// scope.
package vocab

import (
	"fmt"
	"strings"
)

// TermID is the opaque stable identifier of a vocabulary term, e.g.
// "CHEBI:16243" or "NCBITaxon:3702".
type TermID string

func (id TermID) String() string {
	return string(id)
}

// TermCategory classifies a term by the kind of entity it denotes.
type TermCategory string

const (
	// CategoryStructural covers chemical-structure terms (metabolites,
	// compound classes).
	CategoryStructural TermCategory = "structural"

	// CategorySource covers biological source terms (species, anatomical
	// structures).
	CategorySource TermCategory = "source"

	// CategoryFunctional covers trait and bioactivity terms.
	CategoryFunctional TermCategory = "functional"

	// CategoryUnknown is only valid on mention context, never on a term.
	CategoryUnknown TermCategory = "unknown"
)

// IsValid reports whether c is a category a vocabulary term may carry.
func (c TermCategory) IsValid() bool {
	switch c {
	case CategoryStructural, CategorySource, CategoryFunctional:
		return true
	default:
		return false
	}
}

func (c TermCategory) String() string {
	return string(c)
}

// ParseTermCategory parses s into a TermCategory, accepting "unknown" as the
// mention-context wildcard.
func ParseTermCategory(s string) (TermCategory, error) {
	c := TermCategory(strings.ToLower(strings.TrimSpace(s)))
	if c.IsValid() || c == CategoryUnknown {
		return c, nil
	}
	return "", fmt.Errorf("vocab: unknown term category %q", s)
}

// TermRecord is one entry of the term source input: an ordered sequence of
// these records is all the index builder ever sees.
type TermRecord struct {
	ID             TermID       `json:"id"`
	CanonicalLabel string       `json:"canonical_label"`
	Synonyms       []string     `json:"synonyms,omitempty"`
	Category       TermCategory `json:"category"`
	ParentIDs      []TermID     `json:"parent_ids,omitempty"`
	SourceOntology string       `json:"source_ontology,omitempty"`
}

// Validate checks the structural invariants a single record can violate on
// its own; cross-record invariants (duplicate ids, cycles) are enforced by
// the index builder.
func (r *TermRecord) Validate() error {
	if r.ID == "" {
		return fmt.Errorf("vocab: term record has empty id")
	}
	if strings.TrimSpace(r.CanonicalLabel) == "" {
		return fmt.Errorf("vocab: term %s has empty canonical label", r.ID)
	}
	if !r.Category.IsValid() {
		return fmt.Errorf("vocab: term %s has invalid category %q", r.ID, r.Category)
	}
	for _, p := range r.ParentIDs {
		if p == r.ID {
			return fmt.Errorf("vocab: term %s lists itself as parent", r.ID)
		}
	}
	return nil
}
