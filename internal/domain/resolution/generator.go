package resolution

import (
	"sort"

	"github.com/phytokg/termlink/internal/domain/ontology"
	"github.com/phytokg/termlink/pkg/types/vocab"
)

// Method identifies the generation tier a candidate came from. Tiers carry a
// precedence (exact and synonym above lexical above phonetic) used when the
// same term surfaces through more than one channel.
type Method string

const (
	MethodExact    Method = "exact"
	MethodSynonym  Method = "synonym"
	MethodLexical  Method = "lexical"
	MethodPhonetic Method = "phonetic"
)

// tierRank orders methods by precedence; lower is stronger.
func tierRank(m Method) int {
	switch m {
	case MethodExact:
		return 0
	case MethodSynonym:
		return 1
	case MethodLexical:
		return 2
	default:
		return 3
	}
}

// Candidate is an ephemeral scored term proposal for one mention. Created
// per mention, consumed by the filter and resolver, never persisted.
type Candidate struct {
	TermID vocab.TermID
	Score  float64
	Method Method
}

// Generation-policy defaults, overridable through configuration.
const (
	DefaultMaxCandidates = 50
	DefaultLexicalFloor  = 0.35

	// lexicalRecallFactor scales the n-gram recall bound relative to the
	// candidate cap; precise scoring runs only on this bounded set.
	lexicalRecallFactor = 4
)

// GeneratorOptions tunes candidate generation.
type GeneratorOptions struct {
	// MaxCandidates bounds the returned candidate list (K).
	MaxCandidates int

	// LexicalFloor discards lexical-tier candidates scoring below it before
	// any further work happens.
	LexicalFloor float64

	// Calculator scores the lexical and phonetic tiers. Defaults to the
	// blended calculator.
	Calculator Calculator
}

// Generator produces the bounded, ordered candidate list for a mention. It
// holds only immutable state and is safe for concurrent use.
type Generator struct {
	index *ontology.Index
	opts  GeneratorOptions
}

// NewGenerator constructs a Generator over the given index, applying
// defaults for unset options.
func NewGenerator(index *ontology.Index, opts GeneratorOptions) *Generator {
	if opts.MaxCandidates <= 0 {
		opts.MaxCandidates = DefaultMaxCandidates
	}
	if opts.LexicalFloor <= 0 {
		opts.LexicalFloor = DefaultLexicalFloor
	}
	if opts.Calculator == nil {
		opts.Calculator = NewBlendedCalculator()
	}
	return &Generator{index: index, opts: opts}
}

// Generate runs the tiered pipeline for the mention text:
//
//  1. exact/synonym lookup, score 1.0;
//  2. lexical scoring over the n-gram recall set, floored;
//  3. phonetic fallback, only when the first two tiers produced nothing.
//
// A non-empty exact tier short-circuits the pipeline: nothing can outscore
// 1.0, and skipping the lexical tier is what guarantees exact-match
// precedence over near-matches. Output is sorted by score descending, ties
// broken by shorter canonical label, then by term id.
func (g *Generator) Generate(text string) []Candidate {
	norm := ontology.Normalize(text)
	if norm == "" {
		return nil
	}

	if exact := g.exactTier(norm); len(exact) > 0 {
		return g.finalize(exact)
	}
	if lexical := g.lexicalTier(norm); len(lexical) > 0 {
		return g.finalize(lexical)
	}
	return g.finalize(g.phoneticTier(norm))
}

func (g *Generator) exactTier(norm string) []Candidate {
	ids := g.index.LookupExact(norm)
	cands := make([]Candidate, 0, len(ids))
	for _, id := range ids {
		term, ok := g.index.Term(id)
		if !ok {
			continue
		}
		method := MethodSynonym
		if term.NormalizedLabel() == norm {
			method = MethodExact
		}
		cands = append(cands, Candidate{TermID: id, Score: 1.0, Method: method})
	}
	return cands
}

func (g *Generator) lexicalTier(norm string) []Candidate {
	ids := g.index.LexicalCandidates(norm, g.opts.MaxCandidates*lexicalRecallFactor)
	cands := make([]Candidate, 0, len(ids))
	for _, id := range ids {
		term, ok := g.index.Term(id)
		if !ok {
			continue
		}
		score := scoreBestName(g.opts.Calculator, norm, term.NormalizedNames())
		if score < g.opts.LexicalFloor {
			continue
		}
		cands = append(cands, Candidate{TermID: id, Score: score, Method: MethodLexical})
	}
	return cands
}

func (g *Generator) phoneticTier(norm string) []Candidate {
	ids := g.index.PhoneticCandidates(norm)
	cands := make([]Candidate, 0, len(ids))
	for _, id := range ids {
		term, ok := g.index.Term(id)
		if !ok {
			continue
		}
		score := scoreBestName(g.opts.Calculator, norm, term.NormalizedNames())
		cands = append(cands, Candidate{TermID: id, Score: score, Method: MethodPhonetic})
	}
	return cands
}

// finalize deduplicates by term id (keeping the strongest tier, then the
// higher score), sorts, and caps the list at MaxCandidates.
func (g *Generator) finalize(cands []Candidate) []Candidate {
	if len(cands) == 0 {
		return nil
	}

	byTerm := make(map[vocab.TermID]Candidate, len(cands))
	for _, c := range cands {
		prev, ok := byTerm[c.TermID]
		if !ok {
			byTerm[c.TermID] = c
			continue
		}
		if tierRank(c.Method) < tierRank(prev.Method) ||
			(tierRank(c.Method) == tierRank(prev.Method) && c.Score > prev.Score) {
			byTerm[c.TermID] = c
		}
	}

	out := make([]Candidate, 0, len(byTerm))
	for _, c := range byTerm {
		out = append(out, c)
	}
	g.sortCandidates(out)

	if len(out) > g.opts.MaxCandidates {
		out = out[:g.opts.MaxCandidates]
	}
	return out
}

// sortCandidates orders by score descending; ties prefer the shorter
// canonical label (the more specific term), then the lexicographically
// smaller id. The total order is what makes resolution deterministic.
func (g *Generator) sortCandidates(cands []Candidate) {
	labelLen := func(id vocab.TermID) int {
		if t, ok := g.index.Term(id); ok {
			return len(t.NormalizedLabel())
		}
		return 0
	}
	sort.Slice(cands, func(i, j int) bool {
		if cands[i].Score != cands[j].Score {
			return cands[i].Score > cands[j].Score
		}
		li, lj := labelLen(cands[i].TermID), labelLen(cands[j].TermID)
		if li != lj {
			return li < lj
		}
		return cands[i].TermID < cands[j].TermID
	})
}
