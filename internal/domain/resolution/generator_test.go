package resolution

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/phytokg/termlink/internal/domain/ontology"
	"github.com/phytokg/termlink/pkg/types/vocab"
)

func testIndex(t *testing.T) *ontology.Index {
	t.Helper()
	idx, err := ontology.Build([]vocab.TermRecord{
		{ID: "P:1", CanonicalLabel: "Viridiplantae", Category: vocab.CategorySource},
		{ID: "P:2", CanonicalLabel: "Brassicaceae", Category: vocab.CategorySource, ParentIDs: []vocab.TermID{"P:1"}},
		{ID: "P:3", CanonicalLabel: "Arabidopsis thaliana", Synonyms: []string{"thale cress"}, Category: vocab.CategorySource, ParentIDs: []vocab.TermID{"P:2"}},
		{ID: "C:1", CanonicalLabel: "flavonoid", Category: vocab.CategoryStructural},
		{ID: "C:2", CanonicalLabel: "quercetin", Synonyms: []string{"Sophoretin"}, Category: vocab.CategoryStructural, ParentIDs: []vocab.TermID{"C:1"}},
		{ID: "C:3", CanonicalLabel: "kaempferol", Category: vocab.CategoryStructural, ParentIDs: []vocab.TermID{"C:1"}},
		{ID: "C:4", CanonicalLabel: "quercitrin", Category: vocab.CategoryStructural, ParentIDs: []vocab.TermID{"C:1"}},
		{ID: "T:1", CanonicalLabel: "drought tolerance", Category: vocab.CategoryFunctional},
	})
	require.NoError(t, err)
	return idx
}

func TestGenerateExactLabel(t *testing.T) {
	gen := NewGenerator(testIndex(t), GeneratorOptions{})

	// Case and surrounding whitespace are normalization concerns, not
	// resolution concerns.
	cands := gen.Generate("  Quercetin ")
	require.Len(t, cands, 1)
	assert.Equal(t, vocab.TermID("C:2"), cands[0].TermID)
	assert.Equal(t, 1.0, cands[0].Score)
	assert.Equal(t, MethodExact, cands[0].Method)
}

func TestGenerateExactSynonym(t *testing.T) {
	gen := NewGenerator(testIndex(t), GeneratorOptions{})

	cands := gen.Generate("sophoretin")
	require.Len(t, cands, 1)
	assert.Equal(t, vocab.TermID("C:2"), cands[0].TermID)
	assert.Equal(t, 1.0, cands[0].Score)
	assert.Equal(t, MethodSynonym, cands[0].Method)
}

func TestGenerateExactShortCircuitsLexical(t *testing.T) {
	gen := NewGenerator(testIndex(t), GeneratorOptions{})

	// "quercitrin" is one edit away from "quercetin" and would surface in
	// the lexical tier, but an exact hit must not be contested by
	// near-matches.
	cands := gen.Generate("quercetin")
	require.Len(t, cands, 1)
	assert.Equal(t, vocab.TermID("C:2"), cands[0].TermID)
	assert.Equal(t, MethodExact, cands[0].Method)
}

func TestGenerateLexical(t *testing.T) {
	gen := NewGenerator(testIndex(t), GeneratorOptions{})

	// OCR digit substitution: one edit over nine runes, no shared tokens.
	cands := gen.Generate("querce5in")
	require.NotEmpty(t, cands)
	assert.Equal(t, vocab.TermID("C:2"), cands[0].TermID)
	assert.Equal(t, MethodLexical, cands[0].Method)
	assert.InDelta(t, 0.6*(1.0-1.0/9.0), cands[0].Score, 1e-9)
	for _, c := range cands {
		assert.GreaterOrEqual(t, c.Score, DefaultLexicalFloor)
	}
}

func TestGenerateLexicalTieBreak(t *testing.T) {
	gen := NewGenerator(testIndex(t), GeneratorOptions{})

	// "quercetrin" is one edit from both quercetin and quercitrin, so both
	// score identically; the shorter label must rank first.
	cands := gen.Generate("quercetrin")
	require.GreaterOrEqual(t, len(cands), 2)
	assert.Equal(t, vocab.TermID("C:2"), cands[0].TermID)
	assert.Equal(t, vocab.TermID("C:4"), cands[1].TermID)
	assert.Equal(t, cands[0].Score, cands[1].Score)
}

func TestGeneratePhoneticFallback(t *testing.T) {
	gen := NewGenerator(testIndex(t), GeneratorOptions{})

	// Vowel-stripped transliteration shares no character trigrams with any
	// vocabulary entry, so only the phonetic channel can recall it.
	cands := gen.Generate("qxrzctn")
	require.NotEmpty(t, cands)
	assert.Equal(t, vocab.TermID("C:2"), cands[0].TermID)
	assert.Equal(t, MethodPhonetic, cands[0].Method)
}

func TestGenerateEmptyMention(t *testing.T) {
	gen := NewGenerator(testIndex(t), GeneratorOptions{})

	assert.Nil(t, gen.Generate(""))
	assert.Nil(t, gen.Generate("   "))
	assert.Nil(t, gen.Generate("zzzzqqqq"))
}

func TestGenerateCap(t *testing.T) {
	gen := NewGenerator(testIndex(t), GeneratorOptions{MaxCandidates: 1})

	cands := gen.Generate("quercetrin")
	require.Len(t, cands, 1)
	assert.Equal(t, vocab.TermID("C:2"), cands[0].TermID)
}

func TestGenerateDeterminism(t *testing.T) {
	gen := NewGenerator(testIndex(t), GeneratorOptions{})

	first := gen.Generate("quercetrin")
	for i := 0; i < 50; i++ {
		assert.Equal(t, first, gen.Generate("quercetrin"))
	}
}
