package resolution

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/phytokg/termlink/pkg/types/vocab"
)

func TestFilterCategoryMismatch(t *testing.T) {
	f := NewFilter(testIndex(t), nil)

	cands := []Candidate{
		{TermID: "C:2", Score: 0.9, Method: MethodLexical},
		{TermID: "P:3", Score: 0.8, Method: MethodLexical},
	}

	out, restored := f.Apply(cands, vocab.CategoryStructural)
	assert.False(t, restored)
	require.Len(t, out, 1)
	assert.Equal(t, vocab.TermID("C:2"), out[0].TermID)
}

func TestFilterUnknownContextPassesThrough(t *testing.T) {
	f := NewFilter(testIndex(t), nil)

	cands := []Candidate{
		{TermID: "C:2", Score: 0.9},
		{TermID: "P:3", Score: 0.8},
	}

	out, restored := f.Apply(cands, vocab.CategoryUnknown)
	assert.False(t, restored)
	assert.Equal(t, cands, out)

	out, restored = f.Apply(cands, "")
	assert.False(t, restored)
	assert.Equal(t, cands, out)
}

func TestFilterDomainRoot(t *testing.T) {
	f := NewFilter(testIndex(t), map[vocab.TermCategory]vocab.TermID{
		vocab.CategorySource: "P:2",
	})

	// Viridiplantae is an ancestor of the configured root, not a member of
	// its subtree, so it falls out.
	cands := []Candidate{
		{TermID: "P:1", Score: 0.9},
		{TermID: "P:3", Score: 0.8},
	}

	out, restored := f.Apply(cands, vocab.CategorySource)
	assert.False(t, restored)
	require.Len(t, out, 1)
	assert.Equal(t, vocab.TermID("P:3"), out[0].TermID)
}

func TestFilterRestoresWhenEmptied(t *testing.T) {
	f := NewFilter(testIndex(t), nil)

	cands := []Candidate{
		{TermID: "P:3", Score: 0.9, Method: MethodLexical},
	}

	out, restored := f.Apply(cands, vocab.CategoryStructural)
	assert.True(t, restored)
	assert.Equal(t, cands, out)
}

func TestFilterEmptyInput(t *testing.T) {
	f := NewFilter(testIndex(t), nil)

	out, restored := f.Apply(nil, vocab.CategoryStructural)
	assert.False(t, restored)
	assert.Nil(t, out)
}
