package ontology

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalize(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"Quercetin ", "quercetin"},
		{"  Beta\tCarotene  ", "beta carotene"},
		{"Échinacée purpurea", "echinacee purpurea"},
		{"ARABIDOPSIS   THALIANA", "arabidopsis thaliana"},
		{"", ""},
		{"   ", ""},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, Normalize(tt.in), "input %q", tt.in)
	}
}

func TestNormalizeConcurrent(t *testing.T) {
	t.Parallel()

	// Batch resolution normalizes on worker goroutines, so concurrent calls
	// must neither race nor produce divergent folds for the same input.
	const workers = 8
	const rounds = 200

	var wg sync.WaitGroup
	results := make([]string, workers)
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func(w int) {
			defer wg.Done()
			for i := 0; i < rounds; i++ {
				results[w] = Normalize("  Échinacée   Purpurea ")
			}
		}(w)
	}
	wg.Wait()

	for w := 0; w < workers; w++ {
		assert.Equal(t, "echinacee purpurea", results[w], "worker %d", w)
	}
}

func TestTokenize(t *testing.T) {
	assert.Equal(t, []string{"beta", "carotene"}, Tokenize("beta-carotene"))
	assert.Equal(t, []string{"leaf", "stem"}, Tokenize("leaf/stem"))
	assert.Equal(t, []string{"quercetin"}, Tokenize("quercetin"))
	assert.Empty(t, Tokenize(""))
}

func TestNgrams(t *testing.T) {
	assert.Nil(t, ngrams(""))
	assert.Equal(t, []string{"at"}, ngrams("at"), "short strings index as themselves")

	grams := ngrams("abc")
	assert.Contains(t, grams, "\x02ab")
	assert.Contains(t, grams, "abc")
	assert.Contains(t, grams, "bc\x03")
}

func TestNgramsDeduplicated(t *testing.T) {
	grams := ngrams("aaaa")
	seen := map[string]int{}
	for _, g := range grams {
		seen[g]++
		assert.Equal(t, 1, seen[g], "gram %q repeated", g)
	}
}

func TestPhoneticKey(t *testing.T) {
	// Soundex-class equivalence: OCR/transliteration variants share a key.
	assert.Equal(t, phoneticKey("quercetin"), phoneticKey("quersetin"))
	assert.NotEqual(t, phoneticKey("quercetin"), phoneticKey("kaempferol"))

	// Multi-token names key per token.
	assert.Equal(t, phoneticKey("arabidopsis thaliana"), phoneticKey("arabidopsis taliana"))

	assert.Equal(t, "", phoneticKey(""))
}
