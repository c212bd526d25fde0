package ontology

import (
	"strings"
	"sync"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// foldChains pools diacritic-folding transformers. The chain returned by
// transform.Chain carries internal buffers and is not safe for concurrent
// use, so each Normalize call checks one out for itself.
var foldChains = sync.Pool{
	New: func() interface{} {
		return transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	},
}

// Normalize maps a label, synonym, or mention onto the canonical lookup
// form: lowercase, diacritics folded, interior whitespace collapsed to a
// single space, exterior whitespace trimmed. Index construction and mention
// resolution must use the same function or exact lookup breaks.
func Normalize(s string) string {
	chain := foldChains.Get().(transform.Transformer)
	folded, _, err := transform.String(chain, s)
	foldChains.Put(chain)
	if err != nil {
		// Transform only fails on invalid UTF-8; fall back to the raw
		// string rather than dropping the mention.
		folded = s
	}
	folded = strings.ToLower(folded)
	return strings.Join(strings.Fields(folded), " ")
}

// Tokenize splits a normalized string into scoring tokens. Hyphens and
// slashes act as separators because chemical names are written
// inconsistently across journals ("beta-carotene" vs "beta carotene").
func Tokenize(s string) []string {
	return strings.FieldsFunc(s, func(r rune) bool {
		return r == ' ' || r == '-' || r == '/' || r == '_'
	})
}
